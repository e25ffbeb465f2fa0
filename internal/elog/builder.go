package elog

import (
	"fmt"
	"runtime"

	"fortio.org/safecast"
)

// Report is the one open error report of a Bridge. A nil *Report stands for a
// suppressed report: every method on it is a no-op that does not even format
// its arguments.
type Report struct {
	b    *Bridge
	rec  Record
	done bool
	// Encoded field text, sent to the engine only when the report commits.
	msg, detail, hint string
}

// Begin opens a report at level for file:line. It returns a nil report and no
// error when the engine suppresses the level. Beginning while another report
// is open is a usage error.
func (b *Bridge) Begin(level Level, file string, line int) (*Report, error) {
	if b.open != nil {
		return nil, usageError(ErrReportOpen, "a report is already open").
			WithContext("open.level", b.open.rec.Level.String()).
			WithContext("open.file", b.open.rec.File).
			WithContext("open.line", b.open.rec.Line)
	}
	lineno, err := safecast.Conv[int32](line)
	if err != nil {
		return nil, wrapWithSentinel(ErrFormat, err, fmt.Sprintf("line %d does not fit a native int", line))
	}
	cfile, err := b.encoder.Encode(file)
	if err != nil {
		return nil, err
	}
	if !b.native.ErrStart(level, cfile, lineno, b.funcName, b.domain) {
		return nil, nil
	}
	r := &Report{
		b: b,
		rec: Record{
			Level:    level,
			File:     file,
			Line:     line,
			FuncName: b.funcName,
			Domain:   b.domain,
		},
	}
	b.open = r
	return r, nil
}

// Active reports whether r is an open, unsuppressed report.
func (r *Report) Active() bool {
	return r != nil && !r.done
}

// Record returns a copy of the fields accumulated so far.
func (r *Report) Record() Record {
	if r == nil {
		return Record{}
	}
	return r.rec
}

// Message attaches the primary message.
func (r *Report) Message(format string, args ...any) error {
	if r == nil {
		return nil
	}
	s, native, err := r.format(FieldMessage, format, args)
	if err != nil {
		return err
	}
	r.rec.Message = s
	r.msg = native
	return nil
}

// Detail attaches the secondary detail message.
func (r *Report) Detail(format string, args ...any) error {
	if r == nil {
		return nil
	}
	s, native, err := r.format(FieldDetail, format, args)
	if err != nil {
		return err
	}
	r.rec.Detail = s
	r.detail = native
	return nil
}

// Hint attaches a suggestion for the user.
func (r *Report) Hint(format string, args ...any) error {
	if r == nil {
		return nil
	}
	s, native, err := r.format(FieldHint, format, args)
	if err != nil {
		return err
	}
	r.rec.Hint = s
	r.hint = native
	return nil
}

// Code attaches the SQLSTATE.
func (r *Report) Code(code SQLState) error {
	if r == nil {
		return nil
	}
	if err := r.attachable(FieldCode); err != nil {
		return err
	}
	if !code.Valid() {
		return newWithSentinel(ErrInvalidSQLState, fmt.Sprintf("sqlstate %d does not unpack to a valid code", int32(code)))
	}
	r.rec.Code = code
	r.rec.Fields |= FieldCode
	return nil
}

// Finish commits the report. Below the error threshold the engine emits it and
// Finish returns nil. At or above the threshold the engine is not finished
// here: Finish returns a RaisedHere *Diversion that the caller must propagate,
// and the outermost Boundary completes the native report.
func (r *Report) Finish(flags int) error {
	if r == nil {
		return nil
	}
	if r.done {
		return usageError(ErrReportFinished, "report already finished").
			WithContext("level", r.rec.Level.String())
	}
	r.close()
	r.send()
	if IsDiverting(r.rec.Level) {
		return raised(r.rec, flags)
	}
	r.b.native.ErrFinish(flags)
	r.b.log.V(2).Info("report emitted",
		"level", r.rec.Level.String(), "file", r.rec.File, "line", r.rec.Line, "message", r.rec.Message)
	return nil
}

// Cancel releases an open report without committing it, e.g. after an attach
// failed with a format error. No field reaches the engine, and an engine that
// implements Discarder drops the entry ErrStart opened. It is a no-op on a nil
// or finished report.
func (r *Report) Cancel() {
	if r == nil || r.done {
		return
	}
	r.close()
	if d, ok := r.b.native.(Discarder); ok {
		d.ErrDiscard()
	}
}

// send hands the attached fields to the engine in one go.
func (r *Report) send() {
	n := r.b.native
	if r.rec.Has(FieldMessage) {
		n.ErrMsg(r.msg)
	}
	if r.rec.Has(FieldDetail) {
		n.ErrDetail(r.detail)
	}
	if r.rec.Has(FieldHint) {
		n.ErrHint(r.hint)
	}
	if r.rec.Has(FieldCode) {
		n.ErrCode(r.rec.Code)
	}
}

func (r *Report) close() {
	r.done = true
	if r.b.open == r {
		r.b.open = nil
	}
}

func (r *Report) attachable(f Field) error {
	if r.done {
		return usageError(ErrReportFinished, fmt.Sprintf("cannot attach %s to a finished report", f))
	}
	if r.rec.Fields&f != 0 {
		return usageError(ErrFieldAttached, fmt.Sprintf("%s already attached", f))
	}
	return nil
}

// format renders a field once and encodes it. A format with no arguments is
// taken literally.
func (r *Report) format(f Field, format string, args []any) (text, native string, err error) {
	if err := r.attachable(f); err != nil {
		return "", "", err
	}
	text = format
	if len(args) > 0 {
		text = fmt.Sprintf(format, args...)
	}
	native, err = r.b.encoder.Encode(text)
	if err != nil {
		return "", "", wrapWithSentinel(ErrFormat, err, fmt.Sprintf("cannot encode %s", f)).
			WithContext("field", f.String())
	}
	r.rec.Fields |= f
	return text, native, nil
}

// Attach is one field of an Ereport call.
type Attach func(*Report) error

// Msg attaches the primary message.
func Msg(format string, args ...any) Attach {
	return func(r *Report) error { return r.Message(format, args...) }
}

// Detail attaches the detail message.
func Detail(format string, args ...any) Attach {
	return func(r *Report) error { return r.Detail(format, args...) }
}

// Hint attaches the hint.
func Hint(format string, args ...any) Attach {
	return func(r *Report) error { return r.Hint(format, args...) }
}

// Code attaches the SQLSTATE.
func Code(code SQLState) Attach {
	return func(r *Report) error { return r.Code(code) }
}

// Ereport begins a report at the caller's file and line, attaches fields in
// order and finishes it. A failed attach cancels the report and returns the
// failure; a diverting level returns the RaisedHere diversion.
func (b *Bridge) Ereport(level Level, fields ...Attach) error {
	_, file, line, _ := runtime.Caller(1)
	return b.report(level, file, line, fields)
}

// Elog reports a single formatted message at the caller's file and line.
func (b *Bridge) Elog(level Level, format string, args ...any) error {
	_, file, line, _ := runtime.Caller(1)
	return b.report(level, file, line, []Attach{Msg(format, args...)})
}

func (b *Bridge) report(level Level, file string, line int, fields []Attach) error {
	r, err := b.Begin(level, file, line)
	if err != nil || r == nil {
		return err
	}
	for _, attach := range fields {
		if err := attach(r); err != nil {
			r.Cancel()
			return err
		}
	}
	return r.Finish(0)
}
