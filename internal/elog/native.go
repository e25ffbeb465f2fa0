package elog

// Handle is an opaque reference owned by the engine: a jump-target buffer or an
// error-context callback record.
type Handle uint64

// Reporter is the engine's error-reporting entry points. Message strings reach
// the engine already formatted and encoded; implementations must pass them as
// data, never as a format string.
type Reporter interface {
	// ErrStart opens a report and reports whether it should proceed.
	ErrStart(level Level, filename string, lineno int32, funcname, domain string) bool
	ErrMsg(msg string)
	ErrDetail(msg string)
	ErrHint(msg string)
	ErrCode(code SQLState)
	// ErrFinish commits the open report. At diverting levels the engine jumps
	// to the current exception stack top and ErrFinish does not return.
	ErrFinish(flags int)
	// ReThrow continues a native unwind already in progress. It does not return.
	ReThrow()
}

// Discarder is implemented by engines that can drop the entry opened by the
// last ErrStart without emitting it. Report.Cancel uses it when available.
type Discarder interface {
	ErrDiscard()
}

// ExceptionState is the engine's process-wide exception stack top and
// error-context callback chain head. Only guard enter and exit touch it.
type ExceptionState interface {
	ExceptionStack() Handle
	SetExceptionStack(Handle)
	ContextStack() Handle
	SetContextStack(Handle)
}

// Native is everything the bridge needs from the engine.
type Native interface {
	Reporter
	ExceptionState
}

type jump struct {
	target Handle
}

// Jump transfers control to whoever installed target as a resume point: the
// guard that owns it, or the engine's own top-level handler. It does not return.
func Jump(target Handle) {
	panic(&jump{target: target})
}

// JumpTarget reports whether a recovered panic value is a jump, and where to.
func JumpTarget(recovered any) (Handle, bool) {
	j, ok := recovered.(*jump)
	if !ok {
		return 0, false
	}
	return j.target, true
}

// resumeMark distinguishes guard resume points from engine-owned handles.
const resumeMark Handle = 1 << 63

func resumeHandle(scope uint64) Handle {
	return resumeMark | Handle(scope)
}
