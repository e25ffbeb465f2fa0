package elog

import "fmt"

// Frame is the state saved by one guard entry: the exception stack top and
// error-context chain head to restore, and the resume point it installed.
type Frame struct {
	savedTop     Handle
	savedContext Handle
	resume       Handle
	scope        uint64
	depth        int
	exited       bool
	// openAtEntry is the report already open when the guard was entered.
	openAtEntry *Report
}

// Scope identifies the guard within its Bridge.
func (f *Frame) Scope() uint64 { return f.scope }

// Depth is 1 for the outermost guard.
func (f *Frame) Depth() int { return f.depth }

// SavedTop is the exception stack top restored on exit.
func (f *Frame) SavedTop() Handle { return f.savedTop }

// SavedContext is the error-context chain head restored on exit.
func (f *Frame) SavedContext() Handle { return f.savedContext }

// Resume is the resume point this guard installed.
func (f *Frame) Resume() Handle { return f.resume }

// enter saves the engine's stack pointers and installs a new resume point.
func (b *Bridge) enter() *Frame {
	b.nextScope++
	f := &Frame{
		savedTop:     b.native.ExceptionStack(),
		savedContext: b.native.ContextStack(),
		resume:       resumeHandle(b.nextScope),
		scope:        b.nextScope,
		depth:        len(b.frames) + 1,
		openAtEntry:  b.open,
	}
	b.frames = append(b.frames, f)
	b.native.SetExceptionStack(f.resume)
	return f
}

// exit restores what enter saved. Frames must exit once each, innermost first.
func (b *Bridge) exit(f *Frame) {
	if f.exited {
		b.corrupt(f, "guard exited twice")
		return
	}
	n := len(b.frames)
	if n == 0 || b.frames[n-1] != f {
		b.corrupt(f, "guard exited out of order")
		return
	}
	b.frames[n-1] = nil
	b.frames = b.frames[:n-1]
	f.exited = true
	b.native.SetExceptionStack(f.savedTop)
	b.native.SetContextStack(f.savedContext)
}

// dropReport cancels a report left open inside f's region when control left
// it by a jump or a panic.
func (b *Bridge) dropReport(f *Frame) {
	if b.open != nil && b.open != f.openAtEntry {
		b.log.V(1).Info("dropping report interrupted by unwind",
			"scope", f.scope, "level", b.open.rec.Level.String())
		b.open.Cancel()
	}
}

// live reports whether a guard that is still entered owns target.
func (b *Bridge) live(target Handle) bool {
	for _, f := range b.frames {
		if f.resume == target {
			return true
		}
	}
	return false
}

func (b *Bridge) corrupt(f *Frame, msg string) {
	err := newWithSentinel(ErrStackCorruption, msg).WithContextMap(map[string]any{
		"scope":  f.scope,
		"depth":  f.depth,
		"frames": len(b.frames),
	})
	b.abort(err)
}

// protect runs fn and reports whether the engine jumped to f's resume point.
// Any other panic restores f before continuing to unwind.
func (b *Bridge) protect(f *Frame, fn func() error) (resumed bool, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if target, ok := JumpTarget(r); ok {
			if target == f.resume {
				resumed, err = true, nil
				return
			}
			if target&resumeMark != 0 && !b.live(target) {
				b.corrupt(f, "jump to a stale resume point")
			}
		}
		b.dropReport(f)
		b.exit(f)
		panic(r)
	}()
	return false, fn()
}

// Guard runs fn with a resume point installed on the engine's exception stack.
// The stack pointers are restored exactly once whichever way fn ends, then the
// unwind decision picks the single exit: normal return, a diversion raised in
// fn, or a relay of an engine jump or of a diversion from a nested guard.
func (b *Bridge) Guard(fn func() error) error {
	if fn == nil {
		return usageError(ErrUsage, "guard requires a function")
	}
	f := b.enter()
	resumed, err := b.protect(f, fn)
	if resumed {
		b.dropReport(f)
	}
	b.exit(f)
	return b.unwind(f, resumed, err)
}

// Guarded is Guard for functions that produce a value. The zero value is
// returned whenever the call diverts.
func Guarded[T any](b *Bridge, fn func() (T, error)) (T, error) {
	var out T
	err := b.Guard(func() error {
		v, err := fn()
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func (f *Frame) String() string {
	return fmt.Sprintf("frame(scope=%d depth=%d)", f.scope, f.depth)
}
