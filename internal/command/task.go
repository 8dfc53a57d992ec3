package command

import "time"

// Task is one in-flight command execution, advanced by the host tick.
//
// Interrupt is a first-class operation on the handle: it moves the task
// to its terminal state at once. Both Step after completion and a second
// Interrupt are no-ops.
type Task interface {
	// Step advances the task by dt and reports whether it has finished.
	Step(dt time.Duration) bool
	// Interrupt finishes the task immediately.
	Interrupt()
	// Done reports whether the task has finished.
	Done() bool
	// OK reports whether the task succeeded. Meaningful once Done.
	OK() bool
	// Err is the failure cause, if any (for logging).
	Err() error
}

type completed struct {
	ok  bool
	err error
}

// Completed returns a finished task with the given outcome.
func Completed(ok bool) Task { return &completed{ok: ok} }

// Failed returns a finished, failed task carrying err.
func Failed(err error) Task { return &completed{err: err} }

// Once runs c.Execute and wraps the result in a finished task. It is the
// ExecuteAsync of every command without a timed effect.
func Once(c Command, env Env, args Args) Task {
	return Completed(c.Execute(env, args))
}

func (t *completed) Step(time.Duration) bool { return true }
func (t *completed) Interrupt()              {}
func (t *completed) Done() bool              { return true }
func (t *completed) OK() bool                { return t.ok }
func (t *completed) Err() error              { return t.err }

// Timed is a task that runs for a fixed duration. Progress is called with
// a value in [0,1) while running; Finish is called exactly once at the
// end, whether reached normally or by Interrupt.
//
// A Progress error ends the task early (its target went away). A Finish
// error is only reported through Err: interrupting a broken animation
// degrades to a no-op.
type Timed struct {
	Duration time.Duration
	Progress func(p float64) error
	Finish   func() error

	elapsed time.Duration
	done    bool
	ok      bool
	err     error
}

// NewTimed returns a Timed task. Either callback may be nil.
func NewTimed(d time.Duration, progress func(float64) error, finish func() error) *Timed {
	return &Timed{Duration: d, Progress: progress, Finish: finish}
}

// Step implements Task.
func (t *Timed) Step(dt time.Duration) bool {
	if t.done {
		return true
	}
	t.elapsed += dt
	if t.elapsed >= t.Duration {
		t.finish()
		return true
	}
	if t.Progress != nil {
		if err := t.Progress(float64(t.elapsed) / float64(t.Duration)); err != nil {
			t.done = true
			t.err = err
			return true
		}
	}
	return false
}

// Interrupt implements Task.
func (t *Timed) Interrupt() {
	if t.done {
		return
	}
	t.finish()
}

func (t *Timed) finish() {
	t.done = true
	t.ok = true
	if t.Finish != nil {
		if err := t.Finish(); err != nil {
			t.ok = false
			t.err = err
		}
	}
}

// Done implements Task.
func (t *Timed) Done() bool { return t.done }

// OK implements Task.
func (t *Timed) OK() bool { return t.ok }

// Err implements Task.
func (t *Timed) Err() error { return t.err }

// Elapsed returns how much time the task has consumed.
func (t *Timed) Elapsed() time.Duration { return t.elapsed }
