package engine

import (
	"sync"
)

// InputType distinguishes host input kinds.
type InputType int

const (
	// InputAdvance requests Advance.
	InputAdvance InputType = iota + 1
	// InputChoose picks Choice.
	InputChoose
	// InputSetAuto switches auto-play to Enabled.
	InputSetAuto
	// InputSetSkip switches skip mode to Enabled.
	InputSetSkip
	// InputJump jumps to LineID.
	InputJump
	// InputSave saves to Slot through the persistence sink.
	InputSave
	// InputLoad loads Slot through the persistence sink.
	InputLoad
)

// String returns the input name used in logs.
func (t InputType) String() string {
	switch t {
	case InputAdvance:
		return "advance"
	case InputChoose:
		return "choose"
	case InputSetAuto:
		return "auto"
	case InputSetSkip:
		return "skip"
	case InputJump:
		return "jump"
	case InputSave:
		return "save"
	case InputLoad:
		return "load"
	}
	return "unknown"
}

// Input is one host event for the Run loop.
type Input struct {
	Type    InputType
	Choice  int
	Enabled bool
	LineID  string
	Slot    string
}

// inputQueue is a thread-safe FIFO queue for host input.
//
// Hosts enqueue from their own goroutines (UI thread, tests); the Run
// loop is the only consumer. The signal channel lets Run wait on input and
// the frame ticker in one select.
type inputQueue struct {
	mu     sync.Mutex
	inputs []Input
	closed bool
	signal chan struct{} // buffered, size 1
}

func newInputQueue() *inputQueue {
	return &inputQueue{
		inputs: make([]Input, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an input to the back of the queue.
// Returns false if the queue is closed.
func (q *inputQueue) Enqueue(in Input) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.inputs = append(q.inputs, in)

	// Buffer of 1 coalesces multiple signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue removes the front input without blocking.
func (q *inputQueue) TryDequeue() (Input, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.inputs) == 0 {
		return Input{}, false
	}

	in := q.inputs[0]
	if len(q.inputs) == 1 {
		q.inputs = q.inputs[:0]
	} else {
		q.inputs = q.inputs[1:]
	}
	return in, true
}

// Wait returns a channel that signals when input may be available.
// It is closed when the queue closes.
func (q *inputQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *inputQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.inputs)
}

// Close signals that no more input will be enqueued.
func (q *inputQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}

// Closed reports whether Close was called.
func (q *inputQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
