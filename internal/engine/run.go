package engine

import (
	"context"
	"fmt"
	"time"
)

const defaultFrameInterval = 16 * time.Millisecond

// Enqueue submits host input for the Run loop.
// Thread-safe: may be called from any goroutine.
//
// Returns false if the engine has been stopped.
func (e *Engine) Enqueue(in Input) bool {
	return e.queue.Enqueue(in)
}

// Stop closes the input queue. Run returns once the queued input is handled.
func (e *Engine) Stop() {
	e.queue.Close()
}

// Run is the single-goroutine loop: it handles queued input in FIFO order
// and ticks the engine every frame interval. Each tick advances time by
// exactly one frame interval so that runs are reproducible.
//
// Blocks until ctx is cancelled or Stop is called. Input errors are logged
// and the loop continues.
func (e *Engine) Run(ctx context.Context) error {
	frame := e.settings.FrameInterval
	if frame <= 0 {
		frame = defaultFrameInterval
	}
	e.logger.Info("engine starting", "frame", frame)

	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	for {
		for {
			in, ok := e.queue.TryDequeue()
			if !ok {
				break
			}
			if err := e.handle(ctx, in); err != nil {
				e.logger.Error("input failed", "input", in.Type.String(), "error", err)
			}
		}

		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping: context cancelled")
			e.queue.Close()
			return ctx.Err()

		case <-e.queue.Wait():
			// A closed queue signals forever; stop once it is drained.
			if e.queue.Closed() && e.queue.Len() == 0 {
				e.logger.Info("engine stopping: queue closed")
				return nil
			}

		case <-ticker.C:
			e.Tick(frame)
		}
	}
}

// handle applies one input.
func (e *Engine) handle(ctx context.Context, in Input) error {
	e.logger.Debug("input", "input", in.Type.String(), "line", e.pointer)
	switch in.Type {
	case InputAdvance:
		e.Advance()
	case InputChoose:
		return e.Choose(in.Choice)
	case InputSetAuto:
		e.SetAuto(in.Enabled)
	case InputSetSkip:
		e.SetSkip(in.Enabled)
	case InputJump:
		if e.script == nil {
			return ErrNoScript
		}
		if !e.JumpTo(in.LineID) {
			return NewUnresolvedJumpError(in.LineID)
		}
	case InputSave:
		_, err := e.SaveSlot(ctx, in.Slot)
		return err
	case InputLoad:
		return e.LoadSlot(ctx, in.Slot)
	default:
		return fmt.Errorf("unknown input type: %d", in.Type)
	}
	return nil
}
