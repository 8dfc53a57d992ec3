package builtin

import (
	"time"

	"github.com/roach88/scriptplay/internal/command"
	"github.com/roach88/scriptplay/internal/stage"
)

// PlaySFX is playsfx(name[, volume]). The asset is requested and polled
// each tick; once ready the sound plays. If it is not ready within the
// asset guard the command logs and finishes without sound. Interrupt
// gives up on the sound.
type PlaySFX struct{ inflight }

func (c *PlaySFX) Name() string { return "playsfx" }

// Execute plays only if the asset is ready right now.
func (c *PlaySFX) Execute(env command.Env, args command.Args) bool {
	if args.At(0) == "" {
		badArgs(env, c.Name(), args)
		return false
	}
	ready, err := env.Presenter().RequestAudio(args.At(0)).Ready()
	if err != nil || !ready {
		c.notReady(env, args.At(0), err)
		return false
	}
	env.Presenter().PlaySFX(args.At(0), args.Float(1, 1))
	return true
}

func (c *PlaySFX) ExecuteAsync(env command.Env, args command.Args) command.Task {
	if args.At(0) == "" {
		badArgs(env, c.Name(), args)
		return command.Completed(false)
	}
	return c.start(&assetWait{
		req:   env.Presenter().RequestAudio(args.At(0)),
		guard: env.AssetGuard(),
		play: func() {
			env.Presenter().PlaySFX(args.At(0), args.Float(1, 1))
		},
		timeout: func(err error) {
			c.notReady(env, args.At(0), err)
		},
	})
}

func (c *PlaySFX) Simulate(command.SimEnv, command.Args) {}

func (c *PlaySFX) notReady(env command.SimEnv, name string, err error) {
	env.Logger().Warn("sound effect not played",
		"command", c.Name(),
		"asset", name,
		"error", err,
	)
}

// assetWait polls an asset request until it is ready or the guard runs out.
type assetWait struct {
	req     stage.AssetRequest
	guard   time.Duration
	play    func()
	timeout func(error)

	waited time.Duration
	done   bool
	ok     bool
}

func (w *assetWait) Step(dt time.Duration) bool {
	if w.done {
		return true
	}
	w.waited += dt
	ready, err := w.req.Ready()
	switch {
	case err != nil:
		w.done = true
		w.timeout(err)
	case ready:
		w.done, w.ok = true, true
		w.play()
	case w.waited >= w.guard:
		w.done = true
		w.timeout(nil)
	}
	return w.done
}

func (w *assetWait) Interrupt() { w.done = true }
func (w *assetWait) Done() bool { return w.done }
func (w *assetWait) OK() bool   { return w.ok }
func (w *assetWait) Err() error { return nil }

// StopBGM is stopbgm().
type StopBGM struct{ instant }

func (c *StopBGM) Name() string { return "stopbgm" }

func (c *StopBGM) Execute(env command.Env, args command.Args) bool {
	c.Simulate(env, args)
	env.Presenter().StopBGM()
	return true
}

func (c *StopBGM) ExecuteAsync(env command.Env, args command.Args) command.Task {
	return command.Once(c, env, args)
}

func (c *StopBGM) Simulate(env command.SimEnv, _ command.Args) {
	env.Stage().BGM = ""
	env.Stage().BGMPaused = false
}

// PauseBGM is pausebgm(). Pausing with nothing playing fails.
type PauseBGM struct{ instant }

func (c *PauseBGM) Name() string { return "pausebgm" }

func (c *PauseBGM) Execute(env command.Env, args command.Args) bool {
	if !c.apply(env) {
		return false
	}
	env.Presenter().PauseBGM()
	return true
}

func (c *PauseBGM) ExecuteAsync(env command.Env, args command.Args) command.Task {
	return command.Once(c, env, args)
}

func (c *PauseBGM) Simulate(env command.SimEnv, _ command.Args) { c.apply(env) }

func (c *PauseBGM) apply(env command.SimEnv) bool {
	if env.Stage().BGM == "" {
		missingTarget(env, c.Name(), "bgm")
		return false
	}
	env.Stage().BGMPaused = true
	return true
}
