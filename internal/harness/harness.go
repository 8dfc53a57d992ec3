package harness

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/roach88/scriptplay/internal/config"
	"github.com/roach88/scriptplay/internal/engine"
	"github.com/roach88/scriptplay/internal/script"
	"github.com/roach88/scriptplay/internal/stage"
	"github.com/roach88/scriptplay/internal/store"
	"github.com/roach88/scriptplay/internal/testutil"
)

// maxNextAdvances bounds the Advance calls one "next" may spend on
// hurrying commands and reveal before giving up.
const maxNextAdvances = 100

// Harness drives one engine through a scenario.
type Harness struct {
	engine   *engine.Engine
	recorder *stage.Recorder
	store    *store.Store
	clock    *testutil.ManualClock
	logger   *slog.Logger
}

// settings returns the settings a scenario runs with: defaults with
// instant text reveal, overlaid with the scenario's settings block.
func (s *Scenario) settings() (config.Settings, error) {
	st := config.Defaults()
	st.TextSpeed = 0
	if s.Settings.Kind != 0 {
		if err := s.Settings.Decode(&st); err != nil {
			return config.Settings{}, fmt.Errorf("settings: %w", err)
		}
	}
	if err := config.Validate(st); err != nil {
		return config.Settings{}, err
	}
	return st, nil
}

// source returns the script source and the name to start.
func (s *Scenario) source() (script.Source, string) {
	if s.Script != "" {
		return script.MapSource{s.Name: s.Script}, s.Name
	}
	path := s.ScriptFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.dir, path)
	}
	return script.DirSource{Dir: filepath.Dir(path)}, filepath.Base(path)
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory database for isolation.
// Errors returned here mean the scenario could not run at all; step and
// assertion failures are reported in Result.
//
// Execution flow:
// 1. Create fresh in-memory database and Recorder
// 2. Start the script at scenario.Start
// 3. Execute steps
// 4. Capture the final state and evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.DiscardHandler))
}

// RunWithLogger is Run with engine logs sent to logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	settings, err := scenario.settings()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	src, name := scenario.source()
	clock := testutil.NewManualClock(time.Time{})
	rec := stage.NewRecorder()
	eng := engine.New(
		engine.WithSettings(settings),
		engine.WithLogger(logger),
		engine.WithPresenter(rec),
		engine.WithSource(src),
		engine.WithPersistence(st),
		engine.WithIDGenerator(testutil.NewSequentialIDGenerator("snapshot")),
		engine.WithNow(clock.Now),
	)

	h := &Harness{
		engine:   eng,
		recorder: rec,
		store:    st,
		clock:    clock,
		logger:   logger,
	}

	if err := eng.Start(name, scenario.Start); err != nil {
		return nil, fmt.Errorf("failed to start script: %w", err)
	}

	ctx := context.Background()
	result := NewResult()
	for i, step := range scenario.Steps {
		h.executeStep(ctx, i, step, result)
	}

	result.Trace = rec.Trace()
	result.State = h.finalState()
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// executeStep runs one step, Repeat times, and records unexpected outcomes.
func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) {
	times := max(step.Repeat, 1)
	var err error
	for range times {
		if err = h.do(ctx, step); err != nil {
			break
		}
	}

	switch {
	case err != nil && !step.ExpectError:
		result.AddError(fmt.Sprintf("steps[%d] %s: %v", index, step.Action(), err))
	case err == nil && step.ExpectError:
		result.AddError(fmt.Sprintf("steps[%d] %s: expected an error", index, step.Action()))
	}

	h.logger.Info("step completed",
		"step", index,
		"action", step.Action(),
		"pointer", h.engine.Pointer(),
		"mode", h.engine.Mode().String(),
	)
}

func (h *Harness) do(ctx context.Context, step Step) error {
	e := h.engine
	switch {
	case step.Advance != nil:
		for range *step.Advance {
			e.Advance()
		}
	case step.Next != nil:
		for range *step.Next {
			if err := h.next(); err != nil {
				return err
			}
		}
	case step.Choose != nil:
		return e.Choose(*step.Choose)
	case step.Tick != "":
		d, err := time.ParseDuration(step.Tick)
		if err != nil {
			return err
		}
		h.clock.Advance(d)
		e.Tick(d)
	case step.Jump != "":
		if !e.JumpTo(step.Jump) {
			return engine.NewUnresolvedJumpError(step.Jump)
		}
	case step.Save != "":
		_, err := e.SaveSlot(ctx, step.Save)
		return err
	case step.Load != "":
		return e.LoadSlot(ctx, step.Load)
	case step.Auto != nil:
		e.SetAuto(*step.Auto)
	case step.Skip != nil:
		e.SetSkip(*step.Skip)
	default:
		return fmt.Errorf("no action")
	}
	return nil
}

// next advances until a new line plays.
func (h *Harness) next() error {
	e := h.engine
	for range maxNextAdvances {
		if e.Advance() {
			return nil
		}
		if e.Finished() {
			return fmt.Errorf("end of script")
		}
		if e.Mode() == engine.ModeChoicePending {
			return fmt.Errorf("choice pending")
		}
	}
	return fmt.Errorf("no new line after %d advances", maxNextAdvances)
}

// finalState flattens the engine state into plain values for assertions
// and golden files.
func (h *Harness) finalState() map[string]any {
	e := h.engine
	st := e.State()
	speaker, text := e.Dialogue()

	chars := make(map[string]any, len(st.Characters))
	for pos, c := range st.Characters {
		chars[pos.String()] = c.Cell()
	}
	lineID := ""
	if ln, ok := e.Script().Line(e.Pointer()); ok {
		lineID = ln.ID
	}
	fl := e.Flags()

	return map[string]any{
		"pointer":    e.Pointer(),
		"line_id":    lineID,
		"mode":       e.Mode().String(),
		"finished":   e.Finished(),
		"background": st.Background,
		"bgm":        st.BGM,
		"speaker":    speaker,
		"text":       text,
		"characters": chars,
		"effects":    st.Effects,
		"history":    len(e.History()),
		"flags": map[string]any{
			"bool":   fl.Bools,
			"int":    fl.Ints,
			"string": fl.Strings,
		},
	}
}
