package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/roach88/scriptplay/internal/command"
	"github.com/roach88/scriptplay/internal/command/builtin"
	"github.com/roach88/scriptplay/internal/config"
	"github.com/roach88/scriptplay/internal/flags"
	"github.com/roach88/scriptplay/internal/script"
	"github.com/roach88/scriptplay/internal/stage"
)

var (
	// ErrNoChoicePending is returned by Choose outside ChoicePending.
	ErrNoChoicePending = errors.New("no choice pending")

	// ErrChoiceOutOfRange is returned by Choose for an index with no option.
	ErrChoiceOutOfRange = errors.New("choice out of range")

	// ErrNoScript is returned by operations that need a loaded script.
	ErrNoScript = errors.New("no script loaded")

	// ErrNoPersistence is returned by SaveSlot and LoadSlot without a sink.
	ErrNoPersistence = errors.New("no persistence configured")
)

// Mode is the engine's current state-machine state.
type Mode int

const (
	ModeAwaitingInput Mode = iota
	ModeTextRevealing
	ModeCommandsRunning
	ModeAutoPlayCountdown
	ModeChoicePending
	ModeReplaying
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeAwaitingInput:
		return "AwaitingInput"
	case ModeTextRevealing:
		return "TextRevealing"
	case ModeCommandsRunning:
		return "CommandsRunning"
	case ModeAutoPlayCountdown:
		return "AutoPlayCountdown"
	case ModeChoicePending:
		return "ChoicePending"
	case ModeReplaying:
		return "Replaying"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// HistoryEntry is one played line in the dialogue log.
type HistoryEntry struct {
	Seq     int64  `json:"seq"`
	LineID  string `json:"line_id,omitempty"`
	Speaker string `json:"speaker,omitempty"`
	Text    string `json:"text,omitempty"`
	Voice   string `json:"voice,omitempty"`
}

// Persistence is the save-slot sink. store.Store implements it.
type Persistence interface {
	SaveSnapshot(ctx context.Context, slot string, data []byte) error
	LoadSnapshot(ctx context.Context, slot string) ([]byte, error)
}

// ThumbnailCapturer renders a save thumbnail and returns its path.
type ThumbnailCapturer interface {
	Capture(snapshotID string) (string, error)
}

// Engine plays one script at a time.
//
// Thread-safety model:
//   - Enqueue(), Stop(): safe from any goroutine
//   - everything else: one goroutine only (the Run loop, or the host's
//     frame loop when Run is not used)
//
// INVARIANTS:
//   - state has one writer: the engine itself, or simulate calls during
//     replay, never both at once
//   - at most one line chain runs at a time
type Engine struct {
	settings  config.Settings
	logger    *slog.Logger
	source    script.Source
	script    *script.Store
	registry  *command.Registry
	presenter stage.Presenter
	persist   Persistence
	ids       IDGenerator
	thumbs    ThumbnailCapturer
	now       func() time.Time
	clock     *Clock
	guard     *JumpGuard
	cycles    *CycleDetector
	queue     *inputQueue

	state   *stage.State
	flags   *flags.Set
	history []HistoryEntry

	pointer int
	pending bool // the line at pointer has not been played yet
	lines   int  // lines played, for callers detecting progress
	chain   *command.Chain
	resume  bool // chain is a choice's resume chain
	choices []command.Option
	reveal  reveal
	voice   string

	auto      bool
	autoArmed bool
	autoWait  time.Duration
	skip      bool

	replaying bool
	finished  bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithPresenter sets the presentation collaborator. Default: a stage.Recorder.
func WithPresenter(p stage.Presenter) Option {
	return func(e *Engine) { e.presenter = p }
}

// WithRegistry sets the command registry. Default: the builtin catalog.
func WithRegistry(r *command.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithSource sets where Start and Load find scripts by name.
func WithSource(s script.Source) Option {
	return func(e *Engine) { e.source = s }
}

// WithPersistence sets the save-slot sink used by SaveSlot and LoadSlot.
func WithPersistence(p Persistence) Option {
	return func(e *Engine) { e.persist = p }
}

// WithIDGenerator sets the snapshot ID generator. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) { e.ids = g }
}

// WithThumbnails sets the thumbnail capturer used by Save.
func WithThumbnails(t ThumbnailCapturer) Option {
	return func(e *Engine) { e.thumbs = t }
}

// WithSettings replaces config.Defaults().
func WithSettings(s config.Settings) Option {
	return func(e *Engine) { e.settings = s }
}

// WithNow sets the wall clock used for snapshot timestamps.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an idle Engine with no script.
func New(opts ...Option) *Engine {
	e := &Engine{
		settings: config.Defaults(),
		logger:   slog.Default(),
		ids:      UUIDv7Generator{},
		now:      time.Now,
		clock:    NewClock(),
		queue:    newInputQueue(),
		state:    stage.NewState(),
		flags:    flags.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "engine")
	if e.presenter == nil {
		e.presenter = stage.NewRecorder()
	}
	if e.registry == nil {
		e.registry = builtin.NewRegistry(e.logger)
	}
	e.guard = NewJumpGuard(e.settings.MaxJumpChain)
	e.cycles = NewCycleDetector()
	return e
}

// SetScript replaces the script and rewinds the pointer without playing.
func (e *Engine) SetScript(s *script.Store) {
	e.stopCommands()
	e.hideChoices()
	e.cancelAuto()
	e.script = s
	e.pointer = 0
	e.pending = true
	e.finished = false
}

// PlayCurrentLine plays the line at the pointer and follows any jumps its
// commands make.
func (e *Engine) PlayCurrentLine() {
	e.resetCascade()
	if e.script == nil {
		return
	}
	e.play()
}

func (e *Engine) play() {
	for e.playOnce() {
		if !e.allowJump() {
			return
		}
	}
}

// resetCascade starts a new synchronous jump cascade.
func (e *Engine) resetCascade() {
	e.guard.Reset()
	e.cycles.Clear()
}

// allowJump counts a jump-triggered replay against the guard. A jump back
// to a line already played in the cascade is refused outright.
func (e *Engine) allowJump() bool {
	if e.cycles.WouldCycle(e.pointer) {
		e.logger.Error("jump cascade stopped",
			"code", ErrCodeJumpLimit,
			"error", NewJumpCycleError(e.pointer, e.lineID(e.pointer), e.cycles.Path()),
		)
		return false
	}
	err := e.guard.Check(e.lineID(e.pointer))
	if err == nil {
		return true
	}
	e.logger.Error("jump cascade stopped",
		"code", ErrCodeJumpLimit,
		"error", NewJumpLimitError(e.pointer, e.lineID(e.pointer), err),
	)
	return false
}

// playOnce plays the line at the pointer. It reports whether the line's
// chain finished synchronously after moving the pointer.
func (e *Engine) playOnce() bool {
	ln, ok := e.script.Line(e.pointer)
	if !ok {
		e.finish()
		return false
	}
	e.pending = false
	e.finished = false
	e.cancelAuto()

	if !e.state.TextStyle.IsZero() {
		e.state.TextStyle = stage.TextStyle{}
		e.presenter.SetTextStyle(stage.TextStyle{})
	}

	prev := e.state.Clone()
	r := resolve(ln, e.state, e.settings.VoicePrefix)
	apply(e.state, r)
	e.present(prev)
	e.playVoice(r.Voice)

	e.history = append(e.history, HistoryEntry{
		Seq:     e.clock.Next(),
		LineID:  ln.ID,
		Speaker: r.Speaker,
		Text:    r.Text,
		Voice:   r.Voice,
	})
	e.presenter.SetHeadProfile(r.HeadProfile)
	e.presenter.UpdateDialogue(r.Speaker, r.Text)
	e.startReveal(r.Text)
	e.lines++
	e.cycles.Record(e.pointer, ln.ID)

	e.logger.Debug("line played", "line", e.pointer, "id", ln.ID, "row", ln.Row)

	if !ln.HasCommand() {
		return false
	}
	e.chain = e.registry.Start(liveEnv{e}, ln.Command)
	if !e.chain.Step(0) {
		return false
	}
	e.endChain()
	return e.pending
}

// present pushes the difference between prev and the live state.
func (e *Engine) present(prev *stage.State) {
	st := e.state
	p := e.presenter
	if st.Background != prev.Background {
		p.ChangeBackground(backgroundName(st.Background))
	}
	for _, pos := range stage.Positions {
		c, shown := st.Characters[pos]
		pc, was := prev.Characters[pos]
		switch {
		case shown && !was:
			p.ShowCharacter(pos, c.ID, c.Emotion)
			p.SetOrientation(pos, st.Facing(pos))
		case shown && c != pc:
			p.ShowCharacter(pos, c.ID, c.Emotion)
		case !shown && was:
			p.HideCharacter(pos)
		}
	}
	switch {
	case st.BGM == "" && prev.BGM != "":
		p.StopBGM()
	case st.BGM != "" && (st.BGM != prev.BGM || prev.BGMPaused && !st.BGMPaused):
		p.PlayBGM(st.BGM)
	}
}

func backgroundName(bg string) string {
	if bg == "" {
		return stage.Hide
	}
	return bg
}

func (e *Engine) playVoice(ref string) {
	if e.voice != "" {
		e.presenter.StopVoice()
	}
	e.voice = ref
	if ref != "" {
		e.presenter.PlayVoice(ref)
	}
}

func (e *Engine) finish() {
	if e.finished {
		return
	}
	e.finished = true
	e.cancelAuto()
	e.logger.Info("end of script", "script", e.script.Name(), "lines", e.script.Len())
}

// chainFinished handles the end of the line chain or a resume chain.
func (e *Engine) chainFinished() {
	e.endChain()
	resume := e.resume
	e.resume = false
	switch {
	case e.pending:
		if e.allowJump() {
			e.play()
		}
	case resume:
		e.next()
	}
}

// Advance moves forward on user input. It interrupts running commands or
// completes the text reveal first; only an idle line moves the pointer.
// Advance reports whether a new line was played.
func (e *Engine) Advance() bool {
	e.resetCascade()
	if e.script == nil || e.replaying || len(e.choices) > 0 {
		return false
	}
	e.cancelAuto()
	before := e.lines

	switch {
	case e.commandsRunning():
		e.hurryCommands()
	case e.reveal.active:
		e.finishReveal()
	default:
		e.next()
	}
	return e.lines != before
}

func (e *Engine) next() {
	if !e.pending {
		if e.pointer+1 >= e.script.Len() {
			e.finish()
			return
		}
		e.pointer++
	}
	e.play()
}

func (e *Engine) commandsRunning() bool {
	return e.chain != nil || e.registry.IsRunning()
}

// endChain drops the finished chain and reports its failures.
func (e *Engine) endChain() {
	if e.chain == nil {
		return
	}
	var failed, unknown []string
	for _, o := range e.chain.Outcomes() {
		switch {
		case o.Unknown:
			unknown = append(unknown, o.Instruction.Name)
		case !o.OK:
			failed = append(failed, o.Instruction.Name)
		}
	}
	if len(failed) > 0 || len(unknown) > 0 {
		e.logger.Debug("chain finished with skipped commands",
			"line", e.pointer, "failed", failed, "unknown", unknown)
	}
	e.chain = nil
}

// hurryCommands brings every running command to its terminal state and
// lets the chain run its remaining instructions in their final state.
func (e *Engine) hurryCommands() {
	e.registry.InterruptAll()
	if e.chain == nil {
		return
	}
	e.chain.Hurry()
	if e.chain.Step(0) {
		e.chainFinished()
	}
}

// stopCommands drops the running chain and interrupts everything running.
func (e *Engine) stopCommands() {
	if e.chain != nil {
		e.chain.Abort()
		e.chain = nil
	}
	e.resume = false
	e.registry.InterruptAll()
}

// Choose picks option i of the pending choice and runs its resume chain.
// With an empty resume chain the next line plays.
func (e *Engine) Choose(i int) error {
	e.resetCascade()
	if len(e.choices) == 0 {
		return ErrNoChoicePending
	}
	if i < 0 || i >= len(e.choices) {
		return fmt.Errorf("choice %d of %d: %w", i, len(e.choices), ErrChoiceOutOfRange)
	}
	opt := e.choices[i]
	e.hideChoices()
	e.stopCommands()
	e.finishReveal()

	e.logger.Info("choice made", "line", e.pointer, "choice", i, "text", opt.Text)

	if strings.TrimSpace(opt.Resume) == "" {
		e.next()
		return nil
	}
	e.resume = true
	e.chain = e.registry.Start(liveEnv{e}, opt.Resume)
	if e.chain.Step(0) {
		e.chainFinished()
	}
	return nil
}

func (e *Engine) offerChoices(opts []command.Option) {
	if len(opts) == 0 {
		return
	}
	e.choices = slices.Clone(opts)
	texts := make([]string, len(opts))
	for i, o := range opts {
		texts[i] = o.Text
	}
	e.cancelAuto()
	e.presenter.ShowChoices(texts)
}

func (e *Engine) hideChoices() {
	if len(e.choices) == 0 {
		return
	}
	e.choices = nil
	e.presenter.HideChoices()
}

// jumpFromCommand moves the pointer for a jump issued by a running command.
// The target line plays once the chain finishes.
func (e *Engine) jumpFromCommand(id string) bool {
	idx, ok := e.resolveID(id)
	e.pointer = idx
	e.pending = true
	return ok
}

// resolveID maps a line ID to an index, falling back to line 0.
func (e *Engine) resolveID(id string) (int, bool) {
	if idx, ok := e.script.Index(id); ok {
		return idx, true
	}
	e.logger.Warn("unresolved line id",
		"code", ErrCodeUnresolvedJumpID,
		"script", e.script.Name(),
		"error", NewUnresolvedJumpError(id),
	)
	return 0, false
}

func (e *Engine) lineID(i int) string {
	if e.script == nil {
		return ""
	}
	ln, _ := e.script.Line(i)
	return ln.ID
}

// Tick advances time by dt: it steps the running chain, reveals text and
// drives the auto-play and skip modes.
func (e *Engine) Tick(dt time.Duration) {
	e.resetCascade()
	if e.script == nil || e.replaying {
		return
	}
	if e.chain != nil && e.chain.Step(dt) {
		e.chainFinished()
	}
	if e.reveal.active {
		e.advanceReveal(dt)
	}
	if e.finished || len(e.choices) > 0 {
		e.cancelAuto()
		return
	}
	switch {
	case e.skip:
		e.Advance()
	case e.auto:
		e.tickAuto(dt)
	}
}

func (e *Engine) idle() bool {
	return !e.replaying && len(e.choices) == 0 && !e.commandsRunning() && !e.reveal.active
}

func (e *Engine) tickAuto(dt time.Duration) {
	if !e.idle() {
		e.cancelAuto()
		return
	}
	if !e.autoArmed {
		e.autoArmed = true
		e.autoWait = 0
		return
	}
	e.autoWait += dt
	if e.autoWait >= e.settings.AutoPlayDelay {
		e.cancelAuto()
		e.Advance()
	}
}

func (e *Engine) cancelAuto() {
	e.autoArmed = false
	e.autoWait = 0
}

// SetAuto switches auto-play.
func (e *Engine) SetAuto(on bool) {
	e.auto = on
	e.cancelAuto()
}

// SetSkip switches skip mode.
func (e *Engine) SetSkip(on bool) {
	e.skip = on
}

// Auto reports whether auto-play is on.
func (e *Engine) Auto() bool { return e.auto }

// Skip reports whether skip mode is on.
func (e *Engine) Skip() bool { return e.skip }

// Mode returns the current state.
func (e *Engine) Mode() Mode {
	switch {
	case e.replaying:
		return ModeReplaying
	case len(e.choices) > 0:
		return ModeChoicePending
	case e.commandsRunning():
		return ModeCommandsRunning
	case e.reveal.active:
		return ModeTextRevealing
	case e.autoArmed:
		return ModeAutoPlayCountdown
	}
	return ModeAwaitingInput
}

// Finished reports whether Advance ran past the last line.
func (e *Engine) Finished() bool { return e.finished }

// Pointer returns the index of the current line.
func (e *Engine) Pointer() int { return e.pointer }

// LinesPlayed returns how many times a line was played since New.
func (e *Engine) LinesPlayed() int { return e.lines }

// Script returns the loaded script, or nil.
func (e *Engine) Script() *script.Store { return e.script }

// State returns a copy of the presentation state.
func (e *Engine) State() *stage.State { return e.state.Clone() }

// Flags returns the live flag set.
func (e *Engine) Flags() *flags.Set { return e.flags }

// History returns a copy of the dialogue log.
func (e *Engine) History() []HistoryEntry { return slices.Clone(e.history) }

// Choices returns the pending options.
func (e *Engine) Choices() []command.Option { return slices.Clone(e.choices) }

// Registry returns the command registry.
func (e *Engine) Registry() *command.Registry { return e.registry }

// Presenter returns the presentation collaborator.
func (e *Engine) Presenter() stage.Presenter { return e.presenter }

// Dialogue returns the speaker and text of the current line after inheritance.
func (e *Engine) Dialogue() (speaker, text string) {
	return e.state.LastSpeaker, e.state.LastText
}

// liveEnv is the command.Env handed to live command execution.
type liveEnv struct{ e *Engine }

func (v liveEnv) Flags() *flags.Set               { return v.e.flags }
func (v liveEnv) Stage() *stage.State             { return v.e.state }
func (v liveEnv) Logger() *slog.Logger            { return v.e.logger }
func (v liveEnv) Presenter() stage.Presenter      { return v.e.presenter }
func (v liveEnv) JumpTo(id string) bool           { return v.e.jumpFromCommand(id) }
func (v liveEnv) OfferChoices(o []command.Option) { v.e.offerChoices(o) }
func (v liveEnv) AssetGuard() time.Duration       { return v.e.settings.AssetGuard }

// simEnv is the command.SimEnv used during replay.
type simEnv struct {
	state  *stage.State
	flags  *flags.Set
	logger *slog.Logger
}

func (v simEnv) Flags() *flags.Set    { return v.flags }
func (v simEnv) Stage() *stage.State  { return v.state }
func (v simEnv) Logger() *slog.Logger { return v.logger }
