package stage

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Call is one recorded Presenter invocation.
type Call struct {
	Op   string
	Args []string
}

// String renders the call on one line: "op arg1 arg2".
func (c Call) String() string {
	if len(c.Args) == 0 {
		return c.Op
	}
	return c.Op + " " + strings.Join(c.Args, " ")
}

// Screen mirrors what a real presenter would currently display.
type Screen struct {
	Background  string
	BGM         string
	BGMPaused   bool
	Characters  map[Position]Character
	Orientation map[Position]int
	HeadProfile string
	Speaker     string
	Text        string
	Visible     int
	Voice       string
	Style       TextStyle
	Effects     []string
	Choices     []string
	Props       map[string]float64 // last animated value per "target.property"
}

// Recorder is an in-memory Presenter. Every call is appended to Calls and
// mirrored into Screen.
//
// Asset readiness is scripted with AssetPolls: name -> number of Ready
// polls that report "not yet" (negative means never ready). Unlisted
// assets are ready immediately.
type Recorder struct {
	Calls      []Call
	Screen     Screen
	AssetPolls map[string]int

	destroyed map[string]bool
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		Screen: Screen{
			Characters:  make(map[Position]Character),
			Orientation: make(map[Position]int),
			Props:       make(map[string]float64),
		},
		AssetPolls: make(map[string]int),
		destroyed:  make(map[string]bool),
	}
}

// Trace returns every call rendered as a line.
func (r *Recorder) Trace() []string {
	out := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		out[i] = c.String()
	}
	return out
}

// Reset forgets recorded calls but keeps the screen.
func (r *Recorder) Reset() {
	r.Calls = nil
}

// Ops returns the op names of all calls, in order.
func (r *Recorder) Ops() []string {
	out := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		out[i] = c.Op
	}
	return out
}

// Count returns how many calls had op.
func (r *Recorder) Count(op string) int {
	n := 0
	for _, c := range r.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Destroy invalidates target; in-flight animations on it start failing
// with ErrTargetGone.
func (r *Recorder) Destroy(target string) {
	r.destroyed[target] = true
}

func (r *Recorder) record(op string, args ...string) {
	r.Calls = append(r.Calls, Call{Op: op, Args: args})
}

func (r *Recorder) ShowCharacter(pos Position, id, emotion string) {
	r.record("show", pos.String(), Character{ID: id, Emotion: emotion}.Cell())
	r.Screen.Characters[pos] = Character{ID: id, Emotion: emotion}
	delete(r.destroyed, pos.String())
}

func (r *Recorder) HideCharacter(pos Position) {
	r.record("hide", pos.String())
	delete(r.Screen.Characters, pos)
	r.destroyed[pos.String()] = true
}

func (r *Recorder) SetOrientation(pos Position, facing int) {
	r.record("orient", pos.String(), strconv.Itoa(facing))
	r.Screen.Orientation[pos] = facing
}

func (r *Recorder) ChangeBackground(name string) {
	r.record("background", name)
	r.Screen.Background = name
}

func (r *Recorder) PlayBGM(name string) {
	r.record("bgm.play", name)
	r.Screen.BGM = name
	r.Screen.BGMPaused = false
}

func (r *Recorder) StopBGM() {
	r.record("bgm.stop")
	r.Screen.BGM = ""
	r.Screen.BGMPaused = false
}

func (r *Recorder) PauseBGM() {
	r.record("bgm.pause")
	r.Screen.BGMPaused = true
}

func (r *Recorder) PlayVoice(ref string) {
	r.record("voice.play", ref)
	r.Screen.Voice = ref
}

func (r *Recorder) StopVoice() {
	r.record("voice.stop")
	r.Screen.Voice = ""
}

func (r *Recorder) PlaySFX(name string, volume float64) {
	r.record("sfx", name, strconv.FormatFloat(volume, 'f', -1, 64))
}

func (r *Recorder) RequestAudio(name string) AssetRequest {
	r.record("audio.request", name)
	return &recordedAsset{r: r, name: name}
}

func (r *Recorder) SetHeadProfile(name string) {
	r.record("head", name)
	r.Screen.HeadProfile = name
}

func (r *Recorder) UpdateDialogue(speaker, text string) {
	r.record("dialogue", strconv.Quote(speaker), strconv.Quote(text))
	r.Screen.Speaker = speaker
	r.Screen.Text = text
	r.Screen.Visible = 0
}

// RevealText is not recorded in Calls; it fires every tick.
func (r *Recorder) RevealText(visible int) {
	r.Screen.Visible = visible
}

func (r *Recorder) SetTextStyle(style TextStyle) {
	r.record("textstyle", style.Color, strconv.FormatFloat(style.Size, 'f', -1, 64))
	r.Screen.Style = style
}

func (r *Recorder) SetEffects(effects []string) {
	r.record("effects", strings.Join(effects, ","))
	r.Screen.Effects = append([]string(nil), effects...)
}

func (r *Recorder) ShowChoices(options []string) {
	quoted := make([]string, len(options))
	for i, o := range options {
		quoted[i] = strconv.Quote(o)
	}
	r.record("choices.show", quoted...)
	r.Screen.Choices = append([]string(nil), options...)
}

func (r *Recorder) HideChoices() {
	r.record("choices.hide")
	r.Screen.Choices = nil
}

func (r *Recorder) Animate(target, property string, from, to float64, d time.Duration) (AnimationHandle, error) {
	if !r.targetExists(target) {
		return nil, fmt.Errorf("animate %s.%s: %w", target, property, ErrMissingTarget)
	}
	r.record("animate", target, property,
		strconv.FormatFloat(from, 'f', -1, 64),
		strconv.FormatFloat(to, 'f', -1, 64),
		d.String(),
	)
	h := &recordedAnimation{r: r, target: target, property: property, from: from, to: to}
	r.Screen.Props[h.key()] = from
	return h, nil
}

func (r *Recorder) targetExists(target string) bool {
	switch target {
	case TargetBackground, TargetDialogue, TargetScreen:
		return !r.destroyed[target]
	}
	pos, ok := ParsePosition(target)
	if !ok {
		return false
	}
	_, shown := r.Screen.Characters[pos]
	return shown && !r.destroyed[pos.String()]
}

type recordedAnimation struct {
	r        *Recorder
	target   string
	property string
	from, to float64
	finished bool
}

func (h *recordedAnimation) key() string { return h.target + "." + h.property }

func (h *recordedAnimation) Set(progress float64) error {
	if h.r.destroyed[h.target] {
		return ErrTargetGone
	}
	if progress > 1 {
		progress = 1
	}
	h.r.Screen.Props[h.key()] = h.from + (h.to-h.from)*progress
	return nil
}

func (h *recordedAnimation) Finish() error {
	if h.finished {
		return nil
	}
	if h.r.destroyed[h.target] {
		return ErrTargetGone
	}
	h.finished = true
	h.r.Screen.Props[h.key()] = h.to
	h.r.record("animate.finish", h.target, h.property)
	return nil
}

type recordedAsset struct {
	r    *Recorder
	name string
}

func (a *recordedAsset) Ready() (bool, error) {
	n, ok := a.r.AssetPolls[a.name]
	if !ok || n == 0 {
		return true, nil
	}
	if n < 0 {
		return false, nil
	}
	a.r.AssetPolls[a.name] = n - 1
	return false, nil
}
