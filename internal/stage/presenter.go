package stage

import (
	"errors"
	"time"
)

var (
	// ErrTargetGone is returned by an AnimationHandle whose target was
	// destroyed while the animation was in flight.
	ErrTargetGone = errors.New("animation target no longer exists")

	// ErrMissingTarget is returned by Animate when the target does not exist.
	ErrMissingTarget = errors.New("animation target does not exist")
)

// Animation targets that always exist. Character targets are named by
// their Position string and exist only while a character is shown there.
const (
	TargetBackground = "background"
	TargetDialogue   = "dialogue"
	TargetScreen     = "screen"
)

// Presenter is the presentation collaborator. Implementations render,
// play audio and animate; the engine only tells them what to do.
//
// Calls are made from the engine goroutine only.
type Presenter interface {
	ShowCharacter(pos Position, id, emotion string)
	HideCharacter(pos Position)
	SetOrientation(pos Position, facing int)
	ChangeBackground(name string)

	PlayBGM(name string)
	StopBGM()
	PauseBGM()
	PlayVoice(ref string)
	StopVoice()
	PlaySFX(name string, volume float64)

	// RequestAudio starts loading an audio asset and returns a handle to
	// poll for readiness.
	RequestAudio(name string) AssetRequest

	SetHeadProfile(name string)
	UpdateDialogue(speaker, text string)
	// RevealText shows the first visible grapheme clusters of the current text.
	RevealText(visible int)
	SetTextStyle(style TextStyle)

	SetEffects(effects []string)
	ShowChoices(options []string)
	HideChoices()

	// Animate tweens property of target from -> to over d. It returns
	// ErrMissingTarget when the target does not exist.
	Animate(target, property string, from, to float64, d time.Duration) (AnimationHandle, error)
}

// AnimationHandle drives one animation. The caller owns the timeline:
// it calls Set with progress in [0,1] each tick and Finish at the end.
type AnimationHandle interface {
	// Set applies the tween at progress. Returns ErrTargetGone when the
	// target was destroyed.
	Set(progress float64) error
	// Finish jumps to the terminal value. Safe to call more than once.
	Finish() error
}

// AssetRequest is a pending asset load.
type AssetRequest interface {
	// Ready reports whether the asset can be used. A non-nil error means
	// the load failed for good.
	Ready() (bool, error)
}
