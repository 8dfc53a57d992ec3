package engine

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/scriptplay/internal/canon"
	"github.com/roach88/scriptplay/internal/config"
	"github.com/roach88/scriptplay/internal/script"
	"github.com/roach88/scriptplay/internal/stage"
)

var fixedNow = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

func testSettings() config.Settings {
	s := config.Defaults()
	s.TextSpeed = 0
	s.AutoPlayDelay = 100 * time.Millisecond
	s.AssetGuard = 100 * time.Millisecond
	s.MaxJumpChain = 8
	return s
}

// newTestEngine returns an engine with lines loaded under the name "test"
// and a Recorder presenter. Nothing has been played yet.
func newTestEngine(t *testing.T, lines []script.Line, opts ...Option) (*Engine, *stage.Recorder) {
	t.Helper()
	rec := stage.NewRecorder()
	base := []Option{
		WithSettings(testSettings()),
		WithPresenter(rec),
		WithLogger(slog.New(slog.DiscardHandler)),
		WithIDGenerator(NewFixedGenerator("snap-1", "snap-2", "snap-3")),
		WithNow(fixedNow),
	}
	e := New(append(base, opts...)...)
	e.SetScript(script.NewStore("test", lines))
	return e, rec
}

// settle hurries running commands until none remain.
func settle(t *testing.T, e *Engine) {
	t.Helper()
	for range 100 {
		if e.Mode() != ModeCommandsRunning {
			return
		}
		e.Advance()
	}
	t.Fatal("commands never settled")
}

// step advances to the next line, hurrying commands and reveal first.
func step(t *testing.T, e *Engine) {
	t.Helper()
	for range 100 {
		if e.Advance() {
			return
		}
		require.False(t, e.Finished(), "script ended")
		require.NotEqual(t, ModeChoicePending, e.Mode(), "stuck on a choice")
	}
	t.Fatal("advance never reached a new line")
}

func stateDigest(t *testing.T, st *stage.State) string {
	t.Helper()
	d, err := canon.Digest(canon.DomainState, st)
	require.NoError(t, err)
	return d
}
