package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/roach88/scriptplay/internal/canon"
	"github.com/roach88/scriptplay/internal/flags"
	"github.com/roach88/scriptplay/internal/stage"
	"github.com/roach88/scriptplay/internal/store"
)

// Snapshot is the resumable part of a session.
//
// The resume point is stored as a line ID plus an offset, so that it stays
// meaningful when the script file is edited above it. ResumeLineID is empty
// when no line at or before the pointer has an ID; the offset then counts
// from line 0. Pending marks a resume line that had not been played yet.
//
// Digest covers every other field in canonical JSON form.
type Snapshot struct {
	ID           string         `json:"id"`
	Script       string         `json:"script"`
	ResumeLineID string         `json:"resume_line_id"`
	ResumeOffset int            `json:"resume_offset"`
	Pending      bool           `json:"pending,omitempty"`
	State        *stage.State   `json:"state"`
	Flags        *flags.Set     `json:"flags"`
	History      []HistoryEntry `json:"history"`
	Effects      []string       `json:"effects"`
	Seq          int64          `json:"seq"`
	SavedAt      int64          `json:"saved_at"` // unix milliseconds
	Thumbnail    string         `json:"thumbnail,omitempty"`
	Digest       string         `json:"digest,omitempty"`
}

func (s *Snapshot) computeDigest() (string, error) {
	c := *s
	c.Digest = ""
	return canon.Digest(canon.DomainSnapshot, &c)
}

// Seal computes and stores the digest.
func (s *Snapshot) Seal() error {
	d, err := s.computeDigest()
	if err != nil {
		return err
	}
	s.Digest = d
	return nil
}

// Verify checks that the snapshot is complete and matches its digest.
func (s *Snapshot) Verify() error {
	if s.State == nil || s.Flags == nil || s.Script == "" {
		return fmt.Errorf("snapshot %q incomplete: %w", s.ID, store.ErrCorruptSnapshot)
	}
	if s.Digest == "" {
		return fmt.Errorf("snapshot %q has no digest: %w", s.ID, store.ErrCorruptSnapshot)
	}
	d, err := s.computeDigest()
	if err != nil {
		return err
	}
	if d != s.Digest {
		return fmt.Errorf("snapshot %q digest mismatch: %w", s.ID, store.ErrCorruptSnapshot)
	}
	return nil
}

// Marshal returns the stored JSON encoding. Strings are kept byte for
// byte; only the digest is computed over the canonical form.
func (s *Snapshot) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// DecodeSnapshot parses and verifies a snapshot.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %v: %w", err, store.ErrCorruptSnapshot)
	}
	if err := s.Verify(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Save captures the current session.
func (e *Engine) Save() (*Snapshot, error) {
	if e.script == nil {
		return nil, ErrNoScript
	}
	id, offset, ok := e.script.Anchor(e.pointer)
	if !ok {
		id, offset = "", e.pointer
	} else if e.pointer >= e.script.Len() {
		offset++
	}
	history := slices.Clone(e.history)
	if history == nil {
		history = []HistoryEntry{}
	}
	state := e.state.Clone()
	snap := &Snapshot{
		ID:           e.ids.Generate(),
		Script:       e.script.Name(),
		ResumeLineID: id,
		ResumeOffset: offset,
		Pending:      e.pending,
		State:        state,
		Flags:        e.flags.Clone(),
		History:      history,
		Effects:      slices.Clone(state.Effects),
		Seq:          e.clock.Current(),
		SavedAt:      e.now().UnixMilli(),
	}
	if e.thumbs != nil {
		path, err := e.thumbs.Capture(snap.ID)
		if err != nil {
			e.logger.Warn("thumbnail capture failed", "snapshot", snap.ID, "error", err)
		} else {
			snap.Thumbnail = path
		}
	}
	if err := snap.Seal(); err != nil {
		return nil, fmt.Errorf("seal snapshot: %w", err)
	}
	e.logger.Info("session saved", "snapshot", snap.ID, "script", snap.Script,
		"id", snap.ResumeLineID, "offset", snap.ResumeOffset)
	return snap, nil
}

// Load restores a session.
//
// The script is reloaded when its name differs from the current one. The
// resume line is located by ID and offset (an unknown ID falls back to
// line 0) and lines up to and including it are replayed; a pending resume
// line is left unplayed, for the next Advance to play. Flags, history
// and effects are then taken from the snapshot. When replay cannot
// reproduce the saved state, because the session branched through a
// choice or a jump, the saved state copy wins.
func (e *Engine) Load(snap *Snapshot) error {
	e.resetCascade()
	if err := snap.Verify(); err != nil {
		return err
	}
	if e.script == nil || e.script.Name() != snap.Script {
		st, err := e.loadScript(snap.Script)
		if err != nil {
			return err
		}
		e.SetScript(st)
	}

	idx := snap.ResumeOffset
	if snap.ResumeLineID != "" {
		if i, ok := e.resolveID(snap.ResumeLineID); ok {
			idx += i
		} else {
			idx = 0
		}
	}
	last := e.script.Len() - 1
	if snap.Pending {
		last++
	}
	idx = max(0, min(idx, last))

	e.hideChoices()
	if snap.Pending {
		e.replay(idx)
	} else {
		e.replay(idx + 1)
	}
	e.state.SetEffects(snap.Effects)
	if !sameState(e.state, snap.State) {
		e.logger.Info("replay diverged from saved state, restoring saved copy",
			"snapshot", snap.ID, "line", idx)
		*e.state = *snap.State.Clone()
		e.state.SetEffects(snap.Effects)
	}
	e.flags.Restore(snap.Flags)
	e.history = slices.Clone(snap.History)
	e.clock = NewClockAt(snap.Seq)

	e.pointer = idx
	e.finished = false
	e.materialize()
	if snap.Pending {
		e.pending = true
	} else {
		e.presentResume(idx)
	}

	e.logger.Info("session loaded", "snapshot", snap.ID, "script", snap.Script, "line", idx)
	return nil
}

func sameState(a, b *stage.State) bool {
	da, err := canon.Digest(canon.DomainState, a)
	if err != nil {
		return false
	}
	db, err := canon.Digest(canon.DomainState, b)
	if err != nil {
		return false
	}
	return da == db
}

// SaveSlot saves the session into slot through the persistence sink.
func (e *Engine) SaveSlot(ctx context.Context, slot string) (*Snapshot, error) {
	if e.persist == nil {
		return nil, ErrNoPersistence
	}
	snap, err := e.Save()
	if err != nil {
		return nil, err
	}
	data, err := snap.Marshal()
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := e.persist.SaveSnapshot(ctx, slot, data); err != nil {
		return nil, fmt.Errorf("save slot %q: %w", slot, err)
	}
	return snap, nil
}

// LoadSlot loads the session stored in slot.
func (e *Engine) LoadSlot(ctx context.Context, slot string) error {
	if e.persist == nil {
		return ErrNoPersistence
	}
	data, err := e.persist.LoadSnapshot(ctx, slot)
	if err != nil {
		return fmt.Errorf("load slot %q: %w", slot, err)
	}
	snap, err := DecodeSnapshot(data)
	if err != nil {
		return fmt.Errorf("load slot %q: %w", slot, err)
	}
	return e.Load(snap)
}
