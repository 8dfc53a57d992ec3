package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/scriptplay/internal/canon"
)

var (
	// ErrSlotNotFound is returned when a slot has never been written or was deleted.
	ErrSlotNotFound = errors.New("save slot not found")

	// ErrCorruptSnapshot is returned when stored bytes no longer match
	// their recorded hash, or a snapshot fails its own digest check.
	ErrCorruptSnapshot = errors.New("snapshot is corrupt")
)

// Slot describes a stored snapshot without its payload.
type Slot struct {
	Name       string `json:"slot"`
	SnapshotID string `json:"snapshot_id"`
	Script     string `json:"script"`
	LineID     string `json:"line_id"`
	Thumbnail  string `json:"thumbnail,omitempty"`
	Seq        int64  `json:"seq"`
	SavedAt    int64  `json:"saved_at"`
}

// slotHeader picks the listing fields out of a snapshot payload.
type slotHeader struct {
	ID        string `json:"id"`
	Script    string `json:"script"`
	LineID    string `json:"resume_line_id"`
	Thumbnail string `json:"thumbnail"`
	SavedAt   int64  `json:"saved_at"`
}

// SaveSnapshot writes data to slot, replacing any previous content.
// data must be a JSON object; its id, script, resume_line_id, thumbnail
// and saved_at fields feed ListSlots.
func (s *Store) SaveSnapshot(ctx context.Context, slot string, data []byte) error {
	if slot == "" {
		return fmt.Errorf("save snapshot: empty slot name")
	}
	var hdr slotHeader
	if err := json.Unmarshal(data, &hdr); err != nil {
		return fmt.Errorf("save snapshot %q: %w", slot, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO slots
		(slot, snapshot_id, script, line_id, thumbnail, payload, payload_hash, seq, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM slots), ?)
		ON CONFLICT(slot) DO UPDATE SET
			snapshot_id  = excluded.snapshot_id,
			script       = excluded.script,
			line_id      = excluded.line_id,
			thumbnail    = excluded.thumbnail,
			payload      = excluded.payload,
			payload_hash = excluded.payload_hash,
			seq          = excluded.seq,
			saved_at     = excluded.saved_at
	`,
		slot,
		hdr.ID,
		hdr.Script,
		hdr.LineID,
		hdr.Thumbnail,
		data,
		canon.Hash(canon.DomainSlot, data),
		hdr.SavedAt,
	)
	if err != nil {
		return fmt.Errorf("save snapshot %q: %w", slot, err)
	}
	return nil
}

// LoadSnapshot returns the bytes stored in slot.
func (s *Store) LoadSnapshot(ctx context.Context, slot string) ([]byte, error) {
	var data []byte
	var hash string
	err := s.db.QueryRowContext(ctx, `
		SELECT payload, payload_hash FROM slots WHERE slot = ?
	`, slot).Scan(&data, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load snapshot %q: %w", slot, ErrSlotNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %q: %w", slot, err)
	}
	if canon.Hash(canon.DomainSlot, data) != hash {
		return nil, fmt.Errorf("load snapshot %q: %w", slot, ErrCorruptSnapshot)
	}
	return data, nil
}

// ListSlots returns every slot, most recently written first.
func (s *Store) ListSlots(ctx context.Context) ([]Slot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT slot, snapshot_id, script, line_id, thumbnail, seq, saved_at
		FROM slots
		ORDER BY seq DESC, slot COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query slots: %w", err)
	}
	defer rows.Close()

	slots := []Slot{}
	for rows.Next() {
		var sl Slot
		if err := rows.Scan(&sl.Name, &sl.SnapshotID, &sl.Script, &sl.LineID, &sl.Thumbnail, &sl.Seq, &sl.SavedAt); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, sl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}
	return slots, nil
}

// DeleteSlot removes slot.
func (s *Store) DeleteSlot(ctx context.Context, slot string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM slots WHERE slot = ?`, slot)
	if err != nil {
		return fmt.Errorf("delete slot %q: %w", slot, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete slot %q: %w", slot, err)
	}
	if n == 0 {
		return fmt.Errorf("delete slot %q: %w", slot, ErrSlotNotFound)
	}
	return nil
}
