package persistence

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"time"
)

// Store ties snapshot files in a directory to the index in the same
// directory.
type Store struct {
	dir   string
	index *Index
	now   func() time.Time
}

var slotName = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// OpenStore opens (creating if needed) the save directory dir.
func OpenStore(dir string) (*Store, error) {
	idx, err := OpenIndex(filepath.Join(dir, "index.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open save index: %w", err)
	}
	return &Store{dir: dir, index: idx, now: time.Now}, nil
}

func (s *Store) Close() error { return s.index.Close() }

// Dir returns the save directory.
func (s *Store) Dir() string { return s.dir }

// Path returns where slot's snapshot lives.
func (s *Store) Path(slot string) string {
	return filepath.Join(s.dir, slot+".nws")
}

// Save writes snap under slot and records it in the index. The header's slot
// and timestamp are filled in.
func (s *Store) Save(ctx context.Context, slot string, snap SnapshotV1) (Entry, error) {
	if !slotName.MatchString(slot) {
		return Entry{}, fmt.Errorf("invalid save slot %q", slot)
	}
	snap.Header.Version = Version
	snap.Header.Slot = slot
	snap.Header.SavedAt = s.now().UTC()

	path := s.Path(slot)
	if err := WriteSnapshot(path, snap); err != nil {
		return Entry{}, fmt.Errorf("failed to write snapshot: %w", err)
	}
	e := Entry{
		Slot:    slot,
		Path:    path,
		Seed:    snap.Header.Seed,
		Tick:    snap.Header.Tick,
		Items:   snap.ItemCount(),
		SavedAt: snap.Header.SavedAt,
	}
	if err := s.index.Record(ctx, e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Load reads the snapshot saved under slot.
func (s *Store) Load(ctx context.Context, slot string) (SnapshotV1, error) {
	e, ok, err := s.index.Lookup(ctx, slot)
	if err != nil {
		return SnapshotV1{}, err
	}
	if !ok {
		return SnapshotV1{}, fmt.Errorf("no save in slot %q", slot)
	}
	snap, err := ReadSnapshot(e.Path)
	if err != nil {
		return SnapshotV1{}, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return snap, nil
}

// List returns every indexed save, newest first.
func (s *Store) List(ctx context.Context) ([]Entry, error) { return s.index.List(ctx) }
