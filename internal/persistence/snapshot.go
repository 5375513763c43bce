// Package persistence saves and loads sessions. A snapshot is a zstd stream
// holding one JSON header line followed by the JSON body; saves are listed in
// a SQLite index next to them.
package persistence

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"chosenoffset.com/nightwood/internal/inventory"
)

// Version is the snapshot format written by this build.
const Version = 1

// Header is the first line of a snapshot, readable without decoding the body.
type Header struct {
	Version int       `json:"version"`
	Slot    string    `json:"slot"`
	Seed    int64     `json:"seed"`
	Tick    uint64    `json:"tick"`
	SavedAt time.Time `json:"saved_at"`
}

type SnapshotV1 struct {
	Header Header `json:"header"`

	Mode     string         `json:"mode"`
	Counters map[string]int `json:"counters,omitempty"`
	Clock    float64        `json:"clock"`

	Player    PlayerV1           `json:"player"`
	Inventory inventory.Contents `json:"inventory"`
	Entities  []EntityV1         `json:"entities"`
}

type PlayerV1 struct {
	Pos    [3]float64 `json:"pos"`
	Yaw    float64    `json:"yaw"`
	Pitch  float64    `json:"pitch"`
	VelY   float64    `json:"vel_y"`
	Flying bool       `json:"flying,omitempty"`
	Active int        `json:"active"`
}

// EntityV1 records the mutable part of a generated entity. Static props are
// regenerated from the seed and only their ID and kind are kept.
type EntityV1 struct {
	ID    uint64           `json:"id"`
	Kind  string           `json:"kind"`
	Pos   [3]float64       `json:"pos"`
	Yaw   float64          `json:"yaw"`
	Phase float64          `json:"phase,omitempty"`
	Open  bool             `json:"open,omitempty"`
	Items []inventory.Item `json:"items,omitempty"`
}

// ItemCount returns how many items the snapshot holds across inventory and
// containers.
func (s SnapshotV1) ItemCount() int {
	n := 0
	for _, group := range [][]inventory.Item{s.Inventory.Armor, s.Inventory.Backpack, s.Inventory.Hotbar} {
		for _, it := range group {
			if !it.Empty() {
				n++
			}
		}
	}
	for _, e := range s.Entities {
		n += len(e.Items)
	}
	return n
}

func WriteSnapshot(path string, snap SnapshotV1) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 64*1024)

	hb, err := json.Marshal(snap.Header)
	if err != nil {
		enc.Close()
		return fmt.Errorf("encode header: %w", err)
	}
	if _, err := bw.Write(append(hb, '\n')); err != nil {
		enc.Close()
		return err
	}
	if err := json.NewEncoder(bw).Encode(&snap); err != nil {
		enc.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)

	line, err := br.ReadBytes('\n')
	if err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}
	var h Header
	if err := json.Unmarshal(line, &h); err != nil {
		return snap, fmt.Errorf("decode header: %w", err)
	}
	if h.Version != Version {
		return snap, fmt.Errorf("unsupported snapshot version %d", h.Version)
	}

	if err := json.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// ReadHeader decodes only the header line of a snapshot.
func ReadHeader(path string) (Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("decode header: %w", err)
	}
	return h, nil
}
