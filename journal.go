package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// saveJournal appends accepted saves as JSON lines to one zstd file per
// hour. Every record is flushed as its own zstd block, so a file that was
// never closed still decodes up to the last record.
type saveJournal struct {
	dir string
	now func() time.Time

	mu   sync.Mutex
	hour string
	file *os.File
	enc  *zstd.Encoder
}

type journalEntry struct {
	At       string          `json:"at"`
	PlayerID string          `json:"playerId"`
	Body     json.RawMessage `json:"body"`
}

func newSaveJournal(dir string) *saveJournal {
	return &saveJournal{dir: dir, now: time.Now}
}

func (j *saveJournal) Record(playerID string, body []byte) error {
	now := j.now().UTC()
	line, err := json.Marshal(journalEntry{
		At:       now.Format(time.RFC3339Nano),
		PlayerID: playerID,
		Body:     json.RawMessage(body),
	})
	if err != nil {
		return err
	}
	line = append(line, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.openLocked(now.Format("2006-01-02-15")); err != nil {
		return err
	}
	if _, err := j.enc.Write(line); err != nil {
		return err
	}
	return j.enc.Flush()
}

func (j *saveJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.closeLocked()
}

// openLocked makes sure the file for hour is the current one.
func (j *saveJournal) openLocked(hour string) error {
	if j.enc != nil && j.hour == hour {
		return nil
	}
	if err := j.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(j.dir, 0o755); err != nil {
		return err
	}
	name := filepath.Join(j.dir, fmt.Sprintf("saves-%s.jsonl.zst", hour))
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	j.file, j.enc, j.hour = f, enc, hour
	return nil
}

func (j *saveJournal) closeLocked() error {
	if j.enc == nil {
		return nil
	}
	encErr := j.enc.Close()
	fileErr := j.file.Close()
	j.file, j.enc, j.hour = nil, nil, ""
	if encErr != nil {
		return encErr
	}
	return fileErr
}
