package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"ftpmirror/config"
	"ftpmirror/mirror"
)

const runsBucket = "runs"

// RunRecord is one completed mirror run as stored in the journal.
type RunRecord struct {
	ID                 string    `json:"id"`
	RemoteRoot         string    `json:"remoteRoot"`
	LocalRoot          string    `json:"localRoot"`
	DeleteRemote       bool      `json:"deleteRemote"`
	FilesProcessed     int       `json:"filesProcessed"`
	FilesFailed        int       `json:"filesFailed"`
	DeletionsPerformed int       `json:"deletionsPerformed"`
	DeletionsFailed    int       `json:"deletionsFailed"`
	StartedAt          time.Time `json:"startedAt"`
	FinishedAt         time.Time `json:"finishedAt"`
}

// Journal stores run history in a local BoltDB file.
type Journal struct {
	db *bbolt.DB
}

// DefaultPath returns the history database path in the user's home directory.
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".ftpmirror_history.db"
	}
	return filepath.Join(homeDir, ".ftpmirror_history.db")
}

// Open opens (or creates) the journal database. The open timeout keeps two
// processes from blocking forever on the same file.
func Open(path string) (*Journal, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(runsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record stores one finished run. Keys sort by start time, so a reverse scan
// yields newest first.
func (j *Journal) Record(rec RunRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode run record: %w", err)
	}

	key := fmt.Sprintf("%020d-%s", rec.StartedAt.UnixNano(), rec.ID)
	return j.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(runsBucket))
		return b.Put([]byte(key), data)
	})
}

// Runs returns up to limit stored runs, newest first. A limit of zero or
// less returns all of them.
func (j *Journal) Runs(limit int) ([]RunRecord, error) {
	var records []RunRecord

	err := j.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(runsBucket)).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(records) >= limit {
				break
			}
			var rec RunRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("failed to decode run record %s: %w", string(k), err)
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Recorder is an event sink that persists each run to the journal when it
// finishes.
type Recorder struct {
	journal *Journal
	cfg     config.SyncConfig
}

// NewRecorder creates a sink recording finished runs for cfg.
func NewRecorder(j *Journal, cfg config.SyncConfig) *Recorder {
	return &Recorder{journal: j, cfg: cfg}
}

// Emit persists RunFinished events; all other events are ignored.
func (r *Recorder) Emit(ev mirror.Event) {
	fin, ok := ev.(mirror.RunFinished)
	if !ok {
		return
	}
	rec := RunRecord{
		RemoteRoot:         r.cfg.RemoteRoot,
		LocalRoot:          r.cfg.LocalRoot,
		DeleteRemote:       r.cfg.DeleteRemote,
		FilesProcessed:     fin.Summary.FilesProcessed,
		FilesFailed:        fin.Summary.FilesFailed,
		DeletionsPerformed: fin.Summary.DeletionsPerformed,
		DeletionsFailed:    fin.Summary.DeletionsFailed,
		StartedAt:          fin.Summary.StartedAt,
		FinishedAt:         fin.Summary.FinishedAt,
	}
	if err := r.journal.Record(rec); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to record run history: %v\n", err)
	}
}
