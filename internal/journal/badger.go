package journal

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/quantmind-br/reposnap/internal/domain"
)

// ErrClosed is returned by operations on a closed journal
var ErrClosed = errors.New("journal closed")

const gcInterval = 5 * time.Minute

// BadgerJournal is a fetch audit log stored in BadgerDB.
// It records what was fetched; it never serves content back.
type BadgerJournal struct {
	db        *badger.DB
	retention time.Duration
	seq       atomic.Uint64
	stop      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
}

var _ domain.Journal = (*BadgerJournal)(nil)

// NewBadgerJournal opens (or creates) a journal
func NewBadgerJournal(opts Options) (*BadgerJournal, error) {
	var badgerOpts badger.Options

	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Directory == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			opts.Directory = filepath.Join(homeDir, ".reposnap", "journal")
		}

		if err := os.MkdirAll(opts.Directory, 0755); err != nil {
			return nil, err
		}

		badgerOpts = badger.DefaultOptions(opts.Directory)
	}

	if !opts.Logger {
		badgerOpts = badgerOpts.WithLogger(nil)
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, err
	}

	j := &BadgerJournal{
		db:        db,
		retention: opts.Retention,
		stop:      make(chan struct{}),
	}

	if !opts.InMemory {
		go j.runGC()
	}

	return j, nil
}

func (j *BadgerJournal) runGC() {
	ticker := time.NewTicker(gcInterval)
	defer ticker.Stop()
	for {
		select {
		case <-j.stop:
			return
		case <-ticker.C:
			_ = j.db.RunValueLogGC(0.5)
		}
	}
}

// Record appends rec to the journal
func (j *BadgerJournal) Record(ctx context.Context, rec *domain.FetchRecord) error {
	if j.closed.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	at := rec.FetchedAt
	if at.IsZero() {
		at = time.Now()
	}

	value, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	key := RecordKey(at, j.seq.Add(1))
	return j.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(key, value)
		if j.retention > 0 {
			e = e.WithTTL(j.retention)
		}
		return txn.SetEntry(e)
	})
}

// Recent returns up to limit records, newest first. A limit <= 0 returns all.
func (j *BadgerJournal) Recent(ctx context.Context, limit int) ([]*domain.FetchRecord, error) {
	if j.closed.Load() {
		return nil, ErrClosed
	}

	records := make([]*domain.FetchRecord, 0)
	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(recordPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(seekLast()); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if limit > 0 && len(records) >= limit {
				break
			}

			var rec domain.FetchRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			records = append(records, &rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

// Size returns the number of live records
func (j *BadgerJournal) Size() int64 {
	var count int64
	_ = j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(recordPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count
}

// Clear removes every record
func (j *BadgerJournal) Clear() error {
	return j.db.DropAll()
}

// Close releases journal resources
func (j *BadgerJournal) Close() error {
	var err error
	j.closeOnce.Do(func() {
		j.closed.Store(true)
		close(j.stop)
		err = j.db.Close()
	})
	return err
}
