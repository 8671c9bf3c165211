// Package badger stores saved workflows in an embedded BadgerDB.
//
// Workflows live under workflow/<id> and their summaries under
// summary/<id>, both JSON encoded and written in one transaction.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/canicai/canicai/pkg/persist"
	"github.com/canicai/canicai/pkg/store"
)

const (
	workflowPrefix = "workflow/"
	summaryPrefix  = "summary/"
)

// Store implements store.Store on BadgerDB.
type Store struct {
	db      *badger.DB
	nowFunc func() time.Time
}

// Open opens or creates a database in dir. An empty dir opens an
// in-memory database that is discarded on Close.
func Open(dir string) (*Store, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", dir, err)
		}
		opts = badger.DefaultOptions(dir)
	}
	db, err := badger.Open(opts.WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Store{db: db, nowFunc: time.Now}, nil
}

func (s *Store) Load(ctx context.Context, id string) (*persist.SavedWorkflow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(workflowPrefix + id))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("badger: load %s: %w", id, err)
	}
	return persist.Unmarshal(data)
}

func (s *Store) Save(ctx context.Context, saved *persist.SavedWorkflow) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if saved.ID == "" {
		return fmt.Errorf("badger: workflow has no id")
	}
	data, err := json.Marshal(saved)
	if err != nil {
		return fmt.Errorf("badger: marshal workflow: %w", err)
	}
	summary, err := json.Marshal(store.SummaryOf(saved, s.nowFunc()))
	if err != nil {
		return fmt.Errorf("badger: marshal summary: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(workflowPrefix+saved.ID), data); err != nil {
			return err
		}
		return txn.Set([]byte(summaryPrefix+saved.ID), summary)
	})
	if err != nil {
		return fmt.Errorf("badger: save %s: %w", saved.ID, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]store.Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []store.Summary{}
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(summaryPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var sum store.Summary
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &sum)
			}); err != nil {
				return fmt.Errorf("parse summary %s: %w", it.Item().Key(), err)
			}
			out = append(out, sum)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badger: list: %w", err)
	}
	store.SortSummaries(out)
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(workflowPrefix + id)); err != nil {
			return err
		}
		return txn.Delete([]byte(summaryPrefix + id))
	})
	if err != nil {
		return fmt.Errorf("badger: delete %s: %w", id, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

var _ store.Store = (*Store)(nil)
