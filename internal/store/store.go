package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/md-faizanahmad/quick-tracker/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned by Get when no record has the given id.
var ErrNotFound = gorm.ErrRecordNotFound

// ChangeKind tells a subscriber what happened to a record.
type ChangeKind string

const (
	ChangePut    ChangeKind = "put"
	ChangeDelete ChangeKind = "delete"
)

// Change is delivered to subscribers after a committed write.
type Change struct {
	Kind ChangeKind
	ID   string
}

// Store is the durable local table of expense records. It is the single
// owner of persisted state: the sync engine only reads snapshots from it
// and flips the synced flag through it.
type Store struct {
	db *gorm.DB

	mu     sync.Mutex
	subs   map[int]func(Change)
	nextID int
}

func New(db *gorm.DB) *Store {
	return &Store{
		db:   db,
		subs: make(map[int]func(Change)),
	}
}

// Subscribe registers a change listener and returns its unsubscribe
// function. Listeners are called synchronously after each committed write.
func (s *Store) Subscribe(fn func(Change)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify(ch Change) {
	s.mu.Lock()
	fns := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(ch)
	}
}

// Put upserts a record by id: an existing row is replaced in full, a new
// id inserts. The caller is responsible for preserving id and date across
// edits and for resetting the synced flag.
func (s *Store) Put(rec *models.ExpenseRecord) error {
	if err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(rec).Error; err != nil {
		return fmt.Errorf("put record: %w", err)
	}
	s.notify(Change{Kind: ChangePut, ID: rec.ID})
	return nil
}

// Delete removes the record entirely. No tombstone is kept; deleting an
// unknown id is not an error. There is deliberately no guard against an
// in-flight sync of the same id — MarkSynced tolerates the race.
func (s *Store) Delete(id string) error {
	if err := s.db.Delete(&models.ExpenseRecord{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	s.notify(Change{Kind: ChangeDelete, ID: id})
	return nil
}

// Get fetches one record by id, returning ErrNotFound when absent.
func (s *Store) Get(id string) (*models.ExpenseRecord, error) {
	var rec models.ExpenseRecord
	if err := s.db.First(&rec, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetAll returns a full snapshot ordered by date descending for display.
func (s *Store) GetAll() ([]models.ExpenseRecord, error) {
	var recs []models.ExpenseRecord
	if err := s.db.Order("date DESC, id DESC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return recs, nil
}

// GetUnsynced returns the current pending set, oldest first, consistent
// as of a single read.
func (s *Store) GetUnsynced() ([]models.ExpenseRecord, error) {
	var recs []models.ExpenseRecord
	if err := s.db.Where("synced = ?", false).Order("date ASC, id ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list unsynced records: %w", err)
	}
	return recs, nil
}

// MarkSynced flips one record to synced inside a single transaction.
// If the record was deleted while its batch was in flight this is a
// no-op: the delete wins and the record is never recreated.
func (s *Store) MarkSynced(id string) error {
	changed, err := s.setSynced(id, true)
	if err != nil {
		return err
	}
	if changed {
		s.notify(Change{Kind: ChangePut, ID: id})
	}
	return nil
}

// MarkPending flips one record back to pending. Idempotent if the record
// is already pending; no-op if it no longer exists.
func (s *Store) MarkPending(id string) error {
	changed, err := s.setSynced(id, false)
	if err != nil {
		return err
	}
	if changed {
		s.notify(Change{Kind: ChangePut, ID: id})
	}
	return nil
}

func (s *Store) setSynced(id string, synced bool) (bool, error) {
	changed := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var rec models.ExpenseRecord
		if err := tx.First(&rec, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if rec.Synced == synced {
			return nil
		}
		if err := tx.Model(&rec).Update("synced", synced).Error; err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("set synced: %w", err)
	}
	return changed, nil
}
