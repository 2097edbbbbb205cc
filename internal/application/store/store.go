package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"memento/internal/domain/constant"
	"memento/internal/domain/entity"
	"memento/internal/domain/repository"
	"memento/internal/pkg/clock"
	appErrors "memento/internal/pkg/errors"
	"memento/internal/pkg/logger"
)

// ReminderStore caches every pending reminder of one owner kind and keeps the cache
// in step with the repository. Each mutation rewrites the owner's whole list while
// holding the store lock, and leaves the cache untouched when the write fails.
type ReminderStore struct {
	kind  constant.OwnerKind
	repo  repository.ReminderRepository
	clock clock.Clock
	log   logger.Logger

	mu    sync.Mutex
	lists map[string][]*entity.Reminder
}

// New creates a new instance of ReminderStore for reminders of the given kind.
func New(kind constant.OwnerKind, repo repository.ReminderRepository, clk clock.Clock, log logger.Logger) *ReminderStore {
	return &ReminderStore{
		kind:  kind,
		repo:  repo,
		clock: clk,
		log:   log.WithField("store", kind.String()),
		lists: make(map[string][]*entity.Reminder),
	}
}

// Kind returns the owner kind this store holds.
func (s *ReminderStore) Kind() constant.OwnerKind {
	return s.kind
}

// Load replaces the cache with everything the repository holds for this kind.
// Records that cannot be decoded are logged and skipped.
func (s *ReminderStore) Load(ctx context.Context) error {
	all, err := s.repo.GetAll(ctx, s.kind)
	if err != nil {
		s.log.Error("Failed to load reminders", err)
		return fmt.Errorf("%w: %v", appErrors.ErrDatabaseOperation, err)
	}

	lists := make(map[string][]*entity.Reminder, len(all))
	total := 0
	for key, records := range all {
		owner, err := entity.ParseOwnerKey(s.kind, key)
		if err != nil {
			s.log.Error(fmt.Sprintf("Skipping reminders stored under invalid key %q", key), err)
			continue
		}
		list := make([]*entity.Reminder, 0, len(records))
		for _, rec := range records {
			r, err := entity.FromRecord(owner, rec)
			if err != nil {
				s.log.Error(fmt.Sprintf("Skipping undecodable reminder of %s", owner), err)
				continue
			}
			list = append(list, r)
		}
		if len(list) == 0 {
			continue
		}
		lists[key] = list
		total += len(list)
	}

	s.mu.Lock()
	s.lists = lists
	s.mu.Unlock()

	s.log.Info(fmt.Sprintf("Loaded %d reminders for %d owners", total, len(lists)))
	return nil
}

// Create adds a reminder to the owner's list and persists the list.
func (s *ReminderStore) Create(ctx context.Context, owner entity.Owner, createdBy string, dueAt time.Time, text, timezone string) (*entity.Reminder, error) {
	if owner.Kind != s.kind {
		return nil, fmt.Errorf("%w: %s reminder given to the %s store", appErrors.ErrInvalidOwner, owner.Kind, s.kind)
	}
	if err := owner.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", appErrors.ErrInvalidOwner, err)
	}

	dueAt = dueAt.UTC().Truncate(time.Second)

	s.mu.Lock()
	defer s.mu.Unlock()

	key := owner.Key()
	current := s.lists[key]

	r := &entity.Reminder{
		ID:        uniqueID(current, text, dueAt, createdBy),
		Owner:     owner,
		CreatedBy: createdBy,
		DueAt:     dueAt,
		CreatedAt: s.clock.Now().UTC().Truncate(time.Second),
		Text:      text,
		Timezone:  timezone,
	}

	next := make([]*entity.Reminder, len(current), len(current)+1)
	copy(next, current)
	next = append(next, r)

	if err := s.repo.SetList(ctx, owner, toRecords(next)); err != nil {
		s.log.Error(fmt.Sprintf("Failed to persist new reminder for %s", owner), err)
		return nil, fmt.Errorf("%w: %v", appErrors.ErrDatabaseOperation, err)
	}
	s.lists[key] = next

	s.log.Debug(fmt.Sprintf("Created reminder %s for %s due %s", r.ID, owner, r.DueAt.Format(entity.TimestampFormat)))
	cp := *r
	return &cp, nil
}

// List returns the owner's pending reminders in creation order.
func (s *ReminderStore) List(owner entity.Owner) []*entity.Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyList(s.lists[owner.Key()])
}

// Find resolves ref against the owner's list. ref is either a reminder id or a
// 1-based position; ids are tried first.
func (s *ReminderStore) Find(owner entity.Owner, ref string) (*entity.Reminder, error) {
	ref = strings.TrimSpace(ref)

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.lists[owner.Key()]
	for _, r := range list {
		if r.ID == ref {
			cp := *r
			return &cp, nil
		}
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(list) {
		cp := *list[n-1]
		return &cp, nil
	}
	return nil, fmt.Errorf("%w: %q", appErrors.ErrReminderNotFound, ref)
}

// Delete removes the reminder from its owner's list. Deleting a reminder that is not
// there is a no-op.
func (s *ReminderStore) Delete(ctx context.Context, r *entity.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := r.Owner.Key()
	current := s.lists[key]
	idx := -1
	for i, existing := range current {
		if existing.ID == r.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	next := make([]*entity.Reminder, 0, len(current)-1)
	next = append(next, current[:idx]...)
	next = append(next, current[idx+1:]...)

	if err := s.repo.SetList(ctx, r.Owner, toRecords(next)); err != nil {
		s.log.Error(fmt.Sprintf("Failed to persist deletion of reminder %s", r.ID), err)
		return fmt.Errorf("%w: %v", appErrors.ErrDatabaseOperation, err)
	}
	s.replace(key, next)
	return nil
}

// Clear removes every reminder of the owner and returns how many were removed. An owner
// missing from the cache is looked up in the repository, so records written by another
// process sharing the backend are cleared too.
func (s *ReminderStore) Clear(ctx context.Context, owner entity.Owner) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := owner.Key()
	n := len(s.lists[key])
	if n == 0 {
		persisted, err := s.repo.Get(ctx, owner)
		if err != nil {
			s.log.Error(fmt.Sprintf("Failed to read reminders of %s", owner), err)
			return 0, fmt.Errorf("%w: %v", appErrors.ErrDatabaseOperation, err)
		}
		if len(persisted) == 0 {
			return 0, nil
		}
		n = len(persisted)
	}
	if err := s.repo.SetList(ctx, owner, nil); err != nil {
		s.log.Error(fmt.Sprintf("Failed to clear reminders of %s", owner), err)
		return 0, fmt.Errorf("%w: %v", appErrors.ErrDatabaseOperation, err)
	}
	s.replace(key, nil)
	return n, nil
}

// AllPending returns a snapshot of every cached reminder ordered by due time.
func (s *ReminderStore) AllPending() []*entity.Reminder {
	return s.Filter(func(*entity.Reminder) bool { return true })
}

// Filter returns the cached reminders matching keep, ordered by due time.
func (s *ReminderStore) Filter(keep func(*entity.Reminder) bool) []*entity.Reminder {
	s.mu.Lock()
	out := make([]*entity.Reminder, 0)
	for _, list := range s.lists {
		for _, r := range list {
			if keep(r) {
				cp := *r
				out = append(out, &cp)
			}
		}
	}
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DueAt.Equal(out[j].DueAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].DueAt.Before(out[j].DueAt)
	})
	return out
}

// replace must be called with s.mu held.
func (s *ReminderStore) replace(key string, list []*entity.Reminder) {
	if len(list) == 0 {
		delete(s.lists, key)
		return
	}
	s.lists[key] = list
}

func uniqueID(existing []*entity.Reminder, text string, dueAt time.Time, createdBy string) string {
	taken := make(map[string]struct{}, len(existing))
	for _, r := range existing {
		taken[r.ID] = struct{}{}
	}
	for salt := 0; ; salt++ {
		id := entity.GenerateID(text, dueAt, createdBy, salt)
		if _, ok := taken[id]; !ok {
			return id
		}
	}
}

func toRecords(list []*entity.Reminder) []entity.Record {
	records := make([]entity.Record, len(list))
	for i, r := range list {
		records[i] = r.ToRecord()
	}
	return records
}

func copyList(list []*entity.Reminder) []*entity.Reminder {
	out := make([]*entity.Reminder, len(list))
	for i, r := range list {
		cp := *r
		out[i] = &cp
	}
	return out
}
