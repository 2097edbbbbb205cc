package service

import (
	"context"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"memento/internal/application/store"
	"memento/internal/domain/constant"
	"memento/internal/domain/entity"
	"memento/internal/domain/repository"
	"memento/internal/infrastructure/scheduler"
	"memento/internal/pkg/clock"
	"memento/internal/pkg/logger"
	"memento/internal/pkg/timeparse"
)

type memReminderRepo struct {
	mu      sync.Mutex
	data    map[constant.OwnerKind]map[string][]entity.Record
	failSet error
}

func newMemReminderRepo() *memReminderRepo {
	return &memReminderRepo{data: map[constant.OwnerKind]map[string][]entity.Record{}}
}

func (m *memReminderRepo) GetAll(_ context.Context, kind constant.OwnerKind) (map[string][]entity.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string][]entity.Record{}
	for k, v := range m.data[kind] {
		out[k] = append([]entity.Record(nil), v...)
	}
	return out, nil
}

func (m *memReminderRepo) Get(_ context.Context, owner entity.Owner) ([]entity.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.Record(nil), m.data[owner.Kind][owner.Key()]...), nil
}

func (m *memReminderRepo) SetList(_ context.Context, owner entity.Owner, records []entity.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet != nil {
		return m.failSet
	}
	if m.data[owner.Kind] == nil {
		m.data[owner.Kind] = map[string][]entity.Record{}
	}
	m.data[owner.Kind][owner.Key()] = append([]entity.Record(nil), records...)
	return nil
}

func (m *memReminderRepo) setFailure(err error) {
	m.mu.Lock()
	m.failSet = err
	m.mu.Unlock()
}

type memUserRepo struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{data: map[string]string{}}
}

func (m *memUserRepo) FindAll(_ context.Context) ([]*entity.UserConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.UserConfig, 0, len(m.data))
	for id, tz := range m.data {
		out = append(out, &entity.UserConfig{UserID: id, Timezone: tz})
	}
	return out, nil
}

func (m *memUserRepo) FindByUserID(_ context.Context, userID string) (*entity.UserConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tz, ok := m.data[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &entity.UserConfig{UserID: userID, Timezone: tz}, nil
}

func (m *memUserRepo) Save(_ context.Context, cfg *entity.UserConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[cfg.UserID] = cfg.Timezone
	return nil
}

type delivery struct {
	dest entity.Destination
	id   string
	text string
}

// recordingNotifier records deliveries. respond, when set, decides the outcome per reminder.
type recordingNotifier struct {
	mu         sync.Mutex
	deliveries []delivery
	respond    func(r *entity.Reminder) error
}

func (n *recordingNotifier) Deliver(_ context.Context, dest entity.Destination, r *entity.Reminder) error {
	n.mu.Lock()
	n.deliveries = append(n.deliveries, delivery{dest: dest, id: r.ID, text: r.Text})
	respond := n.respond
	n.mu.Unlock()
	if respond != nil {
		return respond(r)
	}
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.deliveries)
}

type fixture struct {
	clock     *clock.Fixed
	repo      *memReminderRepo
	userRepo  *memUserRepo
	userStore *store.ReminderStore
	roleStore *store.ReminderStore
	notifier  *recordingNotifier
	users     UserService
	reminders ReminderService
	userScan  SchedulerService
	roleScan  SchedulerService
}

const staleness = 60 * time.Minute

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	log := logger.NewNop()
	f := &fixture{
		clock:    clock.NewFixed(now),
		repo:     newMemReminderRepo(),
		userRepo: newMemUserRepo(),
		notifier: &recordingNotifier{},
	}
	f.userStore = store.New(constant.OwnerUser, f.repo, f.clock, log)
	f.roleStore = store.New(constant.OwnerRole, f.repo, f.clock, log)

	resolver, err := timeparse.New(f.clock, timeparse.Options{DefaultUnit: "minutes"})
	if err != nil {
		t.Fatalf("timeparse.New error = %v", err)
	}
	f.users = NewUserService(f.userRepo, log)
	f.reminders = NewReminderService(f.userStore, f.roleStore, f.users, resolver, 1000, log)

	cronScheduler := scheduler.NewScheduler(log)
	f.userScan = NewSchedulerService(cronScheduler, f.userStore, f.notifier, f.clock, 2*time.Second, staleness, log)
	f.roleScan = NewSchedulerService(cronScheduler, f.roleStore, f.notifier, f.clock, 2*time.Second, staleness, log)
	return f
}
