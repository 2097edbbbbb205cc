package handler

import (
	"testing"
	"time"
	_ "time/tzdata"

	"memento/internal/application/service"
	"memento/internal/application/store"
	"memento/internal/domain/constant"
	"memento/internal/infrastructure/database/sqlite"
	"memento/internal/pkg/clock"
	"memento/internal/pkg/logger"
	"memento/internal/pkg/timeparse"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newServices(t *testing.T) (service.UserService, service.ReminderService) {
	t.Helper()
	log := logger.NewNop()
	db, err := sqlite.NewDB(sqlite.MemoryDSN, log)
	if err != nil {
		t.Fatalf("NewDB error = %v", err)
	}
	t.Cleanup(func() { sqlite.CloseDB(db) })

	clk := clock.NewFixed(testNow)
	reminderRepo := sqlite.NewReminderRepository(db, log)
	resolver, err := timeparse.New(clk, timeparse.Options{DefaultUnit: "minutes"})
	if err != nil {
		t.Fatalf("timeparse.New error = %v", err)
	}
	users := service.NewUserService(sqlite.NewUserConfigRepository(db), log)
	reminders := service.NewReminderService(
		store.New(constant.OwnerUser, reminderRepo, clk, log),
		store.New(constant.OwnerRole, reminderRepo, clk, log),
		users, resolver, 1000, log,
	)
	return users, reminders
}
