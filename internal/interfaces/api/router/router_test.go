package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"memento/internal/application/dto"
	"memento/internal/application/service"
	"memento/internal/application/store"
	"memento/internal/domain/constant"
	"memento/internal/infrastructure/database/sqlite"
	"memento/internal/interfaces/api/handler"
	"memento/internal/pkg/clock"
	"memento/internal/pkg/logger"
	"memento/internal/pkg/timeparse"

	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
)

func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()
	log := logger.NewNop()
	db, err := sqlite.NewDB(sqlite.MemoryDSN, log)
	if err != nil {
		t.Fatalf("NewDB error = %v", err)
	}
	t.Cleanup(func() { sqlite.CloseDB(db) })

	clk := clock.NewFixed(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	repo := sqlite.NewReminderRepository(db, log)
	resolver, err := timeparse.New(clk, timeparse.Options{DefaultUnit: "minutes", MinDuration: time.Minute})
	if err != nil {
		t.Fatalf("timeparse.New error = %v", err)
	}
	users := service.NewUserService(sqlite.NewUserConfigRepository(db), log)
	reminders := service.NewReminderService(
		store.New(constant.OwnerUser, repo, clk, log),
		store.New(constant.OwnerRole, repo, clk, log),
		users, resolver, 1000, log,
	)
	return NewRouter(&Config{
		ReminderHandler: handler.NewReminderHandler(users, reminders, log),
		Logger:          log,
	})
}

func do(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestUserReminderAPI(t *testing.T) {
	e := newTestRouter(t)

	if rec := do(t, e, http.MethodGet, "/users/alice/timezone", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("timezone before set = %d", rec.Code)
	}
	if rec := do(t, e, http.MethodPost, "/users/alice/reminders", `{"time":"in 3 hours","text":"stretch"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("create without timezone = %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, e, http.MethodPut, "/users/alice/timezone", `{"timezone":"pacific"}`); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "US/Pacific") {
		t.Fatalf("set timezone = %d %s", rec.Code, rec.Body.String())
	}

	rec := do(t, e, http.MethodPost, "/users/alice/reminders", `{"command":"in 3 hours | stretch"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d %s", rec.Code, rec.Body.String())
	}
	var created dto.ReminderResponse
	if err := jsoniter.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if !created.DueAt.Equal(time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)) || created.Timezone != "US/Pacific" {
		t.Fatalf("created = %+v", created)
	}

	if rec := do(t, e, http.MethodPost, "/users/alice/reminders", `{"time":"yesterday","text":"late"}`); rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "past") {
		t.Fatalf("past reminder = %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, e, http.MethodPost, "/users/alice/reminders", `{"time":"10 seconds","text":"soon"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("too short reminder = %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, e, http.MethodGet, "/users/alice/reminders", "")
	var list []dto.ReminderResponse
	if err := jsoniter.Unmarshal(rec.Body.Bytes(), &list); err != nil || len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("list = %s (%v)", rec.Body.String(), err)
	}

	if rec := do(t, e, http.MethodDelete, "/users/alice/reminders/"+created.ID, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete = %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, e, http.MethodDelete, "/users/alice/reminders/"+created.ID, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete = %d", rec.Code)
	}
	if rec := do(t, e, http.MethodDelete, "/users/alice/reminders", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("clear = %d", rec.Code)
	}
}

func TestRoleReminderAPI(t *testing.T) {
	e := newTestRouter(t)
	do(t, e, http.MethodPut, "/users/mod/timezone", `{"timezone":"UTC"}`)

	if rec := do(t, e, http.MethodPost, "/roles/devs/channels/general/reminders", `{"time":"1h","text":"standup"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("create without creator = %d", rec.Code)
	}
	for _, path := range []string{"/roles/devs/channels/general/reminders", "/roles/qa/channels/general/reminders", "/roles/devs/channels/ops/reminders"} {
		if rec := do(t, e, http.MethodPost, path, `{"created_by":"mod","time":"1h","text":"sync"}`); rec.Code != http.StatusCreated {
			t.Fatalf("create %s = %d %s", path, rec.Code, rec.Body.String())
		}
	}

	var list []dto.ReminderResponse
	rec := do(t, e, http.MethodGet, "/roles/devs/reminders", "")
	if err := jsoniter.Unmarshal(rec.Body.Bytes(), &list); err != nil || len(list) != 2 {
		t.Fatalf("role list = %s (%v)", rec.Body.String(), err)
	}
	rec = do(t, e, http.MethodGet, "/channels/general/reminders", "")
	if err := jsoniter.Unmarshal(rec.Body.Bytes(), &list); err != nil || len(list) != 2 {
		t.Fatalf("channel list = %s (%v)", rec.Body.String(), err)
	}

	var opsID string
	rec = do(t, e, http.MethodGet, "/roles/devs/reminders", "")
	if err := jsoniter.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("role list: %v", err)
	}
	for _, r := range list {
		if r.ChannelID == "ops" {
			opsID = r.ID
		}
	}
	if rec := do(t, e, http.MethodDelete, "/roles/devs/channels/ops/reminders/"+opsID, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete = %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, e, http.MethodDelete, "/roles/devs/channels/ops/reminders/"+opsID, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete = %d", rec.Code)
	}
	rec = do(t, e, http.MethodGet, "/roles/devs/reminders", "")
	if err := jsoniter.Unmarshal(rec.Body.Bytes(), &list); err != nil || len(list) != 1 || list[0].ChannelID != "general" {
		t.Fatalf("role list after delete = %s (%v)", rec.Body.String(), err)
	}
}
