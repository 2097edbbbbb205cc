package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"memento/internal/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/line/line-bot-sdk-go/v7/linebot"
)

type fakeBot struct {
	events   []*linebot.Event
	parseErr error
	replies  map[string]string
}

func (b *fakeBot) ParseRequest(*http.Request) ([]*linebot.Event, error) {
	return b.events, b.parseErr
}

func (b *fakeBot) SendMessages(replyToken string, messages ...linebot.SendingMessage) error {
	if b.replies == nil {
		b.replies = map[string]string{}
	}
	b.replies[replyToken] = messages[0].(*linebot.TextMessage).Text
	return nil
}

func textEvent(token, userID, text string) *linebot.Event {
	return &linebot.Event{
		Type:       linebot.EventTypeMessage,
		ReplyToken: token,
		Source:     &linebot.EventSource{Type: linebot.EventSourceTypeUser, UserID: userID},
		Message:    &linebot.TextMessage{Text: text},
	}
}

func newLineHandler(t *testing.T) *LineHandler {
	t.Helper()
	users, reminders := newServices(t)
	return NewLineHandler(&fakeBot{}, users, reminders, logger.NewNop())
}

func replyText(t *testing.T, msg linebot.SendingMessage) string {
	t.Helper()
	text, ok := msg.(*linebot.TextMessage)
	if !ok {
		t.Fatalf("reply is %T, want a text message", msg)
	}
	return text.Text
}

func TestLineCommands(t *testing.T) {
	h := newLineHandler(t)
	ctx := context.Background()

	steps := []struct {
		input string
		want  string
	}{
		{"in 3 hours | stretch", "set your timezone"},
		{"tz Mars/Base", "not a valid timezone"},
		{"tz eastern", "US/Eastern"},
		{"tz", "Your timezone is US/Eastern"},
		{"in 3 hours | stretch", "11:00"},
		{"in 2 days | standup", "standup"},
		{"list", "1. ["},
		{"delete 5", "no such reminder"},
		{"delete 1", "stretch"},
		{"clear", "Removed 1 reminders"},
		{"list", "no pending reminders"},
		{"remind me later", "How to use"},
		{"help", "tz <zone>"},
	}
	for _, s := range steps {
		got := replyText(t, h.handleCommand(ctx, "U1", s.input))
		if !strings.Contains(got, s.want) {
			t.Fatalf("%q replied %q, want it to contain %q", s.input, got, s.want)
		}
	}
}

func TestLineWebhookRepliesPerEvent(t *testing.T) {
	users, reminders := newServices(t)
	bot := &fakeBot{events: []*linebot.Event{
		textEvent("t1", "U1", "tz UTC"),
		textEvent("t2", "U1", "5 | tea"),
		{Type: linebot.EventTypeFollow, ReplyToken: "t3", Source: &linebot.EventSource{UserID: "U2"}},
	}}
	h := NewLineHandler(bot, users, reminders, logger.NewNop())

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/callback", nil), rec)
	if err := h.HandleWebhook(c); err != nil {
		t.Fatalf("HandleWebhook error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(bot.replies["t1"], "UTC") || !strings.Contains(bot.replies["t2"], "12:05") {
		t.Fatalf("unexpected replies %+v", bot.replies)
	}
	if !strings.Contains(bot.replies["t3"], "timezone") {
		t.Fatalf("follow reply = %q", bot.replies["t3"])
	}

	list, _ := reminders.ListUserReminders(context.Background(), "U1")
	if len(list) != 1 || list[0].Text != "tea" {
		t.Fatalf("reminders = %+v", list)
	}
}

func TestLineWebhookRejectsBadSignature(t *testing.T) {
	users, reminders := newServices(t)
	h := NewLineHandler(&fakeBot{parseErr: linebot.ErrInvalidSignature}, users, reminders, logger.NewNop())

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodPost, "/callback", nil), rec)
	if err := h.HandleWebhook(c); err != nil {
		t.Fatalf("HandleWebhook error = %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
