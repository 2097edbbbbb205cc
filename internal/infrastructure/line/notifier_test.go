package line

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"memento/internal/domain/entity"
	appErrors "memento/internal/pkg/errors"

	"github.com/line/line-bot-sdk-go/v7/linebot"
)

type fakePusher struct {
	to   string
	sent []linebot.SendingMessage
	err  error
}

func (f *fakePusher) PushMessages(_ context.Context, to string, messages ...linebot.SendingMessage) error {
	f.to = to
	f.sent = messages
	return f.err
}

func testReminder(owner entity.Owner) *entity.Reminder {
	return &entity.Reminder{
		ID:       "0a1b2c3d",
		Owner:    owner,
		Text:     "drink water",
		DueAt:    time.Date(2024, 1, 1, 0, 5, 0, 0, time.UTC),
		Timezone: "UTC",
	}
}

func TestDeliverPushesToRecipient(t *testing.T) {
	p := &fakePusher{}
	n := &Notifier{client: p}

	r := testReminder(entity.UserOwner("U123"))
	if err := n.Deliver(context.Background(), r.Destination(), r); err != nil {
		t.Fatalf("Deliver error = %v", err)
	}
	if p.to != "U123" || len(p.sent) != 1 {
		t.Fatalf("pushed to %q with %d messages", p.to, len(p.sent))
	}
	msg, ok := p.sent[0].(*linebot.TextMessage)
	if !ok || !strings.Contains(msg.Text, "drink water") {
		t.Fatalf("unexpected message %#v", p.sent[0])
	}

	role := testReminder(entity.RoleOwner("team", "C999"))
	if err := n.Deliver(context.Background(), role.Destination(), role); err != nil {
		t.Fatalf("Deliver error = %v", err)
	}
	if p.to != "C999" {
		t.Fatalf("role reminder pushed to %q, want the group", p.to)
	}
}

func TestDeliverClassifiesErrors(t *testing.T) {
	tests := []struct {
		err  error
		want error
	}{
		{&linebot.APIError{Code: http.StatusBadRequest}, appErrors.ErrDeliveryPermanent},
		{&linebot.APIError{Code: http.StatusForbidden}, appErrors.ErrDeliveryPermanent},
		{&linebot.APIError{Code: http.StatusTooManyRequests}, appErrors.ErrDeliveryTransient},
		{&linebot.APIError{Code: http.StatusBadGateway}, appErrors.ErrDeliveryTransient},
	}
	for _, tt := range tests {
		n := &Notifier{client: &fakePusher{err: tt.err}}
		r := testReminder(entity.UserOwner("U123"))
		if err := n.Deliver(context.Background(), r.Destination(), r); !errors.Is(err, tt.want) {
			t.Fatalf("Deliver with %v = %v, want %v", tt.err, err, tt.want)
		}
	}

	n := &Notifier{client: &fakePusher{err: errors.New("dial tcp: timeout")}}
	r := testReminder(entity.UserOwner("U123"))
	err := n.Deliver(context.Background(), r.Destination(), r)
	if err == nil || errors.Is(err, appErrors.ErrDeliveryPermanent) {
		t.Fatalf("network failure classified as %v", err)
	}
}
