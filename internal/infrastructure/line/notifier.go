package line

import (
	"context"
	"fmt"
	"net/http"

	"memento/internal/application/dto"
	"memento/internal/domain/constant"
	"memento/internal/domain/entity"
	appErrors "memento/internal/pkg/errors"

	"github.com/line/line-bot-sdk-go/v7/linebot"
	"github.com/pkg/errors"
)

type pusher interface {
	PushMessages(ctx context.Context, to string, messages ...linebot.SendingMessage) error
}

// Notifier delivers reminders as LINE push messages. Personal reminders go to the
// user, role reminders to the group or room stored as the channel.
type Notifier struct {
	client pusher
}

// NewNotifier creates a new instance of Notifier.
func NewNotifier(client *Client) *Notifier {
	return &Notifier{client: client}
}

// Deliver pushes the reminder text to its destination.
func (n *Notifier) Deliver(ctx context.Context, dest entity.Destination, r *entity.Reminder) error {
	to := dest.UserID
	if dest.Kind == constant.OwnerRole {
		to = dest.ChannelID
	}
	if to == "" {
		return fmt.Errorf("%w: reminder %s has no recipient", appErrors.ErrDeliveryPermanent, r.ID)
	}

	message := linebot.NewTextMessage(FormatReminder(dest, r)).WithQuickReplies(
		linebot.NewQuickReplyItems(
			linebot.NewQuickReplyButton("", linebot.NewMessageAction("list", "list")),
		),
	)
	if err := n.client.PushMessages(ctx, to, message); err != nil {
		return classifyError(err)
	}
	return nil
}

// FormatReminder renders the push message body.
func FormatReminder(dest entity.Destination, r *entity.Reminder) string {
	text := fmt.Sprintf("⏰ Reminder: %s\n(set for %s)", r.Text, dto.FormatLocal(r.DueAt, r.Timezone))
	if dest.Kind == constant.OwnerRole {
		text = fmt.Sprintf("[%s] %s", dest.RoleID, text)
	}
	return text
}

// classifyError tells unreachable recipients apart from temporary API failures.
func classifyError(err error) error {
	var apiErr *linebot.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusBadRequest, apiErr.Code == http.StatusForbidden, apiErr.Code == http.StatusNotFound:
			return fmt.Errorf("%w: %v", appErrors.ErrDeliveryPermanent, err)
		case apiErr.Code == http.StatusTooManyRequests, apiErr.Code >= http.StatusInternalServerError:
			return fmt.Errorf("%w: %v", appErrors.ErrDeliveryTransient, err)
		}
	}
	return errors.Wrap(err, "LINE push failed")
}
