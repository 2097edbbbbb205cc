package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"memento/internal/application/dto"
	"memento/internal/application/service"
	"memento/internal/domain/entity"
	appErrors "memento/internal/pkg/errors"
	"memento/internal/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/line/line-bot-sdk-go/v7/linebot"
)

const howToUse = `How to use:
• <time> | <message>  create a reminder, e.g. "in 3 hours | call mom" or "tomorrow 9am | standup"
• tz <zone>  set your timezone, e.g. "tz US/Eastern" (required before creating reminders)
• tz  show your timezone
• list  show your pending reminders
• delete <number or id>  remove one reminder
• clear  remove all of your reminders`

// LineBot is the part of the LINE client the webhook needs.
type LineBot interface {
	ParseRequest(r *http.Request) ([]*linebot.Event, error)
	SendMessages(replyToken string, messages ...linebot.SendingMessage) error
}

// LineHandler handles incoming LINE webhook events.
type LineHandler struct {
	lineClient      LineBot
	userService     service.UserService
	reminderService service.ReminderService
	log             logger.Logger
}

// NewLineHandler creates a new LineHandler.
func NewLineHandler(
	lineClient LineBot,
	userService service.UserService,
	reminderService service.ReminderService,
	log logger.Logger,
) *LineHandler {
	return &LineHandler{
		lineClient:      lineClient,
		userService:     userService,
		reminderService: reminderService,
		log:             log.WithField("handler", "line"),
	}
}

// HandleWebhook is the main entry point for webhook requests.
func (h *LineHandler) HandleWebhook(c echo.Context) error {
	ctx := c.Request().Context()
	events, err := h.lineClient.ParseRequest(c.Request())
	if err != nil {
		if errors.Is(err, linebot.ErrInvalidSignature) {
			h.log.Warn("Invalid LINE signature received")
			return c.String(http.StatusBadRequest, "Invalid signature")
		}
		h.log.Error("Failed to parse LINE webhook request", err)
		return c.String(http.StatusInternalServerError, "Error parsing request")
	}

	for _, event := range events {
		if event.Source == nil || event.Source.UserID == "" {
			continue
		}
		h.log.Debug(fmt.Sprintf("Processing event type: %s", event.Type))
		switch event.Type {
		case linebot.EventTypeMessage:
			h.handleMessageEvent(ctx, event)
		case linebot.EventTypeFollow:
			h.reply(event.ReplyToken, helpMessage("Thanks for adding me! Start by setting your timezone."))
		case linebot.EventTypeUnfollow:
			h.handleUnfollowEvent(ctx, event)
		default:
			h.log.Debug(fmt.Sprintf("Unhandled event type: %s", event.Type))
		}
	}

	return c.String(http.StatusOK, "OK")
}

// handleUnfollowEvent drops the reminders of a user who blocked the bot, since
// they can no longer be delivered.
func (h *LineHandler) handleUnfollowEvent(ctx context.Context, event *linebot.Event) {
	userID := event.Source.UserID
	n, err := h.reminderService.ClearUserReminders(ctx, userID)
	if err != nil {
		h.log.Error(fmt.Sprintf("Failed to clear reminders of unfollowed user %s", userID), err)
		return
	}
	h.log.Info(fmt.Sprintf("User %s unfollowed, removed %d reminders", userID, n))
}

func (h *LineHandler) handleMessageEvent(ctx context.Context, event *linebot.Event) {
	message, ok := event.Message.(*linebot.TextMessage)
	if !ok {
		h.reply(event.ReplyToken, linebot.NewTextMessage("Please send a text command. Type \"help\" for usage."))
		return
	}
	h.reply(event.ReplyToken, h.handleCommand(ctx, event.Source.UserID, message.Text))
}

// handleCommand runs one text command and returns the reply.
func (h *LineHandler) handleCommand(ctx context.Context, userID, text string) linebot.SendingMessage {
	text = strings.TrimSpace(text)
	name, arg, _ := strings.Cut(text, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "help":
		return helpMessage("")
	case "tz", "timezone":
		if arg == "" {
			tz, err := h.userService.GetTimezone(ctx, userID)
			if err != nil {
				return h.errorMessage(err)
			}
			return linebot.NewTextMessage(fmt.Sprintf("Your timezone is %s.", tz))
		}
		tz, err := h.userService.SetTimezone(ctx, userID, arg)
		if err != nil {
			return h.errorMessage(err)
		}
		return linebot.NewTextMessage(fmt.Sprintf("Your timezone is now %s.", tz))
	case "list":
		list, err := h.reminderService.ListUserReminders(ctx, userID)
		if err != nil {
			return h.errorMessage(err)
		}
		return linebot.NewTextMessage(dto.FormatReminderList(list))
	case "delete", "del":
		if arg == "" {
			return linebot.NewTextMessage("Tell me which reminder to delete, e.g. \"delete 1\".")
		}
		deleted, err := h.reminderService.DeleteReminder(ctx, entity.UserOwner(userID), arg)
		if err != nil {
			return h.errorMessage(err)
		}
		return linebot.NewTextMessage(fmt.Sprintf("Deleted reminder \"%s\".", deleted.Text))
	case "clear":
		n, err := h.reminderService.ClearUserReminders(ctx, userID)
		if err != nil {
			return h.errorMessage(err)
		}
		return linebot.NewTextMessage(fmt.Sprintf("Removed %d reminders.", n))
	}

	created, err := h.reminderService.CreateUserReminder(ctx, dto.CreateUserReminderRequest{
		UserID:  userID,
		Command: text,
	})
	if err != nil {
		if errors.Is(err, appErrors.ErrUnparseableCommand) {
			return helpMessage(err.Error() + ".")
		}
		return h.errorMessage(err)
	}
	return linebot.NewTextMessage(fmt.Sprintf("I will remind you on %s: %s", created.LocalDue, created.Text))
}

func helpMessage(preface string) linebot.SendingMessage {
	text := howToUse
	if preface != "" {
		text = preface + "\n\n" + howToUse
	}
	return linebot.NewTextMessage(text).WithQuickReplies(
		linebot.NewQuickReplyItems(
			linebot.NewQuickReplyButton("", linebot.NewMessageAction("list", "list")),
			linebot.NewQuickReplyButton("", linebot.NewMessageAction("help", "help")),
		),
	)
}

func (h *LineHandler) errorMessage(err error) linebot.SendingMessage {
	if !appErrors.IsUserError(err) && !errors.Is(err, appErrors.ErrReminderNotFound) {
		h.log.Error("Command failed", err)
	}
	return linebot.NewTextMessage(appErrors.UserMessage(err) + ".")
}

func (h *LineHandler) reply(replyToken string, message linebot.SendingMessage) {
	if err := h.lineClient.SendMessages(replyToken, message); err != nil {
		h.log.Error("Failed to send reply message", err)
	}
}
