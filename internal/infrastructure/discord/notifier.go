package discord

import (
	"context"
	"fmt"
	"net/http"

	"memento/internal/domain/constant"
	"memento/internal/domain/entity"
	appErrors "memento/internal/pkg/errors"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

// embedColor is the accent used on reminder embeds.
const embedColor = 0xFFA500

type sender interface {
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Notifier delivers reminders through a discord bot session. User reminders are
// sent as direct messages; role reminders mention the role in their channel.
type Notifier struct {
	session sender
}

// NewNotifier creates a new instance of Notifier.
func NewNotifier(session *discordgo.Session) *Notifier {
	return &Notifier{session: session}
}

func (n *Notifier) Deliver(ctx context.Context, dest entity.Destination, r *entity.Reminder) error {
	channelID := dest.ChannelID
	if dest.Kind == constant.OwnerUser {
		ch, err := n.session.UserChannelCreate(dest.UserID, discordgo.WithContext(ctx))
		if err != nil {
			return classifyError(err)
		}
		channelID = ch.ID
	}
	if _, err := n.session.ChannelMessageSendComplex(channelID, BuildMessage(dest, r), discordgo.WithContext(ctx)); err != nil {
		return classifyError(err)
	}
	return nil
}

// BuildMessage renders the reminder embed. Only the destination role may be pinged.
func BuildMessage(dest entity.Destination, r *entity.Reminder) *discordgo.MessageSend {
	msg := &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "Reminder!",
			Description: r.Text,
			Color:       embedColor,
			Timestamp:   r.DueAt.Format(entity.TimestampFormat),
		}},
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}
	if dest.Kind == constant.OwnerRole {
		msg.Content = fmt.Sprintf("<@&%s>", dest.RoleID)
		msg.AllowedMentions.Roles = []string{dest.RoleID}
	}
	return msg
}

func classifyError(err error) error {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return errors.Wrap(err, "discord request failed")
	}
	if restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeUnknownChannel, discordgo.ErrCodeUnknownUser,
			discordgo.ErrCodeMissingAccess, discordgo.ErrCodeMissingPermissions,
			discordgo.ErrCodeCannotSendMessagesToThisUser:
			return fmt.Errorf("%w: %v", appErrors.ErrDeliveryPermanent, err)
		}
	}
	if restErr.Response != nil {
		switch code := restErr.Response.StatusCode; {
		case code == http.StatusForbidden, code == http.StatusNotFound:
			return fmt.Errorf("%w: %v", appErrors.ErrDeliveryPermanent, err)
		case code == http.StatusTooManyRequests, code >= http.StatusInternalServerError:
			return fmt.Errorf("%w: %v", appErrors.ErrDeliveryTransient, err)
		}
	}
	return errors.Wrap(err, "discord request failed")
}
