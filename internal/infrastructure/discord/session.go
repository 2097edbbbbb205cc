package discord

import (
	"memento/internal/pkg/logger"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

// OpenSession connects a bot session. Only outbound messages are sent, so no
// privileged intents are requested.
func OpenSession(token string, log logger.Logger) (*discordgo.Session, error) {
	if token == "" {
		return nil, errors.New("discord token must be set")
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create discord session")
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsDirectMessages
	session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		log.WithField("user", r.User.Username).Info("Connected to discord")
	})
	if err := session.Open(); err != nil {
		return nil, errors.Wrap(err, "failed to open discord session")
	}
	return session, nil
}
