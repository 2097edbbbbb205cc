package line

import (
	"context"
	"net/http"

	"memento/internal/pkg/logger"

	"github.com/line/line-bot-sdk-go/v7/linebot"
	"github.com/pkg/errors"
)

// Client wraps the linebot.Client.
type Client struct {
	*linebot.Client
	log logger.Logger
}

// NewClient creates a LINE Messaging API client from the channel credentials.
func NewClient(channelSecret, channelToken string, log logger.Logger) (*Client, error) {
	if channelSecret == "" || channelToken == "" {
		return nil, errors.New("channel secret and access token must be set")
	}
	bot, err := linebot.New(channelSecret, channelToken)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create LINE bot client")
	}
	log.Info("Successfully created LINE Bot client.")
	return &Client{
		Client: bot,
		log:    log,
	}, nil
}

// SendMessages sends one or more messages using the ReplyMessage API.
func (c *Client) SendMessages(replyToken string, messages ...linebot.SendingMessage) error {
	if _, err := c.ReplyMessage(replyToken, messages...).Do(); err != nil {
		return err
	}
	c.log.Debug("Successfully sent reply message.")
	return nil
}

// PushMessages sends one or more messages using the PushMessage API.
func (c *Client) PushMessages(ctx context.Context, to string, messages ...linebot.SendingMessage) error {
	if _, err := c.PushMessage(to, messages...).WithContext(ctx).Do(); err != nil {
		return err
	}
	c.log.Debug("Successfully sent push message.")
	return nil
}

// ParseRequest parses incoming webhook requests and checks their signature.
func (c *Client) ParseRequest(r *http.Request) ([]*linebot.Event, error) {
	return c.Client.ParseRequest(r)
}
