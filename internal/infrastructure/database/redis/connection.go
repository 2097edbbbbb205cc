package redis

import (
	"fmt"

	"memento/internal/pkg/logger"

	goredis "github.com/go-redis/redis"
	"github.com/pkg/errors"
)

// KeyPrefix namespaces every key written by this package.
const KeyPrefix = "memento:"

// NewClient connects to Redis and checks the connection with a PING.
func NewClient(addr, password string, db int, log logger.Logger) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping().Err(); err != nil {
		client.Close()
		return nil, errors.Wrapf(err, "failed to connect to redis at %s", addr)
	}
	log.Info(fmt.Sprintf("Connected to redis %s db %d", addr, db))
	return client, nil
}
