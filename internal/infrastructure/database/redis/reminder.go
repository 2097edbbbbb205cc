package redis

import (
	"context"
	"fmt"

	"memento/internal/domain/constant"
	"memento/internal/domain/entity"
	"memento/internal/domain/repository"
	"memento/internal/pkg/logger"

	goredis "github.com/go-redis/redis"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack"
)

type reminderRepository struct {
	client *goredis.Client
	log    logger.Logger
}

// NewReminderRepository creates a ReminderRepository keeping one hash per owner kind,
// with a msgpack encoded reminder list per owner.
func NewReminderRepository(client *goredis.Client, log logger.Logger) repository.ReminderRepository {
	return &reminderRepository{client: client, log: log}
}

func remindersKey(kind constant.OwnerKind) string {
	return KeyPrefix + "reminders:" + kind.String()
}

func encodeRecords(records []entity.Record) ([]byte, error) {
	return msgpack.Marshal(records)
}

func decodeRecords(b []byte) ([]entity.Record, error) {
	var records []entity.Record
	if err := msgpack.Unmarshal(b, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// GetAll retrieves every reminder list of the given kind. Undecodable lists are
// logged and skipped.
func (r *reminderRepository) GetAll(ctx context.Context, kind constant.OwnerKind) (map[string][]entity.Record, error) {
	raw, err := r.client.WithContext(ctx).HGetAll(remindersKey(kind)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s reminders", kind)
	}
	out := make(map[string][]entity.Record, len(raw))
	for ownerKey, value := range raw {
		records, err := decodeRecords([]byte(value))
		if err != nil {
			r.log.Error(fmt.Sprintf("Skipping undecodable reminder list of %s %s", kind, ownerKey), err)
			continue
		}
		out[ownerKey] = records
	}
	return out, nil
}

// Get retrieves the reminder list of one owner.
func (r *reminderRepository) Get(ctx context.Context, owner entity.Owner) ([]entity.Record, error) {
	b, err := r.client.WithContext(ctx).HGet(remindersKey(owner.Kind), owner.Key()).Bytes()
	if err == goredis.Nil {
		return []entity.Record{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load reminders of %s", owner)
	}
	records, err := decodeRecords(b)
	if err != nil {
		return nil, errors.Wrapf(err, "reminders of %s are not valid msgpack", owner)
	}
	return records, nil
}

// SetList replaces the reminder list of one owner. An empty list removes the field.
func (r *reminderRepository) SetList(ctx context.Context, owner entity.Owner, records []entity.Record) error {
	client := r.client.WithContext(ctx)
	if len(records) == 0 {
		err := client.HDel(remindersKey(owner.Kind), owner.Key()).Err()
		return errors.Wrapf(err, "failed to clear reminders of %s", owner)
	}
	b, err := encodeRecords(records)
	if err != nil {
		return errors.Wrapf(err, "failed to encode reminders of %s", owner)
	}
	err = client.HSet(remindersKey(owner.Kind), owner.Key(), b).Err()
	return errors.Wrapf(err, "failed to save reminders of %s", owner)
}
