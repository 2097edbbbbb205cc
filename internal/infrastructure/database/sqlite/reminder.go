package sqlite

import (
	"context"
	"fmt"
	"time"

	"memento/internal/domain/constant"
	"memento/internal/domain/entity"
	"memento/internal/domain/repository"
	"memento/internal/pkg/logger"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// reminderRow stores the complete reminder list of one owner as a JSON array.
type reminderRow struct {
	Kind      string `gorm:"column:kind;primaryKey"`
	OwnerKey  string `gorm:"column:owner_key;primaryKey"`
	Reminders string `gorm:"column:reminders;type:text;not null"`
	UpdatedAt time.Time
}

func (reminderRow) TableName() string {
	return "reminder_records"
}

type reminderRepository struct {
	db  *gorm.DB
	log logger.Logger
}

// NewReminderRepository creates a new instance of ReminderRepository.
func NewReminderRepository(db *gorm.DB, log logger.Logger) repository.ReminderRepository {
	return &reminderRepository{db: db, log: log}
}

// GetAll retrieves every reminder list of the given kind. Rows that are not valid
// JSON are logged and skipped.
func (r *reminderRepository) GetAll(ctx context.Context, kind constant.OwnerKind) (map[string][]entity.Record, error) {
	var rows []reminderRow
	if err := r.db.WithContext(ctx).Where("kind = ?", kind.String()).Find(&rows).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to load %s reminders", kind)
	}

	out := make(map[string][]entity.Record, len(rows))
	for _, row := range rows {
		var records []entity.Record
		if err := json.UnmarshalFromString(row.Reminders, &records); err != nil {
			r.log.Error(fmt.Sprintf("Skipping undecodable reminder list of %s %s", kind, row.OwnerKey), err)
			continue
		}
		out[row.OwnerKey] = records
	}
	return out, nil
}

// Get retrieves the reminder list of one owner.
func (r *reminderRepository) Get(ctx context.Context, owner entity.Owner) ([]entity.Record, error) {
	var row reminderRow
	err := r.db.WithContext(ctx).
		Where("kind = ? AND owner_key = ?", owner.Kind.String(), owner.Key()).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []entity.Record{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load reminders of %s", owner)
	}

	var records []entity.Record
	if err := json.UnmarshalFromString(row.Reminders, &records); err != nil {
		return nil, errors.Wrapf(err, "reminders of %s are not valid JSON", owner)
	}
	return records, nil
}

// SetList replaces the reminder list of one owner. An empty list deletes the row.
func (r *reminderRepository) SetList(ctx context.Context, owner entity.Owner, records []entity.Record) error {
	db := r.db.WithContext(ctx)
	if len(records) == 0 {
		err := db.Where("kind = ? AND owner_key = ?", owner.Kind.String(), owner.Key()).Delete(&reminderRow{}).Error
		return errors.Wrapf(err, "failed to clear reminders of %s", owner)
	}

	encoded, err := json.MarshalToString(records)
	if err != nil {
		return errors.Wrapf(err, "failed to encode reminders of %s", owner)
	}
	row := reminderRow{
		Kind:      owner.Kind.String(),
		OwnerKey:  owner.Key(),
		Reminders: encoded,
	}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kind"}, {Name: "owner_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"reminders", "updated_at"}),
	}).Create(&row).Error
	return errors.Wrapf(err, "failed to save reminders of %s", owner)
}
