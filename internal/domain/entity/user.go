package entity

// UserConfig holds the per-user settings used when creating reminders.
type UserConfig struct {
	UserID   string `gorm:"column:user_id;primaryKey"`
	Timezone string `gorm:"column:timezone"`
}

// TableName specifies the table name for the UserConfig entity.
func (UserConfig) TableName() string {
	return "user_config"
}
