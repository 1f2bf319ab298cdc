package storage

// Item is one namespaced blob, the equivalent of a single local storage key.
type Item struct {
	Key              string `gorm:"column:storage_key;primaryKey;size:190;not null"`
	Value            string `gorm:"column:value;type:text;not null"`
	UpdatedAtSeconds int64  `gorm:"column:updated_at_s;not null;default:0"`
}

// TableName provides the explicit table binding for GORM.
func (Item) TableName() string {
	return "local_storage"
}
