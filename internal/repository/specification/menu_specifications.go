package specification

import "gorm.io/gorm"

type AvailableOnly struct{}

func (s AvailableOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_available = ?", true)
}
