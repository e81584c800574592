package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MenuItem is owned by the catalog CRUD surface. This service only reads it
// (and seeds it in development).
type MenuItem struct {
	Id              uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title           string                      `gorm:"type:text;not null"`
	Description     string                      `gorm:"type:text"`
	ImageUrl        *string                     `gorm:"type:text"`
	Origin          string                      `gorm:"type:varchar(64);index"`
	Category        string                      `gorm:"type:varchar(64);index"`
	Tags            datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	FlavorProfiles  datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	DietaryFeatures datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Price           *float64                    `gorm:"type:numeric(10,2)"`
	IsAvailable     bool                        `gorm:"default:true;index"`
	CreatedAt       time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt       time.Time                   `gorm:"autoUpdateTime"`
}

func (MenuItem) TableName() string {
	return "menu_items"
}
