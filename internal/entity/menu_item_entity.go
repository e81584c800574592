package entity

import (
	"time"

	"github.com/google/uuid"
)

type MenuItem struct {
	Id              uuid.UUID
	Title           string
	Description     string
	ImageUrl        *string
	Origin          string
	Category        string
	Tags            []string
	FlavorProfiles  []string
	DietaryFeatures []string
	Price           *float64
	IsAvailable     bool
	UpdatedAt       time.Time
}
