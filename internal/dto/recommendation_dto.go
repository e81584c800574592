package dto

import (
	"time"
)

type FiltersDTO struct {
	Origin          *string  `json:"origin,omitempty"`
	Category        *string  `json:"category,omitempty"`
	FlavorProfiles  []string `json:"flavor_profiles,omitempty" validate:"omitempty,max=10,dive,max=50"`
	DietaryFeatures []string `json:"dietary_features,omitempty" validate:"omitempty,max=10,dive,max=50"`
	PriceMin        *float64 `json:"price_min,omitempty" validate:"omitempty,gte=0"`
	PriceMax        *float64 `json:"price_max,omitempty" validate:"omitempty,gte=0"`
}

type ChatTurnRequest struct {
	SessionId string      `json:"session_id" validate:"omitempty,max=64"`
	Message   string      `json:"message" validate:"required,max=2000"`
	TopK      int         `json:"top_k" validate:"omitempty,gte=1,lte=50"`
	Filters   *FiltersDTO `json:"filters,omitempty"`
}

type ChatTurnResponse struct {
	SessionId   string                 `json:"session_id"`
	Agent       string                 `json:"agent"`
	Reply       string                 `json:"reply"`
	Filters     FiltersDTO             `json:"filters"`
	Items       []RankedItemResponse   `json:"items"`
	Preferences map[string]interface{} `json:"preferences"`
}

type RetrieveRequest struct {
	Query   string      `json:"query" validate:"required,max=2000"`
	TopK    int         `json:"top_k" validate:"omitempty,gte=1,lte=50"`
	Filters *FiltersDTO `json:"filters,omitempty"`
}

type RetrieveResponse struct {
	Items []RankedItemResponse `json:"items"`
}

type RankedItemResponse struct {
	Id              string   `json:"id"`
	Title           string   `json:"title"`
	Origin          string   `json:"origin,omitempty"`
	Category        string   `json:"category,omitempty"`
	Price           *float64 `json:"price"`
	Tags            []string `json:"tags"`
	FlavorProfiles  []string `json:"flavor_profiles"`
	DietaryFeatures []string `json:"dietary_features"`
	Distance        float64  `json:"distance"`
}

type VisionMatchResponse struct {
	VisionDescription string               `json:"vision_description"`
	Matches           []RankedItemResponse `json:"matches"`
}

type ChatMessageResponse struct {
	Role      string                 `json:"role"`
	Content   string                 `json:"content"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// PublishIndexMenuItemMessage is the payload of an INDEX_MENU_ITEM job.
type PublishIndexMenuItemMessage struct {
	MenuItemId string `json:"menu_item_id"`
}

type IndexCatalogResponse struct {
	Indexed int `json:"indexed"`
	Skipped int `json:"skipped"`
}

// SeedMenuItem is one entry of a catalog seed file.
type SeedMenuItem struct {
	Id              string   `yaml:"id"`
	Title           string   `yaml:"title" validate:"required"`
	Description     string   `yaml:"description"`
	ImageUrl        *string  `yaml:"image_url"`
	Origin          string   `yaml:"origin"`
	Category        string   `yaml:"category"`
	Tags            []string `yaml:"tags"`
	FlavorProfiles  []string `yaml:"flavor_profiles"`
	DietaryFeatures []string `yaml:"dietary_features"`
	Price           *float64 `yaml:"price" validate:"omitempty,gte=0"`
	Available       *bool    `yaml:"available"`
}

type SeedCatalogFile struct {
	Items []SeedMenuItem `yaml:"items" validate:"dive"`
}
