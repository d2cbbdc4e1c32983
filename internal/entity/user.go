package entity

import "time"

type UUID = string

// User is the internal record behind an identity issued by the external
// auth provider. ExternalID is the stable reference the provider hands us;
// it is unique, so syncing the same identity twice never duplicates a row.
type User struct {
	UUID       UUID      `gorm:"primaryKey" json:"id"`
	ExternalID string    `gorm:"uniqueIndex;not null" json:"externalId"`
	Name       string    `json:"name"`
	ImageURL   string    `json:"imageUrl"`
	CreatedAt  time.Time `gorm:"not null;index" json:"createdAt"`
}
