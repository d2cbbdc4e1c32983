package entity

import "time"

type Channel struct {
	UUID        UUID      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;index" json:"name"`
	Description string    `json:"description"`
	CreatedBy   UUID      `gorm:"not null" json:"createdBy"`
	CreatedAt   time.Time `gorm:"not null;index" json:"createdAt"`

	Members []ChannelMember `gorm:"foreignKey:ChannelUUID;references:UUID" json:"-"`
}
