package entity

import "time"

// ChannelMember is one (user, channel) membership row. The composite primary
// key is what makes join idempotent at the storage level: a user either has
// the row or does not.
type ChannelMember struct {
	UserUUID    UUID      `gorm:"primaryKey" json:"userId"`
	ChannelUUID UUID      `gorm:"primaryKey" json:"channelId"`
	JoinedAt    time.Time `gorm:"not null" json:"joinedAt"`
}
