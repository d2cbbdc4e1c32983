package entity

import "time"

// DeletedContent replaces the content of a soft-deleted message.
const DeletedContent = "[deleted]"

type Message struct {
	UUID        UUID       `gorm:"primaryKey" json:"id"`
	ChannelUUID UUID       `gorm:"not null;index" json:"channelId"`
	UserUUID    UUID       `gorm:"not null;index" json:"userId"`
	Content     string     `gorm:"not null" json:"content"`
	CreatedAt   time.Time  `gorm:"not null;index" json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
	Deleted     bool       `gorm:"not null;default:false" json:"isDeleted"`
}
