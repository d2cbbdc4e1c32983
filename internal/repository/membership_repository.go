package repository

import (
	"time"

	"hivechat/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MembershipRepository interface {
	Create(userUUID, channelUUID entity.UUID) error
	Delete(userUUID, channelUUID entity.UUID) error
	Exists(userUUID, channelUUID entity.UUID) (bool, error)
}

type SQLiteMembershipRepository struct {
	db *gorm.DB
}

func NewSQLiteMembershipRepository(db *gorm.DB) MembershipRepository {
	return &SQLiteMembershipRepository{db}
}

// Create is idempotent: the composite primary key makes a second join for
// the same (user, channel) a no-op instead of a duplicate row.
func (repo *SQLiteMembershipRepository) Create(userUUID, channelUUID entity.UUID) error {
	membership := &entity.ChannelMember{
		UserUUID:    userUUID,
		ChannelUUID: channelUUID,
		JoinedAt:    time.Now(),
	}
	return repo.db.Clauses(clause.OnConflict{DoNothing: true}).Create(membership).Error
}

// Delete is idempotent: deleting a membership that is not there is a no-op.
func (repo *SQLiteMembershipRepository) Delete(userUUID, channelUUID entity.UUID) error {
	return repo.db.
		Where("user_uuid = ? AND channel_uuid = ?", userUUID, channelUUID).
		Delete(&entity.ChannelMember{}).Error
}

func (repo *SQLiteMembershipRepository) Exists(userUUID, channelUUID entity.UUID) (bool, error) {
	var count int64
	err := repo.db.Model(&entity.ChannelMember{}).
		Where("user_uuid = ? AND channel_uuid = ?", userUUID, channelUUID).
		Count(&count).Error
	return count > 0, err
}
