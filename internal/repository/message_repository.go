package repository

import (
	"time"

	"hivechat/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(channelUUID, userUUID entity.UUID, content string) (*entity.Message, error)
	GetByUUID(uuid string) (*entity.Message, error)
	ListBefore(channelUUID entity.UUID, before time.Time, limit int) ([]*entity.Message, error)
	UpdateContent(uuid string, content string) (*entity.Message, error)
	SoftDelete(uuid string) (*entity.Message, error)
}

type SQLiteMessageRepository struct {
	db *gorm.DB
}

func NewSQLiteMessageRepository(db *gorm.DB) MessageRepository {
	return &SQLiteMessageRepository{db}
}

func (repo *SQLiteMessageRepository) Create(channelUUID, userUUID entity.UUID, content string) (*entity.Message, error) {
	message := &entity.Message{
		UUID:        uuid.New().String(),
		ChannelUUID: channelUUID,
		UserUUID:    userUUID,
		Content:     content,
		CreatedAt:   time.Now(),
	}
	if err := repo.db.Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

func (repo *SQLiteMessageRepository) GetByUUID(messageUUID string) (*entity.Message, error) {
	var message entity.Message
	err := repo.db.Where("uuid = ?", messageUUID).First(&message).Error
	return &message, err
}

// ListBefore pages backwards through a channel's history. A zero "before"
// means the newest page. It fetches the newest rows older than the cursor
// and hands them back in ascending creation order.
func (repo *SQLiteMessageRepository) ListBefore(channelUUID entity.UUID, before time.Time, limit int) ([]*entity.Message, error) {
	query := repo.db.Where("channel_uuid = ?", channelUUID)
	if !before.IsZero() {
		query = query.Where("created_at < ?", before)
	}

	var messages []*entity.Message
	err := query.Order("created_at DESC").Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (repo *SQLiteMessageRepository) UpdateContent(messageUUID string, content string) (*entity.Message, error) {
	now := time.Now()
	err := repo.db.Model(&entity.Message{}).
		Where("uuid = ?", messageUUID).
		Updates(map[string]any{"content": content, "updated_at": now}).Error
	if err != nil {
		return nil, err
	}
	return repo.GetByUUID(messageUUID)
}

// SoftDelete flips the deleted flag and replaces the content with the
// sentinel. The row stays around so history keeps its place.
func (repo *SQLiteMessageRepository) SoftDelete(messageUUID string) (*entity.Message, error) {
	now := time.Now()
	err := repo.db.Model(&entity.Message{}).
		Where("uuid = ?", messageUUID).
		Updates(map[string]any{"deleted": true, "content": entity.DeletedContent, "updated_at": now}).Error
	if err != nil {
		return nil, err
	}
	return repo.GetByUUID(messageUUID)
}
