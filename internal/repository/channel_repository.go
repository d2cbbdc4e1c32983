package repository

import (
	"time"

	"hivechat/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChannelListing is one row of the channel directory: the channel itself
// plus the aggregates the channel list page needs.
type ChannelListing struct {
	Channel     entity.Channel
	MemberCount int64
	IsMember    bool
}

type ChannelRepository interface {
	Create(name, description string, createdBy entity.UUID) (*entity.Channel, error)
	GetByUUID(uuid string) (*entity.Channel, error)
	ListWithCounts(forUserUUID entity.UUID) ([]ChannelListing, error)
}

type SQLiteChannelRepository struct {
	db *gorm.DB
}

func NewSQLiteChannelRepository(db *gorm.DB) ChannelRepository {
	return &SQLiteChannelRepository{db}
}

func (repo *SQLiteChannelRepository) Create(name, description string, createdBy entity.UUID) (*entity.Channel, error) {
	channel := &entity.Channel{
		UUID:        uuid.New().String(),
		Name:        name,
		Description: description,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now(),
	}
	if err := repo.db.Create(channel).Error; err != nil {
		return nil, err
	}
	return channel, nil
}

func (repo *SQLiteChannelRepository) GetByUUID(channelUUID string) (*entity.Channel, error) {
	var channel entity.Channel
	err := repo.db.Where("uuid = ?", channelUUID).First(&channel).Error
	return &channel, err
}

// ListWithCounts returns every channel in creation order, each annotated
// with its member count and whether forUserUUID has joined it. An empty
// forUserUUID marks every row as not joined.
func (repo *SQLiteChannelRepository) ListWithCounts(forUserUUID entity.UUID) ([]ChannelListing, error) {
	var channels []entity.Channel
	if err := repo.db.Order("created_at ASC").Find(&channels).Error; err != nil {
		return nil, err
	}

	type countRow struct {
		ChannelUUID string
		Count       int64
	}
	var counts []countRow
	err := repo.db.Model(&entity.ChannelMember{}).
		Select("channel_uuid, count(*) as count").
		Group("channel_uuid").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	countMap := make(map[string]int64, len(counts))
	for _, row := range counts {
		countMap[row.ChannelUUID] = row.Count
	}

	memberSet := make(map[string]bool)
	if forUserUUID != "" {
		var memberships []entity.ChannelMember
		if err := repo.db.Where("user_uuid = ?", forUserUUID).Find(&memberships).Error; err != nil {
			return nil, err
		}
		for _, m := range memberships {
			memberSet[m.ChannelUUID] = true
		}
	}

	listings := make([]ChannelListing, 0, len(channels))
	for _, ch := range channels {
		listings = append(listings, ChannelListing{
			Channel:     ch,
			MemberCount: countMap[ch.UUID],
			IsMember:    memberSet[ch.UUID],
		})
	}
	return listings, nil
}
