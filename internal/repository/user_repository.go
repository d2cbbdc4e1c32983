package repository

import (
	"time"

	"hivechat/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	Upsert(externalID, name, imageURL string) (*entity.User, error)
	GetByUUID(uuid string) (*entity.User, error)
	GetByExternalID(externalID string) (*entity.User, error)
	GetManyByUUID(uuids []string) (map[string]*entity.User, error)
}

type SQLiteUserRepository struct {
	db *gorm.DB
}

func NewSQLiteUserRepository(db *gorm.DB) UserRepository {
	return &SQLiteUserRepository{db}
}

// Upsert creates the user on the first sync and refreshes the mutable
// profile fields on every later one. ExternalID carries a unique index,
// so concurrent syncs for the same identity collapse to a single row.
func (repo *SQLiteUserRepository) Upsert(externalID, name, imageURL string) (*entity.User, error) {
	user := &entity.User{
		UUID:       uuid.New().String(),
		ExternalID: externalID,
		Name:       name,
		ImageURL:   imageURL,
		CreatedAt:  time.Now(),
	}

	err := repo.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "image_url"}),
	}).Create(user).Error
	if err != nil {
		return nil, err
	}

	return repo.GetByExternalID(externalID)
}

func (repo *SQLiteUserRepository) GetByUUID(userUUID string) (*entity.User, error) {
	var user entity.User
	err := repo.db.Where("uuid = ?", userUUID).First(&user).Error
	return &user, err
}

func (repo *SQLiteUserRepository) GetByExternalID(externalID string) (*entity.User, error) {
	var user entity.User
	err := repo.db.Where("external_id = ?", externalID).First(&user).Error
	return &user, err
}

// GetManyByUUID resolves a batch of user ids in one query, for history
// denormalization. Missing ids are simply absent from the map.
func (repo *SQLiteUserRepository) GetManyByUUID(uuids []string) (map[string]*entity.User, error) {
	if len(uuids) == 0 {
		return map[string]*entity.User{}, nil
	}

	var users []*entity.User
	if err := repo.db.Where("uuid IN ?", uuids).Find(&users).Error; err != nil {
		return nil, err
	}

	mapped := make(map[string]*entity.User, len(users))
	for _, u := range users {
		mapped[u.UUID] = u
	}
	return mapped, nil
}
