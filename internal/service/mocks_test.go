package service

import (
	"fmt"
	"sort"
	"time"

	"hivechat/internal/entity"
	"hivechat/internal/repository"

	"gorm.io/gorm"
)

type MockLogger struct{}

func (m *MockLogger) Logf(format string, v ...any) {}

type broadcastCall struct {
	ChannelID string
	Event     string
	Payload   any
}

type MockBroadcaster struct {
	calls     []broadcastCall
	onPublish func()
}

func (b *MockBroadcaster) Publish(channelID, event string, payload any) {
	if b.onPublish != nil {
		b.onPublish()
	}
	b.calls = append(b.calls, broadcastCall{channelID, event, payload})
}

func (b *MockBroadcaster) PublishAll(event string, payload any) {
	b.Publish("", event, payload)
}

type MockUserRepository struct {
	users map[string]*entity.User // keyed by external id
}

func newMockUserRepository(users ...*entity.User) *MockUserRepository {
	repo := &MockUserRepository{users: make(map[string]*entity.User)}
	for _, u := range users {
		repo.users[u.ExternalID] = u
	}
	return repo
}

func (r *MockUserRepository) Upsert(externalID, name, imageURL string) (*entity.User, error) {
	if existing, ok := r.users[externalID]; ok {
		existing.Name = name
		existing.ImageURL = imageURL
		return existing, nil
	}
	user := &entity.User{
		UUID:       fmt.Sprintf("user-%d", len(r.users)+1),
		ExternalID: externalID,
		Name:       name,
		ImageURL:   imageURL,
		CreatedAt:  time.Now(),
	}
	r.users[externalID] = user
	return user, nil
}

func (r *MockUserRepository) GetByUUID(uuid string) (*entity.User, error) {
	for _, u := range r.users {
		if u.UUID == uuid {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *MockUserRepository) GetByExternalID(externalID string) (*entity.User, error) {
	if u, ok := r.users[externalID]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *MockUserRepository) GetManyByUUID(uuids []string) (map[string]*entity.User, error) {
	mapped := make(map[string]*entity.User)
	for _, uuid := range uuids {
		if u, err := r.GetByUUID(uuid); err == nil {
			mapped[uuid] = u
		}
	}
	return mapped, nil
}

type MockChannelRepository struct {
	channels map[string]*entity.Channel
	listings []repository.ChannelListing
	failWith error
}

func newMockChannelRepository() *MockChannelRepository {
	return &MockChannelRepository{channels: make(map[string]*entity.Channel)}
}

func (r *MockChannelRepository) Create(name, description string, createdBy entity.UUID) (*entity.Channel, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	channel := &entity.Channel{
		UUID:        fmt.Sprintf("chan-%d", len(r.channels)+1),
		Name:        name,
		Description: description,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now(),
	}
	r.channels[channel.UUID] = channel
	return channel, nil
}

func (r *MockChannelRepository) GetByUUID(uuid string) (*entity.Channel, error) {
	if c, ok := r.channels[uuid]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *MockChannelRepository) ListWithCounts(forUserUUID entity.UUID) ([]repository.ChannelListing, error) {
	return r.listings, nil
}

type MockMembershipRepository struct {
	rows map[string]bool
}

func newMockMembershipRepository() *MockMembershipRepository {
	return &MockMembershipRepository{rows: make(map[string]bool)}
}

func membershipKey(userUUID, channelUUID string) string {
	return userUUID + "|" + channelUUID
}

func (r *MockMembershipRepository) Create(userUUID, channelUUID entity.UUID) error {
	r.rows[membershipKey(userUUID, channelUUID)] = true
	return nil
}

func (r *MockMembershipRepository) Delete(userUUID, channelUUID entity.UUID) error {
	delete(r.rows, membershipKey(userUUID, channelUUID))
	return nil
}

func (r *MockMembershipRepository) Exists(userUUID, channelUUID entity.UUID) (bool, error) {
	return r.rows[membershipKey(userUUID, channelUUID)], nil
}

type MockMessageRepository struct {
	messages map[string]*entity.Message
	nextID   int
	failWith error
}

func newMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{messages: make(map[string]*entity.Message)}
}

func (r *MockMessageRepository) add(m *entity.Message) {
	r.messages[m.UUID] = m
}

func (r *MockMessageRepository) Create(channelUUID, userUUID entity.UUID, content string) (*entity.Message, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	r.nextID++
	message := &entity.Message{
		UUID:        fmt.Sprintf("msg-%d", r.nextID),
		ChannelUUID: channelUUID,
		UserUUID:    userUUID,
		Content:     content,
		CreatedAt:   time.Now(),
	}
	r.messages[message.UUID] = message
	return message, nil
}

func (r *MockMessageRepository) GetByUUID(uuid string) (*entity.Message, error) {
	if m, ok := r.messages[uuid]; ok {
		copied := *m
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *MockMessageRepository) ListBefore(channelUUID entity.UUID, before time.Time, limit int) ([]*entity.Message, error) {
	var all []*entity.Message
	for _, m := range r.messages {
		if m.ChannelUUID != channelUUID {
			continue
		}
		if !before.IsZero() && !m.CreatedAt.Before(before) {
			continue
		}
		all = append(all, m)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if len(all) > limit {
		all = all[:limit]
	}
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	return all, nil
}

func (r *MockMessageRepository) UpdateContent(uuid string, content string) (*entity.Message, error) {
	m, ok := r.messages[uuid]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	now := time.Now()
	m.Content = content
	m.UpdatedAt = &now
	copied := *m
	return &copied, nil
}

func (r *MockMessageRepository) SoftDelete(uuid string) (*entity.Message, error) {
	m, ok := r.messages[uuid]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	now := time.Now()
	m.Deleted = true
	m.Content = entity.DeletedContent
	m.UpdatedAt = &now
	copied := *m
	return &copied, nil
}

type MockGuard struct {
	allowed bool
	checks  int
}

func (g *MockGuard) CanPost(userUUID, channelUUID entity.UUID) (bool, error) {
	g.checks++
	return g.allowed, nil
}
