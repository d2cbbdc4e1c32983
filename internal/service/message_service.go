package service

import (
	"errors"
	"strings"
	"time"

	"hivechat/internal/apperr"
	"hivechat/internal/entity"
	"hivechat/internal/metrics"
	"hivechat/internal/nlog"
	"hivechat/internal/realtime"
	"hivechat/internal/repository"

	"gorm.io/gorm"
)

// PageSize is how many messages a single history fetch returns.
const PageSize = 30

// MembershipGuard authorizes posting. The channel service implements it;
// the check always hits durable state.
type MembershipGuard interface {
	CanPost(userUUID, channelUUID entity.UUID) (bool, error)
}

// MessagePayload is the denormalized message shape that goes both into
// HTTP responses and into fan-out events, so a subscriber and a reloading
// client always see the same fields.
type MessagePayload struct {
	ID         string     `json:"id"`
	ChannelID  string     `json:"channelId"`
	UserID     string     `json:"userId"`
	Content    string     `json:"content"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  *time.Time `json:"updatedAt"`
	IsDeleted  bool       `json:"isDeleted"`
	UserName   string     `json:"userName"`
	ExternalID string     `json:"externalId"`
}

// Service used to handle the message lifecycle: create, edit, soft delete
// and history retrieval. Creation is the one operation that spans the
// durable store and the broadcaster; the write commits strictly before
// the event fires, and a failed write means no event at all.
type MessageService interface {
	ListMessages(channelID, cursor string) ([]MessagePayload, error)
	CreateMessage(externalID, channelID, content string) (*MessagePayload, error)
	EditMessage(externalID, messageID, content string) (*MessagePayload, error)
	DeleteMessage(externalID, messageID string) (*MessagePayload, error)
}

type messageService struct {
	logger            nlog.Logger
	metrics           *metrics.Metrics
	broadcaster       Broadcaster
	guard             MembershipGuard
	userRepository    repository.UserRepository
	messageRepository repository.MessageRepository
}

func NewMessageService(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	guard MembershipGuard,
	broadcaster Broadcaster,
	m *metrics.Metrics,
	logger nlog.Logger,
) MessageService {
	return &messageService{
		logger:            logger,
		metrics:           m,
		broadcaster:       broadcaster,
		guard:             guard,
		userRepository:    userRepo,
		messageRepository: messageRepo,
	}
}

func (s *messageService) Logf(format string, v ...any) {
	s.logger.Logf(format, v...)
}

// ListMessages returns one page of history in ascending creation order.
// The cursor is the creation time of the oldest message the caller holds;
// rows strictly older than it come back. No cursor means the newest page.
// An empty page means the history is exhausted.
func (s *messageService) ListMessages(channelID, cursor string) ([]MessagePayload, error) {
	var before time.Time
	if cursor != "" {
		parsed, err := parseCursor(cursor)
		if err != nil {
			return nil, apperr.Validation("cursor is not a valid timestamp")
		}
		before = parsed
	}

	messages, err := s.messageRepository.ListBefore(channelID, before, PageSize)
	if err != nil {
		s.Logf("Could not list messages for channel %s {%v}", channelID, err)
		return nil, apperr.Internal(err)
	}

	authorIDs := make([]string, 0, len(messages))
	seen := make(map[string]bool, len(messages))
	for _, m := range messages {
		if !seen[m.UserUUID] {
			seen[m.UserUUID] = true
			authorIDs = append(authorIDs, m.UserUUID)
		}
	}
	authors, err := s.userRepository.GetManyByUUID(authorIDs)
	if err != nil {
		s.Logf("Could not resolve authors for channel %s {%v}", channelID, err)
		return nil, apperr.Internal(err)
	}

	payloads := make([]MessagePayload, 0, len(messages))
	for _, m := range messages {
		payloads = append(payloads, denormalize(m, authors[m.UserUUID]))
	}
	return payloads, nil
}

func (s *messageService) CreateMessage(externalID, channelID, content string) (*MessagePayload, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("message content is required")
	}

	author, err := s.resolveUser(externalID)
	if err != nil {
		return nil, err
	}

	canPost, err := s.guard.CanPost(author.UUID, channelID)
	if err != nil {
		return nil, err
	}
	if !canPost {
		return nil, apperr.Forbidden("join the channel before sending messages")
	}

	message, err := s.messageRepository.Create(channelID, author.UUID, content)
	if err != nil {
		s.Logf("Could not persist message in channel %s {%v}", channelID, err)
		return nil, apperr.Internal(err)
	}
	s.metrics.MessagesCreated.Inc()

	// The row is durable at this point; only now may subscribers hear
	// about it.
	payload := denormalize(message, author)
	s.broadcaster.Publish(channelID, realtime.EventMessageNew, payload)

	s.Logf("Message %s created in channel %s", message.UUID, channelID)
	return &payload, nil
}

func (s *messageService) EditMessage(externalID, messageID, content string) (*MessagePayload, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("message content is required")
	}

	editor, err := s.resolveUser(externalID)
	if err != nil {
		return nil, err
	}

	existing, err := s.resolveMessage(messageID)
	if err != nil {
		return nil, err
	}
	if existing.Deleted {
		return nil, apperr.Conflict("message was deleted and can no longer change")
	}
	if existing.UserUUID != editor.UUID {
		return nil, apperr.Forbidden("not allowed to edit this message")
	}

	updated, err := s.messageRepository.UpdateContent(messageID, content)
	if err != nil {
		s.Logf("Could not update message %s {%v}", messageID, err)
		return nil, apperr.Internal(err)
	}

	payload := denormalize(updated, editor)
	s.broadcaster.Publish(updated.ChannelUUID, realtime.EventMessageUpdated, payload)
	return &payload, nil
}

// DeleteMessage soft-deletes: the flag flips once, the content becomes the
// sentinel and the row stays. Delete and edit share one update event;
// clients tell them apart by the isDeleted field.
func (s *messageService) DeleteMessage(externalID, messageID string) (*MessagePayload, error) {
	deleter, err := s.resolveUser(externalID)
	if err != nil {
		return nil, err
	}

	existing, err := s.resolveMessage(messageID)
	if err != nil {
		return nil, err
	}
	if existing.Deleted {
		return nil, apperr.Conflict("message was already deleted")
	}
	if existing.UserUUID != deleter.UUID {
		return nil, apperr.Forbidden("not allowed to delete this message")
	}

	deleted, err := s.messageRepository.SoftDelete(messageID)
	if err != nil {
		s.Logf("Could not delete message %s {%v}", messageID, err)
		return nil, apperr.Internal(err)
	}

	payload := denormalize(deleted, deleter)
	s.broadcaster.Publish(deleted.ChannelUUID, realtime.EventMessageUpdated, payload)
	return &payload, nil
}

func (s *messageService) resolveUser(externalID string) (*entity.User, error) {
	user, err := s.userRepository.GetByExternalID(externalID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return user, nil
}

func (s *messageService) resolveMessage(messageID string) (*entity.Message, error) {
	message, err := s.messageRepository.GetByUUID(messageID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("message")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return message, nil
}

func denormalize(m *entity.Message, author *entity.User) MessagePayload {
	payload := MessagePayload{
		ID:        m.UUID,
		ChannelID: m.ChannelUUID,
		UserID:    m.UserUUID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		IsDeleted: m.Deleted,
	}
	if author != nil {
		payload.UserName = author.Name
		payload.ExternalID = author.ExternalID
	}
	return payload
}

func parseCursor(cursor string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, cursor); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, cursor)
}
