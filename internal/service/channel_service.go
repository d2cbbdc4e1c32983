package service

import (
	"errors"
	"strings"
	"time"

	"hivechat/internal/apperr"
	"hivechat/internal/entity"
	"hivechat/internal/nlog"
	"hivechat/internal/realtime"
	"hivechat/internal/repository"

	"gorm.io/gorm"
)

// ChannelSummary is a channel directory row as returned to clients.
type ChannelSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	MemberCount int64     `json:"memberCount"`
	IsMember    bool      `json:"isMember"`
}

// Service used to handle channels and memberships. It is also the
// membership guard: posting rights are always re-read from durable state,
// never cached, because a membership can disappear between a client's
// last read and its next write.
type ChannelService interface {
	ListChannels(externalID string) ([]ChannelSummary, error)                    // Lists every channel with counts and caller membership.
	CreateChannel(externalID, name, description string) (*entity.Channel, error) // Creates a channel; the creator auto-joins.
	JoinChannel(externalID, channelID string) error                              // Idempotent membership create.
	LeaveChannel(externalID, channelID string) error                             // Idempotent membership delete.
	CanPost(userUUID, channelUUID entity.UUID) (bool, error)                     // True iff a membership row exists right now.
}

type channelService struct {
	logger               nlog.Logger
	broadcaster          Broadcaster
	userRepository       repository.UserRepository
	channelRepository    repository.ChannelRepository
	membershipRepository repository.MembershipRepository
}

func NewChannelService(
	channelRepo repository.ChannelRepository,
	membershipRepo repository.MembershipRepository,
	userRepo repository.UserRepository,
	broadcaster Broadcaster,
	logger nlog.Logger,
) ChannelService {
	return &channelService{
		logger:               logger,
		broadcaster:          broadcaster,
		userRepository:       userRepo,
		channelRepository:    channelRepo,
		membershipRepository: membershipRepo,
	}
}

func (s *channelService) Logf(format string, v ...any) {
	s.logger.Logf(format, v...)
}

func (s *channelService) ListChannels(externalID string) ([]ChannelSummary, error) {
	var forUser entity.UUID
	if externalID != "" {
		user, err := s.userRepository.GetByExternalID(externalID)
		if err == nil {
			forUser = user.UUID
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Internal(err)
		}
	}

	listings, err := s.channelRepository.ListWithCounts(forUser)
	if err != nil {
		s.Logf("Could not list channels {%v}", err)
		return nil, apperr.Internal(err)
	}

	summaries := make([]ChannelSummary, 0, len(listings))
	for _, l := range listings {
		summaries = append(summaries, ChannelSummary{
			ID:          l.Channel.UUID,
			Name:        l.Channel.Name,
			Description: l.Channel.Description,
			CreatedAt:   l.Channel.CreatedAt,
			MemberCount: l.MemberCount,
			IsMember:    l.IsMember,
		})
	}
	return summaries, nil
}

func (s *channelService) CreateChannel(externalID, name, description string) (*entity.Channel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("channel name is required")
	}

	user, err := s.resolveUser(externalID)
	if err != nil {
		return nil, err
	}

	channel, err := s.channelRepository.Create(name, strings.TrimSpace(description), user.UUID)
	if err != nil {
		s.Logf("Could not create channel %q {%v}", name, err)
		return nil, apperr.Internal(err)
	}

	// Auto-join the creator. If this second write fails the channel stays
	// as a joinable orphan, which degrades gracefully.
	if err := s.membershipRepository.Create(user.UUID, channel.UUID); err != nil {
		s.Logf("Creator %s could not auto-join channel %s {%v}", user.UUID, channel.UUID, err)
	}

	s.broadcaster.PublishAll(realtime.EventChannelNew, map[string]any{
		"id":          channel.UUID,
		"name":        channel.Name,
		"description": channel.Description,
	})

	s.Logf("Channel %s created by %s", channel.UUID, user.UUID)
	return channel, nil
}

func (s *channelService) JoinChannel(externalID, channelID string) error {
	user, err := s.resolveUser(externalID)
	if err != nil {
		return err
	}
	if err := s.resolveChannel(channelID); err != nil {
		return err
	}

	if err := s.membershipRepository.Create(user.UUID, channelID); err != nil {
		s.Logf("User %s could not join channel %s {%v}", user.UUID, channelID, err)
		return apperr.Internal(err)
	}

	s.broadcaster.PublishAll(realtime.EventChannelMemberUpdate, map[string]any{
		"channelId": channelID,
	})
	return nil
}

func (s *channelService) LeaveChannel(externalID, channelID string) error {
	user, err := s.resolveUser(externalID)
	if err != nil {
		return err
	}
	if err := s.resolveChannel(channelID); err != nil {
		return err
	}

	if err := s.membershipRepository.Delete(user.UUID, channelID); err != nil {
		s.Logf("User %s could not leave channel %s {%v}", user.UUID, channelID, err)
		return apperr.Internal(err)
	}

	s.broadcaster.PublishAll(realtime.EventChannelMemberUpdate, map[string]any{
		"channelId": channelID,
	})
	return nil
}

func (s *channelService) CanPost(userUUID, channelUUID entity.UUID) (bool, error) {
	exists, err := s.membershipRepository.Exists(userUUID, channelUUID)
	if err != nil {
		return false, apperr.Internal(err)
	}
	return exists, nil
}

func (s *channelService) resolveUser(externalID string) (*entity.User, error) {
	user, err := s.userRepository.GetByExternalID(externalID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return user, nil
}

func (s *channelService) resolveChannel(channelID string) error {
	_, err := s.channelRepository.GetByUUID(channelID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("channel")
	}
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}
