package mapper

import (
	"podcast-be/internal/entity"
	"podcast-be/internal/model"

	"gorm.io/datatypes"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

func (m *SessionMapper) ToEntity(s *model.LiveSession) *entity.LiveSession {
	if s == nil {
		return nil
	}
	settings := s.Settings.Data()
	tags := []string(s.Tags)
	if tags == nil {
		tags = []string{}
	}
	participants := make([]entity.SessionParticipant, 0, len(s.Participants))
	for i := range s.Participants {
		participants = append(participants, *m.ParticipantToEntity(&s.Participants[i]))
	}
	return &entity.LiveSession{
		Id:                   s.Id,
		HostId:               s.HostId,
		Title:                s.Title,
		Description:          s.Description,
		ScheduledStart:       s.ScheduledStart,
		ScheduledEnd:         s.ScheduledEnd,
		IsLive:               s.IsLive,
		IsRecorded:           s.IsRecorded,
		IsCancelled:          s.IsCancelled,
		StreamPlatform:       s.StreamPlatform,
		StreamURL:            s.StreamURL,
		ThumbnailURL:         s.ThumbnailURL,
		RecordingURL:         s.RecordingURL,
		DurationMinutes:      s.DurationMinutes,
		MaxParticipants:      s.MaxParticipants,
		Category:             s.Category,
		Tags:                 tags,
		AccessLevel:          s.AccessLevel,
		RequiresRegistration: s.RequiresRegistration,
		RegistrationCount:    s.RegistrationCount,
		ActualStartTime:      s.ActualStartTime,
		ActualEndTime:        s.ActualEndTime,
		ViewerCount:          s.ViewerCount,
		ChatEnabled:          s.ChatEnabled,
		RecordingEnabled:     s.RecordingEnabled,
		MonetizationEnabled:  s.MonetizationEnabled,
		Settings: entity.SessionSettings{
			AllowQuestions:   settings.AllowQuestions,
			AllowScreenShare: settings.AllowScreenShare,
			AutoRecord:       settings.AutoRecord,
		},
		Participants: participants,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

// ToModel omits participants; they are written through their own table.
func (m *SessionMapper) ToModel(s *entity.LiveSession) *model.LiveSession {
	if s == nil {
		return nil
	}
	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}
	return &model.LiveSession{
		Id:                   s.Id,
		HostId:               s.HostId,
		Title:                s.Title,
		Description:          s.Description,
		ScheduledStart:       s.ScheduledStart,
		ScheduledEnd:         s.ScheduledEnd,
		IsLive:               s.IsLive,
		IsRecorded:           s.IsRecorded,
		IsCancelled:          s.IsCancelled,
		StreamPlatform:       s.StreamPlatform,
		StreamURL:            s.StreamURL,
		ThumbnailURL:         s.ThumbnailURL,
		RecordingURL:         s.RecordingURL,
		DurationMinutes:      s.DurationMinutes,
		MaxParticipants:      s.MaxParticipants,
		Category:             s.Category,
		Tags:                 tags,
		AccessLevel:          s.AccessLevel,
		RequiresRegistration: s.RequiresRegistration,
		RegistrationCount:    s.RegistrationCount,
		ActualStartTime:      s.ActualStartTime,
		ActualEndTime:        s.ActualEndTime,
		ViewerCount:          s.ViewerCount,
		ChatEnabled:          s.ChatEnabled,
		RecordingEnabled:     s.RecordingEnabled,
		MonetizationEnabled:  s.MonetizationEnabled,
		Settings: datatypes.NewJSONType(model.SessionSettings{
			AllowQuestions:   s.Settings.AllowQuestions,
			AllowScreenShare: s.Settings.AllowScreenShare,
			AutoRecord:       s.Settings.AutoRecord,
		}),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func (m *SessionMapper) ParticipantToEntity(p *model.SessionParticipant) *entity.SessionParticipant {
	if p == nil {
		return nil
	}
	return &entity.SessionParticipant{
		Id:        p.Id,
		SessionId: p.SessionId,
		UserId:    p.UserId,
		Role:      p.Role,
		JoinedAt:  p.JoinedAt,
	}
}

func (m *SessionMapper) ParticipantToModel(p *entity.SessionParticipant) *model.SessionParticipant {
	if p == nil {
		return nil
	}
	return &model.SessionParticipant{
		Id:        p.Id,
		SessionId: p.SessionId,
		UserId:    p.UserId,
		Role:      p.Role,
		JoinedAt:  p.JoinedAt,
	}
}
