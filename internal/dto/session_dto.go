package dto

import (
	"time"

	"github.com/google/uuid"
)

type SessionSettings struct {
	AllowQuestions   bool `json:"allow_questions"`
	AllowScreenShare bool `json:"allow_screen_share"`
	AutoRecord       bool `json:"auto_record"`
}

type CreateSessionRequest struct {
	Title                string           `json:"title" validate:"required,max=200"`
	Description          string           `json:"description" validate:"required,max=2000"`
	ScheduledStart       time.Time        `json:"scheduled_start" validate:"required"`
	ScheduledEnd         time.Time        `json:"scheduled_end" validate:"required"`
	StreamPlatform       string           `json:"stream_platform" validate:"required,oneof=youtube twitch discord other zoom teams"`
	StreamURL            string           `json:"stream_url" validate:"required,url"`
	ThumbnailURL         string           `json:"thumbnail_url" validate:"required,url"`
	Category             string           `json:"category" validate:"omitempty,oneof=podcast interview panel workshop qna other"`
	Tags                 []string         `json:"tags" validate:"omitempty,dive,max=50"`
	AccessLevel          string           `json:"access_level" validate:"omitempty,oneof=public private invite_only"`
	MaxParticipants      int              `json:"max_participants" validate:"omitempty,min=1,max=10000"`
	RequiresRegistration bool             `json:"requires_registration"`
	Settings             *SessionSettings `json:"settings"`
}

type UpdateSessionRequest struct {
	Title                *string          `json:"title" validate:"omitempty,max=200"`
	Description          *string          `json:"description" validate:"omitempty,max=2000"`
	ScheduledStart       *time.Time       `json:"scheduled_start"`
	ScheduledEnd         *time.Time       `json:"scheduled_end"`
	StreamPlatform       *string          `json:"stream_platform" validate:"omitempty,oneof=youtube twitch discord other zoom teams"`
	StreamURL            *string          `json:"stream_url" validate:"omitempty,url"`
	ThumbnailURL         *string          `json:"thumbnail_url" validate:"omitempty,url"`
	RecordingURL         *string          `json:"recording_url" validate:"omitempty,url"`
	Category             *string          `json:"category" validate:"omitempty,oneof=podcast interview panel workshop qna other"`
	Tags                 []string         `json:"tags" validate:"omitempty,dive,max=50"`
	AccessLevel          *string          `json:"access_level" validate:"omitempty,oneof=public private invite_only"`
	MaxParticipants      *int             `json:"max_participants" validate:"omitempty,min=1,max=10000"`
	RequiresRegistration *bool            `json:"requires_registration"`
	ChatEnabled          *bool            `json:"chat_enabled"`
	RecordingEnabled     *bool            `json:"recording_enabled"`
	MonetizationEnabled  *bool            `json:"monetization_enabled"`
	Settings             *SessionSettings `json:"settings"`
}

type JoinSessionRequest struct {
	Role string `json:"role" validate:"omitempty,oneof=speaker listener moderator"`
}

type SessionListQuery struct {
	Category     string
	AccessLevel  string
	Search       string
	UpcomingOnly bool
	Page         int
	Limit        int
}

type ParticipantResponse struct {
	UserId   uuid.UUID `json:"user_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

type SessionResponse struct {
	Id                   uuid.UUID             `json:"id"`
	HostId               uuid.UUID             `json:"host_id"`
	Title                string                `json:"title"`
	Description          string                `json:"description"`
	ScheduledStart       time.Time             `json:"scheduled_start"`
	ScheduledEnd         time.Time             `json:"scheduled_end"`
	IsLive               bool                  `json:"is_live"`
	IsRecorded           bool                  `json:"is_recorded"`
	IsCancelled          bool                  `json:"is_cancelled"`
	StreamPlatform       string                `json:"stream_platform"`
	StreamURL            string                `json:"stream_url"`
	ThumbnailURL         string                `json:"thumbnail_url"`
	RecordingURL         *string               `json:"recording_url,omitempty"`
	DurationMinutes      int                   `json:"duration"`
	MaxParticipants      int                   `json:"max_participants"`
	Category             string                `json:"category"`
	Tags                 []string              `json:"tags"`
	AccessLevel          string                `json:"access_level"`
	RequiresRegistration bool                  `json:"requires_registration"`
	RegistrationCount    int                   `json:"registration_count"`
	ActualStartTime      *time.Time            `json:"actual_start_time,omitempty"`
	ActualEndTime        *time.Time            `json:"actual_end_time,omitempty"`
	ViewerCount          int                   `json:"viewer_count"`
	ChatEnabled          bool                  `json:"chat_enabled"`
	RecordingEnabled     bool                  `json:"recording_enabled"`
	MonetizationEnabled  bool                  `json:"monetization_enabled"`
	Settings             SessionSettings       `json:"settings"`
	Participants         []ParticipantResponse `json:"participants"`
	CreatedAt            time.Time             `json:"created_at"`
}
