package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	ParticipantRoleSpeaker   = "speaker"
	ParticipantRoleListener  = "listener"
	ParticipantRoleModerator = "moderator"
)

type SessionSettings struct {
	AllowQuestions   bool `json:"allow_questions"`
	AllowScreenShare bool `json:"allow_screen_share"`
	AutoRecord       bool `json:"auto_record"`
}

type LiveSession struct {
	Id                   uuid.UUID
	HostId               uuid.UUID
	Title                string
	Description          string
	ScheduledStart       time.Time
	ScheduledEnd         time.Time
	IsLive               bool
	IsRecorded           bool
	IsCancelled          bool
	StreamPlatform       string
	StreamURL            string
	ThumbnailURL         string
	RecordingURL         *string
	DurationMinutes      int
	MaxParticipants      int
	Category             string
	Tags                 []string
	AccessLevel          string
	RequiresRegistration bool
	RegistrationCount    int
	ActualStartTime      *time.Time
	ActualEndTime        *time.Time
	ViewerCount          int
	ChatEnabled          bool
	RecordingEnabled     bool
	MonetizationEnabled  bool
	Settings             SessionSettings
	Participants         []SessionParticipant
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type SessionParticipant struct {
	Id        uuid.UUID
	SessionId uuid.UUID
	UserId    uuid.UUID
	Role      string
	JoinedAt  time.Time
}

func (s *LiveSession) HasParticipant(userId uuid.UUID) bool {
	for _, p := range s.Participants {
		if p.UserId == userId {
			return true
		}
	}
	return false
}
