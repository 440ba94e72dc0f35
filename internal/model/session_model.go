package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SessionSettings struct {
	AllowQuestions   bool `json:"allow_questions"`
	AllowScreenShare bool `json:"allow_screen_share"`
	AutoRecord       bool `json:"auto_record"`
}

type LiveSession struct {
	Id                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	HostId               uuid.UUID `gorm:"type:uuid;not null;index"`
	Title                string    `gorm:"type:varchar(255);not null"`
	Description          string    `gorm:"type:text;not null"`
	ScheduledStart       time.Time `gorm:"not null;index"`
	ScheduledEnd         time.Time `gorm:"not null"`
	IsLive               bool      `gorm:"not null;default:false"`
	IsRecorded           bool      `gorm:"not null;default:false"`
	IsCancelled          bool      `gorm:"not null;default:false"`
	StreamPlatform       string    `gorm:"type:varchar(20);not null;default:'youtube'"`
	StreamURL            string    `gorm:"type:text;not null"`
	ThumbnailURL         string    `gorm:"type:text;not null"`
	RecordingURL         *string   `gorm:"type:text"`
	DurationMinutes      int       `gorm:"not null;default:0"`
	MaxParticipants      int       `gorm:"not null;default:100"`
	Category             string    `gorm:"type:varchar(20);not null;default:'podcast';index"`
	Tags                 datatypes.JSONSlice[string]
	AccessLevel          string `gorm:"type:varchar(20);not null;default:'public';index"`
	RequiresRegistration bool   `gorm:"not null;default:false"`
	RegistrationCount    int    `gorm:"not null;default:0"`
	ActualStartTime      *time.Time
	ActualEndTime        *time.Time
	ViewerCount          int  `gorm:"not null;default:0"`
	ChatEnabled          bool `gorm:"not null"`
	RecordingEnabled     bool `gorm:"not null"`
	MonetizationEnabled  bool `gorm:"not null;default:false"`
	Settings             datatypes.JSONType[SessionSettings]
	Participants         []SessionParticipant `gorm:"foreignKey:SessionId"`
	CreatedAt            time.Time            `gorm:"autoCreateTime"`
	UpdatedAt            time.Time            `gorm:"autoUpdateTime"`
}

func (LiveSession) TableName() string {
	return "live_sessions"
}

func (s *LiveSession) BeforeCreate(tx *gorm.DB) error {
	assignID(&s.Id)
	return nil
}

type SessionParticipant struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_session_participant"`
	UserId    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_session_participant"`
	Role      string    `gorm:"type:varchar(20);not null;default:'listener'"`
	JoinedAt  time.Time `gorm:"not null"`
}

func (SessionParticipant) TableName() string {
	return "session_participants"
}

func (p *SessionParticipant) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.Id)
	return nil
}
