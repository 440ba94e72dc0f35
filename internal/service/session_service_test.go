package service

import (
	"context"
	"testing"
	"time"

	"podcast-be/internal/dto"
	"podcast-be/internal/entity"
	"podcast-be/internal/pkg/apperror"
	"podcast-be/internal/pkg/logger"
	"podcast-be/internal/repository/unitofwork"
	"podcast-be/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionRequest(title string, start time.Time) *dto.CreateSessionRequest {
	return &dto.CreateSessionRequest{
		Title:          title,
		Description:    "Live recording of " + title,
		ScheduledStart: start,
		ScheduledEnd:   start.Add(time.Hour),
		StreamPlatform: "youtube",
		StreamURL:      "https://youtube.com/live/abc",
		ThumbnailURL:   "https://img.example.com/abc.png",
	}
}

func TestSessionCreate(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	sessions := NewSessionService(unitofwork.NewRepositoryFactory(db), logger.NewNopLogger())
	host := testutil.CreateUser(t, db, "host")

	res, err := sessions.Create(ctx, host.Id, newSessionRequest("Go Time", time.Now().Add(day)))
	require.NoError(t, err)
	assert.Equal(t, host.Id, res.HostId)
	assert.Equal(t, defaultSessionCategory, res.Category)
	assert.Equal(t, defaultSessionAccessLevel, res.AccessLevel)
	assert.Equal(t, defaultMaxParticipants, res.MaxParticipants)
	assert.True(t, res.ChatEnabled)
	assert.Empty(t, res.Participants)

	inverted := newSessionRequest("Backwards", time.Now().Add(day))
	inverted.ScheduledEnd = inverted.ScheduledStart.Add(-time.Minute)
	_, err = sessions.Create(ctx, host.Id, inverted)
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = sessions.Create(ctx, host.Id, newSessionRequest("Yesterday", time.Now().Add(-day)))
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestSessionList(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	sessions := NewSessionService(unitofwork.NewRepositoryFactory(db), logger.NewNopLogger())
	host := testutil.CreateUser(t, db, "lister")

	later, err := sessions.Create(ctx, host.Id, newSessionRequest("Rust Hour", time.Now().Add(3*day)))
	require.NoError(t, err)
	soon, err := sessions.Create(ctx, host.Id, newSessionRequest("Go Hour", time.Now().Add(day)))
	require.NoError(t, err)
	interview := newSessionRequest("Founder Interview", time.Now().Add(2*day))
	interview.Category = "interview"
	_, err = sessions.Create(ctx, host.Id, interview)
	require.NoError(t, err)
	require.NoError(t, sessions.Cancel(ctx, host.Id, false, later.Id))

	page, err := sessions.List(ctx, dto.SessionListQuery{UpcomingOnly: true})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, soon.Id, page.Items[0].Id)

	page, err = sessions.List(ctx, dto.SessionListQuery{Category: "interview"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Founder Interview", page.Items[0].Title)

	page, err = sessions.List(ctx, dto.SessionListQuery{Search: "go hour"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, soon.Id, page.Items[0].Id)
}

func TestSessionJoin(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	sessions := NewSessionService(unitofwork.NewRepositoryFactory(db), logger.NewNopLogger())
	host := testutil.CreateUser(t, db, "joinhost")
	first := testutil.CreateUser(t, db, "first")
	second := testutil.CreateUser(t, db, "second")

	req := newSessionRequest("Small Room", time.Now().Add(day))
	req.MaxParticipants = 1
	session, err := sessions.Create(ctx, host.Id, req)
	require.NoError(t, err)

	res, err := sessions.Join(ctx, first.Id, session.Id, &dto.JoinSessionRequest{Role: entity.ParticipantRoleSpeaker})
	require.NoError(t, err)
	require.Len(t, res.Participants, 1)
	assert.Equal(t, entity.ParticipantRoleSpeaker, res.Participants[0].Role)
	assert.Equal(t, 1, res.RegistrationCount)

	_, err = sessions.Join(ctx, first.Id, session.Id, nil)
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = sessions.Join(ctx, second.Id, session.Id, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session is full")

	_, err = sessions.Join(ctx, second.Id, uuid.New(), nil)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestSessionStartEnd(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	sessions := NewSessionService(unitofwork.NewRepositoryFactory(db), logger.NewNopLogger())
	host := testutil.CreateUser(t, db, "livehost")
	guest := testutil.CreateUser(t, db, "liveguest")

	session, err := sessions.Create(ctx, host.Id, newSessionRequest("Live Show", time.Now().Add(day)))
	require.NoError(t, err)

	_, err = sessions.Start(ctx, guest.Id, session.Id)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	_, err = sessions.End(ctx, host.Id, session.Id)
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	live, err := sessions.Start(ctx, host.Id, session.Id)
	require.NoError(t, err)
	assert.True(t, live.IsLive)
	require.NotNil(t, live.ActualStartTime)

	_, err = sessions.Start(ctx, host.Id, session.Id)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.True(t, apperror.Is(sessions.Cancel(ctx, host.Id, false, session.Id), apperror.KindValidation))

	// Schedule edits are ignored while live.
	moved := time.Now().Add(10 * day)
	title := "Live Show (extended)"
	updated, err := sessions.Update(ctx, host.Id, false, session.Id, &dto.UpdateSessionRequest{ScheduledStart: &moved, Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.WithinDuration(t, session.ScheduledStart, updated.ScheduledStart, time.Second)

	ended, err := sessions.End(ctx, host.Id, session.Id)
	require.NoError(t, err)
	assert.False(t, ended.IsLive)
	require.NotNil(t, ended.ActualEndTime)
	assert.Equal(t, 0, ended.DurationMinutes)
}

func TestSessionUpdate_OwnershipAndCapacity(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	sessions := NewSessionService(unitofwork.NewRepositoryFactory(db), logger.NewNopLogger())
	host := testutil.CreateUser(t, db, "updhost")
	other := testutil.CreateUser(t, db, "updother")
	listener := testutil.CreateUser(t, db, "updlistener")
	listener2 := testutil.CreateUser(t, db, "updlistener2")

	session, err := sessions.Create(ctx, host.Id, newSessionRequest("Panel", time.Now().Add(day)))
	require.NoError(t, err)
	for _, u := range []*entity.User{listener, listener2} {
		_, err := sessions.Join(ctx, u.Id, session.Id, nil)
		require.NoError(t, err)
	}

	title := "Hijacked"
	_, err = sessions.Update(ctx, other.Id, false, session.Id, &dto.UpdateSessionRequest{Title: &title})
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	one := 1
	_, err = sessions.Update(ctx, host.Id, false, session.Id, &dto.UpdateSessionRequest{MaxParticipants: &one})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	recording := "https://cdn.example.com/panel.mp3"
	res, err := sessions.Update(ctx, other.Id, true, session.Id, &dto.UpdateSessionRequest{RecordingURL: &recording})
	require.NoError(t, err)
	assert.True(t, res.IsRecorded)
	require.NotNil(t, res.RecordingURL)
	assert.Equal(t, recording, *res.RecordingURL)
}
