package implementation_test

import (
	"context"
	"testing"
	"time"

	"podcast-be/internal/entity"
	"podcast-be/internal/repository/contract"
	"podcast-be/internal/repository/implementation"
	"podcast-be/internal/repository/specification"
	"podcast-be/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(hostId uuid.UUID, title string, start time.Time) *entity.LiveSession {
	return &entity.LiveSession{
		Id:              uuid.New(),
		HostId:          hostId,
		Title:           title,
		Description:     "A conversation about " + title,
		ScheduledStart:  start,
		ScheduledEnd:    start.Add(time.Hour),
		StreamPlatform:  "youtube",
		StreamURL:       "https://youtube.com/live/x",
		ThumbnailURL:    "https://img.example.com/x.png",
		MaxParticipants: 2,
		Category:        "podcast",
		Tags:            []string{"go"},
		AccessLevel:     "public",
		ChatEnabled:     true,
	}
}

func TestSessionRepository_Filters(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := implementation.NewSessionRepository(db)
	host := testutil.CreateUser(t, db, "host1")
	now := time.Now()

	soon := newSession(host.Id, "Gophers Weekly", now.Add(time.Hour))
	later := newSession(host.Id, "Rust Roundtable", now.Add(48*time.Hour))
	cancelled := newSession(host.Id, "Gophers Cancelled", now.Add(2*time.Hour))
	cancelled.IsCancelled = true
	for _, s := range []*entity.LiveSession{later, soon, cancelled} {
		require.NoError(t, repo.Create(ctx, s))
	}

	found, err := repo.FindAll(ctx,
		specification.NotCancelled{},
		specification.SessionSearch{Query: "GOPHERS"},
	)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, soon.Id, found[0].Id)
	assert.Equal(t, []string{"go"}, found[0].Tags)

	ordered, err := repo.FindAll(ctx, specification.NotCancelled{}, specification.OrderBy{Field: "scheduled_start"})
	require.NoError(t, err)
	require.Len(t, ordered, 2)
	assert.Equal(t, soon.Id, ordered[0].Id)

	count, err := repo.Count(ctx, specification.NotCancelled{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestSessionRepository_Participants(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := implementation.NewSessionRepository(db)
	host := testutil.CreateUser(t, db, "host2")
	guest := testutil.CreateUser(t, db, "guest2")

	session := newSession(host.Id, "Ask Me Anything", time.Now().Add(time.Hour))
	require.NoError(t, repo.Create(ctx, session))

	p := &entity.SessionParticipant{SessionId: session.Id, UserId: guest.Id, Role: entity.ParticipantRoleListener, JoinedAt: time.Now()}
	require.NoError(t, repo.AddParticipant(ctx, p))
	again := &entity.SessionParticipant{SessionId: session.Id, UserId: guest.Id, Role: entity.ParticipantRoleListener, JoinedAt: time.Now()}
	assert.ErrorIs(t, repo.AddParticipant(ctx, again), contract.ErrDuplicate)

	loaded, err := repo.FindOne(ctx, specification.ByID{ID: session.Id})
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Len(t, loaded.Participants, 1)
	assert.Equal(t, guest.Id, loaded.Participants[0].UserId)
}
