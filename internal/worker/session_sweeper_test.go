package worker

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/tekhe/dashboard-api/internal/model"
)

type fakeSessionRepo struct {
	sessions map[uuid.UUID]*model.Session
}

func (f *fakeSessionRepo) Save(ctx context.Context, s *model.Session, ttl time.Duration) error {
	f.sessions[s.UserID] = s
	return nil
}

func (f *fakeSessionRepo) Get(ctx context.Context, userID uuid.UUID) (*model.Session, error) {
	s, ok := f.sessions[userID]
	if !ok {
		return nil, assert.AnError
	}
	return s, nil
}

func (f *fakeSessionRepo) Delete(ctx context.Context, userID uuid.UUID) error {
	delete(f.sessions, userID)
	return nil
}

func (f *fakeSessionRepo) All(ctx context.Context) ([]*model.Session, error) {
	var out []*model.Session
	for _, s := range f.sessions {
		out = append(out, s)
	}
	return out, nil
}

func TestSweepDiscardsExpiredSessions(t *testing.T) {
	repo := &fakeSessionRepo{sessions: make(map[uuid.UUID]*model.Session)}

	fresh := &model.Session{UserID: uuid.New(), LoginAt: time.Now().Add(-1 * time.Hour)}
	stale := &model.Session{UserID: uuid.New(), LoginAt: time.Now().Add(-25 * time.Hour)}
	repo.sessions[fresh.UserID] = fresh
	repo.sessions[stale.UserID] = stale

	sweeper := NewSessionSweeper(repo, 24*time.Hour, time.Minute, nil, zerolog.Nop())
	sweeper.sweep(context.Background())

	assert.Contains(t, repo.sessions, fresh.UserID)
	assert.NotContains(t, repo.sessions, stale.UserID)
}

func TestSweepKeepsSessionAtExactLifetime(t *testing.T) {
	repo := &fakeSessionRepo{sessions: make(map[uuid.UUID]*model.Session)}

	boundary := &model.Session{UserID: uuid.New(), LoginAt: time.Now().Add(-24 * time.Hour).Add(time.Second)}
	repo.sessions[boundary.UserID] = boundary

	sweeper := NewSessionSweeper(repo, 24*time.Hour, time.Minute, nil, zerolog.Nop())
	sweeper.sweep(context.Background())

	assert.Contains(t, repo.sessions, boundary.UserID)
}
