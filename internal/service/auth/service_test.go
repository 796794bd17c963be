package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tekhe/dashboard-api/internal/model"
	"github.com/tekhe/dashboard-api/internal/repository"
	"github.com/tekhe/dashboard-api/internal/service/audit"
	"github.com/tekhe/dashboard-api/pkg/auth"
	"github.com/tekhe/dashboard-api/pkg/metrics"
	"github.com/tekhe/dashboard-api/pkg/security"
)

type fakeUserRepo struct {
	users map[string]*model.User
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	f.users[user.Email] = user
	return nil
}

func (f *fakeUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, assert.AnError
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, assert.AnError
	}
	return u, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	f.users[user.Email] = user
	return nil
}

func (f *fakeUserRepo) ListByFacility(ctx context.Context, facilityID uuid.UUID) ([]*model.User, error) {
	return nil, nil
}

type fakeSessionRepo struct {
	sessions map[uuid.UUID]*model.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*model.Session)}
}

func (f *fakeSessionRepo) Save(ctx context.Context, session *model.Session, ttl time.Duration) error {
	f.sessions[session.UserID] = session
	return nil
}

func (f *fakeSessionRepo) Get(ctx context.Context, userID uuid.UUID) (*model.Session, error) {
	return f.sessions[userID], nil
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

type fakeAuditRepo struct{}

func (f *fakeAuditRepo) Create(ctx context.Context, log *model.AuditLog) error { return nil }
func (f *fakeAuditRepo) List(ctx context.Context, filters *model.AuditFilters) ([]*model.AuditLog, error) {
	return nil, nil
}
func (f *fakeAuditRepo) Stats(ctx context.Context) (*model.AuditStats, error) { return nil, nil }
func (f *fakeAuditRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

const testPassword = "s3cret-pass"

func newTestService(t *testing.T) (*Service, *fakeUserRepo, *fakeSessionRepo) {
	t.Helper()

	hasher := security.NewBcryptHasher(4)
	hash, err := hasher.Hash(testPassword)
	require.NoError(t, err)

	userRepo := &fakeUserRepo{users: make(map[string]*model.User)}
	worker := &model.User{
		FirstName:    "Awa",
		LastName:     "Ndiaye",
		Email:        "awa@tekhe.sn",
		Role:         model.RoleFrontLineWorker,
		PasswordHash: hash,
		Status:       model.UserStatusActive,
	}
	worker.ID = uuid.New()
	userRepo.users[worker.Email] = worker

	sessionRepo := newFakeSessionRepo()
	jwtSvc := auth.NewJWTService("test-secret", "test")
	auditor := audit.NewService(&fakeAuditRepo{}, zerolog.Nop())

	svc := NewService(userRepo, repository.SessionRepository(sessionRepo), jwtSvc, hasher, auditor, nil, zerolog.Nop(), 24*time.Hour)
	return svc, userRepo, sessionRepo
}

func TestLoginSuccess(t *testing.T) {
	svc, userRepo, sessionRepo := newTestService(t)

	resp, err := svc.Login(context.Background(), "awa@tekhe.sn", testPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, model.RoleFrontLineWorker, resp.User.Role)

	user := userRepo.users["awa@tekhe.sn"]
	session, ok := sessionRepo.sessions[user.ID]
	require.True(t, ok, "login must persist a session")
	assert.Equal(t, user.ID, session.UserID)
	assert.WithinDuration(t, time.Now(), session.LoginAt, time.Minute)
}

func TestLoginInvalidPassword(t *testing.T) {
	svc, _, sessionRepo := newTestService(t)

	_, err := svc.Login(context.Background(), "awa@tekhe.sn", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, sessionRepo.sessions)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "nobody@tekhe.sn", testPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginLockoutAfterRepeatedFailures(t *testing.T) {
	svc, userRepo, _ := newTestService(t)

	for i := 0; i < maxLoginAttempts; i++ {
		_, err := svc.Login(context.Background(), "awa@tekhe.sn", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	assert.Equal(t, model.UserStatusLocked, userRepo.users["awa@tekhe.sn"].Status)

	_, err := svc.Login(context.Background(), "awa@tekhe.sn", testPassword)
	assert.ErrorIs(t, err, ErrAccountLocked)
}

func TestLoginRejectsMisconfiguredScope(t *testing.T) {
	svc, userRepo, sessionRepo := newTestService(t)

	hasher := security.NewBcryptHasher(4)
	hash, err := hasher.Hash(testPassword)
	require.NoError(t, err)

	// Facility manager with no facility assignment. A stale session is
	// planted to verify login discards it.
	manager := &model.User{
		Email:        "fatou@tekhe.sn",
		Role:         model.RoleFacilityManager,
		PasswordHash: hash,
		Status:       model.UserStatusActive,
	}
	manager.ID = uuid.New()
	userRepo.users[manager.Email] = manager
	sessionRepo.sessions[manager.ID] = &model.Session{UserID: manager.ID, LoginAt: time.Now()}

	_, err = svc.Login(context.Background(), "fatou@tekhe.sn", testPassword)

	var scopeErr *ScopeConfigurationError
	require.ErrorAs(t, err, &scopeErr)
	assert.NotEmpty(t, scopeErr.Errors)
	assert.NotContains(t, sessionRepo.sessions, manager.ID, "stale session must be discarded")
}

func TestSessionRestore(t *testing.T) {
	svc, userRepo, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "awa@tekhe.sn", testPassword)
	require.NoError(t, err)

	user, err := svc.Session(context.Background(), userRepo.users["awa@tekhe.sn"].ID)
	require.NoError(t, err)
	assert.Equal(t, "awa@tekhe.sn", user.Email)
}

func TestSessionExpiredIsDiscarded(t *testing.T) {
	svc, userRepo, sessionRepo := newTestService(t)

	user := userRepo.users["awa@tekhe.sn"]
	sessionRepo.sessions[user.ID] = &model.Session{
		UserID:  user.ID,
		Role:    user.Role,
		LoginAt: time.Now().Add(-25 * time.Hour),
	}

	_, err := svc.Session(context.Background(), user.ID)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.NotContains(t, sessionRepo.sessions, user.ID)
}

func TestSessionNoneActive(t *testing.T) {
	svc, userRepo, _ := newTestService(t)

	_, err := svc.Session(context.Background(), userRepo.users["awa@tekhe.sn"].ID)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestLogoutEndsSession(t *testing.T) {
	svc, userRepo, sessionRepo := newTestService(t)

	_, err := svc.Login(context.Background(), "awa@tekhe.sn", testPassword)
	require.NoError(t, err)

	user := userRepo.users["awa@tekhe.sn"]
	require.NoError(t, svc.Logout(context.Background(), user.ID))
	assert.NotContains(t, sessionRepo.sessions, user.ID)

	_, err = svc.Session(context.Background(), user.ID)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestLoginSessionMetrics(t *testing.T) {
	hasher := security.NewBcryptHasher(4)
	hash, err := hasher.Hash(testPassword)
	require.NoError(t, err)

	userRepo := &fakeUserRepo{users: make(map[string]*model.User)}
	worker := &model.User{
		Email:        "fatou@tekhe.sn",
		Role:         model.RoleFrontLineWorker,
		PasswordHash: hash,
		Status:       model.UserStatusActive,
	}
	worker.ID = uuid.New()
	userRepo.users[worker.Email] = worker

	m := metrics.New("authtest")
	svc := NewService(
		userRepo,
		repository.SessionRepository(newFakeSessionRepo()),
		auth.NewJWTService("test-secret", "test"),
		hasher,
		audit.NewService(&fakeAuditRepo{}, zerolog.Nop()),
		m,
		zerolog.Nop(),
		24*time.Hour,
	)

	_, err = svc.Login(context.Background(), worker.Email, testPassword)
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsStarted))

	_, err = svc.Login(context.Background(), worker.Email, "wrong-password")
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsRejected.WithLabelValues("credentials")))
}
