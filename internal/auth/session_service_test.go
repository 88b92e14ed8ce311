package auth

import (
	"context"
	"testing"
	"time"

	"github.com/datalume/partners-portal/internal/metrics"
	"github.com/datalume/partners-portal/model"
	"github.com/datalume/partners-portal/params"
	"gorm.io/gorm"
)

// fakeSessionRepo mirrors the real repository's query semantics: token
// lookups filter by expiry, and the owning client is joined in.
type fakeSessionRepo struct {
	sessions  map[string]*model.Session
	clients   map[string]*model.Client
	createErr error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{
		sessions: make(map[string]*model.Session),
		clients:  make(map[string]*model.Client),
	}
}

func (f *fakeSessionRepo) Create(_ context.Context, session *model.Session) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.sessions[session.Token] = session
	return nil
}

func (f *fakeSessionRepo) FirstValidByToken(_ context.Context, token string, now time.Time) (*model.Session, error) {
	session, ok := f.sessions[token]
	if !ok || !session.ExpiresAt.After(now) {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *session
	if client, ok := f.clients[session.ClientID]; ok {
		copied.Client = *client
	}
	return &copied, nil
}

func (f *fakeSessionRepo) DeleteByToken(_ context.Context, token string) (int64, error) {
	if _, ok := f.sessions[token]; !ok {
		return 0, nil
	}
	delete(f.sessions, token)
	return 1, nil
}

func (f *fakeSessionRepo) DeleteByClientID(_ context.Context, clientID string) (int64, error) {
	var deleted int64
	for token, session := range f.sessions {
		if session.ClientID == clientID {
			delete(f.sessions, token)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeSessionRepo) FindActive(_ context.Context, now time.Time) ([]*model.Session, error) {
	var out []*model.Session
	for _, session := range f.sessions {
		if session.ExpiresAt.After(now) {
			copied := *session
			if client, ok := f.clients[session.ClientID]; ok {
				copied.Client = *client
			}
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var deleted int64
	for token, session := range f.sessions {
		if !session.ExpiresAt.After(now) {
			delete(f.sessions, token)
			deleted++
		}
	}
	return deleted, nil
}

func newTestSessionService(repo *fakeSessionRepo) *SessionService {
	return NewSessionService(repo, params.SessionDuration, metrics.Noop{})
}

func TestCreateSessionToken(t *testing.T) {
	repo := newFakeSessionRepo()
	repo.clients["c1"] = &model.Client{ID: "c1", IsActive: true}
	service := newTestSessionService(repo)

	token, err := service.Create(context.Background(), "c1", "10.0.0.1", "agent")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if len(token) != params.SessionTokenSize*2 {
		t.Errorf("token length = %d, want %d hex chars", len(token), params.SessionTokenSize*2)
	}

	second, err := service.Create(context.Background(), "c1", "10.0.0.1", "agent")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if token == second {
		t.Error("two sessions share the same token")
	}

	session := repo.sessions[token]
	wantExpiry := time.Now().Add(params.SessionDuration)
	if session.ExpiresAt.Before(wantExpiry.Add(-time.Minute)) || session.ExpiresAt.After(wantExpiry.Add(time.Minute)) {
		t.Errorf("expiry %v not within a minute of now+%v", session.ExpiresAt, params.SessionDuration)
	}
}

func TestValidateSession(t *testing.T) {
	repo := newFakeSessionRepo()
	repo.clients["c1"] = &model.Client{ID: "c1", Username: "acme", Name: "Acme", IsActive: true}
	service := newTestSessionService(repo)

	token, err := service.Create(context.Background(), "c1", "10.0.0.1", "agent")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	_, client, err := service.Validate(context.Background(), token)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if client.Username != "acme" {
		t.Errorf("client username = %q, want acme", client.Username)
	}

	if _, _, err := service.Validate(context.Background(), "deadbeef"); err != ErrSessionInvalid {
		t.Errorf("unknown token: err = %v, want ErrSessionInvalid", err)
	}
	if _, _, err := service.Validate(context.Background(), ""); err != ErrSessionInvalid {
		t.Errorf("empty token: err = %v, want ErrSessionInvalid", err)
	}
}

// Expiry is exclusive on the valid side: a session is valid strictly before
// expires_at and invalid from that instant on.
func TestValidateSessionExpiry(t *testing.T) {
	repo := newFakeSessionRepo()
	repo.clients["c1"] = &model.Client{ID: "c1", IsActive: true}
	service := newTestSessionService(repo)

	repo.sessions["expired"] = &model.Session{
		Token:     "expired",
		ClientID:  "c1",
		ExpiresAt: time.Now().Add(-time.Second),
	}
	if _, _, err := service.Validate(context.Background(), "expired"); err != ErrSessionInvalid {
		t.Errorf("expired token: err = %v, want ErrSessionInvalid", err)
	}

	repo.sessions["aboutto"] = &model.Session{
		Token:     "aboutto",
		ClientID:  "c1",
		ExpiresAt: time.Now().Add(100 * time.Millisecond),
	}
	if _, _, err := service.Validate(context.Background(), "aboutto"); err != nil {
		t.Errorf("not-yet-expired token rejected: %v", err)
	}
}

// Deactivating a client invalidates every session immediately, even ones
// issued while the client was active and still inside their expiry window.
func TestValidateSessionInactiveClient(t *testing.T) {
	repo := newFakeSessionRepo()
	repo.clients["c1"] = &model.Client{ID: "c1", IsActive: true}
	service := newTestSessionService(repo)

	token, err := service.Create(context.Background(), "c1", "10.0.0.1", "agent")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, _, err := service.Validate(context.Background(), token); err != nil {
		t.Fatalf("Validate returned error while active: %v", err)
	}

	repo.clients["c1"].IsActive = false
	if _, _, err := service.Validate(context.Background(), token); err != ErrSessionInvalid {
		t.Errorf("inactive client: err = %v, want ErrSessionInvalid", err)
	}
}

func TestDestroySessionIdempotent(t *testing.T) {
	repo := newFakeSessionRepo()
	repo.clients["c1"] = &model.Client{ID: "c1", IsActive: true}
	service := newTestSessionService(repo)

	token, _ := service.Create(context.Background(), "c1", "10.0.0.1", "agent")
	if err := service.Destroy(context.Background(), token); err != nil {
		t.Fatalf("Destroy returned error: %v", err)
	}
	if err := service.Destroy(context.Background(), token); err != nil {
		t.Fatalf("second Destroy returned error: %v", err)
	}
	if _, _, err := service.Validate(context.Background(), token); err != ErrSessionInvalid {
		t.Errorf("destroyed token still validates: err = %v", err)
	}
}

func TestDestroyAllForClient(t *testing.T) {
	repo := newFakeSessionRepo()
	repo.clients["c1"] = &model.Client{ID: "c1", IsActive: true}
	repo.clients["c2"] = &model.Client{ID: "c2", IsActive: true}
	service := newTestSessionService(repo)

	first, _ := service.Create(context.Background(), "c1", "10.0.0.1", "agent")
	second, _ := service.Create(context.Background(), "c1", "10.0.0.2", "agent")
	other, _ := service.Create(context.Background(), "c2", "10.0.0.3", "agent")

	if err := service.DestroyAllForClient(context.Background(), "c1"); err != nil {
		t.Fatalf("DestroyAllForClient returned error: %v", err)
	}

	for _, token := range []string{first, second} {
		if _, _, err := service.Validate(context.Background(), token); err != ErrSessionInvalid {
			t.Errorf("token %q of c1 still validates after forced logout", token)
		}
	}
	if _, _, err := service.Validate(context.Background(), other); err != nil {
		t.Errorf("unrelated client's session was destroyed: %v", err)
	}
}

func TestCleanupExpired(t *testing.T) {
	repo := newFakeSessionRepo()
	repo.clients["c1"] = &model.Client{ID: "c1", IsActive: true}
	service := newTestSessionService(repo)

	repo.sessions["old"] = &model.Session{Token: "old", ClientID: "c1", ExpiresAt: time.Now().Add(-time.Hour)}
	live, _ := service.Create(context.Background(), "c1", "10.0.0.1", "agent")

	service.CleanupExpired(context.Background())

	if _, ok := repo.sessions["old"]; ok {
		t.Error("expired session survived cleanup")
	}
	if _, _, err := service.Validate(context.Background(), live); err != nil {
		t.Errorf("live session removed by cleanup: %v", err)
	}
}
