package v1

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/duynhne/inventory-service/internal/core/domain"
	"github.com/duynhne/inventory-service/internal/core/repository/memstore"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.AuthEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e domain.AuthEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []domain.AuthEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.AuthEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store    *memstore.Store
	hasher   *BcryptHasher
	sessions *SessionManager
	auth     *AuthService
	events   *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memstore.New()
	hasher := NewBcryptHasher(bcrypt.MinCost)
	verifier, err := NewCredentialVerifier(store.Users(), hasher)
	require.NoError(t, err)

	sessions := NewSessionManager(store.Sessions(), "test-secret", 24*time.Hour)
	events := &recordingPublisher{}
	auth := NewAuthService(store.Users(), verifier, sessions, hasher, NewValidator(), events)

	return &fixture{store: store, hasher: hasher, sessions: sessions, auth: auth, events: events}
}

func (f *fixture) register(t *testing.T, username, email, password string) *domain.AuthResponse {
	t.Helper()
	resp, err := f.auth.Register(context.Background(), domain.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	}, "")
	require.NoError(t, err)
	return resp
}
