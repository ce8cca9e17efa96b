package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/yashng7/zero-grid/internal/shared"
	"github.com/yashng7/zero-grid/internal/users"
)

// ============================================================================
// MOCK REPOSITORIES
// ============================================================================

type memoryStore struct {
	mu     sync.Mutex
	users  map[string]*users.User
	tokens map[string]*ResetToken
	nextID int

	// Error injection
	txErr error
	// beforeTx runs after the token lookup and before the transaction body.
	beforeTx func()
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:  make(map[string]*users.User),
		tokens: make(map[string]*ResetToken),
	}
}

func (m *memoryStore) id(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

type memoryUsers struct{ m *memoryStore }

func (r memoryUsers) Create(ctx context.Context, input users.NewUser) (*users.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	email := users.NormalizeEmail(input.Email)
	for _, u := range r.m.users {
		if u.Email == email {
			return nil, shared.ErrConflict
		}
	}
	now := time.Now()
	u := &users.User{ID: r.m.id("user"), Email: email, Password: input.Password, CreatedAt: now, UpdatedAt: now}
	if input.Name != "" {
		name := input.Name
		u.Name = &name
	}
	r.m.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (r memoryUsers) FindByID(ctx context.Context, id string) (*users.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r memoryUsers) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Email == users.NormalizeEmail(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memoryUsers) Update(ctx context.Context, id string, update users.ProfileUpdate) (*users.User, error) {
	return nil, shared.ErrNotFound
}

func (r memoryUsers) UpdatePassword(ctx context.Context, id, digest string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.Password = digest
	return nil
}

type memoryTokens struct{ m *memoryStore }

func (r memoryTokens) Create(ctx context.Context, userID, token string, expiresAt time.Time) (*ResetToken, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	rt := &ResetToken{ID: r.m.id("token"), UserID: userID, Token: token, ExpiresAt: expiresAt, CreatedAt: time.Now()}
	r.m.tokens[rt.ID] = rt
	return rt, nil
}

func (r memoryTokens) FindValidToken(ctx context.Context, token string) (*ResetTokenWithUser, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, rt := range r.m.tokens {
		if rt.Token != token || !rt.Valid(time.Now()) {
			continue
		}
		u, ok := r.m.users[rt.UserID]
		if !ok {
			return nil, nil
		}
		return &ResetTokenWithUser{Token: *rt, User: *u}, nil
	}
	return nil, nil
}

func (r memoryTokens) MarkAsUsed(ctx context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	rt, ok := r.m.tokens[id]
	if !ok || rt.UsedAt != nil {
		return shared.Validation("Invalid or expired reset token")
	}
	now := time.Now()
	rt.UsedAt = &now
	return nil
}

func (r memoryTokens) DeleteUserTokens(ctx context.Context, userID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for id, rt := range r.m.tokens {
		if rt.UserID == userID {
			delete(r.m.tokens, id)
		}
	}
	return nil
}

func (r memoryTokens) DeleteExpiredTokens(ctx context.Context) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for id, rt := range r.m.tokens {
		if !rt.ExpiresAt.After(time.Now()) {
			delete(r.m.tokens, id)
			n++
		}
	}
	return n, nil
}

func (m *memoryStore) WithTx(ctx context.Context, fn func(ctx context.Context, userRepo users.Repository, tokens ResetTokenRepository) error) error {
	if m.txErr != nil {
		return m.txErr
	}
	if m.beforeTx != nil {
		m.beforeTx()
	}
	restore := m.snapshot()
	if err := fn(ctx, memoryUsers{m}, memoryTokens{m}); err != nil {
		restore()
		return err
	}
	return nil
}

// snapshot captures user and token state so a failed transaction can be undone.
func (m *memoryStore) snapshot() func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	savedUsers := make(map[string]users.User, len(m.users))
	for id, u := range m.users {
		savedUsers[id] = *u
	}
	savedTokens := make(map[string]ResetToken, len(m.tokens))
	for id, rt := range m.tokens {
		savedTokens[id] = *rt
	}
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.users = make(map[string]*users.User, len(savedUsers))
		for id, u := range savedUsers {
			u := u
			m.users[id] = &u
		}
		m.tokens = make(map[string]*ResetToken, len(savedTokens))
		for id, rt := range savedTokens {
			rt := rt
			m.tokens[id] = &rt
		}
	}
}

func (m *memoryStore) tokensFor(userID string) []*ResetToken {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*ResetToken
	for _, rt := range m.tokens {
		if rt.UserID == userID {
			out = append(out, rt)
		}
	}
	return out
}

type notice struct {
	kind  string
	to    string
	name  string
	token string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notice
}

func (n *recordingNotifier) record(v notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, v)
}

func (n *recordingNotifier) Welcome(ctx context.Context, to, name string) {
	n.record(notice{kind: "welcome", to: to, name: name})
}

func (n *recordingNotifier) PasswordReset(ctx context.Context, to, name, token string) {
	n.record(notice{kind: "reset", to: to, name: name, token: token})
}

func (n *recordingNotifier) PasswordChanged(ctx context.Context, to, name string) {
	n.record(notice{kind: "changed", to: to, name: name})
}

func (n *recordingNotifier) last() notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return notice{}
	}
	return n.sent[len(n.sent)-1]
}

func newTestService() (*Service, *memoryStore, *recordingNotifier) {
	store := newMemoryStore()
	notifier := &recordingNotifier{}
	svc := NewService(ServiceParams{
		Users:    memoryUsers{store},
		Tokens:   memoryTokens{store},
		Tx:       store,
		Issuer:   newTestIssuer(),
		Notifier: notifier,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return svc, store, notifier
}
