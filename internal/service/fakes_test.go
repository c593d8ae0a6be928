package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/portalworks/portal-auth/internal/domain"
	"github.com/portalworks/portal-auth/internal/repository"
)

var errStoreDown = errors.New("connection refused")

type fakeUsers struct {
	mu     sync.Mutex
	byID   map[string]*domain.User
	seq    int
	failOn string
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[string]*domain.User{}}
}

func (f *fakeUsers) fail(op string) error {
	if f.failOn == op || f.failOn == "*" {
		return errStoreDown
	}
	return nil
}

func (f *fakeUsers) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("create"); err != nil {
		return err
	}
	for _, u := range f.byID {
		if u.Username == user.Username || u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	f.seq++
	user.ID = fmt.Sprintf("user-%d", f.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	f.byID[user.ID] = &cp
	return nil
}

func (f *fakeUsers) update(id string, fn func(*domain.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	fn(u)
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id, passwordHash string) error {
	if err := f.fail("update_password"); err != nil {
		return err
	}
	return f.update(id, func(u *domain.User) { u.PasswordHash = passwordHash })
}

func (f *fakeUsers) UpdateStatus(_ context.Context, id string, status domain.UserStatus) error {
	return f.update(id, func(u *domain.User) { u.Status = status })
}

func (f *fakeUsers) UpdatePhotoKey(_ context.Context, id, photoKey string) error {
	if err := f.fail("update_photo"); err != nil {
		return err
	}
	return f.update(id, func(u *domain.User) { u.PhotoKey = photoKey })
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("get"); err != nil {
		return nil, err
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByIdentity(_ context.Context, identity string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("get"); err != nil {
		return nil, err
	}
	for _, u := range f.byID {
		if u.Username == identity || u.Email == strings.ToLower(identity) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUsers) ExistsByIdentity(_ context.Context, username, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("exists"); err != nil {
		return false, err
	}
	for _, u := range f.byID {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) ListByStatus(_ context.Context, status domain.UserStatus, limit, offset int) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.User
	for _, u := range f.byID {
		if u.Status == status {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset > len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeUsers) get(id string) domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.byID[id]
}

type fakeSessions struct {
	mu      sync.Mutex
	byHash  map[string]*domain.Session
	failOn  string
	touches int
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{byHash: map[string]*domain.Session{}}
}

func (f *fakeSessions) Create(_ context.Context, session *domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn == "create" {
		return errStoreDown
	}
	cp := *session
	f.byHash[session.TokenHash] = &cp
	return nil
}

func (f *fakeSessions) GetByTokenHash(_ context.Context, tokenHash string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn == "get" {
		return nil, errStoreDown
	}
	s, ok := f.byHash[tokenHash]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessions) Touch(_ context.Context, id string, seenAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn == "touch" {
		return errStoreDown
	}
	for _, s := range f.byHash {
		if s.ID == id {
			s.LastSeenAt = seenAt
			f.touches++
			return nil
		}
	}
	return nil
}

func (f *fakeSessions) DeleteByTokenHash(_ context.Context, tokenHash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byHash[tokenHash]
	delete(f.byHash, tokenHash)
	return ok, nil
}

func (f *fakeSessions) DeleteByUser(_ context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for hash, s := range f.byHash {
		if s.UserID == userID {
			delete(f.byHash, hash)
			n++
		}
	}
	return n, nil
}

func (f *fakeSessions) DeleteExpired(_ context.Context, now time.Time, idleTimeout time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for hash, s := range f.byHash {
		if s.ExpiredAt(now) || s.IdleAt(now, idleTimeout) {
			delete(f.byHash, hash)
			n++
		}
	}
	return n, nil
}

func (f *fakeSessions) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byHash)
}

type fakePrefs struct {
	mu      sync.Mutex
	prefs   map[string]*domain.UserPreferences
	fail    bool
	failGet bool
}

func (f *fakePrefs) CreateDefaults(_ context.Context, prefs *domain.UserPreferences) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errStoreDown
	}
	if f.prefs == nil {
		f.prefs = map[string]*domain.UserPreferences{}
	}
	f.prefs[prefs.UserID] = prefs
	return nil
}

func (f *fakePrefs) GetByUserID(_ context.Context, userID string) (*domain.UserPreferences, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet {
		return nil, errStoreDown
	}
	p, ok := f.prefs[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

type fakeResets struct {
	mu     sync.Mutex
	tokens map[string]*domain.PasswordResetToken
	seq    int
}

func newFakeResets() *fakeResets {
	return &fakeResets{tokens: map[string]*domain.PasswordResetToken{}}
}

func (f *fakeResets) Create(_ context.Context, token *domain.PasswordResetToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	token.ID = fmt.Sprintf("reset-%d", f.seq)
	cp := *token
	f.tokens[token.TokenHash] = &cp
	return nil
}

func (f *fakeResets) GetByTokenHash(_ context.Context, tokenHash string) (*domain.PasswordResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[tokenHash]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (f *fakeResets) MarkUsed(_ context.Context, id string, usedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.ID == id && t.UsedAt == nil {
			at := usedAt
			t.UsedAt = &at
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakeActivity struct {
	mu       sync.Mutex
	entries  []domain.ActivityLogEntry
	fail     bool
	failList bool
}

func (f *fakeActivity) Append(_ context.Context, entry *domain.ActivityLogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errStoreDown
	}
	entry.ID = fmt.Sprintf("%d", len(f.entries)+1)
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeActivity) ListByUser(_ context.Context, userID string, limit int) ([]domain.ActivityLogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList {
		return nil, errStoreDown
	}
	var out []domain.ActivityLogEntry
	for _, e := range f.entries {
		if e.UserID != nil && *e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeActivity) actions() []domain.ActivityAction {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.ActivityAction, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}

type fakeLimiter struct {
	mu       sync.Mutex
	failures int
	resets   int
	checkErr error
}

func (f *fakeLimiter) Check(context.Context, string, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.checkErr != nil {
		return f.checkErr
	}
	return nil
}

func (f *fakeLimiter) RecordFailure(context.Context, string, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures++
	return nil
}

func (f *fakeLimiter) Reset(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	return nil
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (f *fakeStore) Put(_ context.Context, key string, r io.Reader, _ int64) (int64, error) {
	if f.putErr != nil {
		return 0, f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return int64(len(data)), nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeStore) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Now().UTC().Truncate(time.Second)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
