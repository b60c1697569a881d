package services

import (
	"context"
	"sync"
	"time"

	"github.com/medgate/medgate/core"
)

// FakeAuthBackend is a test-only fake implementing core.AuthBackend.
// Accounts are scripted; Emit lets tests inject arbitrary session-change
// events, including duplicates and out-of-order sequences.
type FakeAuthBackend struct {
	mu        sync.Mutex
	accounts  map[string]fakeAccount // email -> account
	current   *core.Session
	seq       uint64
	listeners []func(core.SessionEvent)

	requireConfirmation bool
	signInErr           error
	signUpErr           error
	signOutErr          error
	getSessionErr       error
}

type fakeAccount struct {
	password string
	userID   string
}

func NewFakeAuthBackend() *FakeAuthBackend {
	return &FakeAuthBackend{accounts: make(map[string]fakeAccount)}
}

func (f *FakeAuthBackend) AddAccount(email, password, userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[email] = fakeAccount{password: password, userID: userID}
}

func (f *FakeAuthBackend) OnSessionChange(fn func(core.SessionEvent)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, fn)
}

// Emit delivers an event with an explicit sequence, bypassing the
// backend's own counter. Used to simulate racing notifications.
func (f *FakeAuthBackend) Emit(seq uint64, session *core.Session) {
	f.mu.Lock()
	listeners := append([]func(core.SessionEvent){}, f.listeners...)
	f.mu.Unlock()
	for _, fn := range listeners {
		fn(core.SessionEvent{Seq: seq, Session: session})
	}
}

func (f *FakeAuthBackend) emitNext(session *core.Session) {
	f.mu.Lock()
	f.seq++
	seq := f.seq
	f.current = session
	listeners := append([]func(core.SessionEvent){}, f.listeners...)
	f.mu.Unlock()
	for _, fn := range listeners {
		fn(core.SessionEvent{Seq: seq, Session: session})
	}
}

func (f *FakeAuthBackend) SignIn(_ context.Context, email, password string) (*core.Session, error) {
	f.mu.Lock()
	if f.signInErr != nil {
		err := f.signInErr
		f.mu.Unlock()
		return nil, err
	}
	account, ok := f.accounts[email]
	f.mu.Unlock()
	if !ok || account.password != password {
		return nil, core.ErrInvalidCredentials
	}

	session := &core.Session{
		UserID:    account.userID,
		IssuedAt:  time.Now(),
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	f.emitNext(session)
	return session, nil
}

func (f *FakeAuthBackend) SignUp(_ context.Context, input core.SignUpInput) (*core.SignUpResult, error) {
	f.mu.Lock()
	if f.signUpErr != nil {
		err := f.signUpErr
		f.mu.Unlock()
		return nil, err
	}
	if _, exists := f.accounts[input.Email]; exists {
		f.mu.Unlock()
		return nil, core.ErrIdentityExists
	}
	userID := "user-" + input.Email
	f.accounts[input.Email] = fakeAccount{password: input.Password, userID: userID}
	pending := f.requireConfirmation
	f.mu.Unlock()

	if pending {
		return &core.SignUpResult{PendingConfirmation: true}, nil
	}

	session := &core.Session{
		UserID:    userID,
		IssuedAt:  time.Now(),
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	f.emitNext(session)
	return &core.SignUpResult{Session: session}, nil
}

func (f *FakeAuthBackend) SignOut(_ context.Context) error {
	f.mu.Lock()
	err := f.signOutErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	f.emitNext(nil)
	return nil
}

func (f *FakeAuthBackend) GetSession(_ context.Context) (*core.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getSessionErr != nil {
		return nil, f.getSessionErr
	}
	return f.current, nil
}

// SetCurrent seeds the snapshot returned by GetSession without emitting
// an event, mimicking a pre-existing remote session at startup.
func (f *FakeAuthBackend) SetCurrent(session *core.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = session
}

// FakeProfileStorage is a test-only fake implementing
// core.ProfileStorage with error injection and a fetch hook for racing
// scenarios.
type FakeProfileStorage struct {
	mu        sync.Mutex
	profiles  map[string]*core.Profile
	fetchErr  error
	updateErr error

	// fetchHook runs during FetchProfile before the result is returned,
	// letting tests change resolver state mid-flight.
	fetchHook func(userID string)
}

func NewFakeProfileStorage() *FakeProfileStorage {
	return &FakeProfileStorage{profiles: make(map[string]*core.Profile)}
}

// FailFetches makes every FetchProfile call fail with err until reset
// with nil.
func (f *FakeProfileStorage) FailFetches(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchErr = err
}

// FailUpdates makes every UpdateProfile call fail with err until reset
// with nil.
func (f *FakeProfileStorage) FailUpdates(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateErr = err
}

func (f *FakeProfileStorage) Put(p *core.Profile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *p
	f.profiles[p.ID] = &copied
}

func (f *FakeProfileStorage) FetchProfile(_ context.Context, userID string) (*core.Profile, error) {
	f.mu.Lock()
	hook := f.fetchHook
	err := f.fetchErr
	p, ok := f.profiles[userID]
	var copied *core.Profile
	if ok {
		c := *p
		copied = &c
	}
	f.mu.Unlock()

	if hook != nil {
		hook(userID)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, core.ErrProfileMissing
	}
	return copied, nil
}

func (f *FakeProfileStorage) CreateProfile(_ context.Context, p *core.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *p
	f.profiles[p.ID] = &copied
	return nil
}

func (f *FakeProfileStorage) UpdateProfile(_ context.Context, userID string, changes core.ProfileChanges) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	p, ok := f.profiles[userID]
	if !ok {
		return core.ErrProfileMissing
	}
	if changes.Name != nil {
		p.Name = changes.Name
	}
	if changes.Phone != nil {
		p.Phone = *changes.Phone
	}
	if changes.Address != nil {
		p.Address = *changes.Address
	}
	if changes.DOB != nil {
		p.DOB = *changes.DOB
	}
	if changes.AvatarURL != nil {
		p.AvatarURL = changes.AvatarURL
	}
	p.UpdatedAt = time.Now()
	return nil
}
