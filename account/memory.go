package account

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/jonwraymond/accountkit/record"
)

// MemoryService is an in-process Service for tests and local development.
// Passwords are kept as bcrypt hashes.
type MemoryService struct {
	mu       sync.RWMutex
	accounts map[string]*record.Storage // by user id
	byEmail  map[string]string
	sessions map[string]bool
}

// NewMemoryService creates an empty authority.
func NewMemoryService() *MemoryService {
	return &MemoryService{
		accounts: make(map[string]*record.Storage),
		byEmail:  make(map[string]string),
		sessions: make(map[string]bool),
	}
}

// SupportedKeys returns the identity, credential and profile keys.
func (s *MemoryService) SupportedKeys() record.KeySet {
	return record.NewKeySet(UserID, AccountID, Email, Password, Name, EmailVerified)
}

// normalizeEmail case-folds and NFC-normalizes email so lookups ignore
// case and composition differences.
func normalizeEmail(email string) string {
	return norm.NFC.String(cases.Fold().String(strings.TrimSpace(email)))
}

// SignUp registers creds and stores the supported part of details.
func (s *MemoryService) SignUp(_ context.Context, creds Credentials, details record.Snapshot) (record.Snapshot, error) {
	email := normalizeEmail(creds.Email)
	if email == "" || creds.Password == "" {
		return record.Empty(), ErrInvalidCredentials
	}
	hash, err := HashPassword(creds.Password)
	if err != nil {
		return record.Empty(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[email]; taken {
		return record.Empty(), fmt.Errorf("%w: %s", ErrAlreadyExists, email)
	}

	userID := uuid.NewString()
	owned, _ := Split(details, s.SupportedKeys())
	stored := record.NewBuilder(record.WithDefaults(record.NewDefaults(EmailVerified))).
		Merge(owned, true).
		Set(UserID.Bind(userID), AccountID.Bind(userID), Email.Bind(email), Password.Bind(hash)).
		Build()

	s.accounts[userID] = stored.Storage()
	s.byEmail[email] = userID
	s.sessions[userID] = true
	return stored, nil
}

// Login returns the stored details when creds match.
func (s *MemoryService) Login(_ context.Context, creds Credentials) (record.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, ok := s.byEmail[normalizeEmail(creds.Email)]
	if !ok {
		return record.Empty(), ErrInvalidCredentials
	}
	stored := s.accounts[userID].Snapshot()
	if err := VerifyPassword(Password.Value(stored), creds.Password); err != nil {
		return record.Empty(), err
	}
	s.sessions[userID] = true
	return stored, nil
}

// Update applies mod to the stored details.
func (s *MemoryService) Update(_ context.Context, userID string, mod record.Modification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.accounts[userID]
	if !ok {
		return ErrNotFound
	}
	oldEmail := Email.Value(stored.Snapshot())
	mod.ApplyStorage(stored)

	if newEmail := normalizeEmail(Email.Value(stored.Snapshot())); newEmail != oldEmail {
		delete(s.byEmail, oldEmail)
		if newEmail != "" {
			s.byEmail[newEmail] = userID
		}
	}
	return nil
}

// Logout ends the session for userID.
func (s *MemoryService) Logout(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[userID]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, userID)
	return nil
}

// Delete removes the account.
func (s *MemoryService) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.accounts[userID]
	if !ok {
		return ErrNotFound
	}
	delete(s.byEmail, Email.Value(stored.Snapshot()))
	delete(s.accounts, userID)
	delete(s.sessions, userID)
	return nil
}

// SignedIn reports whether userID has an open session.
func (s *MemoryService) SignedIn(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[userID]
}

// MemorySecondary is an in-process SecondaryStorage.
type MemorySecondary struct {
	mu      sync.RWMutex
	entries map[string]*record.Storage
}

// NewMemorySecondary creates an empty secondary storage.
func NewMemorySecondary() *MemorySecondary {
	return &MemorySecondary{entries: make(map[string]*record.Storage)}
}

// Store merges details into the entry for userID.
func (m *MemorySecondary) Store(_ context.Context, userID string, details record.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[userID]; ok {
		e.Merge(details.Storage(), true)
		return nil
	}
	m.entries[userID] = details.Storage()
	return nil
}

// Load returns the bindings of keys held for userID.
func (m *MemorySecondary) Load(_ context.Context, userID string, keys record.KeySet) (record.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[userID]
	if !ok {
		return record.Empty(), ErrNotFound
	}
	return e.Snapshot().Filter(keys), nil
}

// Modify applies mod to the entry for userID, creating it if needed.
func (m *MemorySecondary) Modify(_ context.Context, userID string, mod record.Modification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[userID]
	if !ok {
		e = record.NewStorage()
		m.entries[userID] = e
	}
	mod.ApplyStorage(e)
	return nil
}

// Delete drops the entry for userID.
func (m *MemorySecondary) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, userID)
	return nil
}

var (
	_ Service          = (*MemoryService)(nil)
	_ SecondaryStorage = (*MemorySecondary)(nil)
)
