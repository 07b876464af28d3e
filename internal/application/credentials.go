package application

import (
	"sync"

	"github.com/ericfisherdev/itempanel/internal/domain/model"
)

// CredentialHolder keeps the username/password pair in memory. It starts
// with placeholder defaults and is overwritten only after a successful login.
type CredentialHolder struct {
	mu   sync.RWMutex
	cred model.Credential
}

// NewCredentialHolder creates a holder seeded with the given defaults.
func NewCredentialHolder(defaults model.Credential) *CredentialHolder {
	return &CredentialHolder{cred: defaults}
}

// Username returns the stored username.
func (h *CredentialHolder) Username() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cred.Username
}

// SetUsername replaces the stored username.
func (h *CredentialHolder) SetUsername(username string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cred.Username = username
}

// Password returns the stored password.
func (h *CredentialHolder) Password() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cred.Password
}

// SetPassword replaces the stored password.
func (h *CredentialHolder) SetPassword(password string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cred.Password = password
}

// Credential returns a copy of the stored pair.
func (h *CredentialHolder) Credential() model.Credential {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cred
}

// Set replaces both fields at once.
func (h *CredentialHolder) Set(cred model.Credential) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cred = cred
}
