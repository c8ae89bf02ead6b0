// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sentient-engine/consoles/lib/sealed"
	"github.com/sentient-engine/consoles/lib/statefile"
)

// File names inside a console's state directory.
const (
	TokenFileName    = "token.v1.age"
	IdentityFileName = "identity.v1.key"
)

// TokenStore persists one bearer token.
type TokenStore interface {
	// Load returns the stored token. ok is false when nothing usable is
	// stored; err describes a stored value that could not be read.
	Load() (token string, ok bool, err error)
	Save(token string) error
	// Clear removes the stored token. Clearing an empty store succeeds.
	Clear() error
}

// FileTokenStore keeps the token sealed with age in a state directory.
type FileTokenStore struct {
	directory string
}

// NewFileTokenStore returns a store rooted at directory. Nothing is
// created until the first Save.
func NewFileTokenStore(directory string) *FileTokenStore {
	return &FileTokenStore{directory: directory}
}

func (s *FileTokenStore) tokenPath() string    { return filepath.Join(s.directory, TokenFileName) }
func (s *FileTokenStore) identityPath() string { return filepath.Join(s.directory, IdentityFileName) }

// Load opens the sealed token. A missing token file or identity is
// reported as ("", false, nil).
func (s *FileTokenStore) Load() (string, bool, error) {
	ciphertext, err := os.ReadFile(s.tokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", s.tokenPath(), err)
	}

	identity, err := s.readIdentity()
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	defer identity.Close()

	plaintext, err := sealed.Open(ciphertext, identity.PrivateKey)
	if err != nil {
		return "", false, fmt.Errorf("opening %s: %w", s.tokenPath(), err)
	}
	defer plaintext.Close()
	return plaintext.String(), true, nil
}

// Save seals token to the directory's identity, generating the identity
// on first use.
func (s *FileTokenStore) Save(token string) error {
	if token == "" {
		return errors.New("refusing to store an empty token")
	}
	identity, err := s.ensureIdentity()
	if err != nil {
		return err
	}
	defer identity.Close()

	ciphertext, err := sealed.Seal([]byte(token), identity.Recipient)
	if err != nil {
		return fmt.Errorf("sealing token: %w", err)
	}
	return statefile.WriteAtomic(s.tokenPath(), ciphertext)
}

// Clear deletes the token file. The identity is kept.
func (s *FileTokenStore) Clear() error {
	return statefile.Remove(s.tokenPath())
}

func (s *FileTokenStore) readIdentity() (*sealed.Identity, error) {
	data, err := os.ReadFile(s.identityPath())
	if err != nil {
		return nil, err
	}
	identity, err := sealed.ParseIdentity(data)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.identityPath(), err)
	}
	return identity, nil
}

func (s *FileTokenStore) ensureIdentity() (*sealed.Identity, error) {
	identity, err := s.readIdentity()
	if err == nil {
		return identity, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		// A damaged identity can no longer open anything sealed to it.
		// Replace it; the old token becomes unreadable, which Load
		// already treats as absent.
		_ = statefile.Remove(s.tokenPath())
	}

	identity, err = sealed.GenerateIdentity()
	if err != nil {
		return nil, err
	}
	if err := statefile.WriteAtomic(s.identityPath(), identity.PrivateKey.Bytes()); err != nil {
		identity.Close()
		return nil, fmt.Errorf("writing identity: %w", err)
	}
	return identity, nil
}

// MemoryTokenStore keeps the token in process memory.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
	// SaveErr, when set, is returned by Save without storing anything.
	SaveErr error
}

func (s *MemoryTokenStore) Load() (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != "", nil
}

func (s *MemoryTokenStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.token = token
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}
