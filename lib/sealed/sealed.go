// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"filippo.io/age"

	"github.com/sentient-engine/consoles/lib/secret"
)

// Identity is an age X25519 keypair. PrivateKey holds the
// AGE-SECRET-KEY-1... encoding; Recipient is the matching age1... key.
type Identity struct {
	PrivateKey *secret.Buffer
	Recipient  string
}

// Close releases the private key.
func (i *Identity) Close() error {
	if i.PrivateKey == nil {
		return nil
	}
	return i.PrivateKey.Close()
}

// GenerateIdentity creates a fresh keypair.
func GenerateIdentity() (*Identity, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("generating age identity: %w", err)
	}
	privateKey, err := secret.NewFromBytes([]byte(identity.String()))
	if err != nil {
		return nil, fmt.Errorf("protecting private key: %w", err)
	}
	return &Identity{PrivateKey: privateKey, Recipient: identity.Recipient().String()}, nil
}

// ParseIdentity reads an identity previously written by GenerateIdentity.
// Surrounding whitespace is ignored. The returned Identity owns a new
// buffer; encoded is not retained.
func ParseIdentity(encoded []byte) (*Identity, error) {
	trimmed := strings.TrimSpace(string(encoded))
	identity, err := age.ParseX25519Identity(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parsing age identity: %w", err)
	}
	privateKey, err := secret.NewFromString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("protecting private key: %w", err)
	}
	return &Identity{PrivateKey: privateKey, Recipient: identity.Recipient().String()}, nil
}

// Seal encrypts plaintext to recipient and returns the binary age file.
func Seal(plaintext []byte, recipient string) ([]byte, error) {
	parsed, err := age.ParseX25519Recipient(recipient)
	if err != nil {
		return nil, fmt.Errorf("parsing recipient %q: %w", recipient, err)
	}

	var ciphertext bytes.Buffer
	writer, err := age.Encrypt(&ciphertext, parsed)
	if err != nil {
		return nil, fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := writer.Write(plaintext); err != nil {
		return nil, fmt.Errorf("encrypting: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalizing age encryption: %w", err)
	}
	return ciphertext.Bytes(), nil
}

// Open decrypts ciphertext with privateKey, which is borrowed and not
// closed. The caller closes the returned buffer.
func Open(ciphertext []byte, privateKey *secret.Buffer) (*secret.Buffer, error) {
	identity, err := age.ParseX25519Identity(privateKey.String())
	if err != nil {
		return nil, fmt.Errorf("parsing age identity: %w", err)
	}
	reader, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		return nil, fmt.Errorf("decrypting: %w", err)
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		secret.Zero(plaintext)
		return nil, fmt.Errorf("reading plaintext: %w", err)
	}
	if len(plaintext) == 0 {
		return nil, errors.New("sealed value is empty")
	}
	return secret.NewFromBytes(plaintext)
}
