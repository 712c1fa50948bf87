package repository

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

const (
	sealKeySize = 32
	argonTime   = 3
	argonMem    = 64 * 1024
	argonPar    = 4
)

// sealSalt is fixed so the key is derived once per process. Per-value
// uniqueness comes from the random nonce.
var sealSalt = []byte("nutrisnap/api-key/v1")

// Sealer encrypts small secrets with AES-256-GCM under a key derived from
// a passphrase with Argon2id.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives the sealing key from passphrase
func NewSealer(passphrase string) (*Sealer, error) {
	if passphrase == "" {
		return nil, errors.New("sealer passphrase is empty")
	}

	key := argon2.IDKey([]byte(passphrase), sealSalt, argonTime, argonMem, argonPar, sealKeySize)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return &Sealer{aead: gcm}, nil
}

// Seal returns [nonce][ciphertext]
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open reverses Seal
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	n := s.aead.NonceSize()
	if len(sealed) < n {
		return nil, errors.New("sealed value too short")
	}
	plaintext, err := s.aead.Open(nil, sealed[:n], sealed[n:], nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}
