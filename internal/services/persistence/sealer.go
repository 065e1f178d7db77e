package persistence

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/mcoot/jukebox/internal/model"
)

// Sealer transforms encoded snapshots on their way to and from storage
type Sealer interface {
	Seal(plain []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

// PlainSealer stores snapshots as-is
type PlainSealer struct{}

func (PlainSealer) Seal(plain []byte) ([]byte, error)  { return plain, nil }
func (PlainSealer) Open(sealed []byte) ([]byte, error) { return sealed, nil }

var sealedMagic = []byte("JBX1")

const (
	saltSize  = 16
	nonceSize = 24
	keySize   = 32

	// argon2id parameters
	kdfTime    = 1
	kdfMemory  = 64 * 1024
	kdfThreads = 4
)

// SecretboxSealer encrypts and authenticates snapshots with NaCl secretbox.
// Every seal draws a fresh salt and derives its key from the passphrase
// with argon2id. Layout: magic | salt | nonce | box.
type SecretboxSealer struct {
	passphrase []byte
	rand       io.Reader
}

// NewSecretboxSealer creates a sealer keyed by passphrase
func NewSecretboxSealer(passphrase string) *SecretboxSealer {
	return &SecretboxSealer{passphrase: []byte(passphrase), rand: rand.Reader}
}

func (s *SecretboxSealer) key(salt []byte) *[keySize]byte {
	var key [keySize]byte
	copy(key[:], argon2.IDKey(s.passphrase, salt, kdfTime, kdfMemory, kdfThreads, keySize))
	return &key
}

func (s *SecretboxSealer) Seal(plain []byte) ([]byte, error) {
	var header [saltSize + nonceSize]byte
	if _, err := io.ReadFull(s.rand, header[:]); err != nil {
		return nil, fmt.Errorf("generate salt and nonce: %w", err)
	}
	salt := header[:saltSize]
	var nonce [nonceSize]byte
	copy(nonce[:], header[saltSize:])

	out := make([]byte, 0, len(sealedMagic)+len(header)+len(plain)+secretbox.Overhead)
	out = append(out, sealedMagic...)
	out = append(out, header[:]...)
	return secretbox.Seal(out, plain, &nonce, s.key(salt)), nil
}

func (s *SecretboxSealer) Open(sealed []byte) ([]byte, error) {
	if !bytes.HasPrefix(sealed, sealedMagic) {
		return nil, fmt.Errorf("%w: not a sealed snapshot", model.ErrCorruptSnapshot)
	}
	rest := sealed[len(sealedMagic):]
	if len(rest) < saltSize+nonceSize+secretbox.Overhead {
		return nil, fmt.Errorf("%w: sealed snapshot truncated", model.ErrCorruptSnapshot)
	}

	salt := rest[:saltSize]
	var nonce [nonceSize]byte
	copy(nonce[:], rest[saltSize:saltSize+nonceSize])
	plain, ok := secretbox.Open(nil, rest[saltSize+nonceSize:], &nonce, s.key(salt))
	if !ok {
		return nil, fmt.Errorf("%w: seal verification failed", model.ErrCorruptSnapshot)
	}
	return plain, nil
}
