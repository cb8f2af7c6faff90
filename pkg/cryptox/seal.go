package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for deriving sealing keys from the master key.
const (
	kdfMemory      = 19 * 1024 // KiB
	kdfIterations  = 2
	kdfParallelism = 1
	keyLength      = 32
	saltLength     = 16
)

// sealVersion prefixes every sealed value so the format can evolve.
const sealVersion byte = 1

var (
	ErrNoMasterKey = errors.New("cryptox: master key is empty")
	ErrSealed      = errors.New("cryptox: sealed value is malformed")
)

// Sealer encrypts small secrets with AES-256-GCM. Each value gets a fresh
// salt, so each value is encrypted under its own argon2id-derived key.
//
// Layout: [version][16-byte salt][12-byte nonce][ciphertext + 16-byte tag]
type Sealer struct {
	master []byte
}

// NewSealer returns a Sealer keyed by master.
func NewSealer(master []byte) (*Sealer, error) {
	if len(master) == 0 {
		return nil, ErrNoMasterKey
	}
	return &Sealer{master: append([]byte(nil), master...)}, nil
}

// Seal encrypts plaintext. aad is authenticated but not stored; the same
// value must be given to Open.
func (s *Sealer) Seal(plaintext, aad []byte) ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	gcm, err := s.aead(salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, 1+saltLength+len(nonce)+len(plaintext)+gcm.Overhead())
	out = append(out, sealVersion)
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, aad), nil
}

// Open reverses Seal.
func (s *Sealer) Open(sealed, aad []byte) ([]byte, error) {
	if len(sealed) < 1+saltLength || sealed[0] != sealVersion {
		return nil, ErrSealed
	}
	salt := sealed[1 : 1+saltLength]

	gcm, err := s.aead(salt)
	if err != nil {
		return nil, err
	}

	rest := sealed[1+saltLength:]
	if len(rest) < gcm.NonceSize()+gcm.Overhead() {
		return nil, ErrSealed
	}
	nonce, ciphertext := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSealed, err)
	}
	return plaintext, nil
}

func (s *Sealer) aead(salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey(s.master, salt, kdfIterations, kdfMemory, kdfParallelism, keyLength)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}
