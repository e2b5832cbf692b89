// Package secrets stores connection passwords outside the plaintext
// settings files, keyed by profile identity.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Store persists one secret string per credential ID.
type Store interface {
	// Get retrieves a secret. The second return reports whether the ID
	// had a stored secret.
	Get(id string) (string, bool, error)
	// Set stores or replaces a secret.
	Set(id, secret string) error
	// Delete removes a secret. Deleting an absent ID is not an error.
	Delete(id string) error
}

const (
	secretsFileName = "secrets.json"
	keyFileName     = "secrets.key"
	keySize         = 32 // AES-256
)

// FileStore keeps secrets in a JSON file, each value encrypted with
// AES-256-GCM. The key lives next to the secrets file with 0600 permissions
// and is generated on first use.
type FileStore struct {
	mu   sync.Mutex
	path string
	key  []byte
}

// NewFileStore opens (or initializes) the secret store under dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create secrets directory: %w", err)
	}

	key, err := loadOrCreateKey(filepath.Join(dir, keyFileName))
	if err != nil {
		return nil, err
	}

	return &FileStore{
		path: filepath.Join(dir, secretsFileName),
		key:  key,
	}, nil
}

func (s *FileStore) Get(id string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return "", false, err
	}

	ciphertext, ok := entries[id]
	if !ok {
		return "", false, nil
	}
	secret, err := s.decrypt(ciphertext)
	if err != nil {
		return "", false, fmt.Errorf("failed to decrypt secret for %s: %w", id, err)
	}
	return secret, true, nil
}

func (s *FileStore) Set(id, secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}

	ciphertext, err := s.encrypt(secret)
	if err != nil {
		return fmt.Errorf("failed to encrypt secret for %s: %w", id, err)
	}
	entries[id] = ciphertext

	return s.save(entries)
}

func (s *FileStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := entries[id]; !ok {
		return nil
	}
	delete(entries, id)

	return s.save(entries)
}

// load reads the secrets file. A missing file reads as an empty store.
func (s *FileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read secrets file: %w", err)
	}

	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse secrets file: %w", err)
	}
	if entries == nil {
		entries = map[string]string{}
	}
	return entries, nil
}

func (s *FileStore) save(entries map[string]string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode secrets: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write secrets file: %w", err)
	}
	return nil
}

// encrypt seals the secret with AES-GCM and base64-encodes nonce+ciphertext.
func (s *FileStore) encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return "", err
	}
	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aesGCM.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := aesGCM.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (s *FileStore) decrypt(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(s.key)
	if err != nil {
		return "", err
	}
	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonceSize := aesGCM.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// loadOrCreateKey reads the key file, generating a fresh random key on
// first use.
func loadOrCreateKey(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		key, decErr := base64.StdEncoding.DecodeString(string(data))
		if decErr != nil || len(key) != keySize {
			return nil, fmt.Errorf("secrets key file %s is corrupt", path)
		}
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read secrets key: %w", err)
	}

	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate secrets key: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(key)
	if err := os.WriteFile(path, []byte(encoded), 0600); err != nil {
		return nil, fmt.Errorf("failed to write secrets key: %w", err)
	}
	return key, nil
}

// Memory is an in-memory secret store for tests.
type Memory struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entries: map[string]string{}}
}

func (m *Memory) Get(id string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	secret, ok := m.entries[id]
	return secret, ok, nil
}

func (m *Memory) Set(id, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = secret
	return nil
}

func (m *Memory) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}
