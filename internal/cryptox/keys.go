package cryptox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
)

var ErrEmptyPassphrase = errors.New("empty passphrase")

// KeyProvider supplies the shared record key. Implementations may fetch it
// from a secret store; the codec never holds a literal key.
type KeyProvider interface {
	Key(ctx context.Context) ([]byte, error)
}

// PassphraseKeyProvider derives the key from a passphrase once and caches it.
type PassphraseKeyProvider struct {
	passphrase []byte
	salt       []byte

	once sync.Once
	key  []byte
	err  error
}

func NewPassphraseKeyProvider(passphrase, salt string) *PassphraseKeyProvider {
	return &PassphraseKeyProvider{passphrase: []byte(passphrase), salt: []byte(salt)}
}

func (p *PassphraseKeyProvider) Key(ctx context.Context) ([]byte, error) {
	p.once.Do(func() {
		if len(p.passphrase) == 0 {
			p.err = ErrEmptyPassphrase
			return
		}
		p.key = DeriveMasterKey(p.passphrase, p.salt)
	})
	return p.key, p.err
}

// FileKeyProvider reads the passphrase from a file, e.g. a mounted secret.
// Surrounding whitespace is ignored.
type FileKeyProvider struct {
	path string
	salt string

	mu    sync.Mutex
	inner *PassphraseKeyProvider
}

func NewFileKeyProvider(path, salt string) *FileKeyProvider {
	return &FileKeyProvider{path: path, salt: salt}
}

func (p *FileKeyProvider) Key(ctx context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.inner == nil {
		data, err := os.ReadFile(p.path)
		if err != nil {
			return nil, fmt.Errorf("read key file: %w", err)
		}
		p.inner = NewPassphraseKeyProvider(string(bytes.TrimSpace(data)), p.salt)
	}
	return p.inner.Key(ctx)
}
