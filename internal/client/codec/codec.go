// Package codec turns field records into opaque envelope strings and back.
//
// Encrypt applies the photo placeholder transform, serializes the record to
// JSON, seals it with AES-256-GCM under the shared key and encodes
// nonce||ciphertext as standard base64. Decrypt reverses every step and
// reports any failure as a *DecryptError, never a panic.
package codec

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/dmitrijs2005/fieldkeeper/internal/client/models"
	"github.com/dmitrijs2005/fieldkeeper/internal/common"
	"github.com/dmitrijs2005/fieldkeeper/internal/cryptox"
)

// Decrypt failure stages.
const (
	StageDecode = "decode"
	StageKey    = "key"
	StageOpen   = "open"
	StageUTF8   = "utf8"
	StageParse  = "parse"
)

// DecryptError is returned for an envelope that cannot be read back.
type DecryptError struct {
	Stage string
	Err   error
}

func (e *DecryptError) Error() string {
	return fmt.Sprintf("decrypt (%s): %v", e.Stage, e.Err)
}

// Is makes errors.Is(err, common.ErrDecrypt) hold for every DecryptError.
func (e *DecryptError) Is(target error) bool {
	return target == common.ErrDecrypt
}

func (e *DecryptError) Unwrap() error {
	return e.Err
}

// Codec encrypts and decrypts records with the key supplied by a
// cryptox.KeyProvider.
type Codec struct {
	keys cryptox.KeyProvider
}

func New(keys cryptox.KeyProvider) *Codec {
	return &Codec{keys: keys}
}

// Encrypt returns the envelope text for record. The photo, if any, is
// replaced by its placeholder before serialization; record is not modified.
func (c *Codec) Encrypt(ctx context.Context, record models.FieldRecord) (string, error) {
	if record == nil {
		return "", fmt.Errorf("%w: nil record", common.ErrEncoding)
	}
	return c.EncryptValue(ctx, record.WithPhotoPlaceholder())
}

// EncryptValue seals the JSON form of an arbitrary value.
func (c *Codec) EncryptValue(ctx context.Context, v any) (string, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrEncoding, err)
	}

	key, err := c.keys.Key(ctx)
	if err != nil {
		return "", fmt.Errorf("key: %w", err)
	}

	sealed, err := cryptox.Seal(plaintext, key)
	if err != nil {
		return "", fmt.Errorf("encrypt: %w", err)
	}

	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt parses the envelope text into the record variant of category.
// The payload must be a JSON object.
func (c *Codec) Decrypt(ctx context.Context, category models.Category, ciphertext string) (models.FieldRecord, error) {
	record, err := models.NewRecord(category)
	if err != nil {
		return nil, &DecryptError{Stage: StageParse, Err: err}
	}
	plaintext, err := c.open(ctx, ciphertext)
	if err != nil {
		return nil, err
	}
	if trimmed := bytes.TrimSpace(plaintext); trimmed[0] != '{' {
		return nil, &DecryptError{Stage: StageParse, Err: fmt.Errorf("%w: payload is not an object", common.ErrEncoding)}
	}
	if err := unmarshal(plaintext, record); err != nil {
		return nil, err
	}
	return record, nil
}

// DecryptInto opens the envelope text and unmarshals it into v.
func (c *Codec) DecryptInto(ctx context.Context, ciphertext string, v any) error {
	plaintext, err := c.open(ctx, ciphertext)
	if err != nil {
		return err
	}
	return unmarshal(plaintext, v)
}

// open returns the non-empty UTF-8 plaintext sealed in the envelope text.
func (c *Codec) open(ctx context.Context, ciphertext string) ([]byte, error) {
	sealed, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, &DecryptError{Stage: StageDecode, Err: err}
	}

	key, err := c.keys.Key(ctx)
	if err != nil {
		return nil, &DecryptError{Stage: StageKey, Err: err}
	}

	plaintext, err := cryptox.Open(sealed, key)
	if err != nil {
		return nil, &DecryptError{Stage: StageOpen, Err: err}
	}

	if len(bytes.TrimSpace(plaintext)) == 0 {
		return nil, &DecryptError{Stage: StageParse, Err: errors.New("empty payload")}
	}
	if !utf8.Valid(plaintext) {
		return nil, &DecryptError{Stage: StageUTF8, Err: errors.New("payload is not valid UTF-8")}
	}
	return plaintext, nil
}

func unmarshal(plaintext []byte, v any) error {
	if err := json.Unmarshal(plaintext, v); err != nil {
		return &DecryptError{Stage: StageParse, Err: fmt.Errorf("%w: %v", common.ErrEncoding, err)}
	}
	return nil
}
