// Package tokens stores each operator's duty-feed bearer token encrypted at
// rest.
package tokens

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amarfts/ph-scheduler/platform/apperr"
	"github.com/amarfts/ph-scheduler/platform/config"
	"github.com/amarfts/ph-scheduler/platform/logger"
)

// Vault encrypts and persists duty-feed tokens per operator.
type Vault struct {
	pool *pgxpool.Pool
	aead cipher.AEAD
	log  *logger.Logger
}

// NewVault creates the vault. The configured key is hashed to a fixed-size
// AES-256 key.
func NewVault(pool *pgxpool.Pool, cfg config.VaultConfig, log *logger.Logger) (*Vault, error) {
	if cfg.GetTokenVaultKey() == "" {
		return nil, fmt.Errorf("token vault key is not configured")
	}

	key := sha256.Sum256([]byte(cfg.GetTokenVaultKey()))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &Vault{pool: pool, aead: aead, log: log}, nil
}

// Save encrypts and stores the operator's duty-feed token, replacing any
// previous one.
func (v *Vault) Save(ctx context.Context, userID uuid.UUID, token string) error {
	sealed, err := v.seal(token)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO user_tokens (user_id, encrypted_token) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
			SET encrypted_token = EXCLUDED.encrypted_token, updated_at = now()`

	if _, err := v.pool.Exec(ctx, query, userID, sealed); err != nil {
		return apperr.Persistence("saving duty token failed", err)
	}

	v.log.Info("duty token stored", "user_id", userID)
	return nil
}

// DutyToken returns the operator's decrypted duty-feed token.
func (v *Vault) DutyToken(ctx context.Context, userID uuid.UUID) (string, error) {
	var sealed string
	err := v.pool.QueryRow(ctx,
		`SELECT encrypted_token FROM user_tokens WHERE user_id = $1`, userID,
	).Scan(&sealed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperr.NotFound("no duty token stored")
		}
		return "", fmt.Errorf("get duty token: %w", err)
	}

	return v.open(sealed)
}

// HasToken reports whether the operator has a stored token.
func (v *Vault) HasToken(ctx context.Context, userID uuid.UUID) (bool, error) {
	var exists bool
	err := v.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_tokens WHERE user_id = $1)`, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check duty token: %w", err)
	}
	return exists, nil
}

func (v *Vault) seal(plaintext string) (string, error) {
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := v.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (v *Vault) open(encoded string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode stored token: %w", err)
	}
	if len(sealed) < v.aead.NonceSize() {
		return "", fmt.Errorf("stored token too short")
	}

	nonce, ciphertext := sealed[:v.aead.NonceSize()], sealed[v.aead.NonceSize():]
	plaintext, err := v.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("decrypt stored token: %w", err)
	}

	return string(plaintext), nil
}
