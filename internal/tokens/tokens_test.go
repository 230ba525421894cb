package tokens

import (
	"testing"

	"github.com/amarfts/ph-scheduler/platform/config"
	"github.com/amarfts/ph-scheduler/platform/logger"
)

func newTestVault(t *testing.T, key string) *Vault {
	t.Helper()
	vault, err := NewVault(nil, &config.Config{TokenVaultKey: key}, logger.New("test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return vault
}

func TestSealOpenRoundtrip(t *testing.T) {
	vault := newTestVault(t, "vault-key")

	sealed, err := vault.seal("duty-feed-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sealed == "duty-feed-token" {
		t.Fatal("expected the token encrypted at rest")
	}

	opened, err := vault.open(sealed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opened != "duty-feed-token" {
		t.Fatalf("expected roundtrip, got %q", opened)
	}
}

func TestSeal_UniqueNonces(t *testing.T) {
	vault := newTestVault(t, "vault-key")

	first, err := vault.seal("duty-feed-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := vault.seal("duty-feed-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct ciphertexts for the same plaintext")
	}
}

func TestOpen_WrongKeyRejected(t *testing.T) {
	sealed, err := newTestVault(t, "vault-key").seal("duty-feed-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := newTestVault(t, "other-key").open(sealed); err == nil {
		t.Fatal("expected decryption with the wrong key to fail")
	}
}

func TestOpen_MalformedInput(t *testing.T) {
	vault := newTestVault(t, "vault-key")

	if _, err := vault.open("not base64!"); err == nil {
		t.Fatal("expected an error for invalid encoding")
	}
	if _, err := vault.open("c2hvcnQ="); err == nil {
		t.Fatal("expected an error for a truncated ciphertext")
	}
}

func TestNewVault_RequiresKey(t *testing.T) {
	if _, err := NewVault(nil, &config.Config{}, logger.New("test")); err == nil {
		t.Fatal("expected an error without a configured key")
	}
}
