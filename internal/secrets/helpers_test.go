package secrets

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"filippo.io/age"
	"golang.org/x/crypto/ssh"
)

// writeTestFile is a helper to write test files with 0600 permissions.
func writeTestFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		t.Fatalf("Failed to create test directory: %v", err)
	}
	if err := os.WriteFile(path, content, 0600); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
}

// newAgeKeyPair writes a fresh age identity file and returns its path and recipient.
func newAgeKeyPair(t *testing.T) (string, string) {
	t.Helper()
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatalf("Failed to generate identity: %v", err)
	}
	path := filepath.Join(t.TempDir(), "identity.txt")
	writeTestFile(t, path, []byte(identity.String()+"\n"))
	return path, identity.Recipient().String()
}

// newSSHKeyPair writes a fresh ed25519 OpenSSH key, optionally protected
// with passphrase, and returns its path and authorized_keys line.
func newSSHKeyPair(t *testing.T, passphrase string) (string, string) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("Failed to generate ed25519 key: %v", err)
	}

	var block *pem.Block
	if passphrase == "" {
		block, err = ssh.MarshalPrivateKey(priv, "test")
	} else {
		block, err = ssh.MarshalPrivateKeyWithPassphrase(priv, "test", []byte(passphrase))
	}
	if err != nil {
		t.Fatalf("Failed to marshal private key: %v", err)
	}

	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		t.Fatalf("Failed to convert public key: %v", err)
	}

	path := filepath.Join(t.TempDir(), "id_ed25519")
	writeTestFile(t, path, pem.EncodeToMemory(block))
	return path, strings.TrimSpace(string(ssh.MarshalAuthorizedKey(sshPub)))
}

func mustParseRecipient(t *testing.T, s string) Recipient {
	t.Helper()
	r, err := ParseRecipient(s)
	if err != nil {
		t.Fatalf("ParseRecipient(%q) failed: %v", s, err)
	}
	return r
}

func mustLoadIdentity(t *testing.T, path string, passphrase PassphraseFunc) Identity {
	t.Helper()
	id, err := LoadIdentity(path, passphrase)
	if err != nil {
		t.Fatalf("LoadIdentity(%s) failed: %v", path, err)
	}
	return id
}
