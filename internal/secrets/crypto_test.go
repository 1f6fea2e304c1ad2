package secrets

import (
	"bytes"
	"errors"
	"testing"

	"filippo.io/age"
	"filippo.io/age/armor"

	kerrors "github.com/PolarWolf314/keyage/internal/errors"
)

func TestSealOpenRoundTrip(t *testing.T) {
	agePath, ageRecipient := newAgeKeyPair(t)
	sshPath, sshRecipient := newSSHKeyPair(t, "")

	keys := []struct {
		name      string
		identity  string
		recipient string
	}{
		{"age", agePath, ageRecipient},
		{"ssh", sshPath, sshRecipient},
	}

	plaintexts := [][]byte{
		{},
		[]byte("correct horse battery staple"),
		[]byte("otpauth://totp/Example:alice?secret=JBSWY3DPEHPK3PXP&issuer=Example"),
		bytes.Repeat([]byte{0x00, 0xff, 0x7f}, 70000), // spans several payload chunks
	}

	for _, key := range keys {
		recipient := mustParseRecipient(t, key.recipient)
		identity := mustLoadIdentity(t, key.identity, nil)

		for _, plaintext := range plaintexts {
			sealed, err := Seal(plaintext, recipient)
			if err != nil {
				t.Fatalf("%s: Seal failed: %v", key.name, err)
			}
			if len(plaintext) > 0 && bytes.Contains(sealed, plaintext) {
				t.Errorf("%s: ciphertext contains the plaintext", key.name)
			}

			opened, err := Open(sealed, identity)
			if err != nil {
				t.Fatalf("%s: Open failed: %v", key.name, err)
			}
			if !bytes.Equal(opened, plaintext) {
				t.Errorf("%s: round trip mismatch for %d bytes", key.name, len(plaintext))
			}
		}
	}
}

func TestOpenWrongIdentity(t *testing.T) {
	_, recipientA := newAgeKeyPair(t)
	identityPathB, _ := newAgeKeyPair(t)
	sshPathB, _ := newSSHKeyPair(t, "")

	sealed, err := Seal([]byte("secret"), mustParseRecipient(t, recipientA))
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	for _, path := range []string{identityPathB, sshPathB} {
		_, err := Open(sealed, mustLoadIdentity(t, path, nil))
		if err != kerrors.ErrDecryptFailed {
			t.Errorf("Expected bare ErrDecryptFailed, got %v", err)
		}
	}
}

func TestOpenRejectsInvalidEnvelopes(t *testing.T) {
	identityPath, recipient := newAgeKeyPair(t)
	identity := mustLoadIdentity(t, identityPath, nil)

	sealed, err := Seal([]byte("secret"), mustParseRecipient(t, recipient))
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	// A passphrase-encrypted file uses an scrypt stanza, which the store never writes.
	scryptRecipient, err := age.NewScryptRecipient("hunter2")
	if err != nil {
		t.Fatalf("NewScryptRecipient failed: %v", err)
	}
	scryptRecipient.SetWorkFactor(10)
	var scrypted bytes.Buffer
	w, err := age.Encrypt(&scrypted, scryptRecipient)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	w.Write([]byte("secret"))
	w.Close()

	tests := []struct {
		name       string
		ciphertext []byte
	}{
		{"empty", nil},
		{"not age", []byte("hello world")},
		{"truncated", sealed[:len(sealed)-10]},
		{"header only", sealed[:bytes.Index(sealed, []byte("\n---"))]},
		{"passphrase envelope", scrypted.Bytes()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Open(tt.ciphertext, identity); err != kerrors.ErrDecryptFailed {
				t.Errorf("Expected bare ErrDecryptFailed, got %v", err)
			}
		})
	}
}

func TestOpenArmored(t *testing.T) {
	identityPath, recipient := newAgeKeyPair(t)
	r := mustParseRecipient(t, recipient)

	var armored bytes.Buffer
	aw := armor.NewWriter(&armored)
	w, err := age.Encrypt(aw, r.recipient)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if _, err := w.Write([]byte("armored secret")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("armor Close failed: %v", err)
	}

	opened, err := Open(append([]byte("\n"), armored.Bytes()...), mustLoadIdentity(t, identityPath, nil))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if string(opened) != "armored secret" {
		t.Errorf("Expected 'armored secret', got %q", opened)
	}
}

func TestSealZeroRecipient(t *testing.T) {
	_, err := Seal([]byte("secret"), Recipient{})
	if !errors.Is(err, kerrors.ErrEncryptFailed) {
		t.Errorf("Expected ErrEncryptFailed, got %v", err)
	}
}

func TestOpenZeroIdentity(t *testing.T) {
	_, err := Open([]byte("anything"), Identity{})
	if err != kerrors.ErrDecryptFailed {
		t.Errorf("Expected bare ErrDecryptFailed, got %v", err)
	}
}
