package secrets

import (
	"bytes"
	"fmt"
	"io"

	"filippo.io/age"
	"filippo.io/age/armor"

	kerrors "github.com/PolarWolf314/keyage/internal/errors"
)

// Seal encrypts plaintext for exactly one recipient. The envelope is only
// returned once it has been finalized.
func Seal(plaintext []byte, recipient Recipient) ([]byte, error) {
	if recipient.IsZero() {
		return nil, fmt.Errorf("%w: no recipient", kerrors.ErrEncryptFailed)
	}

	var encrypted bytes.Buffer
	writer, err := age.Encrypt(&encrypted, recipient.recipient)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrEncryptFailed, err)
	}

	if _, err := writer.Write(plaintext); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrEncryptFailed, err)
	}

	// Close writes the final chunk; without it the file is truncated.
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrEncryptFailed, err)
	}

	return encrypted.Bytes(), nil
}

// Open decrypts a binary or ASCII-armored age file with identity.
//
// Every failure returns the bare ErrDecryptFailed: a malformed header, an
// unsupported stanza, a non-matching identity and a corrupted payload are
// indistinguishable to the caller.
func Open(ciphertext []byte, identity Identity) ([]byte, error) {
	if identity.IsZero() {
		return nil, kerrors.ErrDecryptFailed
	}

	var src io.Reader = bytes.NewReader(ciphertext)
	if trimmed := bytes.TrimLeft(ciphertext, " \t\r\n"); bytes.HasPrefix(trimmed, []byte(armor.Header)) {
		src = armor.NewReader(bytes.NewReader(trimmed))
	}

	reader, err := age.Decrypt(src, identity.identity)
	if err != nil {
		return nil, kerrors.ErrDecryptFailed
	}

	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return nil, kerrors.ErrDecryptFailed
	}

	return plaintext, nil
}
