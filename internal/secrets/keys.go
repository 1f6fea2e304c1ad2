package secrets

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"filippo.io/age"
	"filippo.io/age/agessh"
	"golang.org/x/crypto/ssh"

	kerrors "github.com/PolarWolf314/keyage/internal/errors"
)

// KeyKind is the closed set of key formats a store accepts.
type KeyKind int

const (
	// NativeKey is an age X25519 key.
	NativeKey KeyKind = iota + 1

	// ImportedSSHKey is an ssh-ed25519 or ssh-rsa key.
	ImportedSSHKey
)

func (k KeyKind) String() string {
	switch k {
	case NativeKey:
		return "age"
	case ImportedSSHKey:
		return "ssh"
	default:
		return "unknown"
	}
}

// Recipient is the public key entries are sealed for.
type Recipient struct {
	kind      KeyKind
	recipient age.Recipient
	text      string
}

// Kind returns the key format.
func (r Recipient) Kind() KeyKind { return r.kind }

// String returns the recipient as it was parsed.
func (r Recipient) String() string { return r.text }

// IsZero reports whether r holds no key.
func (r Recipient) IsZero() bool { return r.recipient == nil }

// ParseRecipient parses an age X25519 recipient, falling back to an SSH
// public key. The order is fixed so an ambiguous string always parses the
// same way.
func ParseRecipient(s string) (Recipient, error) {
	s = strings.TrimSpace(s)

	if r, err := age.ParseX25519Recipient(s); err == nil {
		return Recipient{kind: NativeKey, recipient: r, text: s}, nil
	}

	if r, err := agessh.ParseRecipient(s); err == nil {
		return Recipient{kind: ImportedSSHKey, recipient: r, text: s}, nil
	}

	return Recipient{}, kerrors.ErrInvalidRecipientFormat
}

// Identity is the private key entries are opened with.
type Identity struct {
	kind     KeyKind
	identity age.Identity
}

// Kind returns the key format.
func (i Identity) Kind() KeyKind { return i.kind }

// IsZero reports whether i holds no key.
func (i Identity) IsZero() bool { return i.identity == nil }

// PassphraseFunc supplies the passphrase of a protected SSH key.
type PassphraseFunc func() ([]byte, error)

// LoadIdentity reads the identity file at path. Failures wrap ErrConfigLoad
// since the identity file is part of the store configuration.
func LoadIdentity(path string, passphrase PassphraseFunc) (Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: failed to read identity file %s: %v", kerrors.ErrConfigLoad, path, err)
	}

	identity, err := ParseIdentity(data, passphrase)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: identity file %s: %v", kerrors.ErrConfigLoad, path, err)
	}
	return identity, nil
}

// ParseIdentity parses an age identity file or a PEM/OpenSSH private key.
// For an age identity file the first identity wins.
//
// A passphrase-protected SSH key is not decrypted here: passphrase is only
// called when an entry is actually opened.
func ParseIdentity(data []byte, passphrase PassphraseFunc) (Identity, error) {
	trimmed := bytes.TrimSpace(data)

	if !bytes.HasPrefix(trimmed, []byte("-----BEGIN")) {
		ids, err := age.ParseIdentities(bytes.NewReader(trimmed))
		if err != nil {
			return Identity{}, err
		}
		return Identity{kind: NativeKey, identity: ids[0]}, nil
	}

	id, err := agessh.ParseIdentity(trimmed)
	if err == nil {
		return Identity{kind: ImportedSSHKey, identity: id}, nil
	}

	var missing *ssh.PassphraseMissingError
	if !errors.As(err, &missing) {
		return Identity{}, err
	}
	if missing.PublicKey == nil {
		return Identity{}, fmt.Errorf("passphrase-protected key has no embedded public key")
	}
	if passphrase == nil {
		return Identity{}, fmt.Errorf("key is passphrase-protected and no passphrase prompt is available")
	}

	encrypted, err := agessh.NewEncryptedSSHIdentity(missing.PublicKey, trimmed, passphrase)
	if err != nil {
		return Identity{}, err
	}
	return Identity{kind: ImportedSSHKey, identity: encrypted}, nil
}

// RecipientForIdentityFile derives the recipient string matching the identity
// file at path. It never needs the passphrase of a protected OpenSSH key.
func RecipientForIdentityFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read identity file %s: %v", kerrors.ErrConfigLoad, path, err)
	}
	trimmed := bytes.TrimSpace(data)

	if !bytes.HasPrefix(trimmed, []byte("-----BEGIN")) {
		ids, err := age.ParseIdentities(bytes.NewReader(trimmed))
		if err != nil {
			return "", fmt.Errorf("%w: %v", kerrors.ErrConfigLoad, err)
		}
		x25519, ok := ids[0].(*age.X25519Identity)
		if !ok {
			return "", fmt.Errorf("%w: unsupported identity type %T", kerrors.ErrConfigLoad, ids[0])
		}
		return x25519.Recipient().String(), nil
	}

	pub, err := sshPublicKey(trimmed)
	if err != nil {
		// Fall back to the conventional <key>.pub next to the private key.
		pubData, pubErr := os.ReadFile(path + ".pub")
		if pubErr != nil {
			return "", fmt.Errorf("%w: %v", kerrors.ErrConfigLoad, err)
		}
		recipient := strings.TrimSpace(string(pubData))
		if _, err := ParseRecipient(recipient); err != nil {
			return "", err
		}
		return recipient, nil
	}

	return strings.TrimSpace(string(ssh.MarshalAuthorizedKey(pub))), nil
}

func sshPublicKey(pemBytes []byte) (ssh.PublicKey, error) {
	key, err := ssh.ParseRawPrivateKey(pemBytes)
	if err != nil {
		var missing *ssh.PassphraseMissingError
		if errors.As(err, &missing) && missing.PublicKey != nil {
			return missing.PublicKey, nil
		}
		return nil, err
	}

	signer, err := ssh.NewSignerFromKey(key)
	if err != nil {
		return nil, err
	}
	return signer.PublicKey(), nil
}

// GenerateIdentity creates a new X25519 identity file at path in the format
// written by age-keygen and returns its recipient. An existing file is never
// overwritten.
func GenerateIdentity(path string) (string, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return "", fmt.Errorf("failed to generate identity: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", fmt.Errorf("failed to create directory for identity at %s: %w", filepath.Dir(path), err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return "", fmt.Errorf("failed to create identity file at %s: %w", path, err)
	}
	defer file.Close()

	recipient := identity.Recipient().String()
	_, err = fmt.Fprintf(file, "# created: %s\n# public key: %s\n%s\n",
		time.Now().Format(time.RFC3339), recipient, identity.String())
	if err != nil {
		return "", fmt.Errorf("failed to write identity file: %w", err)
	}

	return recipient, nil
}
