package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/PolarWolf314/keyage/internal/audit"
	kerrors "github.com/PolarWolf314/keyage/internal/errors"
	logger "github.com/PolarWolf314/keyage/internal/logging"
)

// StoreOptions configures a Store. The CLI fills it from ResolveStoreRoot
// and the store's config.toml.
type StoreOptions struct {
	// RootPath is the store directory. It is made absolute but not created.
	RootPath string

	// IdentityPath locates the identity file used to open entries.
	IdentityPath string

	// Recipient is the public key entries are sealed for.
	Recipient string

	// Passphrase is called for passphrase-protected SSH identities only.
	Passphrase PassphraseFunc

	Logger logger.Logger
}

// Store is a handle on one store root bound to one recipient and one
// identity. It holds no other mutable state and does no locking: concurrent
// writers to the same entry race at the filesystem level.
type Store struct {
	rootPath     string
	identityPath string
	recipient    Recipient
	passphrase   PassphraseFunc
	log          logger.Logger

	identityOnce sync.Once
	identity     Identity
	identityErr  error
}

// NewStore parses the recipient and returns a store handle. It touches
// neither the filesystem nor any key material beyond the recipient string.
func NewStore(opts StoreOptions) (*Store, error) {
	recipient, err := ParseRecipient(opts.Recipient)
	if err != nil {
		return nil, err
	}

	rootPath, err := filepath.Abs(opts.RootPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidPath, err)
	}

	opts.Logger.Debugf("Store root: %s, recipient type: %s", rootPath, recipient.Kind())

	return &Store{
		rootPath:     rootPath,
		identityPath: opts.IdentityPath,
		recipient:    recipient,
		passphrase:   opts.Passphrase,
		log:          opts.Logger,
	}, nil
}

// Root returns the absolute store root.
func (s *Store) Root() string {
	return s.rootPath
}

// Recipient returns the recipient entries are sealed for.
func (s *Store) Recipient() Recipient {
	return s.recipient
}

// Resolve returns the on-disk path for name.
func (s *Store) Resolve(name string) string {
	path := ResolveEntryPath(s.rootPath, name)
	s.log.Debugf("Resolved %q to %s", name, path)
	return path
}

// Confined reports whether name resolves to a path inside the store.
func (s *Store) Confined(name string) (bool, error) {
	return IsConfined(s.rootPath, s.Resolve(name))
}

// Exists reports whether name is an entry in the store.
func (s *Store) Exists(name string) (bool, error) {
	return isEntry(s.rootPath, s.Resolve(name))
}

// Entries lists entry names matching pattern. See ListEntries.
func (s *Store) Entries(pattern string) ([]string, error) {
	return ListEntries(s.rootPath, pattern)
}

// Read decrypts the entry name.
func (s *Store) Read(name string) ([]byte, error) {
	path := s.Resolve(name)

	if err := s.confine(path); err != nil {
		return nil, err
	}

	found, err := isEntry(s.rootPath, path)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrPasswordNotFound, name)
	}

	encrypted, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrStoreRead, err)
	}

	identity, err := s.loadIdentity()
	if err != nil {
		return nil, err
	}

	return Open(encrypted, identity)
}

// Write seals plaintext and stores it as name, creating missing parent
// directories and replacing any existing entry. Refusing to overwrite is
// left to the caller.
func (s *Store) Write(name string, plaintext []byte) error {
	path := s.Resolve(name)

	if err := s.confine(path); err != nil {
		return err
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", kerrors.ErrStoreWrite, name)
	}

	encrypted, err := Seal(plaintext, s.recipient)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrStoreWrite, err)
	}

	if err := os.WriteFile(path, encrypted, 0600); err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrStoreWrite, err)
	}

	s.log.Debugf("Wrote %d encrypted bytes to %s", len(encrypted), path)
	return nil
}

// Delete removes the entry name, or the whole subtree if name is a
// directory. Deleting something that does not exist is an error.
func (s *Store) Delete(name string) error {
	path := s.Resolve(name)
	if err := s.checkRemovable(name, path); err != nil {
		return err
	}

	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", kerrors.ErrPasswordNotFound, name)
		}
		return fmt.Errorf("%w: %v", kerrors.ErrStoreWrite, err)
	}

	if info.IsDir() {
		s.log.Debugf("Removing directory %s", path)
		err = os.RemoveAll(path)
	} else {
		s.log.Debugf("Removing file %s", path)
		err = os.Remove(path)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrStoreWrite, err)
	}

	return nil
}

// CheckRemovable returns ErrInvalidPath if name resolves outside the
// store, to the store root itself, or into the audit directory.
func (s *Store) CheckRemovable(name string) error {
	return s.checkRemovable(name, s.Resolve(name))
}

func (s *Store) checkRemovable(name, path string) error {
	root, err := canonicalRoot(s.rootPath)
	if err != nil {
		return err
	}
	canonical, inside, err := containment(s.rootPath, path)
	if err != nil {
		return err
	}
	if !inside {
		return fmt.Errorf("%w: %s is outside the store", kerrors.ErrInvalidPath, name)
	}
	if canonical == root {
		return fmt.Errorf("%w: refusing to remove the store root", kerrors.ErrInvalidPath)
	}

	rel, err := filepath.Rel(root, canonical)
	if err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrInvalidPath, err)
	}
	if first, _, _ := strings.Cut(filepath.ToSlash(rel), "/"); first == audit.DirName {
		return fmt.Errorf("%w: refusing to remove %s", kerrors.ErrInvalidPath, audit.DirName)
	}
	return nil
}

func (s *Store) confine(path string) error {
	inside, err := IsConfined(s.rootPath, path)
	if err != nil {
		return err
	}
	if !inside {
		return fmt.Errorf("%w: %s is outside the store", kerrors.ErrInvalidPath, path)
	}
	return nil
}

// loadIdentity reads the identity file once per store handle.
func (s *Store) loadIdentity() (Identity, error) {
	s.identityOnce.Do(func() {
		s.log.Debugf("Loading identity from %s", s.identityPath)
		s.identity, s.identityErr = LoadIdentity(s.identityPath, s.passphrase)
	})
	return s.identity, s.identityErr
}
