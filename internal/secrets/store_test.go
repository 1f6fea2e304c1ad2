package secrets

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/PolarWolf314/keyage/internal/audit"
	kerrors "github.com/PolarWolf314/keyage/internal/errors"
	logger "github.com/PolarWolf314/keyage/internal/logging"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	identityPath, recipient := newAgeKeyPair(t)
	store, err := NewStore(StoreOptions{
		RootPath:     t.TempDir(),
		IdentityPath: identityPath,
		Recipient:    recipient,
	})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store
}

func TestNewStoreInvalidRecipient(t *testing.T) {
	root := filepath.Join(t.TempDir(), "never-created")

	_, err := NewStore(StoreOptions{
		RootPath:     root,
		IdentityPath: filepath.Join(root, "identity"),
		Recipient:    "not-a-key",
	})
	if !errors.Is(err, kerrors.ErrInvalidRecipientFormat) {
		t.Fatalf("Expected ErrInvalidRecipientFormat, got %v", err)
	}
	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Error("Expected no filesystem changes for an invalid recipient")
	}
}

func TestStoreWriteReadScenario(t *testing.T) {
	store := newTestStore(t)
	plaintext := []byte("correct horse battery staple")

	if err := store.Write("site/login", plaintext); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	path := filepath.Join(store.Root(), "site", "login.age")
	encrypted, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected %s to be created: %v", path, err)
	}
	if bytes.Contains(encrypted, plaintext) {
		t.Error("Entry on disk contains the plaintext")
	}
	if !bytes.HasPrefix(encrypted, []byte("age-encryption.org/v1\n")) {
		t.Error("Entry on disk is not an age v1 file")
	}

	got, err := store.Read("site/login")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("Expected %q, got %q", plaintext, got)
	}
}

func TestStoreFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX permissions only")
	}
	store := newTestStore(t)

	if err := store.Write("a/b/c", []byte("x")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(store.Root(), "a", "b", "c.age"))
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Expected entry permissions 0600, got %o", perm)
	}

	info, err = os.Stat(filepath.Join(store.Root(), "a", "b"))
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0700 {
		t.Errorf("Expected directory permissions 0700, got %o", perm)
	}
}

func TestStoreWriteIdempotentDirectories(t *testing.T) {
	store := newTestStore(t)

	for i, content := range []string{"first", "second"} {
		if err := store.Write("deep/nested/dirs/entry", []byte(content)); err != nil {
			t.Fatalf("Write %d failed: %v", i, err)
		}
	}
	if err := store.Write("deep/nested/sibling", []byte("third")); err != nil {
		t.Fatalf("Write into existing directory failed: %v", err)
	}

	got, err := store.Read("deep/nested/dirs/entry")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("Expected overwrite to replace content, got %q", got)
	}
}

func TestStoreExistenceLifecycle(t *testing.T) {
	store := newTestStore(t)

	exists, err := store.Exists("mail/work")
	if err != nil || exists {
		t.Fatalf("Expected entry to be absent, got %t, %v", exists, err)
	}

	if err := store.Write("mail/work", []byte("pw")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	exists, err = store.Exists("mail/work")
	if err != nil || !exists {
		t.Fatalf("Expected entry to exist, got %t, %v", exists, err)
	}

	if err := store.Delete("mail/work"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	exists, err = store.Exists("mail/work")
	if err != nil || exists {
		t.Fatalf("Expected entry to be gone, got %t, %v", exists, err)
	}

	if _, err := store.Read("mail/work"); !errors.Is(err, kerrors.ErrPasswordNotFound) {
		t.Errorf("Expected ErrPasswordNotFound, got %v", err)
	}
}

func TestStoreDeleteDirectory(t *testing.T) {
	store := newTestStore(t)
	for _, name := range []string{"team/a", "team/b", "team/sub/c", "keep"} {
		if err := store.Write(name, []byte(name)); err != nil {
			t.Fatalf("Write %s failed: %v", name, err)
		}
	}

	if err := store.Delete("team"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(store.Root(), "team")); !os.IsNotExist(err) {
		t.Error("Expected directory to be removed recursively")
	}
	if exists, _ := store.Exists("keep"); !exists {
		t.Error("Expected sibling entry to survive")
	}
}

func TestStoreDeleteErrors(t *testing.T) {
	store := newTestStore(t)

	tests := []struct {
		name    string
		entry   string
		wantErr error
	}{
		{"missing entry", "nope", kerrors.ErrPasswordNotFound},
		{"store root", "", kerrors.ErrInvalidPath},
		{"dot root", ".", kerrors.ErrInvalidPath},
		{"outside root", "../victim", kerrors.ErrInvalidPath},
		{"audit directory", audit.DirName, kerrors.ErrInvalidPath},
		{"audit directory with slash", audit.DirName + "/", kerrors.ErrInvalidPath},
		{"audit log", audit.DirName + "/" + audit.FileName, kerrors.ErrInvalidPath},
		{"audit directory via dot-dot", "team/../" + audit.DirName, kerrors.ErrInvalidPath},
	}

	logPath := audit.LogPath(store.Root())
	writeTestFile(t, logPath, []byte("{}\n"))
	writeTestFile(t, filepath.Join(store.Root(), audit.DirName, audit.FileName+".age"), []byte("x"))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.Delete(tt.entry); !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if _, err := os.Stat(store.Root()); err != nil {
		t.Errorf("Store root must survive: %v", err)
	}
	if _, err := os.Stat(logPath); err != nil {
		t.Errorf("Audit log must survive: %v", err)
	}
}

func TestStoreCheckRemovable(t *testing.T) {
	store := newTestStore(t)
	writeTestFile(t, audit.LogPath(store.Root()), []byte("{}\n"))
	writeTestFile(t, filepath.Join(store.Root(), "team", "db.age"), []byte("x"))

	for _, name := range []string{"team", "team/db", "missing", ".keyagex"} {
		if err := store.CheckRemovable(name); err != nil {
			t.Errorf("CheckRemovable(%q) = %v, want nil", name, err)
		}
	}
	for _, name := range []string{"", ".", "../x", audit.DirName} {
		if err := store.CheckRemovable(name); !errors.Is(err, kerrors.ErrInvalidPath) {
			t.Errorf("CheckRemovable(%q) = %v, want ErrInvalidPath", name, err)
		}
	}
}

func TestStoreConfinement(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "store")
	if err := os.Mkdir(root, 0700); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}
	victim := filepath.Join(parent, "victim.age")
	writeTestFile(t, victim, []byte("do not touch"))

	identityPath, recipient := newAgeKeyPair(t)
	store, err := NewStore(StoreOptions{RootPath: root, IdentityPath: identityPath, Recipient: recipient})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	confined, err := store.Confined("../victim")
	if err != nil {
		t.Fatalf("Confined returned error: %v", err)
	}
	if confined {
		t.Error("Expected ../victim to be outside the store")
	}

	if err := store.Write("../victim", []byte("overwritten")); !errors.Is(err, kerrors.ErrInvalidPath) {
		t.Errorf("Write: expected ErrInvalidPath, got %v", err)
	}
	if err := store.Write("a/../../escape", []byte("x")); !errors.Is(err, kerrors.ErrInvalidPath) {
		t.Errorf("Write: expected ErrInvalidPath, got %v", err)
	}
	if _, err := store.Read("../victim"); !errors.Is(err, kerrors.ErrInvalidPath) {
		t.Errorf("Read: expected ErrInvalidPath, got %v", err)
	}
	if err := store.Delete("../victim"); !errors.Is(err, kerrors.ErrInvalidPath) {
		t.Errorf("Delete: expected ErrInvalidPath, got %v", err)
	}

	content, err := os.ReadFile(victim)
	if err != nil || string(content) != "do not touch" {
		t.Errorf("File outside the store was modified: %q, %v", content, err)
	}
	if _, err := os.Stat(filepath.Join(parent, "escape.age")); !os.IsNotExist(err) {
		t.Error("Write created a file outside the store")
	}
}

func TestStoreMissingRoot(t *testing.T) {
	identityPath, recipient := newAgeKeyPair(t)
	store, err := NewStore(StoreOptions{
		RootPath:     filepath.Join(t.TempDir(), "missing"),
		IdentityPath: identityPath,
		Recipient:    recipient,
	})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	if err := store.Write("x", []byte("x")); !errors.Is(err, kerrors.ErrStoreNotFound) {
		t.Errorf("Write: expected ErrStoreNotFound, got %v", err)
	}
	if _, err := store.Read("x"); !errors.Is(err, kerrors.ErrStoreNotFound) {
		t.Errorf("Read: expected ErrStoreNotFound, got %v", err)
	}
	if _, err := store.Exists("x"); !errors.Is(err, kerrors.ErrStoreNotFound) {
		t.Errorf("Exists: expected ErrStoreNotFound, got %v", err)
	}
}

func TestStoreWriteOverDirectory(t *testing.T) {
	store := newTestStore(t)
	if err := os.MkdirAll(filepath.Join(store.Root(), "team"), 0700); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	if err := store.Write("team", []byte("x")); !errors.Is(err, kerrors.ErrStoreWrite) {
		t.Errorf("Expected ErrStoreWrite, got %v", err)
	}
}

func TestStoreReadWrongIdentity(t *testing.T) {
	store := newTestStore(t)
	if err := store.Write("entry", []byte("x")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	otherIdentity, _ := newAgeKeyPair(t)
	other, err := NewStore(StoreOptions{
		RootPath:     store.Root(),
		IdentityPath: otherIdentity,
		Recipient:    store.Recipient().String(),
	})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	if _, err := other.Read("entry"); err != kerrors.ErrDecryptFailed {
		t.Errorf("Expected bare ErrDecryptFailed, got %v", err)
	}
}

func TestStoreReadTruncatedEntry(t *testing.T) {
	store := newTestStore(t)
	if err := store.Write("entry", []byte("some secret value")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	path := store.Resolve("entry")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	writeTestFile(t, path, data[:len(data)/2])

	if _, err := store.Read("entry"); err != kerrors.ErrDecryptFailed {
		t.Errorf("Expected bare ErrDecryptFailed, got %v", err)
	}
}

func TestStoreIdentityLoadedOnce(t *testing.T) {
	store := newTestStore(t)
	if err := store.Write("entry", []byte("x")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := store.Read("entry"); err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	// The identity file is not consulted again for this handle.
	if err := os.Remove(store.identityPath); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := store.Read("entry"); err != nil {
		t.Errorf("Expected cached identity to be used, got %v", err)
	}
}

func TestStoreWriteNeedsNoIdentity(t *testing.T) {
	_, recipient := newAgeKeyPair(t)
	store, err := NewStore(StoreOptions{
		RootPath:     t.TempDir(),
		IdentityPath: filepath.Join(t.TempDir(), "missing"),
		Recipient:    recipient,
	})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	if err := store.Write("entry", []byte("x")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := store.Read("entry"); !errors.Is(err, kerrors.ErrConfigLoad) {
		t.Errorf("Expected ErrConfigLoad for missing identity, got %v", err)
	}
}

func TestStoreNeverLogsPlaintext(t *testing.T) {
	var out bytes.Buffer
	identityPath, recipient := newAgeKeyPair(t)
	store, err := NewStore(StoreOptions{
		RootPath:     t.TempDir(),
		IdentityPath: identityPath,
		Recipient:    recipient,
		Logger:       logger.Logger{Verbose: true, Debug: true, Out: &out, Err: &out},
	})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	if err := store.Write("entry", []byte("TOPSECRETVALUE")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := store.Read("entry"); err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if out.Len() == 0 {
		t.Error("Expected debug output")
	}
	if strings.Contains(out.String(), "TOPSECRETVALUE") || strings.Contains(out.String(), "AGE-SECRET-KEY") {
		t.Errorf("Debug output leaks secret material: %s", out.String())
	}
}
