// Package secrets implements the keyage store: a directory tree of
// independently encrypted entries.
//
// # Entries
//
// An entry is addressed by a path relative to the store root, such as
// "team/db-password". On disk it is a single age file carrying the fixed
// suffix:
//
//	<root>/team/db-password.age
//
// Names that already have another extension keep it (note.txt becomes
// note.txt.age). A name that resolves to an existing directory addresses a
// subtree and is never given the suffix.
//
// # Confinement
//
// Before any read, write or delete, the resolved path and the store root are
// both canonicalized (symlinks evaluated) and the path must lie inside the
// root. Canonicalization errors are returned, never treated as "outside".
//
// # Envelope
//
// Entries use the standard age v1 format, so they can be decrypted with the
// age CLI and vice versa. Every entry is sealed for exactly one recipient:
//
//   - an age X25519 public key (age1...)
//   - an SSH public key (ssh-ed25519 or ssh-rsa)
//
// and opened with the matching identity file. Any failure to open an entry
// is reported as the bare ErrDecryptFailed.
//
// # Durability
//
// Writes replace the file in place. There is no temp-file rename and no
// fsync, so a crash mid-write can leave a truncated entry. Such an entry
// fails to open; it is never silently accepted.
package secrets
