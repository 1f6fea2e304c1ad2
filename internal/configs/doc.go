// Package configs manages keyage's configuration and well-known paths.
//
// # Store Configuration
//
// Each store keeps its configuration in TOML at the store root:
//
//	<store>/config.toml
//
// The file has exactly two fields:
//
//	identifier = "/home/me/.local/share/keyage/keys/identity.txt"
//	recipient  = "age1..."
//
// identifier locates the private identity file (an age identity file or an
// SSH private key). recipient is the public key entries are sealed for,
// either an age X25519 recipient or an SSH public key line.
//
// # Store Root
//
// ResolveStoreRoot picks the root directory once, at the CLI layer:
//   - KEYAGE_STORE, when set
//   - otherwise <local data dir>/keyage-store
//
// The store itself never reads the environment.
//
// # User Settings
//
// UserSettings holds per-user paths that do not depend on a store, such as
// where `keyage init` writes a freshly generated identity.
package configs
