package errors

import "errors"

// Configuration errors indicate the store cannot be set up from its config.
var (
	// ErrConfigLoad indicates the configuration file is missing, malformed or incomplete.
	ErrConfigLoad = errors.New("failed to load configuration")

	// ErrInvalidRecipientFormat indicates the recipient is neither an age nor an SSH public key.
	ErrInvalidRecipientFormat = errors.New("invalid recipient format")

	// ErrAlreadyInitialized indicates the store already has a configuration file.
	ErrAlreadyInitialized = errors.New("store has already been initialized")
)

// Cryptographic errors indicate failures while sealing or opening an entry.
var (
	// ErrEncryptFailed indicates an entry could not be encrypted.
	ErrEncryptFailed = errors.New("failed to encrypt entry")

	// ErrDecryptFailed indicates an entry could not be decrypted with the configured identity.
	ErrDecryptFailed = errors.New("failed to decrypt entry")
)

// Store errors indicate issues with the store directory or its entries.
var (
	// ErrStoreNotFound indicates the store root or a target path does not exist.
	ErrStoreNotFound = errors.New("store not found")

	// ErrPasswordNotFound indicates the requested entry does not exist.
	ErrPasswordNotFound = errors.New("password not found in store")

	// ErrStoreRead indicates reading from the store failed.
	ErrStoreRead = errors.New("failed to read from store")

	// ErrStoreWrite indicates writing to or removing from the store failed.
	ErrStoreWrite = errors.New("failed to write to store")

	// ErrInvalidPath indicates a path could not be checked or lies outside the store.
	ErrInvalidPath = errors.New("invalid store path")
)

// Command errors are raised by caller-level policy, not by the store itself.
var (
	// ErrPasswordExists indicates an entry exists and overwriting was not forced.
	ErrPasswordExists = errors.New("password already exists")

	// ErrInvalidLength indicates a requested password length is too short.
	ErrInvalidLength = errors.New("invalid password length")

	// ErrInvalidOTP indicates a secret is not a usable otpauth URI.
	ErrInvalidOTP = errors.New("invalid one-time password URI")
)
