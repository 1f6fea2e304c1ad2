// Package errors provides typed error values for keyage.
//
// Every store operation fails with one of a closed set of sentinel errors,
// so callers branch on the kind with errors.Is() instead of matching
// message text.
//
// # Error Categories
//
//   - Configuration errors: ErrConfigLoad, ErrInvalidRecipientFormat
//   - Crypto errors: ErrEncryptFailed, ErrDecryptFailed
//   - Store errors: ErrStoreNotFound, ErrPasswordNotFound, ErrStoreRead,
//     ErrStoreWrite, ErrInvalidPath
//   - Command errors: ErrPasswordExists, ErrInvalidLength,
//     ErrAlreadyInitialized, ErrInvalidOTP
//
// # Usage
//
// Wrap sentinels with context in internal packages:
//
//	return fmt.Errorf("%w: %v", kerrors.ErrStoreRead, err)
//
// Handle them in the CLI layer:
//
//	plaintext, err := store.Read(name)
//	if errors.Is(err, kerrors.ErrPasswordNotFound) {
//	    // Show user-friendly message
//	}
//
// ErrDecryptFailed is always returned bare. Header parse errors, unsupported
// envelopes and a non-matching identity look the same to the caller.
package errors
