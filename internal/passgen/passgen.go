package passgen

import (
	"crypto/rand"
	"fmt"
	"math/big"

	kerrors "github.com/PolarWolf314/keyage/internal/errors"

	"github.com/sethvargo/go-password/password"
)

// MinLength is the shortest password Generate accepts.
const MinLength = 8

const (
	lowerLetters = "abcdefghijkmnpqrstuvwxyz"
	upperLetters = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	digits       = "23456789"
	symbols      = "~!@#$%^&*()_+-={}[]:<>?,./"
)

// Options controls the shape of a generated password.
type Options struct {
	Length  int
	Symbols bool
}

// Generate returns a random password built from the configured classes.
func Generate(opts Options) (string, error) {
	if opts.Length < MinLength {
		return "", fmt.Errorf("%w: got %d, need at least %d", kerrors.ErrInvalidLength, opts.Length, MinLength)
	}

	gen, err := password.NewGenerator(&password.GeneratorInput{
		LowerLetters: lowerLetters,
		UpperLetters: upperLetters,
		Digits:       digits,
		Symbols:      symbols,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create password generator: %w", err)
	}

	// One upper and one lower case letter are placed separately; the
	// generator draws letters from both cases as a single pool.
	numDigits, numSymbols := classCounts(opts)
	pw, err := gen.Generate(opts.Length-2, numDigits, numSymbols, false, true)
	if err != nil {
		return "", fmt.Errorf("failed to generate password: %w", err)
	}

	for _, pool := range []string{upperLetters, lowerLetters} {
		if pw, err = insertRandom(pw, pool); err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
	}

	return pw, nil
}

// insertRandom inserts one character from pool at a random position in s.
func insertRandom(s, pool string) (string, error) {
	c, err := rand.Int(rand.Reader, big.NewInt(int64(len(pool))))
	if err != nil {
		return "", err
	}
	at, err := rand.Int(rand.Reader, big.NewInt(int64(len(s)+1)))
	if err != nil {
		return "", err
	}
	i := int(at.Int64())
	return s[:i] + string(pool[c.Int64()]) + s[i:], nil
}

// classCounts splits the length between digits and symbols, leaving at
// least half of the password for letters.
func classCounts(opts Options) (numDigits, numSymbols int) {
	numDigits = max(1, opts.Length/4)
	if opts.Symbols {
		numSymbols = max(1, opts.Length/8)
	}
	return numDigits, numSymbols
}
