// Package cmd contains testing utilities shared between command tests.
// This file provides common functions for setting up a temporary store,
// running the CLI and capturing its output.
package cmd

import (
	"bytes"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/PolarWolf314/keyage/internal/configs"
)

// testEnv describes the temporary locations used by one test.
type testEnv struct {
	storeDir string
	keysDir  string
}

// setupTestEnvironment points KEYAGE_STORE and the user key directory at
// temporary directories and stubs out every interactive prompt.
func setupTestEnvironment(t *testing.T) *testEnv {
	t.Helper()

	base := t.TempDir()
	env := &testEnv{
		storeDir: filepath.Join(base, "store"),
		keysDir:  filepath.Join(base, "keys"),
	}

	t.Setenv(configs.StoreDirEnvVar, env.storeDir)
	t.Setenv("NO_COLOR", "1")

	originalUserSettings := userSettings
	originalReadSecret := readSecret
	originalReadStdin := readStdin
	originalReadPassphrase := readPassphrase
	originalConfirm := confirm
	originalNow := now

	t.Cleanup(func() {
		userSettings = originalUserSettings
		readSecret = originalReadSecret
		readStdin = originalReadStdin
		readPassphrase = originalReadPassphrase
		confirm = originalConfirm
		now = originalNow
		ResetGlobalState()
	})

	userSettings = func() (*configs.UserSettings, error) {
		return &configs.UserSettings{UserKeysPath: env.keysDir}, nil
	}
	readSecret = func() ([]byte, error) {
		return nil, errors.New("unexpected secret prompt")
	}
	readStdin = func() ([]byte, error) {
		return nil, errors.New("unexpected read from stdin")
	}
	readPassphrase = func() ([]byte, error) {
		return nil, errors.New("unexpected passphrase prompt")
	}
	confirm = func(question string) (bool, error) {
		return false, errors.New("unexpected confirmation prompt")
	}
	now = func() time.Time { return time.Unix(59, 0) }

	return env
}

// captureOutput captures both stdout and stderr during function execution.
func captureOutput(fn func() error) (string, error) {
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	stdoutChan := make(chan string, 1)
	stderrChan := make(chan string, 1)

	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, stdoutReader); err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		stdoutChan <- buf.String()
	}()

	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, stderrReader); err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		stderrChan <- buf.String()
	}()

	err := fn()

	stdoutWriter.Close()
	stderrWriter.Close()

	os.Stdout = originalStdout
	os.Stderr = originalStderr

	return <-stdoutChan + <-stderrChan, err
}

// runCLI executes the root command with args and returns its output.
func runCLI(args ...string) (string, error) {
	ResetGlobalState()
	RootCmd.SetArgs(args)
	return captureOutput(func() error {
		return RootCmd.Execute()
	})
}

// mustRunCLI is runCLI for commands that are expected to succeed.
func mustRunCLI(t *testing.T, args ...string) string {
	t.Helper()

	output, err := runCLI(args...)
	if err != nil {
		t.Fatalf("keyage %v failed: %v\nOutput: %s", args, err, output)
	}
	return output
}

// initializeStore runs `keyage init` with a generated identity.
func initializeStore(t *testing.T) {
	t.Helper()
	mustRunCLI(t, "init")
}

// insertSecret stores secret under name through `keyage insert --stdin`.
func insertSecret(t *testing.T, name, secret string, extraArgs ...string) {
	t.Helper()

	readStdin = func() ([]byte, error) { return []byte(secret), nil }
	args := append([]string{"insert", "--stdin"}, extraArgs...)
	mustRunCLI(t, append(args, name)...)
}

// loadTestConfig reads the config.toml written by init.
func loadTestConfig(t *testing.T, env *testEnv) *configs.Configuration {
	t.Helper()

	config, err := configs.LoadConfiguration(env.storeDir)
	if err != nil {
		t.Fatalf("Failed to load store configuration: %v", err)
	}
	return config
}
