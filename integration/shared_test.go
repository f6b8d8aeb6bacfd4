//go:build basic || database

// Package integration contains end-to-end tests that drive the safe binary.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
// Database backends: go test -tags database ./integration
package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	// sharedSafePath holds the path to a shared safe binary built once for all tests.
	sharedSafePath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// createdID extracts the assessment ID printed by `safe assessment create`.
var createdID = regexp.MustCompile(`Created assessment (\S+) in `)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	// Run all tests
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getSafeBinary returns the path to the safe binary, building it once if needed.
func getSafeBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		// Create a temp directory for the binary
		var err error
		tempDir, err = os.MkdirTemp("", "safe-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		safePath := filepath.Join(tempDir, "safe")
		buildCmd := exec.Command("go", "build", "-o", safePath, "./cmd/safe")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		if out, err := buildCmd.CombinedOutput(); err != nil {
			panic(fmt.Sprintf("failed to build safe: %v\n%s", err, out))
		}

		sharedSafePath = safePath
	})

	return sharedSafePath
}

// runSafeCommand runs the binary with extra environment and returns stdout and stderr.
func runSafeCommand(t *testing.T, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getSafeBinary(), args...)
	cmd.Dir = t.TempDir() // Keep .safe.yaml and .env of the checkout out of the way
	cmd.Env = append(os.Environ(), env...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Logf("Command failed: %s\nOutput: %s", cmd.String(), string(output))
	}
	return string(output), err
}

// mustRun runs the binary and fails the test on error.
func mustRun(t *testing.T, env []string, args ...string) string {
	t.Helper()
	out, err := runSafeCommand(t, env, args...)
	require.NoError(t, err)
	return out
}

// runLifecycle drives one assessment through create, rate, import, score and batch.
func runLifecycle(t *testing.T, env []string) {
	t.Helper()
	mustRun(t, env, "store", "clear")

	out := mustRun(t, env, "assessment", "create", "--respondent", "Ana", "--city", "Leeds", "--borough", "North")
	m := createdID.FindStringSubmatch(out)
	require.Len(t, m, 2, "create output: %s", out)
	id := m[1]

	mustRun(t, env, "assessment", "rate", id,
		"--dimension", "Digital Inclusion & Accessible Technology",
		"--kpi", "Digital Infrastructure & Connectivity",
		"--metric", "Broadband penetration rate among 60+ population",
		"--rating", "4")
	mustRun(t, env, "assessment", "score", id, "--output", "json")
	mustRun(t, env, "assessment", "submit", id)

	out = mustRun(t, env, "assessment", "list", "--city", "Leeds", "--status", "submitted", "--output", "csv")
	require.Contains(t, out, id)

	out = mustRun(t, env, "report", "batch", "--output", "csv")
	require.Contains(t, out, id)

	out = mustRun(t, env, "store", "status")
	require.Contains(t, out, "Total Assessments: 1")
	require.Contains(t, out, "Total Scores: 1")
}
