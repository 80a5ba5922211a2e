//go:build integration
// +build integration

package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// buildBinary compiles the CLI once per test and cleans it up afterwards
func buildBinary(t *testing.T) string {
	t.Helper()

	bin := "./murmur_test"
	buildCmd := exec.Command("go", "build", "-o", bin, ".")
	if out, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build binary: %v\n%s", err, out)
	}
	t.Cleanup(func() {
		os.Remove(bin)
	})
	return bin
}

// testEnv points the binary's config and data directories into tmpDir
func testEnv(tmpDir string) []string {
	return append(os.Environ(), "HOME="+tmpDir)
}

// TestPresetCommands exercises preset save/list/delete against a temp data dir
func TestPresetCommands(t *testing.T) {
	bin := buildBinary(t)
	tmpDir := t.TempDir()

	run := func(args ...string) string {
		t.Helper()
		cmd := exec.Command(bin, args...)
		cmd.Env = testEnv(tmpDir)
		out, err := cmd.CombinedOutput()
		if err != nil {
			t.Fatalf("%v failed: %v\n%s", args, err, out)
		}
		return string(out)
	}

	run("preset", "save", "storm", "rain=0.5", "thunder")

	out := run("preset", "list")
	if !strings.Contains(out, "storm:") {
		t.Errorf("preset list missing saved preset, got: %s", out)
	}
	if !strings.Contains(out, "rain=0.50") {
		t.Errorf("preset list missing rain volume, got: %s", out)
	}

	// The store lives in the per-user data dir
	dbPath := filepath.Join(tmpDir, ".local", "share", "murmur", "presets.db")
	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("Preset database not created at %s: %v", dbPath, err)
	}

	run("preset", "delete", "storm")
	out = run("preset", "list")
	if !strings.Contains(out, "No presets saved.") {
		t.Errorf("preset list not empty after delete, got: %s", out)
	}
}

// TestPlayLifecycle starts a foreground mix and checks that an interrupt
// produces a clean faded shutdown
func TestPlayLifecycle(t *testing.T) {
	bin := buildBinary(t)
	tmpDir := t.TempDir()

	cmd := exec.Command(bin, "play", "rain", "--log-level", "debug")
	cmd.Env = testEnv(tmpDir)

	var out strings.Builder
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Start(); err != nil {
		t.Fatalf("Failed to start play: %v", err)
	}

	// Let the mix buffer and start playing
	time.Sleep(1 * time.Second)

	if err := cmd.Process.Signal(os.Interrupt); err != nil {
		t.Fatalf("Failed to interrupt: %v", err)
	}

	done := make(chan error)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("play exited uncleanly: %v\n%s", err, out.String())
		}
	case <-time.After(10 * time.Second):
		cmd.Process.Kill()
		t.Fatal("play did not stop within 10 seconds of the interrupt")
	}

	if !strings.Contains(out.String(), "Mix stopped") {
		t.Errorf("missing shutdown log line, got:\n%s", out.String())
	}
}
