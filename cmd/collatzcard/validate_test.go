package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// executeCmd runs a fresh command tree with args, so flag values never leak
// between tests, and returns captured stdout.
func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	root := newRootCmd()
	root.SetOut(&buf)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)

	err := root.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestRunValidate_ValidConfig(t *testing.T) {
	configPath := writeFile(t, "config.yaml", `
port: 8080
state_url: https://primes.example.com/collatz_state.json
refresh_interval: 10s
`)

	output, err := executeCmd(t, "validate", "-c", configPath, "--env-file", "")
	if err != nil {
		t.Fatalf("validate command error = %v", err)
	}

	expectedPhrases := []string{
		"Config is valid!",
		"Port:             8080",
		"State URL:        https://primes.example.com/collatz_state.json",
		"Refresh interval: 10s",
		"Timeout:          10s",
		"Container:        .hero-right",
		"Page:             (embedded)",
	}

	for _, phrase := range expectedPhrases {
		if !strings.Contains(output, phrase) {
			t.Errorf("output missing %q\nGot: %s", phrase, output)
		}
	}
}

func TestRunValidate_InvalidConfig(t *testing.T) {
	configPath := writeFile(t, "invalid.yaml", `refresh_interval: 100ms`)

	_, err := executeCmd(t, "validate", "-c", configPath, "--env-file", "")
	if err == nil {
		t.Fatal("validate command expected error for invalid config, got nil")
	}

	if !strings.Contains(err.Error(), "refresh_interval must be at least") {
		t.Errorf("error should mention the interval, got: %v", err)
	}
}

func TestRunValidate_MissingPage(t *testing.T) {
	configPath := writeFile(t, "config.yaml", "page: /nonexistent/index.html\n")

	_, err := executeCmd(t, "validate", "-c", configPath, "--env-file", "")
	if err == nil {
		t.Fatal("validate command expected error for missing page, got nil")
	}
	if !strings.Contains(err.Error(), "failed to read page") {
		t.Errorf("error should mention the page, got: %v", err)
	}
}

func TestRunValidate_MissingFile(t *testing.T) {
	_, err := executeCmd(t, "validate", "-c", "/nonexistent/path/config.yaml", "--env-file", "")
	if err == nil {
		t.Fatal("validate command expected error for missing file, got nil")
	}

	if !strings.Contains(err.Error(), "failed to read") {
		t.Errorf("error should mention 'failed to read', got: %v", err)
	}
}

func TestRunValidate_EnvFile(t *testing.T) {
	// godotenv never overrides variables that are already set, and t.Setenv
	// restores the original value after the test
	t.Setenv("COLLATZ_TEST_STATE_HOST", "")
	os.Unsetenv("COLLATZ_TEST_STATE_HOST")

	envPath := writeFile(t, ".env", "COLLATZ_TEST_STATE_HOST=stats.internal\n")
	configPath := writeFile(t, "config.yaml", "state_url: http://${COLLATZ_TEST_STATE_HOST}/collatz_state.json\n")

	output, err := executeCmd(t, "validate", "-c", configPath, "--env-file", envPath)
	if err != nil {
		t.Fatalf("validate command error = %v", err)
	}
	if !strings.Contains(output, "http://stats.internal/collatz_state.json") {
		t.Errorf("env file not applied\nGot: %s", output)
	}
}

func TestRunValidate_MissingEnvFileIgnored(t *testing.T) {
	configPath := writeFile(t, "config.yaml", "port: 9000\n")

	_, err := executeCmd(t, "validate", "-c", configPath, "--env-file", "/nonexistent/.env")
	if err != nil {
		t.Fatalf("missing env file should be ignored, got: %v", err)
	}
}

func TestVersion(t *testing.T) {
	output, err := executeCmd(t, "version")
	if err != nil {
		t.Fatalf("version command error = %v", err)
	}
	if !strings.HasPrefix(output, "collatzcard dev (commit none") {
		t.Errorf("output = %q", output)
	}
}
