//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const pkg = "./cmd/hf"

func binary() string {
	if runtime.GOOS == "windows" {
		return "hf.exe"
	}
	return "hf"
}

// ldflags stamps the version, commit and build date into main.
func ldflags() string {
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || version == "" {
		version = "dev"
	}
	commit, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil || commit == "" {
		commit = "none"
	}
	date := time.Now().UTC().Format(time.RFC3339)
	return fmt.Sprintf("-s -w -X main.version=%s -X main.commit=%s -X main.date=%s",
		strings.TrimPrefix(version, "v"), commit, date)
}

func isInPath(dir string) bool {
	dir = filepath.Clean(dir)
	for _, p := range filepath.SplitList(os.Getenv("PATH")) {
		if filepath.Clean(p) == dir {
			return true
		}
	}
	return false
}

func installDir() (string, error) {
	if gobin := os.Getenv("GOBIN"); gobin != "" {
		return gobin, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	dir := filepath.Join(home, ".local", "bin")
	if runtime.GOOS == "windows" {
		local := os.Getenv("LOCALAPPDATA")
		if local == "" {
			local = filepath.Join(home, "AppData", "Local")
		}
		dir = filepath.Join(local, "Microsoft", "WindowsApps")
	}
	if !isInPath(dir) {
		return "", fmt.Errorf("installation directory %s is not in PATH - add it to your PATH or set GOBIN", dir)
	}
	return dir, nil
}

// Build compiles the hf binary into bin/
func Build() error {
	fmt.Println("Building hf...")
	return sh.RunV("go", "build", "-ldflags", ldflags(), "-o", filepath.Join("bin", binary()), pkg)
}

// Test runs the unit tests with the race detector
func Test() error {
	fmt.Println("Testing...")
	return sh.RunV("go", "test", "-race", "./...")
}

// Vet runs go vet
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Install builds hf and copies it to GOBIN or ~/.local/bin
func Install() error {
	mg.Deps(Build)

	dir, err := installDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create install directory: %w", err)
	}

	dst := filepath.Join(dir, binary())
	if err := sh.Copy(dst, filepath.Join("bin", binary())); err != nil {
		return fmt.Errorf("failed to copy binary: %w", err)
	}
	if runtime.GOOS != "windows" {
		if err := os.Chmod(dst, 0o755); err != nil {
			return fmt.Errorf("failed to make executable: %w", err)
		}
	}

	fmt.Printf("✓ Installed to %s\n", dst)
	return nil
}

// Clean removes build artifacts
func Clean() error {
	fmt.Println("Cleaning...")
	return sh.Rm("bin")
}
