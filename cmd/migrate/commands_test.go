package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type fakeMigrator struct {
	version   uint
	downSteps int
	forced    int
	closed    bool
}

func (f *fakeMigrator) Up() error {
	f.version = 3
	return nil
}

func (f *fakeMigrator) Down(steps int) error {
	f.downSteps = steps
	f.version -= uint(steps)
	return nil
}

func (f *fakeMigrator) Version() (uint, bool, error) {
	return f.version, false, nil
}

func (f *fakeMigrator) Force(version int) error {
	f.forced = version
	f.version = uint(version)
	return nil
}

func (f *fakeMigrator) Close() error {
	f.closed = true
	return nil
}

func runCommand(t *testing.T, fake *fakeMigrator, args ...string) (string, string, error) {
	t.Helper()

	var gotDSN string
	cmd := newRootCommand(func(dsn string, _ *zap.Logger) (migrator, error) {
		gotDSN = dsn
		return fake, nil
	})
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(append([]string{"--config", "", "--dsn", "postgres://test"}, args...))
	err := cmd.Execute()
	return out.String(), gotDSN, err
}

func TestMigrateUpPrintsVersion(t *testing.T) {
	fake := &fakeMigrator{}
	out, dsn, err := runCommand(t, fake, "up")
	if err != nil {
		t.Fatalf("up: %v", err)
	}
	if dsn != "postgres://test" {
		t.Fatalf("unexpected dsn: %q", dsn)
	}
	if !strings.Contains(out, "version=3 dirty=false") || !fake.closed {
		t.Fatalf("unexpected output %q closed=%v", out, fake.closed)
	}
}

func TestMigrateDownDefaultsToOneStep(t *testing.T) {
	fake := &fakeMigrator{version: 3}
	if _, _, err := runCommand(t, fake, "down"); err != nil {
		t.Fatalf("down: %v", err)
	}
	if fake.downSteps != 1 {
		t.Fatalf("unexpected steps: %d", fake.downSteps)
	}
}

func TestMigrateDownRejectsBadSteps(t *testing.T) {
	fake := &fakeMigrator{version: 3}
	if _, _, err := runCommand(t, fake, "down", "0"); err == nil {
		t.Fatalf("expected error for zero steps")
	}
}

func TestMigrateForceSetsVersion(t *testing.T) {
	fake := &fakeMigrator{}
	out, _, err := runCommand(t, fake, "force", "2")
	if err != nil {
		t.Fatalf("force: %v", err)
	}
	if fake.forced != 2 || !strings.Contains(out, "version=2") {
		t.Fatalf("unexpected force result: forced=%d out=%q", fake.forced, out)
	}
}

func TestMigrateOpenErrorPropagates(t *testing.T) {
	cmd := newRootCommand(func(string, *zap.Logger) (migrator, error) {
		return nil, errors.New("boom")
	})
	cmd.SetArgs([]string{"--config", "", "version"})
	if err := cmd.Execute(); err == nil || err.Error() != "boom" {
		t.Fatalf("unexpected error: %v", err)
	}
}
