package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCmd(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "escrowctl dev") {
		t.Errorf("unexpected version output: %s", buf.String())
	}
}

func TestRootCmd_ListsSubcommands(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("root --help failed: %v", err)
	}
	for _, name := range []string{"migrate", "project", "outbox", "version"} {
		if !strings.Contains(buf.String(), name) {
			t.Errorf("root help should list %q", name)
		}
	}
}

func TestProjectUpsertCmd_Flags(t *testing.T) {
	cmd := newProjectUpsertCmd()
	for _, name := range []string{"id", "client", "worker", "currency"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected --%s flag", name)
		}
	}
}

func TestProjectUpsertCmd_RequiresFlags(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"project", "upsert", "--id", "project-1"})

	err := cmd.Execute()
	if err == nil {
		t.Fatalf("expected missing flag error")
	}
	if !strings.Contains(err.Error(), "--client") || !strings.Contains(err.Error(), "--worker") {
		t.Errorf("expected client and worker flags reported, got %v", err)
	}
}

func TestMigrateCmd_RejectsMemoryBackend(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("POSTGRES_DSN", "")

	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"migrate"})

	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "has no database") {
		t.Fatalf("expected memory backend rejection, got %v", err)
	}
}

func TestOutboxCmd_Subcommands(t *testing.T) {
	cmd := newOutboxCmd()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	if !names["pending"] || !names["relay"] {
		t.Fatalf("expected pending and relay subcommands, got %v", names)
	}
	if newOutboxRelayCmd().Flags().Lookup("batch-size") == nil {
		t.Fatalf("expected --batch-size flag")
	}
}

func TestProjectUpsertCmd_RejectsSameClientAndWorker(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"project", "upsert", "--id", "project-1", "--client", "u-1", "--worker", " u-1 "})

	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "different users") {
		t.Fatalf("expected same-user rejection, got %v", err)
	}
}
