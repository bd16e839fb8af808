package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestBuildRootCmdIncludesSubcommands(t *testing.T) {
	cmd := buildRootCmd()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}

	required := []string{"eval", "tasks", "runs", "schema"}
	for _, name := range required {
		if !names[name] {
			t.Fatalf("expected subcommand %q to be registered", name)
		}
	}
}

func TestTasksCommandListsRegistry(t *testing.T) {
	cmd := buildRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"tasks"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("tasks command failed: %v", err)
	}
	for _, want := range []string{"qa", "squad-v2", "question-answering", "token-classification"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("tasks output missing %q:\n%s", want, out.String())
		}
	}
}

func TestSchemaCommandEmitsJSON(t *testing.T) {
	cmd := buildRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"schema"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("schema command failed: %v", err)
	}
	if !strings.Contains(out.String(), "\"properties\"") {
		t.Errorf("schema output does not look like JSON Schema:\n%.200s", out.String())
	}
}
