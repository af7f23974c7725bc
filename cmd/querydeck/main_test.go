// Package main provides tests for the QueryDeck CLI.
package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/querydeck/querydeck/internal/cli"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir()) // keep any real querydeck.yaml out of the test

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	output, err := runCommand(t, "version")
	if err != nil {
		t.Errorf("version command error = %v", err)
	}
	if !strings.Contains(output, "QueryDeck") {
		t.Errorf("version output should contain 'QueryDeck', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	output, err := runCommand(t, "--help")
	if err != nil {
		t.Errorf("help command error = %v", err)
	}
	for _, expected := range []string{"serve", "pull", "stats", "version"} {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, output)
		}
	}
}

func fakeBackendServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/dashboard/queries":
			json.NewEncoder(w).Encode(map[string]any{
				"queries": []any{
					map[string]any{
						"id": "q1", "title": "Orders", "text": "SELECT 1",
						"category": "General",
						"preview": map[string]any{
							"columns": []any{"region", "total"},
							"rows":    []any{[]any{"west", 10}, []any{"east", 20}},
						},
					},
				},
				"folders": []any{map[string]any{"id": "f1", "name": "General", "tone": "blue"}},
			})
		case "/dashboard/queryBundles":
			json.NewEncoder(w).Encode(map[string]any{"bundles": map[string]any{}})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPullCommand_JSON(t *testing.T) {
	srv := fakeBackendServer(t)

	output, err := runCommand(t, "pull", "--json", "--backend-url", srv.URL)
	if err != nil {
		t.Fatalf("pull command error = %v", err)
	}

	var snap struct {
		Items   []map[string]any `json:"items"`
		Folders []map[string]any `json:"folders"`
	}
	if err := json.Unmarshal([]byte(output), &snap); err != nil {
		t.Fatalf("pull --json output is not valid JSON: %v\n%s", err, output)
	}
	if len(snap.Items) != 1 || len(snap.Folders) != 1 {
		t.Errorf("expected 1 item and 1 folder, got %d/%d", len(snap.Items), len(snap.Folders))
	}
}

func TestPullCommand_Table(t *testing.T) {
	srv := fakeBackendServer(t)

	output, err := runCommand(t, "pull", "--backend-url", srv.URL)
	if err != nil {
		t.Fatalf("pull command error = %v", err)
	}
	for _, expected := range []string{"General", "Orders"} {
		if !strings.Contains(output, expected) {
			t.Errorf("pull output should contain %q, got: %s", expected, output)
		}
	}
}

func TestStatsCommand(t *testing.T) {
	srv := fakeBackendServer(t)

	output, err := runCommand(t, "stats", "q1", "--backend-url", srv.URL)
	if err != nil {
		t.Fatalf("stats command error = %v", err)
	}
	for _, expected := range []string{"Orders", "region", "total"} {
		if !strings.Contains(output, expected) {
			t.Errorf("stats output should contain %q, got: %s", expected, output)
		}
	}
}

func TestStatsCommand_UnknownItem(t *testing.T) {
	srv := fakeBackendServer(t)

	_, err := runCommand(t, "stats", "ghost", "--backend-url", srv.URL)
	if err == nil {
		t.Error("expected an error for an unknown item id")
	}
}
