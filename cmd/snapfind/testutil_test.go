// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Snapfind Contributors

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// mockVisionServer serves canned caption and embedding responses in the
// OpenAI wire format.
func mockVisionServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/chat/completions"):
			_ = json.NewEncoder(w).Encode(map[string]any{
				"choices": []any{
					map[string]any{"message": map[string]any{"role": "assistant", "content": "a mock caption"}},
				},
			})
		case strings.HasSuffix(r.URL.Path, "/embeddings"):
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": []any{map[string]any{"embedding": []float64{1, 0, 0}}},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// writeTestConfig writes a config file pointing at a temp catalog and the
// mock vision endpoint, returning its path.
func writeTestConfig(t *testing.T, endpoint string) string {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "snapfind.yaml")
	content := fmt.Sprintf(`
storage:
  path: %s
vision:
  api_key: test-key
  endpoint: %s
`, filepath.Join(dir, "catalog.db"), endpoint)
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))
	return cfgPath
}
