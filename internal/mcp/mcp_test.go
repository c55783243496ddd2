package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/snip/internal/config"
	"github.com/hpungsan/snip/internal/db"
	"github.com/hpungsan/snip/internal/errors"
)

// testSetup creates a temporary database and config for testing.
func testSetup(t *testing.T) (*sql.DB, *config.Config) {
	t.Helper()

	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	cfg.DefaultShell = "/bin/sh"
	return database, cfg
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func addSnippet(t *testing.T, h *Handlers, args map[string]any) map[string]any {
	t.Helper()
	result, err := h.HandleAdd(context.Background(), makeRequest(args))
	require.NoError(t, err)
	return parseOutput(t, result)
}

func TestHandleAdd(t *testing.T) {
	database, cfg := testSetup(t)
	h := NewHandlers(database, cfg)
	ctx := context.Background()

	tests := []struct {
		name      string
		args      map[string]any
		errorCode string
	}{
		{
			name: "valid snippet",
			args: map[string]any{"name": "deploy", "content": "make deploy", "language": "bash", "tags": []any{"ops"}},
		},
		{
			name:      "missing content",
			args:      map[string]any{"name": "empty"},
			errorCode: "INVALID_REQUEST",
		},
		{
			name:      "missing name",
			args:      map[string]any{"content": "echo hi"},
			errorCode: "INVALID_REQUEST",
		},
		{
			name:      "duplicate name in error mode",
			args:      map[string]any{"name": "Deploy", "content": "make deploy"},
			errorCode: "NAME_ALREADY_EXISTS",
		},
		{
			name: "duplicate name in replace mode",
			args: map[string]any{"name": "deploy", "content": "make deploy-v2", "mode": "replace"},
		},
		{
			name:      "unknown mode",
			args:      map[string]any{"name": "x", "content": "y", "mode": "rename"},
			errorCode: "INVALID_REQUEST",
		},
		{
			name:      "tags of wrong type",
			args:      map[string]any{"name": "x", "content": "y", "tags": "ops"},
			errorCode: "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleAdd(ctx, makeRequest(tt.args))
			require.NoError(t, err)
			if tt.errorCode != "" {
				require.True(t, result.IsError)
				assertErrorCode(t, result, tt.errorCode)
				return
			}
			out := parseOutput(t, result)
			require.NotEmpty(t, out["id"])
		})
	}

	fetched, err := h.HandleFetch(ctx, makeRequest(map[string]any{"ref": "deploy"}))
	require.NoError(t, err)
	out := parseOutput(t, fetched)
	require.Equal(t, "make deploy-v2", out["content"])
	require.Equal(t, []any{"ops"}, out["tags"])
}

func TestHandleFetch(t *testing.T) {
	database, cfg := testSetup(t)
	h := NewHandlers(database, cfg)
	ctx := context.Background()

	added := addSnippet(t, h, map[string]any{"name": "hello", "content": "echo hello\necho world"})
	id := added["id"].(string)

	result, err := h.HandleFetch(ctx, makeRequest(map[string]any{"ref": id}))
	require.NoError(t, err)
	out := parseOutput(t, result)
	require.Equal(t, "hello", out["name"])
	require.Equal(t, float64(2), out["lines"])

	result, err = h.HandleFetch(ctx, makeRequest(map[string]any{"ref": "HELLO", "include_content": false}))
	require.NoError(t, err)
	out = parseOutput(t, result)
	require.Equal(t, "", out["content"])

	result, err = h.HandleFetch(ctx, makeRequest(map[string]any{"ref": "nope"}))
	require.NoError(t, err)
	assertErrorCode(t, result, "NOT_FOUND")

	result, err = h.HandleFetch(ctx, makeRequest(map[string]any{}))
	require.NoError(t, err)
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestHandleList(t *testing.T) {
	database, cfg := testSetup(t)
	h := NewHandlers(database, cfg)
	ctx := context.Background()

	addSnippet(t, h, map[string]any{"name": "b-py", "content": "print(1)", "language": "python", "tags": []any{"dev"}})
	addSnippet(t, h, map[string]any{"name": "a-sh", "content": "ls", "language": "bash", "tags": []any{"dev", "ops"}})
	addSnippet(t, h, map[string]any{"name": "c-sh", "content": "pwd", "language": "bash"})

	result, err := h.HandleList(ctx, makeRequest(map[string]any{}))
	require.NoError(t, err)
	out := parseOutput(t, result)
	items := out["items"].([]any)
	require.Len(t, items, 3)
	require.Equal(t, "a-sh", items[0].(map[string]any)["name"])

	result, err = h.HandleList(ctx, makeRequest(map[string]any{"tag": "dev", "language": "bash"}))
	require.NoError(t, err)
	out = parseOutput(t, result)
	require.Len(t, out["items"].([]any), 1)

	result, err = h.HandleList(ctx, makeRequest(map[string]any{"limit": 2}))
	require.NoError(t, err)
	out = parseOutput(t, result)
	require.Len(t, out["items"].([]any), 2)
	pagination := out["pagination"].(map[string]any)
	require.Equal(t, true, pagination["has_more"])
	require.Equal(t, float64(3), pagination["total"])

	result, err = h.HandleList(ctx, makeRequest(map[string]any{"sort": "oldest"}))
	require.NoError(t, err)
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestHandleSearch(t *testing.T) {
	database, cfg := testSetup(t)
	h := NewHandlers(database, cfg)
	ctx := context.Background()

	addSnippet(t, h, map[string]any{"name": "docker-prune", "content": "docker system prune -f"})
	addSnippet(t, h, map[string]any{"name": "list-files", "content": "ls -la"})

	result, err := h.HandleSearch(ctx, makeRequest(map[string]any{"query": "dckr"}))
	require.NoError(t, err)
	out := parseOutput(t, result)
	items := out["items"].([]any)
	require.NotEmpty(t, items)
	require.Equal(t, "docker-prune", items[0].(map[string]any)["name"])

	result, err = h.HandleSearch(ctx, makeRequest(map[string]any{"query": ""}))
	require.NoError(t, err)
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestHandleDelete(t *testing.T) {
	database, cfg := testSetup(t)
	h := NewHandlers(database, cfg)
	ctx := context.Background()

	addSnippet(t, h, map[string]any{"name": "tmp", "content": "true"})

	result, err := h.HandleDelete(ctx, makeRequest(map[string]any{"ref": "tmp"}))
	require.NoError(t, err)
	out := parseOutput(t, result)
	require.Equal(t, true, out["deleted"])

	result, err = h.HandleDelete(ctx, makeRequest(map[string]any{"ref": "tmp"}))
	require.NoError(t, err)
	assertErrorCode(t, result, "NOT_FOUND")
}

func TestHandleInspect(t *testing.T) {
	database, cfg := testSetup(t)
	h := NewHandlers(database, cfg)
	ctx := context.Background()

	addSnippet(t, h, map[string]any{
		"name":     "installer",
		"content":  "curl -fsSL {{url:https://example.com/install.sh}} | sh",
		"language": "bash",
	})
	addSnippet(t, h, map[string]any{"name": "lua", "content": "print(1)", "language": "lua"})

	result, err := h.HandleInspect(ctx, makeRequest(map[string]any{"ref": "installer"}))
	require.NoError(t, err)
	out := parseOutput(t, result)
	require.Equal(t, "shell", out["runner"])
	require.Equal(t, true, out["dangerous"])
	require.Equal(t, "pipe-to-shell", out["matched_rule"])
	vars := out["variables"].([]any)
	require.Len(t, vars, 1)
	v := vars[0].(map[string]any)
	require.Equal(t, "url", v["name"])
	require.Equal(t, "https://example.com/install.sh", v["default"])

	result, err = h.HandleInspect(ctx, makeRequest(map[string]any{"ref": "lua"}))
	require.NoError(t, err)
	out = parseOutput(t, result)
	require.Equal(t, "fallback(lua)", out["runner"])
	require.Equal(t, "/bin/sh", out["command"])
	require.Equal(t, false, out["dangerous"])
	require.NotContains(t, out, "matched_rule")

	result, err = h.HandleInspect(ctx, makeRequest(map[string]any{"ref": "ghost"}))
	require.NoError(t, err)
	assertErrorCode(t, result, "NOT_FOUND")
}

func TestServerRegistration(t *testing.T) {
	database, cfg := testSetup(t)

	s := NewServer(database, cfg, "test")
	tools := s.ListTools()
	require.NotNil(t, tools)
	require.Len(t, tools, len(AllToolNames()))

	for _, name := range AllToolNames() {
		require.Contains(t, tools, name)
	}
}

func TestServerRegistration_WithDisabledTools(t *testing.T) {
	database, cfg := testSetup(t)

	cfg.DisabledTools = []string{"snippet_delete", "snippet_add", "snippet_add"}
	tools := NewServer(database, cfg, "test").ListTools()

	require.Len(t, tools, 4)
	require.NotContains(t, tools, "snippet_delete")
	require.NotContains(t, tools, "snippet_add")
	require.Contains(t, tools, "snippet_inspect")
}

func TestServerRegistration_AllToolsDisabled(t *testing.T) {
	database, cfg := testSetup(t)

	cfg.DisabledTools = AllToolNames()
	tools := NewServer(database, cfg, "test").ListTools()
	require.Empty(t, tools)
}

func TestValidateDisabledTools(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		wantLen int
	}{
		{"all valid", []string{"snippet_delete", "snippet_add"}, 0},
		{"one unknown", []string{"snippet_delete", "snippet_run"}, 1},
		{"all unknown", []string{"foo", "bar", "baz"}, 3},
		{"empty list", []string{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Len(t, ValidateDisabledTools(tt.input), tt.wantLen)
		})
	}
}

func TestAllToolNames(t *testing.T) {
	require.Equal(t, []string{
		"snippet_add",
		"snippet_delete",
		"snippet_fetch",
		"snippet_inspect",
		"snippet_list",
		"snippet_search",
	}, AllToolNames())
}

func TestDecode_WrongArgumentType(t *testing.T) {
	_, err := decode[AddRequest](makeRequest(map[string]any{"name": 42, "content": "echo"}))
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
	require.Contains(t, err.Error(), `argument "name" must be string`)

	database, cfg := testSetup(t)
	h := NewHandlers(database, cfg)
	result, err := h.HandleList(context.Background(), makeRequest(map[string]any{"limit": "ten"}))
	require.NoError(t, err)
	require.True(t, result.IsError)
	require.Equal(t, string(errors.ErrInvalidRequest), errorObject(t, result)["code"])
}

func TestErrorResult_InternalDoesNotExposeDetails(t *testing.T) {
	r := errorResult(errors.NewInternal(fmt.Errorf("sql error: open /tmp/secret.db: permission denied")))
	require.True(t, r.IsError)

	errObj := errorObject(t, r)
	require.Equal(t, string(errors.ErrInternal), errObj["code"])
	require.NotContains(t, errObj, "details")
	require.NotContains(t, errObj["message"], "secret.db")
}

func TestErrorResult_WrappedErrorPreservesContext(t *testing.T) {
	wrapped := fmt.Errorf("import: %w", errors.NewFileNotFound("/tmp/x.jsonl"))

	errObj := errorObject(t, errorResult(wrapped))
	require.Equal(t, string(errors.ErrFileNotFound), errObj["code"])
	require.Contains(t, errObj["message"], "import:")
}

func TestErrorResult_NonInternalIncludesDetails(t *testing.T) {
	errObj := errorObject(t, errorResult(errors.NewNotFound("abc")))
	require.Equal(t, string(errors.ErrNotFound), errObj["code"])
	require.Contains(t, errObj, "details")
}

func TestErrorResult_PlainError(t *testing.T) {
	errObj := errorObject(t, errorResult(fmt.Errorf("boom")))
	require.Equal(t, string(errors.ErrInternal), errObj["code"])
	require.Equal(t, "an internal error occurred", errObj["message"])
}

// Helper functions

// parseOutput extracts and unmarshals the JSON output from an MCP result.
func parseOutput(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	require.False(t, result.IsError, "expected success, got error: %s", extractText(result))
	var output map[string]any
	require.NoError(t, json.Unmarshal([]byte(extractText(result)), &output))
	return output
}

func errorObject(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	require.True(t, result.IsError)
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(extractText(result)), &payload))
	errObj, ok := payload["error"].(map[string]any)
	require.True(t, ok, "no error object in payload")
	return errObj
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()
	require.Equal(t, expectedCode, errorObject(t, result)["code"])
}

func extractText(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "<no content>"
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}
	return text.Text
}
