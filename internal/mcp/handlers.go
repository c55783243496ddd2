package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"github.com/hpungsan/snip/internal/config"
	"github.com/hpungsan/snip/internal/errors"
	"github.com/hpungsan/snip/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db  *sql.DB
	cfg *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config) *Handlers {
	return &Handlers{db: db, cfg: cfg}
}

// AddRequest represents the arguments for snippet_add.
type AddRequest struct {
	Name     string   `json:"name"`
	Content  string   `json:"content"`
	Language string   `json:"language,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Mode     string   `json:"mode,omitempty"`
}

// RefRequest represents the arguments for tools addressing one snippet.
type RefRequest struct {
	Ref string `json:"ref"`
}

// FetchRequest represents the arguments for snippet_fetch.
type FetchRequest struct {
	Ref            string `json:"ref"`
	IncludeContent *bool  `json:"include_content,omitempty"`
}

// ListRequest represents the arguments for snippet_list.
type ListRequest struct {
	Tag      *string `json:"tag,omitempty"`
	Language *string `json:"language,omitempty"`
	Sort     string  `json:"sort,omitempty"`
	Limit    int     `json:"limit,omitempty"`
	Offset   int     `json:"offset,omitempty"`
}

// SearchRequest represents the arguments for snippet_search.
type SearchRequest struct {
	Query    string  `json:"query"`
	Tag      *string `json:"tag,omitempty"`
	Language *string `json:"language,omitempty"`
	Limit    int     `json:"limit,omitempty"`
}

// HandleAdd handles the snippet_add tool call.
func (h *Handlers) HandleAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Add(ctx, h.db, ops.AddInput{
		Name:     input.Name,
		Content:  input.Content,
		Language: input.Language,
		Tags:     input.Tags,
		Mode:     ops.AddMode(input.Mode),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleFetch handles the snippet_fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FetchRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Fetch(ctx, h.db, ops.FetchInput{
		Ref:            input.Ref,
		IncludeContent: input.IncludeContent,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleList handles the snippet_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.List(ctx, h.db, ops.ListInput{
		Tag:      input.Tag,
		Language: input.Language,
		Sort:     input.Sort,
		Limit:    input.Limit,
		Offset:   input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSearch handles the snippet_search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Search(ctx, h.db, ops.SearchInput{
		Query:    input.Query,
		Tag:      input.Tag,
		Language: input.Language,
		Limit:    input.Limit,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleDelete handles the snippet_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RefRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Delete(ctx, h.db, ops.DeleteInput{Ref: input.Ref})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleInspect handles the snippet_inspect tool call.
func (h *Handlers) HandleInspect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RefRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Inspect(ctx, h.db, h.cfg, ops.InspectInput{Ref: input.Ref})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// errorResult creates an MCP error result from any error.
// Internal error details are never exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if snipErr, ok := errors.As(err); ok {
		message := snipErr.Message
		if err != error(snipErr) {
			// keep wrapper context, e.g. "import: FILE_NOT_FOUND: ..."
			message = err.Error()
		}
		errorObj := map[string]any{
			"code":    snipErr.Code,
			"message": message,
			"status":  snipErr.Status,
		}
		if snipErr.Code != errors.ErrInternal && snipErr.Details != nil {
			errorObj["details"] = snipErr.Details
		}
		if snipErr.Code == errors.ErrInternal {
			logrus.WithError(err).Error("mcp: internal error")
			errorObj["message"] = "an internal error occurred"
		}
		payload = map[string]any{"error": errorObj}
	} else {
		logrus.WithError(err).Error("mcp: unexpected error")
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
