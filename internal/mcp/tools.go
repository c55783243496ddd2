package mcp

import "github.com/mark3labs/mcp-go/mcp"

var stringItems = map[string]any{"type": "string"}

var addToolDef = mcp.NewTool("snippet_add",
	mcp.WithDescription("Store a named snippet. Content may contain {{name}} or {{name:default}} template variables."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Snippet name, unique case-insensitively")),
	mcp.WithString("content", mcp.Required(), mcp.Description("Snippet body")),
	mcp.WithString("language", mcp.Description("Language tag selecting the interpreter, e.g. bash, python, js")),
	mcp.WithArray("tags", mcp.Description("Labels for filtering"), mcp.Items(stringItems)),
	mcp.WithString("mode", mcp.Description("Collision behavior: error (default) or replace"), mcp.Enum("error", "replace")),
)

var fetchToolDef = mcp.NewTool("snippet_fetch",
	mcp.WithDescription("Fetch a snippet by id or name."),
	mcp.WithString("ref", mcp.Required(), mcp.Description("Snippet ULID or name")),
	mcp.WithBoolean("include_content", mcp.Description("Include the snippet body (default true)")),
)

var listToolDef = mcp.NewTool("snippet_list",
	mcp.WithDescription("List snippet summaries, optionally filtered by tag or language."),
	mcp.WithString("tag", mcp.Description("Only snippets carrying this tag")),
	mcp.WithString("language", mcp.Description("Only snippets with this language")),
	mcp.WithString("sort", mcp.Description("name (default), usage or recent"), mcp.Enum("name", "usage", "recent")),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Page offset")),
)

var searchToolDef = mcp.NewTool("snippet_search",
	mcp.WithDescription("Fuzzy search over snippet names, tags and content."),
	mcp.WithString("query", mcp.Required(), mcp.Description("Search text")),
	mcp.WithString("tag", mcp.Description("Only snippets carrying this tag")),
	mcp.WithString("language", mcp.Description("Only snippets with this language")),
	mcp.WithNumber("limit", mcp.Description("Maximum results (default 20, max 100)")),
)

var deleteToolDef = mcp.NewTool("snippet_delete",
	mcp.WithDescription("Permanently delete a snippet by id or name."),
	mcp.WithString("ref", mcp.Required(), mcp.Description("Snippet ULID or name")),
)

var inspectToolDef = mcp.NewTool("snippet_inspect",
	mcp.WithDescription("Report the interpreter, dangerous-command verdict and template variables of a snippet. Does not execute it."),
	mcp.WithString("ref", mcp.Required(), mcp.Description("Snippet ULID or name")),
)
