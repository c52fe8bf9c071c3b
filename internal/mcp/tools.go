package mcp

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions. The wizard itself is interactive and stays on the
// CLI; the tools cover the record operations an agent can usefully
// drive: query, duplicate, and backup.

var listToolDef = mcp.NewTool(
	"costing_list",
	mcp.WithDescription("List costing records, newest first, with pagination."),
	mcp.WithNumber("limit",
		mcp.Description("Maximum records to return (default 20, max 100)"),
	),
	mcp.WithNumber("offset",
		mcp.Description("Records to skip from the newest end"),
	),
)

var getToolDef = mcp.NewTool(
	"costing_get",
	mcp.WithDescription("Fetch one costing record by id: style, inputs as entered, and the computed snapshot."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Record ULID"),
	),
	mcp.WithBoolean("include_photo",
		mcp.Description("Include the style photo (base64 in the record JSON); omitted by default"),
	),
)

var deleteToolDef = mcp.NewTool(
	"costing_delete",
	mcp.WithDescription("Permanently delete a costing record. Deletion is final; records have no soft-delete."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Record ULID"),
	),
)

var duplicateToolDef = mcp.NewTool(
	"costing_duplicate",
	mcp.WithDescription("Seed a fresh wizard draft from a stored record, overwriting any in-progress draft. Records are immutable; corrections go through duplicate, edit, and a new commit."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Source record ULID"),
	),
)

var exportToolDef = mcp.NewTool(
	"costing_export",
	mcp.WithDescription("Export every record to a backup JSON file with photos inline."),
	mcp.WithString("path",
		mcp.Description("Destination file path (default: the exports directory with a timestamped name)"),
	),
)

var importToolDef = mcp.NewTool(
	"costing_import",
	mcp.WithDescription("Restore records from a backup file. The file is validated wholesale and imported in one transaction; existing ids are replaced."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Backup file path"),
	),
)
