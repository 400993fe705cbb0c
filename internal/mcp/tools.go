package mcp

import "github.com/mark3labs/mcp-go/mcp"

// searchGuidelinesTool defines the search_guidelines MCP tool.
var searchGuidelinesTool = mcp.NewTool("search_guidelines",
	mcp.WithDescription("Search the EMS guidelines by code, title, keyword or content text. Returns every matching guideline with the matched text marked in [brackets]."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Text to search for, e.g. a guideline code such as C4 or a symptom"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of guidelines to return (default 10)"),
	),
)

// getGuidelineTool defines the get_guideline MCP tool.
var getGuidelineTool = mcp.NewTool("get_guideline",
	mcp.WithDescription("Get the complete text of one guideline, including every sub entry and grandchild."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Guideline id as listed by list_guidelines, or a path such as 5/51 for one sub entry"),
	),
)

// listGuidelinesTool defines the list_guidelines MCP tool.
var listGuidelinesTool = mcp.NewTool("list_guidelines",
	mcp.WithDescription("List the table of contents of the guideline book with ids for get_guideline."),
)
