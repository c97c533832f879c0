package mcp

import "github.com/mark3labs/mcp-go/mcp"

var listComponentsTool = mcp.NewTool("list_components",
	mcp.WithDescription("List the custom components available in the popup editor, optionally filtered by category."),
	mcp.WithString("category",
		mcp.Description("Only list components of this category"),
		mcp.Enum("engagement", "commerce", "layout"),
	),
)

var getComponentTool = mcp.NewTool("get_component",
	mcp.WithDescription("Get a component's prop schema, default props and default HTML."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Component id, e.g. countdown-timer"),
	),
)

var searchComponentsTool = mcp.NewTool("search_components",
	mcp.WithDescription("Search components by id, name, description or prop name."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Case-insensitive search text"),
	),
)

var renderComponentTool = mcp.NewTool("render_component",
	mcp.WithDescription("Render a component to marker-tagged HTML. Props are overlaid on the component defaults."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Component id"),
	),
	mcp.WithObject("props",
		mcp.Description("Prop values overriding the defaults"),
	),
)

var detectComponentsTool = mcp.NewTool("detect_components",
	mcp.WithDescription("Find the custom components embedded in a design document, or read the marker of one HTML fragment."),
	mcp.WithObject("design",
		mcp.Description("Editor design document (object or JSON string)"),
	),
	mcp.WithString("html",
		mcp.Description("Single HTML fragment to inspect instead of a design"),
	),
)

var updateComponentTool = mcp.NewTool("update_component",
	mcp.WithDescription("Rewrite one html block of a design document, either with new markup or by re-rendering its component with new props. Returns the updated design."),
	mcp.WithObject("design",
		mcp.Required(),
		mcp.Description("Editor design document (object or JSON string)"),
	),
	mcp.WithString("block_id",
		mcp.Required(),
		mcp.Description("Id of the html content block"),
	),
	mcp.WithString("html",
		mcp.Description("Replacement markup"),
	),
	mcp.WithObject("props",
		mcp.Description("Props overlaid on the component's current props"),
	),
)

var injectComponentTool = mcp.NewTool("inject_component",
	mcp.WithDescription("Append a new row holding a component rendered with its defaults. Returns the updated design."),
	mcp.WithObject("design",
		mcp.Required(),
		mcp.Description("Editor design document (object or JSON string)"),
	),
	mcp.WithString("component_id",
		mcp.Required(),
		mcp.Description("Component id"),
	),
)

var generateReminderTool = mcp.NewTool("generate_reminder",
	mcp.WithDescription("Generate the standalone reminder tab document (HTML, CSS and script) from a reminder configuration."),
	mcp.WithObject("config",
		mcp.Description("Reminder configuration; omitted fields use the defaults"),
	),
)

var mergeTemplateTool = mcp.NewTool("merge_template",
	mcp.WithDescription("Merge a popup template with its reminder tab into one visitor-facing document."),
	mcp.WithString("template_html",
		mcp.Required(),
		mcp.Description("Popup template HTML exported by the editor"),
	),
	mcp.WithObject("reminder_config",
		mcp.Description("Reminder configuration; preferred over reminder_html"),
	),
	mcp.WithString("reminder_html",
		mcp.Description("Pre-rendered reminder document"),
	),
	mcp.WithObject("options",
		mcp.Description("Merge options: popupSelector, triggerSelector, closeSelectors, enableAnimations, animationDuration, autoOpenPopup, disableCloseButtons, hideReminderTab"),
	),
)

// ToolNames lists the tools the server registers, in registration order.
func ToolNames() []string {
	return []string{
		listComponentsTool.Name,
		getComponentTool.Name,
		searchComponentsTool.Name,
		renderComponentTool.Name,
		detectComponentsTool.Name,
		updateComponentTool.Name,
		injectComponentTool.Name,
		generateReminderTool.Name,
		mergeTemplateTool.Name,
	}
}
