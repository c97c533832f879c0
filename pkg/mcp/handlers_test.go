package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/popupkit/pkg/components"
	"github.com/gnana997/popupkit/pkg/mcplog"
	"github.com/gnana997/popupkit/pkg/testutil"
	"github.com/gnana997/popupkit/pkg/toolkit"
	"github.com/gnana997/popupkit/pkg/util"
)

// --- helpers ---

func testToolkit() *toolkit.Toolkit {
	return toolkit.New(toolkit.Config{Logger: util.Discard()})
}

func testServer() *Server {
	return NewServer(testToolkit(), nil)
}

func callTool(t *testing.T, s *Server, req mcp.CallToolRequest) *mcp.CallToolResult {
	t.Helper()
	var handler server.ToolHandlerFunc

	switch req.Params.Name {
	case "list_components":
		handler = s.handleListComponents
	case "get_component":
		handler = s.handleGetComponent
	case "search_components":
		handler = s.handleSearchComponents
	case "render_component":
		handler = s.handleRenderComponent
	case "detect_components":
		handler = s.handleDetectComponents
	case "update_component":
		handler = s.handleUpdateComponent
	case "inject_component":
		handler = s.handleInjectComponent
	case "generate_reminder":
		handler = s.handleGenerateReminder
	case "merge_template":
		handler = s.handleMergeTemplate
	default:
		t.Fatalf("unknown tool: %s", req.Params.Name)
	}

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func makeRequest(toolName string, args map[string]any) mcp.CallToolRequest {
	var arguments any
	if args != nil {
		arguments = args
	}
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      toolName,
			Arguments: arguments,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return textContent.Text
}

// designArg decodes a fixture design into the generic object a client sends.
func designArg(t *testing.T) map[string]any {
	t.Helper()
	html, err := testToolkit().Render(components.FreeShippingBarID, nil)
	require.NoError(t, err)
	raw := testutil.DesignJSON(t,
		testutil.Block{ID: "text-1", Type: "text", HTML: "<p>Hi</p>"},
		testutil.Block{ID: "html-1", Type: "html", HTML: html},
	)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func detected(t *testing.T, s *Server, design string) []map[string]any {
	t.Helper()
	result := callTool(t, s, makeRequest("detect_components", map[string]any{"design": design}))
	require.False(t, result.IsError, resultText(t, result))
	var found []map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &found))
	return found
}

// --- list_components ---

func TestHandleListComponents(t *testing.T) {
	s := testServer()
	result := callTool(t, s, makeRequest("list_components", nil))
	assert.False(t, result.IsError)

	var comps []map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &comps))
	assert.Len(t, comps, len(components.Definitions()))
	assert.Equal(t, components.CountdownTimerID, comps[0]["id"])
}

func TestHandleListComponents_ByCategory(t *testing.T) {
	s := testServer()
	result := callTool(t, s, makeRequest("list_components", map[string]any{"category": "layout"}))

	var comps []map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &comps))
	require.Len(t, comps, 1)
	assert.Equal(t, components.SectionDividerID, comps[0]["id"])
}

// --- get_component ---

func TestHandleGetComponent(t *testing.T) {
	s := testServer()
	result := callTool(t, s, makeRequest("get_component", map[string]any{"id": components.SpinWheelID}))
	assert.False(t, result.IsError)

	var detail map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &detail))
	assert.Equal(t, "Spin Wheel", detail["name"])
	assert.NotEmpty(t, detail["prop_schema"])
	assert.Contains(t, detail["default_html"], `data-component="spin-wheel"`)
}

func TestHandleGetComponent_Errors(t *testing.T) {
	s := testServer()
	assert.True(t, callTool(t, s, makeRequest("get_component", map[string]any{"id": "nope"})).IsError)
	assert.True(t, callTool(t, s, makeRequest("get_component", nil)).IsError)
}

// --- search_components ---

func TestHandleSearchComponents(t *testing.T) {
	s := testServer()
	result := callTool(t, s, makeRequest("search_components", map[string]any{"query": "shipping"}))

	var hits []map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &hits))
	require.NotEmpty(t, hits)
	assert.Equal(t, components.FreeShippingBarID, hits[0]["id"])
	assert.NotEmpty(t, hits[0]["match_reason"])

	assert.True(t, callTool(t, s, makeRequest("search_components", nil)).IsError)
}

// --- render_component ---

func TestHandleRenderComponent(t *testing.T) {
	s := testServer()
	result := callTool(t, s, makeRequest("render_component", map[string]any{
		"id":    components.CountdownTimerID,
		"props": map[string]any{"title": "Ends soon"},
	}))
	require.False(t, result.IsError)

	det := testToolkit().DetectHTML(resultText(t, result))
	require.NotNil(t, det)
	assert.Equal(t, components.CountdownTimerID, det.ComponentID)
	assert.Equal(t, "Ends soon", det.Props["title"])
}

func TestHandleRenderComponent_PropsAsString(t *testing.T) {
	s := testServer()
	result := callTool(t, s, makeRequest("render_component", map[string]any{
		"id":    components.CountdownTimerID,
		"props": `{"title": "From string"}`,
	}))
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "From string")
}

func TestHandleRenderComponent_Errors(t *testing.T) {
	s := testServer()
	tests := map[string]map[string]any{
		"missing id":    nil,
		"unknown id":    {"id": "nope"},
		"invalid props": {"id": components.CountdownTimerID, "props": "{oops"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			assert.True(t, callTool(t, s, makeRequest("render_component", args)).IsError)
		})
	}
}

// --- detect_components ---

func TestHandleDetectComponents_Design(t *testing.T) {
	s := testServer()
	result := callTool(t, s, makeRequest("detect_components", map[string]any{"design": designArg(t)}))
	require.False(t, result.IsError)

	var found []map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &found))
	require.Len(t, found, 1)
	assert.Equal(t, components.FreeShippingBarID, found[0]["component_id"])
	assert.Equal(t, "html-1", found[0]["html_block_id"])
}

func TestHandleDetectComponents_HTML(t *testing.T) {
	s := testServer()
	html, err := testToolkit().Render(components.SectionDividerID, nil)
	require.NoError(t, err)

	result := callTool(t, s, makeRequest("detect_components", map[string]any{"html": html}))
	assert.Contains(t, resultText(t, result), `"component_id":"section-divider"`)

	result = callTool(t, s, makeRequest("detect_components", map[string]any{"html": "<p>plain</p>"}))
	assert.JSONEq(t, `{"detection": null}`, resultText(t, result))
}

func TestHandleDetectComponents_Errors(t *testing.T) {
	s := testServer()
	assert.True(t, callTool(t, s, makeRequest("detect_components", nil)).IsError)
	assert.True(t, callTool(t, s, makeRequest("detect_components", map[string]any{"design": "{broken"})).IsError)
}

// --- update_component ---

func TestHandleUpdateComponent_Props(t *testing.T) {
	s := testServer()
	result := callTool(t, s, makeRequest("update_component", map[string]any{
		"design":   designArg(t),
		"block_id": "html-1",
		"props":    map[string]any{"threshold": 99.0},
	}))
	require.False(t, result.IsError, resultText(t, result))

	found := detected(t, s, resultText(t, result))
	require.Len(t, found, 1)
	props := found[0]["current_props"].(map[string]any)
	assert.Equal(t, 99.0, props["threshold"])
}

func TestHandleUpdateComponent_HTML(t *testing.T) {
	s := testServer()
	result := callTool(t, s, makeRequest("update_component", map[string]any{
		"design":   designArg(t),
		"block_id": "html-1",
		"html":     "<p>gone</p>",
	}))
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "gone")
	assert.Empty(t, detected(t, s, resultText(t, result)))
}

func TestHandleUpdateComponent_Errors(t *testing.T) {
	s := testServer()
	tests := map[string]map[string]any{
		"missing design":   {"block_id": "html-1", "html": "x"},
		"missing block id": {"design": designArg(t), "html": "x"},
		"nothing to apply": {"design": designArg(t), "block_id": "html-1"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			assert.True(t, callTool(t, s, makeRequest("update_component", args)).IsError)
		})
	}
}

// --- inject_component ---

func TestHandleInjectComponent(t *testing.T) {
	s := testServer()
	result := callTool(t, s, makeRequest("inject_component", map[string]any{
		"design":       designArg(t),
		"component_id": components.CouponListID,
	}))
	require.False(t, result.IsError)

	found := detected(t, s, resultText(t, result))
	require.Len(t, found, 2)
	assert.Equal(t, components.CouponListID, found[1]["component_id"])
	assert.True(t, strings.HasPrefix(found[1]["html_block_id"].(string), "content-"))
}

func TestHandleInjectComponent_Unknown(t *testing.T) {
	s := testServer()
	result := callTool(t, s, makeRequest("inject_component", map[string]any{
		"design":       designArg(t),
		"component_id": "nope",
	}))
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "unknown component")
}

// --- generate_reminder ---

func TestHandleGenerateReminder(t *testing.T) {
	s := testServer()

	result := callTool(t, s, makeRequest("generate_reminder", nil))
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), `id="reminderTab"`)

	result = callTool(t, s, makeRequest("generate_reminder", map[string]any{
		"config": map[string]any{"mobile": map[string]any{"enabled": false}},
	}))
	require.False(t, result.IsError)
	assert.NotContains(t, resultText(t, result), `id="mobileFloatingButton"`)

	result = callTool(t, s, makeRequest("generate_reminder", map[string]any{"config": "{bad"}))
	assert.True(t, result.IsError)
}

// --- merge_template ---

func TestHandleMergeTemplate(t *testing.T) {
	s := testServer()
	result := callTool(t, s, makeRequest("merge_template", map[string]any{
		"template_html":   `<div class="u-popup-container">POP</div>`,
		"reminder_config": map[string]any{"enabled": true},
		"options":         map[string]any{"hideReminderTab": true, "animationDuration": "500ms"},
	}))
	require.False(t, result.IsError, resultText(t, result))

	doc := testutil.ParseHTML(t, resultText(t, result))
	assert.Equal(t, 1, doc.Find(".u-popup-container").Length())
	assert.Zero(t, doc.Find("#reminderTab").Length())
	assert.Contains(t, doc.Find("#popup-merger-script").Text(), "DURATION_MS = 500")
}

func TestHandleMergeTemplate_Errors(t *testing.T) {
	s := testServer()
	tests := map[string]map[string]any{
		"missing template": {"reminder_config": map[string]any{}},
		"no reminder data": {"template_html": "x"},
		"invalid options":  {"template_html": "x", "reminder_config": map[string]any{}, "options": map[string]any{"hideReminderTab": "yes"}},
		"invalid config":   {"template_html": "x", "reminder_config": "{bad"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			assert.True(t, callTool(t, s, makeRequest("merge_template", args)).IsError)
		})
	}
}

// --- server wiring ---

func TestServer_ListToolsInProcess(t *testing.T) {
	s := testServer()
	c, err := client.NewInProcessClient(s.MCPServer())
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "popupkit-test", Version: "1.0.0"}
	initResult, err := c.Initialize(ctx, initReq)
	require.NoError(t, err)
	assert.Equal(t, serverName, initResult.ServerInfo.Name)

	tools, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	require.NoError(t, err)
	names := make([]string, 0, len(tools.Tools))
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, ToolNames(), names)
}

func TestLoggingMiddleware(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.jsonl")
	logger, err := mcplog.NewLogger(path)
	require.NoError(t, err)

	s := NewServer(testToolkit(), logger)
	mw := s.loggingMiddleware()

	ok := mw(s.handleRenderComponent)
	_, err = ok(context.Background(), makeRequest("render_component", map[string]any{
		"id":    components.CountdownTimerID,
		"props": map[string]any{"title": "x"},
	}))
	require.NoError(t, err)

	toolErr := mw(s.handleGetComponent)
	_, err = toolErr(context.Background(), makeRequest("get_component", map[string]any{"id": "nope"}))
	require.NoError(t, err)

	failing := mw(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, errors.New("handler crashed")
	})
	_, err = failing(context.Background(), makeRequest("merge_template", nil))
	require.Error(t, err)

	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)

	var entries []mcplog.LogEntry
	for _, line := range lines {
		var e mcplog.LogEntry
		require.NoError(t, json.Unmarshal([]byte(line), &e))
		entries = append(entries, e)
	}

	assert.Equal(t, "render_component", entries[0].Tool)
	assert.Equal(t, components.CountdownTimerID, entries[0].Params["id"])
	assert.Contains(t, entries[0].Params, "props_bytes")
	assert.Greater(t, entries[0].ResponseBytes, 0)
	assert.Equal(t, entries[0].ResponseBytes/4, entries[0].TokensEst)
	assert.False(t, entries[0].IsError)

	assert.True(t, entries[1].IsError)
	assert.Nil(t, entries[1].Error)

	require.NotNil(t, entries[2].Error)
	assert.Equal(t, "handler crashed", *entries[2].Error)
}

func TestToolNamesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, name := range ToolNames() {
		assert.False(t, seen[name], name)
		seen[name] = true
	}
	assert.Len(t, seen, 9)
}
