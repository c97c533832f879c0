package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/popupkit/pkg/merger"
	"github.com/gnana997/popupkit/pkg/registry"
)

func (s *Server) handleListComponents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.tk.Components(req.GetString("category", "")))
}

func (s *Server) handleGetComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}
	detail, err := s.tk.Component(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(detail)
}

func (s *Server) handleSearchComponents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}
	return jsonResult(s.tk.Search(query))
}

func (s *Server) handleRenderComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}
	props, err := propsArg(req, "props")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	html, err := s.tk.Render(id, props)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(html), nil
}

func (s *Server) handleDetectComponents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if html := req.GetString("html", ""); html != "" {
		return jsonResult(map[string]any{"detection": s.tk.DetectHTML(html)})
	}

	design, ok, err := jsonArg(req, "design")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !ok {
		return mcp.NewToolResultError("one of design or html is required"), nil
	}
	found, err := s.tk.Detect(design)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(found)
}

func (s *Server) handleUpdateComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	design, ok, err := jsonArg(req, "design")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !ok {
		return mcp.NewToolResultError("missing required parameter: design"), nil
	}
	blockID, err := req.RequireString("block_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: block_id"), nil
	}

	var html *string
	if h, ok := req.GetArguments()["html"].(string); ok {
		html = &h
	}
	props, err := propsArg(req, "props")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if html == nil && props == nil {
		return mcp.NewToolResultError("one of html or props is required"), nil
	}

	out, err := s.tk.Update(design, blockID, html, props)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) handleInjectComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	design, ok, err := jsonArg(req, "design")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !ok {
		return mcp.NewToolResultError("missing required parameter: design"), nil
	}
	id, err := req.RequireString("component_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: component_id"), nil
	}

	out, err := s.tk.Inject(design, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) handleGenerateReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, _, err := jsonArg(req, "config")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	html, err := s.tk.GenerateReminder(cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid reminder config: %v", err)), nil
	}
	return mcp.NewToolResultText(html), nil
}

func (s *Server) handleMergeTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	templateHTML, err := req.RequireString("template_html")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: template_html"), nil
	}
	cfg, _, err := jsonArg(req, "reminder_config")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	opts := merger.Options{}
	if raw, ok, err := jsonArg(req, "options"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	} else if ok {
		if err := json.Unmarshal(raw, &opts); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid options: %v", err)), nil
		}
	}

	html, err := s.tk.Merge(merger.TemplateData{
		ReminderTabStateJSON: cfg,
		ReminderTabHTML:      req.GetString("reminder_html", ""),
		TemplateHTML:         templateHTML,
	}, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(html), nil
}

// jsonArg returns argument key as JSON. Objects are re-encoded; strings are
// taken as already-encoded JSON. ok is false when the argument is absent.
func jsonArg(req mcp.CallToolRequest, key string) (data []byte, ok bool, err error) {
	v, present := req.GetArguments()[key]
	if !present || v == nil {
		return nil, false, nil
	}
	if s, isString := v.(string); isString {
		return []byte(s), true, nil
	}
	data, err = json.Marshal(v)
	if err != nil {
		return nil, false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return data, true, nil
}

// propsArg decodes a props object. It returns nil when the argument is absent.
func propsArg(req mcp.CallToolRequest, key string) (registry.Props, error) {
	data, ok, err := jsonArg(req, key)
	if err != nil || !ok {
		return nil, err
	}
	var props registry.Props
	if err := json.Unmarshal(data, &props); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	return props, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
