package preview

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gnana997/popupkit/pkg/merger"
	"github.com/gnana997/popupkit/pkg/registry"
	"github.com/gnana997/popupkit/pkg/toolkit"
)

type renderRequest struct {
	Props registry.Props `json:"props"`
}

type updateRequest struct {
	Design  json.RawMessage `json:"design"`
	BlockID string          `json:"block_id"`
	HTML    *string         `json:"html"`
	Props   registry.Props  `json:"props"`
}

type injectRequest struct {
	Design      json.RawMessage `json:"design"`
	ComponentID string          `json:"component_id"`
}

type mergeRequest struct {
	merger.TemplateData
	Options merger.Options `json:"options"`
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"components": s.tk.Registry.Len(),
	})
}

func (s *Server) listComponents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tk.Components(r.URL.Query().Get("category")))
}

func (s *Server) getComponent(w http.ResponseWriter, r *http.Request) {
	detail, err := s.tk.Component(chi.URLParam(r, "componentID"))
	if err != nil {
		s.componentError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) renderComponent(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	html, err := s.tk.Render(chi.URLParam(r, "componentID"), req.Props)
	if err != nil {
		s.componentError(w, r, err)
		return
	}
	writeHTML(w, html)
}

func (s *Server) detectComponents(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if body == nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "design document is required")
		return
	}
	found, err := s.tk.Detect(body)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_design", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (s *Server) updateComponent(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	switch {
	case len(req.Design) == 0:
		writeError(w, r, http.StatusBadRequest, "invalid_request", "design is required")
		return
	case req.BlockID == "":
		writeError(w, r, http.StatusBadRequest, "invalid_request", "block_id is required")
		return
	case req.HTML == nil && req.Props == nil:
		writeError(w, r, http.StatusBadRequest, "invalid_request", "one of html or props is required")
		return
	}

	out, err := s.tk.Update(req.Design, req.BlockID, req.HTML, req.Props)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_design", err.Error())
		return
	}
	writeRawJSON(w, out)
}

func (s *Server) injectComponent(w http.ResponseWriter, r *http.Request) {
	var req injectRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if len(req.Design) == 0 || req.ComponentID == "" {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "design and component_id are required")
		return
	}

	out, err := s.tk.Inject(req.Design, req.ComponentID)
	if err != nil {
		if errors.Is(err, toolkit.ErrUnknownComponent) {
			s.componentError(w, r, err)
			return
		}
		writeError(w, r, http.StatusBadRequest, "invalid_design", err.Error())
		return
	}
	writeRawJSON(w, out)
}

func (s *Server) generateReminder(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	html, err := s.tk.GenerateReminder(body)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_config", err.Error())
		return
	}
	writeHTML(w, html)
}

func (s *Server) mergeTemplate(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	html, err := s.tk.Merge(req.TemplateData, req.Options)
	switch {
	case errors.Is(err, merger.ErrNoReminderData):
		writeError(w, r, http.StatusUnprocessableEntity, "no_reminder_data", err.Error())
		return
	case err != nil:
		writeError(w, r, http.StatusBadRequest, "invalid_config", err.Error())
		return
	}
	writeHTML(w, html)
}

func (s *Server) componentError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, toolkit.ErrUnknownComponent) {
		writeError(w, r, http.StatusNotFound, "component_not_found", err.Error())
		return
	}
	s.logger.Error("component request failed", "error", err)
	writeError(w, r, http.StatusInternalServerError, "internal", "internal error")
}
