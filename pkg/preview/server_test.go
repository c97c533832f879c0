package preview

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/popupkit/pkg/components"
	"github.com/gnana997/popupkit/pkg/testutil"
	"github.com/gnana997/popupkit/pkg/toolkit"
	"github.com/gnana997/popupkit/pkg/util"
)

// --- Helpers ---

func newServer() *Server {
	return New(toolkit.New(toolkit.Config{Logger: util.Discard()}), util.Discard())
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func fixtureDesign(t *testing.T, s *Server) string {
	t.Helper()
	html, err := s.tk.Render(components.ProductCarouselID, nil)
	require.NoError(t, err)
	return string(testutil.DesignJSON(t, testutil.Block{ID: "html-1", Type: "html", HTML: html}))
}

func assertError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, rec.Code, rec.Body.String())
	var body errorBody
	decode(t, rec, &body)
	assert.Equal(t, code, body.Error)
	assert.NotEmpty(t, body.Message)
	assert.NotEmpty(t, body.RequestID)
}

// --- Tests ---

func TestHealthz(t *testing.T) {
	rec := do(t, newServer(), http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	decode(t, rec, &body)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(len(components.Definitions())), body["components"])
}

func TestListComponents(t *testing.T) {
	s := newServer()

	rec := do(t, s, http.MethodGet, "/components", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	var all []map[string]any
	decode(t, rec, &all)
	assert.Len(t, all, len(components.Definitions()))

	rec = do(t, s, http.MethodGet, "/components?category=commerce", "")
	var commerce []map[string]any
	decode(t, rec, &commerce)
	require.NotEmpty(t, commerce)
	for _, c := range commerce {
		assert.Equal(t, "commerce", c["category"])
	}
}

func TestGetComponent(t *testing.T) {
	s := newServer()

	rec := do(t, s, http.MethodGet, "/components/"+components.CouponListID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var detail map[string]any
	decode(t, rec, &detail)
	assert.Equal(t, "Coupon List", detail["name"])
	assert.NotEmpty(t, detail["default_html"])

	assertError(t, do(t, s, http.MethodGet, "/components/nope", ""), http.StatusNotFound, "component_not_found")
}

func TestRenderComponent(t *testing.T) {
	s := newServer()

	rec := do(t, s, http.MethodPost, "/components/"+components.CountdownTimerID+"/render", `{"props": {"title": "Tick tock"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	doc := testutil.ParseHTML(t, rec.Body.String())
	root := doc.Find(`[data-component="countdown-timer"]`)
	require.Equal(t, 1, root.Length())
	assert.Contains(t, doc.Text(), "Tick tock")

	rec = do(t, s, http.MethodPost, "/components/"+components.CountdownTimerID+"/render", "")
	require.Equal(t, http.StatusOK, rec.Code, "empty body renders defaults")

	assertError(t, do(t, s, http.MethodPost, "/components/nope/render", ""), http.StatusNotFound, "component_not_found")
	assertError(t, do(t, s, http.MethodPost, "/components/"+components.CountdownTimerID+"/render", "{oops"), http.StatusBadRequest, "invalid_request")
}

func TestDetect(t *testing.T) {
	s := newServer()

	rec := do(t, s, http.MethodPost, "/design/detect", fixtureDesign(t, s))
	require.Equal(t, http.StatusOK, rec.Code)
	var found []map[string]any
	decode(t, rec, &found)
	require.Len(t, found, 1)
	assert.Equal(t, components.ProductCarouselID, found[0]["component_id"])

	assertError(t, do(t, s, http.MethodPost, "/design/detect", ""), http.StatusBadRequest, "invalid_request")
	assertError(t, do(t, s, http.MethodPost, "/design/detect", "{nope"), http.StatusBadRequest, "invalid_design")
}

func TestUpdate(t *testing.T) {
	s := newServer()
	body, err := json.Marshal(map[string]any{
		"design":   json.RawMessage(fixtureDesign(t, s)),
		"block_id": "html-1",
		"props":    map[string]any{"title": "Picked for you"},
	})
	require.NoError(t, err)

	rec := do(t, s, http.MethodPost, "/design/update", string(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	found, err := s.tk.Detect(rec.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Picked for you", found[0].CurrentProps["title"])

	assertError(t, do(t, s, http.MethodPost, "/design/update", `{"block_id": "x", "html": "y"}`), http.StatusBadRequest, "invalid_request")
	assertError(t, do(t, s, http.MethodPost, "/design/update", `{"design": {}, "html": "y"}`), http.StatusBadRequest, "invalid_request")
	assertError(t, do(t, s, http.MethodPost, "/design/update", `{"design": {}, "block_id": "x"}`), http.StatusBadRequest, "invalid_request")
}

func TestInject(t *testing.T) {
	s := newServer()
	body, err := json.Marshal(map[string]any{
		"design":       json.RawMessage(fixtureDesign(t, s)),
		"component_id": components.SpinWheelID,
	})
	require.NoError(t, err)

	rec := do(t, s, http.MethodPost, "/design/inject", string(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	found, err := s.tk.Detect(rec.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, components.SpinWheelID, found[1].ComponentID)

	assertError(t, do(t, s, http.MethodPost, "/design/inject", `{"design": {}, "component_id": "nope"}`), http.StatusNotFound, "component_not_found")
	assertError(t, do(t, s, http.MethodPost, "/design/inject", `{"design": {}}`), http.StatusBadRequest, "invalid_request")
	assertError(t, do(t, s, http.MethodPost, "/design/inject", `{"design": "bad", "component_id": "spin-wheel"}`), http.StatusBadRequest, "invalid_design")
}

func TestGenerateReminder(t *testing.T) {
	s := newServer()

	rec := do(t, s, http.MethodPost, "/reminder/generate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	doc := testutil.ParseHTML(t, rec.Body.String())
	assert.Equal(t, 1, doc.Find("#reminderTab").Length())
	assert.Equal(t, 1, doc.Find("#mobileFloatingButton").Length())

	rec = do(t, s, http.MethodPost, "/reminder/generate", `{"enabled": false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	doc = testutil.ParseHTML(t, rec.Body.String())
	assert.Zero(t, doc.Find("#reminderTab").Length())

	assertError(t, do(t, s, http.MethodPost, "/reminder/generate", `{"enabled": 3}`), http.StatusBadRequest, "invalid_config")
}

func TestMerge(t *testing.T) {
	s := newServer()

	rec := do(t, s, http.MethodPost, "/merge", `{
		"reminder_tab_state_json": {"enabled": true},
		"template_html": "<div class=\"u-popup-container\">POP</div>",
		"options": {"autoOpenPopup": true}
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	doc := testutil.ParseHTML(t, rec.Body.String())
	assert.Equal(t, 1, doc.Find(".u-popup-container").Length())
	assert.Equal(t, 1, doc.Find("#reminderTab").Length())
	assert.Contains(t, doc.Find("#popup-merger-script").Text(), "AUTO_OPEN = true")

	assertError(t, do(t, s, http.MethodPost, "/merge", `{"template_html": "x"}`), http.StatusUnprocessableEntity, "no_reminder_data")
	assertError(t, do(t, s, http.MethodPost, "/merge", `{"template_html": "x", "reminder_tab_state_json": "{bad"}`), http.StatusBadRequest, "invalid_config")
	assertError(t, do(t, s, http.MethodPost, "/merge", `[`), http.StatusBadRequest, "invalid_request")
}

func TestBodyLimit(t *testing.T) {
	s := newServer()
	huge := bytes.Repeat([]byte("a"), MaxBodyBytes+1)
	rec := do(t, s, http.MethodPost, "/design/detect", string(huge))
	assertError(t, rec, http.StatusBadRequest, "invalid_request")
	assert.Contains(t, rec.Body.String(), "exceeds")
}

func TestMethodNotAllowed(t *testing.T) {
	rec := do(t, newServer(), http.MethodGet, "/merge", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestListenAndServe_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	s := newServer()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, addr) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
