package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/topicflow/internal/metrics"
	httpadapter "github.com/aretw0/topicflow/pkg/adapters/http"
	"github.com/aretw0/topicflow/pkg/adapters/memory"
	"github.com/aretw0/topicflow/pkg/adapters/render"
	"github.com/aretw0/topicflow/pkg/domain"
	"github.com/aretw0/topicflow/pkg/editor"
	"github.com/aretw0/topicflow/pkg/schema"
	"github.com/aretw0/topicflow/pkg/validation"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRenderer struct {
	out    string
	err    error
	source string
}

func (r *stubRenderer) Render(_ context.Context, source string) (string, error) {
	r.source = source
	return r.out, r.err
}

type fixture struct {
	srv      *httptest.Server
	store    *memory.Store
	renderer *stubRenderer
	metrics  *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	m := metrics.New()
	renderer := &stubRenderer{out: "<svg/>"}
	handler := httpadapter.NewHandler(&httpadapter.Server{
		Projects: editor.NewProjects(store, editor.WithMetrics(m)),
		Fields:   editor.NewFields(store, editor.WithFieldsMetrics(m)),
		Renderer: renderer,
		Metrics:  m,
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, store: store, renderer: renderer, metrics: m}
}

func (f *fixture) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, f.srv.URL+path, r)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (f *fixture) create(t *testing.T, typ, rev string) domain.Project {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/projects", `{"type":"`+typ+`","revision":"`+rev+`"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[domain.Project](t, resp)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	resp := f.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, map[string]string{"status": "ok"}, decode[map[string]string](t, resp))
}

func TestPreflight(t *testing.T) {
	f := newFixture(t)
	resp := f.do(t, http.MethodOptions, "/projects", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "PUT")
}

func TestProjects_CreateGetList(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, "TypeA", "R1")
	assert.Equal(t, "TypeA", p.Instrument.Type)
	require.Len(t, p.Topics, 1)

	resp := f.do(t, http.MethodGet, "/projects/"+p.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[domain.Project](t, resp)
	assert.Equal(t, p.ID, got.ID)

	f.create(t, "TypeA", "R2")
	resp = f.do(t, http.MethodGet, "/projects", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]domain.Project](t, resp), 2)
}

func TestProjects_CreateDuplicate(t *testing.T) {
	f := newFixture(t)
	f.create(t, "TypeA", "R1")

	resp := f.do(t, http.MethodPost, "/projects", `{"type":"TypeA","revision":"R1"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[httpadapter.ErrorResponse](t, resp)
	assert.Equal(t, `An instrument with type "TypeA" and revision "R1" already exists.`, body.Error)
}

func TestProjects_CreateRejectsBlankInput(t *testing.T) {
	f := newFixture(t)
	resp := f.do(t, http.MethodPost, "/projects", `{"type":"  ","revision":"R1"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProjects_CreateRejectsUnknownFields(t *testing.T) {
	f := newFixture(t)
	resp := f.do(t, http.MethodPost, "/projects", `{"type":"A","revision":"R1","colour":"x"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProjects_GetMissing(t *testing.T) {
	f := newFixture(t)
	resp := f.do(t, http.MethodGet, "/projects/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProjects_UpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, "TypeA", "R1")

	p.Instrument.Revision = "R9"
	payload, err := json.Marshal(p)
	require.NoError(t, err)
	resp := f.do(t, http.MethodPut, "/projects/"+p.ID, string(payload))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "R9", decode[domain.Project](t, resp).Instrument.Revision)

	resp = f.do(t, http.MethodDelete, "/projects/"+p.ID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/projects/"+p.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProjects_SaveBlocked(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, "TypeA", "R1")

	p.Instrument.Type = ""
	payload, err := json.Marshal(p)
	require.NoError(t, err)
	resp := f.do(t, http.MethodPost, "/projects/"+p.ID+"/save", string(payload))
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	body := decode[httpadapter.ErrorResponse](t, resp)
	require.NotEmpty(t, body.Issues)
	var messages []string
	for _, issue := range body.Issues {
		messages = append(messages, issue.Message)
	}
	assert.Contains(t, messages, validation.MsgInstrumentTypeRequired)

	stored, err := f.store.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "TypeA", stored.Instrument.Type, "blocked save must not persist")
}

func TestProjects_SaveWithWarnings(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, "TypeA", "R1")

	payload, err := json.Marshal(p)
	require.NoError(t, err)
	resp := f.do(t, http.MethodPost, "/projects/"+p.ID+"/save", string(payload))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[httpadapter.SaveResponse](t, resp)
	assert.False(t, body.Blocking)
	assert.Equal(t, 0, body.Errors)
	assert.Equal(t, 1, body.Warnings)
	assert.Equal(t, p.ID, body.Project.ID)
}

func TestProjects_Issues(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, "TypeA", "R1")

	resp := f.do(t, http.MethodGet, "/projects/"+p.ID+"/issues", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	report := decode[httpadapter.Report](t, resp)
	assert.False(t, report.Blocking)
	assert.Len(t, report.Issues, report.Errors+report.Warnings)
}

func TestValidate_Snapshot(t *testing.T) {
	f := newFixture(t)
	resp := f.do(t, http.MethodPost, "/validate", `{
		"id": "draft",
		"instrument": {"type": "", "revision": "R1"},
		"topics": [{"topic": {"id": "lifecycle", "kind": "root"}, "states": [], "transitions": []}]
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	report := decode[httpadapter.Report](t, resp)
	assert.True(t, report.Blocking)
	assert.GreaterOrEqual(t, report.Errors, 2)
}

func TestValidate_BadBody(t *testing.T) {
	f := newFixture(t)
	resp := f.do(t, http.MethodPost, "/validate", `{"id":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDiagram_Mermaid(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, "TypeA", "R1")

	resp := f.do(t, http.MethodGet, "/projects/"+p.ID+"/topics/"+editor.DefaultRootTopicID+"/diagram", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "graph TD"))
}

func TestDiagram_SVG(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, "TypeA", "R1")

	resp := f.do(t, http.MethodGet, "/projects/"+p.ID+"/topics/"+editor.DefaultRootTopicID+"/diagram?format=svg", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(body))
	assert.True(t, strings.HasPrefix(f.renderer.source, "graph TD"))
}

func TestDiagram_RendererFailure(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, "TypeA", "R1")
	f.renderer.err = &render.Error{StatusCode: http.StatusBadRequest, Body: "syntax error"}

	resp := f.do(t, http.MethodGet, "/projects/"+p.ID+"/topics/"+editor.DefaultRootTopicID+"/diagram?format=svg", "")
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	body := decode[httpadapter.ErrorResponse](t, resp)
	require.NotNil(t, body.Upstream)
	assert.Equal(t, http.StatusBadRequest, body.Upstream.StatusCode)
	assert.Equal(t, "syntax error", body.Upstream.Body)
}

func TestDiagram_UnknownTopicAndFormat(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, "TypeA", "R1")

	resp := f.do(t, http.MethodGet, "/projects/"+p.ID+"/topics/missing/diagram", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/projects/"+p.ID+"/topics/"+editor.DefaultRootTopicID+"/diagram?format=png", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFields_AddRemoveColor(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/fields/flowTypes", `{"value":"Sync"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, []string{"Sync"}, decode[domain.FieldConfig](t, resp).FlowTypes)

	resp = f.do(t, http.MethodPut, "/fields/colors/Sync", `{"color":"#00AAFF"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "#00AAFF", decode[domain.FieldConfig](t, resp).FlowTypeColors["Sync"])

	resp = f.do(t, http.MethodGet, "/fields", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"Sync"}, decode[domain.FieldConfig](t, resp).FlowTypes)

	resp = f.do(t, http.MethodDelete, "/fields/flowTypes/Sync", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cfg := decode[domain.FieldConfig](t, resp)
	assert.Empty(t, cfg.FlowTypes)
	assert.NotContains(t, cfg.FlowTypeColors, "Sync")
}

func TestFields_Errors(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/fields/messageTypes", `{"value":"1Bad"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, schema.InvalidNameMessage, decode[httpadapter.ErrorResponse](t, resp).Error)

	resp = f.do(t, http.MethodPost, "/fields/messageTypes", `{"value":"Order"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = f.do(t, http.MethodPost, "/fields/messageTypes", `{"value":"Order"}`)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, `Value "Order" already exists in messageTypes`, decode[httpadapter.ErrorResponse](t, resp).Error)

	resp = f.do(t, http.MethodPost, "/fields/colours", `{"value":"Order"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.do(t, http.MethodDelete, "/fields/messageTypes/Missing", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.do(t, http.MethodPut, "/fields/colors/Order", `{"color":"red"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMetrics_RoutePatterns(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, "TypeA", "R1")
	f.do(t, http.MethodGet, "/projects/"+p.ID, "")

	resp := f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "topicflow_http_requests_total")
	assert.Contains(t, string(body), `route="/projects/{id}`)
	assert.NotContains(t, string(body), p.ID, "project IDs must not leak into labels")

	n, err := testutil.GatherAndCount(f.metrics.Registry(), "topicflow_projects_operations_total")
	require.NoError(t, err)
	assert.Positive(t, n)
}

func TestProjects_DeleteMissingIsIdempotent(t *testing.T) {
	f := newFixture(t)
	resp := f.do(t, http.MethodDelete, "/projects/unknown", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
