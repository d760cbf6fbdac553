package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/topicflow/pkg/adapters/memory"
	"github.com/aretw0/topicflow/pkg/domain"
	"github.com/aretw0/topicflow/pkg/editor"
	"github.com/aretw0/topicflow/pkg/validation"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *editor.Projects, *editor.Fields) {
	t.Helper()
	store := memory.NewStore()
	projects := editor.NewProjects(store)
	fields := editor.NewFields(store)
	return NewServer(projects, fields, nil), projects, fields
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

const draft = `{
	"id": "draft",
	"instrument": {"type": "", "revision": "R1"},
	"topics": [{"topic": {"id": "lifecycle", "kind": "root"}, "states": [], "transitions": []}]
}`

func TestValidateProject_JSONString(t *testing.T) {
	s, _, _ := newTestServer(t)

	report, err := s.handleValidateProject(context.Background(), callRequest(nil), map[string]any{"project": draft})
	require.NoError(t, err)
	assert.True(t, report.Blocking)
	assert.Equal(t, report.Errors, len(report.Issues)-report.Warnings)
	assert.Equal(t, domain.LevelError, report.Issues[0].Level, "errors sort first")

	var messages []string
	for _, issue := range report.Issues {
		messages = append(messages, issue.Message)
	}
	assert.Contains(t, messages, validation.MsgInstrumentTypeRequired)
}

func TestValidateProject_Object(t *testing.T) {
	s, _, _ := newTestServer(t)

	var obj map[string]any
	require.NoError(t, json.Unmarshal([]byte(draft), &obj))
	report, err := s.handleValidateProject(context.Background(), callRequest(nil), map[string]any{"project": obj})
	require.NoError(t, err)
	assert.True(t, report.Blocking)
}

func TestValidateProject_BadInput(t *testing.T) {
	s, _, _ := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleValidateProject(ctx, callRequest(nil), map[string]any{})
	assert.Error(t, err)

	_, err = s.handleValidateProject(ctx, callRequest(nil), map[string]any{"project": 42.0})
	assert.Error(t, err)

	_, err = s.handleValidateProject(ctx, callRequest(nil), map[string]any{"project": "{"})
	assert.Error(t, err)
}

func TestListProjectsAndIssues(t *testing.T) {
	s, projects, _ := newTestServer(t)
	ctx := context.Background()

	p, err := projects.Create(ctx, editor.CreateProjectInput{Type: "TypeA", Revision: "R1"})
	require.NoError(t, err)

	list, err := s.handleListProjects(ctx, callRequest(nil), nil)
	require.NoError(t, err)
	require.Len(t, list.Projects, 1)
	assert.Equal(t, ProjectSummary{ID: p.ID, Type: "TypeA", Revision: "R1", Topics: 1}, list.Projects[0])

	report, err := s.handleProjectIssues(ctx, callRequest(nil), map[string]any{"project_id": p.ID})
	require.NoError(t, err)
	assert.False(t, report.Blocking)

	_, err = s.handleProjectIssues(ctx, callRequest(nil), map[string]any{"project_id": "missing"})
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}

func TestTopicDiagram(t *testing.T) {
	s, projects, _ := newTestServer(t)
	ctx := context.Background()

	p, err := projects.Create(ctx, editor.CreateProjectInput{Type: "TypeA", Revision: "R1"})
	require.NoError(t, err)

	res, err := s.handleTopicDiagram(ctx, callRequest(map[string]any{
		"project_id": p.ID,
		"topic_id":   editor.DefaultRootTopicID,
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, textOf(t, res), "graph TD")

	res, err = s.handleTopicDiagram(ctx, callRequest(map[string]any{
		"project_id": p.ID,
		"topic_id":   "nope",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, textOf(t, res), `topic "nope" not found`)
}

func TestReadFieldsResource(t *testing.T) {
	s, _, fields := newTestServer(t)
	ctx := context.Background()

	_, err := fields.AddValue(ctx, domain.VocabFlowTypes, "Sync")
	require.NoError(t, err)

	contents, err := s.readFields(ctx, mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, "application/json", text.MIMEType)

	var cfg domain.FieldConfig
	require.NoError(t, json.Unmarshal([]byte(text.Text), &cfg))
	assert.Equal(t, []string{"Sync"}, cfg.FlowTypes)
}
