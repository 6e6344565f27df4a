package api

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mkraev/presalesd/internal/resolver"
	"github.com/mkraev/presalesd/internal/storage"
)

type mockMCPStore struct {
	estimates []storage.ProjectEstimate
	leads     []storage.Lead
	saveErr   error
	listErr   error
}

func (m *mockMCPStore) ListEstimates() ([]storage.ProjectEstimate, error) {
	return m.estimates, m.listErr
}

func (m *mockMCPStore) SaveLead(l storage.Lead) (int64, error) {
	if m.saveErr != nil {
		return 0, m.saveErr
	}
	m.leads = append(m.leads, l)
	return int64(len(m.leads)), nil
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestMCPBudgetTimeline(t *testing.T) {
	est := &mockEstimator{est: resolver.Estimate{
		ProjectType:     "CRM system",
		BudgetRange:     "$4k-$7k",
		TypicalTimeline: "4-6 months",
	}}
	handler := mcpBudgetTimeline(MCPDeps{Store: &mockMCPStore{}, Estimator: est})

	result, err := handler(context.Background(), makeCallToolRequest("budget_timeline", map[string]interface{}{
		"project_type": "crm",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}

	var got resolver.Estimate
	if err := json.Unmarshal([]byte(toolText(t, result)), &got); err != nil {
		t.Fatal(err)
	}
	if got.BudgetRange != "$4k-$7k" || got.TypicalTimeline != "4-6 months" {
		t.Errorf("estimate = %+v", got)
	}
}

func TestMCPBudgetTimelineMissingArg(t *testing.T) {
	handler := mcpBudgetTimeline(MCPDeps{Store: &mockMCPStore{}, Estimator: &mockEstimator{}})

	result, err := handler(context.Background(), makeCallToolRequest("budget_timeline", nil))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("expected tool error for missing project_type")
	}
}

func TestMCPStoreLead(t *testing.T) {
	store := &mockMCPStore{}
	handler := mcpStoreLead(MCPDeps{Store: store, Estimator: &mockEstimator{}})

	result, err := handler(context.Background(), makeCallToolRequest("store_lead", map[string]interface{}{
		"name":              "Jane Doe",
		"contact":           "jane@example.com",
		"project_details":   "inventory sync",
		"follow_up_consent": true,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}

	if len(store.leads) != 1 {
		t.Fatalf("stored leads = %d, want 1", len(store.leads))
	}
	lead := store.leads[0]
	if lead.Name != "Jane Doe" || !lead.FollowUpConsent {
		t.Errorf("lead = %+v", lead)
	}
	if lead.ProjectType != "unknown" {
		t.Errorf("ProjectType = %q, want unknown default", lead.ProjectType)
	}
}

func TestMCPStoreLeadMissingContact(t *testing.T) {
	store := &mockMCPStore{}
	handler := mcpStoreLead(MCPDeps{Store: store, Estimator: &mockEstimator{}})

	result, err := handler(context.Background(), makeCallToolRequest("store_lead", map[string]interface{}{
		"name": "Jane Doe",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("expected tool error for missing contact")
	}
	if len(store.leads) != 0 {
		t.Errorf("lead stored despite validation failure: %+v", store.leads)
	}
}

func TestMCPStoreLeadStorageFailure(t *testing.T) {
	handler := mcpStoreLead(MCPDeps{Store: &mockMCPStore{saveErr: errors.New("disk full")}, Estimator: &mockEstimator{}})

	result, err := handler(context.Background(), makeCallToolRequest("store_lead", map[string]interface{}{
		"name":    "Jane Doe",
		"contact": "jane@example.com",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("expected tool error when the write fails")
	}
}

func TestMCPResourceEstimates(t *testing.T) {
	store := &mockMCPStore{estimates: []storage.ProjectEstimate{
		{ID: 1, ProjectType: "CRM system", BudgetRange: "$4k-$7k", TypicalTimeline: "4-6 months"},
		{ID: 2, ProjectType: "chatbot integration", BudgetRange: "$2k-$4k", TypicalTimeline: "2-3 months"},
	}}
	handler := mcpResourceEstimates(MCPDeps{Store: store, Estimator: &mockEstimator{}})

	contents, err := handler(context.Background(), mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{URI: "estimates://all"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents = %d, want 1", len(contents))
	}
	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected TextResourceContents, got %T", contents[0])
	}

	var got []storage.ProjectEstimate
	if err := json.Unmarshal([]byte(text.Text), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ProjectType != "CRM system" {
		t.Errorf("estimates = %+v", got)
	}
}
