package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/mkraev/presalesd/internal/resolver"
	"github.com/mkraev/presalesd/internal/storage"
)

// --- mocks ---

type mockLeadStore struct {
	leads   []storage.Lead
	saveErr error
	listErr error
}

func (m *mockLeadStore) SaveLead(l storage.Lead) (int64, error) {
	if m.saveErr != nil {
		return 0, m.saveErr
	}
	m.leads = append(m.leads, l)
	return int64(len(m.leads)), nil
}

func (m *mockLeadStore) ListLeads() ([]storage.Lead, error) {
	return m.leads, m.listErr
}

type mockEstimator struct {
	est       resolver.Estimate
	lastQuery string
}

func (m *mockEstimator) Estimate(_ context.Context, query string) resolver.Estimate {
	m.lastQuery = query
	return m.est
}

type mockConversation struct {
	replies map[string]string
}

func (m *mockConversation) HandleTurn(_ context.Context, clientID, text string) string {
	if r, ok := m.replies[text]; ok {
		return r
	}
	return fmt.Sprintf("echo %s: %s", clientID, text)
}

func newTestServer(t *testing.T, deps Deps) *httptest.Server {
	t.Helper()
	if deps.Store == nil {
		deps.Store = &mockLeadStore{}
	}
	if deps.Estimator == nil {
		deps.Estimator = &mockEstimator{}
	}
	if deps.Chat == nil {
		deps.Chat = &mockConversation{}
	}
	srv := httptest.NewServer(NewHandler(deps))
	t.Cleanup(srv.Close)
	return srv
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

// --- tests ---

func TestHealth(t *testing.T) {
	srv := newTestServer(t, Deps{})

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]string
	decodeBody(t, resp, &body)
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestGetEstimate(t *testing.T) {
	est := &mockEstimator{est: resolver.Estimate{
		ProjectType:     "CRM system",
		BudgetRange:     "$4k-$7k",
		TypicalTimeline: "4-6 months",
	}}
	srv := newTestServer(t, Deps{Estimator: est})

	resp, err := http.Get(srv.URL + "/api/estimates?project_type=crm")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body resolver.Estimate
	decodeBody(t, resp, &body)
	if body.BudgetRange != "$4k-$7k" {
		t.Errorf("budget_range = %q", body.BudgetRange)
	}
	if est.lastQuery != "crm" {
		t.Errorf("estimator query = %q, want %q", est.lastQuery, "crm")
	}
}

func TestGetEstimateMissingParam(t *testing.T) {
	srv := newTestServer(t, Deps{})

	resp, err := http.Get(srv.URL + "/api/estimates")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestCreateLead(t *testing.T) {
	store := &mockLeadStore{}
	srv := newTestServer(t, Deps{Store: store})

	body := `{"name":"Jane Doe","contact":"jane@example.com","project_type":"CRM system","follow_up_consent":true}`
	resp, err := http.Post(srv.URL+"/api/leads", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var result struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	decodeBody(t, resp, &result)
	if result.ID != 1 || result.Status != "success" {
		t.Errorf("result = %+v", result)
	}
	if len(store.leads) != 1 || !store.leads[0].FollowUpConsent {
		t.Errorf("stored lead = %+v", store.leads)
	}
}

func TestCreateLeadValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"name":`},
		{name: "missing contact", body: `{"name":"Jane Doe","project_type":"CRM system"}`},
		{name: "missing name", body: `{"contact":"jane@example.com","project_type":"CRM system"}`},
		{name: "missing project type", body: `{"name":"Jane Doe","contact":"jane@example.com"}`},
	}

	srv := newTestServer(t, Deps{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/api/leads", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestCreateLeadStorageFailure(t *testing.T) {
	srv := newTestServer(t, Deps{Store: &mockLeadStore{saveErr: errors.New("disk full")}})

	body := `{"name":"Jane Doe","contact":"jane@example.com","project_type":"CRM system"}`
	resp, err := http.Post(srv.URL+"/api/leads", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
}

func TestListLeads(t *testing.T) {
	store := &mockLeadStore{leads: []storage.Lead{
		{ID: 1, Name: "Jane Doe", Contact: "jane@example.com", ProjectType: "CRM system"},
	}}
	srv := newTestServer(t, Deps{Store: store})

	resp, err := http.Get(srv.URL + "/api/leads")
	if err != nil {
		t.Fatal(err)
	}
	var body struct {
		Leads []storage.Lead `json:"leads"`
	}
	decodeBody(t, resp, &body)
	if len(body.Leads) != 1 || body.Leads[0].Name != "Jane Doe" {
		t.Errorf("leads = %+v", body.Leads)
	}
}

func TestListLeadsEmpty(t *testing.T) {
	srv := newTestServer(t, Deps{})

	resp, err := http.Get(srv.URL + "/api/leads")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		t.Fatal(err)
	}
	if string(raw["leads"]) != "[]" {
		t.Errorf("leads = %s, want empty array not null", raw["leads"])
	}
}

func TestBearerAuth(t *testing.T) {
	srv := newTestServer(t, Deps{AuthToken: "secret"})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "no header", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic secret", want: http.StatusUnauthorized},
		{name: "wrong token", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer secret", want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/leads", nil)
			if err != nil {
				t.Fatal(err)
			}
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestAuthDoesNotGuardPublicRoutes(t *testing.T) {
	srv := newTestServer(t, Deps{AuthToken: "secret"})

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want 200 without auth", resp.StatusCode)
	}
}

func dialWS(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestChatRoundTrip(t *testing.T) {
	conv := &mockConversation{replies: map[string]string{"hello": "hi there"}}
	srv := newTestServer(t, Deps{Chat: conv})

	conn := dialWS(t, srv, "/ws/c1")

	if err := conn.WriteMessage(websocket.TextMessage, []byte("hello")); err != nil {
		t.Fatal(err)
	}
	_, reply, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if string(reply) != "hi there" {
		t.Errorf("reply = %q, want %q", reply, "hi there")
	}
}

func TestChatSequentialTurns(t *testing.T) {
	srv := newTestServer(t, Deps{})

	conn := dialWS(t, srv, "/ws/c9")
	for _, msg := range []string{"one", "two", "three"} {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			t.Fatal(err)
		}
		_, reply, err := conn.ReadMessage()
		if err != nil {
			t.Fatal(err)
		}
		want := "echo c9: " + msg
		if string(reply) != want {
			t.Errorf("reply = %q, want %q", reply, want)
		}
	}
}

func TestChatSkipsBlankFrames(t *testing.T) {
	srv := newTestServer(t, Deps{})

	conn := dialWS(t, srv, "/ws/c1")
	if err := conn.WriteMessage(websocket.TextMessage, []byte("   ")); err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte("real")); err != nil {
		t.Fatal(err)
	}
	_, reply, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if string(reply) != "echo c1: real" {
		t.Errorf("reply = %q; blank frame should produce no reply", reply)
	}
}

func TestChatAssignsClientID(t *testing.T) {
	srv := newTestServer(t, Deps{})

	conn := dialWS(t, srv, "/ws")
	if err := conn.WriteMessage(websocket.TextMessage, []byte("hi")); err != nil {
		t.Fatal(err)
	}
	_, reply, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	// The generated id lands in the echo prefix and must be non-empty.
	if !strings.HasPrefix(string(reply), "echo ") || strings.HasPrefix(string(reply), "echo : ") {
		t.Errorf("reply = %q, want a generated client id", reply)
	}
}
