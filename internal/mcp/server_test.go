package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
}

// fakeBacklog stands in for the HTTP facade and records every request.
type fakeBacklog struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (f *fakeBacklog) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.EscapedPath(), Body: string(body)})
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/state"):
			w.Write([]byte(`{"issues":[],"notes":[]}`))
		case strings.HasSuffix(r.URL.Path, "/chat"):
			if strings.Contains(string(body), `"message":""`) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error":"Missing \"message\" field in body"}`))
				return
			}
			w.Write([]byte(`{"reply":"do it","state":{}}`))
		case strings.HasSuffix(r.URL.Path, "/cleanup"):
			w.Write([]byte(`{"sessionId":"s","removed":0}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func (f *fakeBacklog) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func runSession(t *testing.T, serverURL string, lines ...string) []Response {
	t.Helper()
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	var out bytes.Buffer
	if err := NewServer(serverURL, in, &out).Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	var responses []Response
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var resp Response
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			t.Fatalf("decode response %q: %v", scanner.Text(), err)
		}
		responses = append(responses, resp)
	}
	return responses
}

func toolResult(t *testing.T, resp Response) CallToolResult {
	t.Helper()
	raw, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	var result CallToolResult
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	return result
}

func TestHandshakeAndToolsList(t *testing.T) {
	responses := runSession(t, "http://unused",
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"ping"}`,
	)
	if len(responses) != 3 {
		t.Fatalf("expected 3 responses (notification is silent), got %d", len(responses))
	}

	raw, _ := json.Marshal(responses[1].Result)
	var list ToolsListResult
	if err := json.Unmarshal(raw, &list); err != nil {
		t.Fatalf("decode tools: %v", err)
	}
	names := map[string]bool{}
	for _, tool := range list.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"backlog_state", "backlog_chat", "backlog_cleanup"} {
		if !names[want] {
			t.Errorf("missing tool %s", want)
		}
	}
}

func TestProtocolErrors(t *testing.T) {
	responses := runSession(t, "http://unused",
		`not json`,
		`{"jsonrpc":"2.0","id":7,"method":"resources/list"}`,
	)
	if len(responses) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(responses))
	}
	if responses[0].Error == nil || responses[0].Error.Code != codeParseError {
		t.Errorf("expected parse error, got %+v", responses[0])
	}
	if responses[1].Error == nil || responses[1].Error.Code != codeMethodNotFound {
		t.Errorf("expected method not found, got %+v", responses[1])
	}
}

func TestToolDelegation(t *testing.T) {
	fake := &fakeBacklog{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	tests := []struct {
		name       string
		call       string
		wantMethod string
		wantPath   string
		wantBody   string
		wantError  bool
	}{
		{
			name:       "state",
			call:       `{"name":"backlog_state","arguments":{"session":"demo"}}`,
			wantMethod: http.MethodGet,
			wantPath:   "/agents/backlog-agent/demo/state",
		},
		{
			name:       "chat with user",
			call:       `{"name":"backlog_chat","arguments":{"session":"demo","message":"  ship it ","user":"ada"}}`,
			wantMethod: http.MethodPost,
			wantPath:   "/agents/backlog-agent/demo/chat",
			wantBody:   `{"message":"  ship it ","user":"ada"}`,
		},
		{
			name:       "chat without message surfaces the server error",
			call:       `{"name":"backlog_chat","arguments":{"session":"demo"}}`,
			wantMethod: http.MethodPost,
			wantPath:   "/agents/backlog-agent/demo/chat",
			wantBody:   `{"message":""}`,
			wantError:  true,
		},
		{
			name:       "cleanup escapes the session",
			call:       `{"name":"backlog_cleanup","arguments":{"session":"team a"}}`,
			wantMethod: http.MethodPost,
			wantPath:   "/admin/sessions/team%20a/cleanup",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			responses := runSession(t, srv.URL, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":`+tt.call+`}`)
			if len(responses) != 1 {
				t.Fatalf("expected 1 response, got %d", len(responses))
			}
			result := toolResult(t, responses[0])
			if result.IsError != tt.wantError {
				t.Errorf("isError = %v, want %v (%+v)", result.IsError, tt.wantError, result)
			}

			got := fake.last()
			if got.Method != tt.wantMethod || got.Path != tt.wantPath {
				t.Errorf("got %s %s, want %s %s", got.Method, got.Path, tt.wantMethod, tt.wantPath)
			}
			if tt.wantBody != "" && got.Body != tt.wantBody {
				t.Errorf("body = %s, want %s", got.Body, tt.wantBody)
			}
		})
	}
}

func TestToolArgumentErrors(t *testing.T) {
	responses := runSession(t, "http://unused",
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"backlog_state","arguments":{}}}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"issue_get","arguments":{"session":"x"}}}`,
	)
	if len(responses) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(responses))
	}

	missing := toolResult(t, responses[0])
	if !missing.IsError || !strings.Contains(missing.Content[0].Text, "session") {
		t.Errorf("expected missing session error, got %+v", missing)
	}
	unknown := toolResult(t, responses[1])
	if !unknown.IsError || !strings.Contains(unknown.Content[0].Text, "unknown tool") {
		t.Errorf("expected unknown tool error, got %+v", unknown)
	}
}
