package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	protocolVersion = "2024-11-05"
	agentBasePath   = "/agents/backlog-agent"
	maxLineBytes    = 1024 * 1024
)

// Server implements an MCP stdio server that delegates to the HTTP backlog server.
type Server struct {
	serverURL string
	client    *http.Client

	in  io.Reader
	out io.Writer
	mu  sync.Mutex
}

// NewServer creates a new MCP server reading requests from in and writing
// responses to out, one JSON object per line.
func NewServer(serverURL string, in io.Reader, out io.Writer) *Server {
	return &Server{
		serverURL: strings.TrimRight(serverURL, "/"),
		// Chat calls wait on the model.
		client: &http.Client{Timeout: 3 * time.Minute},
		in:     in,
		out:    out,
	}
}

// Run starts the event loop. Blocks until input is exhausted or ctx is done.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeResponse(errorResponse(nil, codeParseError, "parse error: "+err.Error()))
			continue
		}

		if resp := s.handleRequest(ctx, &req); resp != nil {
			s.writeResponse(resp)
		}
	}

	return scanner.Err()
}

func (s *Server) handleRequest(ctx context.Context, req *Request) *Response {
	switch req.Method {
	case "initialize":
		return &Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result: InitializeResult{
				ProtocolVersion: protocolVersion,
				Capabilities:    ServerCapabilities{Tools: &ToolCapabilities{}},
				ServerInfo:      ServerInfo{Name: "backlog-buddy", Version: "1.0.0"},
			},
		}
	case "initialized", "notifications/initialized":
		return nil
	case "tools/list":
		return &Response{JSONRPC: "2.0", ID: req.ID, Result: ToolsListResult{Tools: ToolDefinitions()}}
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &Response{JSONRPC: "2.0", ID: req.ID, Result: map[string]string{}}
	default:
		if req.ID == nil {
			// Unknown notification.
			return nil
		}
		return errorResponse(req.ID, codeMethodNotFound, "method not found: "+req.Method)
	}
}

func (s *Server) handleToolsCall(ctx context.Context, req *Request) *Response {
	raw, err := json.Marshal(req.Params)
	if err != nil {
		return errorResponse(req.ID, codeInvalidParams, "invalid params")
	}

	var params CallToolParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return errorResponse(req.ID, codeInvalidParams, "invalid params: "+err.Error())
	}

	text, isError := s.dispatchTool(ctx, params.Name, params.Arguments)

	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: CallToolResult{
			Content: []ContentBlock{{Type: "text", Text: text}},
			IsError: isError,
		},
	}
}

func (s *Server) dispatchTool(ctx context.Context, name string, args map[string]any) (string, bool) {
	session := strings.TrimSpace(getString(args, "session"))
	if session == "" && isKnownTool(name) {
		return `missing required argument "session"`, true
	}

	switch name {
	case "backlog_state":
		return s.httpDo(ctx, http.MethodGet, sessionPath(session, "state"), nil)
	case "backlog_chat":
		body := map[string]string{"message": getString(args, "message")}
		if user := getString(args, "user"); user != "" {
			body["user"] = user
		}
		return s.httpDo(ctx, http.MethodPost, sessionPath(session, "chat"), body)
	case "backlog_cleanup":
		return s.httpDo(ctx, http.MethodPost, "/admin/sessions/"+url.PathEscape(session)+"/cleanup", nil)
	default:
		return fmt.Sprintf("unknown tool: %s", name), true
	}
}

func isKnownTool(name string) bool {
	for _, def := range ToolDefinitions() {
		if def.Name == name {
			return true
		}
	}
	return false
}

func sessionPath(session, action string) string {
	return agentBasePath + "/" + url.PathEscape(session) + "/" + action
}

// --- HTTP helpers ---

func (s *Server) httpDo(ctx context.Context, method, path string, body any) (string, bool) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Sprintf("marshal error: %s", err), true
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.serverURL+path, reader)
	if err != nil {
		return fmt.Sprintf("request error: %s", err), true
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Sprintf("HTTP error: %s", err), true
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Sprintf("read error: %s", err), true
	}

	return string(respBody), resp.StatusCode >= 400
}

// --- Response helpers ---

func (s *Server) writeResponse(resp *Response) {
	data, _ := json.Marshal(resp)
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "%s\n", data)
}

func errorResponse(id any, code int, message string) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &RPCError{Code: code, Message: message},
	}
}

func getString(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}
