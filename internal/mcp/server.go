// Package mcp bridges the companion API to MCP clients over stdio.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/iammorganparry/companion/internal/models"
)

const protocolVersion = "2024-11-05"

// Backend is the API surface the tools call. *client.Client implements it.
type Backend interface {
	Chat(ctx context.Context, conversationID, characterID, message string) (*models.ChatResponse, error)
	Conversations(ctx context.Context) ([]models.ConversationOverview, error)
	Messages(ctx context.Context, conversationID string, limit int) ([]models.Message, error)
	Summary(ctx context.Context, conversationID string) (*models.ConversationSummary, error)
	Profile(ctx context.Context) (*models.UserProfile, error)
	AnalyzeEmotion(ctx context.Context, message string) (*models.EmotionDetectionResult, error)
}

// Server implements an MCP stdio server that delegates to the companion API.
type Server struct {
	backend Backend
	version string

	mu  sync.Mutex
	out io.Writer
}

func NewServer(backend Backend, version string) *Server {
	return &Server{backend: backend, version: version}
}

// Run serves newline-delimited JSON-RPC from in until it is exhausted.
func (s *Server) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	s.out = out
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.write(&Response{JSONRPC: "2.0", Error: &RPCError{Code: codeParseError, Message: "parse error: " + err.Error()}})
			continue
		}
		if resp := s.handle(ctx, &req); resp != nil {
			s.write(resp)
		}
	}
	return scanner.Err()
}

func (s *Server) handle(ctx context.Context, req *Request) *Response {
	switch req.Method {
	case "initialize":
		return result(req.ID, InitializeResult{
			ProtocolVersion: protocolVersion,
			Capabilities:    ServerCapabilities{Tools: &ToolCapabilities{}},
			ServerInfo:      ServerInfo{Name: "companion", Version: s.version},
		})
	case "ping":
		return result(req.ID, map[string]string{})
	case "tools/list":
		return result(req.ID, ToolsListResult{Tools: ToolDefinitions()})
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	}
	if req.ID == nil {
		// Notifications (notifications/initialized and friends) get no reply.
		return nil
	}
	return failure(req.ID, codeMethodNotFound, "method not found: "+req.Method)
}

func (s *Server) handleToolsCall(ctx context.Context, req *Request) *Response {
	raw, err := json.Marshal(req.Params)
	if err != nil {
		return failure(req.ID, codeInvalidParams, "invalid params")
	}
	var params CallToolParams
	if err := json.Unmarshal(raw, &params); err != nil || params.Name == "" {
		return failure(req.ID, codeInvalidParams, "invalid params")
	}

	out, err := s.dispatch(ctx, params.Name, params.Arguments)
	if err != nil {
		return result(req.ID, CallToolResult{Content: []ContentBlock{{Type: "text", Text: err.Error()}}, IsError: true})
	}
	text, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return result(req.ID, CallToolResult{Content: []ContentBlock{{Type: "text", Text: "marshal result: " + err.Error()}}, IsError: true})
	}
	return result(req.ID, CallToolResult{Content: []ContentBlock{{Type: "text", Text: string(text)}}})
}

func (s *Server) dispatch(ctx context.Context, name string, args map[string]any) (any, error) {
	switch name {
	case "companion_chat":
		msg, err := requireString(args, "message")
		if err != nil {
			return nil, err
		}
		return s.backend.Chat(ctx, getString(args, "conversationId"), getString(args, "characterId"), msg)
	case "companion_conversations":
		return s.backend.Conversations(ctx)
	case "companion_messages":
		id, err := requireString(args, "conversationId")
		if err != nil {
			return nil, err
		}
		return s.backend.Messages(ctx, id, int(getFloat(args, "limit", 20)))
	case "companion_summary":
		id, err := requireString(args, "conversationId")
		if err != nil {
			return nil, err
		}
		return s.backend.Summary(ctx, id)
	case "companion_profile":
		return s.backend.Profile(ctx)
	case "companion_analyze_emotion":
		msg, err := requireString(args, "message")
		if err != nil {
			return nil, err
		}
		return s.backend.AnalyzeEmotion(ctx, msg)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

func (s *Server) write(resp *Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		data, _ = json.Marshal(failure(resp.ID, -32603, "marshal response: "+err.Error()))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "%s\n", data)
}

func result(id, v any) *Response {
	return &Response{JSONRPC: "2.0", ID: id, Result: v}
}

func failure(id any, code int, message string) *Response {
	return &Response{JSONRPC: "2.0", ID: id, Error: &RPCError{Code: code, Message: message}}
}

// --- Argument helpers ---

func getString(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return strings.TrimSpace(v)
}

func requireString(args map[string]any, key string) (string, error) {
	v := getString(args, key)
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

func getFloat(args map[string]any, key string, fallback float64) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return fallback
}
