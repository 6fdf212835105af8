package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/iammorganparry/companion/internal/models"
)

type fakeBackend struct {
	chatConv string
	limit    int
}

func (f *fakeBackend) Chat(_ context.Context, conversationID, _, message string) (*models.ChatResponse, error) {
	f.chatConv = conversationID
	return &models.ChatResponse{Reply: "you said " + message, ConversationID: "c1", Persona: "Emma"}, nil
}

func (f *fakeBackend) Conversations(context.Context) ([]models.ConversationOverview, error) {
	return []models.ConversationOverview{{ID: "c1", MessageCount: 4}}, nil
}

func (f *fakeBackend) Messages(_ context.Context, _ string, limit int) ([]models.Message, error) {
	f.limit = limit
	return []models.Message{}, nil
}

func (f *fakeBackend) Summary(context.Context, string) (*models.ConversationSummary, error) {
	return nil, errors.New("GET /v1/conversations/c9/summary: conversation not found")
}

func (f *fakeBackend) Profile(context.Context) (*models.UserProfile, error) {
	return &models.UserProfile{UserID: "u1"}, nil
}

func (f *fakeBackend) AnalyzeEmotion(_ context.Context, message string) (*models.EmotionDetectionResult, error) {
	return &models.EmotionDetectionResult{PrimaryEmotion: models.EmotionHappy, Intensity: 6}, nil
}

// roundtrip feeds the lines to a server and returns one decoded response per
// output line.
func roundtrip(t *testing.T, backend Backend, lines ...string) []Response {
	t.Helper()
	var out strings.Builder
	if err := NewServer(backend, "test").Run(context.Background(), strings.NewReader(strings.Join(lines, "\n")), &out); err != nil {
		t.Fatal(err)
	}

	var resps []Response
	sc := bufio.NewScanner(strings.NewReader(out.String()))
	for sc.Scan() {
		var r Response
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			t.Fatalf("bad output line %q: %v", sc.Text(), err)
		}
		resps = append(resps, r)
	}
	return resps
}

func toolText(t *testing.T, r Response) (string, bool) {
	t.Helper()
	raw, _ := json.Marshal(r.Result)
	var res CallToolResult
	if err := json.Unmarshal(raw, &res); err != nil || len(res.Content) != 1 {
		t.Fatalf("result = %s", raw)
	}
	return res.Content[0].Text, res.IsError
}

func TestHandshake(t *testing.T) {
	resps := roundtrip(t, &fakeBackend{},
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"resources/list"}`,
		`not json`,
	)
	if len(resps) != 4 {
		t.Fatalf("responses = %d, want 4 (notification unanswered)", len(resps))
	}

	raw, _ := json.Marshal(resps[0].Result)
	if !strings.Contains(string(raw), `"name":"companion"`) || !strings.Contains(string(raw), protocolVersion) {
		t.Errorf("initialize = %s", raw)
	}

	raw, _ = json.Marshal(resps[1].Result)
	var list ToolsListResult
	json.Unmarshal(raw, &list)
	if len(list.Tools) != len(ToolDefinitions()) {
		t.Errorf("tools = %d", len(list.Tools))
	}

	if resps[2].Error == nil || resps[2].Error.Code != codeMethodNotFound {
		t.Errorf("unknown method = %+v", resps[2])
	}
	if resps[3].Error == nil || resps[3].Error.Code != codeParseError {
		t.Errorf("parse error = %+v", resps[3])
	}
}

func TestToolCalls(t *testing.T) {
	backend := &fakeBackend{}
	resps := roundtrip(t, backend,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"companion_chat","arguments":{"message":"hi","conversationId":"c1"}}}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"companion_chat","arguments":{}}}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"companion_messages","arguments":{"conversationId":"c1"}}}`,
		`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"companion_summary","arguments":{"conversationId":"c9"}}}`,
		`{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"companion_analyze_emotion","arguments":{"message":"yay"}}}`,
		`{"jsonrpc":"2.0","id":6,"method":"tools/call","params":{"name":"nope"}}`,
	)
	if len(resps) != 6 {
		t.Fatalf("responses = %d", len(resps))
	}

	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"chat", `"reply": "you said hi"`, false},
		{"chat without message", "message is required", true},
		{"messages", "[]", false},
		{"summary error", "conversation not found", true},
		{"emotion", `"primaryEmotion": "happy"`, false},
		{"unknown tool", "unknown tool: nope", true},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isErr := toolText(t, resps[i])
			if isErr != tt.wantErr || !strings.Contains(text, tt.want) {
				t.Errorf("text = %q isError = %v", text, isErr)
			}
		})
	}

	if backend.chatConv != "c1" || backend.limit != 20 {
		t.Errorf("backend saw conversation %q limit %d", backend.chatConv, backend.limit)
	}
}
