package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"strings"
	"testing"

	"github.com/ironsheep/math-ocr-mcp/internal/capture"
	"github.com/ironsheep/math-ocr-mcp/internal/config"
	"github.com/ironsheep/math-ocr-mcp/internal/ocr"
	"github.com/ironsheep/math-ocr-mcp/internal/pipeline"
)

// fakeRecognizer stands in for Tesseract.
type fakeRecognizer struct {
	text string
	err  error
}

func (f *fakeRecognizer) Recognize(ctx context.Context, img image.Image, langs []string) (string, error) {
	return f.text, f.err
}

func (f *fakeRecognizer) Info() ocr.EngineInfo {
	return ocr.EngineInfo{Available: true, Version: "5.3.0", Backend: "fake"}
}

// fakeScreen returns a fixed image.
type fakeScreen struct {
	img image.Image
}

func (f *fakeScreen) Capture(context.Context) (image.Image, error) { return f.img, nil }
func (f *fakeScreen) Supported() bool { return true }

func newTestServer(t *testing.T, rec pipeline.TextRecognizer, screen capture.ScreenCapture) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Normalize.PatchSize = 3
	cfg.Normalize.SearchSize = 7
	p, err := pipeline.New(cfg, rec)
	if err != nil {
		t.Fatalf("pipeline.New failed: %v", err)
	}
	return New(cfg, p, screen)
}

func TestNew(t *testing.T) {
	s := newTestServer(t, &fakeRecognizer{}, nil)
	if s == nil {
		t.Fatal("New() returned nil")
	}
	if s.screen == nil || s.screen.Supported() {
		t.Fatal("New() should fall back to unsupported screen capture")
	}
}

func TestMCPRequest_Unmarshal(t *testing.T) {
	tests := []struct {
		name       string
		json       string
		wantID     interface{}
		wantMethod string
	}{
		{
			"string id",
			`{"jsonrpc":"2.0","id":"test-1","method":"tools/list"}`,
			"test-1",
			"tools/list",
		},
		{
			"number id",
			`{"jsonrpc":"2.0","id":42,"method":"ping"}`,
			float64(42), // JSON numbers decode as float64
			"ping",
		},
		{
			"null id",
			`{"jsonrpc":"2.0","id":null,"method":"initialize"}`,
			nil,
			"initialize",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req MCPRequest
			if err := json.Unmarshal([]byte(tt.json), &req); err != nil {
				t.Fatalf("Failed to unmarshal: %v", err)
			}
			if req.ID != tt.wantID {
				t.Errorf("ID: got %v (%T), want %v (%T)", req.ID, req.ID, tt.wantID, tt.wantID)
			}
			if req.Method != tt.wantMethod {
				t.Errorf("Method: got %s, want %s", req.Method, tt.wantMethod)
			}
		})
	}
}

func TestHandleRequest_Initialize(t *testing.T) {
	s := newTestServer(t, &fakeRecognizer{}, nil)
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: "init-1", Method: "initialize"})

	if resp == nil || resp.Error != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.ID != "init-1" {
		t.Errorf("ID: got %v, want init-1", resp.ID)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	if result["protocolVersion"] != "2024-11-05" {
		t.Errorf("protocolVersion: got %v", result["protocolVersion"])
	}
	serverInfo, ok := result["serverInfo"].(map[string]interface{})
	if !ok {
		t.Fatal("serverInfo should be a map")
	}
	if serverInfo["name"] != "math-ocr-mcp" {
		t.Errorf("serverInfo.name: got %v", serverInfo["name"])
	}
}

func TestHandleRequest_Ping(t *testing.T) {
	s := newTestServer(t, &fakeRecognizer{}, nil)
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: "ping-1", Method: "ping"})

	if resp == nil || resp.Error != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.ID != "ping-1" {
		t.Errorf("ID: got %v, want ping-1", resp.ID)
	}
}

func TestHandleRequest_NotificationsInitialized(t *testing.T) {
	s := newTestServer(t, &fakeRecognizer{}, nil)
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", Method: "notifications/initialized"})

	// Notifications don't get responses
	if resp != nil {
		t.Error("notifications/initialized should return nil response")
	}
}

func TestHandleRequest_MethodNotFound(t *testing.T) {
	s := newTestServer(t, &fakeRecognizer{}, nil)
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "nonexistent/method"})

	if resp == nil || resp.Error == nil {
		t.Fatal("Expected error for unknown method")
	}
	if resp.Error.Code != -32601 {
		t.Errorf("Error code: got %d, want -32601", resp.Error.Code)
	}
}

func TestServe(t *testing.T) {
	s := newTestServer(t, &fakeRecognizer{}, nil)
	in := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`not json`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"math_convert_expression","arguments":{"expression":"2+2"}}}`,
	}, "\n")

	var out bytes.Buffer
	if err := s.Serve(context.Background(), strings.NewReader(in), &out); err != nil {
		t.Fatalf("Serve failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 responses, got %d:\n%s", len(lines), out.String())
	}

	var resp struct {
		ID     float64 `json:"id"`
		Result struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"result"`
	}
	if err := json.Unmarshal([]byte(lines[1]), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if resp.ID != 2 || len(resp.Result.Content) != 1 {
		t.Fatalf("unexpected response: %s", lines[1])
	}
	if !strings.Contains(resp.Result.Content[0].Text, `"$2 + 2$"`) {
		t.Errorf("conversion missing from %s", resp.Result.Content[0].Text)
	}
}

func TestServe_Cancelled(t *testing.T) {
	s := newTestServer(t, &fakeRecognizer{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := s.Serve(ctx, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n"), &out)
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if out.Len() != 0 {
		t.Error("no response expected after cancellation")
	}
}
