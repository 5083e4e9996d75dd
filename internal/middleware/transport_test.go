package middleware

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shibaleo/repomcp/internal/jsonrpc"
)

// stubProcessor returns a canned result for every request.
type stubProcessor struct {
	result interface{}
	err    *jsonrpc.Error
	last   *jsonrpc.Request
}

func (p *stubProcessor) ProcessRequest(ctx context.Context, req *jsonrpc.Request) (interface{}, *jsonrpc.Error) {
	p.last = req
	return p.result, p.err
}

func TestTransportInlinePost(t *testing.T) {
	p := &stubProcessor{result: map[string]string{"status": "ok"}}
	handler := Transport(p)

	body := `{"jsonrpc":"2.0","id":1,"method":"initialize"}`
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type = %q", ct)
	}

	var resp jsonrpc.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	if p.last == nil || p.last.Method != "initialize" {
		t.Errorf("processor saw request %+v", p.last)
	}
}

func TestTransportInlinePostError(t *testing.T) {
	p := &stubProcessor{err: &jsonrpc.Error{Code: jsonrpc.MethodNotFound, Message: "Method not found"}}
	handler := Transport(p)

	body := `{"jsonrpc":"2.0","id":2,"method":"bogus"}`
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	var resp jsonrpc.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != jsonrpc.MethodNotFound {
		t.Errorf("error = %+v, want method not found", resp.Error)
	}
}

func TestTransportInlineParseError(t *testing.T) {
	p := &stubProcessor{}
	handler := Transport(p)

	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	var resp jsonrpc.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != jsonrpc.ParseError {
		t.Errorf("error = %+v, want parse error", resp.Error)
	}
	if p.last != nil {
		t.Error("processor must not run on parse errors")
	}
}

// readSSEData scans the stream for the next "data:" line.
func readSSEData(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("stream ended before data line: %v", err)
		}
		if strings.HasPrefix(line, "data: ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "data: "))
		}
	}
}

func TestTransportSSESessionDelivery(t *testing.T) {
	p := &stubProcessor{result: map[string]string{"status": "ok"}}
	srv := httptest.NewServer(Transport(p))
	defer srv.Close()

	client := &http.Client{Timeout: 5 * time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	stream, err := client.Do(req)
	if err != nil {
		t.Fatalf("failed to open stream: %v", err)
	}
	defer stream.Body.Close()

	if ct := stream.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content-type = %q", ct)
	}

	reader := bufio.NewReader(stream.Body)

	// First event announces the session endpoint
	endpoint := readSSEData(t, reader)
	u, err := url.Parse(endpoint)
	if err != nil {
		t.Fatalf("invalid endpoint %q: %v", endpoint, err)
	}
	sessionID := u.Query().Get("sessionId")
	if sessionID == "" {
		t.Fatalf("endpoint %q carries no session ID", endpoint)
	}

	body := `{"jsonrpc":"2.0","id":1,"method":"initialize"}`
	post, err := client.Post(srv.URL+"/?sessionId="+sessionID, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	post.Body.Close()
	if post.StatusCode != http.StatusAccepted {
		t.Fatalf("post status = %d, want 202", post.StatusCode)
	}

	// The response must arrive on the still-open stream
	var resp jsonrpc.Response
	if err := json.Unmarshal([]byte(readSSEData(t, reader)), &resp); err != nil {
		t.Fatalf("invalid streamed response: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	if p.last == nil || p.last.Method != "initialize" {
		t.Errorf("processor saw request %+v", p.last)
	}
}

func TestTransportUnknownSession(t *testing.T) {
	handler := Transport(&stubProcessor{})

	req := httptest.NewRequest(http.MethodPost, "/mcp?sessionId=nope", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestTransportMethodNotAllowed(t *testing.T) {
	handler := Transport(&stubProcessor{})

	req := httptest.NewRequest(http.MethodDelete, "/mcp", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
