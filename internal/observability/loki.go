// Package observability pushes per-tool-call accounting records to Grafana
// Loki. The client stays disabled unless fully configured, so local runs emit
// nothing.
package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/shibaleo/repomcp/internal/logging"
)

type LokiClient struct {
	url        string
	username   string
	apiKey     string
	httpClient *http.Client
	enabled    bool
	appName    string
}

// Loki Push API format
type lokiPushRequest struct {
	Streams []lokiStream `json:"streams"`
}

type lokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"`
}

var defaultClient = &LokiClient{enabled: false}

// Init configures the process-wide Loki client. Any empty argument leaves
// the client disabled.
func Init(url, username, apiKey, appName string) {
	if appName == "" {
		appName = "repomcp"
	}

	if url == "" || username == "" || apiKey == "" {
		logging.Default().Debug("loki not configured, accounting disabled")
		defaultClient = &LokiClient{enabled: false, appName: appName}
		return
	}

	defaultClient = &LokiClient{
		url:        url + "/loki/api/v1/push",
		username:   username,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		enabled:    true,
		appName:    appName,
	}
	logging.Default().Info("loki client initialized")
}

// Push sends one record to Loki asynchronously. Failures are logged and
// dropped; accounting never blocks or fails a tool call.
func Push(labels map[string]string, data map[string]any) {
	if defaultClient == nil || !defaultClient.enabled {
		return
	}

	go defaultClient.push(labels, data)
}

func (c *LokiClient) push(labels map[string]string, data map[string]any) {
	if labels == nil {
		labels = make(map[string]string)
	}
	labels["app"] = c.appName

	dataJSON, err := json.Marshal(data)
	if err != nil {
		logging.Default().Warn("loki: failed to marshal data", slog.Any("error", err))
		return
	}

	timestamp := strconv.FormatInt(time.Now().UnixNano(), 10)

	req := lokiPushRequest{
		Streams: []lokiStream{
			{
				Stream: labels,
				Values: [][]string{
					{timestamp, string(dataJSON)},
				},
			},
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		logging.Default().Warn("loki: failed to marshal request", slog.Any("error", err))
		return
	}

	httpReq, err := http.NewRequest(http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		logging.Default().Warn("loki: failed to create request", slog.Any("error", err))
		return
	}

	httpReq.SetBasicAuth(c.username, c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logging.Default().Warn("loki: failed to send", slog.Any("error", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logging.Default().Warn("loki: unexpected status code", slog.Int("status", resp.StatusCode))
	}
}

// LogToolCall records one tool execution
func LogToolCall(requestID, module, tool string, durationMs int64, status string, errMsg string) {
	level := "info"
	if status == "error" {
		level = "error"
	}
	labels := map[string]string{
		"type":   "tool_call",
		"module": module,
		"status": status,
		"level":  level,
	}

	data := map[string]any{
		"request_id":  requestID,
		"module":      module,
		"tool":        tool,
		"duration_ms": durationMs,
		"status":      status,
	}

	if errMsg != "" {
		data["error"] = errMsg
	}

	Push(labels, data)
}

// LogPanic records a recovered panic for alerting
func LogPanic(requestID string, details map[string]any) {
	labels := map[string]string{
		"type":  "panic",
		"level": "error",
	}

	data := map[string]any{
		"request_id": requestID,
	}
	for k, v := range details {
		data[k] = v
	}

	Push(labels, data)
}
