package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"folio-assistant/internal/domain"
)

// remoteUnavailable is the reply used when the remote endpoint cannot answer.
const remoteUnavailable = "The assistant is unavailable right now. Please try again later."

// RemoteClient calls a remote /api/assistant endpoint. It implements
// domain.Classifier so a process can fall back to another deployment.
type RemoteClient struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

var _ domain.Classifier = (*RemoteClient)(nil)

// NewRemoteClient creates a client for the endpoint at url. A nil client
// uses a 15 second timeout.
func NewRemoteClient(url string, client *http.Client, logger *slog.Logger) *RemoteClient {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RemoteClient{url: url, client: client, logger: logger}
}

type assistantRequest struct {
	Messages []domain.Message `json:"messages"`
}

// Classify implements domain.Classifier. Transport failures are errors;
// a non-2xx status or an undecodable body degrades to a TextReply.
func (c *RemoteClient) Classify(ctx context.Context, history []domain.Message) (domain.ToolCall, error) {
	body, err := json.Marshal(assistantRequest{Messages: history})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderError, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("remote assistant returned error status", "status", resp.StatusCode)
		return domain.TextReply{Text: remoteUnavailable}, nil
	}

	tc, err := domain.UnmarshalToolCall(raw)
	if err != nil {
		c.logger.Warn("remote assistant returned malformed body", "error", err)
		return domain.TextReply{Text: remoteUnavailable}, nil
	}
	return tc, nil
}
