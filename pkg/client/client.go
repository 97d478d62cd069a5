// Package client provides the HTTP client for hosted automation agents.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/machovotrish/luma/pkg/log"
)

// AgentClient talks to a hosted automation agent over HTTP. Task execution
// streams progress lines as server-sent events; the final answer arrives in
// the closing event.
type AgentClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries int
}

// NewAgentClient creates a client for the given endpoint.
func NewAgentClient(baseURL, apiKey string) *AgentClient {
	return &AgentClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Minute,
		},
		maxRetries: 3,
	}
}

// TaskRequest represents a request to the task execution endpoint.
type TaskRequest struct {
	Task  string `json:"task"`
	Model string `json:"model,omitempty"`
}

// TaskEvent is a single server-sent event in a task stream.
type TaskEvent struct {
	// Type is "progress", "result", or "error"
	Type string `json:"type"`
	// Text carries progress output or the final answer
	Text string `json:"text"`
	// Message carries the error detail for "error" events
	Message string `json:"message,omitempty"`
}

// TaskError represents an error payload returned by the agent API.
type TaskError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// RunTask executes one task to completion, writing progress lines to the
// writer as they stream in. It returns the final answer text.
func (c *AgentClient) RunTask(ctx context.Context, req TaskRequest, writer io.Writer) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/tasks", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	c.setHeaders(httpReq)
	httpReq.Header.Set("Accept", "text/event-stream")

	log.WithFields(map[string]interface{}{
		"url":   httpReq.URL.String(),
		"model": req.Model,
	}).Debug("dispatching task to hosted agent")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.handleErrorResponse(resp)
	}

	return c.processStream(resp.Body, writer)
}

// processStream reads the SSE stream, forwarding progress and capturing the
// final answer.
func (c *AgentClient) processStream(body io.Reader, writer io.Writer) (string, error) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var result string

	for scanner.Scan() {
		line := scanner.Text()

		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}

		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			break
		}

		var event TaskEvent
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			log.WithError(err).WithField("data", data).Warn("failed to parse task event")
			continue
		}

		switch event.Type {
		case "progress":
			if event.Text != "" {
				if _, writeErr := writer.Write([]byte(event.Text + "\n")); writeErr != nil {
					return result, fmt.Errorf("failed to write progress: %w", writeErr)
				}
			}
		case "result":
			result = event.Text
		case "error":
			return result, fmt.Errorf("agent error: %s", event.Message)
		}
	}

	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("error reading stream: %w", err)
	}

	return result, nil
}

// Ping verifies the endpoint is reachable and the credential is accepted.
// Transient failures are retried with exponential backoff.
func (c *AgentClient) Ping(ctx context.Context) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			log.WithFields(map[string]interface{}{
				"attempt": attempt,
				"backoff": backoff.String(),
			}).Debug("retrying agent health check")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		err := c.doPing(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if !shouldRetry(err) {
			return err
		}
	}

	return fmt.Errorf("failed after %d retries: %w", c.maxRetries, lastErr)
}

func (c *AgentClient) doPing(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/v1/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.handleErrorResponse(resp)
	}
	return nil
}

// setHeaders sets the required HTTP headers for the request.
func (c *AgentClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// handleErrorResponse parses and returns an error from an HTTP error response.
func (c *AgentClient) handleErrorResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("HTTP %d (failed to read error body: %w)", resp.StatusCode, err)
	}

	var errorResp struct {
		Error *TaskError `json:"error"`
	}

	if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error != nil {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, errorResp.Error.Message)
	}

	return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
}

// shouldRetry determines if a request should be retried based on the error.
func shouldRetry(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()

	if strings.Contains(errStr, "HTTP 5") {
		return true
	}

	if strings.Contains(errStr, "connection") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "EOF") {
		return true
	}

	return false
}
