package runway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hanbit-dev/pagecraft/internal/core"
)

const apiVersion = "2024-11-06"

// Client calls the Runway REST API. There is no official Go SDK, so this wraps
// the two endpoints we use: task creation and task polling.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	ratio      string
	httpClient *http.Client
	pollEvery  time.Duration
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      "gen4_image",
		ratio:      "1024:1024",
		httpClient: &http.Client{Timeout: 30 * time.Second},
		pollEvery:  2 * time.Second,
	}
}

type createTaskRequest struct {
	Model           string                `json:"model"`
	Ratio           string                `json:"ratio"`
	PromptText      string                `json:"promptText"`
	ReferenceImages []core.ReferenceImage `json:"referenceImages,omitempty"`
}

type taskResponse struct {
	ID      string   `json:"id"`
	Status  string   `json:"status"`
	Output  []string `json:"output"`
	Failure string   `json:"failure"`
}

// TextToImage creates a text_to_image task and polls it until it settles.
// Cancelling ctx abandons the poll; the remote task is left to expire on its own.
func (c *Client) TextToImage(ctx context.Context, promptText string, refs []core.ReferenceImage) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("runway api key not configured")
	}

	task, err := c.createTask(ctx, createTaskRequest{
		Model:           c.model,
		Ratio:           c.ratio,
		PromptText:      promptText,
		ReferenceImages: refs,
	})
	if err != nil {
		return "", err
	}

	ticker := time.NewTicker(c.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}

		task, err = c.getTask(ctx, task.ID)
		if err != nil {
			return "", err
		}

		switch task.Status {
		case "SUCCEEDED":
			if len(task.Output) == 0 {
				return "", fmt.Errorf("runway task %s succeeded with no output", task.ID)
			}
			return task.Output[0], nil
		case "FAILED", "CANCELLED":
			return "", fmt.Errorf("runway task %s failed: %s", task.ID, task.Failure)
		}
		// PENDING / RUNNING / THROTTLED: keep polling.
	}
}

func (c *Client) createTask(ctx context.Context, body createTaskRequest) (*taskResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal task request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/text_to_image", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuth(req)

	return c.do(req)
}

func (c *Client) getTask(ctx context.Context, id string) (*taskResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/tasks/"+id, nil)
	if err != nil {
		return nil, err
	}
	c.setAuth(req)

	return c.do(req)
}

func (c *Client) setAuth(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Runway-Version", apiVersion)
}

func (c *Client) do(req *http.Request) (*taskResponse, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("runway request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read runway response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("runway returned %d: %s", resp.StatusCode, raw)
	}

	var task taskResponse
	if err := json.Unmarshal(raw, &task); err != nil {
		return nil, fmt.Errorf("decode runway response: %w", err)
	}
	return &task, nil
}

var _ core.ImageSynthesizer = (*Client)(nil)
