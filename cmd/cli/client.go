package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/iho/goticket/internal/adapter/http/dto"
	"github.com/iho/goticket/internal/adapter/http/middleware"
)

// apiClient calls the /api/v1 surface with the identity given on the command line.
type apiClient struct {
	baseURL string
	user    string
	token   string
	http    *http.Client
}

func newAPIClient() *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		user:    userID,
		token:   bearerToken,
		http:    &http.Client{Timeout: timeout},
	}
}

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	Status int
	Body   dto.ErrorResponse
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("request failed (status %d): %s", e.Status, e.Body.Error)
	if e.Body.Message != "" {
		msg += ": " + e.Body.Message
	}
	if e.Body.Stage != "" {
		msg += fmt.Sprintf(" [stage=%s compensated=%t]", e.Body.Stage, e.Body.Compensated)
	}
	return msg
}

func (c *apiClient) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// post sends body with a fresh Idempotency-Key so a retried command cannot
// run the same exchange twice.
func (c *apiClient) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api/v1"+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost {
		req.Header.Set(middleware.IdempotencyKeyHeader, ulid.Make().String())
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	} else if c.user != "" {
		req.Header.Set(middleware.UserIDHeader, c.user)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if jsonErr := json.Unmarshal(data, &apiErr.Body); jsonErr != nil || apiErr.Body.Error == "" {
			apiErr.Body.Error = strings.TrimSpace(string(data))
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
