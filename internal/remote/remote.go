// Package remote moves the accounts document to and from save servers
// over HTTP.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fxdash/dashboard/internal/model"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 32 << 20
)

// ErrRejected is returned when a save server answers without success: true.
var ErrRejected = errors.New("save rejected")

// Result reports where a dataset was saved, or why it was not.
type Result struct {
	Saved  bool   `json:"saved"`
	Target string `json:"target,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// saveResponse is the body every save server answers with.
type saveResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Saver posts the whole dataset to a primary save URL and, if that fails,
// to a fallback URL. Each target gets exactly one attempt.
type Saver struct {
	targets    []string
	httpClient *http.Client
}

// NewSaver creates a saver. Empty URLs are skipped; client may be nil.
func NewSaver(client *http.Client, primary, fallback string) *Saver {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	var targets []string
	for _, u := range []string{primary, fallback} {
		if u != "" {
			targets = append(targets, u)
		}
	}
	return &Saver{targets: targets, httpClient: client}
}

// Save tries each target in order and stops at the first that answers 2xx
// with success: true.
func (s *Saver) Save(ctx context.Context, ds *model.Dataset) Result {
	body, err := json.Marshal(ds.Clone())
	if err != nil {
		return Result{Reason: fmt.Sprintf("encode dataset: %v", err)}
	}
	if len(s.targets) == 0 {
		return Result{Reason: "no save target configured"}
	}

	var reasons []string
	for _, target := range s.targets {
		err := s.post(ctx, target, body)
		if err == nil {
			return Result{Saved: true, Target: target}
		}
		reasons = append(reasons, fmt.Sprintf("%s: %v", target, err))
		if ctx.Err() != nil {
			break
		}
	}
	return Result{Reason: strings.Join(reasons, "; ")}
}

func (s *Saver) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out saveResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if !out.Success {
		if out.Error != "" {
			return fmt.Errorf("%w: %s", ErrRejected, out.Error)
		}
		return ErrRejected
	}
	return nil
}

// Fetch downloads a dataset, bypassing intermediate caches.
func Fetch(ctx context.Context, client *http.Client, url string) (*model.Dataset, error) {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode)
	}

	var ds model.Dataset
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&ds); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", url, err)
	}
	if ds.Accounts == nil {
		ds.Accounts = []model.Account{}
	}
	return &ds, nil
}
