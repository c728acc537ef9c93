// Package loki pushes session events to Grafana Loki's push API.
package loki

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"event-admin-console/internal/telemetry/domain"
)

// Job is the job label attached to every stream.
const Job = "event-admin-console"

// ErrEmptyURL is returned by New when the base URL is empty.
var ErrEmptyURL = errors.New("loki: base URL is empty")

// PushRequest is the Loki push API request body (v1).
type PushRequest struct {
	Streams []Stream `json:"streams"`
}

// Stream is a single stream with labels and log entries.
type Stream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"` // [timestamp_ns, line]
}

// labelSanitize replaces characters we do not want in label values.
var labelSanitize = regexp.MustCompile(`[^a-zA-Z0-9_\-:]`)

// Client pushes lines to one Loki instance.
type Client struct {
	pushURL string
	http    *http.Client
}

// New returns a Client for baseURL (e.g. http://localhost:3100). httpClient may be nil.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, ErrEmptyURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		pushURL: strings.TrimSuffix(baseURL, "/") + "/loki/api/v1/push",
		http:    httpClient,
	}, nil
}

// PushEventJSON parses a session event (a Kafka message value) for labels and timestamp and pushes the raw line.
// Unparseable input is pushed as-is with the current time and only the job label.
func (c *Client) PushEventJSON(ctx context.Context, raw []byte) error {
	ts := time.Now().UTC()
	labels := map[string]string{}
	var event domain.SessionEvent
	if err := json.Unmarshal(raw, &event); err == nil {
		labels["event_type"] = event.EventType
		labels["source"] = event.Source
		labels["role_id"] = event.RoleID
		if !event.CreatedAt.IsZero() {
			ts = event.CreatedAt
		}
	}
	return c.Push(ctx, ts, string(raw), labels)
}

// Push sends one line. Empty label values are dropped after sanitizing.
func (c *Client) Push(ctx context.Context, ts time.Time, line string, labels map[string]string) error {
	stream := map[string]string{"job": Job}
	for k, v := range labels {
		if s := labelSanitize.ReplaceAllString(strings.TrimSpace(v), "_"); s != "" {
			stream[k] = s
		}
	}
	payload, err := json.Marshal(PushRequest{Streams: []Stream{{
		Stream: stream,
		Values: [][]string{{strconv.FormatInt(ts.UnixNano(), 10), line}},
	}}})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.pushURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("loki: push returned %s", resp.Status)
	}
	return nil
}
