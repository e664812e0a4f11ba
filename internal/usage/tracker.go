// Package usage records token consumption per spreadsheet file and per
// provider. The tracker travels through the pipeline in the context, so
// concurrent batch workers attribute their calls to the right file without
// any process-global state.
package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

type trackerKey struct{}
type fileKey struct{}

// TokenCounts aggregates one bucket of usage.
type TokenCounts struct {
	Calls        int `json:"calls"`
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

func (c *TokenCounts) add(input, output, total int) {
	c.Calls++
	c.InputTokens += input
	c.OutputTokens += output
	if total == 0 {
		total = input + output
	}
	c.TotalTokens += total
}

// Session is the persisted form of one process run.
type Session struct {
	SessionID  string                 `json:"session_id"`
	StartedAt  time.Time              `json:"started_at"`
	FinishedAt time.Time              `json:"finished_at"`
	Total      TokenCounts            `json:"total"`
	ByFile     map[string]TokenCounts `json:"by_file"`
	ByProvider map[string]TokenCounts `json:"by_provider"`
}

// Tracker accumulates token usage for one process run.
type Tracker struct {
	mu         sync.Mutex
	sessionID  string
	startedAt  time.Time
	total      TokenCounts
	byFile     map[string]TokenCounts
	byProvider map[string]TokenCounts
}

// NewTracker creates an empty tracker with a fresh session id.
func NewTracker() *Tracker {
	return &Tracker{
		sessionID:  uuid.NewString(),
		startedAt:  time.Now(),
		byFile:     make(map[string]TokenCounts),
		byProvider: make(map[string]TokenCounts),
	}
}

// SessionID returns the identifier used for persistence.
func (t *Tracker) SessionID() string { return t.sessionID }

// Track records one model call. The file attribution comes from the context
// set with WithFile; calls outside any file scope land in the "" bucket.
func (t *Tracker) Track(ctx context.Context, provider string, input, output, total int) {
	file := FileFromContext(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.total.add(input, output, total)
	fc := t.byFile[file]
	fc.add(input, output, total)
	t.byFile[file] = fc
	pc := t.byProvider[provider]
	pc.add(input, output, total)
	t.byProvider[provider] = pc
}

// FileTotal returns the accumulated counts for one file.
func (t *Tracker) FileTotal(file string) TokenCounts {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.byFile[file]
}

// Total returns the accumulated counts across all files.
func (t *Tracker) Total() TokenCounts {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// Snapshot returns the session in its persisted form.
func (t *Tracker) Snapshot() Session {
	t.mu.Lock()
	defer t.mu.Unlock()

	byFile := make(map[string]TokenCounts, len(t.byFile))
	for k, v := range t.byFile {
		byFile[k] = v
	}
	byProvider := make(map[string]TokenCounts, len(t.byProvider))
	for k, v := range t.byProvider {
		byProvider[k] = v
	}
	return Session{
		SessionID:  t.sessionID,
		StartedAt:  t.startedAt,
		FinishedAt: time.Now(),
		Total:      t.total,
		ByFile:     byFile,
		ByProvider: byProvider,
	}
}

// Save writes the session snapshot under dir as session_<id>.json.
func (t *Tracker) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create tokens dir: %w", err)
	}
	snap := t.Snapshot()
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "session_"+snap.SessionID+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// NewContext attaches the tracker to the context.
func NewContext(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, trackerKey{}, t)
}

// FromContext returns the tracker from the context, or nil.
func FromContext(ctx context.Context) *Tracker {
	t, _ := ctx.Value(trackerKey{}).(*Tracker)
	return t
}

// WithFile tags the context with the spreadsheet file all nested calls
// should be attributed to.
func WithFile(ctx context.Context, file string) context.Context {
	return context.WithValue(ctx, fileKey{}, file)
}

// FileFromContext returns the file tag, or "".
func FileFromContext(ctx context.Context) string {
	f, _ := ctx.Value(fileKey{}).(string)
	return f
}

// Record is a convenience for call sites holding a context only: it tracks
// against the context tracker when one is present and is a no-op otherwise.
func Record(ctx context.Context, provider string, input, output, total int) {
	if t := FromContext(ctx); t != nil {
		t.Track(ctx, provider, input, output, total)
	}
}
