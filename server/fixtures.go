package server

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/bassamadnan/triage/backend"
)

// FileSource serves a JSON array of emails from disk, for demos and for
// running without Gmail credentials. The file is re-read on every fetch.
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name identifies the source in logs.
func (f *FileSource) Name() string { return "file" }

// Fetch returns up to limit emails, newest first.
func (f *FileSource) Fetch(ctx context.Context, limit int) ([]backend.Email, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	var emails []backend.Email
	if err := json.Unmarshal(data, &emails); err != nil {
		return nil, fmt.Errorf("parse fixtures %s: %w", f.path, err)
	}
	slices.SortStableFunc(emails, func(a, b backend.Email) int {
		return b.Date.Compare(a.Date.Time)
	})
	if limit > 0 && len(emails) > limit {
		emails = emails[:limit]
	}
	return emails, nil
}
