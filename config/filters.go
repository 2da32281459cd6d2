package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// Filters defines the rules that keep mail out of the triage list.
type Filters struct {
	IgnoreSenders           []string `json:"ignoreSenders"`
	IgnoreKeywordsInSubject []string `json:"ignoreKeywordsInSubject"`
	IgnoreKeywordsInBody    []string `json:"ignoreKeywordsInBody"`
}

// FilterManager handles loading, saving, and accessing filter rules.
type FilterManager struct {
	filePath string
	filters  *Filters
	mu       sync.RWMutex
}

// NewFilterManager loads filePath, creating it with empty rules when missing.
// An empty path keeps the rules in memory only.
func NewFilterManager(filePath string) (*FilterManager, error) {
	m := &FilterManager{
		filePath: filePath,
		filters:  emptyFilters(),
	}
	if filePath == "" {
		return m, nil
	}
	if err := m.Load(); err != nil {
		return nil, err
	}
	return m, nil
}

func emptyFilters() *Filters {
	return &Filters{
		IgnoreSenders:           []string{},
		IgnoreKeywordsInSubject: []string{},
		IgnoreKeywordsInBody:    []string{},
	}
}

// Load reads filter rules from the JSON file.
func (m *FilterManager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			m.filters = emptyFilters()
			return m.save()
		}
		return err
	}

	filters := emptyFilters()
	if err := json.Unmarshal(data, filters); err != nil {
		return err
	}
	m.filters = filters
	return nil
}

// save writes the current rules. Callers hold the write lock.
func (m *FilterManager) save() error {
	if m.filePath == "" {
		return nil
	}
	if dir := filepath.Dir(m.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(m.filters, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.filePath, data, 0o644)
}

// Get returns a copy of the current filters.
func (m *FilterManager) Get() Filters {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Filters{
		IgnoreSenders:           slices.Clone(m.filters.IgnoreSenders),
		IgnoreKeywordsInSubject: slices.Clone(m.filters.IgnoreKeywordsInSubject),
		IgnoreKeywordsInBody:    slices.Clone(m.filters.IgnoreKeywordsInBody),
	}
}

// AddIgnoreSender adds a sender to the ignore list and saves.
func (m *FilterManager) AddIgnoreSender(sender string) error {
	return m.add(func(f *Filters) *[]string { return &f.IgnoreSenders }, sender)
}

// AddIgnoreKeywordInSubject adds a subject keyword to the ignore list and saves.
func (m *FilterManager) AddIgnoreKeywordInSubject(keyword string) error {
	return m.add(func(f *Filters) *[]string { return &f.IgnoreKeywordsInSubject }, keyword)
}

// AddIgnoreKeywordInBody adds a body keyword to the ignore list and saves.
func (m *FilterManager) AddIgnoreKeywordInBody(keyword string) error {
	return m.add(func(f *Filters) *[]string { return &f.IgnoreKeywordsInBody }, keyword)
}

// RemoveIgnoreSender drops a sender rule and saves.
func (m *FilterManager) RemoveIgnoreSender(sender string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := len(m.filters.IgnoreSenders)
	m.filters.IgnoreSenders = slices.DeleteFunc(m.filters.IgnoreSenders, func(s string) bool { return s == sender })
	if len(m.filters.IgnoreSenders) == before {
		return nil
	}
	return m.save()
}

func (m *FilterManager) add(field func(*Filters) *[]string, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	list := field(m.filters)
	if slices.Contains(*list, value) {
		return nil
	}
	*list = append(*list, value)
	return m.save()
}

// Match reports the rule that excludes a message, or "" when it passes.
// Matching is case-insensitive substring matching.
func (m *FilterManager) Match(sender, subject, body string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if rule := matchAny(sender, m.filters.IgnoreSenders); rule != "" {
		return "sender:" + rule
	}
	if rule := matchAny(subject, m.filters.IgnoreKeywordsInSubject); rule != "" {
		return "subject:" + rule
	}
	if rule := matchAny(body, m.filters.IgnoreKeywordsInBody); rule != "" {
		return "body:" + rule
	}
	return ""
}

func matchAny(value string, rules []string) string {
	lower := strings.ToLower(value)
	for _, r := range rules {
		if r != "" && strings.Contains(lower, strings.ToLower(r)) {
			return r
		}
	}
	return ""
}
