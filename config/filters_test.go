package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterManagerCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "filters.json")

	m, err := NewFilterManager(path)
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Empty(t, m.Get().IgnoreSenders)
}

func TestFilterManagerPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filters.json")
	m, err := NewFilterManager(path)
	require.NoError(t, err)

	require.NoError(t, m.AddIgnoreSender("noreply@example.com"))
	require.NoError(t, m.AddIgnoreSender("noreply@example.com"))
	require.NoError(t, m.AddIgnoreSender("  "))
	require.NoError(t, m.AddIgnoreKeywordInSubject("Newsletter"))
	require.NoError(t, m.AddIgnoreKeywordInBody("unsubscribe"))

	reloaded, err := NewFilterManager(path)
	require.NoError(t, err)
	got := reloaded.Get()
	assert.Equal(t, []string{"noreply@example.com"}, got.IgnoreSenders)
	assert.Equal(t, []string{"Newsletter"}, got.IgnoreKeywordsInSubject)
	assert.Equal(t, []string{"unsubscribe"}, got.IgnoreKeywordsInBody)

	require.NoError(t, reloaded.RemoveIgnoreSender("noreply@example.com"))
	assert.Empty(t, reloaded.Get().IgnoreSenders)
}

func TestFilterManagerGetReturnsCopy(t *testing.T) {
	m, err := NewFilterManager("")
	require.NoError(t, err)
	require.NoError(t, m.AddIgnoreSender("a@example.com"))

	got := m.Get()
	got.IgnoreSenders[0] = "changed"
	assert.Equal(t, []string{"a@example.com"}, m.Get().IgnoreSenders)
}

func TestFilterManagerMatch(t *testing.T) {
	m, err := NewFilterManager("")
	require.NoError(t, err)
	require.NoError(t, m.AddIgnoreSender("promo@shop.example"))
	require.NoError(t, m.AddIgnoreKeywordInSubject("sale"))
	require.NoError(t, m.AddIgnoreKeywordInBody("unsubscribe"))

	tests := []struct {
		name                  string
		sender, subject, body string
		want                  string
	}{
		{"sender", "Shop <PROMO@shop.example>", "hi", "", "sender:promo@shop.example"},
		{"subject", "a@b.c", "Big SALE today", "", "subject:sale"},
		{"body", "a@b.c", "hello", "click to Unsubscribe", "body:unsubscribe"},
		{"pass", "a@b.c", "Meeting", "See you at 10", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Match(tt.sender, tt.subject, tt.body))
		})
	}
}

func TestFilterManagerRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filters.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := NewFilterManager(path)
	assert.Error(t, err)
}
