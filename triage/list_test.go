package triage

import (
	"errors"
	"testing"

	"github.com/bassamadnan/triage/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEmails(ids ...backend.ID) []backend.Email {
	out := make([]backend.Email, len(ids))
	for i, id := range ids {
		out[i] = backend.Email{ID: id, Sender: "s" + string(id) + "@example.com", Subject: "subject " + string(id)}
	}
	return out
}

func TestListPage_FetchOutcomes(t *testing.T) {
	tests := []struct {
		name   string
		emails []backend.Email
		err    error
		want   int
	}{
		{"three emails", sampleEmails("1", "2", "3"), nil, 3},
		{"empty list", []backend.Email{}, nil, 0},
		{"no data", nil, nil, 0},
		{"error", sampleEmails("1"), errors.New("connection refused"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewListPage()
			require.True(t, p.BeginFetch())
			p.FetchDone(tt.emails, tt.err)
			assert.Equal(t, tt.want, p.Len())
			assert.Len(t, p.Cards(), tt.want)
			assert.NotNil(t, p.Emails())
			assert.True(t, p.Loaded())
			assert.False(t, p.Fetching())
			assert.Equal(t, tt.err, p.Err())
		})
	}
}

func TestListPage_ErrorDropsStaleData(t *testing.T) {
	p := NewListPage()
	p.BeginFetch()
	p.FetchDone(sampleEmails("1", "2"), nil)
	p.Toggle("1")

	p.BeginFetch()
	p.FetchDone(nil, errors.New("timeout"))
	assert.Equal(t, 0, p.Len())
	assert.Equal(t, 0, p.Selection().Len())
}

func TestListPage_SingleOutstandingFetch(t *testing.T) {
	p := NewListPage()
	assert.True(t, p.BeginFetch())
	assert.False(t, p.BeginFetch())
	p.FetchDone(nil, nil)
	assert.True(t, p.BeginFetch())
}

func TestListPage_DeleteEnabledIffSelection(t *testing.T) {
	p := NewListPage()
	p.BeginFetch()
	p.FetchDone(sampleEmails("1", "2"), nil)

	assert.False(t, p.CanDelete())
	_, ok := p.BeginDelete()
	assert.False(t, ok)

	p.Toggle("1")
	assert.True(t, p.CanDelete())
	p.Toggle("2")
	assert.True(t, p.CanDelete())
	p.Toggle("1")
	p.Toggle("2")
	assert.False(t, p.CanDelete())
}

func TestListPage_ToggleUnknownIDIgnored(t *testing.T) {
	p := NewListPage()
	p.BeginFetch()
	p.FetchDone(sampleEmails("1"), nil)

	assert.False(t, p.Toggle("99"))
	assert.Equal(t, 0, p.Selection().Len())
	assert.False(t, p.CanDelete())
}

func TestListPage_DeleteScenario(t *testing.T) {
	p := NewListPage()
	require.True(t, p.BeginFetch())
	p.FetchDone(sampleEmails("1"), nil)

	p.Toggle("1")
	require.True(t, p.CanDelete())

	ids, ok := p.BeginDelete()
	require.True(t, ok)
	assert.Equal(t, []backend.ID{"1"}, ids)

	_, again := p.BeginDelete()
	assert.False(t, again, "second delete while one is in flight")

	refetch := p.DeleteDone(nil)
	assert.True(t, refetch)
	assert.Equal(t, 0, p.Selection().Len())

	require.True(t, p.BeginFetch())
	p.FetchDone([]backend.Email{}, nil)
	assert.Equal(t, 0, p.Len())
	assert.False(t, p.CanDelete())
}

func TestListPage_DeleteFailureKeepsState(t *testing.T) {
	p := NewListPage()
	p.BeginFetch()
	p.FetchDone(sampleEmails("1", "2"), nil)
	p.Toggle("2")

	ids, ok := p.BeginDelete()
	require.True(t, ok)
	refetch := p.DeleteDone(errors.New("500"))

	assert.False(t, refetch)
	assert.False(t, p.Deleting())
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, ids, p.Selection().IDs())
	assert.True(t, p.CanDelete())
}

func TestListPage_RefetchPrunesSelection(t *testing.T) {
	p := NewListPage()
	p.BeginFetch()
	p.FetchDone(sampleEmails("1", "2", "3"), nil)
	p.Toggle("1")
	p.Toggle("3")

	p.BeginFetch()
	p.FetchDone(sampleEmails("2", "3"), nil)
	assert.Equal(t, []backend.ID{"3"}, p.Selection().IDs())
}

func TestListPage_Email(t *testing.T) {
	p := NewListPage()
	p.BeginFetch()
	p.FetchDone(sampleEmails("1"), nil)

	e, ok := p.Email(0)
	assert.True(t, ok)
	assert.Equal(t, backend.ID("1"), e.ID)
	_, ok = p.Email(1)
	assert.False(t, ok)
	_, ok = p.Email(-1)
	assert.False(t, ok)
}
