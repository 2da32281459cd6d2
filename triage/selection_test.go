package triage

import (
	"testing"

	"github.com/bassamadnan/triage/backend"
	"github.com/stretchr/testify/assert"
)

func TestSelection_ToggleTwiceRestoresMembership(t *testing.T) {
	s := NewSelection()
	s.Toggle("a")

	for _, id := range []backend.ID{"a", "b"} {
		before := s.Has(id)
		s.Toggle(id)
		assert.NotEqual(t, before, s.Has(id))
		s.Toggle(id)
		assert.Equal(t, before, s.Has(id), "membership of %s after two toggles", id)
	}
	assert.Equal(t, []backend.ID{"a"}, s.IDs())
}

func TestSelection_OrderIndependent(t *testing.T) {
	s1 := NewSelection()
	s1.Toggle("1")
	s1.Toggle("2")
	s1.Toggle("3")
	s1.Toggle("2")

	s2 := NewSelection()
	s2.Toggle("3")
	s2.Toggle("2")
	s2.Toggle("2")
	s2.Toggle("1")

	assert.ElementsMatch(t, s1.IDs(), s2.IDs())
	assert.Equal(t, []backend.ID{"1", "3"}, s1.IDs())
}

func TestSelection_Retain(t *testing.T) {
	s := NewSelection()
	s.Toggle("1")
	s.Toggle("2")
	s.Toggle("3")

	s.Retain([]backend.Email{{ID: "3"}, {ID: "1"}})
	assert.Equal(t, []backend.ID{"1", "3"}, s.IDs())
	assert.False(t, s.Has("2"))
	assert.Equal(t, 2, s.Len())
}

func TestSelection_IDsIsCopy(t *testing.T) {
	s := NewSelection()
	s.Toggle("1")
	ids := s.IDs()
	ids[0] = "x"
	assert.True(t, s.Has("1"))
	assert.Equal(t, []backend.ID{"1"}, s.IDs())
}
