package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompletionSet_AddIsIdempotent(t *testing.T) {
	s := NewCompletionSet()
	assert.True(t, s.Add("a"))
	assert.False(t, s.Add("a"))
	assert.Equal(t, 1, s.Len())
}

func TestCompletionSet_ZeroValueUsable(t *testing.T) {
	var s CompletionSet
	assert.False(t, s.Has("a"))
	assert.False(t, s.Remove("a"))
	assert.True(t, s.Add("a"))
	assert.True(t, s.Has("a"))
}

func TestCompletionSet_DropsEmptyAndDuplicates(t *testing.T) {
	s := NewCompletionSet("b", "", "a", "b")
	assert.Equal(t, []string{"a", "b"}, s.IDs())
}

func TestCompletionSet_Remove(t *testing.T) {
	s := NewCompletionSet("a", "b")
	assert.True(t, s.Remove("a"))
	assert.False(t, s.Remove("a"))
	assert.Equal(t, []string{"b"}, s.IDs())
}

func TestCompletionSet_IDsEmptyNotNil(t *testing.T) {
	assert.NotNil(t, NewCompletionSet().IDs())
	assert.Empty(t, NewCompletionSet().IDs())
}
