package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evallife/llm-playground/internal/types"
)

func TestStoreAppendKeepsOrder(t *testing.T) {
	s := New()
	require.NoError(t, s.Append(types.Message{Role: types.RoleUser, Content: "one"}))
	require.NoError(t, s.Append(types.Message{Role: types.RoleAssistant, Content: "two"}))
	require.NoError(t, s.Append(types.Message{Role: types.RoleUser, Content: "three"}))

	got := s.All()
	require.Len(t, got, 3)
	assert.Equal(t, "one", got[0].Content)
	assert.Equal(t, "two", got[1].Content)
	assert.Equal(t, "three", got[2].Content)
	assert.Equal(t, 3, s.Len())
}

func TestStoreRejectsSystemMessage(t *testing.T) {
	s := New()
	err := s.Append(types.Message{Role: types.RoleSystem, Content: "be nice"})
	assert.ErrorIs(t, err, ErrSystemMessage)
	assert.Empty(t, s.All())
}

func TestStoreClear(t *testing.T) {
	s := New()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Append(types.Message{Role: types.RoleUser, Content: "q"}))
	}
	s.Clear()
	assert.Empty(t, s.All())
	assert.Equal(t, 0, s.Len())

	require.NoError(t, s.Append(types.Message{Role: types.RoleUser, Content: "again"}))
	assert.Equal(t, 1, s.Len())
}

func TestStoreAllReturnsCopy(t *testing.T) {
	s := New()
	require.NoError(t, s.Append(types.Message{Role: types.RoleUser, Content: "original"}))

	got := s.All()
	got[0].Content = "mutated"

	assert.Equal(t, "original", s.All()[0].Content)
}

func TestNewStoreAllIsEmptyNotNil(t *testing.T) {
	got := New().All()
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
