// Package conversation holds the transcript of the current chat session.
package conversation

import (
	"errors"

	"github.com/evallife/llm-playground/internal/types"
)

// ErrSystemMessage is returned when a system message is appended. The system
// prompt is injected at request time and never stored.
var ErrSystemMessage = errors.New("system messages are not stored in the conversation")

// Store is an append-only transcript. The only way to shrink it is Clear.
type Store struct {
	messages []types.Message
}

func New() *Store {
	return &Store{messages: []types.Message{}}
}

func (s *Store) Append(msg types.Message) error {
	if msg.Role == types.RoleSystem {
		return ErrSystemMessage
	}
	s.messages = append(s.messages, msg)
	return nil
}

func (s *Store) Clear() {
	s.messages = []types.Message{}
}

// All returns the messages in insertion order. The slice is a copy.
func (s *Store) All() []types.Message {
	out := make([]types.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Store) Len() int {
	return len(s.messages)
}
