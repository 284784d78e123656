package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversation_DeriveTitle(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		expected string
	}{
		{
			name:     "short message kept verbatim",
			message:  "merit scholarship",
			expected: "merit scholarship",
		},
		{
			name:     "long message truncated with ellipsis",
			message:  strings.Repeat("a", 80),
			expected: strings.Repeat("a", 50) + "...",
		},
		{
			name:     "exactly fifty characters not truncated",
			message:  strings.Repeat("b", 50),
			expected: strings.Repeat("b", 50),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv := &Conversation{ID: "c1"}
			conv.Append(SpeakerUser, tt.message)
			conv.Append(SpeakerAssistant, "reply")
			conv.DeriveTitle()
			assert.Equal(t, tt.expected, conv.Title)
		})
	}
}

func TestConversation_DeriveTitle_onlyOnce(t *testing.T) {
	conv := &Conversation{ID: "c1"}
	conv.Append(SpeakerUser, "first question")
	conv.Append(SpeakerAssistant, "reply")
	conv.DeriveTitle()
	require.Equal(t, "first question", conv.Title)

	// Later turns never change the title, and repeated derivation is a no-op.
	conv.Append(SpeakerUser, "second question")
	conv.Append(SpeakerAssistant, "reply")
	conv.DeriveTitle()
	assert.Equal(t, "first question", conv.Title)
	conv.DeriveTitle()
	assert.Equal(t, "first question", conv.Title)
}

func TestConversation_DeriveTitle_notBeforeFirstExchange(t *testing.T) {
	conv := &Conversation{ID: "c1"}
	conv.Append(SpeakerUser, "question")
	conv.DeriveTitle()
	assert.Empty(t, conv.Title)
}

func TestConversation_Reset(t *testing.T) {
	conv := &Conversation{ID: "c1"}
	conv.Append(SpeakerUser, "question about a grant")
	conv.Append(SpeakerAssistant, "reply")
	conv.DeriveTitle()

	conv.Reset()

	assert.Empty(t, conv.Turns)
	assert.Equal(t, "c1", conv.ID)
	assert.Equal(t, "question about a grant", conv.Title)

	// After a reset the next exchange does not recompute the title.
	conv.Append(SpeakerUser, "different question about a stipend")
	conv.Append(SpeakerAssistant, "reply")
	conv.DeriveTitle()
	assert.Equal(t, "question about a grant", conv.Title)
}

func TestSession_Conversation_autoCreate(t *testing.T) {
	sess := NewSession(StageAuthenticated, "a@x.com")

	conv := sess.Conversation("abc")
	assert.NotNil(t, conv)
	assert.Equal(t, "abc", conv.ID)
	assert.Empty(t, conv.Turns)
	assert.Equal(t, "abc", sess.CurrentConversationID)

	// Second reference returns the same conversation.
	conv.Append(SpeakerUser, "hi")
	assert.Len(t, sess.Conversation("abc").Turns, 1)
}

func TestSession_Conversation_emptyIDFallsBack(t *testing.T) {
	sess := NewSession(StageAuthenticated, "a@x.com")

	first := sess.Conversation("")
	assert.Equal(t, "default", first.ID)

	sess.Conversation("other")
	assert.Equal(t, "other", sess.Conversation("").ID)
}

func TestSession_NewConversation(t *testing.T) {
	sess := NewSession(StageAuthenticated, "a@x.com")
	seen := map[string]bool{}

	for i := 0; i < 5; i++ {
		conv := sess.NewConversation()
		assert.NotEmpty(t, conv.ID)
		assert.Empty(t, conv.Turns)
		assert.False(t, seen[conv.ID], "conversation ids must be fresh")
		seen[conv.ID] = true
		assert.Equal(t, conv.ID, sess.CurrentConversationID)
	}
}

func TestSession_ListConversations_newestFirst(t *testing.T) {
	sess := NewSession(StageAuthenticated, "a@x.com")
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "mid", "new"} {
		conv := sess.Conversation(id)
		conv.CreatedAt = base.Add(time.Duration(i) * time.Minute)
	}

	list := sess.ListConversations()
	require.Len(t, list, 3)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "mid", list[1].ID)
	assert.Equal(t, "old", list[2].ID)
}

func TestSession_evictsOldestBeyondCap(t *testing.T) {
	sess := NewSession(StageAuthenticated, "a@x.com")
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i <= MaxConversations; i++ {
		conv := sess.Conversation(string(rune('a'+i%26)) + string(rune('0'+i/26)))
		conv.CreatedAt = base.Add(time.Duration(i) * time.Minute)
	}

	assert.Len(t, sess.Conversations, MaxConversations)
	_, oldestPresent := sess.Conversations["a0"]
	assert.False(t, oldestPresent, "oldest conversation should have been evicted")
}
