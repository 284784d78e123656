package model

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Stage is the authentication progression of a browser session. The stages
// form a linear state machine: pending_otp → verified → authenticated. A
// request with no session at all is anonymous and has no Session value.
type Stage string

const (
	// StagePendingOTP means the email was captured and a code was issued.
	StagePendingOTP Stage = "pending_otp"
	// StageVerified means the email is proven but the profile is missing.
	StageVerified Stage = "verified"
	// StageAuthenticated means the student is fully logged in.
	StageAuthenticated Stage = "authenticated"
)

// MaxConversations caps how many conversations one session retains; creating
// more evicts the oldest so the session payload stays bounded.
const MaxConversations = 20

// TitleMaxLen is the number of characters of the first user message kept as
// a conversation title.
const TitleMaxLen = 50

// Speaker labels for conversation turns.
const (
	SpeakerUser      = "user"
	SpeakerAssistant = "bot"
)

// Turn is one message in a conversation.
type Turn struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// Conversation is an ordered, titled sequence of turns scoped to a session.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Turns     []Turn    `json:"turns"`
	CreatedAt time.Time `json:"created_at"`
}

// Append adds a turn, preserving insertion order.
func (c *Conversation) Append(speaker, text string) {
	c.Turns = append(c.Turns, Turn{Speaker: speaker, Text: text})
}

// Reset clears the history in place, keeping the id and any derived title.
func (c *Conversation) Reset() {
	c.Turns = nil
}

// DeriveTitle sets the title from the first user message once the first
// exchange is complete (exactly one user turn and one reply). It is a no-op
// at any other time, so the title is computed at most once and never changes
// on later turns.
func (c *Conversation) DeriveTitle() {
	if c.Title != "" || len(c.Turns) != 2 {
		return
	}
	first := []rune(c.Turns[0].Text)
	if len(first) > TitleMaxLen {
		c.Title = string(first[:TitleMaxLen]) + "..."
		return
	}
	c.Title = string(first)
}

// Session is the server-side state behind one browser session cookie. It is
// stored as JSON in Redis, keyed by ID, and destroyed on logout or expiry.
type Session struct {
	ID    string `json:"id"`
	Stage Stage  `json:"stage"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`

	// PendingPasswordHash holds the verified candidate credential between
	// code verification and profile submission. Cleared once the student
	// record is created.
	PendingPasswordHash string `json:"pending_password_hash,omitempty"`

	CurrentConversationID string                   `json:"current_conversation_id,omitempty"`
	Conversations         map[string]*Conversation `json:"conversations,omitempty"`
}

// NewSession creates a session at the given stage for the given email.
func NewSession(stage Stage, email string) *Session {
	return &Session{
		ID:    uuid.New().String(),
		Stage: stage,
		Email: email,
	}
}

// Conversation returns the conversation for id, creating an empty one on
// first reference. An empty id falls back to the session's current
// conversation, or "default" if none is set yet.
func (s *Session) Conversation(id string) *Conversation {
	if id == "" {
		id = s.CurrentConversationID
	}
	if id == "" {
		id = "default"
	}
	if s.Conversations == nil {
		s.Conversations = make(map[string]*Conversation)
	}
	conv, ok := s.Conversations[id]
	if !ok {
		conv = &Conversation{ID: id, CreatedAt: time.Now()}
		s.Conversations[id] = conv
		s.evictOldest()
	}
	s.CurrentConversationID = id
	return conv
}

// NewConversation creates a fresh conversation under a previously unused id
// and makes it current.
func (s *Session) NewConversation() *Conversation {
	return s.Conversation(uuid.New().String())
}

// ListConversations returns conversations newest-first for display.
func (s *Session) ListConversations() []*Conversation {
	list := make([]*Conversation, 0, len(s.Conversations))
	for _, conv := range s.Conversations {
		list = append(list, conv)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list
}

func (s *Session) evictOldest() {
	for len(s.Conversations) > MaxConversations {
		oldestID := ""
		var oldest time.Time
		for id, conv := range s.Conversations {
			if oldestID == "" || conv.CreatedAt.Before(oldest) {
				oldestID = id
				oldest = conv.CreatedAt
			}
		}
		delete(s.Conversations, oldestID)
	}
}
