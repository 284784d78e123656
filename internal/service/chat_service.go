package service

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"scholarchat/internal/assistant"
	"scholarchat/internal/model"
	"scholarchat/internal/repository"
	"scholarchat/internal/session"
)

// ConversationSummary is one sidebar entry.
type ConversationSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ChatState is the rendered chat view after any chat operation.
type ChatState struct {
	CurrentChatID string                `json:"current_chat_id"`
	Title         string                `json:"title,omitempty"`
	History       []model.Turn          `json:"history"`
	Chats         []ConversationSummary `json:"chats"`
	Reply         string                `json:"reply,omitempty"`
}

// ChatService owns conversation bookkeeping for authenticated sessions and
// forwards messages to the assistant gateway.
type ChatService interface {
	State(ctx context.Context, sess *model.Session, chatID string) (*ChatState, error)
	NewConversation(ctx context.Context, sess *model.Session) (*ChatState, error)
	ResetConversation(ctx context.Context, sess *model.Session, chatID string) (*ChatState, error)
	SendMessage(ctx context.Context, sess *model.Session, chatID, message string) (*ChatState, error)
}

type chatService struct {
	students repository.StudentRepository
	sessions session.Store
	gateway  *assistant.Gateway
}

// NewChatService creates a chat service.
func NewChatService(students repository.StudentRepository, sessions session.Store, gateway *assistant.Gateway) ChatService {
	return &chatService{
		students: students,
		sessions: sessions,
		gateway:  gateway,
	}
}

// State resolves the requested conversation, creating it empty on first
// reference, and persists the session so the current-conversation marker
// sticks.
func (s *chatService) State(ctx context.Context, sess *model.Session, chatID string) (*ChatState, error) {
	conv := sess.Conversation(chatID)
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return s.render(sess, conv), nil
}

// NewConversation starts a fresh conversation under an unused id.
func (s *chatService) NewConversation(ctx context.Context, sess *model.Session) (*ChatState, error) {
	conv := sess.NewConversation()
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return s.render(sess, conv), nil
}

// ResetConversation clears the history in place; id and title survive.
func (s *chatService) ResetConversation(ctx context.Context, sess *model.Session, chatID string) (*ChatState, error) {
	conv := sess.Conversation(chatID)
	conv.Reset()
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return s.render(sess, conv), nil
}

// SendMessage appends the user turn, asks the gateway for a reply, appends
// it, and derives the title after the first exchange.
func (s *chatService) SendMessage(ctx context.Context, sess *model.Session, chatID, message string) (*ChatState, error) {
	conv := sess.Conversation(chatID)
	// The gateway receives the history as it stood before this turn; the
	// current message goes in separately so it is not forwarded twice.
	history := conv.Turns
	conv.Append(model.SpeakerUser, message)

	// The gateway gates off-topic messages itself; checking here as well
	// skips the profile lookup, so the refusal does not depend on the
	// database being reachable.
	var student *model.Student
	if assistant.OnTopic(message) {
		student = s.profile(ctx, sess.Email)
	}
	reply := s.gateway.Respond(ctx, student, history, message)
	conv.Append(model.SpeakerAssistant, reply)
	conv.DeriveTitle()

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}

	state := s.render(sess, conv)
	state.Reply = reply
	return state, nil
}

// profile fetches the student's stored profile. A lookup failure degrades to
// a profile-less prompt instead of failing the chat turn.
func (s *chatService) profile(ctx context.Context, email string) *model.Student {
	student, err := s.students.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("chat: load profile: %v", err)
		}
		return nil
	}
	return student
}

func (s *chatService) render(sess *model.Session, conv *model.Conversation) *ChatState {
	list := sess.ListConversations()
	chats := make([]ConversationSummary, 0, len(list))
	for _, c := range list {
		if c.Title == "" {
			continue
		}
		chats = append(chats, ConversationSummary{ID: c.ID, Title: c.Title})
	}
	return &ChatState{
		CurrentChatID: conv.ID,
		Title:         conv.Title,
		History:       conv.Turns,
		Chats:         chats,
	}
}
