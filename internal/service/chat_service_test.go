package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
	"gorm.io/gorm"

	"scholarchat/internal/assistant"
	apperrors "scholarchat/internal/errors"
	"scholarchat/internal/model"
)

// captureModel records every content list forwarded to the language model.
type captureModel struct {
	calls [][]*genai.Content
}

func (m *captureModel) Generate(_ context.Context, _ string, contents []*genai.Content) (string, error) {
	m.calls = append(m.calls, contents)
	return "model reply", nil
}

// memorySessions is an in-memory session.Store.
type memorySessions struct {
	data map[string]*model.Session
}

func newMemorySessions() *memorySessions {
	return &memorySessions{data: make(map[string]*model.Session)}
}

func (m *memorySessions) Save(_ context.Context, sess *model.Session) error {
	m.data[sess.ID] = sess
	return nil
}

func (m *memorySessions) Get(_ context.Context, id string) (*model.Session, error) {
	sess, ok := m.data[id]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	return sess, nil
}

func (m *memorySessions) Delete(_ context.Context, id string) error {
	delete(m.data, id)
	return nil
}

// chatFixture wires a chat service with no model configured, so on-topic
// messages get the fixed unavailable reply and off-topic ones the refusal.
func chatFixture(t *testing.T) (ChatService, *model.Session, *memorySessions, *MockStudentRepository) {
	t.Helper()
	mockRepo := new(MockStudentRepository)
	sessions := newMemorySessions()
	gateway := assistant.New(assistant.ModeProfile, nil, nil, time.Second)

	sess := model.NewSession(model.StageAuthenticated, "a@x.com")
	require.NoError(t, sessions.Save(context.Background(), sess))

	return NewChatService(mockRepo, sessions, gateway), sess, sessions, mockRepo
}

func TestChatService_State_autoCreatesConversation(t *testing.T) {
	svc, sess, sessions, _ := chatFixture(t)

	state, err := svc.State(context.Background(), sess, "c1")
	require.NoError(t, err)

	assert.Equal(t, "c1", state.CurrentChatID)
	assert.Empty(t, state.History)
	// The current-conversation marker is persisted.
	assert.Equal(t, "c1", sessions.data[sess.ID].CurrentConversationID)
}

func TestChatService_SendMessage_offTopic(t *testing.T) {
	svc, sess, _, _ := chatFixture(t)

	state, err := svc.SendMessage(context.Background(), sess, "c1", "what is the capital of France")
	require.NoError(t, err)

	assert.Equal(t, assistant.RefusalMessage, state.Reply)
	require.Len(t, state.History, 2)
	assert.Equal(t, model.SpeakerUser, state.History[0].Speaker)
	assert.Equal(t, model.SpeakerAssistant, state.History[1].Speaker)
}

func TestChatService_SendMessage_derivesTitleOnce(t *testing.T) {
	svc, sess, _, mockRepo := chatFixture(t)
	mockRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, gorm.ErrRecordNotFound)

	state, err := svc.SendMessage(context.Background(), sess, "c1", "merit scholarship for engineering")
	require.NoError(t, err)
	assert.Equal(t, "merit scholarship for engineering", state.Title)

	state, err = svc.SendMessage(context.Background(), sess, "c1", "another scholarship question")
	require.NoError(t, err)
	assert.Equal(t, "merit scholarship for engineering", state.Title)
	assert.Len(t, state.History, 4)
}

func TestChatService_SendMessage_profileLookupFailureStillAnswers(t *testing.T) {
	svc, sess, _, mockRepo := chatFixture(t)
	mockRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, gorm.ErrInvalidDB)

	state, err := svc.SendMessage(context.Background(), sess, "c1", "merit scholarship")
	require.NoError(t, err)
	assert.Equal(t, assistant.UnavailableMessage, state.Reply)
}

func TestChatService_SendMessage_forwardsMessageOnce(t *testing.T) {
	mockRepo := new(MockStudentRepository)
	mockRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, gorm.ErrRecordNotFound)
	sessions := newMemorySessions()
	fake := &captureModel{}
	svc := NewChatService(mockRepo, sessions, assistant.New(assistant.ModePlain, fake, nil, time.Second))

	sess := model.NewSession(model.StageAuthenticated, "a@x.com")
	require.NoError(t, sessions.Save(context.Background(), sess))

	_, err := svc.SendMessage(context.Background(), sess, "c1", "merit scholarship")
	require.NoError(t, err)

	// First turn: no prior history, the model sees exactly the message.
	require.Len(t, fake.calls, 1)
	require.Len(t, fake.calls[0], 1)

	_, err = svc.SendMessage(context.Background(), sess, "c1", "stipend amount for it")
	require.NoError(t, err)

	// Second turn: first message, first reply, and the new message.
	require.Len(t, fake.calls, 2)
	require.Len(t, fake.calls[1], 3)
	last := fake.calls[1][2]
	require.NotEmpty(t, last.Parts)
	assert.Equal(t, "stipend amount for it", last.Parts[0].Text)
}

func TestChatService_ResetConversation(t *testing.T) {
	svc, sess, _, mockRepo := chatFixture(t)
	mockRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.SendMessage(context.Background(), sess, "c1", "scholarship for nursing students")
	require.NoError(t, err)

	state, err := svc.ResetConversation(context.Background(), sess, "c1")
	require.NoError(t, err)

	assert.Equal(t, "c1", state.CurrentChatID)
	assert.Empty(t, state.History)
	assert.Equal(t, "scholarship for nursing students", state.Title)
}

func TestChatService_NewConversation(t *testing.T) {
	svc, sess, _, mockRepo := chatFixture(t)
	mockRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.SendMessage(context.Background(), sess, "c1", "scholarship for nursing students")
	require.NoError(t, err)

	state, err := svc.NewConversation(context.Background(), sess)
	require.NoError(t, err)

	assert.NotEqual(t, "c1", state.CurrentChatID)
	assert.NotEmpty(t, state.CurrentChatID)
	assert.Empty(t, state.History)
	// Titled earlier conversations stay in the sidebar, newest first.
	require.Len(t, state.Chats, 1)
	assert.Equal(t, "c1", state.Chats[0].ID)
}

func TestChatService_sidebarSkipsUntitled(t *testing.T) {
	svc, sess, _, mockRepo := chatFixture(t)
	mockRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.State(context.Background(), sess, "untitled")
	require.NoError(t, err)
	state, err := svc.SendMessage(context.Background(), sess, "titled", "scholarship for nursing")
	require.NoError(t, err)

	require.Len(t, state.Chats, 1)
	assert.Equal(t, "titled", state.Chats[0].ID)
}
