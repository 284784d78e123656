package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"scholarchat/internal/model"
	"scholarchat/internal/service"
)

// ChatHandler handles the chat interface.
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ChatRequest is one chat form submission. Exactly one of the control flags
// or a message is expected.
type ChatRequest struct {
	Message   string `json:"message" form:"message"`
	NewChat   string `json:"new_chat" form:"new_chat"`
	ResetChat string `json:"reset_chat" form:"reset_chat"`
}

// State godoc
// @Summary Render the current chat state
// @Tags chat
// @Produce json
// @Param chat_id query string false "Conversation id"
// @Success 200 {object} service.ChatState
// @Failure 401 {object} errors.ErrorResponse
// @Router /chat [get]
func (h *ChatHandler) State(c echo.Context) error {
	sess, err := requireStage(c, model.StageAuthenticated)
	if err != nil {
		return err
	}

	state, err := h.chatService.State(c.Request().Context(), sess, c.QueryParam("chat_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, state)
}

// Send godoc
// @Summary Send a message or manage conversations
// @Tags chat
// @Accept json
// @Produce json
// @Param chat_id query string false "Conversation id"
// @Param request body ChatRequest true "Message or control flags"
// @Success 200 {object} service.ChatState
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /chat [post]
func (h *ChatHandler) Send(c echo.Context) error {
	sess, err := requireStage(c, model.StageAuthenticated)
	if err != nil {
		return err
	}

	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	chatID := c.QueryParam("chat_id")

	var state *service.ChatState
	switch {
	case req.NewChat != "":
		state, err = h.chatService.NewConversation(ctx, sess)
	case req.ResetChat != "":
		state, err = h.chatService.ResetConversation(ctx, sess, chatID)
	case req.Message != "":
		state, err = h.chatService.SendMessage(ctx, sess, chatID, req.Message)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "message required")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, state)
}
