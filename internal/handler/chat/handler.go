package chat

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kulim/agrimarket/backend/internal/model/chat"
	chatService "github.com/kulim/agrimarket/backend/internal/service/chat"
	"github.com/kulim/agrimarket/backend/pkg/utils"
)

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc *chatService.Service
}

// New 创建聊天处理器
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Route("/session/{sessionID}", func(sr chi.Router) {
		sr.Get("/", h.handleGetState)
		sr.Delete("/", h.handleCloseSession)
		sr.Post("/messages", h.handleSubmit)
		sr.Post("/suggestion", h.handleSelectSuggestion)
		sr.Put("/input", h.handleSetInput)
	})
}

type sessionResponse struct {
	Session chat.Session      `json:"session"`
	State   chatService.State `json:"state"`
}

type submitResponse struct {
	Accepted bool              `json:"accepted"`
	State    chatService.State `json:"state"`
}

type textPayload struct {
	Text string `json:"text"`
}

// handleCreateSession 创建会话
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatSvc.CreateSession(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	state, err := h.chatSvc.Snapshot(r.Context(), session.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, sessionResponse{Session: session, State: state})
}

// handleGetState 返回会话快照
func (h *Handler) handleGetState(w http.ResponseWriter, r *http.Request) {
	state, err := h.chatSvc.Snapshot(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, state)
}

// handleCloseSession 关闭会话并取消待发送的回复
func (h *Handler) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.chatSvc.CloseSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSubmit 提交用户消息，空白输入直接忽略
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var payload textPayload
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	accepted, state, err := h.chatSvc.Submit(r.Context(), chi.URLParam(r, "sessionID"), payload.Text)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	status := http.StatusAccepted
	if !accepted {
		status = http.StatusOK
	}
	utils.RespondJSON(w, status, submitResponse{Accepted: accepted, State: state})
}

// handleSelectSuggestion 用建议填充输入框
func (h *Handler) handleSelectSuggestion(w http.ResponseWriter, r *http.Request) {
	var payload textPayload
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := h.chatSvc.SelectSuggestion(r.Context(), chi.URLParam(r, "sessionID"), payload.Text)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, state)
}

// handleSetInput 更新待发送的输入
func (h *Handler) handleSetInput(w http.ResponseWriter, r *http.Request) {
	var payload textPayload
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := h.chatSvc.SetInput(r.Context(), chi.URLParam(r, "sessionID"), payload.Text)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, state)
}

func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chatService.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, chatService.ErrConversationClosed):
		utils.RespondError(w, http.StatusGone, err.Error())
	default:
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
	}
}
