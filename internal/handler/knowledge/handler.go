package knowledge

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kulim/agrimarket/backend/internal/analysis/intent"
	"github.com/kulim/agrimarket/backend/internal/model/knowledge"
	"github.com/kulim/agrimarket/backend/pkg/utils"
)

// Handler 知识库的HTTP处理器
type Handler struct {
	kb          *knowledge.Base
	classifier  *intent.Classifier
	suggestions []string
}

// New 创建知识库处理器
func New(kb *knowledge.Base, classifier *intent.Classifier, suggestions []string) *Handler {
	return &Handler{
		kb:          kb,
		classifier:  classifier,
		suggestions: append([]string(nil), suggestions...),
	}
}

// RegisterRoutes 注册知识库相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/topics", h.handleListTopics)
	r.Get("/suggestions", h.handleListSuggestions)
	r.Get("/classify", h.handleClassify)
}

type topicSummary struct {
	Topic   string         `json:"topic"`
	Kind    knowledge.Kind `json:"kind"`
	Aliases []string       `json:"aliases,omitempty"`
	Aspects []string       `json:"aspects,omitempty"`
}

// handleListTopics 列出所有主题
func (h *Handler) handleListTopics(w http.ResponseWriter, r *http.Request) {
	entries := h.kb.Entries()
	topics := make([]topicSummary, 0, len(entries))
	for _, e := range entries {
		summary := topicSummary{Topic: e.Topic, Kind: e.Kind, Aliases: e.Aliases}
		for _, a := range e.Aspects {
			summary.Aspects = append(summary.Aspects, a.Name)
		}
		topics = append(topics, summary)
	}
	utils.RespondJSON(w, http.StatusOK, topics)
}

// handleListSuggestions 列出默认的快捷问题
func (h *Handler) handleListSuggestions(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.suggestions)
}

// handleClassify 返回分类结果，不产生对话
func (h *Handler) handleClassify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		utils.RespondError(w, http.StatusBadRequest, "q query parameter is required")
		return
	}
	utils.RespondJSON(w, http.StatusOK, h.classifier.Classify(q))
}
