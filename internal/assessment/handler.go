package assessment

import (
	"context"
	"net/http"

	"github.com/frahmantamala/recruitment/internal/transport"
)

type ServiceAPI interface {
	Generate(ctx context.Context, userID int64, dto GenerateDTO) (*GenerateResponse, error)
	EvaluateAnswer(ctx context.Context, dto AnswerDTO) (*AnswerResult, error)
	EvaluateAssessment(ctx context.Context, dto BatchAnswerDTO) (*AssessmentResult, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

func (h *Handler) GenerateAssessment(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	var dto GenerateDTO
	if r.ContentLength != 0 && !h.DecodeJSON(w, r, &dto) {
		return
	}

	resp, err := h.Service.Generate(r.Context(), p.UserID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) EvaluateAnswer(w http.ResponseWriter, r *http.Request) {
	var dto AnswerDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	resp, err := h.Service.EvaluateAnswer(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) EvaluateAssessment(w http.ResponseWriter, r *http.Request) {
	var dto BatchAnswerDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	resp, err := h.Service.EvaluateAssessment(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}
