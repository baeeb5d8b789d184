package job

import (
	"context"
	"net/http"

	"github.com/frahmantamala/recruitment/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context) ([]JobResponse, error)
	Get(ctx context.Context, id int64) (*Job, error)
	Post(ctx context.Context, postedBy int64, dto PostJobDTO) (*JobResponse, error)
	Match(ctx context.Context, userID int64, filter MatchFilterDTO) ([]MatchResponse, error)
	Candidates(ctx context.Context, jobID int64) ([]CandidateResponse, error)
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

// ListJobs handles GET /jobs. It is public and omits descriptions.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.Service.List(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, JobsResponse{Jobs: jobs})
}

func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathInt64(w, r, "id")
	if !ok {
		return
	}

	j, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, j.ToResponse(true))
}

func (h *Handler) PostJob(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	var dto PostJobDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	j, err := h.Service.Post(r.Context(), p.UserID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, j)
}

// MatchJobs handles POST /jobseeker/matches. An empty body applies no filter.
func (h *Handler) MatchJobs(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	var filter MatchFilterDTO
	if r.ContentLength != 0 && !h.DecodeJSON(w, r, &filter) {
		return
	}

	matches, err := h.Service.Match(r.Context(), p.UserID, filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MatchesResponse{Matches: matches})
}

func (h *Handler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathInt64(w, r, "id")
	if !ok {
		return
	}

	candidates, err := h.Service.Candidates(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, CandidatesResponse{JobID: id, Candidates: candidates})
}
