package cv

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/frahmantamala/recruitment/internal"
	"github.com/frahmantamala/recruitment/internal/transport"
)

const formField = "cv"

type ServiceAPI interface {
	Upload(ctx context.Context, userID int64, filename string, data []byte) (*CVResponse, error)
	Get(ctx context.Context, userID int64) (*CVResponse, error)
	Download(ctx context.Context, userID int64) (string, []byte, error)
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

// UploadCV handles POST /jobseeker/cv as multipart form data with the file
// under "cv".
func (h *Handler) UploadCV(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	// room for the multipart framing around the file
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize+64<<10)
	file, header, err := r.FormFile(formField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.HandleServiceError(w, internal.NewValidationError("CV must not exceed 5 MiB", internal.ErrCodeInvalidCV))
			return
		}
		h.HandleServiceError(w, internal.NewValidationFieldError(formField, "cv file is required", internal.ErrCodeInvalidCV))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxUploadSize+1))
	if err != nil {
		h.HandleServiceError(w, internal.NewValidationError("failed to read cv", internal.ErrCodeInvalidCV))
		return
	}

	resp, err := h.Service.Upload(r.Context(), p.UserID, header.Filename, data)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handler) GetCV(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	resp, err := h.Service.Get(r.Context(), p.UserID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) DownloadCV(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	filename, data, err := h.Service.Download(r.Context(), p.UserID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", pdfContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.Logger.Error("failed to write cv", "error", err)
	}
}
