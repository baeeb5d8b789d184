package cv

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/recruitment/internal"
	userDatamodel "github.com/frahmantamala/recruitment/internal/core/datamodel/user"
)

// MaxUploadSize bounds an uploaded CV.
const MaxUploadSize = 5 << 20

type RepositoryAPI interface {
	Get(ctx context.Context, userID int64) (*userDatamodel.CV, error)
	// Save replaces the user's CV row.
	Save(ctx context.Context, row *userDatamodel.CV) error
}

type CVResponse struct {
	Filename   string   `json:"filename"`
	Summary    string   `json:"summary"`
	Skills     []string `json:"skills"`
	Info       KeyInfo  `json:"info"`
	UploadedAt string   `json:"uploaded_at"`
}

type Service struct {
	repo    RepositoryAPI
	objects ObjectStore
	logger  *slog.Logger
	now     func() time.Time
	extract func([]byte) (string, error)
}

// NewService stores files in objects, or in the database when objects is nil.
func NewService(repo RepositoryAPI, objects ObjectStore, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		objects: objects,
		logger:  logger,
		now:     time.Now,
		extract: ExtractText,
	}
}

func (s *Service) Upload(ctx context.Context, userID int64, filename string, data []byte) (*CVResponse, error) {
	if len(data) > MaxUploadSize {
		return nil, internal.NewValidationError("CV must not exceed 5 MiB", internal.ErrCodeInvalidCV)
	}
	if !IsPDF(data) {
		return nil, internal.NewValidationError("CV must be a PDF file", internal.ErrCodeInvalidCV)
	}

	text, err := s.extract(data)
	if err != nil {
		s.logger.Warn("pdf text extraction failed", "user_id", userID, "error", err)
		return nil, internal.NewValidationError("Could not extract text from your CV", internal.ErrCodeInvalidCV)
	}

	info := ExtractKeyInfo(text)
	row := &userDatamodel.CV{
		UserID:     userID,
		Filename:   filename,
		Skills:     ResolveSkills(info, text),
		Summary:    Summarize(text, summarySentences),
		UploadedAt: s.now().UTC(),
	}
	rawInfo, err := json.Marshal(info)
	if err != nil {
		return nil, internal.NewInternalError("failed to encode CV info", err)
	}
	row.Info = string(rawInfo)

	if s.objects != nil {
		row.ObjectKey = ObjectKey(userID)
		if err := s.objects.Put(ctx, row.ObjectKey, data, pdfContentType); err != nil {
			return nil, internal.NewStoreUnavailableError(err)
		}
	} else {
		row.Blob = data
	}

	if err := s.repo.Save(ctx, row); err != nil {
		return nil, fmt.Errorf("save cv: %w", err)
	}

	s.logger.Info("cv uploaded", "user_id", userID, "bytes", len(data), "skills", len(row.Skills))
	return toResponse(row, info), nil
}

func (s *Service) Get(ctx context.Context, userID int64) (*CVResponse, error) {
	row, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}
	var info KeyInfo
	if row.Info != "" {
		if err := json.Unmarshal([]byte(row.Info), &info); err != nil {
			s.logger.Warn("stored cv info unreadable", "user_id", userID, "error", err)
		}
	}
	return toResponse(row, info), nil
}

// Download returns the stored file from wherever it lives.
func (s *Service) Download(ctx context.Context, userID int64) (string, []byte, error) {
	row, err := s.get(ctx, userID)
	if err != nil {
		return "", nil, err
	}
	if row.ObjectKey == "" {
		return row.Filename, row.Blob, nil
	}
	if s.objects == nil {
		return "", nil, internal.NewInternalError("cv stored in object storage but none is configured", nil)
	}
	data, err := s.objects.Get(ctx, row.ObjectKey)
	if err != nil {
		return "", nil, internal.NewStoreUnavailableError(err)
	}
	return row.Filename, data, nil
}

// Skills returns the skills stored with the user's CV.
func (s *Service) Skills(ctx context.Context, userID int64) ([]string, error) {
	row, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return row.Skills, nil
}

func (s *Service) get(ctx context.Context, userID int64) (*userDatamodel.CV, error) {
	row, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, internal.NewStoreUnavailableError(err)
	}
	if row == nil {
		return nil, internal.ErrCVNotFound
	}
	return row, nil
}

func toResponse(row *userDatamodel.CV, info KeyInfo) *CVResponse {
	skills := row.Skills
	if skills == nil {
		skills = []string{}
	}
	return &CVResponse{
		Filename:   row.Filename,
		Summary:    row.Summary,
		Skills:     skills,
		Info:       info,
		UploadedAt: row.UploadedAt.UTC().Format(time.RFC3339),
	}
}
