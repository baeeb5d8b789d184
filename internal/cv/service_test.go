package cv

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/frahmantamala/recruitment/internal"
	userDatamodel "github.com/frahmantamala/recruitment/internal/core/datamodel/user"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

type mockRepository struct {
	rows    map[int64]*userDatamodel.CV
	failGet error
}

func (m *mockRepository) Get(_ context.Context, userID int64) (*userDatamodel.CV, error) {
	if m.failGet != nil {
		return nil, m.failGet
	}
	return m.rows[userID], nil
}

func (m *mockRepository) Save(_ context.Context, row *userDatamodel.CV) error {
	m.rows[row.UserID] = row
	return nil
}

type memoryObjects struct {
	objects map[string][]byte
	fail    error
}

func (m *memoryObjects) Put(_ context.Context, key string, data []byte, _ string) error {
	if m.fail != nil {
		return m.fail
	}
	m.objects[key] = data
	return nil
}

func (m *memoryObjects) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return data, nil
}

var _ = ginkgo.Describe("CV Service", func() {
	var (
		ctx     context.Context
		repo    *mockRepository
		pdf     []byte
		newSvc  func(objects ObjectStore) *Service
		fixedAt = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		repo = &mockRepository{rows: make(map[int64]*userDatamodel.CV)}
		pdf = []byte("%PDF-1.4\nfake body")
		newSvc = func(objects ObjectStore) *Service {
			s := NewService(repo, objects, slog.New(slog.NewTextHandler(io.Discard, nil)))
			s.now = func() time.Time { return fixedAt }
			s.extract = func([]byte) (string, error) { return sampleCV, nil }
			return s
		}
	})

	ginkgo.Describe("Upload", func() {
		ginkgo.It("keeps the file in the row without object storage", func() {
			// Given no object store
			svc := newSvc(nil)

			// When a CV is uploaded
			resp, err := svc.Upload(ctx, 3, "cv.pdf", pdf)

			// Then the blob, skills and summary are stored together
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(resp.Skills).To(gomega.ContainElements("go", "postgresql", "docker", "kubernetes"))
			gomega.Expect(resp.Info.Email).To(gomega.Equal("jane.doe@example.com"))
			gomega.Expect(resp.UploadedAt).To(gomega.Equal("2025-03-01T10:00:00Z"))

			row := repo.rows[3]
			gomega.Expect(row.Blob).To(gomega.Equal(pdf))
			gomega.Expect(row.ObjectKey).To(gomega.BeEmpty())
			gomega.Expect(row.Summary).NotTo(gomega.BeEmpty())
		})

		ginkgo.It("writes the file to object storage under cvs/<id>.pdf", func() {
			objects := &memoryObjects{objects: make(map[string][]byte)}
			svc := newSvc(objects)

			_, err := svc.Upload(ctx, 3, "cv.pdf", pdf)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			gomega.Expect(objects.objects).To(gomega.HaveKeyWithValue("cvs/3.pdf", pdf))
			gomega.Expect(repo.rows[3].Blob).To(gomega.BeNil())
			gomega.Expect(repo.rows[3].ObjectKey).To(gomega.Equal("cvs/3.pdf"))

			name, data, err := svc.Download(ctx, 3)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(name).To(gomega.Equal("cv.pdf"))
			gomega.Expect(data).To(gomega.Equal(pdf))
		})

		ginkgo.It("reports an object store failure as unavailable", func() {
			svc := newSvc(&memoryObjects{objects: map[string][]byte{}, fail: errors.New("timeout")})

			_, err := svc.Upload(ctx, 3, "cv.pdf", pdf)
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeStoreUnavailable))
			gomega.Expect(repo.rows).To(gomega.BeEmpty())
		})

		ginkgo.It("rejects files that are not PDFs", func() {
			_, err := newSvc(nil).Upload(ctx, 3, "cv.docx", []byte("PK\x03\x04"))
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeInvalidCV))
		})

		ginkgo.It("rejects files over 5 MiB", func() {
			big := append([]byte("%PDF-"), make([]byte, MaxUploadSize)...)
			_, err := newSvc(nil).Upload(ctx, 3, "cv.pdf", big)
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeInvalidCV))
		})

		ginkgo.It("rejects a PDF without extractable text", func() {
			svc := newSvc(nil)
			svc.extract = func([]byte) (string, error) { return "", errors.New("malformed xref") }

			_, err := svc.Upload(ctx, 3, "cv.pdf", pdf)
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(repo.rows).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("Get and Skills", func() {
		ginkgo.It("returns the stored summary and info", func() {
			svc := newSvc(nil)
			_, err := svc.Upload(ctx, 3, "cv.pdf", pdf)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			resp, err := svc.Get(ctx, 3)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(resp.Info.Name).To(gomega.Equal("Jane Doe"))

			skills, err := svc.Skills(ctx, 3)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(skills).To(gomega.Equal(resp.Skills))
		})

		ginkgo.It("reports a missing CV", func() {
			_, err := newSvc(nil).Skills(ctx, 8)
			gomega.Expect(errors.Is(err, internal.ErrCVNotFound)).To(gomega.BeTrue())
		})

		ginkgo.It("reports a store outage", func() {
			repo.failGet = errors.New("connection refused")
			_, err := newSvc(nil).Get(ctx, 3)
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeStoreUnavailable))
		})
	})
})
