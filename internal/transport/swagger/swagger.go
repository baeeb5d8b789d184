package swagger

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/getkin/kin-openapi/openapi3"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SpecURL is where the router serves the OpenAPI document.
const SpecURL = "/openapi.yml"

// Spec is a validated OpenAPI document kept in memory.
type Spec struct {
	raw []byte
	doc *openapi3.T
}

// LoadSpec reads and validates the document at path.
func LoadSpec(ctx context.Context, path string) (*Spec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read openapi spec: %w", err)
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("parse openapi spec: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi spec: %w", err)
	}
	return &Spec{raw: raw, doc: doc}, nil
}

func (s *Spec) Title() string {
	if s.doc.Info == nil {
		return ""
	}
	return s.doc.Info.Title
}

// Operations counts the operations the document declares.
func (s *Spec) Operations() int {
	n := 0
	for _, item := range s.doc.Paths.Map() {
		n += len(item.Operations())
	}
	return n
}

// Declares reports whether the document has an operation for method on
// path. Path parameters match by position, not by name.
func (s *Spec) Declares(method, path string) bool {
	item := s.doc.Paths.Find(path)
	return item != nil && item.GetOperation(method) != nil
}

// ServeHTTP serves the document as YAML.
func (s *Spec) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(s.raw)
}

// Handler serves the Swagger UI pointed at SpecURL.
func Handler() http.Handler {
	return httpSwagger.Handler(httpSwagger.URL(SpecURL))
}
