package swagger

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/getkin/kin-openapi/openapi3"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SpecPath is where the raw document is served and where the UI reads it from.
const SpecPath = "/openapi.yml"

func Handler() http.Handler {
	return httpSwagger.Handler(
		httpSwagger.URL(SpecPath),
	)
}

// Document is the OpenAPI description loaded and validated once at startup.
type Document struct {
	Spec *openapi3.T
	raw  []byte
}

// LoadSpec reads the document at path and validates it, so a broken openapi.yml
// fails the server at boot instead of in the browser.
func LoadSpec(ctx context.Context, path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read openapi document: %w", err)
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse openapi document: %w", err)
	}
	if err := spec.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return &Document{Spec: spec, raw: raw}, nil
}

// ServeHTTP serves the raw YAML.
func (d *Document) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(d.raw)
}

// Operations counts path operations, for the startup log line.
func (d *Document) Operations() int {
	n := 0
	for _, item := range d.Spec.Paths.Map() {
		n += len(item.Operations())
	}
	return n
}
