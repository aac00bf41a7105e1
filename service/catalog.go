package service

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/emzola/bibliodesk/cache"
	"github.com/emzola/bibliodesk/data"
	"github.com/emzola/bibliodesk/data/dto"
	"github.com/emzola/bibliodesk/internal/validator"
	"github.com/gabriel-vasile/mimetype"
	"gopkg.in/yaml.v3"
)

const maxCatalogSize = 10 << 20

type catalog interface {
	ImportBooks(ctx context.Context, r io.Reader) ([]dto.ImportResult, error)
}

// ImportBooks service creates every book of a YAML catalog. Records are
// handled one by one; a bad record does not stop the import. The Books tag
// is invalidated once at the end when anything was created.
func (s *service) ImportBooks(ctx context.Context, r io.Reader) ([]dto.ImportResult, error) {
	buf, err := io.ReadAll(io.LimitReader(r, maxCatalogSize+1))
	if err != nil {
		return nil, err
	}
	if len(buf) > maxCatalogSize {
		return nil, fmt.Errorf("catalog larger than %d bytes", maxCatalogSize)
	}
	if len(bytes.TrimSpace(buf)) == 0 {
		return []dto.ImportResult{}, nil
	}
	if mtype := mimetype.Detect(buf); !validator.Mime(mtype, "text/plain") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mtype.String())
	}

	var doc struct {
		Books []yaml.Node `yaml:"books"`
	}
	if err := yaml.Unmarshal(buf, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	results := make([]dto.ImportResult, 0, len(doc.Books))
	created := 0
	for i := range doc.Books {
		node := &doc.Books[i]
		result := dto.ImportResult{Line: node.Line}
		var body dto.CreateBookRequestBody
		if err := node.Decode(&body); err != nil {
			result.Err = err
			results = append(results, result)
			continue
		}
		result.Title = body.Title
		book := body.Book()
		v := validator.New()
		if data.ValidateNewBook(v, &book); !v.Valid() {
			result.Err = failedValidation(v.Errors)
			results = append(results, result)
			continue
		}
		body.Available = data.Availability(body.Copies)
		result.Book, result.Err = s.repo.CreateBook(ctx, body)
		if result.Err != nil {
			result.Err = mapRepoError(result.Err)
		} else {
			created++
		}
		results = append(results, result)
	}

	s.logger.PrintInfo("catalog imported", map[string]string{
		"records": fmt.Sprint(len(results)),
		"created": fmt.Sprint(created),
	})
	if created > 0 {
		s.store.Invalidate(ctx, cache.TypeTag(TagBooks))
	}
	return results, nil
}
