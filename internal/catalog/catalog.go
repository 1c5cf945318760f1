// Package catalog serves the merchandise product list from a JSON file.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// DefaultPath is the catalog file location relative to the working directory.
const DefaultPath = "./products.json"

// ErrInvalidCatalog is returned when the file is not valid JSON.
var ErrInvalidCatalog = errors.New("invalid catalog file")

// Product is one catalog entry.
type Product struct {
	ID    json.RawMessage `json:"id,omitempty"`
	Name  string          `json:"name"`
	Price float64         `json:"price,omitempty"`
	Sizes []string        `json:"sizes,omitempty"`
}

// FileStore reads the catalog from disk on every call so edits show up
// without a restart.
type FileStore struct {
	Path string
}

// Load returns the file contents after checking they are valid JSON.
func (s *FileStore) Load(ctx context.Context) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := DefaultPath
	if s != nil && strings.TrimSpace(s.Path) != "" {
		path = s.Path
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCatalog, path)
	}
	return json.RawMessage(data), nil
}

// Products decodes the catalog. Both a top-level array and an object with a
// "products" array are accepted.
func (s *FileStore) Products(ctx context.Context) ([]Product, error) {
	raw, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	var list []Product
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Products []Product `json:"products"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return wrapped.Products, nil
}
