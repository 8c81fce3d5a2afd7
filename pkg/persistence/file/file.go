// Package file provides file-based persistence for the editor's data set. It
// is the local-device analog of the browser's storage: one JSON document under
// a root directory, replaced in full on every save.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tabflow/tabflow/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root string
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{root: cleanRoot}
}

func (fp *Persistence) documentPath() string {
	return filepath.Join(fp.root, persistence.StorageKey+".json")
}

// Load reads the stored document. A missing file or an unrecognized document
// shape yields the empty dataset rather than an error.
func (fp *Persistence) Load(_ context.Context) (*persistence.Dataset, error) {
	body, err := os.ReadFile(fp.documentPath())
	if err != nil {
		if os.IsNotExist(err) {
			return persistence.EmptyDataset(), nil
		}

		return nil, persistence.NewStoreError("Load", persistence.StorageKey, err)
	}

	return persistence.DecodeDocument(body), nil
}

// SaveAll writes the entire document, replacing any prior one.
func (fp *Persistence) SaveAll(_ context.Context, dataset *persistence.Dataset) error {
	err := os.MkdirAll(fp.root, 0750)
	if err != nil {
		return persistence.NewStoreError("SaveAll", persistence.StorageKey,
			fmt.Errorf("failed to create storage directory: %w", err))
	}

	data, err := persistence.EncodeDocument(dataset)
	if err != nil {
		return persistence.NewStoreError("SaveAll", persistence.StorageKey,
			fmt.Errorf("failed to marshal document: %w", err))
	}

	if err := os.WriteFile(fp.documentPath(), data, 0600); err != nil {
		return persistence.NewStoreError("SaveAll", persistence.StorageKey, err)
	}

	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}
