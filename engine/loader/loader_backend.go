package loader

import (
	"github.com/verdant-labs/groveview/engine/model"
)

// resolverFunc fetches the bytes behind a URI referenced by a model document.
// The loader constructs one per load so that relative references resolve
// against the document's own origin (HTTP base URL or local directory).
type resolverFunc func(uri string) ([]byte, error)

// loaderBackend defines the generic interface for decoding raw model bytes.
// Concrete implementations (e.g., gltfLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Decode parses raw model bytes into an engine model.
	//
	// Parameters:
	//   - data: the complete model file bytes
	//   - resolve: resolver for external references; may be nil for
	//     self-contained data
	//   - fallbackName: name used when the document itself carries none
	//
	// Returns:
	//   - model.Model: the decoded model
	//   - error: error if decoding fails
	Decode(data []byte, resolve resolverFunc, fallbackName string) (model.Model, error)
}
