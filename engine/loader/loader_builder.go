package loader

import (
	"net/http"

	"github.com/verdant-labs/groveview/engine/model"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithHTTPClient is an option builder that sets the HTTP client used for remote
// asset downloads. Pass a client with a custom timeout, transport or proxy
// configuration; the default client times out after 30 seconds per fetch.
//
// Parameters:
//   - client: the HTTP client to use
//
// Returns:
//   - LoaderBuilderOption: a function that applies the client option to a loader
func WithHTTPClient(client *http.Client) LoaderBuilderOption {
	return func(l *loader) {
		if client != nil {
			l.httpClient = client
		}
	}
}

// WithModel is an option builder that pre-populates the model cache.
// The loader takes ownership of the given model as the pristine cached copy;
// Load and Get return clones of it.
//
// Parameters:
//   - key: the cache key for the model
//   - model: the model to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the model option to a loader
func WithModel(key string, model model.Model) LoaderBuilderOption {
	return func(l *loader) {
		l.modelCache[key] = model
	}
}
