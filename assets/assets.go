// Package assets embeds the default stage configuration so the viewer runs
// out of the box without any files next to the binary.
package assets

import (
	_ "embed"

	"github.com/verdant-labs/groveview/level"
)

// DefaultStages is the raw YAML of the built-in restoration progression.
//
//go:embed stages.yaml
var DefaultStages []byte

// DefaultRegistry parses the embedded stage set into a registry.
//
// Returns:
//   - level.Registry: the default four-stage progression
//   - error: an error if the embedded config fails validation
func DefaultRegistry() (level.Registry, error) {
	return level.ParseRegistry(DefaultStages)
}
