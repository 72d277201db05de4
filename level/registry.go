package level

import (
	"errors"
	"fmt"
)

// VariantTag identifies which renderable representation a stage uses.
type VariantTag int

const (
	// VariantPlaceholder renders a procedural stand-in: a colored box primitive
	// plus a floating text label showing the stage name. Used when no external
	// asset is configured for the stage.
	VariantPlaceholder VariantTag = iota

	// VariantExternalAsset renders a glTF/GLB model fetched from a remote URL.
	// The stage renders nothing until the fetch resolves; a failed fetch leaves
	// the stage empty permanently.
	VariantExternalAsset
)

// String returns the config-file spelling of the variant tag.
func (v VariantTag) String() string {
	switch v {
	case VariantPlaceholder:
		return "placeholder"
	case VariantExternalAsset:
		return "external_asset"
	default:
		return fmt.Sprintf("VariantTag(%d)", int(v))
	}
}

// PlaceholderParams holds the variant parameters for a placeholder stage.
type PlaceholderParams struct {
	// Size is the box extent along each axis in world units.
	Size [3]float32

	// Color is the RGB base color of the box.
	Color [3]float32
}

// AssetParams holds the variant parameters for an external-asset stage.
type AssetParams struct {
	// URL is the remote address of the glTF/GLB resource.
	URL string

	// Scale is a uniform scale applied to the loaded asset. Defaults to 1.
	Scale float32

	// Offset is an additional per-instance translation applied on top of the
	// stage position.
	Offset [3]float32

	// RotationY is a rotation around the vertical axis in degrees.
	RotationY float32
}

// StageDescriptor describes one stage in the restoration progression. A
// descriptor is immutable after registry construction; exactly one of the
// variant parameter fields is populated, selected by Variant.
type StageDescriptor struct {
	// Name is the short stage title shown on labels and the HUD panel.
	Name string

	// Description is the longer explanatory text shown on the HUD panel.
	Description string

	// Variant selects the renderable representation for this stage.
	Variant VariantTag

	// Position is the fixed world-space position of the stage group. The
	// x and y components also define the world-frame offset that centers
	// the stage under the camera.
	Position [3]float32

	// Placeholder carries the parameters for VariantPlaceholder stages.
	Placeholder *PlaceholderParams

	// Asset carries the parameters for VariantExternalAsset stages.
	Asset *AssetParams
}

// Registry is an ordered, immutable sequence of stage descriptors. Order is
// semantic: it defines the cyclic navigation order and the spatial stacking
// of the stages. A registry has no mutation operations.
type Registry interface {
	// Len returns the number of stages in the registry.
	//
	// Returns:
	//   - int: the stage count, always at least 1
	Len() int

	// Stage returns the descriptor at the given index. Panics if the index
	// is outside [0, Len()).
	//
	// Parameters:
	//   - i: the stage index
	//
	// Returns:
	//   - StageDescriptor: the descriptor at index i
	Stage(i int) StageDescriptor

	// Stages returns a copy of the full descriptor sequence in registry order.
	// Mutating the returned slice does not affect the registry.
	//
	// Returns:
	//   - []StageDescriptor: the ordered stage descriptors
	Stages() []StageDescriptor
}

type registryImpl struct {
	stages []StageDescriptor
}

var _ Registry = &registryImpl{}

// NewRegistry builds a Registry from the given descriptors, preserving their
// order. Descriptors are normalized (missing variant parameters replaced with
// defaults) and validated. Invalid stage sets are an authoring error, so
// NewRegistry panics instead of returning an error; use ParseRegistry or
// LoadRegistry for runtime configuration input.
//
// Parameters:
//   - stages: the ordered stage descriptors, at least one
//
// Returns:
//   - Registry: a new immutable Registry instance
func NewRegistry(stages ...StageDescriptor) Registry {
	normalized := make([]StageDescriptor, len(stages))
	for i, s := range stages {
		normalized[i] = normalizeStage(s)
	}
	if err := validateStages(normalized); err != nil {
		panic(fmt.Sprintf("level: invalid stage set: %v", err))
	}
	return &registryImpl{stages: normalized}
}

func (r *registryImpl) Len() int {
	return len(r.stages)
}

func (r *registryImpl) Stage(i int) StageDescriptor {
	return r.stages[i]
}

func (r *registryImpl) Stages() []StageDescriptor {
	out := make([]StageDescriptor, len(r.stages))
	copy(out, r.stages)
	return out
}

// normalizeStage fills variant parameter defaults so that downstream readers
// never see a nil params pointer for the active variant.
func normalizeStage(s StageDescriptor) StageDescriptor {
	switch s.Variant {
	case VariantPlaceholder:
		if s.Placeholder == nil {
			s.Placeholder = defaultPlaceholderParams()
		} else {
			p := *s.Placeholder
			if p.Size == ([3]float32{}) {
				p.Size = defaultPlaceholderParams().Size
			}
			if p.Color == ([3]float32{}) {
				p.Color = defaultPlaceholderParams().Color
			}
			s.Placeholder = &p
		}
	case VariantExternalAsset:
		if s.Asset != nil {
			a := *s.Asset
			if a.Scale == 0 {
				a.Scale = 1
			}
			s.Asset = &a
		}
	}
	return s
}

// validateStages checks the authoring invariants shared by NewRegistry and
// ParseRegistry: a non-empty stage set, non-empty names, known variant tags,
// and a URL for every external-asset stage.
func validateStages(stages []StageDescriptor) error {
	if len(stages) == 0 {
		return errors.New("at least one stage is required")
	}
	for i, s := range stages {
		if s.Name == "" {
			return fmt.Errorf("stage %d: name must not be empty", i)
		}
		switch s.Variant {
		case VariantPlaceholder:
			// normalized params are always present
		case VariantExternalAsset:
			if s.Asset == nil || s.Asset.URL == "" {
				return fmt.Errorf("stage %d (%s): external-asset stage requires a url", i, s.Name)
			}
		default:
			return fmt.Errorf("stage %d (%s): unknown variant tag %d", i, s.Name, int(s.Variant))
		}
	}
	return nil
}

// defaultPlaceholderParams returns the parameters used when a placeholder
// stage configures none: a unit box in a muted leaf green.
func defaultPlaceholderParams() *PlaceholderParams {
	return &PlaceholderParams{
		Size:  [3]float32{1, 1, 1},
		Color: [3]float32{0.45, 0.65, 0.3},
	}
}
