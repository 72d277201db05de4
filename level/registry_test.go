package level

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewRegistry_PreservesOrder verifies descriptors come back in authoring order.
func TestNewRegistry_PreservesOrder(t *testing.T) {
	reg := NewRegistry(
		StageDescriptor{Name: "Raw Land", Variant: VariantPlaceholder, Position: [3]float32{1.5, 0, 0}},
		StageDescriptor{Name: "Reforestation", Variant: VariantPlaceholder, Position: [3]float32{-1.5, 4.5, 0}},
		StageDescriptor{Name: "Verification", Variant: VariantPlaceholder, Position: [3]float32{1.5, 9, 0}},
	)

	require.Equal(t, 3, reg.Len())
	assert.Equal(t, "Raw Land", reg.Stage(0).Name)
	assert.Equal(t, "Reforestation", reg.Stage(1).Name)
	assert.Equal(t, "Verification", reg.Stage(2).Name)
	assert.Equal(t, [3]float32{-1.5, 4.5, 0}, reg.Stage(1).Position)
}

// TestNewRegistry_PanicsOnEmptySet verifies the at-least-one-stage invariant.
func TestNewRegistry_PanicsOnEmptySet(t *testing.T) {
	assert.Panics(t, func() {
		NewRegistry()
	})
}

// TestNewRegistry_PanicsOnUnnamedStage verifies the non-empty-name invariant.
func TestNewRegistry_PanicsOnUnnamedStage(t *testing.T) {
	assert.Panics(t, func() {
		NewRegistry(StageDescriptor{Variant: VariantPlaceholder})
	})
}

// TestNewRegistry_PanicsOnUnknownVariant verifies the known-variant invariant.
func TestNewRegistry_PanicsOnUnknownVariant(t *testing.T) {
	assert.Panics(t, func() {
		NewRegistry(StageDescriptor{Name: "Mystery", Variant: VariantTag(99)})
	})
}

// TestNewRegistry_PanicsOnMissingAssetURL verifies external-asset stages need a URL.
func TestNewRegistry_PanicsOnMissingAssetURL(t *testing.T) {
	assert.Panics(t, func() {
		NewRegistry(StageDescriptor{Name: "Grove", Variant: VariantExternalAsset})
	})
	assert.Panics(t, func() {
		NewRegistry(StageDescriptor{Name: "Grove", Variant: VariantExternalAsset, Asset: &AssetParams{}})
	})
}

// TestNewRegistry_AppliesPlaceholderDefaults verifies nil or partial placeholder
// params are filled with defaults.
func TestNewRegistry_AppliesPlaceholderDefaults(t *testing.T) {
	reg := NewRegistry(
		StageDescriptor{Name: "Bare", Variant: VariantPlaceholder},
		StageDescriptor{Name: "Sized", Variant: VariantPlaceholder, Placeholder: &PlaceholderParams{Size: [3]float32{2, 3, 2}}},
	)

	bare := reg.Stage(0)
	require.NotNil(t, bare.Placeholder)
	assert.Equal(t, [3]float32{1, 1, 1}, bare.Placeholder.Size)
	assert.NotEqual(t, [3]float32{}, bare.Placeholder.Color)

	sized := reg.Stage(1)
	require.NotNil(t, sized.Placeholder)
	assert.Equal(t, [3]float32{2, 3, 2}, sized.Placeholder.Size)
	assert.NotEqual(t, [3]float32{}, sized.Placeholder.Color, "omitted color should fall back to the default")
}

// TestNewRegistry_NormalizesAssetScale verifies a zero scale becomes 1.
func TestNewRegistry_NormalizesAssetScale(t *testing.T) {
	reg := NewRegistry(StageDescriptor{
		Name:    "Grove",
		Variant: VariantExternalAsset,
		Asset:   &AssetParams{URL: "https://assets.example.com/grove.glb"},
	})

	require.NotNil(t, reg.Stage(0).Asset)
	assert.Equal(t, float32(1), reg.Stage(0).Asset.Scale)
}

// TestNewRegistry_DoesNotAliasCallerParams verifies normalization copies the
// caller's param structs instead of retaining them.
func TestNewRegistry_DoesNotAliasCallerParams(t *testing.T) {
	params := &PlaceholderParams{Size: [3]float32{2, 2, 2}, Color: [3]float32{1, 0, 0}}
	reg := NewRegistry(StageDescriptor{Name: "Raw Land", Variant: VariantPlaceholder, Placeholder: params})

	params.Size = [3]float32{9, 9, 9}
	assert.Equal(t, [3]float32{2, 2, 2}, reg.Stage(0).Placeholder.Size)
}

// TestRegistry_StagesReturnsCopy verifies mutating the returned slice leaves
// the registry untouched.
func TestRegistry_StagesReturnsCopy(t *testing.T) {
	reg := NewRegistry(
		StageDescriptor{Name: "Raw Land", Variant: VariantPlaceholder},
		StageDescriptor{Name: "Reforestation", Variant: VariantPlaceholder},
	)

	stages := reg.Stages()
	stages[0].Name = "Tampered"

	assert.Equal(t, "Raw Land", reg.Stage(0).Name)
}

// TestParseRegistry_FullDocument decodes a two-variant YAML stage set with
// typed params.
func TestParseRegistry_FullDocument(t *testing.T) {
	doc := []byte(`
stages:
  - name: Raw Land
    description: Degraded pasture before intervention.
    variant: placeholder
    position: {x: 1.5, y: 0, z: 0}
    params:
      size: [1, 0.5, 1]
      color: [0.71, 0.55, 0.35]
  - name: Reforestation
    description: Native saplings planted across the site.
    variant: external_asset
    position: {x: -1.5, y: 4.5, z: 0}
    params:
      url: https://assets.example.com/saplings.glb
      scale: 0.8
      offset: [0, -0.25, 0]
      rotation_y: 45
`)

	reg, err := ParseRegistry(doc)
	require.NoError(t, err)
	require.Equal(t, 2, reg.Len())

	raw := reg.Stage(0)
	assert.Equal(t, "Raw Land", raw.Name)
	assert.Equal(t, "Degraded pasture before intervention.", raw.Description)
	assert.Equal(t, VariantPlaceholder, raw.Variant)
	assert.Equal(t, [3]float32{1.5, 0, 0}, raw.Position)
	require.NotNil(t, raw.Placeholder)
	assert.Equal(t, [3]float32{1, 0.5, 1}, raw.Placeholder.Size)
	assert.InDelta(t, 0.71, raw.Placeholder.Color[0], 1e-6)

	grove := reg.Stage(1)
	assert.Equal(t, VariantExternalAsset, grove.Variant)
	require.NotNil(t, grove.Asset)
	assert.Equal(t, "https://assets.example.com/saplings.glb", grove.Asset.URL)
	assert.InDelta(t, 0.8, grove.Asset.Scale, 1e-6)
	assert.Equal(t, [3]float32{0, -0.25, 0}, grove.Asset.Offset)
	assert.InDelta(t, 45, grove.Asset.RotationY, 1e-6)
}

// TestParseRegistry_DefaultsWhenParamsOmitted verifies an entry with no params
// block still decodes with defaults.
func TestParseRegistry_DefaultsWhenParamsOmitted(t *testing.T) {
	doc := []byte(`
stages:
  - name: Raw Land
    position: {x: 1.5}
`)

	reg, err := ParseRegistry(doc)
	require.NoError(t, err)
	stage := reg.Stage(0)
	assert.Equal(t, VariantPlaceholder, stage.Variant, "missing variant should default to placeholder")
	require.NotNil(t, stage.Placeholder)
	assert.Equal(t, [3]float32{1, 1, 1}, stage.Placeholder.Size)
}

// TestParseRegistry_RejectsUnknownVariant verifies unknown tags are a runtime error.
func TestParseRegistry_RejectsUnknownVariant(t *testing.T) {
	doc := []byte(`
stages:
  - name: Raw Land
    variant: hologram
`)

	_, err := ParseRegistry(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hologram")
}

// TestParseRegistry_RejectsMalformedYAML verifies parse failures surface as errors.
func TestParseRegistry_RejectsMalformedYAML(t *testing.T) {
	_, err := ParseRegistry([]byte("stages: ["))
	assert.Error(t, err)
}

// TestParseRegistry_RejectsBadParamType verifies param type mismatches are reported.
func TestParseRegistry_RejectsBadParamType(t *testing.T) {
	doc := []byte(`
stages:
  - name: Raw Land
    variant: placeholder
    params:
      size: big
`)

	_, err := ParseRegistry(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "size")
}

// TestParseRegistry_RejectsWrongParamArity verifies fixed-length lists are enforced.
func TestParseRegistry_RejectsWrongParamArity(t *testing.T) {
	doc := []byte(`
stages:
  - name: Raw Land
    variant: placeholder
    params:
      color: [1, 0]
`)

	_, err := ParseRegistry(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "color")
}

// TestParseRegistry_RejectsEmptyStageList verifies the empty document case.
func TestParseRegistry_RejectsEmptyStageList(t *testing.T) {
	_, err := ParseRegistry([]byte("stages: []"))
	assert.Error(t, err)
}

// TestParseRegistry_RejectsMissingAssetURL verifies external-asset entries
// without a url fail to parse.
func TestParseRegistry_RejectsMissingAssetURL(t *testing.T) {
	doc := []byte(`
stages:
  - name: Grove
    variant: external_asset
    params:
      scale: 2
`)

	_, err := ParseRegistry(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "url")
}

// TestLoadRegistry_ReadsFile verifies the file-based entry point.
func TestLoadRegistry_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stages.yaml")
	doc := []byte(`
stages:
  - name: Raw Land
    variant: placeholder
    position: {x: 1.5, y: 0, z: 0}
`)
	require.NoError(t, os.WriteFile(path, doc, 0o644))

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, "Raw Land", reg.Stage(0).Name)
}

// TestLoadRegistry_MissingFile verifies a missing config path is an error,
// not a panic.
func TestLoadRegistry_MissingFile(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

// TestVariantTag_String covers the config spellings used in error messages.
func TestVariantTag_String(t *testing.T) {
	assert.Equal(t, "placeholder", VariantPlaceholder.String())
	assert.Equal(t, "external_asset", VariantExternalAsset.String())
	assert.Equal(t, "VariantTag(7)", VariantTag(7).String())
}
