package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdant-labs/groveview/level"
)

// The embedded default configuration must parse and describe the four-stage
// progression the viewer ships with.
func TestDefaultRegistry_ParsesEmbeddedStages(t *testing.T) {
	reg, err := DefaultRegistry()
	require.NoError(t, err)
	require.Equal(t, 4, reg.Len())

	names := make([]string, 0, reg.Len())
	for _, stage := range reg.Stages() {
		names = append(names, stage.Name)
		assert.NotEmpty(t, stage.Description, "stage %q needs a description", stage.Name)
	}
	assert.Equal(t, []string{"Raw Land", "Reforestation", "Verification", "Credit Issued"}, names)
}

// Stage positions alternate sides and climb so neighbouring stages stay
// visible while one is centered.
func TestDefaultRegistry_StageLayout(t *testing.T) {
	reg, err := DefaultRegistry()
	require.NoError(t, err)

	want := [][3]float32{
		{1.5, 0, 0},
		{-1.5, 4.5, 0},
		{1.5, 9, 0},
		{-1.5, 13.5, 0},
	}
	for i, pos := range want {
		assert.Equal(t, pos, reg.Stage(i).Position, "stage %d", i)
	}
}

// The second stage is the only external asset; the rest are placeholders with
// their variant parameters populated.
func TestDefaultRegistry_Variants(t *testing.T) {
	reg, err := DefaultRegistry()
	require.NoError(t, err)

	for i, stage := range reg.Stages() {
		if i == 1 {
			require.Equal(t, level.VariantExternalAsset, stage.Variant, "stage %d", i)
			require.NotNil(t, stage.Asset)
			assert.Contains(t, stage.Asset.URL, ".glb")
			assert.InDelta(t, 1.2, stage.Asset.Scale, 1e-6)
			continue
		}
		require.Equal(t, level.VariantPlaceholder, stage.Variant, "stage %d", i)
		require.NotNil(t, stage.Placeholder)
		assert.NotZero(t, stage.Placeholder.Size[1], "stage %d box height", i)
	}
}
