package level

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// registryConfig is the YAML document shape for a stage set.
type registryConfig struct {
	Stages []stageConfig `yaml:"stages"`
}

// stageConfig is the YAML shape of a single stage entry. Variant-specific
// parameters arrive as a generic map and are decoded by the variant's
// registered decoder.
type stageConfig struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Variant     string         `yaml:"variant"`
	Position    positionConfig `yaml:"position"`
	Params      map[string]any `yaml:"params"`
}

type positionConfig struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
	Z float32 `yaml:"z"`
}

// variantDecoders maps each variant tag to the decoder that turns the generic
// params map into that variant's typed parameters on the descriptor.
var variantDecoders = map[VariantTag]func(params map[string]any, desc *StageDescriptor) error{
	VariantPlaceholder:   decodePlaceholderParams,
	VariantExternalAsset: decodeAssetParams,
}

// LoadRegistry reads a YAML stage set from the given path and builds a
// Registry from it. Config files are runtime input, so malformed content is
// reported as an error rather than a panic.
//
// Parameters:
//   - path: the filesystem path of the YAML stage config
//
// Returns:
//   - Registry: the parsed registry
//   - error: an error if the file cannot be read or the content is invalid
func LoadRegistry(path string) (Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stage config: %w", err)
	}
	reg, err := ParseRegistry(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

// ParseRegistry decodes a YAML stage set and builds a Registry from it.
//
// Parameters:
//   - data: the raw YAML document bytes
//
// Returns:
//   - Registry: the parsed registry
//   - error: an error if the YAML is malformed or violates a stage invariant
func ParseRegistry(data []byte) (Registry, error) {
	var cfg registryConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse stage config: %w", err)
	}

	stages := make([]StageDescriptor, 0, len(cfg.Stages))
	for i, sc := range cfg.Stages {
		desc, err := sc.toDescriptor()
		if err != nil {
			return nil, fmt.Errorf("stage %d: %w", i, err)
		}
		stages = append(stages, desc)
	}
	if err := validateStages(stages); err != nil {
		return nil, fmt.Errorf("invalid stage config: %w", err)
	}
	return &registryImpl{stages: stages}, nil
}

// toDescriptor converts one YAML stage entry into a normalized descriptor,
// dispatching the params map to the decoder registered for the variant tag.
func (sc stageConfig) toDescriptor() (StageDescriptor, error) {
	variant, err := parseVariantTag(sc.Variant)
	if err != nil {
		return StageDescriptor{}, err
	}

	desc := StageDescriptor{
		Name:        sc.Name,
		Description: sc.Description,
		Variant:     variant,
		Position:    [3]float32{sc.Position.X, sc.Position.Y, sc.Position.Z},
	}

	decode := variantDecoders[variant]
	if err := decode(sc.Params, &desc); err != nil {
		return StageDescriptor{}, fmt.Errorf("%s params: %w", variant, err)
	}
	return normalizeStage(desc), nil
}

// parseVariantTag maps the config-file spelling of a variant to its tag.
func parseVariantTag(s string) (VariantTag, error) {
	switch s {
	case "placeholder", "":
		return VariantPlaceholder, nil
	case "external_asset":
		return VariantExternalAsset, nil
	default:
		return 0, fmt.Errorf("unknown variant %q", s)
	}
}

func decodePlaceholderParams(params map[string]any, desc *StageDescriptor) error {
	p := defaultPlaceholderParams()
	if err := decodeFloats(params, "size", p.Size[:]); err != nil {
		return err
	}
	if err := decodeFloats(params, "color", p.Color[:]); err != nil {
		return err
	}
	desc.Placeholder = p
	return nil
}

func decodeAssetParams(params map[string]any, desc *StageDescriptor) error {
	a := &AssetParams{Scale: 1}
	if err := decodeString(params, "url", &a.URL); err != nil {
		return err
	}
	if err := decodeFloat(params, "scale", &a.Scale); err != nil {
		return err
	}
	if err := decodeFloats(params, "offset", a.Offset[:]); err != nil {
		return err
	}
	if err := decodeFloat(params, "rotation_y", &a.RotationY); err != nil {
		return err
	}
	desc.Asset = a
	return nil
}

// floatValue converts the numeric types the YAML decoder produces for an
// untyped scalar into a float32.
func floatValue(v any) (float32, bool) {
	switch n := v.(type) {
	case float64:
		return float32(n), true
	case int:
		return float32(n), true
	default:
		return 0, false
	}
}

// decodeFloat writes the number stored under key into out. A missing key
// leaves out untouched.
func decodeFloat(params map[string]any, key string, out *float32) error {
	v, ok := params[key]
	if !ok {
		return nil
	}
	f, ok := floatValue(v)
	if !ok {
		return fmt.Errorf("%q: expected a number, got %T", key, v)
	}
	*out = f
	return nil
}

// decodeFloats writes the fixed-length number list stored under key into out.
// A missing key leaves out untouched.
func decodeFloats(params map[string]any, key string, out []float32) error {
	v, ok := params[key]
	if !ok {
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		return fmt.Errorf("%q: expected a list of numbers, got %T", key, v)
	}
	if len(list) != len(out) {
		return fmt.Errorf("%q: expected %d numbers, got %d", key, len(out), len(list))
	}
	for i, item := range list {
		f, ok := floatValue(item)
		if !ok {
			return fmt.Errorf("%q[%d]: expected a number, got %T", key, i, item)
		}
		out[i] = f
	}
	return nil
}

// decodeString writes the string stored under key into out. A missing key
// leaves out untouched.
func decodeString(params map[string]any, key string, out *string) error {
	v, ok := params[key]
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("%q: expected a string, got %T", key, v)
	}
	*out = s
	return nil
}
