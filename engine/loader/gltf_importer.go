package loader

import (
	"fmt"

	"github.com/verdant-labs/groveview/engine/model"
)

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct{}

// gltfImporter defines the interface for orchestrating a full glTF/GLB import.
// It combines the parser and extractors to produce an engine-ready Model with
// material base colors baked into vertex colors and base color textures decoded
// into mesh staging data.
type gltfImporter interface {
	// Import parses glTF JSON or GLB binary bytes and assembles a Model.
	//
	// Parameters:
	//   - data: the complete glTF or GLB payload
	//   - resolve: resolver for external buffer and image URIs; may be nil for
	//     self-contained documents
	//   - fallbackName: name used when the document itself carries none
	//
	// Returns:
	//   - model.Model: the imported model
	//   - error: error if import fails
	Import(data []byte, resolve resolverFunc, fallbackName string) (model.Model, error)
}

var _ gltfImporter = &gltfImporterImpl{}

// newGLTFImporter creates a new glTF importer.
//
// Returns:
//   - gltfImporter: the importer
func newGLTFImporter() gltfImporter {
	return &gltfImporterImpl{}
}

func (imp *gltfImporterImpl) Import(data []byte, resolve resolverFunc, fallbackName string) (model.Model, error) {
	parser := newGLTFParser(resolve)
	if err := parser.ParseBytes(data); err != nil {
		return nil, fmt.Errorf("failed to parse model data: %w", err)
	}

	doc := parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document after parsing")
	}

	meshExtractor := newGLTFMeshExtractor(parser)
	materialExtractor := newGLTFMaterialExtractor(parser)

	// Extract all primitives
	prims, err := meshExtractor.ExtractAllMeshes()
	if err != nil {
		return nil, fmt.Errorf("mesh extraction failed: %w", err)
	}

	// Extract materials
	var materials []*importedMaterial
	if len(doc.Materials) > 0 {
		materials, err = materialExtractor.ExtractAllMaterials()
		if err != nil {
			return nil, fmt.Errorf("material extraction failed: %w", err)
		}
	}

	// Assemble one engine mesh per primitive, baking the referenced material's
	// base color factor into the vertex colors and decoding any base color
	// texture into staging data ready for GPU upload.
	meshes := make([]*model.Mesh, 0, len(prims))
	var boundingRadius float32

	for i := range prims {
		prim := &prims[i]
		mesh := &model.Mesh{
			Name:     prim.Name,
			Vertices: prim.Vertices,
			Indices:  prim.Indices,
		}

		if prim.MaterialIndex != nil && *prim.MaterialIndex >= 0 && *prim.MaterialIndex < len(materials) {
			mat := materials[*prim.MaterialIndex]
			gltfBakeBaseColor(mesh.Vertices, mat.BaseColor)

			if mat.Texture != nil && len(mat.Texture.Data) > 0 {
				staging, err := mat.Texture.Decode()
				if err != nil {
					return nil, fmt.Errorf("mesh %q: failed to decode texture: %w", mesh.Name, err)
				}
				mesh.Texture = staging
			}
		}

		if r := model.ComputeBoundingRadius(mesh.Vertices); r > boundingRadius {
			boundingRadius = r
		}

		meshes = append(meshes, mesh)
	}

	name := gltfExtractModelName(doc, fallbackName)

	return model.NewModel(
		model.WithName(name),
		model.WithMeshes(meshes...),
		model.WithBoundingRadius(boundingRadius),
	), nil
}

// --- Helper Functions ---

// gltfBakeBaseColor multiplies the material base color factor into every vertex color.
// Per the glTF spec, the effective color is baseColorFactor * vertexColor, so baking
// the factor at import time lets the lit shader work from vertex colors alone.
func gltfBakeBaseColor(vertices []model.GPUVertex, factor [4]float32) {
	if factor == [4]float32{1, 1, 1, 1} {
		return
	}
	for i := range vertices {
		vertices[i].Color[0] *= factor[0]
		vertices[i].Color[1] *= factor[1]
		vertices[i].Color[2] *= factor[2]
		vertices[i].Color[3] *= factor[3]
	}
}

// gltfExtractModelName derives a model name from the document scene or a caller fallback.
func gltfExtractModelName(doc *gltfDocument, fallbackName string) string {
	// Try scene name first
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		if name := doc.Scenes[*doc.Scene].Name; name != "" {
			return name
		}
	}

	if fallbackName != "" {
		return fallbackName
	}

	return "unnamed_model"
}
