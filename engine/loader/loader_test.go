package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdant-labs/groveview/engine/model"
)

// buildTriangleBuffer returns the raw binary buffer for a unit triangle in the
// XY plane: three vec3 float positions followed by three uint16 indices plus
// two padding bytes to keep the buffer 4-byte aligned.
func buildTriangleBuffer(t *testing.T) []byte {
	t.Helper()

	buf := &bytes.Buffer{}
	positions := [][3]float32{
		{0, 0, 0},
		{1, 0, 0},
		{0, 1, 0},
	}
	for _, p := range positions {
		require.NoError(t, binary.Write(buf, binary.LittleEndian, p))
	}
	require.NoError(t, binary.Write(buf, binary.LittleEndian, []uint16{0, 1, 2}))
	buf.Write([]byte{0, 0})
	return buf.Bytes()
}

// buildTriangleGLTF returns a self-contained glTF JSON document describing one
// indexed triangle, with the binary buffer embedded as a base64 data URI.
// materialsJSON and materialRef optionally attach a material block and a
// primitive material reference.
func buildTriangleGLTF(t *testing.T, materialsJSON, materialRef string) []byte {
	t.Helper()

	buffer := buildTriangleBuffer(t)
	b64 := base64.StdEncoding.EncodeToString(buffer)

	doc := fmt.Sprintf(`{
		"asset": {"version": "2.0"},
		"scene": 0,
		"scenes": [{"name": "restoration_site"}],
		"meshes": [{"name": "plot", "primitives": [{"attributes": {"POSITION": 0}, "indices": 1%s}]}],
		"accessors": [
			{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
			{"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
		],
		"bufferViews": [
			{"buffer": 0, "byteOffset": 0, "byteLength": 36},
			{"buffer": 0, "byteOffset": 36, "byteLength": 6}
		],
		"buffers": [{"byteLength": %d, "uri": "data:application/octet-stream;base64,%s"}]%s
	}`, materialRef, len(buffer), b64, materialsJSON)

	return []byte(doc)
}

// buildGLB wraps a JSON document and a binary payload in a GLB container with
// proper chunk alignment.
func buildGLB(t *testing.T, jsonDoc, bin []byte, version uint32) []byte {
	t.Helper()

	for len(jsonDoc)%4 != 0 {
		jsonDoc = append(jsonDoc, ' ')
	}
	for len(bin)%4 != 0 {
		bin = append(bin, 0)
	}

	total := 12 + 8 + len(jsonDoc) + 8 + len(bin)
	buf := &bytes.Buffer{}
	require.NoError(t, binary.Write(buf, binary.LittleEndian, gltfGLBHeader{Magic: gltfGLBMagic, Version: version, Length: uint32(total)}))
	require.NoError(t, binary.Write(buf, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(jsonDoc)), ChunkType: gltfGLBChunkJSON}))
	buf.Write(jsonDoc)
	require.NoError(t, binary.Write(buf, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(bin)), ChunkType: gltfGLBChunkBIN}))
	buf.Write(bin)
	return buf.Bytes()
}

// glbPositionsJSON describes a non-indexed triangle whose positions live in the
// GLB binary chunk. No scene name is present, so the model name falls back to
// the source URL.
const glbPositionsJSON = `{"asset":{"version":"2.0"},"meshes":[{"name":"canopy","primitives":[{"attributes":{"POSITION":0}}]}],"accessors":[{"bufferView":0,"componentType":5126,"count":3,"type":"VEC3"}],"bufferViews":[{"buffer":0,"byteOffset":0,"byteLength":36}],"buffers":[{"byteLength":36}]}`

// glbPositionsBin returns the 36-byte position payload matching glbPositionsJSON.
func glbPositionsBin(t *testing.T) []byte {
	t.Helper()

	buf := &bytes.Buffer{}
	for _, p := range [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}} {
		require.NoError(t, binary.Write(buf, binary.LittleEndian, p))
	}
	return buf.Bytes()
}

// writeTempModel writes model data to a file in a fresh temp dir and returns its path.
func writeTempModel(t *testing.T, name string, data []byte) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

// pngDataURI encodes a 2x2 single-color PNG as a base64 data URI.
func pngDataURI(t *testing.T, c color.RGBA) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

// TestLoader_LoadLocalGLTF imports a self-contained glTF file and checks geometry,
// generated normals and the scene-derived model name
func TestLoader_LoadLocalGLTF(t *testing.T) {
	path := writeTempModel(t, "site.gltf", buildTriangleGLTF(t, "", ""))

	l := NewLoader(BackendTypeGLTF)
	m, err := l.Load(path)
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.Equal(t, "restoration_site", m.Name())
	require.Len(t, m.Meshes(), 1)

	mesh := m.Meshes()[0]
	assert.Equal(t, "plot", mesh.Name)
	require.Len(t, mesh.Vertices, 3)
	assert.Equal(t, []uint32{0, 1, 2}, mesh.Indices)

	assert.Equal(t, [3]float32{1, 0, 0}, mesh.Vertices[1].Position)
	assert.Equal(t, [4]float32{1, 1, 1, 1}, mesh.Vertices[0].Color)

	// No NORMAL attribute in the file: normals are generated from the CCW winding.
	for _, v := range mesh.Vertices {
		assert.InDelta(t, 0, v.Normal[0], 1e-6)
		assert.InDelta(t, 0, v.Normal[1], 1e-6)
		assert.InDelta(t, 1, v.Normal[2], 1e-6)
	}

	assert.InDelta(t, 1.0, m.BoundingRadius(), 1e-6)
}

// TestLoader_LoadGLB imports a GLB container with its buffer in the binary chunk
// and falls back to sequential indices and the URL-derived name
func TestLoader_LoadGLB(t *testing.T) {
	glb := buildGLB(t, []byte(glbPositionsJSON), glbPositionsBin(t), gltfGLBVersion)
	path := writeTempModel(t, "canopy_stage.glb", glb)

	l := NewLoader(BackendTypeGLTF)
	m, err := l.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "canopy_stage", m.Name())
	require.Len(t, m.Meshes(), 1)

	mesh := m.Meshes()[0]
	assert.Equal(t, "canopy", mesh.Name)
	assert.Equal(t, []uint32{0, 1, 2}, mesh.Indices)
}

// TestLoader_BakesBaseColorFactor multiplies the material base color factor into
// every vertex color at import time
func TestLoader_BakesBaseColorFactor(t *testing.T) {
	materials := `,"materials": [{"name": "bark", "pbrMetallicRoughness": {"baseColorFactor": [0.2, 0.4, 0.6, 1.0]}}]`
	doc := buildTriangleGLTF(t, materials, `, "material": 0`)
	path := writeTempModel(t, "bark.gltf", doc)

	l := NewLoader(BackendTypeGLTF)
	m, err := l.Load(path)
	require.NoError(t, err)

	mesh := m.Meshes()[0]
	for _, v := range mesh.Vertices {
		assert.InDelta(t, 0.2, v.Color[0], 1e-6)
		assert.InDelta(t, 0.4, v.Color[1], 1e-6)
		assert.InDelta(t, 0.6, v.Color[2], 1e-6)
		assert.InDelta(t, 1.0, v.Color[3], 1e-6)
	}
}

// TestLoader_DecodesBaseColorTexture decodes a data URI PNG referenced by the
// material into mesh staging data
func TestLoader_DecodesBaseColorTexture(t *testing.T) {
	uri := pngDataURI(t, color.RGBA{R: 10, G: 200, B: 30, A: 255})
	materials := fmt.Sprintf(`,
		"materials": [{"pbrMetallicRoughness": {"baseColorTexture": {"index": 0}}}],
		"textures": [{"source": 0}],
		"images": [{"uri": "%s"}]`, uri)
	doc := buildTriangleGLTF(t, materials, `, "material": 0`)
	path := writeTempModel(t, "textured.gltf", doc)

	l := NewLoader(BackendTypeGLTF)
	m, err := l.Load(path)
	require.NoError(t, err)

	mesh := m.Meshes()[0]
	require.NotNil(t, mesh.Texture)
	assert.Equal(t, uint32(2), mesh.Texture.Width)
	assert.Equal(t, uint32(2), mesh.Texture.Height)
	require.GreaterOrEqual(t, len(mesh.Texture.Pixels), 4)
	assert.Equal(t, byte(10), mesh.Texture.Pixels[0])
	assert.Equal(t, byte(200), mesh.Texture.Pixels[1])
	assert.Equal(t, byte(30), mesh.Texture.Pixels[2])
}

// TestLoader_CloneIsolation gives every Load call an independent copy that can
// be mutated without corrupting the cache
func TestLoader_CloneIsolation(t *testing.T) {
	path := writeTempModel(t, "site.gltf", buildTriangleGLTF(t, "", ""))

	l := NewLoader(BackendTypeGLTF)
	first, err := l.Load(path)
	require.NoError(t, err)

	first.Meshes()[0].Vertices[0].Color = [4]float32{0, 0, 0, 0}
	first.Meshes()[0].Indices[0] = 99

	second, err := l.Load(path)
	require.NoError(t, err)

	assert.NotSame(t, first.Meshes()[0], second.Meshes()[0])
	assert.Equal(t, [4]float32{1, 1, 1, 1}, second.Meshes()[0].Vertices[0].Color)
	assert.Equal(t, uint32(0), second.Meshes()[0].Indices[0])
}

// TestLoader_SingleFetchPerURL collapses concurrent loads of the same URL into
// one download
func TestLoader_SingleFetchPerURL(t *testing.T) {
	glb := buildGLB(t, []byte(glbPositionsJSON), glbPositionsBin(t), gltfGLBVersion)

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write(glb)
	}))
	defer srv.Close()

	l := NewLoader(BackendTypeGLTF)
	url := srv.URL + "/canopy.glb"

	var wg sync.WaitGroup
	results := make([]model.Model, 8)
	errs := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = l.Load(url)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i])
	}
	assert.Equal(t, int32(1), hits.Load())

	// Clones must be independent even when served from the shared fetch.
	assert.NotSame(t, results[0].Meshes()[0], results[1].Meshes()[0])
}

// TestLoader_ResolvesLocalBufferURI reads an external .bin buffer relative to
// the document's directory
func TestLoader_ResolvesLocalBufferURI(t *testing.T) {
	dir := t.TempDir()
	buffer := buildTriangleBuffer(t)

	doc := fmt.Sprintf(`{
		"asset": {"version": "2.0"},
		"meshes": [{"primitives": [{"attributes": {"POSITION": 0}, "indices": 1}]}],
		"accessors": [
			{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
			{"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
		],
		"bufferViews": [
			{"buffer": 0, "byteOffset": 0, "byteLength": 36},
			{"buffer": 0, "byteOffset": 36, "byteLength": 6}
		],
		"buffers": [{"byteLength": %d, "uri": "tri.bin"}]
	}`, len(buffer))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "model.gltf"), []byte(doc), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tri.bin"), buffer, 0o644))

	l := NewLoader(BackendTypeGLTF)
	m, err := l.Load(filepath.Join(dir, "model.gltf"))
	require.NoError(t, err)
	assert.Equal(t, [3]float32{0, 1, 0}, m.Meshes()[0].Vertices[2].Position)
}

// TestLoader_ResolvesRemoteBufferURI fetches an external .bin buffer relative
// to the document's base URL
func TestLoader_ResolvesRemoteBufferURI(t *testing.T) {
	buffer := buildTriangleBuffer(t)
	doc := fmt.Sprintf(`{
		"asset": {"version": "2.0"},
		"meshes": [{"primitives": [{"attributes": {"POSITION": 0}, "indices": 1}]}],
		"accessors": [
			{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
			{"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
		],
		"bufferViews": [
			{"buffer": 0, "byteOffset": 0, "byteLength": 36},
			{"buffer": 0, "byteOffset": 36, "byteLength": 6}
		],
		"buffers": [{"byteLength": %d, "uri": "tri.bin"}]
	}`, len(buffer))

	mux := http.NewServeMux()
	mux.HandleFunc("/assets/model.gltf", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(doc))
	})
	mux.HandleFunc("/assets/tri.bin", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(buffer)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	l := NewLoader(BackendTypeGLTF)
	m, err := l.Load(srv.URL + "/assets/model.gltf")
	require.NoError(t, err)
	assert.Equal(t, [3]float32{1, 0, 0}, m.Meshes()[0].Vertices[1].Position)
}

// TestLoader_FetchFailures surfaces missing files and HTTP error statuses as errors
func TestLoader_FetchFailures(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)

	_, err := l.Load(filepath.Join(t.TempDir(), "missing.glb"))
	require.Error(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err = l.Load(srv.URL + "/gone.glb")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

// TestLoader_RejectsUnsupportedVersions fails on glTF 1.0 documents and GLB
// containers with an unknown version
func TestLoader_RejectsUnsupportedVersions(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)

	oldDoc := []byte(`{"asset": {"version": "1.0"}}`)
	_, err := l.Load(writeTempModel(t, "old.gltf", oldDoc))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errInvalidGLTFVersion))

	glb := buildGLB(t, []byte(glbPositionsJSON), glbPositionsBin(t), 3)
	_, err = l.Load(writeTempModel(t, "future.glb", glb))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errInvalidGLBVersion))
}

// TestLoader_WithModelServesSeededKey short-circuits fetching for keys seeded
// through the builder option
func TestLoader_WithModelServesSeededKey(t *testing.T) {
	seed := model.NewBox([3]float32{1, 1, 1}, [4]float32{1, 1, 1, 1})
	l := NewLoader(BackendTypeGLTF, WithModel("builtin://box", seed))

	m, err := l.Load("builtin://box")
	require.NoError(t, err)
	assert.Equal(t, "box", m.Name())
	assert.NotSame(t, seed.Meshes()[0], m.Meshes()[0])

	assert.Nil(t, l.Get("builtin://missing"))
	require.NotNil(t, l.Get("builtin://box"))
}
