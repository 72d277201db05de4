package model

// model is the implementation of the Model interface.
type model struct {
	name           string
	meshes         []*Mesh
	boundingRadius float32
}

// Model defines the interface for a drawable 3D model.
// A Model is a CPU-side container holding one or more meshes plus a bounding
// sphere radius. It is produced by the Loader after importing a model file, or
// by the primitive constructors in this package. Scenes never share a Model
// between nodes; Clone produces the per-node copy.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Meshes retrieves the drawable meshes of this model.
	// The returned slice is the model's own storage, not a copy.
	//
	// Returns:
	//   - []*Mesh: the meshes
	Meshes() []*Mesh

	// BoundingRadius returns the bounding sphere radius for this model, measured
	// as the maximum vertex distance from the model origin.
	//
	// Returns:
	//   - float32: the bounding radius
	BoundingRadius() float32

	// Clone returns a deep copy of the model. All mesh vertex, index and texture
	// storage is duplicated so the copy can be mutated independently.
	//
	// Returns:
	//   - Model: an independent copy of the model
	Clone() Model
}

var _ Model = &model{}

// NewModel creates a new Model instance with the specified options applied.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: a new instance of Model configured with the provided options
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Meshes() []*Mesh {
	return m.meshes
}

func (m *model) BoundingRadius() float32 {
	return m.boundingRadius
}

func (m *model) Clone() Model {
	clone := &model{
		name:           m.name,
		meshes:         make([]*Mesh, len(m.meshes)),
		boundingRadius: m.boundingRadius,
	}
	for i, mesh := range m.meshes {
		clone.meshes[i] = mesh.Clone()
	}
	return clone
}
