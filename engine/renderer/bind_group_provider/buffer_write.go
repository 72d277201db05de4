package bind_group_provider

// BufferWrite describes one pending GPU buffer write: the provider whose buffer to
// target, the binding index within it, the destination byte offset, and the bytes
// to upload. Scenes batch these and flush them through Renderer.WriteBuffers once
// per frame.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}
