package truelicense

// defaultRepositoryModel is the default RepositoryModel: the signed payload
// (the codec-encoded License) plus its signature. Fields are exported so the
// default JSON codec can (de)serialize the model through reflection.
type defaultRepositoryModel struct {
	PayloadBytes   []byte `json:"payload"`
	SignatureBytes []byte `json:"signature"`
}

func (m *defaultRepositoryModel) Payload() []byte        { return m.PayloadBytes }
func (m *defaultRepositoryModel) SetPayload(p []byte)     { m.PayloadBytes = p }
func (m *defaultRepositoryModel) Signature() []byte       { return m.SignatureBytes }
func (m *defaultRepositoryModel) SetSignature(s []byte)   { m.SignatureBytes = s }

// defaultRepositoryController pairs a model with the codec that can decode
// its payload.
type defaultRepositoryController struct {
	model RepositoryModel
	codec Codec
}

func (c *defaultRepositoryController) Model() RepositoryModel { return c.model }
func (c *defaultRepositoryController) Codec() Codec           { return c.codec }

// DefaultRepositoryContext is the default RepositoryContext: it produces
// *defaultRepositoryModel values and controllers wrapping whatever codec is
// passed to NewController. This round-trips correctly for any Codec capable
// of (de)serializing a struct with two []byte fields — true of the default
// JSON codec and of any reasonable replacement.
type DefaultRepositoryContext struct{}

func (DefaultRepositoryContext) NewModel() RepositoryModel {
	return &defaultRepositoryModel{}
}

func (DefaultRepositoryContext) NewController(model RepositoryModel, codec Codec) RepositoryController {
	return &defaultRepositoryController{model: model, codec: codec}
}
