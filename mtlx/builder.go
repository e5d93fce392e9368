package mtlx

// NewOpGraph builds an opgraph sampling texturePath: one color3 image node and
// one output wired to it. ok is false (and nothing is built) when texturePath is empty.
// The returned Output is the graph's output, for cross-referencing by shaders.
func NewOpGraph(n *Namer, texturePath string) (graph OpGraph, out Output, ok bool) {
	if texturePath == "" {
		return OpGraph{}, Output{}, false
	}
	graph.Name = n.Name(PrefixOpGraph)
	image := ImageNode{
		Name: n.Name(PrefixImage),
		Type: TypeColor3,
		Parameters: []Parameter{
			{Name: ParamFile, Type: TypeFilename, Value: texturePath},
		},
	}
	out = Output{
		Name: n.Name(PrefixOutput),
		Parameters: []Parameter{
			{Name: n.Name(PrefixInput), Type: TypeOpGraphNode, Value: image.Name},
		},
	}
	graph.Images = []ImageNode{image}
	graph.Outputs = []Output{out}
	return graph, out, true
}

// NewShader builds a basic_surface shader whose diffuse albedo reads out of graph.
func NewShader(n *Namer, graph OpGraph, out Output) Shader {
	return Shader{
		Name:          n.Name(PrefixShader),
		ShaderType:    ShaderTypeSurface,
		ShaderProgram: ShaderProgramBasic,
		Inputs: []ShaderInput{{
			Name:        InputDiffuseAlbedo,
			Type:        TypeColor3,
			OpGraph:     graph.Name,
			GraphOutput: out.Name,
		}},
	}
}

// NewMaterial builds a material referencing shader.
func NewMaterial(n *Namer, shader Shader) Material {
	return Material{
		Name:       n.Name(PrefixMaterial),
		ShaderRefs: []ShaderRef{{Name: shader.Name}},
	}
}

// NewCollection builds a collection holding a single geometry path.
func NewCollection(n *Namer, geom string) Collection {
	return Collection{
		Name: n.Name(PrefixCollection),
		Adds: []CollectionAdd{{Name: n.Name(PrefixCollectionAdd), Geom: geom}},
	}
}

// NewLook builds a look assigning material to collection.
func NewLook(n *Namer, material Material, collection Collection) Look {
	return Look{
		Name:    n.Name(PrefixLook),
		Assigns: []MaterialAssign{{Name: material.Name, Collection: collection.Name}},
	}
}

// Builder provides a fluent API for constructing a Document in code.
type Builder struct {
	doc   Document
	namer *Namer
}

// NewBuilder creates an empty builder; names are drawn from src (nil = random).
func NewBuilder(src IDSource) *Builder {
	return &Builder{namer: NewNamer(src)}
}

// Namer exposes the builder's name scope so callers can build fragments by hand.
func (b *Builder) Namer() *Namer {
	return b.namer
}

// Build returns the assembled Document.
func (b *Builder) Build() Document {
	return b.doc
}

// Version sets the version attribute on the root element.
func (b *Builder) Version(v string) *Builder {
	b.doc.Version = v
	return b
}

// Collection appends a collection.
func (b *Builder) Collection(c Collection) *Builder {
	b.doc.AddCollection(c)
	return b
}

// OpGraph appends an opgraph.
func (b *Builder) OpGraph(g OpGraph) *Builder {
	b.doc.AddOpGraph(g)
	return b
}

// Shader appends a shader.
func (b *Builder) Shader(s Shader) *Builder {
	b.doc.AddShader(s)
	return b
}

// Material appends a material.
func (b *Builder) Material(m Material) *Builder {
	b.doc.AddMaterial(m)
	return b
}

// Look appends a look.
func (b *Builder) Look(l Look) *Builder {
	b.doc.AddLook(l)
	return b
}

// Raw inserts an unknown element using raw XML to keep extension tags in order.
func (b *Builder) Raw(name, rawXML string) *Builder {
	b.doc.AddRaw(name, rawXML)
	return b
}

// TexturedLook builds and appends the collection, opgraph, shader, material and
// look that paint geom with texturePath. It reports false and appends nothing
// when texturePath is empty.
func (b *Builder) TexturedLook(geom, texturePath string) bool {
	return AppendTexturedLook(&b.doc, b.namer, geom, texturePath)
}

// AppendTexturedLook is TexturedLook for an existing document and name scope.
func AppendTexturedLook(doc *Document, n *Namer, geom, texturePath string) bool {
	graph, out, ok := NewOpGraph(n, texturePath)
	if !ok {
		return false
	}
	collection := NewCollection(n, geom)
	shader := NewShader(n, graph, out)
	material := NewMaterial(n, shader)
	look := NewLook(n, material, collection)

	doc.AddCollection(collection)
	doc.AddOpGraph(graph)
	doc.AddShader(shader)
	doc.AddMaterial(material)
	doc.AddLook(look)
	return true
}
