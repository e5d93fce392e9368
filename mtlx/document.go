package mtlx

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// ElementType enumerates the top-level nodes allowed under <materialx>.
type ElementType string

const (
	ElementCollection ElementType = "collection"
	ElementOpGraph    ElementType = "opgraph"
	ElementShader     ElementType = "shader"
	ElementMaterial   ElementType = "material"
	ElementLook       ElementType = "look"
	ElementUnknown    ElementType = "unknown"
)

// Fixed attribute values written by the fragment builders.
const (
	TypeColor3         = "color3"
	TypeFilename       = "filename"
	TypeOpGraphNode    = "opgraphnode"
	ParamFile          = "file"
	ShaderTypeSurface  = "surface"
	ShaderProgramBasic = "basic_surface"
	InputDiffuseAlbedo = "diff_albedo"
	rootElementName    = "materialx"
)

// Element tracks an entry's type and its position in the backing slice on Document.
// Index is -1 for unknown elements, which carry their raw XML instead.
type Element struct {
	Type   ElementType
	Index  int
	Name   string // tag name, filled for unknown elements
	RawXML string // raw XML for unknown elements to preserve round-trips
}

// Document represents a MaterialX file.
// Elements preserves the order fragments were appended or decoded in.
type Document struct {
	Version     string
	Collections []Collection
	OpGraphs    []OpGraph
	Shaders     []Shader
	Materials   []Material
	Looks       []Look
	Elements    []Element
}

// Collection is a named set of geometry paths.
type Collection struct {
	Name string          `xml:"name,attr"`
	Adds []CollectionAdd `xml:"collectionadd"`
}

// CollectionAdd adds one geometry path to a collection.
type CollectionAdd struct {
	Name string `xml:"name,attr"`
	Geom string `xml:"geom,attr"`
}

// OpGraph is a node graph sampling an image file.
type OpGraph struct {
	Name    string      `xml:"name,attr"`
	Images  []ImageNode `xml:"image"`
	Outputs []Output    `xml:"output"`
}

// ImageNode samples an image file.
type ImageNode struct {
	Name       string      `xml:"name,attr"`
	Type       string      `xml:"type,attr"`
	Parameters []Parameter `xml:"parameter"`
}

// Output exposes a graph node to shaders.
type Output struct {
	Name       string      `xml:"name,attr"`
	Parameters []Parameter `xml:"parameter"`
}

// Parameter is a typed name/value pair.
type Parameter struct {
	Name  string `xml:"name,attr"`
	Type  string `xml:"type,attr"`
	Value string `xml:"value,attr"`
}

// Shader is a surface shader definition.
type Shader struct {
	Name          string        `xml:"name,attr"`
	ShaderType    string        `xml:"shadertype,attr"`
	ShaderProgram string        `xml:"shaderprogram,attr"`
	Inputs        []ShaderInput `xml:"input"`
}

// ShaderInput binds a shader input to an opgraph output.
type ShaderInput struct {
	Name        string `xml:"name,attr"`
	Type        string `xml:"type,attr"`
	OpGraph     string `xml:"opgraph,attr"`
	GraphOutput string `xml:"graphoutput,attr"`
}

// Material binds a shader.
type Material struct {
	Name       string      `xml:"name,attr"`
	ShaderRefs []ShaderRef `xml:"shaderref"`
}

// ShaderRef references a shader by name.
type ShaderRef struct {
	Name string `xml:"name,attr"`
}

// Look binds materials to collections.
type Look struct {
	Name    string           `xml:"name,attr"`
	Assigns []MaterialAssign `xml:"materialassign"`
}

// MaterialAssign paints a collection with a material.
type MaterialAssign struct {
	Name       string `xml:"name,attr"`
	Collection string `xml:"collection,attr"`
}

// FilePath returns the value of the image's file parameter.
func (n ImageNode) FilePath() string {
	for _, p := range n.Parameters {
		if p.Name == ParamFile {
			return p.Value
		}
	}
	return ""
}

// Geoms returns the geometry paths added to the collection.
func (c Collection) Geoms() []string {
	out := make([]string, 0, len(c.Adds))
	for _, a := range c.Adds {
		out = append(out, a.Geom)
	}
	return out
}

// AddCollection appends a collection and returns its index.
func (d *Document) AddCollection(c Collection) int {
	d.Collections = append(d.Collections, c)
	idx := len(d.Collections) - 1
	d.Elements = append(d.Elements, Element{Type: ElementCollection, Index: idx})
	return idx
}

// AddOpGraph appends an opgraph and returns its index.
func (d *Document) AddOpGraph(g OpGraph) int {
	d.OpGraphs = append(d.OpGraphs, g)
	idx := len(d.OpGraphs) - 1
	d.Elements = append(d.Elements, Element{Type: ElementOpGraph, Index: idx})
	return idx
}

// AddShader appends a shader and returns its index.
func (d *Document) AddShader(s Shader) int {
	d.Shaders = append(d.Shaders, s)
	idx := len(d.Shaders) - 1
	d.Elements = append(d.Elements, Element{Type: ElementShader, Index: idx})
	return idx
}

// AddMaterial appends a material and returns its index.
func (d *Document) AddMaterial(m Material) int {
	d.Materials = append(d.Materials, m)
	idx := len(d.Materials) - 1
	d.Elements = append(d.Elements, Element{Type: ElementMaterial, Index: idx})
	return idx
}

// AddLook appends a look and returns its index.
func (d *Document) AddLook(l Look) int {
	d.Looks = append(d.Looks, l)
	idx := len(d.Looks) - 1
	d.Elements = append(d.Elements, Element{Type: ElementLook, Index: idx})
	return idx
}

// AddRaw keeps an unrecognized element in document order.
func (d *Document) AddRaw(name, rawXML string) {
	d.Elements = append(d.Elements, Element{Type: ElementUnknown, Index: -1, Name: name, RawXML: rawXML})
}

// Len reports the number of top-level elements.
func (d Document) Len() int {
	return len(d.resolveOrder())
}

// Names returns every generated name in the document in element order,
// including nested collectionadd/image/output/parameter names.
func (d Document) Names() []string {
	var out []string
	for _, el := range d.resolveOrder() {
		switch p := d.payloadFor(el).(type) {
		case Collection:
			out = append(out, p.Name)
			for _, a := range p.Adds {
				out = append(out, a.Name)
			}
		case OpGraph:
			out = append(out, p.Name)
			for _, img := range p.Images {
				out = append(out, img.Name)
			}
			for _, o := range p.Outputs {
				out = append(out, o.Name)
				for _, prm := range o.Parameters {
					out = append(out, prm.Name)
				}
			}
		case Shader:
			out = append(out, p.Name)
		case Material:
			out = append(out, p.Name)
		case Look:
			out = append(out, p.Name)
		}
	}
	return out
}

// Walk iterates over elements in order and invokes fn with the typed payload
// (Collection, OpGraph, Shader, Material, Look, or raw XML string).
func (d Document) Walk(fn func(Element, any) error) error {
	if fn == nil {
		return nil
	}
	for _, el := range d.resolveOrder() {
		if err := fn(el, d.payloadFor(el)); err != nil {
			return err
		}
	}
	return nil
}

// resolveOrder returns Elements, or the typed slices grouped by kind when the
// document was assembled by hand without Elements.
func (d Document) resolveOrder() []Element {
	if len(d.Elements) > 0 {
		return d.Elements
	}
	var out []Element
	for i := range d.Collections {
		out = append(out, Element{Type: ElementCollection, Index: i})
	}
	for i := range d.OpGraphs {
		out = append(out, Element{Type: ElementOpGraph, Index: i})
	}
	for i := range d.Shaders {
		out = append(out, Element{Type: ElementShader, Index: i})
	}
	for i := range d.Materials {
		out = append(out, Element{Type: ElementMaterial, Index: i})
	}
	for i := range d.Looks {
		out = append(out, Element{Type: ElementLook, Index: i})
	}
	return out
}

func (d Document) payloadFor(el Element) any {
	inRange := func(n int) bool { return el.Index >= 0 && el.Index < n }
	switch el.Type {
	case ElementCollection:
		if inRange(len(d.Collections)) {
			return d.Collections[el.Index]
		}
	case ElementOpGraph:
		if inRange(len(d.OpGraphs)) {
			return d.OpGraphs[el.Index]
		}
	case ElementShader:
		if inRange(len(d.Shaders)) {
			return d.Shaders[el.Index]
		}
	case ElementMaterial:
		if inRange(len(d.Materials)) {
			return d.Materials[el.Index]
		}
	case ElementLook:
		if inRange(len(d.Looks)) {
			return d.Looks[el.Index]
		}
	case ElementUnknown:
		return el.RawXML
	}
	return nil
}

// Binding is one look assignment resolved through every cross-reference.
type Binding struct {
	Look       string   `json:"look"`
	Material   string   `json:"material"`
	Shader     string   `json:"shader,omitempty"`
	OpGraph    string   `json:"opgraph,omitempty"`
	Texture    string   `json:"texture,omitempty"`
	Collection string   `json:"collection"`
	Geoms      []string `json:"geoms,omitempty"`
}

// Bindings flattens every materialassign into a Binding, following names to
// shaders, opgraphs and collections. Dangling references leave fields empty.
func (d Document) Bindings() []Binding {
	collections := make(map[string]Collection, len(d.Collections))
	for _, c := range d.Collections {
		collections[c.Name] = c
	}
	graphs := make(map[string]OpGraph, len(d.OpGraphs))
	for _, g := range d.OpGraphs {
		graphs[g.Name] = g
	}
	shaders := make(map[string]Shader, len(d.Shaders))
	for _, s := range d.Shaders {
		shaders[s.Name] = s
	}
	materials := make(map[string]Material, len(d.Materials))
	for _, m := range d.Materials {
		materials[m.Name] = m
	}

	var out []Binding
	for _, l := range d.Looks {
		for _, ma := range l.Assigns {
			b := Binding{Look: l.Name, Material: ma.Name, Collection: ma.Collection}
			if c, ok := collections[ma.Collection]; ok {
				b.Geoms = c.Geoms()
			}
			if m, ok := materials[ma.Name]; ok && len(m.ShaderRefs) > 0 {
				b.Shader = m.ShaderRefs[0].Name
			}
			if s, ok := shaders[b.Shader]; ok {
				for _, in := range s.Inputs {
					if in.Name != InputDiffuseAlbedo {
						continue
					}
					b.OpGraph = in.OpGraph
					if g, ok := graphs[in.OpGraph]; ok {
						b.Texture = graphTexture(g, in.GraphOutput)
					}
				}
			}
			out = append(out, b)
		}
	}
	return out
}

// graphTexture follows output -> image node -> file parameter.
func graphTexture(g OpGraph, output string) string {
	for _, o := range g.Outputs {
		if o.Name != output {
			continue
		}
		for _, p := range o.Parameters {
			if p.Type != TypeOpGraphNode {
				continue
			}
			for _, img := range g.Images {
				if img.Name == p.Value {
					return img.FilePath()
				}
			}
		}
	}
	return ""
}

// ValidationDetail provides structured validation info.
type ValidationDetail struct {
	Element ElementType
	Name    string
	Field   string
	Message string
}

// ValidationError groups structural problems.
type ValidationError struct {
	Issues  []string
	Details []ValidationDetail
}

func (v *ValidationError) Error() string {
	return "materialx validation failed: " + strings.Join(v.Issues, "; ")
}

// Validate checks that names are present and unique and that every
// cross-reference points at an element of the right kind.
func (d Document) Validate() error {
	var issues []string
	var details []ValidationDetail
	add := func(t ElementType, name, field, msg string) {
		issues = append(issues, fmt.Sprintf("%s %q: %s", t, name, msg))
		details = append(details, ValidationDetail{Element: t, Name: name, Field: field, Message: msg})
	}

	seen := make(map[string]struct{})
	for _, name := range d.Names() {
		if strings.TrimSpace(name) == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			issues = append(issues, fmt.Sprintf("duplicate name %q", name))
			details = append(details, ValidationDetail{Name: name, Field: "name", Message: "duplicate name"})
		}
		seen[name] = struct{}{}
	}

	graphs := make(map[string]OpGraph, len(d.OpGraphs))
	for _, g := range d.OpGraphs {
		if g.Name == "" {
			add(ElementOpGraph, g.Name, "name", "missing name")
		}
		images := make(map[string]struct{}, len(g.Images))
		for _, img := range g.Images {
			images[img.Name] = struct{}{}
			if img.FilePath() == "" {
				add(ElementOpGraph, g.Name, "file", fmt.Sprintf("image %q has no file parameter", img.Name))
			}
		}
		for _, o := range g.Outputs {
			for _, p := range o.Parameters {
				if p.Type != TypeOpGraphNode {
					continue
				}
				if _, ok := images[p.Value]; !ok {
					add(ElementOpGraph, g.Name, "value", fmt.Sprintf("output %q references unknown node %q", o.Name, p.Value))
				}
			}
		}
		graphs[g.Name] = g
	}

	shaders := make(map[string]struct{}, len(d.Shaders))
	for _, s := range d.Shaders {
		if s.Name == "" {
			add(ElementShader, s.Name, "name", "missing name")
		}
		shaders[s.Name] = struct{}{}
		for _, in := range s.Inputs {
			if in.OpGraph == "" {
				continue
			}
			g, ok := graphs[in.OpGraph]
			if !ok {
				add(ElementShader, s.Name, "opgraph", fmt.Sprintf("input %q references unknown opgraph %q", in.Name, in.OpGraph))
				continue
			}
			if !hasOutput(g, in.GraphOutput) {
				add(ElementShader, s.Name, "graphoutput", fmt.Sprintf("input %q references unknown output %q of %q", in.Name, in.GraphOutput, g.Name))
			}
		}
	}

	materials := make(map[string]struct{}, len(d.Materials))
	for _, m := range d.Materials {
		if m.Name == "" {
			add(ElementMaterial, m.Name, "name", "missing name")
		}
		materials[m.Name] = struct{}{}
		for _, ref := range m.ShaderRefs {
			if _, ok := shaders[ref.Name]; !ok {
				add(ElementMaterial, m.Name, "shaderref", fmt.Sprintf("references unknown shader %q", ref.Name))
			}
		}
	}

	collections := make(map[string]struct{}, len(d.Collections))
	for _, c := range d.Collections {
		if c.Name == "" {
			add(ElementCollection, c.Name, "name", "missing name")
		}
		collections[c.Name] = struct{}{}
		for _, a := range c.Adds {
			if !strings.HasPrefix(a.Geom, "/") {
				add(ElementCollection, c.Name, "geom", fmt.Sprintf("geometry path %q is not rooted", a.Geom))
			}
		}
	}

	for _, l := range d.Looks {
		if l.Name == "" {
			add(ElementLook, l.Name, "name", "missing name")
		}
		for _, ma := range l.Assigns {
			if _, ok := materials[ma.Name]; !ok {
				add(ElementLook, l.Name, "materialassign", fmt.Sprintf("references unknown material %q", ma.Name))
			}
			if _, ok := collections[ma.Collection]; !ok {
				add(ElementLook, l.Name, "collection", fmt.Sprintf("references unknown collection %q", ma.Collection))
			}
		}
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues, Details: details}
	}
	return nil
}

func hasOutput(g OpGraph, name string) bool {
	for _, o := range g.Outputs {
		if o.Name == name {
			return true
		}
	}
	return false
}

// attr is a small helper for building xml.Attr values.
func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}
