// Package scene models the host-side view of a 3D scene that the exporter reads:
// objects with a parent chain, their active material, ordered texture slots and
// the image file each texture points at.
package scene

// ObjectType classifies scene objects; only meshes are exported.
type ObjectType string

const (
	TypeMesh  ObjectType = "MESH"
	TypeEmpty ObjectType = "EMPTY"
)

// TextureKind classifies textures; only image textures carry a file.
type TextureKind string

const (
	TextureImage TextureKind = "IMAGE"
)

// Object is a node of the scene hierarchy.
type Object struct {
	Name     string
	Type     ObjectType
	Selected bool
	Parent   *Object
	Material *Material
}

// Material holds texture slots in their defined order; nil entries are empty slots.
type Material struct {
	Name  string
	Slots []*TextureSlot
}

// TextureSlot is one slot of a material. Only slots marked Use are considered.
type TextureSlot struct {
	Use     bool
	Texture *Texture
}

// Texture is a texture datablock. Non-image kinds have no image concept.
type Texture struct {
	Name  string
	Kind  TextureKind
	Image *Image
}

// Image is an image datablock with the path it was loaded from.
type Image struct {
	Name     string
	FilePath string
}

// Reader is the read-only query surface a host exposes to the exporter.
type Reader interface {
	// Objects lists scene objects in their natural listing order.
	Objects() []*Object
	Parent(*Object) *Object
	ActiveMaterial(*Object) *Material
	TextureSlots(*Material) []*TextureSlot
	// ImagePath reports the texture's image file path; ok is false when the
	// texture has no image concept or no image attached.
	ImagePath(*Texture) (path string, ok bool)
}

// Scene is an in-memory host. Loaders for concrete file formats produce one.
type Scene struct {
	objects []*Object
}

// New builds a scene over objects, kept in the given order.
func New(objects ...*Object) *Scene {
	return &Scene{objects: objects}
}

// Add appends an object and returns it.
func (s *Scene) Add(obj *Object) *Object {
	s.objects = append(s.objects, obj)
	return obj
}

// Lookup returns the first object called name.
func (s *Scene) Lookup(name string) *Object {
	for _, obj := range s.objects {
		if obj.Name == name {
			return obj
		}
	}
	return nil
}

// Select marks the named objects as selected and reports names not found.
func (s *Scene) Select(names ...string) []string {
	var missing []string
	for _, name := range names {
		obj := s.Lookup(name)
		if obj == nil {
			missing = append(missing, name)
			continue
		}
		obj.Selected = true
	}
	return missing
}

// Objects implements Reader.
func (s *Scene) Objects() []*Object { return s.objects }

// Parent implements Reader.
func (s *Scene) Parent(obj *Object) *Object {
	if obj == nil {
		return nil
	}
	return obj.Parent
}

// ActiveMaterial implements Reader.
func (s *Scene) ActiveMaterial(obj *Object) *Material {
	if obj == nil {
		return nil
	}
	return obj.Material
}

// TextureSlots implements Reader.
func (s *Scene) TextureSlots(m *Material) []*TextureSlot {
	if m == nil {
		return nil
	}
	return m.Slots
}

// ImagePath implements Reader.
func (s *Scene) ImagePath(t *Texture) (string, bool) {
	if t == nil || t.Kind != TextureImage || t.Image == nil {
		return "", false
	}
	return t.Image.FilePath, true
}

// Meshes returns the mesh objects of r in listing order, optionally only the selected ones.
func Meshes(r Reader, onlySelected bool) []*Object {
	var out []*Object
	for _, obj := range r.Objects() {
		if obj == nil || obj.Type != TypeMesh {
			continue
		}
		if onlySelected && !obj.Selected {
			continue
		}
		out = append(out, obj)
	}
	return out
}
