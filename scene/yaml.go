package scene

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlScene is the on-disk scene description. Objects keep file order; the
// other sections are looked up by name.
type yamlScene struct {
	Objects   []yamlObject            `yaml:"objects"`
	Materials map[string]yamlMaterial `yaml:"materials"`
	Textures  map[string]yamlTexture  `yaml:"textures"`
	Images    map[string]yamlImage    `yaml:"images"`
}

type yamlObject struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Parent   string `yaml:"parent,omitempty"`
	Material string `yaml:"material,omitempty"`
	Selected bool   `yaml:"selected,omitempty"`
}

type yamlMaterial struct {
	// Slots may contain null entries for empty slots.
	Slots []*yamlSlot `yaml:"slots"`
}

type yamlSlot struct {
	Use     bool   `yaml:"use"`
	Texture string `yaml:"texture"`
}

type yamlTexture struct {
	Type  string `yaml:"type,omitempty"` // IMAGE when empty
	Image string `yaml:"image,omitempty"`
}

type yamlImage struct {
	Path string `yaml:"path"`
}

// LoadYAML reads a YAML scene description from filePath.
func LoadYAML(filePath string) (*Scene, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return DecodeYAML(file)
}

// DecodeYAML parses a YAML scene description from an io.Reader.
func DecodeYAML(r io.Reader) (*Scene, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var raw yamlScene
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode yaml scene: %w", err)
	}
	return raw.build()
}

func (y yamlScene) build() (*Scene, error) {
	images := make(map[string]*Image, len(y.Images))
	for name, img := range y.Images {
		images[name] = &Image{Name: name, FilePath: img.Path}
	}

	textures := make(map[string]*Texture, len(y.Textures))
	for name, tex := range y.Textures {
		kind := TextureKind(strings.ToUpper(strings.TrimSpace(tex.Type)))
		if kind == "" {
			kind = TextureImage
		}
		t := &Texture{Name: name, Kind: kind}
		if tex.Image != "" {
			img, ok := images[tex.Image]
			if !ok {
				return nil, fmt.Errorf("texture %q: unknown image %q", name, tex.Image)
			}
			t.Image = img
		}
		textures[name] = t
	}

	materials := make(map[string]*Material, len(y.Materials))
	for name, mat := range y.Materials {
		m := &Material{Name: name, Slots: make([]*TextureSlot, len(mat.Slots))}
		for i, slot := range mat.Slots {
			if slot == nil {
				continue
			}
			s := &TextureSlot{Use: slot.Use}
			if slot.Texture != "" {
				tex, ok := textures[slot.Texture]
				if !ok {
					return nil, fmt.Errorf("material %q slot %d: unknown texture %q", name, i, slot.Texture)
				}
				s.Texture = tex
			}
			m.Slots[i] = s
		}
		materials[name] = m
	}

	s := New()
	byName := make(map[string]*Object, len(y.Objects))
	for i, o := range y.Objects {
		if o.Name == "" {
			return nil, fmt.Errorf("object %d: name is required", i)
		}
		if _, dup := byName[o.Name]; dup {
			return nil, fmt.Errorf("object %q: duplicate name", o.Name)
		}
		typ := ObjectType(strings.ToUpper(strings.TrimSpace(o.Type)))
		if typ == "" {
			typ = TypeMesh
		}
		obj := &Object{Name: o.Name, Type: typ, Selected: o.Selected}
		if o.Material != "" {
			mat, ok := materials[o.Material]
			if !ok {
				return nil, fmt.Errorf("object %q: unknown material %q", o.Name, o.Material)
			}
			obj.Material = mat
		}
		byName[o.Name] = s.Add(obj)
	}
	// parents may be listed after their children
	for _, o := range y.Objects {
		if o.Parent == "" {
			continue
		}
		parent, ok := byName[o.Parent]
		if !ok {
			return nil, fmt.Errorf("object %q: unknown parent %q", o.Name, o.Parent)
		}
		byName[o.Name].Parent = parent
	}
	return s, nil
}
