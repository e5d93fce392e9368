package scene

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/qmuntal/gltf"
)

// LoadGLTF opens a .gltf or .glb file and converts its node hierarchy.
func LoadGLTF(path string) (*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf %s: %w", path, err)
	}
	return FromGLTF(doc), nil
}

// DecodeGLTF reads a self-contained glTF document (no external buffers) from r.
func DecodeGLTF(r io.Reader) (*Scene, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("decode gltf: %w", err)
	}
	return FromGLTF(doc), nil
}

// FromGLTF maps glTF nodes to objects in node order. Nodes referencing a mesh
// become meshes; the material of the mesh's first primitive that has one is the
// active material, and its base color texture is the material's only slot.
// Images stored in buffers or data URIs have no file path.
func FromGLTF(doc *gltf.Document) *Scene {
	s := New()
	if doc == nil {
		return s
	}
	c := gltfConverter{doc: doc, materials: map[int]*Material{}, textures: map[int]*Texture{}}

	objects := make([]*Object, len(doc.Nodes))
	for i, node := range doc.Nodes {
		obj := &Object{Name: c.nodeName(i), Type: TypeEmpty}
		if node != nil && node.Mesh != nil {
			obj.Type = TypeMesh
			obj.Material = c.meshMaterial(*node.Mesh)
		}
		objects[i] = s.Add(obj)
	}
	for i, node := range doc.Nodes {
		if node == nil {
			continue
		}
		for _, child := range node.Children {
			if child >= 0 && child < len(objects) && child != i {
				objects[child].Parent = objects[i]
			}
		}
	}
	return s
}

type gltfConverter struct {
	doc       *gltf.Document
	materials map[int]*Material
	textures  map[int]*Texture
}

func (c gltfConverter) nodeName(i int) string {
	node := c.doc.Nodes[i]
	if node != nil && node.Name != "" {
		return node.Name
	}
	if node != nil && node.Mesh != nil {
		if m := *node.Mesh; m >= 0 && m < len(c.doc.Meshes) && c.doc.Meshes[m] != nil && c.doc.Meshes[m].Name != "" {
			return c.doc.Meshes[m].Name
		}
	}
	return fmt.Sprintf("node_%d", i)
}

func (c gltfConverter) meshMaterial(meshIdx int) *Material {
	if meshIdx < 0 || meshIdx >= len(c.doc.Meshes) || c.doc.Meshes[meshIdx] == nil {
		return nil
	}
	for _, prim := range c.doc.Meshes[meshIdx].Primitives {
		if prim != nil && prim.Material != nil {
			return c.material(*prim.Material)
		}
	}
	return nil
}

func (c gltfConverter) material(idx int) *Material {
	if m, ok := c.materials[idx]; ok {
		return m
	}
	if idx < 0 || idx >= len(c.doc.Materials) || c.doc.Materials[idx] == nil {
		return nil
	}
	src := c.doc.Materials[idx]
	name := src.Name
	if name == "" {
		name = fmt.Sprintf("material_%d", idx)
	}
	m := &Material{Name: name}
	if pbr := src.PBRMetallicRoughness; pbr != nil && pbr.BaseColorTexture != nil {
		m.Slots = append(m.Slots, &TextureSlot{Use: true, Texture: c.texture(pbr.BaseColorTexture.Index)})
	}
	c.materials[idx] = m
	return m
}

func (c gltfConverter) texture(idx int) *Texture {
	if t, ok := c.textures[idx]; ok {
		return t
	}
	if idx < 0 || idx >= len(c.doc.Textures) || c.doc.Textures[idx] == nil {
		return nil
	}
	src := c.doc.Textures[idx]
	t := &Texture{Name: fmt.Sprintf("texture_%d", idx), Kind: TextureImage}
	if src.Source != nil && *src.Source >= 0 && *src.Source < len(c.doc.Images) && c.doc.Images[*src.Source] != nil {
		img := c.doc.Images[*src.Source]
		t.Image = &Image{Name: img.Name, FilePath: imagePath(img.URI)}
	}
	c.textures[idx] = t
	return t
}

// imagePath decodes a relative image URI; data URIs have no path.
func imagePath(uri string) string {
	if uri == "" || strings.HasPrefix(uri, "data:") {
		return ""
	}
	if p, err := url.PathUnescape(uri); err == nil {
		return p
	}
	return uri
}
