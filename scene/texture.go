package scene

import "strings"

// relativePrefix marks host-relative paths ("//textures/wood.png").
const relativePrefix = "//"

// ResolveTexture returns the image path of the first enabled texture slot of m
// that has an image with a non-empty path, or "" when there is none.
// Every "//" in the path is removed.
func ResolveTexture(r Reader, m *Material) string {
	if m == nil {
		return ""
	}
	for _, slot := range r.TextureSlots(m) {
		if slot == nil || !slot.Use || slot.Texture == nil {
			continue
		}
		path, ok := r.ImagePath(slot.Texture)
		if !ok || path == "" {
			continue
		}
		return strings.ReplaceAll(path, relativePrefix, "")
	}
	return ""
}
