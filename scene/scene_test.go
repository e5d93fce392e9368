package scene

import (
	"strings"
	"testing"
)

func image(path string) *Texture {
	return &Texture{Kind: TextureImage, Image: &Image{FilePath: path}}
}

func TestResolveTexturePrecedence(t *testing.T) {
	s := New()
	cases := []struct {
		name  string
		slots []*TextureSlot
		want  string
	}{
		{"no slots", nil, ""},
		{"empty slots", []*TextureSlot{nil, nil}, ""},
		{
			name: "disabled slot ignored",
			slots: []*TextureSlot{
				{Use: false, Texture: image("//a.png")},
				{Use: true, Texture: &Texture{Kind: TextureImage}},
				{Use: true, Texture: image("//textures/b.png")},
			},
			want: "textures/b.png",
		},
		{
			name: "first usable wins",
			slots: []*TextureSlot{
				{Use: true, Texture: image("first.png")},
				{Use: true, Texture: image("second.png")},
			},
			want: "first.png",
		},
		{
			name: "non-image texture skipped",
			slots: []*TextureSlot{
				{Use: true, Texture: &Texture{Kind: "CLOUDS", Image: &Image{FilePath: "x.png"}}},
			},
			want: "",
		},
		{
			name:  "empty path skipped",
			slots: []*TextureSlot{{Use: true, Texture: image("")}, {Use: true}},
			want:  "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveTexture(s, &Material{Slots: tc.slots})
			if got != tc.want {
				t.Fatalf("ResolveTexture = %q, want %q", got, tc.want)
			}
		})
	}
	if got := ResolveTexture(s, nil); got != "" {
		t.Fatalf("nil material resolved to %q", got)
	}
}

func TestResolveTextureStripsEveryDoubleSlash(t *testing.T) {
	s := New()
	m := &Material{Slots: []*TextureSlot{{Use: true, Texture: image("//textures//wood.png")}}}
	if got := ResolveTexture(s, m); got != "textureswood.png" {
		t.Fatalf("got %q", got)
	}
	m.Slots[0].Texture = image("//textures/wood.png")
	if got := ResolveTexture(s, m); got != "textures/wood.png" {
		t.Fatalf("got %q", got)
	}
}

func TestGeomPath(t *testing.T) {
	room := &Object{Name: "Room", Type: TypeEmpty}
	table := &Object{Name: "Table", Type: TypeMesh, Parent: room}
	cup := &Object{Name: "Cup", Type: TypeMesh, Parent: table}
	cube := &Object{Name: "Cube", Type: TypeMesh}
	s := New(room, table, cup, cube)

	cases := map[*Object]string{
		cube:  "/Cube",
		table: "/Room/Table",
		cup:   "/Room/Table/Cup",
		nil:   "/",
	}
	for obj, want := range cases {
		if got := GeomPath(s, obj); got != want {
			t.Fatalf("GeomPath(%v) = %q, want %q", obj, got, want)
		}
	}
}

func TestGeomPathStopsOnParentCycle(t *testing.T) {
	a := &Object{Name: "A", Type: TypeMesh}
	b := &Object{Name: "B", Type: TypeMesh, Parent: a}
	a.Parent = b
	got := GeomPath(New(a, b), a)
	if got != "/B/A" {
		t.Fatalf("cycle path = %q", got)
	}
}

func TestMeshesFiltersTypeAndSelection(t *testing.T) {
	s := New(
		&Object{Name: "A", Type: TypeMesh, Selected: true},
		&Object{Name: "L", Type: "LIGHT", Selected: true},
		&Object{Name: "B", Type: TypeMesh},
	)
	if got := names(Meshes(s, false)); got != "A,B" {
		t.Fatalf("all meshes = %s", got)
	}
	if got := names(Meshes(s, true)); got != "A" {
		t.Fatalf("selected meshes = %s", got)
	}
	if missing := s.Select("B", "Nope"); len(missing) != 1 || missing[0] != "Nope" {
		t.Fatalf("missing = %v", missing)
	}
	if got := names(Meshes(s, true)); got != "A,B" {
		t.Fatalf("selected after Select = %s", got)
	}
}

func names(objs []*Object) string {
	out := make([]string, len(objs))
	for i, o := range objs {
		out[i] = o.Name
	}
	return strings.Join(out, ",")
}
