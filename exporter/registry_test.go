package exporter

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/atlas-foundry/mtlx-go-sdk/mtlx"
	"github.com/atlas-foundry/mtlx-go-sdk/scene"
)

func TestDefaultRegistryYAMLChain(t *testing.T) {
	body, err := os.ReadFile("../scene/testdata/room.yaml")
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	outAny, err := DefaultRegistry.Chain(ctx, []string{FormatYAML, FormatScene, FormatMTLX, FormatText}, body,
		map[string]any{"ids": &mtlx.SequenceSource{}, "version": "1.0"})
	if err != nil {
		t.Fatalf("chain: %v", err)
	}
	out, ok := outAny.([]byte)
	if !ok {
		t.Fatalf("expected []byte, got %T", outAny)
	}
	text := string(out)
	if !strings.Contains(text, `<materialx version="1.0">`) || !strings.Contains(text, `geom="/Room/Table/Cup"`) {
		t.Fatalf("chain output:\n%s", text)
	}
	if !strings.Contains(text, `<collection name="co_00000005">`) {
		t.Fatalf("sequence ids not used:\n%s", text)
	}
}

func TestDefaultRegistryGLTFSelection(t *testing.T) {
	f, err := os.Open("../scene/testdata/crate.gltf")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	ctx := context.Background()
	sceneAny, err := DefaultRegistry.Convert(ctx, FormatGLTF, FormatScene, f, map[string]any{"select": []string{"Plain"}})
	if err != nil {
		t.Fatalf("gltf->scene: %v", err)
	}
	s := sceneAny.(*scene.Scene)
	if !s.Lookup("Plain").Selected || s.Lookup("Crate").Selected {
		t.Fatalf("selection not applied")
	}
	docAny, err := DefaultRegistry.Convert(ctx, FormatScene, FormatMTLX, s, map[string]any{"only_selected": true})
	if err != nil {
		t.Fatalf("scene->mtlx: %v", err)
	}
	if doc := docAny.(mtlx.Document); doc.Len() != 0 {
		t.Fatalf("selected mesh has no texture; got %d elements", doc.Len())
	}
}

func TestDefaultRegistryRenderers(t *testing.T) {
	doc := mtlx.NewBuilder(&mtlx.SequenceSource{})
	doc.TexturedLook("/Cube", "t.png")
	ctx := context.Background()
	wants := map[string]string{
		FormatText:     "<materialx>",
		FormatDOT:      "digraph G {",
		FormatJSON:     `"texture": "t.png"`,
		FormatMarkdown: "| `look_00000009` |",
		FormatOrg:      "* MaterialX looks",
		FormatHTML:     "<table>",
	}
	for to, want := range wants {
		out, err := DefaultRegistry.Convert(ctx, FormatMTLX, to, doc.Build(), nil)
		if err != nil {
			t.Fatalf("mtlx->%s: %v", to, err)
		}
		if !strings.Contains(string(out.([]byte)), want) {
			t.Fatalf("mtlx->%s missing %q:\n%s", to, want, out)
		}
	}
	text, _ := DefaultRegistry.Convert(ctx, FormatMTLX, FormatText, doc.Build(), nil)
	again, err := DefaultRegistry.Convert(ctx, FormatMTLX, FormatDOT, text, nil)
	if err != nil || !strings.Contains(string(again.([]byte)), `"co_00000005"`) {
		t.Fatalf("mtlx text input: %v", err)
	}
}

func TestRegistryErrors(t *testing.T) {
	ctx := context.Background()
	if _, err := DefaultRegistry.Convert(ctx, FormatMTLX, "pdf", mtlx.Document{}, nil); !errors.Is(err, mtlx.ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented, got %v", err)
	}
	if _, err := DefaultRegistry.Convert(ctx, FormatScene, FormatMTLX, "not a scene", nil); err == nil {
		t.Fatal("expected type error")
	}
	if _, err := DefaultRegistry.Convert(ctx, FormatYAML, FormatScene, 42, nil); err == nil {
		t.Fatal("expected input type error")
	}
	_, err := DefaultRegistry.Convert(ctx, FormatYAML, FormatScene, "objects: [{name: A}]", map[string]any{"select": []string{"B"}})
	if err == nil || !strings.Contains(err.Error(), "no object named B") {
		t.Fatalf("expected selection error, got %v", err)
	}
	if _, err := DefaultRegistry.Chain(ctx, []string{FormatYAML}, "", nil); err == nil {
		t.Fatal("expected short chain error")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := DefaultRegistry.Chain(cancelled, []string{FormatYAML, FormatScene}, "objects: []", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRegistryRegisterAndList(t *testing.T) {
	reg := NewRegistry()
	registerDefaultConverters(reg)
	registerDefaultConverters(reg)
	if err := reg.Register(nil); err == nil {
		t.Fatal("expected nil converter error")
	}
	dup := basicConverter{from: "YAML", to: "Scene"}
	if err := reg.Register(dup); !errors.Is(err, ErrConverterExists) {
		t.Fatalf("expected ErrConverterExists, got %v", err)
	}

	var pairs []string
	for _, d := range reg.List() {
		pairs = append(pairs, d.From+"->"+d.To)
	}
	want := "gltf->scene,mtlx->dot,mtlx->html,mtlx->json,mtlx->markdown,mtlx->org,mtlx->text,scene->mtlx,yaml->scene"
	if strings.Join(pairs, ",") != want {
		t.Fatalf("list = %v", pairs)
	}
}

func TestSceneFormatForPath(t *testing.T) {
	cases := map[string]string{
		"a/room.yaml": FormatYAML,
		"room.YML":    FormatYAML,
		"crate.gltf":  FormatGLTF,
		"crate.glb":   FormatGLTF,
	}
	for path, want := range cases {
		got, err := SceneFormatForPath(path)
		if err != nil || got != want {
			t.Fatalf("SceneFormatForPath(%q) = %q, %v", path, got, err)
		}
	}
	if _, err := SceneFormatForPath("scene.blend"); !errors.Is(err, mtlx.ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented, got %v", err)
	}
}
