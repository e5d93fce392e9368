package mtlx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Renderer renders a Document to a target representation.
type Renderer interface {
	Render(Document) ([]byte, error)
}

// XMLRenderer emits the canonical MaterialX text.
type XMLRenderer struct {
	Options EncodeOptions
}

// Render encodes the document; zero Options fall back to DefaultEncodeOptions.
func (r XMLRenderer) Render(doc Document) ([]byte, error) {
	opts := r.Options
	if opts == (EncodeOptions{}) {
		opts = DefaultEncodeOptions
	}
	return doc.MarshalIndent(opts)
}

// JSONRenderer emits the document's resolved bindings as JSON.
type JSONRenderer struct{}

type jsonSummary struct {
	Version  string    `json:"version,omitempty"`
	Bindings []Binding `json:"bindings"`
}

// Render marshals the bindings to indented JSON.
func (r JSONRenderer) Render(doc Document) ([]byte, error) {
	bindings := doc.Bindings()
	if bindings == nil {
		bindings = []Binding{}
	}
	return json.MarshalIndent(jsonSummary{Version: doc.Version, Bindings: bindings}, "", "  ")
}

// GraphvizRenderer emits Graphviz DOT text of the name references between elements.
type GraphvizRenderer struct {
	// IncludeGeoms adds a node per geometry path hanging off its collection.
	IncludeGeoms bool
}

// Render converts the document into DOT. Nodes and edges are sorted for stability.
func (r GraphvizRenderer) Render(doc Document) ([]byte, error) {
	nodes := map[string]map[string]string{}
	type edge struct{ from, to, label string }
	var edges []edge

	addNode := func(id, shape, label string) {
		nodes[id] = map[string]string{"shape": shape, "label": label}
	}
	for _, c := range doc.Collections {
		addNode(c.Name, "folder", c.Name)
		if r.IncludeGeoms {
			for _, g := range c.Geoms() {
				addNode(g, "plaintext", g)
				edges = append(edges, edge{c.Name, g, "geom"})
			}
		}
	}
	for _, g := range doc.OpGraphs {
		label := g.Name
		for _, img := range g.Images {
			if p := img.FilePath(); p != "" {
				label += "\\n" + p
			}
		}
		addNode(g.Name, "box", label)
	}
	for _, s := range doc.Shaders {
		addNode(s.Name, "ellipse", s.Name+"\\n"+s.ShaderProgram)
		for _, in := range s.Inputs {
			if in.OpGraph != "" {
				edges = append(edges, edge{s.Name, in.OpGraph, in.Name})
			}
		}
	}
	for _, m := range doc.Materials {
		addNode(m.Name, "hexagon", m.Name)
		for _, ref := range m.ShaderRefs {
			edges = append(edges, edge{m.Name, ref.Name, "shaderref"})
		}
	}
	for _, l := range doc.Looks {
		addNode(l.Name, "diamond", l.Name)
		for _, ma := range l.Assigns {
			edges = append(edges, edge{l.Name, ma.Name, "material"})
			edges = append(edges, edge{l.Name, ma.Collection, "collection"})
		}
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(&buf, "  %q%s;\n", id, buildDOTAttrs(nodes[id]))
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].from != edges[j].from {
			return edges[i].from < edges[j].from
		}
		return edges[i].to < edges[j].to
	})
	for _, e := range edges {
		fmt.Fprintf(&buf, "  %q -> %q%s;\n", e.from, e.to, buildDOTAttrs(map[string]string{"label": e.label}))
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

func buildDOTAttrs(m map[string]string) string {
	var parts []string
	for k, v := range m {
		if strings.TrimSpace(v) == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=\"%s\"", k, strings.ReplaceAll(v, `"`, `\"`)))
	}
	if len(parts) == 0 {
		return ""
	}
	sort.Strings(parts)
	return " [" + strings.Join(parts, ",") + "]"
}
