package mtlx

import "fmt"

// Canonical returns a copy of d whose generated names are replaced by
// position-based ones (prefix + ordinal of first appearance), with every
// reference rewritten to match. Two exports of the same scene are
// structurally identical exactly when their canonical forms are equal.
func (d Document) Canonical() Document {
	rename := make(map[string]string)
	for i, name := range d.Names() {
		if _, ok := rename[name]; !ok {
			rename[name] = fmt.Sprintf("%s%0*d", namePrefix(name), IDLength, i+1)
		}
	}
	ref := func(s string) string {
		if v, ok := rename[s]; ok {
			return v
		}
		return s
	}

	out := Document{Version: d.Version, Elements: append([]Element(nil), d.Elements...)}
	for _, c := range d.Collections {
		nc := Collection{Name: ref(c.Name)}
		for _, a := range c.Adds {
			nc.Adds = append(nc.Adds, CollectionAdd{Name: ref(a.Name), Geom: a.Geom})
		}
		out.Collections = append(out.Collections, nc)
	}
	for _, g := range d.OpGraphs {
		ng := OpGraph{Name: ref(g.Name)}
		for _, img := range g.Images {
			ng.Images = append(ng.Images, ImageNode{Name: ref(img.Name), Type: img.Type, Parameters: append([]Parameter(nil), img.Parameters...)})
		}
		for _, o := range g.Outputs {
			no := Output{Name: ref(o.Name)}
			for _, p := range o.Parameters {
				np := Parameter{Name: ref(p.Name), Type: p.Type, Value: p.Value}
				if p.Type == TypeOpGraphNode {
					np.Value = ref(p.Value)
				}
				no.Parameters = append(no.Parameters, np)
			}
			ng.Outputs = append(ng.Outputs, no)
		}
		out.OpGraphs = append(out.OpGraphs, ng)
	}
	for _, s := range d.Shaders {
		ns := Shader{Name: ref(s.Name), ShaderType: s.ShaderType, ShaderProgram: s.ShaderProgram}
		for _, in := range s.Inputs {
			ns.Inputs = append(ns.Inputs, ShaderInput{Name: in.Name, Type: in.Type, OpGraph: ref(in.OpGraph), GraphOutput: ref(in.GraphOutput)})
		}
		out.Shaders = append(out.Shaders, ns)
	}
	for _, m := range d.Materials {
		nm := Material{Name: ref(m.Name)}
		for _, r := range m.ShaderRefs {
			nm.ShaderRefs = append(nm.ShaderRefs, ShaderRef{Name: ref(r.Name)})
		}
		out.Materials = append(out.Materials, nm)
	}
	for _, l := range d.Looks {
		nl := Look{Name: ref(l.Name)}
		for _, ma := range l.Assigns {
			nl.Assigns = append(nl.Assigns, MaterialAssign{Name: ref(ma.Name), Collection: ref(ma.Collection)})
		}
		out.Looks = append(out.Looks, nl)
	}
	return out
}

// namePrefix returns the role prefix of a generated name ("co_" for "co_1a2b3c4d").
func namePrefix(name string) string {
	for i := 0; i < len(name); i++ {
		if name[i] == '_' {
			return name[:i+1]
		}
	}
	return ""
}
