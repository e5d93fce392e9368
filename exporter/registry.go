package exporter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/atlas-foundry/mtlx-go-sdk/mtlx"
	"github.com/atlas-foundry/mtlx-go-sdk/scene"
)

// Format names understood by the default registry.
const (
	FormatYAML     = "yaml"
	FormatGLTF     = "gltf"
	FormatScene    = "scene"
	FormatMTLX     = "mtlx"
	FormatText     = "text"
	FormatDOT      = "dot"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatOrg      = "org"
	FormatHTML     = "html"
)

// Converter turns input of one format into another (e.g., yaml -> scene -> mtlx -> dot).
type Converter interface {
	From() string
	To() string
	Convert(ctx context.Context, input any, opts map[string]any) (any, error)
}

// Registry is a threadsafe registry for converters.
type Registry struct {
	mu         sync.RWMutex
	converters map[string]Converter
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{converters: make(map[string]Converter)}
}

// ErrConverterExists indicates a duplicate registration attempt.
var ErrConverterExists = errors.New("converter already registered")

// Register adds a converter. Returns ErrConverterExists when a from->to pair already exists.
func (r *Registry) Register(conv Converter) error {
	if conv == nil {
		return errors.New("converter is nil")
	}
	key := converterKey(conv.From(), conv.To())
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.converters[key]; exists {
		return fmt.Errorf("%w: %s", ErrConverterExists, key)
	}
	r.converters[key] = conv
	return nil
}

// Descriptor captures a registered mapping.
type Descriptor struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// List returns descriptors for registered converters.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.converters))
	for _, c := range r.converters {
		out = append(out, Descriptor{From: strings.ToLower(c.From()), To: strings.ToLower(c.To())})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From == out[j].From {
			return out[i].To < out[j].To
		}
		return out[i].From < out[j].From
	})
	return out
}

// Convert dispatches to a registered converter.
func (r *Registry) Convert(ctx context.Context, from, to string, input any, opts map[string]any) (any, error) {
	key := converterKey(from, to)
	r.mu.RLock()
	conv, ok := r.converters[key]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no converter for %s: %w", key, mtlx.ErrNotImplemented)
	}
	return conv.Convert(ctx, input, opts)
}

// Chain runs input through consecutive converters, e.g. ["yaml", "scene", "mtlx", "text"].
func (r *Registry) Chain(ctx context.Context, formats []string, input any, opts map[string]any) (any, error) {
	if len(formats) < 2 {
		return nil, fmt.Errorf("conversion chain needs at least two formats, got %v", formats)
	}
	out := input
	for i := 0; i+1 < len(formats); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var err error
		out, err = r.Convert(ctx, formats[i], formats[i+1], out, opts)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DefaultRegistry is pre-populated with the built-in converters.
var DefaultRegistry = newDefaultRegistry()

func newDefaultRegistry() *Registry {
	reg := NewRegistry()
	registerDefaultConverters(reg)
	return reg
}

func converterKey(from, to string) string {
	return strings.ToLower(from) + "->" + strings.ToLower(to)
}

// SceneFormatForPath picks the scene loader format from a file extension.
func SceneFormatForPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".gltf", ".glb":
		return FormatGLTF, nil
	default:
		return "", fmt.Errorf("unknown scene format for %q: %w", path, mtlx.ErrNotImplemented)
	}
}

// registerDefaultConverters wires built-ins onto the provided registry.
func registerDefaultConverters(reg *Registry) {
	// ignore duplicate errors to allow idempotent init in tests
	_ = reg.Register(basicConverter{
		from: FormatYAML,
		to:   FormatScene,
		fn: func(_ context.Context, input any, opts map[string]any) (any, error) {
			rd, err := readerFor(input, "yaml->scene")
			if err != nil {
				return nil, err
			}
			s, err := scene.DecodeYAML(rd)
			if err != nil {
				return nil, err
			}
			return applySelection(s, opts)
		},
	})
	_ = reg.Register(basicConverter{
		from: FormatGLTF,
		to:   FormatScene,
		fn: func(_ context.Context, input any, opts map[string]any) (any, error) {
			rd, err := readerFor(input, "gltf->scene")
			if err != nil {
				return nil, err
			}
			s, err := scene.DecodeGLTF(rd)
			if err != nil {
				return nil, err
			}
			return applySelection(s, opts)
		},
	})
	_ = reg.Register(basicConverter{
		from: FormatScene,
		to:   FormatMTLX,
		fn: func(_ context.Context, input any, opts map[string]any) (any, error) {
			r, ok := input.(scene.Reader)
			if !ok {
				return nil, fmt.Errorf("scene->mtlx converter expects scene.Reader, got %T", input)
			}
			doc, _ := ExportDocument(r, optionsFromMap(opts))
			return doc, nil
		},
	})
	renderers := map[string]mtlx.Renderer{
		FormatText:     mtlx.XMLRenderer{},
		FormatDOT:      mtlx.GraphvizRenderer{},
		FormatJSON:     mtlx.JSONRenderer{},
		FormatMarkdown: mtlx.ReportRenderer{Format: mtlx.FormatMarkdown},
		FormatOrg:      mtlx.ReportRenderer{Format: mtlx.FormatOrg},
		FormatHTML:     mtlx.ReportRenderer{Format: mtlx.FormatHTML},
	}
	for to, renderer := range renderers {
		renderer := renderer
		_ = reg.Register(basicConverter{
			from: FormatMTLX,
			to:   to,
			fn: func(_ context.Context, input any, opts map[string]any) (any, error) {
				doc, err := documentFrom(input)
				if err != nil {
					return nil, err
				}
				r := renderer
				if _, ok := r.(mtlx.XMLRenderer); ok {
					r = mtlx.XMLRenderer{Options: optionsFromMap(opts).Encode}
				}
				return r.Render(doc)
			},
		})
	}
}

type basicConverter struct {
	from string
	to   string
	fn   func(ctx context.Context, input any, opts map[string]any) (any, error)
}

func (c basicConverter) From() string { return c.from }
func (c basicConverter) To() string   { return c.to }
func (c basicConverter) Convert(ctx context.Context, input any, opts map[string]any) (any, error) {
	return c.fn(ctx, input, opts)
}

func readerFor(input any, name string) (io.Reader, error) {
	switch v := input.(type) {
	case string:
		return strings.NewReader(v), nil
	case []byte:
		return bytes.NewReader(v), nil
	case io.Reader:
		return v, nil
	default:
		return nil, fmt.Errorf("%s converter expects string, []byte, or io.Reader, got %T", name, input)
	}
}

func documentFrom(input any) (mtlx.Document, error) {
	switch v := input.(type) {
	case mtlx.Document:
		return v, nil
	case *mtlx.Document:
		if v == nil {
			return mtlx.Document{}, errors.New("mtlx converter got nil *Document")
		}
		return *v, nil
	case string:
		return mtlx.ParseString(v)
	case []byte:
		return mtlx.ParseReader(bytes.NewReader(v))
	default:
		return mtlx.Document{}, fmt.Errorf("mtlx converter expects Document, string, or []byte, got %T", input)
	}
}

func applySelection(s *scene.Scene, opts map[string]any) (*scene.Scene, error) {
	names, _ := opts["select"].([]string)
	if missing := s.Select(names...); len(missing) > 0 {
		return nil, fmt.Errorf("select: no object named %s", strings.Join(missing, ", "))
	}
	return s, nil
}

// optionsFromMap reads Options from converter opts:
// only_selected (bool), ids (mtlx.IDSource), version (string), indent (string), header (bool).
func optionsFromMap(opts map[string]any) Options {
	var o Options
	if v, ok := opts["only_selected"].(bool); ok {
		o.OnlySelected = v
	}
	if v, ok := opts["ids"].(mtlx.IDSource); ok {
		o.IDs = v
	}
	if v, ok := opts["version"].(string); ok {
		o.Version = v
	}
	enc := mtlx.DefaultEncodeOptions
	if v, ok := opts["indent"].(string); ok && v != "" {
		enc.Indent = v
	}
	if v, ok := opts["header"].(bool); ok {
		enc.IncludeHeader = v
	}
	o.Encode = enc
	return o
}
