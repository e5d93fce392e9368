// Package exporter turns a host scene into a MaterialX look document: one
// collection, opgraph, shader, material and look per textured mesh.
package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/atlas-foundry/mtlx-go-sdk/mtlx"
	"github.com/atlas-foundry/mtlx-go-sdk/scene"
)

// Options controls an export run.
type Options struct {
	// OnlySelected restricts the run to meshes the host marks as selected.
	OnlySelected bool
	// IDs supplies name suffixes; nil draws random UUID-based suffixes.
	IDs mtlx.IDSource
	// Version, when set, is written on the root element.
	Version string
	// Encode controls serialization; the zero value means mtlx.DefaultEncodeOptions.
	Encode mtlx.EncodeOptions
	// Logger receives debug lines for skipped meshes; nil discards.
	Logger *slog.Logger
}

// Summary reports what an export run produced.
type Summary struct {
	Exported []string // geometry paths of meshes that produced a look
	Skipped  []string // geometry paths of meshes without a usable texture
	Elements int
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (o Options) encodeOptions() mtlx.EncodeOptions {
	if o.Encode == (mtlx.EncodeOptions{}) {
		return mtlx.DefaultEncodeOptions
	}
	return o.Encode
}

// ExportOne appends obj's collection, opgraph, shader, material and look to doc,
// in that order. It appends nothing and returns false when obj's active
// material has no usable image texture.
func ExportOne(doc *mtlx.Document, n *mtlx.Namer, r scene.Reader, obj *scene.Object) bool {
	texture := scene.ResolveTexture(r, r.ActiveMaterial(obj))
	if texture == "" {
		return false
	}
	return mtlx.AppendTexturedLook(doc, n, scene.GeomPath(r, obj), texture)
}

// ExportDocument builds the document for every mesh of r (or only the selected
// ones), in the host's listing order. An empty mesh set yields an empty document.
func ExportDocument(r scene.Reader, opts Options) (mtlx.Document, Summary) {
	log := opts.logger()
	doc := mtlx.Document{Version: opts.Version}
	namer := mtlx.NewNamer(opts.IDs)
	var sum Summary
	for _, obj := range scene.Meshes(r, opts.OnlySelected) {
		geom := scene.GeomPath(r, obj)
		if ExportOne(&doc, namer, r, obj) {
			sum.Exported = append(sum.Exported, geom)
			continue
		}
		log.Debug("skipping mesh without image texture", "mesh", obj.Name, "geom", geom)
		sum.Skipped = append(sum.Skipped, geom)
	}
	sum.Elements = doc.Len()
	return doc, sum
}

// Render builds the document and encodes it to text.
func Render(r scene.Reader, opts Options) ([]byte, Summary, error) {
	doc, sum := ExportDocument(r, opts)
	out, err := doc.MarshalIndent(opts.encodeOptions())
	if err != nil {
		return nil, sum, fmt.Errorf("encode materialx: %w", err)
	}
	return out, sum, nil
}

// Export builds the document and writes it to dest, replacing any existing file.
// Write failures are returned; dest is left untouched when they happen.
func Export(r scene.Reader, dest string, opts Options) (Summary, error) {
	start := time.Now()
	doc, sum := ExportDocument(r, opts)
	if err := doc.DumpFile(dest, opts.encodeOptions()); err != nil {
		return sum, fmt.Errorf("export materialx: %w", err)
	}
	opts.logger().Info("materialx export finished",
		"dest", dest,
		"looks", len(sum.Exported),
		"skipped", len(sum.Skipped),
		"elapsed", time.Since(start))
	return sum, nil
}
