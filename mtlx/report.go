package mtlx

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	goorg "github.com/niklasfasching/go-org/org"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// TextFormat enumerates report targets.
type TextFormat string

const (
	FormatMarkdown TextFormat = "markdown"
	FormatOrg      TextFormat = "org"
	FormatHTML     TextFormat = "html"
)

// ErrNotImplemented signals that a report or render target is not supported.
var ErrNotImplemented = errors.New("format not implemented")

// RenderReport renders a human-readable summary of the document's looks.
// HTML is produced from the markdown report.
func RenderReport(doc Document, format TextFormat) (string, error) {
	switch format {
	case FormatMarkdown:
		return renderMarkdown(doc), nil
	case FormatOrg:
		return renderOrg(doc)
	case FormatHTML:
		return renderHTML(doc)
	default:
		return "", ErrNotImplemented
	}
}

// ReportRenderer adapts RenderReport to the Renderer interface.
type ReportRenderer struct {
	Format TextFormat
}

// Render implements Renderer.
func (r ReportRenderer) Render(doc Document) ([]byte, error) {
	out, err := RenderReport(doc, r.Format)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

func renderMarkdown(doc Document) string {
	var b strings.Builder
	b.WriteString("# MaterialX looks\n\n")
	bindings := doc.Bindings()
	fmt.Fprintf(&b, "%d look(s), %d collection(s), %d material(s).\n\n", len(doc.Looks), len(doc.Collections), len(doc.Materials))
	if len(bindings) == 0 {
		return strings.TrimSpace(b.String())
	}
	b.WriteString("| look | material | texture | geometry |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, bd := range bindings {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			mdCell(bd.Look), mdCell(bd.Material), mdCell(bd.Texture), mdCell(strings.Join(bd.Geoms, ", ")))
	}
	return strings.TrimSpace(b.String())
}

func mdCell(s string) string {
	if s == "" {
		return "-"
	}
	return "`" + strings.ReplaceAll(s, "|", `\|`) + "`"
}

func renderOrg(doc Document) (string, error) {
	var b strings.Builder
	b.WriteString("* MaterialX looks\n\n")
	for _, bd := range doc.Bindings() {
		fmt.Fprintf(&b, "** %s\n\n", bd.Look)
		fmt.Fprintf(&b, "- material :: %s\n", orgValue(bd.Material))
		fmt.Fprintf(&b, "- shader :: %s\n", orgValue(bd.Shader))
		fmt.Fprintf(&b, "- texture :: %s\n", orgValue(bd.Texture))
		fmt.Fprintf(&b, "- geometry :: %s\n\n", orgValue(strings.Join(bd.Geoms, ", ")))
	}
	o := goorg.New().Parse(strings.NewReader(b.String()), "")
	out, err := o.Write(goorg.NewOrgWriter())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func orgValue(s string) string {
	if s == "" {
		return "-"
	}
	return "=" + s + "="
}

func renderHTML(doc Document) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := md.Convert([]byte(renderMarkdown(doc)), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
