package mtlx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultIndent is the per-level indentation used by Encode.
const DefaultIndent = "   "

// EncodeOptions controls XML serialization.
type EncodeOptions struct {
	Indent        string // indentation per nesting level; default DefaultIndent
	IncludeHeader bool   // emit xml.Header when true
	Compact       bool   // when true, disable indentation
}

// DefaultEncodeOptions matches the canonical on-disk layout.
var DefaultEncodeOptions = EncodeOptions{Indent: DefaultIndent, IncludeHeader: true}

// ParseOptions controls parsing fidelity.
type ParseOptions struct {
	// Validate runs Document.Validate after decoding.
	Validate bool
}

var defaultParseOptions = ParseOptions{}
var strictParseOptions = ParseOptions{Validate: true}

type ErrorType string

const (
	ErrDecode   ErrorType = "decode_error"
	ErrValidate ErrorType = "validation_error"
	ErrIO       ErrorType = "io_error"
)

// Error wraps decoding and file issues with context and type.
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// ParseString decodes a MaterialX document from a string.
func ParseString(body string) (Document, error) {
	return parseWithOptions(strings.NewReader(body), defaultParseOptions)
}

// ParseStringStrict decodes a MaterialX document and validates it.
func ParseStringStrict(body string) (Document, error) {
	return parseWithOptions(strings.NewReader(body), strictParseOptions)
}

// ParseReader decodes a MaterialX document from an io.Reader.
func ParseReader(r io.Reader) (Document, error) {
	return parseWithOptions(r, defaultParseOptions)
}

// ParseReaderWithOptions decodes a MaterialX document with fidelity controls.
func ParseReaderWithOptions(r io.Reader, opts ParseOptions) (Document, error) {
	return parseWithOptions(r, opts)
}

// ParseFile decodes a MaterialX document from the given file path.
func ParseFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, &Error{Type: ErrIO, Message: "open " + path, Err: err}
	}
	defer f.Close()
	return parseWithOptions(f, defaultParseOptions)
}

// ParseFileStrict decodes and validates a MaterialX file.
func ParseFileStrict(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, &Error{Type: ErrIO, Message: "open " + path, Err: err}
	}
	defer f.Close()
	return parseWithOptions(f, strictParseOptions)
}

// Encode writes the document with DefaultEncodeOptions.
func (d Document) Encode(w io.Writer) error {
	return d.EncodeWithOptions(w, DefaultEncodeOptions)
}

// EncodeWithOptions writes a MaterialX document with configurable formatting.
func (d Document) EncodeWithOptions(w io.Writer, opts EncodeOptions) error {
	enc := xml.NewEncoder(w)
	switch {
	case opts.Compact:
		enc.Indent("", "")
	case opts.Indent != "":
		enc.Indent("", opts.Indent)
	default:
		enc.Indent("", DefaultIndent)
	}
	if opts.IncludeHeader {
		if _, err := io.WriteString(w, xml.Header); err != nil {
			return err
		}
	}
	if err := encodeDocument(enc, w, d); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	if opts.Compact {
		return nil
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// MarshalIndent renders the document to text with the given options.
func (d Document) MarshalIndent(opts EncodeOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := d.EncodeWithOptions(&buf, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DumpFile writes the document to path atomically: the text goes to a
// temporary sibling first and replaces path only once fully written.
func (d Document) DumpFile(path string, opts EncodeOptions) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &Error{Type: ErrIO, Message: "write " + path, Err: err}
	}
	tmpName := tmp.Name()
	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return &Error{Type: ErrIO, Message: "write " + path, Err: err}
	}
	if err := d.EncodeWithOptions(tmp, opts); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &Error{Type: ErrIO, Message: "write " + path, Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return &Error{Type: ErrIO, Message: "write " + path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &Error{Type: ErrIO, Message: "write " + path, Err: err}
	}
	return nil
}

func parseWithOptions(r io.Reader, opts ParseOptions) (Document, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = true

	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Document{}, &Error{Type: ErrDecode, Message: "parse materialx: unexpected EOF (missing <materialx> root?)"}
			}
			return Document{}, wrapXMLError(err, "parse materialx")
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != rootElementName {
			return Document{}, &Error{
				Type:    ErrDecode,
				Message: fmt.Sprintf("parse materialx: expected <%s> root, got <%s>", rootElementName, start.Name.Local),
			}
		}
		doc, err := decodeMaterialX(dec, start)
		if err != nil {
			return Document{}, err
		}
		if opts.Validate {
			if err := doc.Validate(); err != nil {
				return Document{}, err
			}
		}
		return doc, nil
	}
}

func decodeMaterialX(dec *xml.Decoder, root xml.StartElement) (Document, error) {
	var doc Document
	for _, a := range root.Attr {
		if a.Name.Local == "version" {
			doc.Version = a.Value
		}
	}
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return doc, &Error{Type: ErrDecode, Message: "parse materialx: unexpected EOF before </materialx>"}
			}
			return doc, wrapXMLError(err, "parse materialx")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case string(ElementCollection):
				var c Collection
				if err := dec.DecodeElement(&c, &t); err != nil {
					return doc, wrapXMLError(err, "<collection>")
				}
				doc.AddCollection(c)
			case string(ElementOpGraph), "nodegraph":
				var g OpGraph
				if err := dec.DecodeElement(&g, &t); err != nil {
					return doc, wrapXMLError(err, "<opgraph>")
				}
				doc.AddOpGraph(g)
			case string(ElementShader):
				var s Shader
				if err := dec.DecodeElement(&s, &t); err != nil {
					return doc, wrapXMLError(err, "<shader>")
				}
				doc.AddShader(s)
			case string(ElementMaterial):
				var m Material
				if err := dec.DecodeElement(&m, &t); err != nil {
					return doc, wrapXMLError(err, "<material>")
				}
				doc.AddMaterial(m)
			case string(ElementLook):
				var l Look
				if err := dec.DecodeElement(&l, &t); err != nil {
					return doc, wrapXMLError(err, "<look>")
				}
				doc.AddLook(l)
			default:
				raw, err := consumeRaw(dec, t)
				if err != nil {
					return doc, wrapXMLError(err, "<"+t.Name.Local+">")
				}
				doc.AddRaw(t.Name.Local, raw)
			}
		case xml.EndElement:
			if t.Name.Local == rootElementName {
				return doc, nil
			}
		}
	}
}

// consumeRaw reads the current element (start already consumed) and returns the raw XML string.
func consumeRaw(dec *xml.Decoder, start xml.StartElement) (string, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	if err := enc.EncodeToken(start); err != nil {
		return "", err
	}
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
		if err := enc.EncodeToken(tok); err != nil {
			return "", err
		}
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// encodeDocument writes the materialx root element with ordered children.
func encodeDocument(enc *xml.Encoder, out io.Writer, doc Document) error {
	start := xml.StartElement{Name: xml.Name{Local: rootElementName}}
	if doc.Version != "" {
		start.Attr = append(start.Attr, attr("version", doc.Version))
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for _, el := range doc.resolveOrder() {
		if err := encodeElement(enc, out, doc, el); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

func encodeElement(enc *xml.Encoder, out io.Writer, doc Document, el Element) error {
	if el.Type == ElementUnknown {
		if el.RawXML == "" {
			return nil
		}
		if err := enc.Flush(); err != nil {
			return err
		}
		_, err := io.WriteString(out, el.RawXML)
		return err
	}
	payload := doc.payloadFor(el)
	if payload == nil {
		return fmt.Errorf("encode %s: index %d out of range", el.Type, el.Index)
	}
	return enc.EncodeElement(payload, xml.StartElement{Name: xml.Name{Local: string(el.Type)}})
}

func wrapXMLError(err error, context string) error {
	var se *xml.SyntaxError
	if errors.As(err, &se) {
		return &Error{Type: ErrDecode, Message: fmt.Sprintf("%s (line %d)", context, se.Line), Err: err}
	}
	return &Error{Type: ErrDecode, Message: context, Err: err}
}
