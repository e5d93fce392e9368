//go:build ignore

// mtlx_compare checks that two MaterialX exports describe the same looks,
// ignoring the generated names.
// Run with: go run tools/mtlx_compare.go --a first.mtlx --b second.mtlx
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/atlas-foundry/mtlx-go-sdk/mtlx"
)

func main() {
	a := flag.String("a", "", "first .mtlx file")
	b := flag.String("b", "", "second .mtlx file")
	strict := flag.Bool("strict", false, "validate both documents before comparing")
	flag.Parse()
	if *a == "" || *b == "" {
		fmt.Println("missing --a or --b")
		os.Exit(1)
	}

	left, err := canonicalText(*a, *strict)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	right, err := canonicalText(*b, *strict)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if diff := diffLines(left, right); diff != "" {
		fmt.Println("DIFF:\n" + diff)
		os.Exit(1)
	}
	fmt.Println("OK: documents match up to generated names")
}

func canonicalText(path string, strict bool) (string, error) {
	parse := mtlx.ParseFile
	if strict {
		parse = mtlx.ParseFileStrict
	}
	doc, err := parse(path)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := doc.Canonical().Encode(&buf); err != nil {
		return "", fmt.Errorf("encode %s: %w", path, err)
	}
	return buf.String(), nil
}

// diffLines reports lines that differ position by position.
func diffLines(a, b string) string {
	al := strings.Split(a, "\n")
	bl := strings.Split(b, "\n")
	n := len(al)
	if len(bl) > n {
		n = len(bl)
	}
	var out strings.Builder
	for i := 0; i < n; i++ {
		var l, r string
		if i < len(al) {
			l = al[i]
		}
		if i < len(bl) {
			r = bl[i]
		}
		if l != r {
			fmt.Fprintf(&out, "%d:\n  - %s\n  + %s\n", i+1, l, r)
		}
	}
	return out.String()
}
