// Package snaplvm reads LabVIEW Measurement (LVM) files into a typed value tree.
//
// A parse yields a Document: the file header, the groups (LVM segments) with
// their channels, and side channels for groups dropped on row errors and
// fields whose type hint did not match. Unmarshal maps the tree onto caller
// types.
//
//	doc, err := snaplvm.Parse(f)
//	if err != nil {
//		return err
//	}
//	for _, group := range doc.Groups() {
//		for _, ch := range group.Channels() {
//			fmt.Println(ch.Name(), len(ch.Values()))
//		}
//	}
package snaplvm

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/transform"

	"github.com/shibukawa/snaplvm/parser"
)

// Parse reads a whole LVM stream.
//
// Framing problems (malformed escapes, unterminated headers, invalid or
// missing header keys) fail the parse. A group whose rows do not match its
// channel count is left out and reported by Document.Dropped.
func Parse(r io.Reader, opts ...Options) (*Document, error) {
	options := getDefaultOptions()
	if len(opts) > 0 {
		options = opts[0]
		applyDefaults(&options)
	}

	if err := validateOptions(&options); err != nil {
		return nil, err
	}

	parserOptions, err := options.parserOptions()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigValidation, err)
	}

	enc, err := resolveEncoding(options.Encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding '%s': %v", ErrConfigValidation, options.Encoding, err)
	}
	if enc != nil {
		r = transform.NewReader(r, enc.NewDecoder())
	}

	result, err := parser.New(r, parserOptions).Parse()
	if err != nil {
		return nil, err
	}

	doc := newDocument(result)

	if options.Logger != nil {
		options.Logger.Debug("document parsed",
			"groups", len(result.Groups),
			"dropped", len(result.Dropped),
			"degradations", len(result.Degradations))
	}

	return doc, nil
}

// ParseString parses LVM text.
func ParseString(s string, opts ...Options) (*Document, error) {
	return Parse(strings.NewReader(s), opts...)
}

// ParseBytes parses LVM data.
func ParseBytes(b []byte, opts ...Options) (*Document, error) {
	return Parse(bytes.NewReader(b), opts...)
}
