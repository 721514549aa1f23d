// Package xmlutil is a small streaming reader over encoding/xml for
// attribute-heavy documents such as device schemas.
//
// The Reader tracks element depth, so callbacks passed to Each may consume
// as much or as little of a child element as they like; whatever they
// leave unread is skipped before the next sibling.
//
//	r := xmlutil.NewReader(f)
//	root, err := r.Next()
//	...
//	err = r.Each(root, "Setting", func(se xml.StartElement) error {
//	    id, _ := xmlutil.Attr(se, "id")
//	    max, err := xmlutil.AttrFloat(se, "max")
//	    ...
//	})
package xmlutil

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Domain errors for xmlutil.
var (
	// ErrMissingAttribute is returned when a required attribute is absent.
	ErrMissingAttribute = errors.New("xmlutil: missing attribute")

	// ErrInvalidAttribute is returned when an attribute cannot be parsed.
	ErrInvalidAttribute = errors.New("xmlutil: invalid attribute")

	// ErrMalformed wraps decoder errors.
	ErrMalformed = errors.New("xmlutil: malformed document")
)

// Reader reads start elements from an XML stream.
// A Reader is not safe for concurrent use.
type Reader struct {
	dec   *xml.Decoder
	depth int
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	dec := xml.NewDecoder(r)
	dec.Strict = true
	return &Reader{dec: dec}
}

// Depth returns the number of elements currently open.
func (r *Reader) Depth() int { return r.depth }

func (r *Reader) token() (xml.Token, error) {
	tok, err := r.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			if r.depth > 0 {
				return nil, fmt.Errorf("%w: unexpected end of document", ErrMalformed)
			}
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	switch tok.(type) {
	case xml.StartElement:
		r.depth++
	case xml.EndElement:
		r.depth--
	}
	return tok, nil
}

// Next advances to the next start element at any depth. Text, comments
// and end elements are passed over. Returns io.EOF at the end of the
// document.
func (r *Reader) Next() (xml.StartElement, error) {
	for {
		tok, err := r.token()
		if err != nil {
			return xml.StartElement{}, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se.Copy(), nil
		}
	}
}

// Skip consumes the rest of the element most recently returned by Next.
func (r *Reader) Skip() error {
	return r.skipTo(r.depth - 1)
}

// skipTo reads until depth drops to target.
func (r *Reader) skipTo(target int) error {
	for r.depth > target {
		if _, err := r.token(); err != nil {
			return err
		}
	}
	return nil
}

// ReadText consumes the rest of the current element and returns its
// character data, trimmed. Text inside nested elements is included.
func (r *Reader) ReadText() (string, error) {
	target := r.depth - 1
	var b strings.Builder
	for r.depth > target {
		tok, err := r.token()
		if err != nil {
			return "", err
		}
		if cd, ok := tok.(xml.CharData); ok {
			b.Write(cd)
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// Decode unmarshals the current element into v, consuming it.
func (r *Reader) Decode(se xml.StartElement, v any) error {
	if err := r.dec.DecodeElement(v, &se); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	// DecodeElement read the end element without going through token.
	r.depth--
	return nil
}

// Each calls fn for every direct child of parent whose local name is name
// (all children when name is empty), then consumes parent's end element.
// parent must be the element most recently returned by Next.
//
// fn may leave the child partly unread. Iteration stops at the first
// error fn returns.
func (r *Reader) Each(parent xml.StartElement, name string, fn func(xml.StartElement) error) error {
	parentDepth := r.depth
	for {
		tok, err := r.token()
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.EndElement:
			if r.depth < parentDepth {
				return nil
			}
		case xml.StartElement:
			childDepth := r.depth
			if name == "" || t.Name.Local == name {
				if err := fn(t.Copy()); err != nil {
					return fmt.Errorf("<%s>: %w", t.Name.Local, err)
				}
			}
			if err := r.skipTo(childDepth - 1); err != nil {
				return err
			}
		}
	}
}

// Attr returns the value of the attribute with the given local name.
func Attr(se xml.StartElement, name string) (string, bool) {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrOr returns the attribute value, or def when absent.
func AttrOr(se xml.StartElement, name, def string) string {
	if v, ok := Attr(se, name); ok {
		return v
	}
	return def
}

// AttrFloat parses a required numeric attribute.
func AttrFloat(se xml.StartElement, name string) (float64, error) {
	v, ok := Attr(se, name)
	if !ok {
		return 0, fmt.Errorf("%w: %s on <%s>", ErrMissingAttribute, name, se.Name.Local)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q on <%s>", ErrInvalidAttribute, name, v, se.Name.Local)
	}
	return f, nil
}
