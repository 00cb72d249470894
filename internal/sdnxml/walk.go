// Package sdnxml streams the OFAC advanced sanctions XML publication.
//
// The document is never held in memory as a tree. Each pass walks the token
// stream and decodes only the elements it cares about.
package sdnxml

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

const Namespace = "https://sanctionslistservice.ofac.treas.gov/api/PublicationPreview/exports/ADVANCED_XML"

var (
	// ErrStop ends a walk early without reporting an error.
	ErrStop = errors.New("stop walk")

	ErrForeignNamespace = errors.New("element in unexpected namespace")
)

// Source opens a fresh reader over the same document for every pass.
type Source interface {
	Open() (io.ReadCloser, error)
}

// HandlerFunc receives the decoder positioned on a matched start element.
// It must consume the element, normally with DecodeElement.
type HandlerFunc func(d *xml.Decoder, start xml.StartElement) error

const cancelCheckInterval = 4096

// Walk opens src and calls fn for every start element whose local name is
// local. A malformed document is an error.
func Walk(ctx context.Context, src Source, local string, fn HandlerFunc) error {
	r, err := src.Open()
	if err != nil {
		return fmt.Errorf("opening document: %w", err)
	}
	defer r.Close()

	return WalkReader(ctx, r, local, fn)
}

func WalkReader(ctx context.Context, r io.Reader, local string, fn HandlerFunc) error {
	decoder := xml.NewDecoder(r)

	tokens := 0
	for {
		tokens++
		if tokens%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		tok, err := decoder.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading document: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != local {
			continue
		}
		if start.Name.Space != "" && start.Name.Space != Namespace {
			return fmt.Errorf("%s: %w: %s", local, ErrForeignNamespace, start.Name.Space)
		}
		if err := fn(decoder, start); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}
}

// Attr returns the value of the unqualified attribute name, or "".
func Attr(start xml.StartElement, name string) string {
	for _, attr := range start.Attr {
		if attr.Name.Local == name {
			return attr.Value
		}
	}
	return ""
}
