// Package corpus reads and writes entity records as JSON lines, one object
// per entity.
package corpus

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"

	"sdnscreen/internal/model"
)

const maxLineSize = 16 << 20

type Writer struct {
	buf   *bufio.Writer
	enc   *json.Encoder
	count int
}

func NewWriter(w io.Writer) *Writer {
	buf := bufio.NewWriter(w)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	return &Writer{buf: buf, enc: enc}
}

// Emit writes one record. Empty lists are encoded as [] rather than null.
func (w *Writer) Emit(ctx context.Context, e model.Entity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := w.enc.Encode(e.Normalized()); err != nil {
		return fmt.Errorf("encoding entity %d: %w", e.EntityID, err)
	}
	w.count++
	return nil
}

func (w *Writer) Flush() error {
	return w.buf.Flush()
}

func (w *Writer) Count() int {
	return w.count
}

// Read yields the records in r in order. Blank lines are ignored; the first
// malformed line ends the sequence with an error naming its line number.
func Read(r io.Reader) iter.Seq2[model.Entity, error] {
	return func(yield func(model.Entity, error) bool) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

		line := 0
		for scanner.Scan() {
			line++
			data := bytes.TrimSpace(scanner.Bytes())
			if len(data) == 0 {
				continue
			}
			var e model.Entity
			if err := json.Unmarshal(data, &e); err != nil {
				yield(model.Entity{}, fmt.Errorf("decoding line %d: %w", line, err))
				return
			}
			if !yield(e.Normalized(), nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield(model.Entity{}, fmt.Errorf("reading line %d: %w", line+1, err))
		}
	}
}

// ReadFile is Read over the file at path. The file is opened when the
// sequence is ranged over and closed when iteration stops.
func ReadFile(path string) iter.Seq2[model.Entity, error] {
	return func(yield func(model.Entity, error) bool) {
		f, err := os.Open(path)
		if err != nil {
			yield(model.Entity{}, fmt.Errorf("opening corpus: %w", err))
			return
		}
		defer f.Close()

		for e, err := range Read(f) {
			if !yield(e, err) || err != nil {
				return
			}
		}
	}
}

// Collect drains seq into a slice.
func Collect(seq iter.Seq2[model.Entity, error]) ([]model.Entity, error) {
	var out []model.Entity
	for e, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// WriteFile runs fn against a Writer backed by a temporary file next to path
// and renames it into place once fn and the flush succeed. On failure path is
// left untouched.
func WriteFile(path string, fn func(*Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating corpus directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp corpus: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := NewWriter(tmp)
	if err := fn(w); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing corpus: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing corpus: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing corpus: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing corpus: %w", err)
	}
	return nil
}
