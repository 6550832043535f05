// Package pdfstruct opens PDF files and exposes their logical structure
// tree and info-dictionary metadata as a read-only in-memory model.
package pdfstruct

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/askeland/pdftriage/internal/structtree"
	pdflib "github.com/ledongthuc/pdf"
)

// FileError indicates the file could not be opened or is not a valid
// PDF container. The batch reports it as an error row and moves on.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("open %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// StructureError indicates the container opened but its structure
// catalog was malformed beyond safe interpretation. The document is
// treated as untagged.
type StructureError struct {
	Err error
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("structure tree: %v", e.Err)
}

func (e *StructureError) Unwrap() error { return e.Err }

var errNotPDF = errors.New("missing %PDF- signature")

// Document is one file's parsed accessibility model. Root is nil when
// the document carries no logical structure tree. StructErr records a
// malformed structure catalog that was degraded to "untagged".
type Document struct {
	Root      *structtree.Node
	Meta      structtree.Metadata
	StructErr error
}

// Tree depth past which a structure catalog is considered malformed.
// Real tag trees are shallow; a chain this long means a reference loop.
const maxTreeDepth = 512

// Open parses the PDF at path and returns its structure tree and
// metadata. The file handle is closed before Open returns, on all
// paths. A malformed structure catalog degrades to an untagged
// Document; an unreadable or non-PDF file returns a *FileError.
func Open(path string) (*Document, error) {
	if err := checkSignature(path); err != nil {
		return nil, &FileError{Path: path, Err: err}
	}

	f, r, err := openReader(path)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	defer f.Close()

	root, structErr := readStructTree(r)
	meta, metaErr := readInfo(r)
	if metaErr != nil && structErr != nil {
		// Nothing readable beyond the container itself.
		return nil, &FileError{Path: path, Err: metaErr}
	}

	return &Document{Root: root, Meta: meta, StructErr: structErr}, nil
}

// checkSignature requires a %PDF- marker within the first 1024 bytes,
// where the PDF spec allows the header to sit.
func checkSignature(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, 1024)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return err
	}
	if !bytes.Contains(buf[:n], []byte("%PDF-")) {
		return errNotPDF
	}
	return nil
}

// openReader opens the file and hands it to the PDF library. The
// handle is owned here, not by pdflib.Open, because the library panics
// on some malformed containers and would otherwise strand the
// descriptor: on both the error and panic paths the file is closed and
// a nil handle returned. On success the caller owns f.
func openReader(path string) (f *os.File, r *pdflib.Reader, err error) {
	f, err = os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if p := recover(); p != nil {
			f.Close()
			f, r, err = nil, nil, fmt.Errorf("parse pdf: %v", p)
		}
	}()

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	r, err = pdflib.NewReader(f, fi.Size())
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, r, nil
}

// readStructTree materializes the tag tree under Root/StructTreeRoot.
// Returns (nil, nil) for untagged documents.
func readStructTree(r *pdflib.Reader) (root *structtree.Node, err error) {
	defer func() {
		if p := recover(); p != nil {
			root, err = nil, &StructureError{Err: fmt.Errorf("object access: %v", p)}
		}
	}()

	st := r.Trailer().Key("Root").Key("StructTreeRoot")
	if st.Kind() != pdflib.Dict {
		return nil, nil
	}

	roles := readRoleMap(st.Key("RoleMap"))
	root = &structtree.Node{Type: "StructTreeRoot"}
	if err := appendChildren(root, st.Key("K"), roles, 0); err != nil {
		return nil, &StructureError{Err: err}
	}
	return root, nil
}

// appendChildren descends a /K entry, which may be a single element, an
// array of kids, or a marked-content reference. Only /K is followed,
// never /P, so a well-formed tree cannot alias or cycle; the depth cap
// catches trees that loop through a broken reference anyway.
func appendChildren(parent *structtree.Node, k pdflib.Value, roles map[string]string, depth int) error {
	if depth > maxTreeDepth {
		return fmt.Errorf("tree deeper than %d levels", maxTreeDepth)
	}

	switch k.Kind() {
	case pdflib.Array:
		for i := 0; i < k.Len(); i++ {
			if err := appendChildren(parent, k.Index(i), roles, depth); err != nil {
				return err
			}
		}
	case pdflib.Dict, pdflib.Stream:
		// MCR and OBJR kids reference page content, not structure.
		if t := k.Key("Type").Name(); t == "MCR" || t == "OBJR" {
			return nil
		}
		n := elementNode(k, roles)
		parent.Children = append(parent.Children, n)
		return appendChildren(n, k.Key("K"), roles, depth+1)
	}
	// Integer kids are marked-content IDs; nothing to descend.
	return nil
}

// elementNode converts one structure element dictionary to a Node,
// resolving its /S type through the role map.
func elementNode(v pdflib.Value, roles map[string]string) *structtree.Node {
	typ := v.Key("S").Name()
	if mapped, ok := roles[typ]; ok {
		typ = mapped
	}

	n := &structtree.Node{Type: typ, Alt: v.Key("Alt").Text()}
	for _, key := range []string{"Lang", "ActualText", "T", "E"} {
		av := v.Key(key)
		if av.Kind() != pdflib.String {
			continue
		}
		if n.Attrs == nil {
			n.Attrs = make(map[string]string)
		}
		n.Attrs[key] = av.Text()
	}
	return n
}

// readRoleMap flattens the /RoleMap dictionary, resolving chains of
// custom roles to their final standard type.
func readRoleMap(v pdflib.Value) map[string]string {
	if v.Kind() != pdflib.Dict {
		return nil
	}
	raw := make(map[string]string)
	for _, key := range v.Keys() {
		if target := v.Key(key).Name(); target != "" {
			raw[key] = target
		}
	}

	roles := make(map[string]string, len(raw))
	for key := range raw {
		target := raw[key]
		for hops := 0; hops < len(raw); hops++ {
			next, ok := raw[target]
			if !ok {
				break
			}
			target = next
		}
		roles[key] = target
	}
	return roles
}

// readInfo snapshots the string-valued entries of the info dictionary.
func readInfo(r *pdflib.Reader) (meta structtree.Metadata, err error) {
	defer func() {
		if p := recover(); p != nil {
			meta, err = nil, fmt.Errorf("info dictionary: %v", p)
		}
	}()

	info := r.Trailer().Key("Info")
	if info.Kind() != pdflib.Dict {
		return nil, nil
	}

	meta = make(structtree.Metadata)
	for _, key := range info.Keys() {
		if v := info.Key(key); v.Kind() == pdflib.String {
			meta[key] = v.Text()
		}
	}
	return meta, nil
}
