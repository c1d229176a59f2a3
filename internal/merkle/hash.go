package merkle

import (
	"crypto/sha1"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ObjectHash is a content hash shared by blobs and trees: SHA-1 over a
// preimage that differs by a disjoint prefix ("blob " vs "tree"), so
// blob/tree hash collisions are not a concern in practice.
type ObjectHash [20]byte

// String renders the hash as lowercase hex.
func (h ObjectHash) String() string {
	const hexDigits = "0123456789abcdef"
	buf := make([]byte, 40)
	for i, b := range h {
		buf[i*2] = hexDigits[b>>4]
		buf[i*2+1] = hexDigits[b&0x0f]
	}
	return string(buf)
}

// IsZero reports whether h is the zero hash (used to mean "no parent").
func (h ObjectHash) IsZero() bool {
	return h == ObjectHash{}
}

// ErrNotUTF8 signals that a file's contents could not be decoded as UTF-8
// and must be silently skipped from the tree, per the blob construction
// contract.
type notUTF8 struct{}

func (notUTF8) Error() string { return "content is not valid UTF-8" }

// ErrNotUTF8 is returned by BlobHash when content does not decode as UTF-8.
var ErrNotUTF8 error = notUTF8{}

// extOf returns a path's extension without the leading dot, or "" if none.
func extOf(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimPrefix(ext, ".")
}

// BlobHash computes the content hash of a file given its raw bytes and
// path (used only to derive the extension). It returns ErrNotUTF8 if
// content is not valid UTF-8, in which case the caller must omit the file
// from the tree rather than treat this as a fatal error.
func BlobHash(path string, content []byte) (ObjectHash, error) {
	if !utf8.Valid(content) {
		return ObjectHash{}, ErrNotUTF8
	}
	h := sha1.New()
	h.Write([]byte("blob "))
	h.Write([]byte(extOf(path)))
	h.Write([]byte(" "))
	h.Write(content)
	var out ObjectHash
	copy(out[:], h.Sum(nil))
	return out, nil
}

// TreeHash computes a directory's content hash from its children's hashes,
// in order. An empty children slice yields the hash of the empty tree.
func TreeHash(children []ObjectHash) ObjectHash {
	h := sha1.New()
	h.Write([]byte("tree"))
	for _, c := range children {
		h.Write(c[:])
	}
	var out ObjectHash
	copy(out[:], h.Sum(nil))
	return out
}
