package merkle

// Object is a closed sum of Blob | Tree: a single file or a directory node
// in the Merkle structure. The unexported marker method keeps the set
// closed to this package — callers type-switch on *Blob/*Tree rather than
// implementing Object themselves, giving exhaustive-match guarantees at
// every case split (Hash, Path, Describe, diff, json).
type Object interface {
	// Hash returns the object's content hash.
	Hash() ObjectHash
	// Path returns the path the walker observed for this object. It is
	// informational only and never participates in the hash.
	Path() string
	// Parent returns the hash of the containing Tree, and whether this
	// object has a parent at all (false only for the root).
	Parent() (ObjectHash, bool)
	// Describe flattens the object to the unit used by the differ.
	Describe() ObjDescription

	isObject()
}

// ObjDescription is a flat, unpersisted description of one node, the unit
// of diff output.
type ObjDescription struct {
	Hash   ObjectHash
	Path   string
	IsBlob bool
}

// Blob represents a single file.
type Blob struct {
	hash      ObjectHash
	path      string
	parent    ObjectHash
	hasParent bool
}

func (b *Blob) Hash() ObjectHash { return b.hash }
func (b *Blob) Path() string     { return b.path }

func (b *Blob) Parent() (ObjectHash, bool) { return b.parent, b.hasParent }

func (b *Blob) Describe() ObjDescription {
	return ObjDescription{Hash: b.hash, Path: b.path, IsBlob: true}
}

func (*Blob) isObject() {}

// Tree represents a directory: an ordered sequence of child Objects.
type Tree struct {
	hash      ObjectHash
	path      string
	parent    ObjectHash
	hasParent bool
	children  []Object
}

func (t *Tree) Hash() ObjectHash { return t.hash }
func (t *Tree) Path() string     { return t.path }

func (t *Tree) Parent() (ObjectHash, bool) { return t.parent, t.hasParent }

func (t *Tree) Describe() ObjDescription {
	return ObjDescription{Hash: t.hash, Path: t.path, IsBlob: false}
}

func (*Tree) isObject() {}

// Children returns the tree's ordered child objects.
func (t *Tree) Children() []Object { return t.children }

// ChildHashes returns just the child hashes, in order, as used by TreeHash
// and the JSONL codec.
func (t *Tree) ChildHashes() []ObjectHash {
	hashes := make([]ObjectHash, len(t.children))
	for i, c := range t.children {
		hashes[i] = c.Hash()
	}
	return hashes
}

// setParent assigns parent to this node and recurses into children; used
// by the builder's root-only post-pass (§4.3 step 5).
func setParent(o Object, parent ObjectHash) {
	switch n := o.(type) {
	case *Blob:
		n.parent, n.hasParent = parent, true
	case *Tree:
		n.parent, n.hasParent = parent, true
		for _, c := range n.children {
			setParent(c, n.hash)
		}
	}
}

// EmptyTree returns the canonical empty tree at path, used when a prior
// tree file is absent.
func EmptyTree(path string) *Tree {
	return &Tree{hash: TreeHash(nil), path: path}
}
