package merkle

// DiffTrees computes the (add, remove) ObjDescription sequences needed to
// transition oldTree into newTree. If the two roots share a hash, both
// sequences are empty — unchanged subtrees are never descended into.
// Ordering within each sequence is unspecified; callers must not depend
// on it.
func DiffTrees(oldTree, newTree *Tree) (add, remove []ObjDescription) {
	if oldTree.hash == newTree.hash {
		return nil, nil
	}

	add = append(add, newTree.Describe())
	remove = append(remove, oldTree.Describe())

	childAdd, childRemove := diffChildren(oldTree, newTree)
	add = append(add, childAdd...)
	remove = append(remove, childRemove...)
	return add, remove
}

// diffChildren matches old.children to new.children by path only — no
// rename detection. Matched pairs recurse via objectDiff; unmatched new
// children are wholly new (all descendants go to add); unmatched old
// children are wholly removed (all descendants go to remove).
func diffChildren(old, new *Tree) (add, remove []ObjDescription) {
	oldByPath := make(map[string]Object, len(old.children))
	for _, c := range old.children {
		oldByPath[c.Path()] = c
	}

	for _, c := range new.children {
		if oc, ok := oldByPath[c.Path()]; ok {
			delete(oldByPath, c.Path())
			a, r := objectDiff(oc, c)
			add = append(add, a...)
			remove = append(remove, r...)
			continue
		}
		add = append(add, allDescendants(c)...)
	}

	for _, oc := range oldByPath {
		remove = append(remove, allDescendants(oc)...)
	}

	return add, remove
}

// objectDiff diffs two objects known to correspond to the same path across
// old and new trees, covering the four cases: equal, Tree/Tree, Blob/Blob,
// and the two blob↔tree type-change cases.
func objectDiff(old, new Object) (add, remove []ObjDescription) {
	if old.Hash() == new.Hash() {
		return nil, nil
	}

	oldTree, oldIsTree := old.(*Tree)
	newTree, newIsTree := new.(*Tree)

	switch {
	case oldIsTree && newIsTree:
		add = append(add, newTree.Describe())
		remove = append(remove, oldTree.Describe())
		childAdd, childRemove := diffChildren(oldTree, newTree)
		add = append(add, childAdd...)
		remove = append(remove, childRemove...)

	case !oldIsTree && !newIsTree:
		add = append(add, new.Describe())
		remove = append(remove, old.Describe())

	case oldIsTree && !newIsTree:
		remove = append(remove, allDescendants(oldTree)...)
		add = append(add, new.Describe())

	default: // blob -> tree
		remove = append(remove, old.Describe())
		add = append(add, allDescendants(newTree)...)
	}

	return add, remove
}

// allDescendants flattens o and, if it is a Tree, every descendant,
// pre-order, including o itself.
func allDescendants(o Object) []ObjDescription {
	switch n := o.(type) {
	case *Blob:
		return []ObjDescription{n.Describe()}
	case *Tree:
		out := make([]ObjDescription, 0, len(n.children)+1)
		out = append(out, n.Describe())
		for _, c := range n.children {
			out = append(out, allDescendants(c)...)
		}
		return out
	default:
		return nil
	}
}
