package domain

import "iter"

// NodeStore is the exclusive owner of all live graph nodes, indexed two
// ways: by (owning file, key) and by key alone across files. The empty
// string stands in for "no owning file yet" (expat nodes). Every mutation
// goes through Insert, Erase, or Relocate so the two indices never diverge.
type NodeStore struct {
	byFile map[InternedString]map[Key]*Node
	byKey  map[Key]map[InternedString]*Node
}

// NewNodeStore creates an empty NodeStore.
func NewNodeStore() *NodeStore {
	return &NodeStore{
		byFile: make(map[InternedString]map[Key]*Node),
		byKey:  make(map[Key]map[InternedString]*Node),
	}
}

// Find returns the node at (file, key), or nil. file may be the empty
// expat sentinel.
func (s *NodeStore) Find(file InternedString, key Key) *Node {
	return s.byFile[file][key]
}

// Insert adds a node under its owning file and key. It reports false and
// leaves the store untouched when the slot is already occupied.
func (s *NodeStore) Insert(n *Node) bool {
	bucket := s.byFile[n.owningFile]
	if bucket == nil {
		bucket = make(map[Key]*Node)
		s.byFile[n.owningFile] = bucket
	}
	if _, occupied := bucket[n.key]; occupied {
		return false
	}
	bucket[n.key] = n

	files := s.byKey[n.key]
	if files == nil {
		files = make(map[InternedString]*Node)
		s.byKey[n.key] = files
	}
	files[n.owningFile] = n
	return true
}

// Erase removes a node from both indices, releasing ownership. It reports
// whether the node was present.
func (s *NodeStore) Erase(n *Node) bool {
	bucket := s.byFile[n.owningFile]
	if bucket[n.key] != n {
		return false
	}
	delete(bucket, n.key)
	if len(bucket) == 0 {
		delete(s.byFile, n.owningFile)
	}

	files := s.byKey[n.key]
	delete(files, n.owningFile)
	if len(files) == 0 {
		delete(s.byKey, n.key)
	}
	return true
}

// Relocate moves a node to a different owning file, keeping both indices in
// agreement with the node's own field. It reports false when the target
// slot is occupied; the node is then left where it was.
func (s *NodeStore) Relocate(n *Node, file InternedString) bool {
	if other := s.Find(file, n.key); other != nil && other != n {
		return false
	}
	s.Erase(n)
	n.owningFile = file
	return s.Insert(n)
}

// NodesForKey iterates every node carrying the given key, across all files
// and the expat slot.
func (s *NodeStore) NodesForKey(key Key) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for _, n := range s.byKey[key] {
			if !yield(n) {
				return
			}
		}
	}
}

// CountForKey returns how many nodes carry the given key.
func (s *NodeStore) CountForKey(key Key) int {
	return len(s.byKey[key])
}

// NodesInFile iterates the nodes owned by one file (or the expat slot).
func (s *NodeStore) NodesInFile(file InternedString) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for _, n := range s.byFile[file] {
			if !yield(n) {
				return
			}
		}
	}
}

// ForEachEntry visits every (file, key, node) entry of the primary index.
func (s *NodeStore) ForEachEntry(fn func(file InternedString, key Key, n *Node)) {
	for file, bucket := range s.byFile {
		for key, n := range bucket {
			fn(file, key, n)
		}
	}
}

// ForEachFile visits every file (including the expat sentinel) that
// currently owns at least one node.
func (s *NodeStore) ForEachFile(fn func(file InternedString)) {
	for file := range s.byFile {
		fn(file)
	}
}

// Len returns the number of live nodes.
func (s *NodeStore) Len() int {
	total := 0
	for _, bucket := range s.byFile {
		total += len(bucket)
	}
	return total
}
