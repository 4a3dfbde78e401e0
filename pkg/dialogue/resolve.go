package dialogue

import "fmt"

// ResolvePage finds a page by id. The flat index is tried first; when that
// misses, the graph is walked depth-first from every NPC's entry page so that
// pages missing from the index are still found through live edges.
func (s *Store) ResolvePage(id int) (*Page, error) {
	if p := s.pages[id]; p != nil {
		return p, nil
	}
	visited := make(map[int]struct{})
	for _, n := range s.NPCs() {
		if n.EntryPageID == 0 {
			continue
		}
		if p := s.findFrom(n.EntryPageID, id, visited); p != nil {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: page %d", ErrNotFound, id)
}

func (s *Store) findFrom(start, target int, visited map[int]struct{}) *Page {
	if _, seen := visited[start]; seen {
		return nil
	}
	visited[start] = struct{}{}

	p := s.node(start)
	if p == nil {
		return nil
	}
	if p.ID == target {
		return p
	}
	for _, next := range s.outgoing(p) {
		if found := s.findFrom(next, target, visited); found != nil {
			return found
		}
	}
	return nil
}

// Reachable returns the ids of every page reachable from start, start included
func (s *Store) Reachable(start int) map[int]struct{} {
	seen := make(map[int]struct{})
	s.walk(start, seen)
	return seen
}

func (s *Store) walk(id int, seen map[int]struct{}) {
	if _, ok := seen[id]; ok {
		return
	}
	p := s.node(id)
	if p == nil {
		return
	}
	seen[id] = struct{}{}
	for _, next := range s.outgoing(p) {
		s.walk(next, seen)
	}
}
