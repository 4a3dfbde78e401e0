package admin

import (
	"fmt"

	"github.com/jwebster45206/npc-engine/pkg/world"
)

// AddObserver registers a viewer at p on a map so position updates near it
// list the returned id. Viewers are not persisted.
func (s *Service) AddObserver(mapID int, p world.Point) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pt := s.world.Partition(mapID)
	if pt == nil {
		return 0, fmt.Errorf("%w %d", world.ErrUnknownMap, mapID)
	}
	s.lastObserverID++
	pt.AddObserver(s.lastObserverID, p)
	return s.lastObserverID, nil
}

// RemoveObserver forgets a viewer registered with AddObserver
func (s *Service) RemoveObserver(mapID, id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pt := s.world.Partition(mapID); pt != nil {
		pt.RemoveObserver(id)
	}
}
