package ecs

// Each2 visits entities that have both A and B in ascending ID order, driving
// the scan from the smaller store.
func Each2[A, B any](sa *PtrComponentStore[A], sb *PtrComponentStore[B], fn func(EntityID, *A, *B)) {
	if sa.Len() <= sb.Len() {
		for _, id := range sa.IDs() {
			if b, ok := sb.data[id]; ok {
				fn(id, sa.data[id], b)
			}
		}
		return
	}
	for _, id := range sb.IDs() {
		if a, ok := sa.data[id]; ok {
			fn(id, a, sb.data[id])
		}
	}
}
