package octerra

import "github.com/voxelmesh/octerra/internal/morton"

// MarkTransitions implements C5: for every leaf face in the store, set
// its kind to FaceTransit iff the twin face across the neighbouring cell
// belongs to a branch (§8.5, "Transition symmetry" — a face is Transit
// iff its twin exists and is a branch face on the neighbouring cell).
// A leaf face whose neighbour is absent, or is itself a leaf, stays
// FaceLeaf.
func MarkTransitions(store *Store) {
	for _, n := range store.Leaves() {
		for f := morton.Face(0); f < 6; f++ {
			neighbour, ok := store.Neighbour(n, f)
			if ok && neighbour.Kind == Branch {
				n.Faces[f].Kind = FaceTransit
			} else {
				n.Faces[f].Kind = FaceLeaf
			}
		}
	}
}
