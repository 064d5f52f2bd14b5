package octerra

import (
	"fmt"
	"log"
	"sync"

	"github.com/voxelmesh/octerra/internal/morton"
)

// Invariant names one of the fatal, invariant-violation conditions
// spec.md §7/§8 enumerates. A violation always indicates a bug upstream
// of the core (a malformed octree, a broken dedup map, a scheduler that
// reused a chunk across extractions) — never a recoverable input
// condition.
type Invariant uint8

const (
	// InvariantLeafWithChildren: a node marked Leaf has a child present
	// in the store (§8.3, "Leaf disjointness").
	InvariantLeafWithChildren Invariant = iota
	// InvariantOrphanBranch: a branch node has no child present (§8.2).
	InvariantOrphanBranch
	// InvariantDepthMismatch: an address's depth disagrees with the
	// depth of the level it was inserted at (§8.1).
	InvariantDepthMismatch
	// InvariantDedupCollision: a second mesh-vertex index was recorded
	// for a voxel-edge key that already had one (§8.4).
	InvariantDedupCollision
	// InvariantStripEndpointMismatch: a strip or long-strip reached
	// tracing with an endpoint lacking a mesh-vertex index (§8.6).
	InvariantStripEndpointMismatch
	// InvariantComponentDegenerate: a traced CMS component closed with
	// fewer than three vertices (§4.5, §8.7).
	InvariantComponentDegenerate
	// InvariantSeamLODBound: a seam octree was asked to bridge chunks
	// whose LOD differs by more than three levels (§4.10, §8.10).
	InvariantSeamLODBound
	// InvariantNaNSample: the sampler returned NaN (§7 "Numerical").
	InvariantNaNSample
)

func (v Invariant) String() string {
	switch v {
	case InvariantLeafWithChildren:
		return "leaf node has children present in store"
	case InvariantOrphanBranch:
		return "branch node has no children present in store"
	case InvariantDepthMismatch:
		return "address depth does not match insertion depth"
	case InvariantDedupCollision:
		return "duplicate mesh-vertex recorded for voxel-edge key"
	case InvariantStripEndpointMismatch:
		return "strip endpoint missing mesh-vertex index"
	case InvariantComponentDegenerate:
		return "traced component has fewer than three vertices"
	case InvariantSeamLODBound:
		return "seam LOD difference exceeds the bound of three"
	case InvariantNaNSample:
		return "sampler returned NaN"
	default:
		return "unknown invariant"
	}
}

// FatalError is returned by Extract/ExtractSeam when a fatal invariant
// is violated. It carries the offending address (morton.Root or the zero
// Address when no single address is implicated) and the invariant
// name, per spec.md §9's design note ("surface as a typed fatal error
// carrying the offending address and the invariant name").
type FatalError struct {
	Invariant Invariant
	Address   morton.Address
	Detail    string
}

func (e *FatalError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("octerra: fatal: %s at address %#x: %s", e.Invariant, e.Address.Idx(), e.Detail)
	}
	return fmt.Sprintf("octerra: fatal: %s at address %#x", e.Invariant, e.Address.Idx())
}

// fatal is the detection-site idiom for an invariant violation: panic
// with a typed payload that only Extract/ExtractSeam catch and convert
// into a returned *FatalError. This mirrors bart's
// panic("logic error, ...") idiom at the detection site while still
// honoring spec.md §7 ("errors are never caught within the core; they
// propagate out of the extraction function").
func fatal(inv Invariant, addr morton.Address, detail string) {
	panic(&FatalError{Invariant: inv, Address: addr, Detail: detail})
}

// recoverFatal converts a fatal() panic into an error, re-panicking
// anything else (a genuine bug in this package, not a modeled invariant).
func recoverFatal(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if fe, ok := r.(*FatalError); ok {
		*errp = fe
		return
	}
	panic(r)
}

var (
	warnOnceMu   sync.Mutex
	warnOnceSeen = map[string]bool{}
)

// warnOnce logs a non-fatal degenerate-path notice via log.Printf the
// first time it is reached for a given key, and is a silent no-op on
// every later call with that key — the one-time "warned" idiom
// Yeicor-sdfx's renderer uses to avoid flooding output on repeated
// degenerate input, applied here to conditions that are not invariant
// violations (see FatalError/fatal above for those).
func warnOnce(key, format string, args ...any) {
	warnOnceMu.Lock()
	defer warnOnceMu.Unlock()
	if warnOnceSeen[key] {
		return
	}
	warnOnceSeen[key] = true
	log.Printf(format, args...)
}
