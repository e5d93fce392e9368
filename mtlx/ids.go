package mtlx

import (
	"fmt"

	"github.com/google/uuid"
)

// IDLength is the number of characters in a generated name suffix.
const IDLength = 8

// Role prefixes for generated names.
const (
	PrefixCollection    = "co_"
	PrefixCollectionAdd = "ca_"
	PrefixOpGraph       = "op_"
	PrefixImage         = "col_"
	PrefixOutput        = "out_"
	PrefixInput         = "in_"
	PrefixShader        = "sha_"
	PrefixMaterial      = "mat_"
	PrefixLook          = "look_"
)

// IDSource yields short name suffixes.
type IDSource interface {
	NewID() string
}

// NewID returns an 8-character token taken from a random UUID.
func NewID() string {
	return uuid.NewString()[:IDLength]
}

// UUIDSource draws suffixes from random UUIDs.
type UUIDSource struct{}

// NewID implements IDSource.
func (UUIDSource) NewID() string { return NewID() }

// SequenceSource yields zero-padded counters ("00000001", "00000002", ...).
// Useful when output must be reproducible, e.g. golden tests.
type SequenceSource struct {
	next int
}

// NewID implements IDSource.
func (s *SequenceSource) NewID() string {
	s.next++
	return fmt.Sprintf("%0*d", IDLength, s.next)
}

// maxDraws bounds retries when a source keeps repeating itself.
const maxDraws = 64

// Namer hands out prefixed names that are unique for the lifetime of the Namer.
// One Namer is scoped to a single export run.
type Namer struct {
	ids  IDSource
	seen map[string]struct{}
}

// NewNamer builds a Namer over src; a nil src uses UUIDSource.
func NewNamer(src IDSource) *Namer {
	if src == nil {
		src = UUIDSource{}
	}
	return &Namer{ids: src, seen: make(map[string]struct{})}
}

// Name returns prefix followed by a suffix not yet issued by this Namer.
func (n *Namer) Name(prefix string) string {
	name := prefix + n.ids.NewID()
	for draws := 1; n.taken(name); draws++ {
		if draws < maxDraws {
			name = prefix + n.ids.NewID()
			continue
		}
		// source is stuck on issued values; fall back to random suffixes
		name = prefix + NewID()
	}
	n.seen[name] = struct{}{}
	return name
}

func (n *Namer) taken(name string) bool {
	_, ok := n.seen[name]
	return ok
}

// Reserve marks an existing name as taken, e.g. when extending a parsed document.
func (n *Namer) Reserve(name string) {
	n.seen[name] = struct{}{}
}
