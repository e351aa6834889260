package value

// Otag is the header byte of a boxed O-tagged object identifying its
// shape. It occupies the low byte of an object's first arena word; the
// remaining bytes of that word carry shape-specific fields (a flag set,
// a length, or a path).
type Otag uint8

const (
	OtagDeepsum Otag = 1 + iota
	OtagSealSm
	OtagSeal
	OtagBlock
	OtagOpval
	OtagOptok
	OtagBinary
	OtagArray
	OtagUtf8
	OtagTrash
	OtagPend
)

func (o Otag) String() string {
	switch o {
	case OtagDeepsum:
		return "DEEPSUM"
	case OtagSealSm:
		return "SEAL_SM"
	case OtagSeal:
		return "SEAL"
	case OtagBlock:
		return "BLOCK"
	case OtagOpval:
		return "OPVAL"
	case OtagOptok:
		return "OPTOK"
	case OtagBinary:
		return "BINARY"
	case OtagArray:
		return "ARRAY"
	case OtagUtf8:
		return "UTF8"
	case OtagTrash:
		return "TRASH"
	case OtagPend:
		return "PEND"
	default:
		return "OTAG(?)"
	}
}

// HeaderWord packs an Otag into the low byte of a header word with
// shape-specific fields (flags, a path, or a length) in the bytes above.
func HeaderWord(tag Otag, fields uint64) uint64 {
	return uint64(tag) | (fields << 8)
}

// SplitHeaderWord reverses HeaderWord.
func SplitHeaderWord(w uint64) (tag Otag, fields uint64) {
	return Otag(w & 0xFF), w >> 8
}

// BlockFlag is a substructural or evaluation attribute carried on a
// BLOCK (or TRASH, which reuses the same flag bits) header.
type BlockFlag uint64

const (
	FlagAffine   BlockFlag = 1 << 0 // may not copy
	FlagRelevant BlockFlag = 1 << 1 // may not drop
	FlagLazy     BlockFlag = 1 << 2 // unsafe: deferred evaluation
	FlagFork     BlockFlag = 1 << 3 // unsafe: forked evaluation
)

const unsafeFlags = FlagLazy | FlagFork

// HasUnsafeFlag reports whether an unsafe flag (LAZY or FORK) is
// directly present. At most one unsafe flag may sit directly on a
// block.
func (f BlockFlag) HasUnsafeFlag() bool { return f&unsafeFlags != 0 }

// Ss is the aggregated substructural summary computed while copy/drop
// scan a value: the union of every AFFINE/RELEVANT flag found on any
// block reachable from the root.
type Ss BlockFlag

func (s Ss) Copyable() bool  { return BlockFlag(s)&FlagAffine == 0 }
func (s Ss) Droppable() bool { return BlockFlag(s)&FlagRelevant == 0 }

// Union merges ss flags found on one more block into the running summary.
func (s Ss) Union(flags BlockFlag) Ss {
	return Ss(BlockFlag(s) | (flags & (FlagAffine | FlagRelevant)))
}

// OpvalLazyKF reuses BlockFlag's LAZY bit position; it is the only flag
// meaningful on an OPVAL header.
const OpvalLazyKF BlockFlag = FlagLazy

// MaxTokenLen bounds an OPTOK/SEAL name so it fits a small fixed buffer.
const MaxTokenLen = 63

// SealSmallMaxLen is the longest sealer name (including the leading ':')
// that can be packed directly into the remaining bytes of a single
// header word rather than allocating a full SEAL object. On a 64-bit
// word with an 8-bit otag, seven bytes remain.
const SealSmallMaxLen = 7
