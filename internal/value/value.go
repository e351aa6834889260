// Package value defines the tagged, in-arena value representation shared
// by every layer of the engine: the arena's copying collector, the
// algebraic primitives, and the parser all operate on Value words and the
// object shapes described here.
package value

import "fmt"

// Value is a single tagged machine word. The low three bits carry the Tag;
// for P/PL/PR/O the remaining bits are a byte offset into the owning
// arena's active semi-space (always 8-aligned, so the tag bits are free);
// for I the remaining bits are a signed payload.
type Value uint64

// Tag is the low-bit discriminant of a Value.
type Tag uint64

const (
	TagU  Tag = 0 // unit
	TagUL Tag = 1 // unit, wrapped in-sum to the left
	TagUR Tag = 2 // unit, wrapped in-sum to the right
	TagP  Tag = 3 // pair
	TagPL Tag = 4 // pair, wrapped in-sum to the left
	TagPR Tag = 5 // pair, wrapped in-sum to the right
	TagI  Tag = 6 // small integer
	TagO  Tag = 7 // boxed object
)

const tagMask Value = 0x7

// Unit is the (unit,·) constant, and its two shallow sum wrappers.
const (
	Unit   Value = Value(TagU)
	UnitL  Value = Value(TagUL)
	UnitR  Value = Value(TagUR)
)

func init() {
	// checkTagInvariants: the PL=P+1, PR=P+2, UL=U+1, UR=U+2 adjacency is a
	// wire contract every wrap_sum/unwrap_sum tag-arithmetic shortcut
	// depends on; verify it once at startup rather than trusting the
	// constant table above never to drift.
	if TagPL != TagP+1 || TagPR != TagP+2 {
		panic("value: P/PL/PR tag adjacency violated")
	}
	if TagUL != TagU+1 || TagUR != TagU+2 {
		panic("value: U/UL/UR tag adjacency violated")
	}
}

// Tag returns the discriminant of v.
func (v Value) Tag() Tag { return Tag(v & tagMask) }

// IsPair reports whether v is P, PL, or PR.
func (v Value) IsPair() bool { t := v.Tag(); return t == TagP || t == TagPL || t == TagPR }

// IsUnit reports whether v is U, UL, or UR.
func (v Value) IsUnit() bool { t := v.Tag(); return t == TagU || t == TagUL || t == TagUR }

// IsShallowSum reports whether v carries a sum wrapper folded into its tag
// (PL/PR/UL/UR) rather than boxed as a DEEPSUM object.
func (v Value) IsShallowSum() bool {
	switch v.Tag() {
	case TagPL, TagPR, TagUL, TagUR:
		return true
	default:
		return false
	}
}

// IsObject reports whether v is a boxed O-tagged object.
func (v Value) IsObject() bool { return v.Tag() == TagO }

// IsSmallInt reports whether v is an I-tagged small integer.
func (v Value) IsSmallInt() bool { return v.Tag() == TagI }

// Offset extracts the arena byte offset from a P/PL/PR/O value.
func (v Value) Offset() uint64 { return uint64(v) &^ uint64(tagMask) }

// WithOffset rebuilds a value with the same tag and a new offset.
func (v Value) WithOffset(off uint64) Value {
	return Value(off&^uint64(tagMask)) | Value(v.Tag())
}

// TaggedOffset packs an arena offset and a pointer tag (P, PL, PR, or O)
// into a Value. off must already be 8-aligned.
func TaggedOffset(off uint64, tag Tag) Value {
	return Value(off&^uint64(tagMask)) | Value(tag)
}

const (
	// SmallIntMax is the largest representable small integer. The payload
	// occupies the bits above the 3-bit tag in a 64-bit word.
	SmallIntMax int64 = (1 << 60) - 1
	SmallIntMin int64 = -SmallIntMax
)

// SmallInt encodes n as an I-tagged Value. Caller must have already range
// checked n against SmallIntMin/SmallIntMax.
func SmallInt(n int64) Value {
	return Value(uint64(n<<3)) | Value(TagI)
}

// Int decodes the payload of an I-tagged Value via an arithmetic shift.
func (v Value) Int() int64 {
	return int64(v) >> 3
}

// WrapSumShallow folds a sum wrapper onto a value that is U or P tagged,
// collapsing (unit|pair)-in-sum without allocation. Returns ok=false if v
// is not U or P tagged (caller must otherwise allocate a DEEPSUM, or the
// value is already wrapped and must go through the DEEPSUM path).
func (v Value) WrapSumShallow(left bool) (Value, bool) {
	switch v.Tag() {
	case TagU:
		if left {
			return UnitL, true
		}
		return UnitR, true
	case TagP:
		delta := Tag(1)
		if !left {
			delta = 2
		}
		return Value(uint64(v) + uint64(delta)), true
	default:
		return v, false
	}
}

// UnwrapSumShallow strips a shallow sum wrapper, returning the bare U/P
// value and which side it was on. ok is false if v does not carry a
// shallow wrapper.
func (v Value) UnwrapSumShallow() (unwrapped Value, left bool, ok bool) {
	switch v.Tag() {
	case TagUL:
		return Unit, true, true
	case TagUR:
		return Unit, false, true
	case TagPL:
		return Value(uint64(v) &^ uint64(tagMask)) | Value(TagP), true, true
	case TagPR:
		return Value(uint64(v) &^ uint64(tagMask)) | Value(TagP), false, true
	default:
		return v, false, false
	}
}

func (t Tag) String() string {
	switch t {
	case TagU:
		return "U"
	case TagUL:
		return "UL"
	case TagUR:
		return "UR"
	case TagP:
		return "P"
	case TagPL:
		return "PL"
	case TagPR:
		return "PR"
	case TagI:
		return "I"
	case TagO:
		return "O"
	default:
		return fmt.Sprintf("Tag(%d)", t)
	}
}

func (v Value) String() string {
	switch v.Tag() {
	case TagI:
		return fmt.Sprintf("I(%d)", v.Int())
	case TagU, TagUL, TagUR:
		return v.Tag().String()
	default:
		return fmt.Sprintf("%s@%#x", v.Tag(), v.Offset())
	}
}
