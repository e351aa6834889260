// Text & binary infrastructure: binaries and texts are singly-linked
// chunks for O(1) append, with streaming readers that drive the
// ARRAY/BINARY/UTF8 lazy sum-expansion that unwrap_sum implements for
// list-shaped objects.
//
// Several of these readers allocate fresh cons cells as they peel
// elements off a chunk, so each takes an optional protect list of
// caller-held roots to carry through any compaction the allocation
// triggers; internal/vparser's parser is the main caller that needs
// this, since its working state lives in plain Go fields the context's
// own val/pc/cc roots know nothing about.
package engine

import (
	"strings"
	"unicode/utf8"

	"vex/internal/value"
)

const binaryHeaderWords = 4 // [otag|0, next, size, bufPtr]
const arrayHeaderWords = 4  // [otag|0, next, elemct, bufPtr]

// IntroBinary allocates a single fresh BINARY chunk holding data,
// terminated (next) by the empty-list unit-in-right.
func (c *Context) IntroBinary(data []byte) (value.Value, error) {
	return c.consBinaryChunk(value.UnitR, data)
}

// ConsBinaryChunk pushes another chunk of data onto the front of an
// existing binary-chunk list, returning the new head. protect carries
// any other live roots (e.g. a parser's suspended state) through the
// allocation.
func (c *Context) ConsBinaryChunk(next value.Value, data []byte, protect ...*value.Value) (value.Value, error) {
	return c.consBinaryChunk(next, data, protect...)
}

func (c *Context) consBinaryChunk(next value.Value, data []byte, protect ...*value.Value) (value.Value, error) {
	dataWords := wordsForLen(len(data))
	roots := append([]*value.Value{&next}, protect...)
	if err := c.reserve(uint64(binaryHeaderWords+dataWords), roots...); err != nil {
		return 0, err
	}
	off := c.Arena.AllocR(uint64(binaryHeaderWords + dataWords))
	bufOff := off + uint64(binaryHeaderWords)*8
	c.Arena.WriteWord(off, value.HeaderWord(value.OtagBinary, 0))
	c.Arena.WriteValue(off+8, next)
	c.Arena.WriteWord(off+16, uint64(len(data)))
	c.Arena.WriteWord(off+24, bufOff)
	c.Arena.WriteBytes(bufOff, data)
	return value.TaggedOffset(off, value.TagO), nil
}

// ReverseBinaryChunks reverses a chain of BINARY chunks in place (each
// node's next pointer is rewritten to point at the previous node; no
// reallocation), returning the new head. Used by the parser's text
// finalizer and by CompactBinary.
func (c *Context) ReverseBinaryChunks(v value.Value) (value.Value, error) {
	var prev value.Value = value.UnitR
	cur := v
	for {
		if cur.Tag() != value.TagO {
			break
		}
		off := cur.Offset()
		header := c.Arena.ReadWord(off)
		otag, _ := value.SplitHeaderWord(header)
		if otag != value.OtagBinary {
			break
		}
		next := c.Arena.ReadValue(off + 8)
		c.Arena.WriteValue(off+8, prev)
		prev = cur
		cur = next
	}
	return prev, nil
}

// CompactBinary reads out the whole binary and rebuilds it as a clean
// chunk list, discarding whatever fragmentation accumulated from
// successive small cons_binary_chunk calls.
func (c *Context) CompactBinary(v value.Value) (value.Value, error) {
	const chunkBytes = 60 * 1024
	head := value.UnitR
	cur := v
	for {
		data, rest, err := c.ReadBinary(cur, chunkBytes)
		if err != nil {
			return 0, err
		}
		if len(data) == 0 {
			break
		}
		h, err := c.ConsBinaryChunk(head, data)
		if err != nil {
			return 0, err
		}
		head = h
		cur = rest
		if len(data) < chunkBytes {
			break
		}
	}
	return c.ReverseBinaryChunks(head)
}

// IntroText wraps a freshly introduced binary in a UTF8 marker.
func (c *Context) IntroText(s string) (value.Value, error) {
	bin, err := c.IntroBinary([]byte(s))
	if err != nil {
		return 0, err
	}
	return c.wrapUtf8(bin)
}

// WrapUtf8 marks an already-built binary-chunk chain as text, for
// internal/vparser's text-literal finalizer (the parser accumulates raw
// bytes and only wraps them as UTF8 once the literal closes). protect
// carries any other roots the caller is still holding onto.
func (c *Context) WrapUtf8(underlying value.Value, protect ...*value.Value) (value.Value, error) {
	return c.wrapUtf8(underlying, protect...)
}

func (c *Context) wrapUtf8(underlying value.Value, protect ...*value.Value) (value.Value, error) {
	roots := append([]*value.Value{&underlying}, protect...)
	if err := c.reserve(2, roots...); err != nil {
		return 0, err
	}
	off := c.Arena.AllocR(2)
	c.Arena.WriteWord(off, value.HeaderWord(value.OtagUtf8, 0))
	c.Arena.WriteValue(off+8, underlying)
	return value.TaggedOffset(off, value.TagO), nil
}

// CompactText is CompactBinary wrapped with UTF8: read the text out
// through the codepoint-level reader and rebuild a single clean chain.
func (c *Context) CompactText(v value.Value) (value.Value, error) {
	if v.Tag() != value.TagO {
		return 0, NewTypeError("compact_text", "expected a UTF8 value")
	}
	header := c.Arena.ReadWord(v.Offset())
	otag, _ := value.SplitHeaderWord(header)
	if otag != value.OtagUtf8 {
		return 0, NewTypeError("compact_text", "expected a UTF8 value")
	}
	const chunkBytes = 60 * 1024
	var sb strings.Builder
	cur := c.Arena.ReadValue(v.Offset() + 8)
	for {
		s, rest, err := c.readTextChain(cur, chunkBytes)
		if err != nil {
			return 0, err
		}
		sb.WriteString(s)
		cur = rest
		if len(s) == 0 {
			break
		}
	}
	return c.IntroText(sb.String())
}

// ReadBinary streams up to maxBytes out of the binary list v, returning
// the bytes read and the remaining (possibly still-lazy) tail.
func (c *Context) ReadBinary(v value.Value, maxBytes int) ([]byte, value.Value, error) {
	buf := make([]byte, 0, maxBytes)
	cur := v
	for len(buf) < maxBytes {
		b, rest, ok, err := c.pullByte(cur)
		if err != nil {
			return nil, 0, err
		}
		if !ok {
			cur = rest
			break
		}
		buf = append(buf, b)
		cur = rest
	}
	return buf, cur, nil
}

// ReadText streams text out of a UTF8 value v, stopping at a codepoint
// boundary no later than maxBytes of UTF-8 encoded output, and returns
// the remaining tail re-wrapped as a UTF8 value.
func (c *Context) ReadText(v value.Value, maxBytes int) (string, value.Value, error) {
	if v.Tag() != value.TagO {
		return "", 0, NewTypeError("read_text", "expected a UTF8 value")
	}
	header := c.Arena.ReadWord(v.Offset())
	otag, _ := value.SplitHeaderWord(header)
	if otag != value.OtagUtf8 {
		return "", 0, NewTypeError("read_text", "expected a UTF8 value")
	}
	underlying := c.Arena.ReadValue(v.Offset() + 8)
	s, rest, err := c.readTextChain(underlying, maxBytes)
	if err != nil {
		return "", 0, err
	}
	restUtf8, err := c.wrapUtf8(rest)
	if err != nil {
		return "", 0, err
	}
	return s, restUtf8, nil
}

// readTextChain is the byte-chain-level worker shared by ReadText and
// CompactText: it pulls whole codepoints directly off a raw
// binary-chunk chain (not a UTF8-wrapped value) via pullRune.
func (c *Context) readTextChain(v value.Value, maxBytes int) (string, value.Value, error) {
	var sb strings.Builder
	cur := v
	for sb.Len() < maxBytes {
		r, rest, ok, err := c.pullRune(cur)
		if err != nil {
			return "", 0, err
		}
		if !ok {
			cur = rest
			break
		}
		if sb.Len()+utf8.RuneLen(r) > maxBytes {
			// The pull already consumed r's bytes from the chain; put
			// them back in front of rest so the returned tail keeps them.
			pushed, perr := c.consBinaryChunk(rest, []byte(string(r)))
			if perr != nil {
				return "", 0, perr
			}
			cur = pushed
			break
		}
		sb.WriteRune(r)
		cur = rest
	}
	return sb.String(), cur, nil
}

// PullRune pulls one codepoint off the front of a UTF8 value v, for
// internal/vparser's character-at-a-time scan. ok is false, err is nil
// when v's underlying chain is exhausted. protect lists any other
// roots the caller holds outside the value register (the parser's
// suspended block stack and accumulators); it is threaded down into
// every allocation this pull triggers, since a lazy ARRAY/BINARY/UTF8
// chunk can synthesize fresh cons cells as it peels elements off.
func (c *Context) PullRune(v value.Value, protect ...*value.Value) (r rune, rest value.Value, ok bool, err error) {
	if v.Tag() != value.TagO {
		return 0, 0, false, NewTypeError("parse", "expected a UTF8 value")
	}
	header := c.Arena.ReadWord(v.Offset())
	otag, _ := value.SplitHeaderWord(header)
	if otag != value.OtagUtf8 {
		return 0, 0, false, NewTypeError("parse", "expected a UTF8 value")
	}
	underlying := c.Arena.ReadValue(v.Offset() + 8)
	decoded, restChain, okPull, perr := c.pullRune(underlying, protect...)
	if perr != nil {
		return 0, 0, false, perr
	}
	if !okPull {
		return 0, v, false, nil
	}
	restUtf8, werr := c.wrapUtf8(restChain, protect...)
	if werr != nil {
		return 0, 0, false, werr
	}
	return decoded, restUtf8, true, nil
}

// pullByte extracts one byte from the front of a binary list via the
// engine's own unwrap_sum, so every consumption path (explicit
// read_binary, or the parser peeking a character) shares one
// implementation. protect is forwarded to unwrapSum.
func (c *Context) pullByte(v value.Value, protect ...*value.Value) (b byte, rest value.Value, ok bool, err error) {
	unwrapped, left, err := c.unwrapSum(v, protect...)
	if err != nil {
		return 0, 0, false, err
	}
	if !left {
		return 0, v, false, nil
	}
	head, tail, okPair := c.pair(unwrapped)
	if !okPair || !head.IsSmallInt() {
		return 0, 0, false, NewTypeError("read_binary", "list head is not a byte")
	}
	return byte(head.Int()), tail, true, nil
}

// pullRune extracts one Unicode codepoint from the front of a UTF8
// value by pulling 1-4 bytes from its underlying binary chain. protect
// is forwarded to every pullByte call in the sequence.
func (c *Context) pullRune(v value.Value, protect ...*value.Value) (r rune, rest value.Value, ok bool, err error) {
	b0, tail1, ok0, err := c.pullByte(v, protect...)
	if err != nil {
		return 0, 0, false, err
	}
	if !ok0 {
		return 0, v, false, nil
	}
	n := utf8SeqLen(b0)
	buf := make([]byte, 1, 4)
	buf[0] = b0
	cur := tail1
	for i := 1; i < n; i++ {
		bi, next, oki, erri := c.pullByte(cur, protect...)
		if erri != nil {
			return 0, 0, false, erri
		}
		if !oki {
			return 0, 0, false, NewTypeError("read_text", "truncated utf8 sequence")
		}
		buf = append(buf, bi)
		cur = next
	}
	decoded, size := utf8.DecodeRune(buf)
	if decoded == utf8.RuneError && size <= 1 {
		return 0, 0, false, NewTypeError("read_text", "invalid utf8 sequence")
	}
	return decoded, cur, true, nil
}

func utf8SeqLen(b0 byte) int {
	switch {
	case b0&0x80 == 0:
		return 1
	case b0&0xE0 == 0xC0:
		return 2
	case b0&0xF0 == 0xE0:
		return 3
	case b0&0xF8 == 0xF0:
		return 4
	default:
		return 1
	}
}

// expandListHead implements the lazy ARRAY/BINARY/UTF8-to-cons
// expansion unwrap_sum relies on: pull one element out of a chunk,
// mutating its size/bufPtr in place, and return a freshly synthesized
// PL cons cell (elem, tail). protect carries any other live roots
// (e.g. a parser's suspended state) through the cons allocation.
func (c *Context) expandListHead(v value.Value, protect ...*value.Value) (value.Value, error) {
	off := v.Offset()
	header := c.Arena.ReadWord(off)
	otag, _ := value.SplitHeaderWord(header)

	switch otag {
	case value.OtagBinary:
		next := c.Arena.ReadValue(off + 8)
		size := c.Arena.ReadWord(off + 16)
		bufPtr := c.Arena.ReadWord(off + 24)
		if size == 0 {
			return next, nil
		}
		b := c.Arena.ReadBytes(bufPtr, 1)[0]
		newSize, newBufPtr := size-1, bufPtr+1
		var tail value.Value
		if newSize == 0 {
			tail = next
		} else {
			c.Arena.WriteWord(off+16, newSize)
			c.Arena.WriteWord(off+24, newBufPtr)
			tail = v
		}
		elem := value.SmallInt(int64(b))
		roots := append([]*value.Value{&elem, &tail}, protect...)
		if err := c.reserve(2, roots...); err != nil {
			return 0, err
		}
		consOff := c.Arena.AllocR(2)
		c.Arena.WriteValue(consOff, elem)
		c.Arena.WriteValue(consOff+8, tail)
		return value.TaggedOffset(consOff, value.TagPL), nil

	case value.OtagArray:
		next := c.Arena.ReadValue(off + 8)
		elemct := c.Arena.ReadWord(off + 16)
		bufPtr := c.Arena.ReadWord(off + 24)
		if elemct == 0 {
			return next, nil
		}
		elem := c.Arena.ReadValue(bufPtr)
		newElemct, newBufPtr := elemct-1, bufPtr+8
		var tail value.Value
		if newElemct == 0 {
			tail = next
		} else {
			c.Arena.WriteWord(off+16, newElemct)
			c.Arena.WriteWord(off+24, newBufPtr)
			tail = v
		}
		roots := append([]*value.Value{&elem, &tail}, protect...)
		if err := c.reserve(2, roots...); err != nil {
			return 0, err
		}
		consOff := c.Arena.AllocR(2)
		c.Arena.WriteValue(consOff, elem)
		c.Arena.WriteValue(consOff+8, tail)
		return value.TaggedOffset(consOff, value.TagPL), nil

	case value.OtagUtf8:
		underlying := c.Arena.ReadValue(off + 8)
		r, rest, ok, err := c.pullRune(underlying, protect...)
		if err != nil {
			return 0, err
		}
		if !ok {
			return value.UnitR, nil
		}
		newUtf8, err := c.wrapUtf8(rest, protect...)
		if err != nil {
			return 0, err
		}
		cp := value.SmallInt(int64(r))
		roots := append([]*value.Value{&cp, &newUtf8}, protect...)
		if err := c.reserve(2, roots...); err != nil {
			return 0, err
		}
		consOff := c.Arena.AllocR(2)
		c.Arena.WriteValue(consOff, cp)
		c.Arena.WriteValue(consOff+8, newUtf8)
		return value.TaggedOffset(consOff, value.TagPL), nil

	default:
		return 0, NewTypeError("unwrap_sum", "not a list-shaped object")
	}
}

func wordsForLen(n int) int {
	return (n + 7) / 8
}
