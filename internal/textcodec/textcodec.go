// Package textcodec is the UTF-8 validator/transcoder treated as an
// external collaborator ("assumed validating, or input is
// pre-validated") rather than core logic. Built on
// golang.org/x/text/encoding/unicode and golang.org/x/text/transform —
// the same golang.org/x family as the teacher's already-required
// x/crypto, x/sync, x/mod, x/tools — so program text handed to
// internal/vparser can be validated against strict UTF-8 before the
// core ever sees it, instead of trusting unicode/utf8 alone.
package textcodec

import (
	"fmt"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Validate runs raw bytes through a strict UTF-8 transformer, returning
// an error that names the first invalid byte sequence instead of
// silently admitting it (unicode/utf8.Valid only reports yes/no).
func Validate(data []byte) error {
	_, err := unicode.UTF8.NewDecoder().Bytes(data)
	if err != nil {
		return fmt.Errorf("textcodec: invalid utf-8: %w", err)
	}
	return nil
}

// Normalize re-encodes data through the UTF-8 encoder/decoder pair,
// rejecting overlong encodings and lone surrogates the way a
// transform.Chain-based pipeline does, and is what cmd/vexctl runs
// source files through before calling vparser.Parse.
func Normalize(data []byte) ([]byte, error) {
	out, _, err := transform.Bytes(unicode.UTF8.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("textcodec: normalize: %w", err)
	}
	return out, nil
}
