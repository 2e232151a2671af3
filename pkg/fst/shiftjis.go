package fst

import (
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

const replacementChar = '�'

// decodeShiftJIS renders raw null-terminated Shift-JIS bytes for display.
// Undecodable sequences fall back to the Unicode replacement character one
// byte at a time rather than failing the whole read; raw is never touched,
// so the original bytes are always available for a byte-exact re-emit on
// write.
func decodeShiftJIS(raw []byte) string {
	var out []rune
	src := raw
	for len(src) > 0 {
		decoder := japanese.ShiftJIS.NewDecoder()
		dst := make([]byte, 8)
		nDst, nSrc, err := decoder.Transform(dst, src, true)
		if err != nil && err != transform.ErrShortDst {
			if nSrc == 0 {
				out = append(out, replacementChar)
				src = src[1:]
				continue
			}
		}
		if nSrc == 0 {
			out = append(out, replacementChar)
			src = src[1:]
			continue
		}
		out = append(out, []rune(string(dst[:nDst]))...)
		src = src[nSrc:]
	}
	return string(out)
}
