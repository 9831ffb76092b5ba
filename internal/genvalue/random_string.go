package genvalue

import (
	"strings"

	"github.com/mongodb-labs/mwgrunner/internal/engctx"
	"github.com/mongodb-labs/mwgrunner/pkg/value"
)

// DefaultAlphabet is the Base64 alphabet random-string samples from when
// no alphabet is configured (§4.1 random-string).
const DefaultAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// fastAlphabet is the fixed 64-character alphabet fast-random-string
// indexes with 6-bit slices (§4.1 fast-random-string). Identical
// character set to DefaultAlphabet, kept separate because fast-random-
// string's alphabet is not configurable.
const fastAlphabet = DefaultAlphabet

// RandomString samples each character of a Length-byte string uniformly
// from Alphabet (§4.1 random-string).
type RandomString struct {
	Length   IntOrGenerator
	Alphabet string
}

// NewRandomString applies the documented defaults: length=10,
// alphabet=Base64 alphabet.
func NewRandomString() *RandomString {
	return &RandomString{Length: FixedInt(10), Alphabet: DefaultAlphabet}
}

func (g *RandomString) Generate(ctx *engctx.ThreadContext) (value.Value, error) {
	s, err := g.GenerateString(ctx)
	if err != nil {
		return value.Value{}, err
	}
	return value.NewString(s), nil
}

func (g *RandomString) GenerateString(ctx *engctx.ThreadContext) (string, error) {
	length, err := g.Length.Int(ctx)
	if err != nil {
		return "", err
	}
	alphabet := g.Alphabet
	if alphabet == "" {
		alphabet = DefaultAlphabet
	}
	var b strings.Builder
	b.Grow(int(length))
	n := int64(len(alphabet))
	for i := int64(0); i < length; i++ {
		b.WriteByte(alphabet[ctx.RNG.Int63n(n)])
	}
	return b.String(), nil
}

func (g *RandomString) GenerateInt(ctx *engctx.ThreadContext) (int64, error) {
	return defaultGenerateInt(g, ctx)
}
func (g *RandomString) GenerateDouble(ctx *engctx.ThreadContext) (float64, error) {
	return defaultGenerateDouble(g, ctx)
}

// FastRandomString fills a Length-byte string by slicing 6 bits at a time
// off successive 64-bit RNG draws, refilling the draw once fewer than 6
// bits remain (§4.1 fast-random-string) — far cheaper per character than
// RandomString's one Int63n call per byte.
type FastRandomString struct {
	Length IntOrGenerator
}

func NewFastRandomString() *FastRandomString {
	return &FastRandomString{Length: FixedInt(10)}
}

func (g *FastRandomString) Generate(ctx *engctx.ThreadContext) (value.Value, error) {
	s, err := g.GenerateString(ctx)
	if err != nil {
		return value.Value{}, err
	}
	return value.NewString(s), nil
}

func (g *FastRandomString) GenerateString(ctx *engctx.ThreadContext) (string, error) {
	length, err := g.Length.Int(ctx)
	if err != nil {
		return "", err
	}
	b := make([]byte, length)
	var bits uint
	var random uint64
	for i := int64(0); i < length; i++ {
		if bits < 6 {
			random = ctx.RNG.Uint64()
			bits = 64
		}
		b[i] = fastAlphabet[random&0x3f]
		random >>= 6
		bits -= 6
	}
	return string(b), nil
}

func (g *FastRandomString) GenerateInt(ctx *engctx.ThreadContext) (int64, error) {
	return defaultGenerateInt(g, ctx)
}
func (g *FastRandomString) GenerateDouble(ctx *engctx.ThreadContext) (float64, error) {
	return defaultGenerateDouble(g, ctx)
}
