package genvalue

import (
	"fmt"
	"math"

	"github.com/mongodb-labs/mwgrunner/internal/engctx"
	"github.com/mongodb-labs/mwgrunner/pkg/value"
)

// Distribution identifies one of random-int's five sampling distributions
// (§4.1 random-int).
type Distribution int

const (
	Uniform Distribution = iota
	Binomial
	NegativeBinomial
	Geometric
	Poisson
)

// ParseDistribution maps a config string to a Distribution.
func ParseDistribution(s string) (Distribution, error) {
	switch s {
	case "", "uniform":
		return Uniform, nil
	case "binomial":
		return Binomial, nil
	case "negative_binomial":
		return NegativeBinomial, nil
	case "geometric":
		return Geometric, nil
	case "poisson":
		return Poisson, nil
	default:
		return Uniform, fmt.Errorf("random-int: unknown distribution %q", s)
	}
}

// RandomInt samples ctx.RNG against one of §4.1's five distributions.
// None of math/rand's exported API covers binomial/negative-binomial/
// geometric/poisson directly, so each is sampled from first principles
// against ctx.RNG — the standard textbook constructions, not a
// third-party statistics library (none is present anywhere in the
// retrieved example pack; see DESIGN.md).
type RandomInt struct {
	Dist Distribution

	// uniform
	Min, Max IntOrGenerator

	// binomial / negative_binomial: t = trials / k = target successes
	Trials IntOrGenerator
	P      Generator

	// poisson
	Mean Generator
}

// NewUniformRandomInt applies random-int's documented uniform defaults,
// min=0 max=100.
func NewUniformRandomInt() *RandomInt {
	return &RandomInt{Dist: Uniform, Min: FixedInt(0), Max: FixedInt(100)}
}

func (g *RandomInt) Generate(ctx *engctx.ThreadContext) (value.Value, error) {
	n, err := g.GenerateInt(ctx)
	if err != nil {
		return value.Value{}, err
	}
	return value.NewInt(n), nil
}

func (g *RandomInt) GenerateInt(ctx *engctx.ThreadContext) (int64, error) {
	switch g.Dist {
	case Uniform:
		lo, err := g.Min.Int(ctx)
		if err != nil {
			return 0, err
		}
		hi, err := g.Max.Int(ctx)
		if err != nil {
			return 0, err
		}
		if hi < lo {
			return 0, fmt.Errorf("random-int: uniform max %d < min %d", hi, lo)
		}
		return lo + ctx.RNG.Int63n(hi-lo+1), nil
	case Binomial:
		t, err := g.Trials.Int(ctx)
		if err != nil {
			return 0, err
		}
		p, err := g.P.GenerateDouble(ctx)
		if err != nil {
			return 0, err
		}
		var successes int64
		for i := int64(0); i < t; i++ {
			if ctx.RNG.Float64() < p {
				successes++
			}
		}
		return successes, nil
	case NegativeBinomial:
		k, err := g.Trials.Int(ctx)
		if err != nil {
			return 0, err
		}
		p, err := g.P.GenerateDouble(ctx)
		if err != nil {
			return 0, err
		}
		var failures, successes int64
		for successes < k {
			if ctx.RNG.Float64() < p {
				successes++
			} else {
				failures++
			}
		}
		return failures, nil
	case Geometric:
		p, err := g.P.GenerateDouble(ctx)
		if err != nil {
			return 0, err
		}
		var failures int64
		for ctx.RNG.Float64() >= p {
			failures++
		}
		return failures, nil
	case Poisson:
		mean, err := g.Mean.GenerateDouble(ctx)
		if err != nil {
			return 0, err
		}
		// Knuth's algorithm.
		l := math.Exp(-mean)
		k := int64(0)
		p := 1.0
		for {
			k++
			p *= ctx.RNG.Float64()
			if p <= l {
				break
			}
		}
		return k - 1, nil
	default:
		return 0, fmt.Errorf("random-int: unhandled distribution %v", g.Dist)
	}
}

func (g *RandomInt) GenerateDouble(ctx *engctx.ThreadContext) (float64, error) {
	n, err := g.GenerateInt(ctx)
	if err != nil {
		return 0, err
	}
	return float64(n), nil
}

func (g *RandomInt) GenerateString(ctx *engctx.ThreadContext) (string, error) {
	n, err := g.GenerateInt(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n), nil
}
