package synth

import (
	"math/rand/v2"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat/distuv"
)

// Random is the single random stream of a run. Uniform draws, the
// distribution samplers and the faker all consume the same PCG source, so a
// seed reproduces a run exactly as long as the call order is unchanged.
type Random struct {
	src   *rand.PCG
	r     *rand.Rand
	faker *gofakeit.Faker
}

// NewRandom seeds a new stream.
func NewRandom(seed uint64) *Random {
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	return &Random{
		src:   src,
		r:     rand.New(src),
		faker: gofakeit.NewFaker(src, false),
	}
}

// IntRange returns a uniform int in [lo, hi].
func (r *Random) IntRange(lo, hi int) int {
	return lo + r.r.IntN(hi-lo+1)
}

// Float64 returns a uniform float in [0, 1).
func (r *Random) Float64() float64 {
	return r.r.Float64()
}

// Poisson draws a non-negative count with mean lambda.
func (r *Random) Poisson(lambda float64) int {
	return int(distuv.Poisson{Lambda: lambda, Src: r.src}.Rand())
}

// LogNormal draws from a log-normal distribution with the given parameters
// of the underlying normal.
func (r *Random) LogNormal(mu, sigma float64) float64 {
	return distuv.LogNormal{Mu: mu, Sigma: sigma, Src: r.src}.Rand()
}

// Cents returns a uniform amount with cent precision in [lo, hi].
func (r *Random) Cents(lo, hi decimal.Decimal) decimal.Decimal {
	loC := lo.Shift(2).Ceil().IntPart()
	hiC := hi.Shift(2).Floor().IntPart()
	return decimal.New(loC+r.r.Int64N(hiC-loC+1), -2)
}

// Seconds returns a uniform whole-second offset in [0, max].
func (r *Random) Seconds(max int) time.Duration {
	return time.Duration(r.r.IntN(max+1)) * time.Second
}

// Choice picks one element uniformly.
func (r *Random) Choice(items []string) string {
	return items[r.r.IntN(len(items))]
}

// Sample returns k distinct indices from [0, n) in selection order, via a
// partial Fisher-Yates shuffle. The caller guarantees k <= n.
func (r *Random) Sample(n, k int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + r.r.IntN(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k]
}

// Faker exposes the seeded faker for descriptive attributes.
func (r *Random) Faker() *gofakeit.Faker {
	return r.faker
}

// roundCents rounds a positive magnitude to cents, never below one cent.
func roundCents(x float64) decimal.Decimal {
	d := decimal.NewFromFloat(x).Round(2)
	if d.LessThan(oneCent) {
		return oneCent
	}
	return d
}

var oneCent = decimal.New(1, -2)
