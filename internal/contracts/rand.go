package contracts

// Rand is the random source threaded through the engine.
// *math/rand.Rand satisfies it; tests can inject scripted sources.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Uniform returns a uniform float in [lo, hi)
func Uniform(r Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// UniformInt returns a uniform int in [lo, hi] (inclusive)
func UniformInt(r Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.Intn(hi-lo+1)
}

// Chance reports whether an event with probability p fires
func Chance(r Rand, p float64) bool {
	if p <= 0 {
		return false
	}
	return r.Float64() < p
}
