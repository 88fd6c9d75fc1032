package feature

import "math"

// VectorFilter post-processes the feature vector of a patch. It returns a new
// slice and never modifies its input.
type VectorFilter interface {
	Apply(v []float64) []float64
}

// VectorFilterFunc adapts a function to VectorFilter.
type VectorFilterFunc func([]float64) []float64

// Apply implements VectorFilter.
func (f VectorFilterFunc) Apply(v []float64) []float64 { return f(v) }

// L2Normalize scales to unit Euclidean length. Zero vectors stay zero.
func L2Normalize() VectorFilter {
	return VectorFilterFunc(func(v []float64) []float64 {
		return l2(clone(v))
	})
}

// ZeroMeanUnitVariance standardises the values. A constant vector becomes all
// zeros.
func ZeroMeanUnitVariance() VectorFilter {
	return VectorFilterFunc(func(v []float64) []float64 {
		out := clone(v)
		if len(out) == 0 {
			return out
		}
		var mean float64
		for _, x := range out {
			mean += x
		}
		mean /= float64(len(out))
		var variance float64
		for _, x := range out {
			variance += (x - mean) * (x - mean)
		}
		sd := math.Sqrt(variance / float64(len(out)))
		for i := range out {
			if sd == 0 {
				out[i] = 0
			} else {
				out[i] = (out[i] - mean) / sd
			}
		}
		return out
	})
}

// Clip limits every value to [lo, hi].
func Clip(lo, hi float64) VectorFilter {
	return VectorFilterFunc(func(v []float64) []float64 {
		out := clone(v)
		for i, x := range out {
			out[i] = math.Min(math.Max(x, lo), hi)
		}
		return out
	})
}

// Power applies sign(x)*|x|^p element-wise, e.g. p = 0.5 for the square root
// normalisation of histogram features.
func Power(p float64) VectorFilter {
	return VectorFilterFunc(func(v []float64) []float64 {
		out := clone(v)
		for i, x := range out {
			out[i] = math.Copysign(math.Pow(math.Abs(x), p), x)
		}
		return out
	})
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
