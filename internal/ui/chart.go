package ui

import "math"

// sparkLevels are the block characters used for single-line charts, from
// lowest to highest.
var sparkLevels = []rune(" ▁▂▃▄▅▆▇█")

// Sparkline renders values as one line of block characters, at most width
// cells wide. Longer series are downsampled by averaging buckets. Flat
// series render at mid-height so the line stays visible.
func Sparkline(values []float64, width int) string {
	values = downsample(values, width)
	if len(values) == 0 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	out := make([]rune, len(values))
	span := hi - lo
	for i, v := range values {
		if span == 0 {
			out[i] = sparkLevels[len(sparkLevels)/2]
			continue
		}
		idx := int((v - lo) / span * float64(len(sparkLevels)-1))
		out[i] = sparkLevels[idx]
	}
	return string(out)
}

// downsample reduces values to at most width points by bucket averaging.
func downsample(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		return values
	}
	out := make([]float64, width)
	for i := 0; i < width; i++ {
		start := i * len(values) / width
		end := (i + 1) * len(values) / width
		if end <= start {
			end = start + 1
		}
		sum := 0.0
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

// rangeOf returns the min and max of values, or zeros for an empty slice.
func rangeOf(values []float64) (lo, hi float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi = values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
