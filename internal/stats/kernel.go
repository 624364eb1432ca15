/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package stats holds the small numeric kernel the insight selectors are built
// on. Every function here is total: degenerate input yields a defined value,
// never a panic or NaN.
package stats

import (
	"math"
	"sort"
)

// WeightedSample is a release year carrying a non-negative weight.
type WeightedSample struct {
	Year   int
	Weight float64
}

func sanitizeWeight(w float64) float64 {
	if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return 0
	}
	return w
}

// TotalWeight sums the sanitized weights of samples.
func TotalWeight(samples []WeightedSample) float64 {
	var total float64
	for _, s := range samples {
		total += sanitizeWeight(s.Weight)
	}
	return total
}

// WeightedMedian returns the first year, in ascending order, whose cumulative
// weight reaches half of the total. With no samples or zero total weight it
// returns currentYear.
func WeightedMedian(samples []WeightedSample, currentYear int) int {
	total := TotalWeight(samples)
	if len(samples) == 0 || total <= 0 {
		return currentYear
	}

	sorted := make([]WeightedSample, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Year < sorted[j].Year
	})

	half := total * 0.5
	var cumulative float64
	for _, s := range sorted {
		cumulative += sanitizeWeight(s.Weight)
		if cumulative >= half {
			return s.Year
		}
	}
	return sorted[len(sorted)-1].Year
}

// WeightedMean returns the weighted mean year. ok is false when the total
// weight is zero.
func WeightedMean(samples []WeightedSample) (mean float64, ok bool) {
	total := TotalWeight(samples)
	if total <= 0 {
		return 0, false
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s.Year) * sanitizeWeight(s.Weight)
	}
	return sum / total, true
}

// WeightedStdDev is the population weighted standard deviation around mean.
func WeightedStdDev(samples []WeightedSample, mean float64) float64 {
	total := TotalWeight(samples)
	if len(samples) == 0 || total <= 0 {
		return 0
	}
	var acc float64
	for _, s := range samples {
		d := float64(s.Year) - mean
		acc += sanitizeWeight(s.Weight) * d * d
	}
	v := acc / total
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	return math.Sqrt(v)
}

// Frequencies counts occurrences of each distinct item.
func Frequencies[T comparable](items []T) map[T]int {
	counts := make(map[T]int, len(items))
	for _, it := range items {
		counts[it]++
	}
	return counts
}

// ShannonEntropy is the entropy in bits of the category frequencies of items.
func ShannonEntropy[T comparable](items []T) float64 {
	if len(items) == 0 {
		return 0
	}
	counts := Frequencies(items)
	if len(counts) <= 1 {
		return 0
	}
	n := float64(len(items))
	var h float64
	for _, c := range counts {
		p := float64(c) / n
		h -= p * math.Log2(p)
	}
	if h < 0 {
		return 0
	}
	return h
}

// NormalizedEntropy divides ShannonEntropy by log2 of the distinct count,
// giving a value in [0, 1]. One or zero categories yield 0.
func NormalizedEntropy[T comparable](items []T) float64 {
	distinct := len(Frequencies(items))
	if distinct <= 1 {
		return 0
	}
	return Clamp(ShannonEntropy(items)/math.Log2(float64(distinct)), 0, 1)
}

// UniqueRatio is distinct/total, 0 for empty input.
func UniqueRatio[T comparable](items []T) float64 {
	if len(items) == 0 {
		return 0
	}
	return float64(len(Frequencies(items))) / float64(len(items))
}

// Mean of values, 0 for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Variance is the population variance of values.
func Variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := Mean(values)
	var acc float64
	for _, v := range values {
		acc += (v - m) * (v - m)
	}
	return acc / float64(len(values))
}

// StdDev is the population standard deviation of values.
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// Median of values (average of the middle pair for even lengths).
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// Clamp bounds v to [lo, hi], mapping NaN to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
