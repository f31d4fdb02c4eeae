package transform

import (
	"math"
	"unicode/utf8"

	"github.com/beforest/brandvoice/pkg/util"
)

const (
	baseQualityScore = 3.0
	minQualityScore  = 1.0
	maxQualityScore  = 5.0
	socialPostLimit  = 280
)

// RuneLength counts code points.
func RuneLength(s string) int {
	return utf8.RuneCountInString(s)
}

// LengthChangePercent is zero for an empty original.
func LengthChangePercent(original, transformed int) float64 {
	if original == 0 {
		return 0
	}
	return util.Round2(float64(transformed-original) / float64(original) * 100)
}

// QualityScore is a length-based heuristic clamped to [1,5].
func QualityScore(contentType string, original, transformed int, changePercent float64) float64 {
	score := baseQualityScore
	switch abs := math.Abs(changePercent); {
	case abs < 20:
		score += 0.5
	case abs > 50:
		score -= 0.3
	}

	switch contentType {
	case "social":
		if transformed <= socialPostLimit {
			score += 0.3
		}
	case "email":
		if float64(transformed) > float64(original)*0.8 {
			score += 0.2
		}
	case "marketing":
		if transformed > original {
			score += 0.2
		}
	}

	score = math.Max(minQualityScore, math.Min(maxQualityScore, score))
	return util.Round2(score)
}
