// Package scoring analyzes thumbnail images for the comparison UI. It is a
// collaborator of the sync pipeline's sibling subsystem: the pipeline stores
// thumbnail URLs, this package scores the images behind them.
package scoring

import (
	"image"
	"math"
)

// Metrics are the raw signals extracted from a thumbnail.
type Metrics struct {
	AvgBrightness float64 `json:"avgBrightness"` // 0..1 perceptual luminance
	Contrast      float64 `json:"contrast"`      // 0..1 RMS contrast proxy
	TextRatio     float64 `json:"textRatio"`     // 0..1 estimated text coverage
	FaceDetected  bool    `json:"faceDetected"`
}

// Result is the full scoring response.
type Result struct {
	Metrics
	Score float64 `json:"score"` // 0..100
}

// Scoring weights. Contrast dominates; brightness rewards mid-range values
// and penalizes blown-out or murky images; heavy text coverage is penalized;
// a detected face earns a bonus over the 0.5 baseline.
const (
	weightContrast   = 0.35
	weightBrightness = 0.20
	weightText       = 0.25
	weightFace       = 0.20
)

// Score computes the 0..100 composite score from raw metrics:
//
//	score = 100 * (0.35*contrast + 0.20*(1 - 2*|brightness-0.5|)
//	             + 0.25*(1-textRatio) + 0.20*(face ? 1 : 0.5))
func Score(m Metrics) float64 {
	brightnessScore := 1 - 2*math.Abs(m.AvgBrightness-0.5)
	faceBonus := 0.5
	if m.FaceDetected {
		faceBonus = 1
	}

	s := weightContrast*m.Contrast +
		weightBrightness*brightnessScore +
		weightText*(1-m.TextRatio) +
		weightFace*faceBonus

	return round2(s * 100)
}

// Analyze extracts metrics from a decoded image and scores it. Text coverage
// and face detection need OCR and a face model; neither has shipped, so both
// report their neutral values for now.
func Analyze(img image.Image) Result {
	m := Metrics{
		AvgBrightness: round2(avgBrightness(img)),
		Contrast:      round2(rmsContrast(img)),
	}
	return Result{Metrics: m, Score: Score(m)}
}

// avgBrightness is the mean perceptual luminance (Rec. 601 weights).
func avgBrightness(img image.Image) float64 {
	bounds := img.Bounds()
	total := float64(bounds.Dx() * bounds.Dy())
	if total == 0 {
		return 0
	}

	var sum float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			sum += luminance(img.At(x, y).RGBA())
		}
	}
	return sum / total
}

// rmsContrast is the standard deviation of luminance, normalized so that a
// stddev of 0.5 (the maximum for values in 0..1) maps to 1.
func rmsContrast(img image.Image) float64 {
	bounds := img.Bounds()
	total := float64(bounds.Dx() * bounds.Dy())
	if total == 0 {
		return 0
	}

	var sum, sumSq float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			l := luminance(img.At(x, y).RGBA())
			sum += l
			sumSq += l * l
		}
	}

	mean := sum / total
	variance := sumSq/total - mean*mean
	if variance < 0 {
		variance = 0
	}
	return math.Min(math.Sqrt(variance)/0.5, 1)
}

func luminance(r, g, b, _ uint32) float64 {
	return (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 0xffff
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
