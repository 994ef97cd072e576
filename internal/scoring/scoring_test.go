package scoring

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScore_IdealMetrics(t *testing.T) {
	// Max contrast, mid brightness, no text, face present.
	got := Score(Metrics{AvgBrightness: 0.5, Contrast: 1, TextRatio: 0, FaceDetected: true})
	if got != 100 {
		t.Errorf("score = %.2f, want 100.00", got)
	}
}

func TestScore_WorstMetrics(t *testing.T) {
	// Zero contrast, blown-out brightness, full text coverage, no face.
	// Only the 0.5 face baseline contributes: 0.20 * 0.5 * 100 = 10.
	got := Score(Metrics{AvgBrightness: 1, Contrast: 0, TextRatio: 1, FaceDetected: false})
	if got != 10 {
		t.Errorf("score = %.2f, want 10.00", got)
	}
}

func TestScore_FaceBonusWorthTenPoints(t *testing.T) {
	m := Metrics{AvgBrightness: 0.5, Contrast: 0.6, TextRatio: 0.2}

	without := Score(m)
	m.FaceDetected = true
	with := Score(m)

	if !almostEqual(with-without, 10) {
		t.Errorf("face bonus = %.2f points, want 10.00", with-without)
	}
}

func TestScore_BrightnessPenalizesExtremes(t *testing.T) {
	mid := Score(Metrics{AvgBrightness: 0.5, Contrast: 0.5})
	dark := Score(Metrics{AvgBrightness: 0.1, Contrast: 0.5})
	bright := Score(Metrics{AvgBrightness: 0.9, Contrast: 0.5})

	if mid <= dark || mid <= bright {
		t.Errorf("mid-brightness score %.2f should beat extremes (%.2f, %.2f)", mid, dark, bright)
	}
	if !almostEqual(dark, bright) {
		t.Errorf("symmetric extremes score differently: %.2f vs %.2f", dark, bright)
	}
}

func TestScore_FormulaSpotCheck(t *testing.T) {
	// score = 100 * (0.35*0.8 + 0.20*(1-2*|0.4-0.5|) + 0.25*(1-0.3) + 0.20*0.5)
	//       = 100 * (0.28 + 0.16 + 0.175 + 0.10) = 71.5
	got := Score(Metrics{AvgBrightness: 0.4, Contrast: 0.8, TextRatio: 0.3})
	if got != 71.5 {
		t.Errorf("score = %.2f, want 71.50", got)
	}
}

func TestAnalyze_UniformGray(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.Gray{Y: 128})
		}
	}

	res := Analyze(img)
	if res.Contrast != 0 {
		t.Errorf("uniform image contrast = %.2f, want 0.00", res.Contrast)
	}
	if res.AvgBrightness < 0.45 || res.AvgBrightness > 0.55 {
		t.Errorf("mid-gray brightness = %.2f, want ~0.50", res.AvgBrightness)
	}
}

func TestAnalyze_Checkerboard(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, color.White)
			} else {
				img.Set(x, y, color.Black)
			}
		}
	}

	res := Analyze(img)
	if res.Contrast < 0.95 {
		t.Errorf("checkerboard contrast = %.2f, want ~1.00", res.Contrast)
	}
	if res.AvgBrightness < 0.45 || res.AvgBrightness > 0.55 {
		t.Errorf("checkerboard brightness = %.2f, want ~0.50", res.AvgBrightness)
	}
}

func TestAnalyze_EmptyImage(t *testing.T) {
	res := Analyze(image.NewRGBA(image.Rect(0, 0, 0, 0)))
	if res.AvgBrightness != 0 || res.Contrast != 0 {
		t.Errorf("empty image metrics = %+v, want zeros", res.Metrics)
	}
}
