package classifier

import (
	"fmt"
	"math"
)

// AlertThreshold is the confidence a non-normal prediction must exceed
// (strictly) before an alert is raised.
const AlertThreshold = 0.75

type assessment struct {
	index      int
	confidence float64
	alert      bool
	critical   bool
}

// softmax is max-subtracted so large logits do not overflow.
func softmax(logits []float32) []float64 {
	probs := make([]float64, len(logits))
	if len(logits) == 0 {
		return probs
	}

	maxLogit := float64(logits[0])
	for _, l := range logits[1:] {
		maxLogit = math.Max(maxLogit, float64(l))
	}

	var sum float64
	for i, l := range logits {
		probs[i] = math.Exp(float64(l) - maxLogit)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// argmax returns the first index holding the largest value.
func argmax(probs []float64) (int, float64) {
	maxIdx, maxVal := 0, probs[0]
	for i, p := range probs[1:] {
		if p > maxVal {
			maxIdx, maxVal = i+1, p
		}
	}
	return maxIdx, maxVal
}

func (c *Classifier) assess(probs []float64) assessment {
	idx, confidence := argmax(probs)
	return assessment{
		index:      idx,
		confidence: confidence,
		alert:      confidence > AlertThreshold && idx != c.normalIdx,
		critical:   c.criticalIdx[idx],
	}
}

func formatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", p*100)
}
