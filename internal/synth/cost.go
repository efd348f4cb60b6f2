package synth

import "math"

// modelPricing is USD per 1K tokens.
type modelPricing struct {
	Input  float64
	Output float64
}

var pricing = map[string]modelPricing{
	"gpt-4":         {Input: 0.03, Output: 0.06},
	"gpt-3.5-turbo": {Input: 0.0015, Output: 0.002},
}

// EstimateCost approximates the USD cost of a call from its total token
// count, assuming a 75/25 input/output split. Unknown models cost zero.
// The result is rounded to six decimal places.
func EstimateCost(model string, totalTokens int) float64 {
	p, ok := pricing[model]
	if !ok {
		return 0
	}
	inputTokens := float64(totalTokens) * 0.75
	outputTokens := float64(totalTokens) * 0.25
	cost := inputTokens/1000*p.Input + outputTokens/1000*p.Output
	return math.Round(cost*1e6) / 1e6
}
