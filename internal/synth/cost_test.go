package synth

import "testing"

func TestEstimateCost(t *testing.T) {
	tests := []struct {
		model  string
		tokens int
		want   float64
	}{
		{"gpt-4", 1000, 0.0375},
		{"gpt-4", 0, 0},
		{"gpt-3.5-turbo", 1000, 0.001625},
		{"gpt-3.5-turbo", 2000, 0.00325},
		{"unknown-model", 1000, 0},
	}

	for _, tt := range tests {
		if got := EstimateCost(tt.model, tt.tokens); got != tt.want {
			t.Errorf("EstimateCost(%s, %d) = %v, want %v", tt.model, tt.tokens, got, tt.want)
		}
	}
}

func TestEstimateCost_Rounding(t *testing.T) {
	// 1 token of gpt-3.5-turbo: 0.75/1000*0.0015 + 0.25/1000*0.002 = 0.000001625
	// rounds to 0.000002 at six decimal places
	if got := EstimateCost("gpt-3.5-turbo", 1); got != 0.000002 {
		t.Errorf("expected six-decimal rounding, got %v", got)
	}
}
