package strategy

import (
	"math"
	"testing"

	"SignalSentinel/internal/model"
)

func snap(rsi, hist, mom float64) model.IndicatorSnapshot {
	return model.IndicatorSnapshot{RSI: rsi, MACDHist: hist, Momentum: mom}
}

func TestDecide_TierTable(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name       string
		tier       string
		snap       model.IndicatorSnapshot
		signal     model.Signal
		confidence int
	}{
		{"basic oversold buys", "basic", snap(25, 0.01, nan), model.SignalBuy, 80},
		{"basic boundary 30 buys", "basic", snap(30, 0, nan), model.SignalBuy, 80},
		{"basic boundary 70 sells", "basic", snap(70, 0, nan), model.SignalSell, 80},
		{"basic midrange neutral", "basic", snap(50, 0, nan), model.SignalNeutral, 80},
		{"v3 alias matches basic", "v3", snap(25, 0.01, nan), model.SignalBuy, 80},

		{"classic oversold with macd buys", "classic", snap(25, 0.01, nan), model.SignalBuy, 85},
		{"classic 34 with positive macd buys", "classic", snap(34, 0.5, nan), model.SignalBuy, 85},
		{"classic 66 with negative macd sells", "classic", snap(66, -0.5, nan), model.SignalSell, 85},
		{"classic very oversold overrides macd", "classic", snap(24, -1, nan), model.SignalBuy, 85},
		{"classic very overbought overrides macd", "classic", snap(76, 1, nan), model.SignalSell, 85},
		{"classic midrange neutral", "v6", snap(50, 0.2, nan), model.SignalNeutral, 85},

		{"advanced full alignment sells", "advanced", snap(72, -0.002, -6), model.SignalSell, 90},
		{"advanced full alignment buys", "v9", snap(28, 0.002, 3), model.SignalBuy, 90},
		{"advanced two of three buys", "advanced", snap(34, -0.5, 1), model.SignalBuy, 90},
		{"advanced extreme rsi buys", "advanced", snap(19, -0.5, -1), model.SignalBuy, 90},
		{"advanced extreme rsi sells", "advanced", snap(81, 0.5, 1), model.SignalSell, 90},
		{"advanced strong momentum buys", "advanced", snap(45, -0.0005, 6), model.SignalBuy, 90},
		{"advanced strong negative momentum sells", "advanced", snap(55, 0.0005, -6), model.SignalSell, 90},
		{"advanced neutral midrange", "advanced", snap(50, 0, 0), model.SignalNeutral, 90},

		{"free oversold buys", "free", snap(29, 0.01, nan), model.SignalBuy, 80},
		{"free strict boundary stays neutral", "free", snap(30, 0.01, nan), model.SignalNeutral, 80},
		{"premium same rule higher confidence", "premium", snap(71, -0.01, nan), model.SignalSell, 95},

		{"unknown tier falls back to v12", "platinum", snap(29, 0.01, nan), model.SignalBuy, 85},
		{"empty tier falls back to v12", "", snap(71, -0.01, nan), model.SignalSell, 85},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.tier, tt.snap)
			if d.Signal != tt.signal {
				t.Errorf("signal = %s, want %s", d.Signal, tt.signal)
			}
			if d.Confidence != tt.confidence {
				t.Errorf("confidence = %d, want %d", d.Confidence, tt.confidence)
			}
		})
	}
}

func TestDecide_EliteScored(t *testing.T) {
	// Midpoint inputs: score 0, Neutral, confidence 0 from the formula.
	d := Decide("elite", snap(50, 0, 0))
	if d.Signal != model.SignalNeutral {
		t.Errorf("signal = %s, want Neutral", d.Signal)
	}
	if d.Confidence != 0 {
		t.Errorf("confidence = %d, want 0", d.Confidence)
	}

	// Deep oversold with positive histogram and momentum: 3+2+1 = 6 -> Buy.
	d = Decide("elite", snap(20, 0.05, 4))
	if d.Signal != model.SignalBuy {
		t.Errorf("signal = %s, want Buy", d.Signal)
	}
	if d.Confidence < 0 || d.Confidence > 100 {
		t.Errorf("confidence %d out of range", d.Confidence)
	}

	// Deep overbought with negative histogram and momentum: -3-2-2 = -7 -> Sell.
	d = Decide("elite", snap(80, -0.05, -12))
	if d.Signal != model.SignalSell {
		t.Errorf("signal = %s, want Sell", d.Signal)
	}

	// Score just under the buy threshold stays Neutral: 2+1+0 = 3.
	d = Decide("elite", snap(30, 0.0005, 1))
	if d.Signal != model.SignalNeutral {
		t.Errorf("signal = %s, want Neutral for score 3", d.Signal)
	}
}

func TestDecide_FailsClosedOnNaN(t *testing.T) {
	nan := math.NaN()
	tiers := []string{"free", "basic", "classic", "advanced", "premium", "elite", "bogus"}
	for _, tier := range tiers {
		d := Decide(tier, snap(nan, nan, nan))
		if d.Signal != model.SignalNeutral {
			t.Errorf("tier %s: NaN RSI produced %s, want Neutral", tier, d.Signal)
		}
	}

	// MACD-consuming tiers with RSI but no histogram stay Neutral even at
	// extreme RSI levels.
	for _, tier := range []string{"free", "premium"} {
		d := Decide(tier, snap(5, nan, nan))
		if d.Signal != model.SignalNeutral {
			t.Errorf("tier %s: missing MACD produced %s, want Neutral", tier, d.Signal)
		}
	}
}

func TestDecide_AdvancedMomentumFallback(t *testing.T) {
	// Momentum unavailable: v9 degrades to the v12 two-indicator rule but
	// keeps its own confidence and algorithm tag.
	d := Decide("advanced", snap(28, 0.01, math.NaN()))
	if d.Signal != model.SignalBuy {
		t.Errorf("signal = %s, want Buy via v12 fallback", d.Signal)
	}
	if d.Confidence != 90 {
		t.Errorf("confidence = %d, want 90", d.Confidence)
	}
	if d.Algorithm != AlgoV9 {
		t.Errorf("algorithm = %s, want %s", d.Algorithm, AlgoV9)
	}
}

func TestDecide_Deterministic(t *testing.T) {
	s := snap(33, 0.004, 2.5)
	for _, tier := range []string{"basic", "classic", "advanced", "elite", "premium", "free"} {
		first := Decide(tier, s)
		for i := 0; i < 10; i++ {
			if got := Decide(tier, s); got != first {
				t.Fatalf("tier %s: decision not deterministic: %+v vs %+v", tier, got, first)
			}
		}
	}
}

func TestNeeds(t *testing.T) {
	tests := []struct {
		tier string
		want Requirements
	}{
		{"basic", Requirements{}},
		{"v3", Requirements{}},
		{"classic", Requirements{MACD: true}},
		{"advanced", Requirements{MACD: true, Momentum: true}},
		{"elite", Requirements{MACD: true, Momentum: true}},
		{"free", Requirements{MACD: true}},
		{"premium", Requirements{MACD: true}},
		{"unknown", Requirements{MACD: true}},
	}
	for _, tt := range tests {
		if got := Needs(tt.tier); got != tt.want {
			t.Errorf("Needs(%q) = %+v, want %+v", tt.tier, got, tt.want)
		}
	}
}
