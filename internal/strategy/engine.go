package strategy

import (
	"math"
	"strings"

	"SignalSentinel/internal/indicator"
	"SignalSentinel/internal/model"
)

// Tier labels and algorithm aliases form a closed set. Plan names map onto
// algorithm versions: basic=v3, classic=v6, advanced=v9, free/premium=v12.
// The elite tier uses the separate additive-score rule.
const (
	TierFree     = "free"
	TierBasic    = "basic"
	TierClassic  = "classic"
	TierAdvanced = "advanced"
	TierPremium  = "premium"
	TierElite    = "elite"

	AlgoV3  = "v3"
	AlgoV6  = "v6"
	AlgoV9  = "v9"
	AlgoV12 = "v12"
)

// Requirements lists which indicators a tier's rule consumes, so the caller
// can skip computing series the rule never reads.
type Requirements struct {
	MACD     bool
	Momentum bool
}

// Needs returns the indicator requirements for a tier. Unknown tiers fall
// back to the v12 rule and therefore need the MACD histogram.
func Needs(tier string) Requirements {
	switch normalize(tier) {
	case TierBasic, AlgoV3:
		return Requirements{}
	case TierClassic, AlgoV6:
		return Requirements{MACD: true}
	case TierAdvanced, AlgoV9, TierElite:
		return Requirements{MACD: true, Momentum: true}
	default:
		return Requirements{MACD: true}
	}
}

// Decide maps a tier and an indicator snapshot to a trade decision.
// The engine is stateless and pure: identical inputs always produce the
// identical decision. Undefined (NaN) inputs fail closed to Neutral so that
// malformed data can never emit an alert.
func Decide(tier string, snap model.IndicatorSnapshot) model.Decision {
	if !snap.HasRSI() {
		return neutral(tier)
	}

	switch normalize(tier) {
	case TierBasic, AlgoV3:
		return decideV3(snap)
	case TierClassic, AlgoV6:
		return decideV6(snap)
	case TierAdvanced, AlgoV9:
		return decideV9(snap)
	case TierFree, AlgoV12:
		return decideV12(snap, 80)
	case TierPremium:
		return decideV12(snap, 95)
	case TierElite:
		return decideElite(snap)
	default:
		// Unrecognized tier: v12 rule at middling confidence.
		return decideV12(snap, 85)
	}
}

func neutral(tier string) model.Decision {
	return model.Decision{Signal: model.SignalNeutral, Algorithm: algorithmTag(tier)}
}

// algorithmTag is the label recorded on alerts for a tier.
func algorithmTag(tier string) string {
	switch normalize(tier) {
	case TierBasic, AlgoV3:
		return AlgoV3
	case TierClassic, AlgoV6:
		return AlgoV6
	case TierAdvanced, AlgoV9:
		return AlgoV9
	case TierElite:
		return TierElite
	default:
		return AlgoV12
	}
}

func normalize(tier string) string {
	return strings.ToLower(strings.TrimSpace(tier))
}

// decideV3: RSI-only thresholds.
func decideV3(snap model.IndicatorSnapshot) model.Decision {
	d := model.Decision{Signal: model.SignalNeutral, Confidence: 80, Algorithm: AlgoV3}
	switch {
	case snap.RSI <= 30:
		d.Signal = model.SignalBuy
	case snap.RSI >= 70:
		d.Signal = model.SignalSell
	}
	return d
}

// decideV6: RSI plus MACD histogram, with extreme-RSI overrides.
func decideV6(snap model.IndicatorSnapshot) model.Decision {
	d := model.Decision{Signal: model.SignalNeutral, Confidence: 85, Algorithm: AlgoV6}
	if !snap.HasMACD() {
		return d
	}
	switch {
	case snap.RSI <= 35 && snap.MACDHist > 0:
		d.Signal = model.SignalBuy
	case snap.RSI >= 65 && snap.MACDHist < 0:
		d.Signal = model.SignalSell
	case snap.RSI <= 25:
		d.Signal = model.SignalBuy
	case snap.RSI >= 75:
		d.Signal = model.SignalSell
	}
	return d
}

// decideV9: RSI, MACD histogram and momentum; rules evaluated top to bottom,
// first match wins. Falls back to the v12 rule when momentum is unavailable.
func decideV9(snap model.IndicatorSnapshot) model.Decision {
	d := model.Decision{Signal: model.SignalNeutral, Confidence: 90, Algorithm: AlgoV9}
	if !snap.HasMACD() {
		return d
	}
	if !snap.HasMomentum() {
		v12 := decideV12(snap, 90)
		v12.Algorithm = AlgoV9
		return v12
	}
	rsi, hist, mom := snap.RSI, snap.MACDHist, snap.Momentum
	switch {
	case rsi <= 30 && hist > 0 && mom > 0:
		d.Signal = model.SignalBuy
	case rsi >= 70 && hist < 0 && mom < 0:
		d.Signal = model.SignalSell
	case rsi <= 35 && (hist > 0 || mom > 0):
		d.Signal = model.SignalBuy
	case rsi >= 65 && (hist < 0 || mom < 0):
		d.Signal = model.SignalSell
	case rsi <= 20:
		d.Signal = model.SignalBuy
	case rsi >= 80:
		d.Signal = model.SignalSell
	case mom > 5 && rsi < 50:
		d.Signal = model.SignalBuy
	case mom < -5 && rsi > 50:
		d.Signal = model.SignalSell
	}
	return d
}

// decideV12: two-indicator rule shared by the free and premium plans; only
// the fixed confidence differs between them.
func decideV12(snap model.IndicatorSnapshot, confidence int) model.Decision {
	d := model.Decision{Signal: model.SignalNeutral, Confidence: confidence, Algorithm: AlgoV12}
	if !snap.HasMACD() {
		return d
	}
	switch {
	case snap.RSI < 30 && snap.MACDHist > 0:
		d.Signal = model.SignalBuy
	case snap.RSI > 70 && snap.MACDHist < 0:
		d.Signal = model.SignalSell
	}
	return d
}

// decideElite: additive score across all three indicators. Confidence is
// computed from the indicator values rather than fixed.
func decideElite(snap model.IndicatorSnapshot) model.Decision {
	d := model.Decision{Signal: model.SignalNeutral, Algorithm: TierElite}
	if !snap.HasMACD() || !snap.HasMomentum() {
		return d
	}

	score := 0
	switch {
	case snap.RSI <= 25:
		score += 3
	case snap.RSI <= 35:
		score += 2
	case snap.RSI >= 75:
		score -= 3
	case snap.RSI >= 65:
		score -= 2
	}
	switch {
	case snap.MACDHist > 0.001:
		score += 2
	case snap.MACDHist > 0:
		score++
	case snap.MACDHist < -0.001:
		score -= 2
	case snap.MACDHist < 0:
		score--
	}
	switch {
	case snap.Momentum > 10:
		score += 2
	case snap.Momentum > 2:
		score++
	case snap.Momentum < -10:
		score -= 2
	case snap.Momentum < -2:
		score--
	}

	switch {
	case score >= 4:
		d.Signal = model.SignalBuy
	case score <= -4:
		d.Signal = model.SignalSell
	}
	d.Confidence = int(math.Round(indicator.Confidence(snap.RSI, snap.MACDHist)))
	return d
}
