package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"SignalSentinel/internal/model"
	"SignalSentinel/internal/strategy"
)

// subscriberRow is the raw joined row shape before eligibility filtering.
type subscriberRow struct {
	id          int64
	email       string
	displayName string
	isAdmin     bool
	planType    string
	coins       string
	status      string
	push        model.PushSubscription
}

// ListEligible returns the subscribers to monitor this cycle: active users
// that are administrators or hold an active subscription. Administrators are
// always eligible regardless of billing state and get the free tier with the
// given default symbol set. Read-only; the liveness touch is a separate call.
func (s *Store) ListEligible(ctx context.Context, defaultSymbols []string) ([]model.Subscriber, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.email, u.display_name, u.is_admin,
		       u.push_enabled, u.push_endpoint, u.push_p256dh, u.push_auth,
		       COALESCE(sub.plan_type, ''), COALESCE(sub.coins, ''), COALESCE(sub.status, '')
		FROM users u
		LEFT JOIN subscriptions sub ON sub.user_id = u.id
		WHERE u.is_active = 1 AND (u.is_admin = 1 OR sub.status = 'active')`)
	if err != nil {
		return nil, fmt.Errorf("query eligible subscribers: %w", err)
	}
	defer rows.Close()

	// The join yields one row per subscription record; a user with several
	// rows (old cancelled plans, admins with billing history) must still be
	// monitored exactly once.
	seen := map[int64]bool{}
	var out []model.Subscriber
	for rows.Next() {
		var r subscriberRow
		if err := rows.Scan(&r.id, &r.email, &r.displayName, &r.isAdmin,
			&r.push.Enabled, &r.push.Endpoint, &r.push.P256dh, &r.push.Auth,
			&r.planType, &r.coins, &r.status); err != nil {
			return nil, fmt.Errorf("scan subscriber row: %w", err)
		}
		if seen[r.id] {
			continue
		}
		seen[r.id] = true
		sub, ok := buildSubscriber(r, defaultSymbols)
		if !ok {
			s.log.Warn().Int64("user_id", r.id).Msg("subscriber excluded from cycle")
			continue
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscribers: %w", err)
	}

	s.log.Info().Int("count", len(out)).Msg("eligible subscribers loaded")
	return out, nil
}

// buildSubscriber applies the eligibility rules to one raw row. A subscriber
// with an empty, unparsable, or over-cap symbol list is excluded entirely,
// never truncated or partially processed.
func buildSubscriber(r subscriberRow, defaultSymbols []string) (model.Subscriber, bool) {
	sub := model.Subscriber{
		ID:          r.id,
		Email:       r.email,
		DisplayName: r.displayName,
		IsAdmin:     r.isAdmin,
		Push:        r.push,
	}

	if r.isAdmin {
		sub.Tier = strategy.TierFree
		sub.Symbols = append([]string(nil), defaultSymbols...)
		return sub, len(sub.Symbols) > 0
	}

	// Plans are stored with whatever casing the billing side used; normalize
	// once so the symbol cap and the decision engine agree on the tier.
	plan := strings.ToLower(strings.TrimSpace(r.planType))
	if r.status != "active" || plan == "" {
		return model.Subscriber{}, false
	}

	symbols, err := parseCoins(r.coins)
	if err != nil || len(symbols) == 0 {
		return model.Subscriber{}, false
	}
	if plan != strategy.TierElite && len(symbols) > model.MaxSymbolsNonElite {
		return model.Subscriber{}, false
	}

	sub.Tier = plan
	sub.Symbols = symbols
	return sub, true
}

// parseCoins decodes the stored serialized symbol list (a JSON string array)
// and drops blank entries.
func parseCoins(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var coins []string
	if err := json.Unmarshal([]byte(raw), &coins); err != nil {
		return nil, fmt.Errorf("parse coins list: %w", err)
	}
	out := coins[:0]
	for _, c := range coins {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out, nil
}
