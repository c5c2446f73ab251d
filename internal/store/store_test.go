package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"SignalSentinel/internal/model"
)

var defaults = []string{"BTC", "ETH"}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedUser(t *testing.T, s *Store, email string, isAdmin, isActive bool) int64 {
	t.Helper()
	res, err := s.db.Exec(
		`INSERT INTO users (email, display_name, is_admin, is_active) VALUES (?,?,?,?)`,
		email, email, isAdmin, isActive)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

func seedSubscription(t *testing.T, s *Store, userID int64, plan, coins, status string) {
	t.Helper()
	if _, err := s.db.Exec(
		`INSERT INTO subscriptions (user_id, plan_type, coins, status) VALUES (?,?,?,?)`,
		userID, plan, coins, status); err != nil {
		t.Fatalf("seed subscription: %v", err)
	}
}

func TestListEligible_Filtering(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	okID := seedUser(t, s, "ok@example.com", false, true)
	seedSubscription(t, s, okID, "v9", `["BTC","SOL"]`, "active")

	adminID := seedUser(t, s, "admin@example.com", true, true)

	inactiveSubID := seedUser(t, s, "lapsed@example.com", false, true)
	seedSubscription(t, s, inactiveSubID, "v6", `["BTC"]`, "cancelled")

	inactiveUserID := seedUser(t, s, "gone@example.com", false, false)
	seedSubscription(t, s, inactiveUserID, "v6", `["BTC"]`, "active")

	emptyCoinsID := seedUser(t, s, "empty@example.com", false, true)
	seedSubscription(t, s, emptyCoinsID, "v3", `[]`, "active")

	badJSONID := seedUser(t, s, "bad@example.com", false, true)
	seedSubscription(t, s, badJSONID, "v3", `{not json`, "active")

	overCapID := seedUser(t, s, "greedy@example.com", false, true)
	seedSubscription(t, s, overCapID, "v9", `["BTC","ETH","SOL"]`, "active")

	eliteID := seedUser(t, s, "elite@example.com", false, true)
	seedSubscription(t, s, eliteID, "elite", `["BTC","ETH","SOL","ADA"]`, "active")

	subs, err := s.ListEligible(ctx, defaults)
	if err != nil {
		t.Fatalf("ListEligible: %v", err)
	}

	byEmail := map[string]model.Subscriber{}
	for _, sub := range subs {
		byEmail[sub.Email] = sub
	}

	if len(subs) != 3 {
		t.Fatalf("got %d eligible subscribers, want 3: %v", len(subs), byEmail)
	}

	ok := byEmail["ok@example.com"]
	if ok.Tier != "v9" || len(ok.Symbols) != 2 {
		t.Errorf("regular subscriber mis-built: %+v", ok)
	}

	admin := byEmail["admin@example.com"]
	if admin.ID != adminID {
		t.Errorf("admin ID = %d, want %d", admin.ID, adminID)
	}
	if admin.Tier != "free" {
		t.Errorf("admin tier = %q, want free", admin.Tier)
	}
	if len(admin.Symbols) != 2 || admin.Symbols[0] != "BTC" || admin.Symbols[1] != "ETH" {
		t.Errorf("admin symbols = %v, want default set", admin.Symbols)
	}

	elite := byEmail["elite@example.com"]
	if len(elite.Symbols) != 4 {
		t.Errorf("elite symbols = %v, want all 4 (no cap)", elite.Symbols)
	}

	for _, email := range []string{"lapsed@example.com", "gone@example.com",
		"empty@example.com", "bad@example.com", "greedy@example.com"} {
		if _, found := byEmail[email]; found {
			t.Errorf("%s should have been excluded", email)
		}
	}
}

func TestListEligible_OneEntryPerUser(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Admin with billing history: a cancelled row plus an active one.
	adminID := seedUser(t, s, "admin@example.com", true, true)
	seedSubscription(t, s, adminID, "v9", `["BTC"]`, "cancelled")
	seedSubscription(t, s, adminID, "v9", `["BTC"]`, "active")

	// Customer who ended up with two active rows.
	custID := seedUser(t, s, "double@example.com", false, true)
	seedSubscription(t, s, custID, "v6", `["BTC"]`, "active")
	seedSubscription(t, s, custID, "v6", `["BTC"]`, "active")

	subs, err := s.ListEligible(ctx, defaults)
	if err != nil {
		t.Fatalf("ListEligible: %v", err)
	}

	counts := map[int64]int{}
	for _, sub := range subs {
		counts[sub.ID]++
	}
	if counts[adminID] != 1 {
		t.Errorf("admin appears %d times in eligible list, want 1", counts[adminID])
	}
	if counts[custID] != 1 {
		t.Errorf("customer appears %d times in eligible list, want 1", counts[custID])
	}
}

func TestBuildSubscriber_PlanCasingNormalized(t *testing.T) {
	r := subscriberRow{
		id: 1, email: "u@example.com", planType: " Elite ",
		coins: `["BTC","ETH","SOL","ADA"]`, status: "active",
	}
	sub, ok := buildSubscriber(r, defaults)
	if !ok {
		t.Fatal("elite subscriber with 4 symbols should be eligible regardless of plan casing")
	}
	if sub.Tier != "elite" {
		t.Errorf("tier = %q, want normalized elite", sub.Tier)
	}
	if len(sub.Symbols) != 4 {
		t.Errorf("symbols = %v, want all 4 (elite is uncapped)", sub.Symbols)
	}
}

func TestBuildSubscriber_OverCapExcludedEntirely(t *testing.T) {
	r := subscriberRow{
		id: 1, email: "u@example.com", planType: "v6",
		coins: `["BTC","ETH","SOL"]`, status: "active",
	}
	if sub, ok := buildSubscriber(r, defaults); ok {
		t.Errorf("over-cap subscriber not excluded, got %+v (must not truncate)", sub)
	}
}

func TestBuildSubscriber_BlankCoinsDropped(t *testing.T) {
	r := subscriberRow{
		id: 1, email: "u@example.com", planType: "v6",
		coins: `["BTC", "  "]`, status: "active",
	}
	sub, ok := buildSubscriber(r, defaults)
	if !ok {
		t.Fatal("subscriber with one valid coin should be eligible")
	}
	if len(sub.Symbols) != 1 || sub.Symbols[0] != "BTC" {
		t.Errorf("symbols = %v, want [BTC]", sub.Symbols)
	}
}

func TestTouchBotActivity(t *testing.T) {
	s := openTestStore(t)
	id := seedUser(t, s, "touch@example.com", true, true)

	before := time.Now().UTC().Unix()
	if err := s.TouchBotActivity(context.Background(), id); err != nil {
		t.Fatalf("TouchBotActivity: %v", err)
	}

	var ts int64
	if err := s.db.QueryRow(`SELECT bot_last_active FROM users WHERE id = ?`, id).Scan(&ts); err != nil {
		t.Fatalf("read bot_last_active: %v", err)
	}
	if ts < before {
		t.Errorf("bot_last_active = %d, want >= %d", ts, before)
	}
}

func TestInsertAlert_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	id := seedUser(t, s, "alerts@example.com", false, true)

	created := time.Now().UTC().Truncate(time.Second)
	alert := &model.Alert{
		UserID:     id,
		CoinPair:   "BTC/USD",
		AlertType:  "buy",
		Price:      43150.75,
		Confidence: 90,
		Algorithm:  "v9",
		Message:    "BUY signal for BTCUSDT",
		CreatedAt:  created,
		ExpiresAt:  created.Add(model.AlertTTL),
	}
	if err := s.InsertAlert(context.Background(), alert); err != nil {
		t.Fatalf("InsertAlert: %v", err)
	}
	if alert.ID == 0 {
		t.Error("alert ID not populated after insert")
	}

	var (
		pair, kind, algo string
		confidence       int
		isRead           bool
		createdAt        int64
		expiresAt        int64
	)
	err := s.db.QueryRow(
		`SELECT coin_pair, alert_type, algorithm, confidence, is_read, created_at, expires_at
		 FROM trading_alerts WHERE id = ?`, alert.ID).
		Scan(&pair, &kind, &algo, &confidence, &isRead, &createdAt, &expiresAt)
	if err != nil {
		t.Fatalf("read alert back: %v", err)
	}
	if pair != "BTC/USD" || kind != "buy" || algo != "v9" || confidence != 90 {
		t.Errorf("alert row mismatch: %s %s %s %d", pair, kind, algo, confidence)
	}
	if isRead {
		t.Error("is_read should default to false")
	}
	if expiresAt-createdAt != int64(model.AlertTTL/time.Second) {
		t.Errorf("expiry - created = %ds, want exactly 24h", expiresAt-createdAt)
	}
}
