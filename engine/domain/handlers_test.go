package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	contractx "github.com/thanakit-dev/leadpilot/engine/contract"
	statex "github.com/thanakit-dev/leadpilot/engine/state"
)

func analysisWith(entities map[string]any) contractx.AnalysisResult {
	return contractx.AnalysisResult{ExtractedEntities: entities}
}

func TestPremiumQuoteComplete(t *testing.T) {
	t.Parallel()

	out, err := premiumQuote(context.Background(), "quote me", nil, analysisWith(map[string]any{
		"product_type":    "life",
		"age":             40,
		"coverage_amount": 100000,
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !out.Success {
		t.Fatalf("expected success, got %+v", out)
	}

	// 100000 * 0.012 * (1 + 10*0.02) = 1440 annual, 120 monthly.
	if out.Data["annual_premium"] != 1440.0 {
		t.Fatalf("expected annual 1440, got %v", out.Data["annual_premium"])
	}
	if out.Data["monthly_premium"] != 120.0 {
		t.Fatalf("expected monthly 120, got %v", out.Data["monthly_premium"])
	}
}

func TestPremiumQuoteAgeLoadingCap(t *testing.T) {
	t.Parallel()

	out, err := premiumQuote(context.Background(), "", nil, analysisWith(map[string]any{
		"product_type":    "home",
		"age":             95,
		"coverage_amount": 10000,
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	// Loading caps at 2x: 10000 * 0.008 * 2 = 160.
	if out.Data["annual_premium"] != 160.0 {
		t.Fatalf("expected capped annual 160, got %v", out.Data["annual_premium"])
	}
}

func TestPremiumQuoteMissingFields(t *testing.T) {
	t.Parallel()

	out, err := premiumQuote(context.Background(), "", nil, analysisWith(map[string]any{
		"product_type": "health",
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if out.Success || !out.NeedsFollowUp {
		t.Fatalf("expected incomplete result, got %+v", out)
	}
	if len(out.MissingFields) != 2 {
		t.Fatalf("expected age and coverage_amount missing, got %v", out.MissingFields)
	}
}

func TestPremiumQuoteFallsBackToEntityType(t *testing.T) {
	t.Parallel()

	analysis := analysisWith(map[string]any{
		"age":             30,
		"coverage_amount": 50000,
	})
	analysis.EntityType = "auto"

	out, err := premiumQuote(context.Background(), "", nil, analysis)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !out.Success || out.Data["product_type"] != "auto" {
		t.Fatalf("expected entity type used as product, got %+v", out)
	}
}

func TestPremiumQuoteReadsCustomerInfo(t *testing.T) {
	t.Parallel()

	conv := statex.NewConversationContext("c", "u", DomainInsurance, "quoting", time.Now())
	conv.CustomerInfo["age"] = "35"
	conv.CustomerInfo["coverage_amount"] = 20000.0
	conv.CustomerInfo["product_type"] = "health"

	out, err := premiumQuote(context.Background(), "", conv, contractx.AnalysisResult{})
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !out.Success {
		t.Fatalf("expected success from accumulated info, got %+v", out)
	}
}

func TestBookingQuoteGuestFactor(t *testing.T) {
	t.Parallel()

	out, err := bookingQuote(context.Background(), "", nil, analysisWith(map[string]any{
		"room_type": "villa",
		"nights":    3,
		"guests":    4,
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	// 950 * 3 * (1 + 2*0.15) = 3705.
	if out.Data["total_price"] != 3705.0 {
		t.Fatalf("expected 3705, got %v", out.Data["total_price"])
	}
}

func TestBookingQuoteRejectsNonPositiveCounts(t *testing.T) {
	t.Parallel()

	out, err := bookingQuote(context.Background(), "", nil, analysisWith(map[string]any{
		"room_type": "suite",
		"nights":    0,
		"guests":    -1,
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if out.Success || len(out.MissingFields) != 2 {
		t.Fatalf("expected nights and guests flagged, got %+v", out)
	}
}

func TestRetirementProjectionComplete(t *testing.T) {
	t.Parallel()

	out, err := retirementProjection(context.Background(), "", nil, analysisWith(map[string]any{
		"age":                  30,
		"retirement_age":       31,
		"monthly_contribution": 100,
		"current_savings":      1000,
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !out.Success {
		t.Fatalf("expected success, got %+v", out)
	}
	// One year at 5% nominal: pot grows past contributions alone.
	pot, ok := out.Data["projected_pot"].(float64)
	if !ok {
		t.Fatalf("projected_pot not a float: %v", out.Data["projected_pot"])
	}
	if pot <= 1000+12*100 {
		t.Fatalf("projection should exceed raw contributions, got %v", pot)
	}
	if pot > 2400 {
		t.Fatalf("projection implausibly high for one year: %v", pot)
	}
}

func TestRetirementProjectionRejectsPastRetirement(t *testing.T) {
	t.Parallel()

	out, err := retirementProjection(context.Background(), "", nil, analysisWith(map[string]any{
		"age":                  65,
		"retirement_age":       60,
		"monthly_contribution": 100,
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if out.Success {
		t.Fatal("retirement age before current age must not succeed")
	}
	if len(out.MissingFields) != 1 || out.MissingFields[0] != "retirement_age" {
		t.Fatalf("expected retirement_age flagged, got %v", out.MissingFields)
	}
}

type fakeOrders struct {
	record map[string]any
	err    error
}

func (f *fakeOrders) Lookup(_ context.Context, orderID string) (map[string]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.record, nil
}

func TestOrderStatusWithAdapter(t *testing.T) {
	t.Parallel()

	handler := orderStatus(&fakeOrders{record: map[string]any{
		"status": "shipped",
		"detail": "Arriving Thursday.",
	}})

	out, err := handler(context.Background(), "", nil, analysisWith(map[string]any{"order_id": "A-100"}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !out.Success || out.Data["status"] != "shipped" {
		t.Fatalf("expected shipped order, got %+v", out)
	}
	if out.Data["order_id"] != "A-100" {
		t.Fatalf("order id lost: %+v", out.Data)
	}
}

func TestOrderStatusWithoutAdapter(t *testing.T) {
	t.Parallel()

	handler := orderStatus(nil)
	out, err := handler(context.Background(), "", nil, analysisWith(map[string]any{"order_id": "A-100"}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if out.Success {
		t.Fatal("nil adapter must not report success")
	}
	if out.Data["status"] != "unknown" {
		t.Fatalf("expected unknown status, got %v", out.Data["status"])
	}
}

func TestOrderStatusAdapterErrorPropagates(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("order service down")
	handler := orderStatus(&fakeOrders{err: wantErr})
	if _, err := handler(context.Background(), "", nil, analysisWith(map[string]any{"order_id": "A-1"})); !errors.Is(err, wantErr) {
		t.Fatalf("expected adapter error, got %v", err)
	}
}

func TestBuiltinPacksValidate(t *testing.T) {
	t.Parallel()

	packs := BuiltinPacks()
	if len(packs) != 4 {
		t.Fatalf("expected 4 builtin packs, got %d", len(packs))
	}
	seen := map[contractx.Domain]bool{}
	for _, pack := range packs {
		if err := pack.Config.Validate(); err != nil {
			t.Fatalf("pack %s invalid: %v", pack.Config.Domain, err)
		}
		if seen[pack.Config.Domain] {
			t.Fatalf("duplicate domain %s", pack.Config.Domain)
		}
		seen[pack.Config.Domain] = true
	}
}

func TestConfigValidateRejectsBadThreshold(t *testing.T) {
	t.Parallel()

	cfg := Insurance().Config
	cfg.LeadCaptureThreshold = cfg.MaxLeadScore + 1
	if err := cfg.Validate(); !errors.Is(err, contractx.ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
}
