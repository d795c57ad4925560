package models

import (
	"errors"
	"testing"
)

func TestComputeVariance(t *testing.T) {
	// Declared 9000 against expected 9500 is a 500 shortage.
	v := ComputeVariance(d("9000"), d("9500"))
	if v.Variance.StringFixed(2) != "-500.00" || v.Type != string(VarianceNegative) {
		t.Fatalf("ComputeVariance(9000, 9500) = %s %s, want -500.00 NEGATIVE", v.Variance, v.Type)
	}

	v = ComputeVariance(d("120.500"), d("118.250"))
	if v.Variance.StringFixed(3) != "2.250" || v.Type != string(VariancePositive) {
		t.Fatalf("surplus variance = %s %s, want 2.250 POSITIVE", v.Variance, v.Type)
	}

	v = ComputeVariance(d("100"), d("100"))
	if !v.Variance.IsZero() || v.Type != "ZERO" {
		t.Fatalf("zero variance = %s %s, want 0 ZERO", v.Variance, v.Type)
	}
}

func TestSettlementStatusCanTransition(t *testing.T) {
	allowed := map[SettlementStatus]SettlementStatus{
		SettlementDraft:     SettlementSubmitted,
		SettlementSubmitted: SettlementApproved,
		SettlementApproved:  SettlementLocked,
	}
	all := []SettlementStatus{
		SettlementDraft, SettlementSubmitted, SettlementApproved,
		SettlementLocked, SettlementRejected,
	}
	for _, from := range all {
		for _, to := range all {
			want := allowed[from] == to
			if got := from.CanTransition(to); got != want {
				t.Fatalf("CanTransition(%s -> %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestAcceptSubmission(t *testing.T) {
	s := Settlement{StoreID: 1, Status: SettlementDraft}
	if err := s.AcceptSubmission(1); err != nil {
		t.Fatalf("draft submission rejected: %v", err)
	}

	// Another store's settlement reads as not found, not as forbidden state.
	if err := s.AcceptSubmission(2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-store submission: got %v, want ErrNotFound", err)
	}

	s.Status = SettlementSubmitted
	if err := s.AcceptSubmission(1); err != nil {
		t.Fatalf("resubmission rejected: %v", err)
	}

	for _, status := range []SettlementStatus{SettlementApproved, SettlementLocked} {
		s.Status = status
		if err := s.AcceptSubmission(1); !errors.Is(err, ErrStateTransition) {
			t.Fatalf("submission on %s: got %v, want ErrStateTransition", status, err)
		}
	}
}

func TestAcceptExpenseReview(t *testing.T) {
	s := Settlement{StoreID: 1, Status: SettlementSubmitted, ExpenseStatus: ExpensePending}
	if err := s.AcceptExpenseReview(1); err != nil {
		t.Fatalf("pending expense review rejected: %v", err)
	}

	if err := s.AcceptExpenseReview(2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-store expense review: got %v, want ErrNotFound", err)
	}

	s.Status = SettlementApproved
	if err := s.AcceptExpenseReview(1); err != nil {
		t.Fatalf("review on approved settlement rejected: %v", err)
	}

	for _, status := range []SettlementStatus{SettlementDraft, SettlementLocked} {
		s.Status = status
		if err := s.AcceptExpenseReview(1); !errors.Is(err, ErrStateTransition) {
			t.Fatalf("review on %s: got %v, want ErrStateTransition", status, err)
		}
	}

	s.Status = SettlementSubmitted
	s.ExpenseStatus = ExpenseRejected
	if err := s.AcceptExpenseReview(1); !errors.Is(err, ErrStateTransition) {
		t.Fatalf("double review: got %v, want ErrStateTransition", err)
	}
}

func TestVarianceLogAcceptResolution(t *testing.T) {
	v := VarianceLog{StoreID: 1, Status: VarianceLogPending, VarianceType: VariancePositive}
	if err := v.AcceptResolution(1, true); err != nil {
		t.Fatalf("approving positive variance rejected: %v", err)
	}
	if err := v.AcceptResolution(2, true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-store resolution: got %v, want ErrNotFound", err)
	}
	if err := v.AcceptResolution(1, false); !errors.Is(err, ErrStateTransition) {
		t.Fatalf("deducting positive variance: got %v, want ErrStateTransition", err)
	}

	v.VarianceType = VarianceNegative
	if err := v.AcceptResolution(1, false); err != nil {
		t.Fatalf("deducting negative variance rejected: %v", err)
	}
	if err := v.AcceptResolution(1, true); !errors.Is(err, ErrStateTransition) {
		t.Fatalf("approving negative variance: got %v, want ErrStateTransition", err)
	}

	v.Status = VarianceLogDeducted
	if err := v.AcceptResolution(1, false); !errors.Is(err, ErrStateTransition) {
		t.Fatalf("resolving a resolved log: got %v, want ErrStateTransition", err)
	}
}

func TestNetSubmission(t *testing.T) {
	s := Settlement{
		DeclaredCash:  d("10000"),
		ExpenseAmount: d("750.50"),
		ExpenseStatus: ExpensePending,
	}
	if got := s.NetSubmission(); got.StringFixed(2) != "9249.50" {
		t.Fatalf("NetSubmission pending expense = %s, want 9249.50", got)
	}

	s.ExpenseStatus = ExpenseApproved
	if got := s.NetSubmission(); got.StringFixed(2) != "9249.50" {
		t.Fatalf("NetSubmission approved expense = %s, want 9249.50", got)
	}

	// A rejected expense no longer reduces the declared cash.
	s.ExpenseStatus = ExpenseRejected
	if got := s.NetSubmission(); got.StringFixed(2) != "10000.00" {
		t.Fatalf("NetSubmission rejected expense = %s, want 10000.00", got)
	}
}

func TestCashVariances(t *testing.T) {
	req := SettlementSubmitRequest{
		DeclaredCash: d("9000"),
		DeclaredUpi:  d("2500"),
	}
	expected := ExpectedSales{
		PayCash: d("9500"),
		PayUpi:  d("2500"),
		PayCard: d("0"),
		PayBank: d("0"),
	}

	out := req.CashVariances(expected)
	if len(out) != len(SettledPaymentMethods) {
		t.Fatalf("CashVariances returned %d methods, want %d", len(out), len(SettledPaymentMethods))
	}
	if out[PayCash].Variance.StringFixed(2) != "-500.00" {
		t.Fatalf("CASH variance = %s, want -500.00", out[PayCash].Variance)
	}
	if out[PayUpi].Type != "ZERO" {
		t.Fatalf("UPI variance type = %s, want ZERO", out[PayUpi].Type)
	}
	if _, ok := out[PayCredit]; ok {
		t.Fatal("CREDIT must not appear in cash variances")
	}
}

func TestStockVariances(t *testing.T) {
	declared := DeclaredStock{
		Broiler: DeclaredStockCell{Live: d("148.500"), LiveCount: 70, Skin: d("20.000")},
	}
	expected := NewStockSummary(1)
	expected.Broiler.Live = d("150.000")
	expected.Broiler.LiveCount = 72
	expected.Broiler.Skin = d("20.000")

	out := StockVariances(&declared, expected)

	live := out[BirdBroiler][InvLive]
	if live.Variance.StringFixed(3) != "-1.500" || live.Type != string(VarianceNegative) {
		t.Fatalf("BROILER LIVE variance = %s %s, want -1.500 NEGATIVE", live.Variance, live.Type)
	}
	if skin := out[BirdBroiler][InvSkin]; skin.Type != "ZERO" {
		t.Fatalf("BROILER SKIN variance type = %s, want ZERO", skin.Type)
	}
	// Undeclared parent cull cells compare as zero against zero expected.
	if pc := out[BirdParentCull][InvLive]; pc.Type != "ZERO" {
		t.Fatalf("PARENT_CULL LIVE variance type = %s, want ZERO", pc.Type)
	}
}

func TestSettlementSubmitRequestValidate(t *testing.T) {
	ok := SettlementSubmitRequest{DeclaredCash: d("100"), ExpenseAmount: d("0")}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	bad := SettlementSubmitRequest{DeclaredUpi: d("-1")}
	if err := bad.Validate(); err == nil {
		t.Fatal("negative declared amount accepted")
	}
}
