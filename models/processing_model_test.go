package models

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestCalculateYield(t *testing.T) {
	cases := []struct {
		input      string
		pct        string
		wantOutput string
		wantWaste  string
	}{
		{"100", "12", "88.000", "12.000"},
		{"100", "8", "92.000", "8.000"},
		{"50.5", "10", "45.450", "5.050"},
		{"33.333", "7.5", "30.833", "2.500"},
		{"100", "0", "100.000", "0.000"},
		{"0.001", "50", "0.001", "0.000"},
	}
	for _, tc := range cases {
		got := CalculateYield(d(tc.input), d(tc.pct))
		if got.OutputWeight.StringFixed(3) != tc.wantOutput {
			t.Fatalf("CalculateYield(%s, %s) output = %s, want %s",
				tc.input, tc.pct, got.OutputWeight.StringFixed(3), tc.wantOutput)
		}
		if got.WastageWeight.StringFixed(3) != tc.wantWaste {
			t.Fatalf("CalculateYield(%s, %s) wastage = %s, want %s",
				tc.input, tc.pct, got.WastageWeight.StringFixed(3), tc.wantWaste)
		}
		// Output plus wastage always reconstructs the rounded input.
		sum := got.OutputWeight.Add(got.WastageWeight)
		if !sum.Equal(got.InputWeight) {
			t.Fatalf("CalculateYield(%s, %s): output %s + wastage %s != input %s",
				tc.input, tc.pct, got.OutputWeight, got.WastageWeight, got.InputWeight)
		}
	}
}

func TestValidatePercentage(t *testing.T) {
	for _, ok := range []string{"0", "8", "99.99"} {
		if err := ValidatePercentage(d(ok)); err != nil {
			t.Fatalf("ValidatePercentage(%s) unexpected error: %v", ok, err)
		}
	}
	for _, bad := range []string{"-0.01", "100", "150"} {
		if err := ValidatePercentage(d(bad)); err == nil {
			t.Fatalf("ValidatePercentage(%s) expected error", bad)
		}
	}
}

func TestPickActiveConfig(t *testing.T) {
	day := func(s string) time.Time {
		v, err := time.Parse("2006-01-02", s)
		if err != nil {
			t.Fatal(err)
		}
		return v
	}

	rows := []WastageConfig{
		{Percentage: d("10"), EffectiveDate: day("2024-01-01"), IsActive: true},
		{Percentage: d("8"), EffectiveDate: day("2024-07-01"), IsActive: true},
		{Percentage: d("99"), EffectiveDate: day("2024-06-01"), IsActive: false},
	}

	// Before the July row takes effect the January one wins.
	got := PickActiveConfig(rows, day("2024-03-15"))
	if got == nil || !got.Percentage.Equal(d("10")) {
		t.Fatalf("PickActiveConfig(2024-03-15) = %v, want 10%%", got)
	}

	// On and after its effective date the July row wins; the inactive June
	// row never qualifies.
	got = PickActiveConfig(rows, day("2024-07-01"))
	if got == nil || !got.Percentage.Equal(d("8")) {
		t.Fatalf("PickActiveConfig(2024-07-01) = %v, want 8%%", got)
	}

	// No row is in effect before the earliest effective date.
	if got := PickActiveConfig(rows, day("2023-12-31")); got != nil {
		t.Fatalf("PickActiveConfig(2023-12-31) = %v, want nil", got)
	}
}

func TestWastageConfigApplyRevision(t *testing.T) {
	existing := WastageConfig{
		BirdType:            BirdBroiler,
		TargetInventoryType: InvSkin,
		Percentage:          d("8"),
		IsActive:            true,
	}

	// Same percentage may toggle the active flag.
	if err := existing.ApplyRevision(&WastageConfig{Percentage: d("8"), IsActive: false}); err != nil {
		t.Fatalf("active toggle rejected: %v", err)
	}
	if existing.IsActive {
		t.Fatal("active flag not applied")
	}

	// A different percentage on the same effective date is rejected; entries
	// may already have snapshotted the old value.
	err := existing.ApplyRevision(&WastageConfig{Percentage: d("9"), IsActive: true})
	if !errors.Is(err, ErrStateTransition) {
		t.Fatalf("percentage rewrite: got %v, want ErrStateTransition", err)
	}
	if !existing.Percentage.Equal(d("8")) {
		t.Fatalf("percentage mutated to %s on rejected revision", existing.Percentage)
	}
}

func TestPostedOutput(t *testing.T) {
	estimated := d("88.000")

	weight, estimateUsed := PostedOutput(estimated, nil)
	if !estimateUsed || !weight.Equal(estimated) {
		t.Fatalf("PostedOutput without actual = (%s, %v), want (%s, true)", weight, estimateUsed, estimated)
	}

	actual := d("85.250")
	weight, estimateUsed = PostedOutput(estimated, &actual)
	if estimateUsed || !weight.Equal(actual) {
		t.Fatalf("PostedOutput with actual = (%s, %v), want (%s, false)", weight, estimateUsed, actual)
	}
}

func TestProcessingRequestValidate(t *testing.T) {
	base := ProcessingRequest{
		InputBirdType:       BirdBroiler,
		OutputInventoryType: InvSkin,
		InputWeight:         d("100"),
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	r := base
	r.OutputInventoryType = InvLive
	if err := r.Validate(); err == nil {
		t.Fatal("LIVE output accepted")
	}

	r = base
	r.InputWeight = d("0")
	if err := r.Validate(); err == nil {
		t.Fatal("zero input weight accepted")
	}

	r = base
	zero := d("0")
	r.ActualOutputWeight = &zero
	if err := r.Validate(); err == nil {
		t.Fatal("zero actual output weight accepted")
	}
}
