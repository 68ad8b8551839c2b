package usecase

import (
	"testing"
	"time"

	"propfirm_server/internal/domain"
)

func TestScanViolationsClean(t *testing.T) {
	phase := phase1Fixture()
	day1 := time.Date(2026, 2, 2, 15, 0, 0, 0, time.UTC)

	report := ScanViolations(phase, []domain.Trade{
		{PnL: dec("120"), ExitTime: day1},
		{PnL: dec("-80"), ExitTime: day1.Add(time.Hour)},
	})

	if !report.Clean {
		t.Fatalf("expected clean report: %+v", report)
	}
	if len(report.DailyViolations) != 0 {
		t.Fatalf("unexpected daily violations: %v", report.DailyViolations)
	}
}

func TestScanViolationsDailyLimitExceeded(t *testing.T) {
	phase := phase1Fixture() // $500 daily limit
	day1 := time.Date(2026, 2, 2, 15, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	report := ScanViolations(phase, []domain.Trade{
		{PnL: dec("-300"), ExitTime: day1},
		{PnL: dec("-350"), ExitTime: day1.Add(time.Hour)},
		{PnL: dec("200"), ExitTime: day2},
	})

	if report.Clean {
		t.Fatalf("expected violations")
	}
	if len(report.DailyViolations) != 1 {
		t.Fatalf("expected 1 daily violation, got %d", len(report.DailyViolations))
	}
	v := report.DailyViolations[0]
	if v.Day != "2026-02-02" {
		t.Fatalf("unexpected violation day: %s", v.Day)
	}
	if !v.DayLoss.Equal(dec("650")) {
		t.Fatalf("unexpected day loss: %s", v.DayLoss)
	}
	if !v.ExceededBy.Equal(dec("150")) {
		t.Fatalf("unexpected excess: %s", v.ExceededBy)
	}
	if v.TradeCount != 2 {
		t.Fatalf("unexpected trade count: %d", v.TradeCount)
	}
}

func TestScanViolationsDayLossIsAggregate(t *testing.T) {
	phase := phase1Fixture()
	day1 := time.Date(2026, 2, 2, 15, 0, 0, 0, time.UTC)

	// A $600 single loss recovered to a $200 net day loss stays under limit.
	report := ScanViolations(phase, []domain.Trade{
		{PnL: dec("-600"), ExitTime: day1},
		{PnL: dec("400"), ExitTime: day1.Add(time.Hour)},
	})

	if len(report.DailyViolations) != 0 {
		t.Fatalf("day nets under the limit, got %v", report.DailyViolations)
	}
}

func TestScanViolationsMaxDrawdownTrough(t *testing.T) {
	phase := phase1Fixture() // $1,000 max limit on $10,000
	day1 := time.Date(2026, 2, 2, 15, 0, 0, 0, time.UTC)

	// Slice order differs from close order; the curve must replay by exit time.
	report := ScanViolations(phase, []domain.Trade{
		{PnL: dec("1300"), ExitTime: day1.Add(2 * time.Hour)},
		{PnL: dec("-400"), ExitTime: day1},
		{PnL: dec("-700"), ExitTime: day1.Add(time.Hour)},
	})

	if !report.MaxDrawdownHit {
		t.Fatalf("expected max drawdown hit: %+v", report)
	}
	if !report.LowestBalance.Equal(dec("8900")) {
		t.Fatalf("unexpected trough: %s", report.LowestBalance)
	}
	if !report.MaxDrawdownUsed.Equal(dec("1100")) {
		t.Fatalf("unexpected usage: %s", report.MaxDrawdownUsed)
	}
}

func TestScanViolationsEmptyHistory(t *testing.T) {
	phase := phase1Fixture()

	report := ScanViolations(phase, nil)

	if !report.Clean {
		t.Fatalf("no trades must be clean: %+v", report)
	}
	if !report.LowestBalance.Equal(phase.StartingBalance) {
		t.Fatalf("unexpected trough: %s", report.LowestBalance)
	}
}
