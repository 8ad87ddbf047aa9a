package models

import (
	"math/rand"
	"testing"
)

var allStatuses = []AttendanceStatus{AttendancePresent, AttendanceAbsent, AttendanceExcluded}

func TestAllowedTransitionTable(t *testing.T) {
	cases := []struct {
		from, to AttendanceStatus
		want     bool
	}{
		{AttendanceAbsent, AttendancePresent, true},
		{AttendanceAbsent, AttendanceExcluded, true},
		{AttendancePresent, AttendanceAbsent, true},
		{AttendanceExcluded, AttendanceAbsent, true},

		// Exclusion must pass through absent.
		{AttendancePresent, AttendanceExcluded, false},
		{AttendanceExcluded, AttendancePresent, false},

		// Self transitions are not transitions.
		{AttendancePresent, AttendancePresent, false},
		{AttendanceAbsent, AttendanceAbsent, false},
		{AttendanceExcluded, AttendanceExcluded, false},
	}
	for _, tc := range cases {
		if got := AllowedTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("AllowedTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestAllowedTransitionRandomPairs(t *testing.T) {
	allowed := map[[2]AttendanceStatus]bool{
		{AttendanceAbsent, AttendancePresent}:  true,
		{AttendanceAbsent, AttendanceExcluded}: true,
		{AttendancePresent, AttendanceAbsent}:  true,
		{AttendanceExcluded, AttendanceAbsent}: true,
	}

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		from := allStatuses[rng.Intn(len(allStatuses))]
		to := allStatuses[rng.Intn(len(allStatuses))]
		want := allowed[[2]AttendanceStatus{from, to}]
		if got := AllowedTransition(from, to); got != want {
			t.Fatalf("AllowedTransition(%s, %s) = %v, want %v", from, to, got, want)
		}
	}
}

func TestAllowedTransitionUnknownStatus(t *testing.T) {
	if AllowedTransition("bogus", AttendancePresent) {
		t.Error("unknown source status must not transition")
	}
	if AllowedTransition(AttendanceAbsent, "bogus") {
		t.Error("unknown target status must not transition")
	}
}
