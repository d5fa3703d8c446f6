// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package recommend

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestReasonKind_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind ReasonKind
		want string
	}{
		{ReasonFavoriteMatch, "favorite_match"},
		{ReasonBalancesMix, "balances_mix"},
		{ReasonKind(200), "reason(200)"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ReasonKind(%d).String() = %q, want %q", uint8(tt.kind), got, tt.want)
		}
	}
}

func TestReason_JSONUsesKindNames(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Reason{Kind: ReasonGenreOverlap, Subject: "28"})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"kind":"genre_overlap","subject":"28"}` {
		t.Errorf("Marshal() = %s", data)
	}

	var r Reason
	if err := json.Unmarshal([]byte(`{"kind":"not_a_reason"}`), &r); err == nil {
		t.Error("Unmarshal() accepted an unknown reason kind")
	}
}

func TestAppendReasons_Dedup(t *testing.T) {
	t.Parallel()

	got := appendReasons(nil,
		Reason{Kind: ReasonSimilarTo, Subject: "Heat"},
		Reason{Kind: ReasonSimilarTo, Subject: "Heat"},
		Reason{Kind: ReasonSimilarTo, Subject: "Ronin"},
	)
	got = appendReasons(got, Reason{Kind: ReasonSimilarTo, Subject: "Heat"})

	if len(got) != 2 {
		t.Fatalf("appendReasons() = %v, want 2 distinct reasons", got)
	}
	if got[0].Subject != "Heat" || got[1].Subject != "Ronin" {
		t.Errorf("appendReasons() order = %v", got)
	}
}
