package event

import "testing"

func TestEvent_IsInteresting(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   Event
		want bool
	}{
		{name: "complete ranked with decklists", in: Event{Status: "complete", Ranked: true, HasDecklists: true}, want: true},
		{name: "status is case insensitive", in: Event{Status: "COMPLETE", Ranked: true, HasDecklists: true}, want: true},
		{name: "large field without decklists", in: Event{Status: "Complete", Ranked: true, PlayerCount: 61}, want: true},
		{name: "exactly sixty players", in: Event{Status: "complete", Ranked: true, PlayerCount: 60}, want: false},
		{name: "unranked", in: Event{Status: "complete", Ranked: false, HasDecklists: true, PlayerCount: 200}, want: false},
		{name: "in progress", in: Event{Status: "in_progress", Ranked: true, HasDecklists: true}, want: false},
		{name: "empty status", in: Event{Ranked: true, HasDecklists: true}, want: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.in.IsInteresting(); got != tc.want {
				t.Fatalf("expected IsInteresting=%v, got=%v", tc.want, got)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	cases := map[string]Format{
		"standard":    FormatStandard,
		"LIMITED":     FormatLimited,
		" Sealed ":    FormatSealed,
		"draft":       FormatDraft,
		"constructed": FormatUnknown,
		"":            FormatUnknown,
	}
	for raw, want := range cases {
		if got := ParseFormat(raw); got != want {
			t.Fatalf("ParseFormat(%q): expected %s, got=%s", raw, want, got)
		}
	}
}

func TestEvent_ApplyStatistics(t *testing.T) {
	t.Parallel()

	e := Event{ID: 7, Status: "complete", Ranked: true, PlayerCount: 12}
	if e.IsInteresting() {
		t.Fatalf("expected small event without decklists to be skipped")
	}

	e.ApplyStatistics(Statistics{TotalPlayers: 12, HasDecklists: true})
	if !e.IsInteresting() {
		t.Fatalf("expected event to become interesting after statistics refresh")
	}
}
