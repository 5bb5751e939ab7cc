package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/ga-meta/internal/domain/card"
	"github.com/riskibarqy/ga-meta/internal/domain/decklist"
	"github.com/riskibarqy/ga-meta/internal/domain/event"
	"github.com/riskibarqy/ga-meta/internal/domain/standing"
	"github.com/riskibarqy/ga-meta/internal/infrastructure/repository/memory"
)

var metaNow = time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)

func daysAgo(n int) *time.Time {
	t := metaNow.AddDate(0, 0, -n)
	return &t
}

func intPtr(v int) *int { return &v }

func metaDeck(eventID int64, playerID, champion string, rank int, cards map[string]int) decklist.Decklist {
	d := decklist.Decklist{EventID: eventID, PlayerID: playerID, Champion: champion, Rank: rank}
	for slug, qty := range cards {
		d.MainDeck = append(d.MainDeck, decklist.Card{Slug: slug, Quantity: qty})
	}
	d.Finalize()
	return d
}

func newMetaFixture(t *testing.T) *MetaAnalysisService {
	t.Helper()

	ctx := context.Background()
	events := memory.NewEventRepository(
		event.Event{ID: 1, Name: "Standard Regional", Format: event.FormatStandard, Status: "complete", Ranked: true, StartDate: daysAgo(5)},
		event.Event{ID: 2, Name: "Limited Clash", Format: event.FormatLimited, Status: "complete", Ranked: true, StartDate: daysAgo(10)},
		event.Event{ID: 3, Name: "Unranked Standard", Format: event.FormatStandard, Status: "complete", Ranked: false, StartDate: daysAgo(3)},
		event.Event{ID: 4, Name: "Old Standard Open", Format: event.FormatStandard, Status: "complete", Ranked: true, StartDate: daysAgo(60)},
	)

	decks := memory.NewDecklistRepository()
	if err := decks.UpsertMany(ctx, []decklist.Decklist{
		metaDeck(1, "p1", "lorraine", 1, map[string]int{"slice-and-dice": 4, "firebolt": 2}),
		metaDeck(1, "p2", "lorraine", 12, map[string]int{"slice-and-dice": 3}),
		metaDeck(1, "p3", "silvie", 3, map[string]int{"firebolt": 4}),
		metaDeck(2, "p4", "tristan", 2, map[string]int{"shadowstrike": 4}),
		metaDeck(3, "p5", "silvie", 1, map[string]int{"firebolt": 4}),
		metaDeck(4, "p6", "tristan", 0, map[string]int{"slice-and-dice": 1}),
	}); err != nil {
		t.Fatalf("seed decklists: %v", err)
	}

	won, lost := 0.8, 0.25
	standings := memory.NewStandingRepository()
	if err := standings.UpsertMany(ctx, []standing.Standing{
		{EventID: 1, PlayerID: "p1", Rank: 1, Champion: "lorraine", MatchWinRate: &won},
		{EventID: 1, PlayerID: "p2", Rank: 12, Champion: "lorraine", MatchWinRate: &lost},
		{EventID: 1, PlayerID: "p3", Rank: 20, Champion: "silvie"},
		{EventID: 3, PlayerID: "p5", Rank: 1, Champion: "silvie"},
	}); err != nil {
		t.Fatalf("seed standings: %v", err)
	}

	cards := memory.NewCardRepository(card.Card{Slug: "slice-and-dice", Name: "Slice and Dice"})

	svc := NewMetaAnalysisService(events, standings, decks, cards, nil)
	svc.now = func() time.Time { return metaNow }
	return svc
}

func TestMetaAnalysisService_BreakdownFiltersFormatAndWindow(t *testing.T) {
	t.Parallel()

	svc := newMetaFixture(t)
	standard := event.FormatStandard

	got, err := svc.Breakdown(context.Background(), MetaQuery{Format: &standard, Days: intPtr(30)})
	if err != nil {
		t.Fatalf("Breakdown error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 champions, got=%d", len(got))
	}
	if got[0].Champion != "lorraine" || got[0].DeckCount != 2 {
		t.Fatalf("expected lorraine with 2 decks first, got=%+v", got[0])
	}
	if got[0].AvgPlacement != 6.5 || got[0].Top8Count != 1 || got[0].Top8Percentage != 50 {
		t.Fatalf("unexpected lorraine stats: %+v", got[0])
	}
}

func TestMetaAnalysisService_BreakdownWithoutFiltersUsesRankedCompleteEvents(t *testing.T) {
	t.Parallel()

	svc := newMetaFixture(t)
	got, err := svc.Breakdown(context.Background(), MetaQuery{})
	if err != nil {
		t.Fatalf("Breakdown error: %v", err)
	}

	total := 0
	for _, row := range got {
		total += row.DeckCount
	}
	if total != 5 {
		t.Fatalf("expected 5 decks from events 1, 2 and 4, got=%d", total)
	}
}

func TestMetaAnalysisService_EmptySelectionReturnsEmptyList(t *testing.T) {
	t.Parallel()

	svc := newMetaFixture(t)
	draft := event.FormatDraft

	breakdown, err := svc.Breakdown(context.Background(), MetaQuery{Format: &draft})
	if err != nil {
		t.Fatalf("Breakdown error: %v", err)
	}
	if len(breakdown) != 0 {
		t.Fatalf("expected empty breakdown, got=%d", len(breakdown))
	}

	perf, err := svc.ChampionPerformance(context.Background(), MetaQuery{Format: &draft})
	if err != nil {
		t.Fatalf("ChampionPerformance error: %v", err)
	}
	if perf == nil || len(perf) != 0 {
		t.Fatalf("expected empty non-nil champion performance, got=%v", perf)
	}
}

func TestMetaAnalysisService_ChampionPerformance(t *testing.T) {
	t.Parallel()

	svc := newMetaFixture(t)
	got, err := svc.ChampionPerformance(context.Background(), MetaQuery{Days: intPtr(30)})
	if err != nil {
		t.Fatalf("ChampionPerformance error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 champions, got=%d", len(got))
	}

	lorraine := got[0]
	if lorraine.Champion != "lorraine" || lorraine.TotalAppearances != 2 {
		t.Fatalf("unexpected first row: %+v", lorraine)
	}
	if lorraine.TotalEvents != 2 {
		t.Fatalf("expected 2 selected events, got=%d", lorraine.TotalEvents)
	}
	if diff := lorraine.WinRate - 0.525; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected win rate 0.525, got=%v", lorraine.WinRate)
	}
	if lorraine.Top8Rate != 50 || lorraine.Top16Rate != 100 || lorraine.ConversionRate != lorraine.Top8Rate {
		t.Fatalf("unexpected lorraine rates: %+v", lorraine)
	}

	silvie := got[1]
	if silvie.TotalAppearances != 1 || silvie.WinRate != 0 {
		t.Fatalf("expected unranked event excluded and zero win rate, got=%+v", silvie)
	}
}

func TestMetaAnalysisService_CardPerformance(t *testing.T) {
	t.Parallel()

	svc := newMetaFixture(t)
	got, err := svc.CardPerformance(context.Background(), MetaQuery{Limit: 2})
	if err != nil {
		t.Fatalf("CardPerformance error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected limit of 2, got=%d", len(got))
	}

	top := got[0]
	if top.Slug != "slice-and-dice" || top.Name != "Slice and Dice" {
		t.Fatalf("expected slice-and-dice with catalog name first, got=%+v", top)
	}
	if top.DeckCount != 3 || top.TotalQuantity != 8 {
		t.Fatalf("unexpected slice-and-dice counts: %+v", top)
	}
	if want := float64(1+12+999) / 3; top.AvgPlacement != want {
		t.Fatalf("expected unranked deck counted as 999, got=%v want=%v", top.AvgPlacement, want)
	}
	if got[1].Name != got[1].Slug {
		t.Fatalf("expected slug fallback for uncatalogued card, got=%+v", got[1])
	}
}

func TestMetaAnalysisService_RejectsInvalidQuery(t *testing.T) {
	t.Parallel()

	svc := newMetaFixture(t)
	if _, err := svc.Breakdown(context.Background(), MetaQuery{Days: intPtr(0)}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for days=0, got=%v", err)
	}
	if _, err := svc.CardPerformance(context.Background(), MetaQuery{Limit: -1}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative limit, got=%v", err)
	}
}

func TestMetaAnalysisService_Snapshot(t *testing.T) {
	t.Parallel()

	svc := newMetaFixture(t)
	snap, err := svc.Snapshot(context.Background(), 30)
	if err != nil {
		t.Fatalf("Snapshot error: %v", err)
	}
	if len(snap.Formats) != len(event.KnownFormats)+1 {
		t.Fatalf("expected %d rows, got=%d", len(event.KnownFormats)+1, len(snap.Formats))
	}
	if snap.Formats[0].Format != AllFormats || snap.Formats[0].Events != 2 {
		t.Fatalf("expected all-formats row first with 2 events, got=%+v", snap.Formats[0])
	}
	if snap.Formats[1].Format != string(event.FormatStandard) || snap.Formats[1].Events != 1 {
		t.Fatalf("expected standard row second, got=%+v", snap.Formats[1])
	}
	if len(snap.Formats[4].Breakdown) != 0 {
		t.Fatalf("expected empty draft breakdown")
	}
	if !snap.GeneratedAt.Equal(metaNow) {
		t.Fatalf("expected generated_at=%s, got=%s", metaNow, snap.GeneratedAt)
	}
}
