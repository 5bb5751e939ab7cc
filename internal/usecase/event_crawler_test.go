package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/ga-meta/external/omnidex"
	"github.com/riskibarqy/ga-meta/external/omniweb"
	"github.com/riskibarqy/ga-meta/internal/domain/crawlerstate"
	"github.com/riskibarqy/ga-meta/internal/domain/decklist"
	"github.com/riskibarqy/ga-meta/internal/domain/event"
	"github.com/riskibarqy/ga-meta/internal/domain/standing"
	"github.com/riskibarqy/ga-meta/internal/infrastructure/repository/memory"
	crawlerstatemock "github.com/riskibarqy/ga-meta/internal/mocks/domain/crawlerstate"
	eventmock "github.com/riskibarqy/ga-meta/internal/mocks/domain/event"
	"github.com/riskibarqy/ga-meta/internal/platform/fetch"
	"github.com/riskibarqy/ga-meta/internal/platform/logging"
	"github.com/riskibarqy/ga-meta/internal/platform/resilience"
	"github.com/stretchr/testify/mock"
)

type stubEventSource struct {
	mu        sync.Mutex
	events    map[int64]event.Event
	failures  map[int64][]fetch.ErrorKind
	stats     map[int64]event.Statistics
	standings map[int64][]standing.Standing
	calls     map[int64]int
	onFetch   func(id int64)
}

func newStubEventSource(events ...event.Event) *stubEventSource {
	s := &stubEventSource{
		events:    make(map[int64]event.Event, len(events)),
		failures:  make(map[int64][]fetch.ErrorKind),
		stats:     make(map[int64]event.Statistics),
		standings: make(map[int64][]standing.Standing),
		calls:     make(map[int64]int),
	}
	for _, e := range events {
		s.events[e.ID] = e
	}
	return s
}

func (s *stubEventSource) FetchEvent(_ context.Context, eventID int64) fetch.Outcome[event.Event] {
	s.mu.Lock()
	s.calls[eventID]++
	var failure *fetch.ErrorKind
	if queued := s.failures[eventID]; len(queued) > 0 {
		failure = &queued[0]
		s.failures[eventID] = queued[1:]
	}
	e, ok := s.events[eventID]
	hook := s.onFetch
	s.mu.Unlock()

	if hook != nil {
		hook(eventID)
	}
	if failure != nil {
		return fetch.Failed[event.Event](*failure, errors.New("upstream unavailable"))
	}
	if !ok {
		return fetch.NotFound[event.Event]()
	}
	return fetch.Found(e)
}

func (s *stubEventSource) FetchStandings(_ context.Context, eventID int64) fetch.Outcome[[]standing.Standing] {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, ok := s.standings[eventID]
	if !ok {
		return fetch.NotFound[[]standing.Standing]()
	}
	return fetch.Found(items)
}

func (s *stubEventSource) FetchStatistics(_ context.Context, eventID int64) fetch.Outcome[event.Statistics] {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, ok := s.stats[eventID]
	if !ok {
		return fetch.NotFound[event.Statistics]()
	}
	return fetch.Found(stats)
}

func (s *stubEventSource) callCount(eventID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[eventID]
}

type stubDecklistSource struct {
	decklists map[string]decklist.Decklist
}

func (s stubDecklistSource) FetchDecklist(_ context.Context, eventID int64, playerID string) fetch.Outcome[decklist.Decklist] {
	d, ok := s.decklists[playerID]
	if !ok {
		return fetch.NotFound[decklist.Decklist]()
	}
	d.EventID = eventID
	return fetch.Found(d)
}

type crawlerFixture struct {
	crawler   *EventCrawler
	source    *stubEventSource
	events    *memory.EventRepository
	standings *memory.StandingRepository
	decklists *memory.DecklistRepository
	states    *memory.CrawlerStateRepository
}

func newCrawlerFixture(source *stubEventSource, decks stubDecklistSource, cfg CrawlerConfig, seed ...crawlerstate.State) crawlerFixture {
	f := crawlerFixture{
		source:    source,
		events:    memory.NewEventRepository(),
		standings: memory.NewStandingRepository(),
		decklists: memory.NewDecklistRepository(),
		states:    memory.NewCrawlerStateRepository(seed...),
	}
	f.crawler = NewEventCrawler(EventCrawlerDeps{
		Events:       source,
		Decklists:    decks,
		EventRepo:    f.events,
		StandingRepo: f.standings,
		DecklistRepo: f.decklists,
		StateRepo:    f.states,
	}, cfg, nil)
	f.crawler.now = func() time.Time { return time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC) }
	return f
}

func scheduledEvent(id int64) event.Event {
	return event.Event{ID: id, Name: "Weekly Clash", Format: event.FormatStandard, Status: "scheduled"}
}

func TestEventCrawler_HaltsAfterConsecutiveMisses(t *testing.T) {
	t.Parallel()

	source := newStubEventSource(scheduledEvent(5), scheduledEvent(6), scheduledEvent(7))
	f := newCrawlerFixture(source, stubDecklistSource{}, CrawlerConfig{MaxConsecutiveMisses: 10, CheckpointEvery: 10})

	result, err := f.crawler.CrawlHistorical(context.Background(), 5)
	if err != nil {
		t.Fatalf("CrawlHistorical error: %v", err)
	}

	if result.LastEventID != 17 {
		t.Fatalf("expected last_event_id=17, got=%d", result.LastEventID)
	}
	if result.EventsFound != 3 {
		t.Fatalf("expected events_found=3, got=%d", result.EventsFound)
	}
	if result.Probed != 13 {
		t.Fatalf("expected 13 probed ids, got=%d", result.Probed)
	}
	if !result.Halted {
		t.Fatalf("expected crawl to report halted")
	}
	if source.callCount(18) != 0 {
		t.Fatalf("expected id 18 never probed, got=%d calls", source.callCount(18))
	}
	if source.callCount(4) != 0 {
		t.Fatalf("expected no probe below start id, got=%d calls", source.callCount(4))
	}

	states := f.states.All()
	if len(states) != 2 {
		t.Fatalf("expected 2 checkpoints, got=%d", len(states))
	}
	if states[0].LastEventID != 14 {
		t.Fatalf("expected periodic checkpoint at 14, got=%d", states[0].LastEventID)
	}
	final := states[1]
	if final.LastEventID != 17 || final.TotalEvents != 3 {
		t.Fatalf("unexpected final checkpoint: %+v", final)
	}
	if final.CrawlType != crawlerstate.CrawlHistorical {
		t.Fatalf("expected historical crawl type, got=%s", final.CrawlType)
	}

	stored, err := f.events.List(context.Background(), event.Filter{})
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("expected 3 stored events, got=%d", len(stored))
	}
	for _, e := range stored {
		if e.CrawledAt.IsZero() {
			t.Fatalf("expected crawled_at set on event %d", e.ID)
		}
	}
}

func TestEventCrawler_IncrementalResumesFromLatestCheckpoint(t *testing.T) {
	t.Parallel()

	older := time.Date(2026, 2, 1, 2, 0, 0, 0, time.UTC)
	newer := older.Add(24 * time.Hour)
	source := newStubEventSource()
	f := newCrawlerFixture(source, stubDecklistSource{}, CrawlerConfig{MaxConsecutiveMisses: 3, CheckpointEvery: 50},
		crawlerstate.State{LastEventID: 12, LastCrawl: newer, CrawlType: crawlerstate.CrawlIncremental},
		crawlerstate.State{LastEventID: 40, LastCrawl: older, CrawlType: crawlerstate.CrawlHistorical},
	)

	result, err := f.crawler.CrawlIncremental(context.Background())
	if err != nil {
		t.Fatalf("CrawlIncremental error: %v", err)
	}
	if result.StartID != 13 {
		t.Fatalf("expected resume at 13, got=%d", result.StartID)
	}
	if result.LastEventID != 15 {
		t.Fatalf("expected last_event_id=15, got=%d", result.LastEventID)
	}
	if source.callCount(41) != 0 {
		t.Fatalf("expected older checkpoint ignored")
	}

	latest, ok, err := f.states.Latest(context.Background())
	if err != nil || !ok {
		t.Fatalf("expected latest checkpoint, ok=%v err=%v", ok, err)
	}
	if latest.LastEventID != 15 || latest.CrawlType != crawlerstate.CrawlIncremental {
		t.Fatalf("unexpected latest checkpoint: %+v", latest)
	}
}

func TestEventCrawler_IncrementalWithoutCheckpointUsesDefaultStart(t *testing.T) {
	t.Parallel()

	source := newStubEventSource(scheduledEvent(1))
	f := newCrawlerFixture(source, stubDecklistSource{}, CrawlerConfig{MaxConsecutiveMisses: 2})

	result, err := f.crawler.CrawlIncremental(context.Background())
	if err != nil {
		t.Fatalf("CrawlIncremental error: %v", err)
	}
	if result.StartID != 1 || result.LastEventID != 3 {
		t.Fatalf("expected crawl over 1..3, got start=%d last=%d", result.StartID, result.LastEventID)
	}
	if result.EventsFound != 1 {
		t.Fatalf("expected 1 event found, got=%d", result.EventsFound)
	}
}

func TestEventCrawler_InterestingEventCascade(t *testing.T) {
	t.Parallel()

	source := newStubEventSource(event.Event{
		ID:          1,
		Name:        "Regional Championship",
		Format:      event.FormatStandard,
		Status:      "complete",
		Ranked:      true,
		PlayerCount: 12,
	})
	source.stats[1] = event.Statistics{TotalPlayers: 80, HasDecklists: true}
	rate := 0.75
	source.standings[1] = []standing.Standing{
		{EventID: 1, PlayerID: "p1", PlayerName: "Ari", Rank: 1, Champion: "lorraine-wandering-warrior", Wins: 6, Losses: 2, MatchWinRate: &rate, HasDecklist: true},
		{EventID: 1, PlayerID: "p2", PlayerName: "Bo", Rank: 2, Champion: "silvie-loved-by-all", Wins: 5, Losses: 3},
	}
	decks := stubDecklistSource{decklists: map[string]decklist.Decklist{
		"p1": {PlayerID: "p1", MainDeck: []decklist.Card{{Slug: "slice-and-dice", Quantity: 4}}},
		"p2": {PlayerID: "p2"},
	}}
	f := newCrawlerFixture(source, decks, CrawlerConfig{MaxConsecutiveMisses: 1})

	result, err := f.crawler.CrawlHistorical(context.Background(), 1)
	if err != nil {
		t.Fatalf("CrawlHistorical error: %v", err)
	}
	if result.Ingested != 1 || result.StandingsSaved != 2 || result.DecklistsSaved != 1 {
		t.Fatalf("unexpected cascade counts: %+v", result)
	}

	stored, ok, err := f.events.GetByID(context.Background(), 1)
	if err != nil || !ok {
		t.Fatalf("expected stored event, ok=%v err=%v", ok, err)
	}
	if stored.PlayerCount != 80 || !stored.HasDecklists {
		t.Fatalf("expected statistics applied, got player_count=%d has_decklists=%v", stored.PlayerCount, stored.HasDecklists)
	}

	standings, err := f.standings.ListByEvent(context.Background(), 1)
	if err != nil {
		t.Fatalf("list standings: %v", err)
	}
	if len(standings) != 2 {
		t.Fatalf("expected 2 standings, got=%d", len(standings))
	}

	decklists, err := f.decklists.List(context.Background(), decklist.Filter{})
	if err != nil {
		t.Fatalf("list decklists: %v", err)
	}
	if len(decklists) != 1 {
		t.Fatalf("expected only the flagged player's decklist, got=%d", len(decklists))
	}
	if decklists[0].Champion != "lorraine-wandering-warrior" {
		t.Fatalf("expected champion from standing, got=%q", decklists[0].Champion)
	}
	if decklists[0].Rank != 1 || decklists[0].PlayerName != "Ari" {
		t.Fatalf("expected rank and name from standing, got rank=%d name=%q", decklists[0].Rank, decklists[0].PlayerName)
	}
}

func TestEventCrawler_UninterestingEventSkipsDetails(t *testing.T) {
	t.Parallel()

	source := newStubEventSource(event.Event{ID: 1, Name: "Casual Night", Status: "complete", Ranked: false, PlayerCount: 200})
	source.standings[1] = []standing.Standing{{EventID: 1, PlayerID: "p1", Rank: 1}}
	f := newCrawlerFixture(source, stubDecklistSource{}, CrawlerConfig{MaxConsecutiveMisses: 1})

	result, err := f.crawler.CrawlHistorical(context.Background(), 1)
	if err != nil {
		t.Fatalf("CrawlHistorical error: %v", err)
	}
	if result.Skipped != 1 || result.StandingsSaved != 0 {
		t.Fatalf("expected skip without standings, got=%+v", result)
	}
	if _, ok, _ := f.events.GetByID(context.Background(), 1); !ok {
		t.Fatalf("expected uninteresting event still stored")
	}
}

func TestEventCrawler_RequeuesTransientFailures(t *testing.T) {
	t.Parallel()

	source := newStubEventSource(scheduledEvent(1))
	source.failures[1] = []fetch.ErrorKind{fetch.ErrorRetryable}
	f := newCrawlerFixture(source, stubDecklistSource{}, CrawlerConfig{
		MaxConsecutiveMisses: 3,
		Policy:               MissPolicy{RequeueTransient: true},
	})

	result, err := f.crawler.CrawlHistorical(context.Background(), 1)
	if err != nil {
		t.Fatalf("CrawlHistorical error: %v", err)
	}
	if result.LastEventID != 3 {
		t.Fatalf("expected requeue pass to leave cursor at 3, got=%d", result.LastEventID)
	}
	if result.Requeued != 1 || result.Recovered != 1 || result.EventsFound != 1 {
		t.Fatalf("unexpected requeue counts: %+v", result)
	}
	if source.callCount(1) != 2 {
		t.Fatalf("expected id 1 fetched twice, got=%d", source.callCount(1))
	}
	if _, ok, _ := f.events.GetByID(context.Background(), 1); !ok {
		t.Fatalf("expected recovered event stored")
	}
}

func TestEventCrawler_TransientFailureWithoutRequeueIsMiss(t *testing.T) {
	t.Parallel()

	source := newStubEventSource(scheduledEvent(1))
	source.failures[1] = []fetch.ErrorKind{fetch.ErrorRetryable}
	f := newCrawlerFixture(source, stubDecklistSource{}, CrawlerConfig{MaxConsecutiveMisses: 3})

	result, err := f.crawler.CrawlHistorical(context.Background(), 1)
	if err != nil {
		t.Fatalf("CrawlHistorical error: %v", err)
	}
	if result.EventsFound != 0 || result.Requeued != 0 {
		t.Fatalf("expected plain miss, got=%+v", result)
	}
	if source.callCount(1) != 1 {
		t.Fatalf("expected a single fetch of id 1, got=%d", source.callCount(1))
	}
}

func TestEventCrawler_StoreFailureCheckpointsLastProbedID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	source := newStubEventSource(scheduledEvent(5), scheduledEvent(6))
	eventRepo := eventmock.NewRepository(t)
	stateRepo := crawlerstatemock.NewRepository(t)

	eventRepo.
		On("Upsert", mock.Anything, mock.MatchedBy(func(e event.Event) bool { return e.ID == 5 })).
		Return(nil).
		Once()
	eventRepo.
		On("Upsert", mock.Anything, mock.MatchedBy(func(e event.Event) bool { return e.ID == 6 })).
		Return(errors.New("connection reset")).
		Once()
	stateRepo.
		On("Append", mock.Anything, mock.MatchedBy(func(s crawlerstate.State) bool {
			return s.LastEventID == 5 && s.TotalEvents == 2 && s.CrawlType == crawlerstate.CrawlHistorical
		})).
		Return(nil).
		Once()

	crawler := NewEventCrawler(EventCrawlerDeps{
		Events:       source,
		Decklists:    stubDecklistSource{},
		EventRepo:    eventRepo,
		StandingRepo: memory.NewStandingRepository(),
		DecklistRepo: memory.NewDecklistRepository(),
		StateRepo:    stateRepo,
	}, CrawlerConfig{MaxConsecutiveMisses: 10}, nil)

	_, err := crawler.CrawlHistorical(ctx, 5)
	if err == nil {
		t.Fatalf("expected store error")
	}
	if source.callCount(7) != 0 {
		t.Fatalf("expected crawl to stop at the failing id")
	}
}

func TestEventCrawler_CancelledContextSavesFinalCheckpoint(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := newStubEventSource()
	source.onFetch = func(id int64) {
		if id == 3 {
			cancel()
		}
	}
	f := newCrawlerFixture(source, stubDecklistSource{}, CrawlerConfig{MaxConsecutiveMisses: 10})

	result, err := f.crawler.CrawlHistorical(ctx, 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got=%v", err)
	}
	if result.LastEventID != 3 {
		t.Fatalf("expected last_event_id=3, got=%d", result.LastEventID)
	}

	states := f.states.All()
	if len(states) != 1 || states[0].LastEventID != 3 {
		t.Fatalf("expected final checkpoint at 3, got=%+v", states)
	}
}

func TestEventCrawler_CrawlHistoricalRejectsInvalidStart(t *testing.T) {
	t.Parallel()

	f := newCrawlerFixture(newStubEventSource(), stubDecklistSource{}, CrawlerConfig{})
	if _, err := f.crawler.CrawlHistorical(context.Background(), 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got=%v", err)
	}
}

func TestEventCrawler_FailingDecklistUpstreamDoesNotStopEventCrawl(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	eventID := func(r *http.Request) (int64, bool) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		return id, err == nil && id >= 1 && id <= 30
	}
	mux.HandleFunc("GET /events/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := eventID(r)
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = fmt.Fprintf(w, `{"data":{"id":%d,"name":"Regional Qualifier","format":"standard","status":"complete","ranked":true,"player_count":8}}`, id)
	})
	mux.HandleFunc("GET /events/{id}/statistics", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := eventID(r); !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"total_players":8,"has_decklists":true}}`))
	})
	mux.HandleFunc("GET /events/{id}/standings", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := eventID(r); !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"data":[
			{"player_id":"p1","player_name":"Ada","rank":1,"champion":"lorraine-crux-knight","wins":3,"losses":0,"draws":0,"has_decklist":true},
			{"player_id":"p2","player_name":"Bo","rank":2,"champion":"silvie-loved-by-all","wins":2,"losses":1,"draws":0,"has_decklist":true}
		]}`))
	})
	omnidexSrv := httptest.NewServer(mux)
	defer omnidexSrv.Close()

	var decklistCalls atomic.Int32
	omniwebSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		decklistCalls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer omniwebSrv.Close()

	requester := fetch.NewRequester(fetch.Config{
		HTTPClient:     http.DefaultClient,
		Timeout:        time.Second,
		MaxRetries:     0,
		Logger:         logging.NewNop(),
		CircuitBreaker: resilience.DefaultCircuitBreakerConfig(),
		Sleep:          func(ctx context.Context, _ time.Duration) error { return ctx.Err() },
	})
	events := memory.NewEventRepository()
	crawler := NewEventCrawler(EventCrawlerDeps{
		Events:       omnidex.NewClient(omnidex.ClientConfig{Requester: requester, BaseURL: omnidexSrv.URL, Logger: logging.NewNop()}),
		Decklists:    omniweb.NewClient(omniweb.ClientConfig{Requester: requester, BaseURL: omniwebSrv.URL, Logger: logging.NewNop()}),
		EventRepo:    events,
		StandingRepo: memory.NewStandingRepository(),
		DecklistRepo: memory.NewDecklistRepository(),
		StateRepo:    memory.NewCrawlerStateRepository(),
	}, CrawlerConfig{MaxConsecutiveMisses: 5, CheckpointEvery: 10}, nil)

	result, err := crawler.CrawlHistorical(context.Background(), 1)
	if err != nil {
		t.Fatalf("CrawlHistorical error: %v", err)
	}

	if result.EventsFound != 30 || result.Ingested != 30 {
		t.Fatalf("expected all 30 events found and ingested, got=%+v", result)
	}
	if result.LastEventID != 35 || !result.Halted {
		t.Fatalf("expected halt after ids 31-35 missed, got=%+v", result)
	}
	if result.StandingsSaved != 60 || result.DecklistsSaved != 0 {
		t.Fatalf("expected standings saved without decklists, got=%+v", result)
	}
	if got := decklistCalls.Load(); got != 5 {
		t.Fatalf("expected decklist circuit to open after 5 failures, got=%d calls", got)
	}
	stored, err := events.List(context.Background(), event.Filter{})
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(stored) != 30 {
		t.Fatalf("expected 30 stored events, got=%d", len(stored))
	}
}
