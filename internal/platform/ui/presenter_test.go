package ui

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"pricescout/internal/testutil"
)

var (
	_ Presenter = (*NoopPresenter)(nil)
	_ Presenter = (*PTermPresenter)(nil)
	_ Presenter = (*RawPresenter)(nil)
)

func TestRawPresenter_Lines(t *testing.T) {
	var buf bytes.Buffer
	p := NewRawPresenter(&buf)
	p.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }

	p.Start(SearchInfo{RequestID: "r-1", Country: "US", Query: "iphone 15 pro", Strategy: "service"})
	p.StartStage(StageInfo{Number: 3, Name: "URL discovery", Units: 4})
	p.FinishUnit(3, "bestbuy.com", StatusSuccess, 1500*time.Millisecond)
	p.Finish(SearchStats{Results: 2, Blocked: 1, BackfillUsed: true})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	testutil.AssertLen(t, lines, 4, "one line per event")
	testutil.AssertContains(t, lines[0], `2024-05-01T10:00:00Z INFO  "search started"`, "prefix")
	testutil.AssertContains(t, lines[0], `query="iphone 15 pro"`, "quoted value")
	testutil.AssertContains(t, lines[1], `name="URL discovery" units=4`, "stage fields")
	testutil.AssertContains(t, lines[2], "unit=bestbuy.com status=success duration_ms=1500", "unit fields")
	testutil.AssertContains(t, lines[3], "blocked=1 rate_limited=0 backfill=true", "stats")
}

func TestPTermPresenter_AddUnits(t *testing.T) {
	p := NewPTermPresenter()
	p.stage = StageInfo{Number: 4, Name: "Extraction", Units: 3}

	p.AddUnits(4, 2)
	p.AddUnits(3, 7)
	p.AddUnits(4, 0)

	testutil.AssertEqual(t, p.progressText(), "Extraction... 0/5", "backfill widens the total")
}

func TestRawPresenter_Concurrent(t *testing.T) {
	var buf bytes.Buffer
	p := NewRawPresenter(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.FinishUnit(4, "https://example.com/p/1", StatusError, time.Millisecond)
		}()
	}
	wg.Wait()

	testutil.AssertEqual(t, strings.Count(buf.String(), "\n"), 20, "no interleaving")
}

func TestFormatDuration(t *testing.T) {
	testutil.AssertEqual(t, formatDuration(250*time.Millisecond), "250ms", "ms")
	testutil.AssertEqual(t, formatDuration(1500*time.Millisecond), "1.5s", "seconds")
	testutil.AssertEqual(t, formatDuration(125*time.Second), "2m5s", "minutes")
}

func TestTruncate(t *testing.T) {
	testutil.AssertEqual(t, truncate("short", 10), "short", "untouched")
	testutil.AssertEqual(t, truncate("abcdefghij", 5), "abcd…", "cut")
}

func TestStatus(t *testing.T) {
	testutil.AssertEqual(t, StatusSuccess.String(), "success", "string")
	testutil.AssertEqual(t, StatusError.Symbol(), "✗", "symbol")
	testutil.AssertNotNil(t, StatusWarning.Style(), "style")
}
