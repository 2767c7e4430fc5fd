package feeds_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/hoopline/internal/adapters/feeds"
	"github.com/okian/hoopline/internal/domain/model"
	"github.com/okian/hoopline/internal/domain/reference"
	. "github.com/smartystreets/goconvey/convey"
)

// feedServer serves body with status and counts hits.
type feedServer struct {
	*httptest.Server
	hits   atomic.Int32
	mu     sync.Mutex
	status int
	body   string
	delay  time.Duration
}

func newFeedServer(status int, body string) *feedServer {
	fs := &feedServer{status: status, body: body}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fs.hits.Add(1)
		fs.mu.Lock()
		status, body, delay := fs.status, fs.body, fs.delay
		fs.mu.Unlock()
		time.Sleep(delay)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	return fs
}

func (fs *feedServer) set(status int, body string) {
	fs.mu.Lock()
	fs.status, fs.body = status, body
	fs.mu.Unlock()
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

const statsBody = `{"teams":[
	{"team":"Boston Celtics","off_rating":120.1,"def_rating":109.9},
	{"team":"Denver Nuggets","pts":9440,"plus_minus":240,"gp":80,"pace":1.01},
	{"team":"Seattle Supersonics","off_rating":100,"def_rating":100}
]}`

func TestStatsFeed(t *testing.T) {
	Convey("Given a live stats feed", t, func() {
		ctx := context.Background()
		tbl := reference.Default()
		srv := newFeedServer(http.StatusOK, statsBody)
		defer srv.Close()
		clk := &clock{now: time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)}

		feed := feeds.NewStatsFeed(
			feeds.NewClient("stats", srv.URL, feeds.WithRate(100)),
			tbl,
			feeds.WithTTL(time.Hour),
			feeds.WithClock(clk.Now),
		)

		Convey("When a team is in the feed with ratings", func() {
			p, err := feed.TeamProfile(ctx, "Celtics")

			Convey("Then live ratings keep the reference quarters and pace", func() {
				So(err, ShouldBeNil)
				So(p.Source, ShouldEqual, model.SourceLive)
				So(p.OffRating, ShouldEqual, 120.1)
				So(p.DefRating, ShouldEqual, 109.9)
				So(p.Pace, ShouldEqual, 0.99)
				So(p.QuarterDistribution, ShouldResemble, tbl.Quarters("Celtics"))
			})
		})

		Convey("When a team is in the feed with season totals", func() {
			p, err := feed.TeamProfile(ctx, "Nuggets")
			So(err, ShouldBeNil)
			So(p.OffRating, ShouldEqual, 118.0)
			So(p.DefRating, ShouldEqual, 115.0)
			So(p.Pace, ShouldEqual, 1.01)
		})

		Convey("When a team is missing from the feed", func() {
			p, err := feed.TeamProfile(ctx, "Heat")
			So(err, ShouldBeNil)
			So(p.Source, ShouldEqual, model.SourceReference)
			So(p.OffRating, ShouldEqual, 114.0)
		})

		Convey("When nobody knows the team", func() {
			_, err := feed.TeamProfile(ctx, "Supersonics")
			So(errors.Is(err, feeds.ErrDataUnavailable), ShouldBeTrue)
		})

		Convey("When lookups repeat within the TTL", func() {
			_, _ = feed.TeamProfile(ctx, "Celtics")
			_, _ = feed.TeamProfile(ctx, "Nuggets")
			So(srv.hits.Load(), ShouldEqual, 1)

			Convey("Then the feed is fetched again after it expires", func() {
				clk.Advance(2 * time.Hour)
				_, _ = feed.TeamProfile(ctx, "Celtics")
				So(srv.hits.Load(), ShouldEqual, 2)
			})

			Convey("Then a failed reload keeps serving the previous payload", func() {
				srv.set(http.StatusBadGateway, `{}`)
				clk.Advance(2 * time.Hour)
				p, err := feed.TeamProfile(ctx, "Celtics")
				So(err, ShouldBeNil)
				So(p.Source, ShouldEqual, model.SourceLive)
				So(p.OffRating, ShouldEqual, 120.1)
			})

			Convey("Then Refresh forces a fetch", func() {
				So(feed.Refresh(ctx), ShouldBeNil)
				So(srv.hits.Load(), ShouldEqual, 2)
			})
		})

		Convey("When many lookups miss at once", func() {
			srv.mu.Lock()
			srv.delay = 100 * time.Millisecond
			srv.mu.Unlock()

			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, _ = feed.TeamProfile(ctx, "Celtics")
				}()
			}
			wg.Wait()

			Convey("Then they share upstream fetches", func() {
				So(srv.hits.Load(), ShouldBeLessThan, 20)
			})
		})
	})

	Convey("Given a failing stats feed", t, func() {
		ctx := context.Background()
		srv := newFeedServer(http.StatusInternalServerError, `oops`)
		defer srv.Close()
		feed := feeds.NewStatsFeed(feeds.NewClient("stats", srv.URL, feeds.WithRate(100)), reference.Default())

		Convey("Then lookups fall back to the reference table", func() {
			p, err := feed.TeamProfile(ctx, "Lakers")
			So(err, ShouldBeNil)
			So(p.Source, ShouldEqual, model.SourceReference)
			So(errors.Is(feed.Refresh(ctx), feeds.ErrUpstream), ShouldBeTrue)
		})
	})

	Convey("Given no stats feed URL", t, func() {
		feed := feeds.NewStatsFeed(feeds.NewClient("stats", ""), reference.Default())

		Convey("Then the reference table is used without any fetch", func() {
			p, err := feed.TeamProfile(context.Background(), "Jazz")
			So(err, ShouldBeNil)
			So(p.Source, ShouldEqual, model.SourceReference)
			So(feed.Refresh(context.Background()), ShouldBeNil)
		})
	})
}

func TestFeedDegradation(t *testing.T) {
	Convey("Given a stats feed whose upstream fails", t, func() {
		ctx := context.Background()
		srv := newFeedServer(http.StatusBadGateway, `{}`)
		defer srv.Close()
		clk := &clock{now: time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)}
		feed := feeds.NewStatsFeed(
			feeds.NewClient("stats", srv.URL, feeds.WithRate(100)),
			reference.Default(),
			feeds.WithClock(clk.Now),
			feeds.WithFailureBackoff(time.Minute),
		)

		Convey("When lookups repeat inside the backoff", func() {
			for _, team := range []string{"Celtics", "Lakers", "Heat"} {
				p, err := feed.TeamProfile(ctx, team)
				So(err, ShouldBeNil)
				So(p.Source, ShouldEqual, model.SourceReference)
			}

			Convey("Then the upstream is asked once", func() {
				So(srv.hits.Load(), ShouldEqual, 1)
			})

			Convey("Then the upstream is retried after the backoff", func() {
				srv.set(http.StatusOK, statsBody)
				clk.Advance(2 * time.Minute)
				p, err := feed.TeamProfile(ctx, "Celtics")
				So(err, ShouldBeNil)
				So(p.Source, ShouldEqual, model.SourceLive)
				So(srv.hits.Load(), ShouldEqual, 2)
			})

			Convey("Then Refresh still reaches the upstream", func() {
				So(errors.Is(feed.Refresh(ctx), feeds.ErrUpstream), ShouldBeTrue)
				So(srv.hits.Load(), ShouldEqual, 2)
			})
		})
	})

	Convey("Given a slow stats feed", t, func() {
		srv := newFeedServer(http.StatusOK, statsBody)
		srv.delay = 200 * time.Millisecond
		defer srv.Close()
		feed := feeds.NewStatsFeed(feeds.NewClient("stats", srv.URL, feeds.WithRate(100)), reference.Default())

		Convey("When the first caller gives up before the load finishes", func() {
			short, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			start := time.Now()
			p, err := feed.TeamProfile(short, "Celtics")
			So(time.Since(start), ShouldBeLessThan, 150*time.Millisecond)
			So(err, ShouldBeNil)
			So(p.Source, ShouldEqual, model.SourceReference)

			Convey("Then a caller sharing the load still gets live data", func() {
				p, err := feed.TeamProfile(context.Background(), "Celtics")
				So(err, ShouldBeNil)
				So(p.Source, ShouldEqual, model.SourceLive)
				So(srv.hits.Load(), ShouldEqual, 1)
			})
		})
	})
}

func TestInjuryFeed(t *testing.T) {
	Convey("Given an injury feed", t, func() {
		ctx := context.Background()
		srv := newFeedServer(http.StatusOK, `{"teams":[
			{"team":"Boston Celtics","players":["Jayson Tatum"," ","Kristaps Porzingis"]},
			{"team":"sixers","players":["Joel Embiid"]}
		]}`)
		defer srv.Close()
		feed := feeds.NewInjuryFeed(feeds.NewClient("injuries", srv.URL, feeds.WithRate(100)), reference.Default())

		Convey("Then absentees are keyed by canonical team", func() {
			got, err := feed.Absentees(ctx, "Celtics")
			So(err, ShouldBeNil)
			So(got, ShouldResemble, []string{"Jayson Tatum", "Kristaps Porzingis"})

			got, err = feed.Absentees(ctx, "76ers")
			So(err, ShouldBeNil)
			So(got, ShouldResemble, []string{"Joel Embiid"})
		})

		Convey("Then a healthy team has an empty list", func() {
			got, err := feed.Absentees(ctx, "Heat")
			So(err, ShouldBeNil)
			So(got, ShouldBeEmpty)
		})

		Convey("When the upstream fails before any success", func() {
			srv.set(http.StatusServiceUnavailable, ``)
			failing := feeds.NewInjuryFeed(feeds.NewClient("injuries", srv.URL, feeds.WithRate(100)), reference.Default())
			_, err := failing.Absentees(ctx, "Celtics")
			So(errors.Is(err, feeds.ErrUpstream), ShouldBeTrue)
		})

		Convey("When no URL is configured", func() {
			off := feeds.NewInjuryFeed(feeds.NewClient("injuries", ""), reference.Default())
			got, err := off.Absentees(ctx, "Celtics")
			So(err, ShouldBeNil)
			So(got, ShouldBeNil)
		})
	})
}

func TestStandingsFeed(t *testing.T) {
	Convey("Given a standings feed", t, func() {
		ctx := context.Background()
		srv := newFeedServer(http.StatusOK, `{"teams":[{"team":"Thunder","l10":"8-2"},{"team":"Wizards","l10":"1-9"}]}`)
		defer srv.Close()
		feed := feeds.NewStandingsFeed(feeds.NewClient("standings", srv.URL, feeds.WithRate(100)), reference.Default())

		So(must(feed.LastTen(ctx, "Thunder")), ShouldEqual, "8-2")
		So(must(feed.LastTen(ctx, "Wizards")), ShouldEqual, "1-9")
		So(must(feed.LastTen(ctx, "Heat")), ShouldEqual, "")
		So(srv.hits.Load(), ShouldEqual, 1)
	})
}

func TestClient(t *testing.T) {
	Convey("Given a feed client", t, func() {
		ctx := context.Background()

		Convey("When the body is not JSON", func() {
			srv := newFeedServer(http.StatusOK, `<html>`)
			defer srv.Close()
			var out map[string]any
			err := feeds.NewClient("x", srv.URL).FetchJSON(ctx, &out)
			So(errors.Is(err, feeds.ErrUpstream), ShouldBeTrue)
		})

		Convey("When the upstream is slower than the timeout", func() {
			srv := newFeedServer(http.StatusOK, `{}`)
			srv.delay = 200 * time.Millisecond
			defer srv.Close()
			var out map[string]any
			err := feeds.NewClient("x", srv.URL, feeds.WithTimeout(20*time.Millisecond)).FetchJSON(ctx, &out)
			So(errors.Is(err, feeds.ErrUpstream), ShouldBeTrue)
		})

		Convey("When the client is disabled", func() {
			c := feeds.NewClient("x", "")
			So(c.Enabled(), ShouldBeFalse)
			So(errors.Is(c.FetchJSON(ctx, &struct{}{}), feeds.ErrDisabled), ShouldBeTrue)
		})
	})
}

func must(s string, err error) string {
	if err != nil {
		panic(err)
	}
	return s
}
