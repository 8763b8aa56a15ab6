package feed_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/cricksim/internal/adapters/feed"
	"github.com/okian/cricksim/internal/domain/model"
	"github.com/okian/cricksim/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestHub(t *testing.T) {
	Convey("Given a running hub behind a test server", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		hub := feed.NewHub(nil)
		go hub.Run(ctx)

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = hub.Serve(r.Context(), w, r, strings.TrimPrefix(r.URL.Path, "/"))
		}))
		defer srv.Close()
		wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

		Convey("When a client watches a match", func() {
			conn, _, err := websocket.DefaultDialer.Dial(wsURL+"/m1", nil)
			So(err, ShouldBeNil)
			defer func() { _ = conn.Close() }()
			So(waitFor(func() bool { return hub.Clients(ctx) == 1 }), ShouldBeTrue)

			Convey("Then it receives that match's balls", func() {
				So(hub.Publish(ctx, model.BallEvent{MatchID: "other", Ball: 1}), ShouldBeNil)
				So(hub.Publish(ctx, model.BallEvent{MatchID: "m1", Ball: 3, Outcome: model.Six, Runs: 6}), ShouldBeNil)

				_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
				var msg feed.Message
				So(conn.ReadJSON(&msg), ShouldBeNil)
				So(msg.Type, ShouldEqual, feed.TypeBall)
				So(msg.Payload.MatchID, ShouldEqual, "m1")
				So(msg.Payload.Outcome, ShouldEqual, model.Six)
			})

			Convey("Then the final ball is marked complete", func() {
				So(hub.Publish(ctx, model.BallEvent{MatchID: "m1", Ball: 12, Complete: true}), ShouldBeNil)

				_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
				var msg feed.Message
				So(conn.ReadJSON(&msg), ShouldBeNil)
				So(msg.Type, ShouldEqual, feed.TypeComplete)
			})

			Convey("Then leaving unregisters it", func() {
				_ = conn.Close()
				So(waitFor(func() bool { return hub.Clients(ctx) == 0 }), ShouldBeTrue)
			})
		})

		Convey("When the hub stops", func() {
			conn, _, err := websocket.DefaultDialer.Dial(wsURL+"/m1", nil)
			So(err, ShouldBeNil)
			defer func() { _ = conn.Close() }()
			So(waitFor(func() bool { return hub.Clients(ctx) == 1 }), ShouldBeTrue)

			cancel()

			Convey("Then clients are disconnected and publishing fails", func() {
				_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
				_, _, err := conn.ReadMessage()
				So(err, ShouldNotBeNil)
				So(waitFor(func() bool {
					return errors.Is(hub.Publish(context.Background(), model.BallEvent{MatchID: "m1"}), feed.ErrStopped)
				}), ShouldBeTrue)
			})
		})

		Convey("When the request is not a websocket upgrade", func() {
			resp, err := http.Get(srv.URL + "/m1")
			So(err, ShouldBeNil)
			defer func() { _ = resp.Body.Close() }()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		So(hub.Name(), ShouldEqual, "websocket")
	})
}

func TestStreamPublisher(t *testing.T) {
	Convey("Given a stream publisher on miniredis", t, func() {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer func() { _ = client.Close() }()
		ctx := context.Background()

		p := feed.NewStreamPublisher(client, "cricksim:balls", feed.WithMaxLen(10))
		So(p.Name(), ShouldEqual, "redis_stream")

		Convey("When balls are published", func() {
			So(p.Publish(ctx, model.BallEvent{MatchID: "m1", Innings: 1, Ball: 1, Outcome: model.Wicket}), ShouldBeNil)
			So(p.Publish(ctx, model.BallEvent{MatchID: "m1", Innings: 1, Ball: 2, Outcome: model.Four, Runs: 4}), ShouldBeNil)

			Convey("Then they are appended with indexable fields", func() {
				msgs, err := client.XRange(ctx, "cricksim:balls", "-", "+").Result()
				So(err, ShouldBeNil)
				So(msgs, ShouldHaveLength, 2)
				So(msgs[0].Values["match_id"], ShouldEqual, "m1")
				So(msgs[0].Values["outcome"], ShouldEqual, "W")
				So(msgs[1].Values["ball"], ShouldEqual, "2")

				var e model.BallEvent
				So(json.Unmarshal([]byte(msgs[1].Values["data"].(string)), &e), ShouldBeNil)
				So(e.Runs, ShouldEqual, 4)
			})
		})

		Convey("When redis is down", func() {
			mr.Close()
			So(p.Publish(ctx, model.BallEvent{MatchID: "m1"}), ShouldNotBeNil)
		})
	})
}
