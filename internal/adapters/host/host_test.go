package host

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	. "github.com/smartystreets/goconvey/convey"

	logging "github.com/okian/profilebridge/pkg/logger"
)

func init() {
	_ = logging.Init()
}

type fakePublisher struct {
	mu        sync.Mutex
	channels  []string
	messages  []string
	receivers int64
	err       error
	closed    bool
}

func (f *fakePublisher) Publish(_ context.Context, channel string, message interface{}) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	f.channels = append(f.channels, channel)
	f.messages = append(f.messages, string(message.([]byte)))
	return redis.NewIntResult(f.receivers, nil)
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

type recordingHandler struct {
	mu    sync.Mutex
	calls []string
	args  []string
	err   error
}

func (r *recordingHandler) Call(_ context.Context, name string, args []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name)
	r.args = append(r.args, string(args))
	return r.err
}

func (r *recordingHandler) fail(err error) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
}

func (r *recordingHandler) seen() ([]string, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...), append([]string(nil), r.args...)
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestRedis(t *testing.T) {
	Convey("Given a redis transport", t, func() {
		pub := &fakePublisher{receivers: 1}
		tr := NewRedis(pub, WithChannelPrefix("game"))
		ctx := context.Background()

		Convey("When an event is sent", func() {
			So(tr.Send(ctx, "ProfileEvents", "onLogoutStarted", `{"provider":5}`), ShouldBeNil)

			Convey("Then the envelope is published on the prefixed channel", func() {
				So(pub.channels, ShouldResemble, []string{"game:ProfileEvents"})
				var env Envelope
				So(json.Unmarshal([]byte(pub.messages[0]), &env), ShouldBeNil)
				So(env, ShouldResemble, Envelope{Channel: "ProfileEvents", Name: "onLogoutStarted", Payload: `{"provider":5}`})
			})
		})

		Convey("When nobody is subscribed", func() {
			pub.receivers = 0
			So(tr.Send(ctx, "ProfileEvents", "onUserRatingEvent", ""), ShouldBeNil)
		})

		Convey("When the server fails", func() {
			pub.err = errors.New("connection refused")
			err := tr.Send(ctx, "ProfileEvents", "onLogoutStarted", "")
			So(errors.Is(err, ErrPublish), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "game:ProfileEvents")
		})

		Convey("When the transport is closed", func() {
			So(tr.Close(), ShouldBeNil)
			So(tr.Close(), ShouldBeNil)
			So(pub.closed, ShouldBeTrue)
			So(tr.Send(ctx, "ProfileEvents", "x", ""), ShouldEqual, ErrTransportClosed)
		})
	})

	Convey("Given a redis url that cannot be parsed", t, func() {
		_, err := Connect(context.Background(), "redis://localhost:notaport")
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldStartWith, "parse redis url")
	})

	Convey("Given the default prefix", t, func() {
		So(NewRedis(&fakePublisher{}).Topic("ProfileEvents"), ShouldEqual, DefaultRedisPrefix+":ProfileEvents")
	})
}

func TestRecorderAndLog(t *testing.T) {
	Convey("Given a recorder", t, func() {
		r := NewRecorder()
		ctx := context.Background()
		So(r.Send(ctx, "c", "a", "1"), ShouldBeNil)
		So(r.Send(ctx, "c", "b", "2"), ShouldBeNil)
		So(r.Sent(), ShouldResemble, []Envelope{{"c", "a", "1"}, {"c", "b", "2"}})

		boom := errors.New("boom")
		r.FailWith(boom)
		So(r.Send(ctx, "c", "z", ""), ShouldEqual, boom)
		r.FailWith(nil)
		r.Reset()
		So(r.Sent(), ShouldBeEmpty)

		So(r.Close(), ShouldBeNil)
		So(r.Send(ctx, "c", "a", ""), ShouldEqual, ErrTransportClosed)
	})

	Convey("Given a log transport", t, func() {
		l := NewLog()
		So(l.Send(context.Background(), "c", "onLoginStarted", "{}"), ShouldBeNil)
		So(l.Close(), ShouldBeNil)
		So(l.Send(context.Background(), "c", "onLoginStarted", "{}"), ShouldEqual, ErrTransportClosed)
	})
}

func TestHub(t *testing.T) {
	Convey("Given a hub served over http", t, func() {
		hub := NewHub(WithSendBuffer(8), WithWriteTimeout(time.Second))
		handler := &recordingHandler{}
		hub.SetCallHandler(handler)
		srv := httptest.NewServer(hub)
		defer srv.Close()
		defer hub.Close()

		url := "ws" + strings.TrimPrefix(srv.URL, "http")
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		So(err, ShouldBeNil)
		defer conn.Close()
		So(waitFor(func() bool { return hub.Clients() == 1 }), ShouldBeTrue)
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

		Convey("When an event is sent", func() {
			So(hub.Send(context.Background(), "ProfileEvents", "onLoginStarted", `{"autoLogin":true}`), ShouldBeNil)

			Convey("Then the host receives the envelope", func() {
				var env Envelope
				So(conn.ReadJSON(&env), ShouldBeNil)
				So(env.Channel, ShouldEqual, "ProfileEvents")
				So(env.Name, ShouldEqual, "onLoginStarted")
				So(env.Payload, ShouldEqual, `{"autoLogin":true}`)
			})
		})

		Convey("When the host sends a call frame", func() {
			So(conn.WriteJSON(map[string]any{"call": "pushEventLogoutStarted", "args": map[string]any{"provider": "twitter"}}), ShouldBeNil)

			Convey("Then the handler runs and the host gets an acknowledgement", func() {
				var reply Reply
				So(conn.ReadJSON(&reply), ShouldBeNil)
				So(reply, ShouldResemble, Reply{Call: "pushEventLogoutStarted", OK: true})
				calls, args := handler.seen()
				So(calls, ShouldResemble, []string{"pushEventLogoutStarted"})
				So(args[0], ShouldEqual, `{"provider":"twitter"}`)
			})
		})

		Convey("When the handler rejects the call", func() {
			handler.fail(errors.New("contract violation: provider"))
			So(conn.WriteJSON(map[string]any{"call": "pushEventLogoutStarted"}), ShouldBeNil)

			var reply Reply
			So(conn.ReadJSON(&reply), ShouldBeNil)
			So(reply.OK, ShouldBeFalse)
			So(reply.Error, ShouldContainSubstring, "contract violation")
		})

		Convey("When the host sends garbage", func() {
			So(conn.WriteMessage(websocket.TextMessage, []byte("hello")), ShouldBeNil)

			var reply Reply
			So(conn.ReadJSON(&reply), ShouldBeNil)
			So(reply.OK, ShouldBeFalse)
			So(reply.Call, ShouldBeEmpty)
		})

		Convey("When the host disconnects", func() {
			So(conn.Close(), ShouldBeNil)
			So(waitFor(func() bool { return hub.Clients() == 0 }), ShouldBeTrue)
		})

		Convey("When the hub is closed", func() {
			So(hub.Close(), ShouldBeNil)
			So(hub.Send(context.Background(), "c", "n", ""), ShouldEqual, ErrTransportClosed)
		})
	})

	Convey("Given a hub with no hosts", t, func() {
		hub := NewHub()
		So(hub.Send(context.Background(), "c", "n", ""), ShouldBeNil)
		So(hub.Clients(), ShouldEqual, 0)
	})
}

func TestHubBackpressure(t *testing.T) {
	Convey("Given a client whose buffer is full", t, func() {
		hub := NewHub()
		c := &client{id: "slow", send: make(chan []byte, 1), done: make(chan struct{})}

		So(hub.offer(c, []byte("1")), ShouldBeTrue)
		So(hub.offer(c, []byte("2")), ShouldBeFalse)
		So(string(<-c.send), ShouldEqual, "1")

		Convey("Then a stopped client accepts nothing", func() {
			close(c.done)
			So(hub.offer(c, []byte("3")), ShouldBeFalse)
		})
	})
}
