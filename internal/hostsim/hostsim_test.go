package hostsim

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/profilebridge/internal/adapters/http/api"
	service "github.com/okian/profilebridge/internal/app"
	"github.com/okian/profilebridge/internal/bridge"
	"github.com/okian/profilebridge/internal/config"
	"github.com/okian/profilebridge/internal/domain/model"
	"github.com/okian/profilebridge/pkg/logger"
)

func init() {
	_ = logger.Init()
}

func startService(t *testing.T) *httptest.Server {
	t.Helper()
	svc := service.New(config.New())
	ctx := context.Background()
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("start service: %v", err)
	}
	mux := http.NewServeMux()
	api.NewServer(svc, svc, svc.HostHandler()).Register(ctx, mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		_ = svc.Stop(ctx)
	})
	return srv
}

func TestGenerateCall(t *testing.T) {
	Convey("Given every generatable entry point", t, func() {
		entries := generatableEntries()
		So(len(entries), ShouldEqual, len(bridge.Entries())-3)

		for _, entry := range entries {
			So(strings.HasPrefix(entry, "pushEventLogout"), ShouldBeFalse)

			call, err := generateCall(entry, model.Provider(5))
			So(err, ShouldBeNil)
			So(call.Entry, ShouldEqual, entry)
			So(call.Args["payload"], ShouldEqual, call.Payload)
			So(call.Args["provider"], ShouldEqual, "5")

			kind, _ := bridge.KindOf(entry)
			So(call.Expect, ShouldEqual, kind.String())
		}
	})

	Convey("Given an unknown entry point", t, func() {
		_, err := generateCall("pushEventNope", model.Provider(5))
		So(err, ShouldNotBeNil)
	})

	Convey("Given an excluded provider list", t, func() {
		stats := &Stats{}
		calls, err := generateCalls(context.Background(), &Config{NumCalls: 60, Excluded: []string{"facebook"}}, stats)
		So(err, ShouldBeNil)
		So(calls, ShouldHaveLength, 60)
		So(stats.CallsGenerated, ShouldEqual, 60)
		for _, c := range calls {
			So(c.Filtered, ShouldEqual, c.Provider == int(model.Provider(0)))
		}

		_, err = generateCalls(context.Background(), &Config{NumCalls: 1, Excluded: []string{"myspace"}}, &Stats{})
		So(err, ShouldNotBeNil)
	})
}

func TestVerifyDeliveries(t *testing.T) {
	Convey("Given generated calls and recorded events", t, func() {
		calls := []Call{
			{Entry: "pushEventLoginStarted", Payload: "a", Expect: "onLoginStarted"},
			{Entry: "pushEventLoginStarted", Payload: "b", Expect: "onLoginStarted", Filtered: true},
			{Entry: "pushEventLoginStarted", Payload: "c", Expect: "onLoginStarted"},
			{Entry: "pushEventLoginFailed", Payload: "d", Expect: "onLoginFailed"},
			{Entry: "pushEventLoginFailed", Payload: "e", Expect: "onLoginFailed", Filtered: true},
		}
		received := map[string][]Received{
			"a": {{Name: "onLoginStarted"}},
			"d": {{Name: "onLoginStarted"}},
			"e": {{Name: "onLoginFailed"}},
			"z": {{Name: "onLoginFailed"}},
		}
		stats := &Stats{}

		mismatches := verifyDeliveries(context.Background(), calls, received, nil, stats)

		So(stats.Delivered, ShouldEqual, 1)
		So(stats.Filtered, ShouldEqual, 1)
		So(stats.Missing, ShouldEqual, 1)
		So(stats.Unexpected, ShouldEqual, 3)
		So(mismatches, ShouldHaveLength, 4)
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running bridge with a websocket host endpoint", t, func() {
		srv := startService(t)
		out := filepath.Join(t.TempDir(), "calls.json")

		cfg := &Config{
			BaseURL:    srv.URL,
			NumCalls:   90,
			Workers:    4,
			Timeout:    5 * time.Second,
			Settle:     500 * time.Millisecond,
			Excluded:   []string{"facebook"},
			OutputFile: out,
		}

		Convey("When the simulation runs", func() {
			stats, err := Run(context.Background(), cfg)

			Convey("Then every call is accepted and accounted for", func() {
				So(err, ShouldBeNil)
				So(stats.CallsAccepted, ShouldEqual, 90)
				So(stats.Delivered+stats.Filtered, ShouldEqual, 90)
				So(stats.Received, ShouldEqual, stats.Delivered)
				So(stats.Missing, ShouldEqual, 0)

				data, readErr := os.ReadFile(out)
				So(readErr, ShouldBeNil)
				var saved []Call
				So(json.Unmarshal(data, &saved), ShouldBeNil)
				So(saved, ShouldHaveLength, 90)
			})
		})
	})

	Convey("Given a service that is not reachable", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		_, err := Run(context.Background(), &Config{BaseURL: srv.URL, NumCalls: 1, Workers: 1, Timeout: time.Second})
		So(err, ShouldNotBeNil)
		So(errors.Is(err, ErrVerification), ShouldBeFalse)
	})
}

func TestHostURL(t *testing.T) {
	Convey("Host URLs follow the base scheme", t, func() {
		So(hostURL("http://localhost:9080"), ShouldEqual, "ws://localhost:9080/host")
		So(hostURL("https://bridge.example.com"), ShouldEqual, "wss://bridge.example.com/host")
	})
}
