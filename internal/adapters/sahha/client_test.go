package sahha

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

// fakePlatform serves the token handshake plus one data route, counting
// token requests so caching behavior is observable.
type fakePlatform struct {
	tokenCalls   atomic.Int64
	expiresIn    int
	tokenStatus  int
	metricsReply string
}

func (p *fakePlatform) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/account/token", func(w http.ResponseWriter, r *http.Request) {
		p.tokenCalls.Add(1)

		var creds map[string]string
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil ||
			creds["clientId"] != "id-1" || creds["clientSecret"] != "secret-1" {
			http.Error(w, `{"error":"bad credentials"}`, http.StatusUnauthorized)
			return
		}
		if p.tokenStatus != 0 {
			http.Error(w, `{"error":"upstream down"}`, p.tokenStatus)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"accountToken": "tok-123",
			"expiresIn":    p.expiresIn,
		})
	})
	mux.HandleFunc("/organization/metrics", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "account tok-123" {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(p.metricsReply))
	})
	return mux
}

func TestClient(t *testing.T) {
	ctx := context.Background()

	Convey("Given a client against a fake platform", t, func() {
		platform := &fakePlatform{expiresIn: 3600, metricsReply: `{"profileCount":42}`}
		srv := httptest.NewServer(platform.handler())
		defer srv.Close()

		client := NewClient("id-1", "secret-1", WithBaseURL(srv.URL))

		Convey("When the first token is requested", func() {
			token, err := client.Token(ctx)

			Convey("Then the handshake yields the account token", func() {
				So(err, ShouldBeNil)
				So(token, ShouldEqual, "tok-123")
				So(platform.tokenCalls.Load(), ShouldEqual, 1)
			})

			Convey("Then a second request reuses the cached token", func() {
				token2, err := client.Token(ctx)
				So(err, ShouldBeNil)
				So(token2, ShouldEqual, "tok-123")
				So(platform.tokenCalls.Load(), ShouldEqual, 1)
			})
		})

		Convey("When the cached token is near expiry", func() {
			now := time.Now()
			clock := &now
			client = NewClient("id-1", "secret-1",
				WithBaseURL(srv.URL),
				WithClock(func() time.Time { return *clock }),
			)

			_, err := client.Token(ctx)
			So(err, ShouldBeNil)

			later := now.Add(3590 * time.Second)
			clock = &later

			_, err = client.Token(ctx)

			Convey("Then the handshake runs again", func() {
				So(err, ShouldBeNil)
				So(platform.tokenCalls.Load(), ShouldEqual, 2)
			})
		})

		Convey("When organization metrics are fetched", func() {
			data, err := client.OrganizationMetrics(ctx)

			Convey("Then the raw payload comes back under the account token", func() {
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, `{"profileCount":42}`)
			})
		})

		Convey("When the credentials are rejected", func() {
			client = NewClient("id-1", "wrong-secret", WithBaseURL(srv.URL))

			_, err := client.Token(ctx)

			Convey("Then the API status error surfaces", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, ErrAPIStatus), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "status 401")
			})
		})

		Convey("When the token endpoint is down", func() {
			platform.tokenStatus = http.StatusBadGateway

			_, err := client.OrganizationMetrics(ctx)

			Convey("Then the fetch fails before any data request", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, ErrAPIStatus), ShouldBeTrue)
			})
		})

		Convey("When the token response carries no token", func() {
			emptySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{}`))
			}))
			defer emptySrv.Close()
			client = NewClient("id-1", "secret-1", WithBaseURL(emptySrv.URL))

			_, err := client.Token(ctx)

			Convey("Then the client reports the missing token", func() {
				So(errors.Is(err, ErrNoToken), ShouldBeTrue)
			})
		})
	})
}
