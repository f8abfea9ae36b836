package activity

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given an activity logger writing to a temp file", t, func() {
		path := filepath.Join(t.TempDir(), "activity.log")
		fixed := time.Date(2025, 9, 16, 10, 30, 0, 0, time.UTC)

		Convey("When lines are recorded and the logger is closed", func() {
			l, err := NewLogger(path, WithClock(func() time.Time { return fixed }))
			So(err, ShouldBeNil)

			l.Record("webhook received: external_id=%s type=%s", "test-001", "ScoreCreated")
			l.Record("event processed: profiles=%d", 1)
			So(l.Close(), ShouldBeNil)

			Convey("Then every line lands on disk with a timestamp prefix", func() {
				data, err := os.ReadFile(path)
				So(err, ShouldBeNil)

				lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
				So(lines, ShouldHaveLength, 2)
				So(lines[0], ShouldStartWith, "2025-09-16T10:30:00Z | ")
				So(lines[0], ShouldEndWith, "webhook received: external_id=test-001 type=ScoreCreated")
				So(lines[1], ShouldEndWith, "event processed: profiles=1")
			})
		})

		Convey("When the logger appends to an existing file", func() {
			So(os.WriteFile(path, []byte("earlier line\n"), 0o644), ShouldBeNil)

			l, err := NewLogger(path)
			So(err, ShouldBeNil)
			l.Record("later line")
			So(l.Close(), ShouldBeNil)

			Convey("Then the earlier contents survive", func() {
				data, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				So(string(data), ShouldStartWith, "earlier line\n")
				So(string(data), ShouldContainSubstring, "later line")
			})
		})

		Convey("When Record is called after Close", func() {
			l, err := NewLogger(path)
			So(err, ShouldBeNil)
			So(l.Close(), ShouldBeNil)

			Convey("Then the call is a no-op rather than a panic", func() {
				So(func() { l.Record("too late") }, ShouldNotPanic)

				data, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				So(string(data), ShouldNotContainSubstring, "too late")
			})
		})

		Convey("When records race the close", func() {
			var panics atomic.Int64

			for i := 0; i < 200; i++ {
				l, err := NewLogger(path)
				So(err, ShouldBeNil)

				var wg sync.WaitGroup
				for w := 0; w < 7; w++ {
					wg.Add(1)
					go func() {
						defer wg.Done()
						defer func() {
							if recover() != nil {
								panics.Add(1)
							}
						}()
						l.Record("racing line")
					}()
				}
				So(l.Close(), ShouldBeNil)
				wg.Wait()
			}

			Convey("Then no line is ever sent into the closed channel", func() {
				So(panics.Load(), ShouldEqual, 0)
			})
		})

		Convey("When Close is called twice", func() {
			l, err := NewLogger(path)
			So(err, ShouldBeNil)
			So(l.Close(), ShouldBeNil)

			Convey("Then the second call returns nil", func() {
				So(l.Close(), ShouldBeNil)
			})
		})

		Convey("When the log path cannot be opened", func() {
			_, err := NewLogger(filepath.Join(t.TempDir(), "missing", "activity.log"))

			Convey("Then construction fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
