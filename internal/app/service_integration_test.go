package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/fivelidz/sahha-webhook-eap-demo-sub002/internal/adapters/http/api"
	"github.com/fivelidz/sahha-webhook-eap-demo-sub002/internal/domain/signature"
)

const pipelineSecret = "integration-secret"

// newPipeline stands up the full ingest path: real service, real file store,
// real handlers, bypass enabled for unsigned test deliveries.
func newPipeline(t *testing.T) (*http.ServeMux, *Service, string) {
	t.Helper()
	dir := t.TempDir()
	dataFile := filepath.Join(dir, "wellness-records.json")

	svc := New(
		WithDataFile(dataFile),
		WithActivityLogFile(filepath.Join(dir, "activity.log")),
	)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)

	srv := api.NewServer(svc, svc, signature.NewVerifier(pipelineSecret), true, nil)
	mux := http.NewServeMux()
	srv.Register(context.Background(), mux)
	return mux, svc, dataFile
}

func post(mux *http.ServeMux, externalID, eventType, body string, signed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set(api.HeaderExternalID, externalID)
	req.Header.Set(api.HeaderEventType, eventType)
	if signed {
		req.Header.Set(api.HeaderSignature, signature.Compute([]byte(pipelineSecret), []byte(body)))
	} else {
		req.Header.Set(api.HeaderBypassSignature, "test")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func get(mux *http.ServeMux, target string) map[string]any {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		return nil
	}
	return out
}

func TestWebhookPipeline(t *testing.T) {
	scoreBody := `{"type":"sleep","score":0.85,"state":"high","scoreDateTime":"2025-09-16T00:00:00Z"}`

	Convey("Given the full webhook pipeline over a real file store", t, func() {
		mux, _, dataFile := newPipeline(t)

		Convey("When a bypassed score delivery is followed by a read", func() {
			rec := post(mux, "test-001", "ScoreCreatedIntegrationEvent", scoreBody, false)
			So(rec.Code, ShouldEqual, http.StatusOK)

			resp := get(mux, "/webhook")

			Convey("Then the read reflects the delivered score", func() {
				So(resp["count"], ShouldEqual, 1)
				profiles := resp["profiles"].([]any)
				profile := profiles[0].(map[string]any)
				So(profile["externalId"], ShouldEqual, "test-001")

				sleep := profile["scores"].(map[string]any)["sleep"].(map[string]any)
				So(sleep["value"], ShouldEqual, 0.85)
				So(sleep["state"], ShouldEqual, "high")
				So(sleep["updatedAt"], ShouldEqual, "2025-09-16T00:00:00Z")
			})
		})

		Convey("When a properly signed delivery arrives without the bypass header", func() {
			rec := post(mux, "test-002", "ArchetypeIdentifiedIntegrationEvent",
				`{"archetypeType":"sleep_pattern","archetypeValue":"night_owl"}`, true)

			Convey("Then end-to-end verification and ingestion succeed", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var ack map[string]any
				So(json.Unmarshal(rec.Body.Bytes(), &ack), ShouldBeNil)
				So(ack["success"], ShouldEqual, true)
				So(ack["profilesProcessed"], ShouldEqual, 1)
			})
		})

		Convey("When deliveries for distinct profiles land concurrently", func() {
			const workers = 8
			var wg sync.WaitGroup
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					body := fmt.Sprintf(`{"type":"activity","score":0.%d,"state":"medium"}`, i+1)
					post(mux, fmt.Sprintf("user-%03d", i), "ScoreCreated", body, false)
				}(i)
			}
			wg.Wait()

			Convey("Then every profile is present and the document on disk is whole", func() {
				resp := get(mux, "/webhook")
				So(resp["count"], ShouldEqual, workers)

				data, err := os.ReadFile(dataFile)
				So(err, ShouldBeNil)
				So(json.Valid(data), ShouldBeTrue)
			})
		})

		Convey("When an unrecognized event follows real data", func() {
			post(mux, "test-001", "ScoreCreatedIntegrationEvent", scoreBody, false)
			before := get(mux, "/webhook")

			rec := post(mux, "test-001", "SessionCreatedIntegrationEvent", `{"session":"s-1"}`, false)

			Convey("Then it is acknowledged and the record stays untouched", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var ack map[string]any
				So(json.Unmarshal(rec.Body.Bytes(), &ack), ShouldBeNil)
				So(ack["message"], ShouldEqual, "event acknowledged")
				So(ack["profilesProcessed"], ShouldEqual, 0)

				after := get(mux, "/webhook")
				So(after["count"], ShouldEqual, before["count"])
				So(after["lastUpdated"], ShouldEqual, before["lastUpdated"])
			})
		})

		Convey("When successive events target the same profile", func() {
			post(mux, "test-001", "ScoreCreatedIntegrationEvent", scoreBody, false)
			post(mux, "test-001", "FactorsCreatedIntegrationEvent",
				`{"scoreType":"sleep","factors":[{"name":"sleep_duration","value":7.5,"unit":"hours"},{"name":"sleep_regularity","value":0.8}]}`, false)
			post(mux, "test-001", "ProfileCreatedIntegrationEvent",
				`{"demographics":{"age":34,"gender":"female"}}`, false)

			Convey("Then the read shows the accumulated record", func() {
				resp := get(mux, "/webhook")
				So(resp["count"], ShouldEqual, 1)
				profile := resp["profiles"].([]any)[0].(map[string]any)

				factors := profile["factors"].(map[string]any)["sleep"].([]any)
				So(factors, ShouldHaveLength, 2)
				So(factors[0].(map[string]any)["unit"], ShouldEqual, "hours")
				So(factors[1].(map[string]any)["unit"], ShouldEqual, "score")

				demographics := profile["demographics"].(map[string]any)
				So(demographics["age"], ShouldEqual, 34)
				So(demographics["gender"], ShouldEqual, "female")
			})
		})

		Convey("When demo mode is read", func() {
			resp := get(mux, "/webhook?mode=demo")

			Convey("Then the synthetic population comes back without touching the store", func() {
				So(resp["mode"], ShouldEqual, "demo")
				So(resp["count"], ShouldEqual, 57)
				So(get(mux, "/webhook")["count"], ShouldEqual, 0)
			})
		})
	})
}

func TestWebhookPipelineTiming(t *testing.T) {
	Convey("Given a pipeline with a score delivery carrying no timestamp", t, func() {
		mux, _, _ := newPipeline(t)
		before := time.Now().UTC()

		Convey("When the delivery is processed", func() {
			rec := post(mux, "test-001", "ScoreCreated", `{"type":"readiness","score":0.6,"state":"medium"}`, false)
			So(rec.Code, ShouldEqual, http.StatusOK)

			Convey("Then the delivery time stands in for the missing timestamp", func() {
				profile := get(mux, "/webhook")["profiles"].([]any)[0].(map[string]any)
				raw := profile["scores"].(map[string]any)["readiness"].(map[string]any)["updatedAt"].(string)

				at, err := time.Parse(time.RFC3339, raw)
				So(err, ShouldBeNil)
				So(at.Before(before.Add(-time.Second)), ShouldBeFalse)
				So(at.After(time.Now().UTC().Add(time.Second)), ShouldBeFalse)
			})
		})
	})
}
