package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then every metric is registered under the namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.batchFailed.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
				var names []string
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "dscore_batch_recordings_failed_total")
			})
		})

		Convey("When the same registry is used twice", func() {
			registry := prometheus.NewRegistry()
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then registration panics on duplicates", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestInit(t *testing.T) {
	Convey("Given the global manager rebuilt with a version label", t, func() {
		Init(WithConstLabels(map[string]string{"version": "1.2.3"}))
		Reset(func() { Init() })

		Convey("When a recording is scored", func() {
			RecordRecordingScored()

			Convey("Then the exposed series carries the label", func() {
				expected := `
# HELP dscore_scoring_recordings_scored_total Total number of recordings scored on frame-level metrics
# TYPE dscore_scoring_recordings_scored_total counter
dscore_scoring_recordings_scored_total{version="1.2.3"} 1
`
				err := testutil.GatherAndCompare(GetRegistry(), strings.NewReader(expected), "dscore_scoring_recordings_scored_total")
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When a batch recording fails", func() {
			before := testutil.ToFloat64(globalManager.batchFailed)
			RecordBatchRecordingFailed()

			Convey("Then the failure counter increases", func() {
				So(testutil.ToFloat64(globalManager.batchFailed), ShouldEqual, before+1)
			})
		})

		Convey("When frames are labeled", func() {
			before := testutil.ToFloat64(globalManager.framesLabeled)
			RecordFramesLabeled(1000)
			So(testutil.ToFloat64(globalManager.framesLabeled), ShouldEqual, before+1000)
		})

		Convey("When gauges are updated", func() {
			UpdateQueueSize(7)
			UpdateQueueCapacity(1024)
			UpdateWorkerCount(4)
			UpdateRepositoryRowsTotal(12)
			UpdateSystemMemoryUsage(2048)
			UpdateSystemGoroutineCount(9)

			Convey("Then they hold the latest value", func() {
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 7)
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 1024)
				So(testutil.ToFloat64(globalManager.workerCount), ShouldEqual, 4)
				So(testutil.ToFloat64(globalManager.repositoryRows), ShouldEqual, 12)
				So(testutil.ToFloat64(globalManager.systemMemoryUsage), ShouldEqual, 2048)
				So(testutil.ToFloat64(globalManager.systemGoroutineCount), ShouldEqual, 9)
			})
		})

		Convey("When recording latencies and labeled counters", func() {
			So(func() {
				RecordRecordingScored()
				RecordScoringLatency(12.5)
				RecordDERLatency(300)
				RecordDERFailure()
				RecordBatchRecordingSkipped()
				RecordBatchDuplicate()
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				AddWorkerActive(1)
				AddWorkerActive(-1)
				RecordWorkerProcessingLatency(40)
				RecordWorkerError()
				RecordRepositoryUpdateLatency(0.1)
				RecordHTTPRequest("/score", "POST", "200")
				RecordHTTPRequestDuration("/score", "POST", "200", 5)
				RecordErrorByComponent("der", "scorer_failure")
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
		})

		Convey("When the registry is scraped", func() {
			RecordHTTPRequest("/healthz", "GET", "200")
			n, err := testutil.GatherAndCount(GetRegistry(), "dscore_http_requests_total")

			Convey("Then the request series are exposed", func() {
				So(err, ShouldBeNil)
				So(n, ShouldBeGreaterThan, 0)
			})
		})

		Convey("When comparing exposition text", func() {
			expected := `
# HELP dscore_queue_capacity Maximum queue capacity
# TYPE dscore_queue_capacity gauge
dscore_queue_capacity 64
`
			UpdateQueueCapacity(64)
			err := testutil.GatherAndCompare(GetRegistry(), strings.NewReader(expected), "dscore_queue_capacity")
			So(err, ShouldBeNil)
		})
	})
}
