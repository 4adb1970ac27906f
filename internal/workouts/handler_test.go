package workouts_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/2beens/workoutwrapped/internal/cache"
	"github.com/2beens/workoutwrapped/internal/telemetry/metrics"
	"github.com/2beens/workoutwrapped/internal/workouts"
	testingpkg "github.com/2beens/workoutwrapped/pkg/testing"

	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// INFO: https://github.com/go-redis/redis/issues/1029
		goleak.IgnoreTopFunction(
			"github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper",
		),
	)
}

func exampleCSV() []byte {
	row := func(ts, instructor, minutes, discipline, classType, distance string) []string {
		r := make([]string, len(testingpkg.WorkoutsCSVHeader))
		r[0], r[2], r[3], r[4], r[5], r[13] = ts, instructor, minutes, discipline, classType, distance
		return r
	}
	return testingpkg.FakeWorkoutsCSV([][]string{
		row("2023-03-05 10:00 (EST)", "A", "30", "Cycling", "Intervals", "8"),
		row("2023-03-06 10:00 (EST)", "A", "45", "Cycling", "Intervals", "10"),
		row("2022-12-31 10:00 (EST)", "B", "20", "Running", "", "2"),
	})
}

func newReportRequest(t *testing.T, query string, body []byte, contentType string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, "/workouts/report"+query, bytes.NewReader(body))
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.RemoteAddr = "83.36.233.153:4242"
	return req
}

func newMultipartRequest(t *testing.T, query string, body []byte, partContentType string) *http.Request {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="workouts.csv"`)
	header.Set("Content-Type", partContentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return newReportRequest(t, query, buf.Bytes(), mw.FormDataContentType())
}

func decodeReport(t *testing.T, rr *httptest.ResponseRecorder) workouts.Report {
	t.Helper()
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var report workouts.Report
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
	return report
}

func TestHandler_HandleReport_RawBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCache := NewMockreportCache(ctrl)
	metricsManager := metrics.NewTestManager()
	h := workouts.NewHandler(workouts.HandlerParams{
		Cache:          mockCache,
		MetricsManager: metricsManager,
	})

	var cachedKey string
	mockCache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, cache.ErrMiss)
	mockCache.EXPECT().
		Set(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, key string, value []byte) error {
			cachedKey = key
			assert.True(t, json.Valid(value))
			return nil
		})

	rr := httptest.NewRecorder()
	h.HandleReport(rr, newReportRequest(t, "?tz=UTC", exampleCSV(), "text/csv"))

	report := decodeReport(t, rr)
	assert.Equal(t, 3, report.UploadedRecords)
	assert.Equal(t, 2, report.TotalWorkouts)
	assert.Equal(t, "UTC", report.TimeZone)
	assert.Equal(t, "A", report.Highlights.FavoriteInstructor)
	assert.Equal(t, "Intervals", report.Highlights.FavoriteClassType)
	assert.Equal(t, "3pm", report.Highlights.FavoriteTimeOfDay)
	assert.Equal(t, 75, report.Charts.WorkoutMinutes.Values[2])
	assert.Equal(t, 18, report.Highlights.TotalDistance)

	assert.Contains(t, cachedKey, "[2023-01-01, 2024-01-01)")
	assert.Contains(t, cachedKey, "::UTC::5")
	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterReportCache.WithLabelValues("miss")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterReports.WithLabelValues("ok")))
	assert.Equal(t, float64(2), testutil.ToFloat64(metricsManager.CounterRecords.WithLabelValues("kept")))
}

func TestHandler_HandleReport_Multipart(t *testing.T) {
	h := workouts.NewHandler(workouts.HandlerParams{
		Cache: cache.NewMapCache(),
	})

	rr := httptest.NewRecorder()
	h.HandleReport(rr, newMultipartRequest(t, "?tz=America/New_York&top=1", exampleCSV(), "text/csv"))

	report := decodeReport(t, rr)
	assert.Equal(t, "America/New_York", report.TimeZone)
	assert.Equal(t, "10am", report.Highlights.FavoriteTimeOfDay)
	assert.Len(t, report.Charts.FavoriteInstructors.Labels, 1)
}

func TestHandler_HandleReport_NotCSV(t *testing.T) {
	metricsManager := metrics.NewTestManager()
	h := workouts.NewHandler(workouts.HandlerParams{MetricsManager: metricsManager})

	requests := map[string]*http.Request{
		"raw json":          newReportRequest(t, "", []byte(`{"a":1}`), "application/json"),
		"raw no type":       newReportRequest(t, "", exampleCSV(), ""),
		"multipart excel":   newMultipartRequest(t, "", exampleCSV(), "application/vnd.ms-excel"),
		"multipart no type": newMultipartRequest(t, "", exampleCSV(), ""),
	}
	for name, req := range requests {
		t.Run(name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.HandleReport(rr, req)
			assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
			assert.Equal(t, "please upload a CSV file", strings.TrimSpace(rr.Body.String()))
		})
	}
	assert.Equal(t, float64(4), testutil.ToFloat64(metricsManager.CounterRejectedUploads.WithLabelValues("not_csv")))
}

func TestHandler_HandleReport_BadRequests(t *testing.T) {
	h := workouts.NewHandler(workouts.HandlerParams{})

	testCases := []struct {
		name  string
		req   *http.Request
		check string
	}{
		{name: "bad year", req: newReportRequest(t, "?year=twenty", exampleCSV(), "text/csv"), check: "invalid year"},
		{name: "bad top", req: newReportRequest(t, "?top=0", exampleCSV(), "text/csv"), check: "invalid top"},
		{name: "top too big", req: newReportRequest(t, "?top=500", exampleCSV(), "text/csv"), check: "invalid top"},
		{name: "bad tz", req: newReportRequest(t, "?tz=Mars/Olympus", exampleCSV(), "text/csv"), check: "invalid time zone"},
		{name: "bad window", req: newReportRequest(t, "?from=2023-06-01&to=2023-01-01", exampleCSV(), "text/csv"), check: "invalid window"},
		{name: "half window", req: newReportRequest(t, "?from=2023-06-01", exampleCSV(), "text/csv"), check: "window end"},
		{name: "empty body", req: newReportRequest(t, "", nil, "text/csv"), check: workouts.ErrEmptyInput.Error()},
		{name: "multipart without file", req: func() *http.Request {
			buf := &bytes.Buffer{}
			mw := multipart.NewWriter(buf)
			require.NoError(t, mw.WriteField("note", "hello"))
			require.NoError(t, mw.Close())
			return newReportRequest(t, "", buf.Bytes(), mw.FormDataContentType())
		}(), check: "failed to read upload"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.HandleReport(rr, tc.req)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, rr.Body.String(), tc.check)
		})
	}
}

func TestHandler_HandleReport_TooLarge(t *testing.T) {
	h := workouts.NewHandler(workouts.HandlerParams{})

	body := bytes.Repeat([]byte("a"), workouts.MaxUploadBytes+1)
	rr := httptest.NewRecorder()
	h.HandleReport(rr, newReportRequest(t, "", body, "text/csv"))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestHandler_HandleReport_CacheHit(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCache := NewMockreportCache(ctrl)
	metricsManager := metrics.NewTestManager()
	h := workouts.NewHandler(workouts.HandlerParams{
		Cache:          mockCache,
		MetricsManager: metricsManager,
	})

	cached := []byte(`{"id":"cached-report"}`)
	mockCache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(cached, nil)

	rr := httptest.NewRecorder()
	h.HandleReport(rr, newReportRequest(t, "?tz=UTC", exampleCSV(), "text/csv"))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, cached, rr.Body.Bytes())
	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterReportCache.WithLabelValues("hit")))
}

func TestHandler_HandleReport_CacheErrorsAreNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCache := NewMockreportCache(ctrl)
	h := workouts.NewHandler(workouts.HandlerParams{Cache: mockCache})

	mockCache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down"))
	mockCache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

	rr := httptest.NewRecorder()
	h.HandleReport(rr, newReportRequest(t, "?tz=UTC", exampleCSV(), "text/csv"))
	report := decodeReport(t, rr)
	assert.Equal(t, 2, report.TotalWorkouts)
}

func TestHandler_HandleReport_SameUploadServedFromCache(t *testing.T) {
	h := workouts.NewHandler(workouts.HandlerParams{Cache: cache.NewMapCache()})

	rr1 := httptest.NewRecorder()
	h.HandleReport(rr1, newReportRequest(t, "?tz=UTC", exampleCSV(), "text/csv"))
	first := decodeReport(t, rr1)

	rr2 := httptest.NewRecorder()
	h.HandleReport(rr2, newReportRequest(t, "?tz=UTC", exampleCSV(), "text/csv"))
	second := decodeReport(t, rr2)
	assert.Equal(t, first.ID, second.ID)

	// a different viewer zone is a different report
	rr3 := httptest.NewRecorder()
	h.HandleReport(rr3, newReportRequest(t, "?tz=Asia/Kolkata", exampleCSV(), "text/csv"))
	third := decodeReport(t, rr3)
	assert.NotEqual(t, first.ID, third.ID)
}

func TestHandler_HandleReport_NotEnoughData(t *testing.T) {
	h := workouts.NewHandler(workouts.HandlerParams{})

	rr := httptest.NewRecorder()
	h.HandleReport(rr, newReportRequest(t, "?year=2021&tz=UTC", exampleCSV(), "text/csv"))
	report := decodeReport(t, rr)
	assert.True(t, report.NotEnoughData)
	assert.True(t, report.Charts.FavoriteInstructors.NotEnoughData)
	assert.True(t, workouts.YearWindow(2021).Start.Equal(report.Window.Start))
	assert.True(t, workouts.YearWindow(2021).End.Equal(report.Window.End))
}

func TestHandler_ViewerLocationResolution(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	belgrade, err := time.LoadLocation("Europe/Belgrade")
	require.NoError(t, err)

	t.Run("header", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		geo := NewMocklocationResolver(ctrl)
		h := workouts.NewHandler(workouts.HandlerParams{GeoIP: geo, DefaultLocation: belgrade})

		req := newReportRequest(t, "", exampleCSV(), "text/csv")
		req.Header.Set("X-Timezone", "America/Los_Angeles")
		rr := httptest.NewRecorder()
		h.HandleReport(rr, req)
		assert.Equal(t, "America/Los_Angeles", decodeReport(t, rr).TimeZone)
	})

	t.Run("geo ip", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		geo := NewMocklocationResolver(ctrl)
		geo.EXPECT().RequestLocation(gomock.Any(), gomock.Any()).Return(kolkata, nil)
		h := workouts.NewHandler(workouts.HandlerParams{GeoIP: geo, DefaultLocation: belgrade})

		rr := httptest.NewRecorder()
		h.HandleReport(rr, newReportRequest(t, "", exampleCSV(), "text/csv"))
		report := decodeReport(t, rr)
		assert.Equal(t, "Asia/Kolkata", report.TimeZone)
		// 10:00 EST -> 15:00 UTC -> 20:30 IST
		assert.Equal(t, "8pm", report.Highlights.FavoriteTimeOfDay)
	})

	t.Run("geo ip failure falls back to default", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		geo := NewMocklocationResolver(ctrl)
		geo.EXPECT().RequestLocation(gomock.Any(), gomock.Any()).Return(nil, errors.New("ipinfo down"))
		h := workouts.NewHandler(workouts.HandlerParams{GeoIP: geo, DefaultLocation: belgrade})

		rr := httptest.NewRecorder()
		h.HandleReport(rr, newReportRequest(t, "", exampleCSV(), "text/csv"))
		assert.Equal(t, "Europe/Belgrade", decodeReport(t, rr).TimeZone)
	})
}

func TestHandler_HandleZones(t *testing.T) {
	h := workouts.NewHandler(workouts.HandlerParams{})

	rr := httptest.NewRecorder()
	h.HandleZones(rr, httptest.NewRequest(http.MethodGet, "/workouts/zones", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var zones []workouts.ZoneOffsetEntry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &zones))
	require.Len(t, zones, len(workouts.ZoneOffsetEntries()))
	assert.Equal(t, "AEDT", zones[0].Zone)
	for _, z := range zones {
		if z.Zone == "IST" {
			assert.Equal(t, 330, z.OffsetMinutes)
		}
	}
}

func TestHandler_HandleWindow(t *testing.T) {
	h := workouts.NewHandler(workouts.HandlerParams{DefaultWindow: workouts.YearWindow(2024)})

	rr := httptest.NewRecorder()
	h.HandleWindow(rr, httptest.NewRequest(http.MethodGet, "/workouts/window", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp workouts.WindowResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "2024", resp.Label)
	assert.True(t, workouts.YearWindow(2024).Start.Equal(resp.Start))
	assert.True(t, workouts.YearWindow(2024).End.Equal(resp.End))
}

type testRequestRateLimiter struct {
	allowed int
}

func (l *testRequestRateLimiter) Allow(_ context.Context, _ string, limit redis_rate.Limit) (*redis_rate.Result, error) {
	res := &redis_rate.Result{Limit: limit, RetryAfter: time.Minute}
	if l.allowed > 0 {
		l.allowed--
		res.Allowed = 1
		res.RetryAfter = -1
	}
	return res, nil
}

func TestHandler_SetupRoutes(t *testing.T) {
	h := workouts.NewHandler(workouts.HandlerParams{Cache: cache.NewMapCache()})
	r := mux.NewRouter()
	h.SetupRoutes(r, &testRequestRateLimiter{allowed: 1}, 1)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/workouts/zones", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/workouts/window", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, newReportRequest(t, "?tz=UTC", exampleCSV(), "text/csv"))
	assert.Equal(t, http.StatusOK, rr.Code)

	// upload budget used up
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, newReportRequest(t, "?tz=UTC", exampleCSV(), "text/csv"))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/workouts/report", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
