package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/workoutwrapped/internal/cache"
	"github.com/2beens/workoutwrapped/internal/middleware"
	"github.com/2beens/workoutwrapped/internal/telemetry/metrics"
	"github.com/2beens/workoutwrapped/internal/telemetry/tracing"
	"github.com/2beens/workoutwrapped/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=workouts_test

const (
	MaxUploadBytes = 10 << 20
	MaxTopN        = 50
	uploadFormFile = "file"
	timezoneHeader = "X-Timezone"
)

type reportCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

type locationResolver interface {
	RequestLocation(ctx context.Context, r *http.Request) (*time.Location, error)
}

type HandlerParams struct {
	Cache reportCache
	// GeoIP is optional, nil disables viewer zone lookup by client IP.
	GeoIP           locationResolver
	DefaultWindow   Window
	DefaultLocation *time.Location
	TopN            int
	MetricsManager  *metrics.Manager
}

type Handler struct {
	cache           reportCache
	geoIP           locationResolver
	defaultWindow   Window
	defaultLocation *time.Location
	topN            int
	metricsManager  *metrics.Manager
}

type WindowResponse struct {
	Window
	Label string `json:"label"`
}

func NewHandler(params HandlerParams) *Handler {
	if params.Cache == nil {
		params.Cache = cache.NopCache{}
	}
	if params.DefaultWindow.Start.IsZero() && params.DefaultWindow.End.IsZero() {
		params.DefaultWindow = DefaultWindow
	}
	if params.DefaultLocation == nil {
		params.DefaultLocation = time.UTC
	}
	if params.TopN <= 0 {
		params.TopN = DefaultTopN
	}
	if params.MetricsManager == nil {
		params.MetricsManager = metrics.NewTestManager()
	}
	return &Handler{
		cache:           params.Cache,
		geoIP:           params.GeoIP,
		defaultWindow:   params.DefaultWindow,
		defaultLocation: params.DefaultLocation,
		topN:            params.TopN,
		metricsManager:  params.MetricsManager,
	}
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	uploadsPerMin int,
) {
	workoutsRouter := mainRouter.PathPrefix("/workouts").Subrouter()
	workoutsRouter.HandleFunc("/zones", handler.HandleZones).Methods("GET", "OPTIONS").Name("workouts-zones")
	workoutsRouter.HandleFunc("/window", handler.HandleWindow).Methods("GET", "OPTIONS").Name("workouts-window")

	reportRouter := workoutsRouter.PathPrefix("/report").Subrouter()
	reportRouter.HandleFunc("", handler.HandleReport).Methods("POST", "OPTIONS").Name("workouts-report")
	if rateLimiter != nil {
		reportRouter.Use(middleware.RateLimit(rateLimiter, "workouts-report", uploadsPerMin, handler.metricsManager))
	}
}

type reportParams struct {
	window Window
	viewer *time.Location
	topN   int
}

func (p reportParams) cacheKey(content []byte) string {
	return fmt.Sprintf("%s::%s::%s::%d", pkg.ContentHash(content), p.window, p.viewer, p.topN)
}

// HandleReport builds the year in review for an uploaded workouts CSV.
func (handler *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.report")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	params, err := handler.reportParams(ctx, r)
	if err != nil {
		handler.reject(w, "params", err.Error(), http.StatusBadRequest)
		return
	}
	span.SetAttributes(
		attribute.String("window", params.window.String()),
		attribute.String("viewer.tz", params.viewer.String()),
		attribute.Int("top", params.topN),
	)

	content, err := readUpload(w, r)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.Is(err, ErrNotCSV):
			handler.reject(w, "not_csv", ErrNotCSV.Error(), http.StatusUnsupportedMediaType)
		case errors.As(err, &maxBytesErr):
			handler.reject(w, "too_large", "upload too large", http.StatusRequestEntityTooLarge)
		default:
			log.Debugf("workouts report, read upload: %s", err)
			handler.reject(w, "bad_upload", "failed to read upload", http.StatusBadRequest)
		}
		return
	}

	cacheKey := params.cacheKey(content)
	if cached, cacheErr := handler.cache.Get(ctx, cacheKey); cacheErr == nil {
		span.SetAttributes(attribute.Bool("report.from-cache", true))
		handler.metricsManager.CounterReportCache.WithLabelValues("hit").Inc()
		pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, cached)
		return
	} else if !errors.Is(cacheErr, cache.ErrMiss) {
		log.Errorf("workouts report, get cached report: %s", cacheErr)
	}
	handler.metricsManager.CounterReportCache.WithLabelValues("miss").Inc()

	begin := time.Now()
	records, err := ReadCSV(strings.NewReader(pkg.BytesToString(content)))
	if err != nil {
		handler.reject(w, "bad_csv", err.Error(), http.StatusBadRequest)
		return
	}
	handler.metricsManager.HistUploadedRecords.Observe(float64(len(records)))

	analyzer := NewAnalyzer(AnalyzerParams{
		Window: params.window,
		Viewer: params.viewer,
		TopN:   params.topN,
	})
	report, err := analyzer.Analyze(ctx, records)
	if err != nil {
		log.Errorf("workouts report, analyze %d records: %s", len(records), err)
		handler.metricsManager.CounterReports.WithLabelValues("error").Inc()
		http.Error(w, "failed to build report", http.StatusInternalServerError)
		return
	}
	handler.metricsManager.HistReportDuration.Observe(time.Since(begin).Seconds())
	handler.metricsManager.CounterRecords.WithLabelValues("parsed").Add(float64(report.UploadedRecords))
	handler.metricsManager.CounterRecords.WithLabelValues("kept").Add(float64(report.TotalWorkouts))
	if report.NotEnoughData {
		handler.metricsManager.CounterReports.WithLabelValues("not_enough_data").Inc()
	} else {
		handler.metricsManager.CounterReports.WithLabelValues("ok").Inc()
	}

	reportJson, err := json.Marshal(report)
	if err != nil {
		log.Errorf("workouts report, marshal report: %s", err)
		http.Error(w, "failed to build report", http.StatusInternalServerError)
		return
	}

	if err := handler.cache.Set(ctx, cacheKey, reportJson); err != nil {
		log.Errorf("workouts report, cache report %s: %s", report.ID, err)
	}

	log.Debugf("workouts report %s: %d uploaded, %d in %s", report.ID, report.UploadedRecords, report.TotalWorkouts, params.window)
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, reportJson)
}

// HandleZones lists the zone abbreviations known to the time of day normalizer.
func (handler *Handler) HandleZones(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSON(w, ZoneOffsetEntries(), http.StatusOK)
}

func (handler *Handler) HandleWindow(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSON(w, WindowResponse{
		Window: handler.defaultWindow,
		Label:  handler.defaultWindow.Label(),
	}, http.StatusOK)
}

func (handler *Handler) reject(w http.ResponseWriter, reason, message string, status int) {
	handler.metricsManager.CounterRejectedUploads.WithLabelValues(reason).Inc()
	http.Error(w, message, status)
}

func (handler *Handler) reportParams(ctx context.Context, r *http.Request) (reportParams, error) {
	query := r.URL.Query()
	params := reportParams{
		window: handler.defaultWindow,
		topN:   handler.topN,
	}

	from, to := query.Get("from"), query.Get("to")
	switch {
	case from != "" || to != "":
		window, err := ParseWindow(from, to)
		if err != nil {
			return reportParams{}, err
		}
		params.window = window
	case query.Get("year") != "":
		year, err := strconv.Atoi(query.Get("year"))
		if err != nil || year < 1 || year > 9998 {
			return reportParams{}, fmt.Errorf("invalid year: %s", query.Get("year"))
		}
		params.window = YearWindow(year)
	}

	if top := query.Get("top"); top != "" {
		n, err := strconv.Atoi(top)
		if err != nil || n < 1 || n > MaxTopN {
			return reportParams{}, fmt.Errorf("invalid top, expected 1 to %d: %s", MaxTopN, top)
		}
		params.topN = n
	}

	viewer, err := handler.viewerLocation(ctx, r)
	if err != nil {
		return reportParams{}, err
	}
	params.viewer = viewer

	return params, nil
}

// viewerLocation resolves the zone hours are reported in: tz query param, then the
// X-Timezone header, then the client IP geo lookup, then the configured default.
func (handler *Handler) viewerLocation(ctx context.Context, r *http.Request) (*time.Location, error) {
	tz := r.URL.Query().Get("tz")
	if tz == "" {
		tz = r.Header.Get(timezoneHeader)
	}
	if tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid time zone: %s", tz)
		}
		return loc, nil
	}

	if handler.geoIP != nil {
		loc, err := handler.geoIP.RequestLocation(ctx, r)
		if err == nil {
			return loc, nil
		}
		log.Tracef("workouts report, geo ip location: %s", err)
	}

	return handler.defaultLocation, nil
}

// readUpload returns the CSV document from either a multipart "file" part or the raw body.
func readUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)

	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		if !IsCSVMediaType(contentType) {
			return nil, ErrNotCSV
		}
		return io.ReadAll(r.Body)
	}

	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		return nil, fmt.Errorf("parse multipart form: %w", err)
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			log.Warnf("remove multipart form files: %s", err)
		}
	}()

	file, fileHeader, err := r.FormFile(uploadFormFile)
	if err != nil {
		return nil, fmt.Errorf("form file: %w", err)
	}
	defer file.Close()

	if !IsCSVMediaType(fileHeader.Header.Get("Content-Type")) {
		return nil, ErrNotCSV
	}
	return io.ReadAll(file)
}
