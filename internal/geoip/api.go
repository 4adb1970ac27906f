package geoip

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/2beens/workoutwrapped/internal/telemetry/tracing"
	"github.com/2beens/workoutwrapped/pkg"

	"github.com/go-redis/redis/v8"
	"github.com/ipinfo/go/v2/ipinfo"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultIpInfoBaseURL = "https://ipinfo.io/"
	timezoneCacheTTL     = 24 * time.Hour
)

var (
	ErrLocalAddress = errors.New("local address has no geo info")
	ErrNoTimezone   = errors.New("no timezone for ip")
)

// Api resolves the IANA timezone of a client IP through ipinfo.io.
// Results are cached in redis when a client is given. Concurrent lookups of the
// same IP share one ipinfo request, lookups of different IPs run in parallel.
type Api struct {
	lookups     singleflight.Group
	ipinfo      *ipinfo.Client
	redisClient *redis.Client
}

func NewApi(
	baseURL, apiKey string,
	httpClient *http.Client,
	redisClient *redis.Client,
) (*Api, error) {
	client := ipinfo.NewClient(httpClient, nil, apiKey)
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("parse ipinfo base url: %w", err)
		}
		client.BaseURL = u
	}
	return &Api{
		ipinfo:      client,
		redisClient: redisClient,
	}, nil
}

// RequestLocation resolves the viewer location for the request's client IP.
func (gi *Api) RequestLocation(ctx context.Context, r *http.Request) (*time.Location, error) {
	userIp, err := pkg.ReadUserIP(r)
	if err != nil {
		return nil, fmt.Errorf("get user ip: %w", err)
	}
	if userIp == "localhost" {
		return nil, ErrLocalAddress
	}

	tz, err := gi.GetIPTimezone(ctx, userIp)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load location %s: %w", tz, err)
	}
	return loc, nil
}

func (gi *Api) GetIPTimezone(ctx context.Context, ip string) (tz string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "geoIp.getIPTimezone")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.ip", ip))

	parsedIp := net.ParseIP(ip)
	if parsedIp == nil {
		return "", fmt.Errorf("invalid ip: %s", ip)
	}
	if parsedIp.IsLoopback() || parsedIp.IsPrivate() {
		return "", ErrLocalAddress
	}

	cacheKey := fmt.Sprintf("ip-tz::%s", ip)
	if gi.redisClient != nil {
		cached, err := gi.redisClient.Get(ctx, cacheKey).Result()
		switch {
		case err == nil && cached != "":
			span.SetAttributes(attribute.Bool("user.ip.from-cache", true))
			log.Tracef("found timezone for [%s] in redis cache: %s", ip, cached)
			return cached, nil
		case err != nil && !errors.Is(err, redis.Nil):
			log.Errorf("failed to get ip timezone from redis for [%s]: %s", ip, err)
		}
	}
	span.SetAttributes(attribute.Bool("user.ip.from-cache", false))

	res, err, shared := gi.lookups.Do(cacheKey, func() (any, error) {
		return gi.lookupTimezone(ctx, parsedIp, cacheKey)
	})
	span.SetAttributes(attribute.Bool("user.ip.shared-lookup", shared))
	if err != nil {
		return "", err
	}
	return res.(string), nil
}

func (gi *Api) lookupTimezone(ctx context.Context, ip net.IP, cacheKey string) (string, error) {
	log.Debugf("will ask ipinfo for timezone of: %s", ip)
	core, err := gi.ipinfo.GetIPInfo(ip)
	if err != nil {
		return "", fmt.Errorf("get ip info: %w", err)
	}
	if core.Timezone == "" {
		return "", ErrNoTimezone
	}

	if gi.redisClient != nil {
		if err := gi.redisClient.Set(ctx, cacheKey, core.Timezone, timezoneCacheTTL).Err(); err != nil {
			log.Errorf("failed to cache ip timezone in redis for %s: %s", ip, err)
		}
	}

	return core.Timezone, nil
}
