package integration_testing

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/2beens/workoutwrapped/internal"
	"github.com/2beens/workoutwrapped/internal/cache"
	"github.com/2beens/workoutwrapped/internal/config"

	"github.com/go-redis/redis/v8"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

const (
	serverPort           = 9000
	serverHost           = "localhost"
	metricsPort          = "9001"
	uploadRateLimitInMin = 3
)

var serverEndpoint = fmt.Sprintf("http://%s", net.JoinHostPort(serverHost, strconv.Itoa(serverPort)))

func getTestConfig(redisPort string) *config.Config {
	return &config.Config{
		Environment:           "development",
		Host:                  serverHost,
		Port:                  serverPort,
		AllowedOrigins:        []string{"http://localhost:3000"},
		LogLevel:              "debug",
		LogToStdout:           true,
		PrometheusMetricsHost: serverHost,
		PrometheusMetricsPort: metricsPort,
		RedisHost:             "localhost",
		RedisPort:             redisPort,
		ReportCache:           cache.TypeRedis,
		ReportCacheTTL:        time.Minute,
		ReportCacheSizeMB:     1,
		ReportYear:            2023,
		DefaultTimeZone:       "UTC",
		TopN:                  5,
		UploadRateLimitPerMin: uploadRateLimitInMin,
	}
}

type Suite struct {
	dockerPool *dockertest.Pool
	server     *internal.Server
	redis      *redis.Client
	teardown   []func()
}

func newSuite(ctx context.Context, t *testing.T) *Suite {
	t.Helper()

	var err error
	suite := &Suite{
		teardown: make([]func(), 0),
	}
	t.Cleanup(suite.cleanup)

	// uses a sensible default on windows (tcp/http) and linux/osx (socket)
	suite.dockerPool, err = dockertest.NewPool("")
	if err != nil {
		t.Skipf("could not create new dockertest pool: %s", err)
	}

	// uses pool to try to connect to Docker
	if err = suite.dockerPool.Client.Ping(); err != nil {
		t.Skipf("could not ping dockertest pool: %s", err)
	}

	redisPort, err := suite.redisSetup(ctx)
	if err != nil {
		t.Fatalf("failed to setup redis: %s", err)
	}

	cfg := getTestConfig(redisPort)
	suite.server, err = internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:                  cfg,
			IpInfoAPIKey:            "test",
			VersionInfo:             "test-version-info",
			RedisPassword:           "",
			HoneycombTracingEnabled: false,
		},
	)
	if err != nil {
		t.Fatalf("new server: %s", err)
	}

	suite.server.Serve(cfg.Host, cfg.Port)
	suite.teardown = append(suite.teardown, func() {
		if err := suite.server.GracefulShutdown(); err != nil {
			t.Logf("graceful shutdown: %s", err)
		}
	})

	if err := waitForServer(serverEndpoint); err != nil {
		t.Fatalf("server not up: %s", err)
	}

	return suite
}

func (s *Suite) redisSetup(ctx context.Context) (string, error) {
	redisResource, err := s.dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "7.2",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{
			Name: "no",
		}
	})
	if err != nil {
		return "", fmt.Errorf("run redis: %w", err)
	}
	s.teardown = append(s.teardown, func() {
		_ = s.dockerPool.Purge(redisResource)
	})

	redisPort := redisResource.GetPort("6379/tcp")
	s.redis = redis.NewClient(&redis.Options{
		Addr: net.JoinHostPort("localhost", redisPort),
	})
	s.teardown = append(s.teardown, func() {
		_ = s.redis.Close()
	})

	s.dockerPool.MaxWait = 30 * time.Second
	if err := s.dockerPool.Retry(func() error {
		return s.redis.Ping(ctx).Err()
	}); err != nil {
		return "", fmt.Errorf("ping redis: %w", err)
	}

	return redisPort, nil
}

// cleanup runs the teardown funcs in reverse order.
func (s *Suite) cleanup() {
	for i := len(s.teardown) - 1; i >= 0; i-- {
		s.teardown[i]()
	}
}

func waitForServer(endpoint string) error {
	client := &http.Client{Timeout: time.Second}
	var lastErr error
	for i := 0; i < 50; i++ {
		resp, err := client.Get(endpoint + "/")
		if err == nil {
			_ = resp.Body.Close()
			return nil
		}
		lastErr = err
		time.Sleep(100 * time.Millisecond)
	}
	return lastErr
}
