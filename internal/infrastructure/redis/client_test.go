package redis_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/campuscore/campus-core/internal/infrastructure/config"
	"github.com/campuscore/campus-core/internal/infrastructure/redis"
)

// testConfig returns a configuration for a local dev Redis.
func testConfig() config.RedisConfig {
	return config.RedisConfig{
		Enabled:  true,
		Addr:     "127.0.0.1:6379",
		Password: "",
		DB:       0,
	}
}

// skipIfNoRedis skips the test if Redis is not running.
func skipIfNoRedis(t *testing.T) {
	t.Helper()
	if os.Getenv("RUN_INTEGRATION") == "" {
		// Quick check: try to connect
		client, err := redis.Connect(testConfig())
		if err != nil {
			t.Skip("Redis not available, skipping integration test")
		}
		client.Close() //nolint:errcheck // Test cleanup
	}
}

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false

	_, err := redis.Connect(cfg)
	if err == nil {
		t.Fatal("Connect() should return error when disabled")
	}
	if !errors.Is(err, redis.ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	cfg := testConfig()
	cfg.Addr = "127.0.0.1:1" // nothing listens here

	_, err := redis.Connect(cfg)
	if err == nil {
		t.Fatal("Connect() should return error for unreachable server")
	}
	if !errors.Is(err, redis.ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestConnect(t *testing.T) {
	skipIfNoRedis(t)

	client, err := redis.Connect(testConfig())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close() //nolint:errcheck // Test cleanup

	if client.Raw() == nil {
		t.Error("Raw() = nil after Connect()")
	}
}

func TestHealthCheck(t *testing.T) {
	skipIfNoRedis(t)

	client, err := redis.Connect(testConfig())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close() //nolint:errcheck // Test cleanup

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestClose(t *testing.T) {
	skipIfNoRedis(t)

	client, err := redis.Connect(testConfig())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	ctx := context.Background()
	if err := client.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() after Close() should fail")
	}
}
