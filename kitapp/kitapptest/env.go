package kitapptest

import (
	"strconv"
	"testing"
)

// Env provides a chainable builder for setting [kitapp.Config] env vars via t.Setenv.
// Create one with [SetBaseEnv].
type Env struct {
	t testing.TB
}

// SetBaseEnv sets the kitapp env vars to sensible test defaults. Port is required because
// each test must use a unique port to avoid collisions.
//
// Defaults:
//   - APP_SERVICE_NAME: "test"
//   - APP_STAGE: "dev"
//   - APP_GRACEFUL_TIMEOUT: "1s"
//   - APP_TRACE_EXPORTER: "none"
//   - APP_LOG_LEVEL: "debug"
//
// Use the returned [Env] to override individual values:
//
//	kitapptest.SetBaseEnv(t, 18085).Stage("prod").HealthCheckPath("/ping")
func SetBaseEnv(t testing.TB, port int) *Env {
	t.Helper()
	t.Setenv("APP_PORT", strconv.Itoa(port))
	t.Setenv("APP_SERVICE_NAME", "test")
	t.Setenv("APP_STAGE", "dev")
	t.Setenv("APP_GRACEFUL_TIMEOUT", "1s")
	t.Setenv("APP_TRACE_EXPORTER", "none")
	t.Setenv("APP_LOG_LEVEL", "debug")

	return &Env{t: t}
}

// Stage overrides APP_STAGE.
func (e *Env) Stage(stage string) *Env {
	e.t.Helper()
	e.t.Setenv("APP_STAGE", stage)

	return e
}

// PrefixURL overrides APP_PREFIX_URL.
func (e *Env) PrefixURL(prefix string) *Env {
	e.t.Helper()
	e.t.Setenv("APP_PREFIX_URL", prefix)

	return e
}

// HealthCheckPath overrides APP_HEALTH_CHECK_PATH.
func (e *Env) HealthCheckPath(path string) *Env {
	e.t.Helper()
	e.t.Setenv("APP_HEALTH_CHECK_PATH", path)

	return e
}

// GracefulTimeout overrides APP_GRACEFUL_TIMEOUT.
func (e *Env) GracefulTimeout(d string) *Env {
	e.t.Helper()
	e.t.Setenv("APP_GRACEFUL_TIMEOUT", d)

	return e
}

// ConfigFile overrides APP_CONFIG_FILE.
func (e *Env) ConfigFile(path string) *Env {
	e.t.Helper()
	e.t.Setenv("APP_CONFIG_FILE", path)

	return e
}
