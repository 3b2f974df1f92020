package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/config"
)

func baseConfig() *config.Config {
	return &config.Config{
		HTTPAddr:           ":8085",
		JWTSecret:          "test-secret",
		JWTIssuer:          "test-issuer",
		HomeTimezone:       "America/Toronto",
		HomeCurrency:       "CAD",
		HomeRegion:         "QC",
		PublishParallelism: 4,
		UpdatePlatforms:    []string{"facebook", "eventbrite"},
	}
}

func TestNewApp(t *testing.T) {
	t.Run("should_correctly_wire_dependencies", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()

		cfg := baseConfig()
		app, err := NewApp(cfg, db)
		require.NoError(t, err)
		defer app.Close()

		assert.Equal(t, cfg.HTTPAddr, app.Server.Addr)
		assert.NotNil(t, app.Server.Handler, "HTTP Handler should be initialized")
		assert.Nil(t, app.Publisher)
		assert.Nil(t, app.Cache)

		mock.ExpectPing()
		rr := httptest.NewRecorder()
		app.Server.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("should_wire_redis_when_configured", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mr := miniredis.RunT(t)
		cfg := baseConfig()
		cfg.RedisURL = "redis://" + mr.Addr()

		app, err := NewApp(cfg, db)
		require.NoError(t, err)
		defer app.Close()
		assert.NotNil(t, app.Cache)
		assert.Contains(t, healthChecks(app), "redis")
	})

	t.Run("should_reject_unknown_update_platform", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		cfg := baseConfig()
		cfg.UpdatePlatforms = []string{"myspace"}
		_, err = NewApp(cfg, db)
		assert.Error(t, err)
	})

	t.Run("should_fail_on_unreachable_redis", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		cfg := baseConfig()
		cfg.RedisURL = "redis://127.0.0.1:1"
		_, err = NewApp(cfg, db)
		assert.Error(t, err)
	})
}

func TestSysClock_Now(t *testing.T) {
	assert.Equal(t, "UTC", sysClock{}.Now().Location().String())
}
