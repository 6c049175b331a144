package internal_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WMTcore/egg/internal"
	"github.com/WMTcore/egg/pkg/config"
)

func TestNewLoaderErrorPropagatesUnmodified(t *testing.T) {
	t.Parallel()

	boom := errors.New("schema migration pending")
	app, err := internal.New(
		internal.WithConfig(config.Default()),
		internal.WithLoader(internal.LoaderFunc(func(*internal.Application) error {
			return boom
		})),
	)
	require.Nil(t, app)
	require.Same(t, boom, err)
}

func TestNewLoadersRunInOrder(t *testing.T) {
	t.Parallel()

	var order []string
	cfg := config.Default()
	cfg.RunDir = t.TempDir()
	_, err := internal.New(
		internal.WithConfig(cfg),
		internal.WithLoader(
			internal.LoaderFunc(func(*internal.Application) error {
				order = append(order, "first")
				return nil
			}),
			internal.LoaderFunc(func(*internal.Application) error {
				order = append(order, "second")
				return nil
			}),
		),
	)
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second"}, order)
}

func TestNewFailedLoaderSkipsLaterLoaders(t *testing.T) {
	t.Parallel()

	var ran bool
	_, err := internal.New(
		internal.WithConfig(config.Default()),
		internal.WithLoader(
			internal.LoaderFunc(func(*internal.Application) error {
				return errors.New("nope")
			}),
			internal.LoaderFunc(func(*internal.Application) error {
				ran = true
				return nil
			}),
		),
	)
	require.Error(t, err)
	require.False(t, ran)
}

func TestWithConfigFileMissing(t *testing.T) {
	t.Parallel()

	app, err := internal.New(internal.WithConfigFile("testdata/does-not-exist.yaml"))
	require.Nil(t, app)
	require.Error(t, err)
}

func TestLocalsSharedAcrossContexts(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, func(c *internal.Context) error {
		require.Equal(t, "shared", c.Locals()["flag"])
		return c.NoContent(http.StatusOK)
	}, internal.WithLoader(internal.LoaderFunc(func(a *internal.Application) error {
		a.Locals()["flag"] = "shared"
		return nil
	})))

	for range 2 {
		rec := httptest.NewRecorder()
		app.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/echo", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestErrorHandlerReceivesHandlerError(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, func(c *internal.Context) error {
		return internal.ErrNotFound("no such thing")
	})

	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/echo", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "no such thing")
}

func TestCustomErrorHandler(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, func(c *internal.Context) error {
		return errors.New("teapot territory")
	}, internal.WithErrorHandler(func(c *internal.Context, err error) error {
		return c.String(http.StatusTeapot, err.Error())
	}))

	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/echo", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)
	require.Equal(t, "teapot territory", rec.Body.String())
}

func TestErrorHandlerSkippedWhenResponseWritten(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, func(c *internal.Context) error {
		_ = c.String(http.StatusOK, "partial")
		return errors.New("too late")
	})

	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/echo", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "partial", rec.Body.String())
}

func TestCookiesManagerRequiresKeys(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Env = config.EnvProd
	cfg.RunDir = t.TempDir()
	app, err := internal.New(internal.WithConfig(cfg))
	require.NoError(t, err)

	_, err = app.Cookies()
	require.ErrorIs(t, err, internal.ErrNoSecretKeys)

	// The failure is cached, not retried.
	_, err2 := app.Cookies()
	require.Same(t, err, err2)
}
