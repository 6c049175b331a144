package internal_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WMTcore/egg/internal"
	"github.com/WMTcore/egg/pkg/config"
)

type dumpHandler struct{}

func (h *dumpHandler) Routes(r internal.Router) {
	r.GET("/", h.home)
	r.GET("/users/{id}", h.showUser, logAccess)
}

func (h *dumpHandler) home(c *internal.Context) error {
	return c.NoContent(http.StatusOK)
}

func (h *dumpHandler) showUser(c *internal.Context) error {
	return c.String(http.StatusOK, c.Param("id"))
}

func logAccess(next internal.HandlerFunc) internal.HandlerFunc {
	return func(c *internal.Context) error {
		return next(c)
	}
}

func TestStartupDumpsConfigAndRoutes(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Name = "checkout"
	cfg.Env = config.EnvUnittest
	cfg.Keys = "super-secret"
	cfg.RunDir = t.TempDir()

	_, err := internal.New(
		internal.WithConfig(cfg),
		internal.WithHandlers(&dumpHandler{}),
	)
	require.NoError(t, err)

	configDump, err := os.ReadFile(filepath.Join(cfg.RunDir, "config.json"))
	require.NoError(t, err)
	var dumped map[string]any
	require.NoError(t, json.Unmarshal(configDump, &dumped))
	require.Equal(t, "checkout", dumped["name"])
	// Secrets never land on disk.
	require.NotContains(t, string(configDump), "super-secret")

	routerDump, err := os.ReadFile(filepath.Join(cfg.RunDir, "router.json"))
	require.NoError(t, err)
	var routes []internal.RouteInfo
	require.NoError(t, json.Unmarshal(routerDump, &routes))
	require.Len(t, routes, 2)

	require.Equal(t, "home", routes[0].Name)
	require.Equal(t, []string{http.MethodGet}, routes[0].Methods)
	require.Equal(t, "/", routes[0].Path)
	require.Empty(t, routes[0].ParamNames)

	require.Equal(t, "showUser", routes[1].Name)
	require.Equal(t, "/users/{id}", routes[1].Path)
	require.Equal(t, []string{"id"}, routes[1].ParamNames)
	require.Equal(t, "^/users/([^/]+)$", routes[1].Regexp)
	require.Equal(t, []string{"logAccess", "showUser"}, routes[1].Stack)
}

func TestDumpFailureDoesNotAbortStartup(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// Occupy the rundir path with a file so MkdirAll fails.
	blocked := filepath.Join(dir, "run")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0o644))

	cfg := config.Default()
	cfg.Env = config.EnvUnittest
	cfg.RunDir = blocked

	app, err := internal.New(internal.WithConfig(cfg))
	require.NoError(t, err)
	require.NotNil(t, app)
}

func TestConfusedConfigWarnings(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	cfg := config.Default()
	cfg.Env = config.EnvUnittest
	cfg.RunDir = t.TempDir()
	cfg.Set("bodyParser", map[string]any{"limit": "1mb"})

	_, err := internal.New(internal.WithConfig(cfg), internal.WithLogger(log))
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "bodyParser")
	require.Contains(t, out, "bodyparser")
}

func TestConfusedConfigWarnsEvenWhenReplacementSet(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	cfg := config.Default()
	cfg.Env = config.EnvUnittest
	cfg.RunDir = t.TempDir()
	cfg.Set("bodyParser", true)
	cfg.Set("bodyparser", true)

	_, err := internal.New(internal.WithConfig(cfg), internal.WithLogger(log))
	require.NoError(t, err)

	// Setting the replacement does not silence the deprecation warning.
	out := buf.String()
	require.Contains(t, out, "deprecated config key")
	require.Contains(t, out, "bodyParser")
}

func TestConfusedConfigQuietWhenAbsent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	cfg := config.Default()
	cfg.Env = config.EnvUnittest
	cfg.RunDir = t.TempDir()

	_, err := internal.New(internal.WithConfig(cfg), internal.WithLogger(log))
	require.NoError(t, err)
	require.NotContains(t, buf.String(), "deprecated config key")
}

func TestCustomConfusedConfigurations(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	cfg := config.Default()
	cfg.Env = config.EnvUnittest
	cfg.RunDir = t.TempDir()
	cfg.ConfusedConfigurations = map[string]string{"ratelimit": "rateLimiter"}
	cfg.Set("ratelimit", 10)

	_, err := internal.New(internal.WithConfig(cfg), internal.WithLogger(log))
	require.NoError(t, err)
	require.Contains(t, buf.String(), "rateLimiter")
}
