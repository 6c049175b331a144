package internal

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/WMTcore/egg/pkg/config"
)

// dumpConfig persists the effective configuration and the route registry
// into the run directory, so an operator can inspect what this process is
// actually running with rather than what the files on disk say. Dump
// failures are logged and swallowed; diagnostics never block startup.
// Secret keys are excluded from the dump by construction.
func (a *Application) dumpConfig() {
	dir := a.config.RunDir
	if dir == "" {
		dir = "run"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		a.logger.Warn("create run directory",
			slog.String("dir", dir), slog.Any("error", err))
		return
	}
	a.dumpJSON(filepath.Join(dir, "config.json"), a.config)
	a.dumpJSON(filepath.Join(dir, "router.json"), a.routes)
}

func (a *Application) dumpJSON(path string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		a.logger.Warn("marshal diagnostics dump",
			slog.String("path", path), slog.Any("error", err))
		return
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		a.logger.Warn("write diagnostics dump",
			slog.String("path", path), slog.Any("error", err))
	}
}

// warnConfusedConfig flags deprecated configuration keys. Every deprecated
// key present in the raw configuration produces a warning naming both it
// and its replacement, whether or not the replacement is also set.
func (a *Application) warnConfusedConfig() {
	confused := make(map[string]string, len(config.DefaultConfusedConfigurations))
	for wrong, right := range config.DefaultConfusedConfigurations {
		confused[wrong] = right
	}
	for wrong, right := range a.config.ConfusedConfigurations {
		confused[wrong] = right
	}
	for wrong, right := range confused {
		if a.config.IsSet(wrong) {
			a.logger.Warn("deprecated config key",
				slog.String("found", wrong),
				slog.String("use", right))
		}
	}
}
