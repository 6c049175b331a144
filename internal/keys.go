package internal

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoSecretKeys reports a missing cookie-secret configuration.
var ErrNoSecretKeys = errors.New("no secret keys configured")

// Keys returns the cookie secret keys, split from the comma-separated
// configured value with surrounding whitespace trimmed. The split happens
// once; every later call returns the cached slice.
//
// In local and unittest environments a missing value produces an error that
// tells the developer exactly what to add and where, because this is the
// moment they are looking at a terminal. Everywhere else the error is terse:
// secrets guidance does not belong in production logs.
func (a *Application) Keys() ([]string, error) {
	a.keysOnce.Do(func() {
		raw := a.config.Keys
		var keys []string
		for k := range strings.SplitSeq(raw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
		if len(keys) == 0 {
			if a.config.IsLocal() {
				a.keysErr = fmt.Errorf(
					"%w: set keys in %s, e.g.\n\nkeys: %q\n",
					ErrNoSecretKeys, a.configHint(), a.config.Name+"_1692349200123_4567")
			} else {
				a.keysErr = ErrNoSecretKeys
			}
			return
		}
		a.keys = keys
	})
	return a.keys, a.keysErr
}

// configHint names the file the developer should edit, falling back to a
// generic label when the config was built in memory.
func (a *Application) configHint() string {
	if p := a.config.Path(); p != "" {
		return p
	}
	return "the application configuration"
}
