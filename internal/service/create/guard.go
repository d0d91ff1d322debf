package create

import (
	"errors"
	"fmt"
	"os"

	"github.com/mitchellh/go-ps"
)

// errAppRunning is returned when a bundled binary is currently executing.
var errAppRunning = errors.New("app is currently running; stop it before rebuilding")

// ensureNotRunning refuses to overwrite the bundle of an app whose
// installed binary is currently executing. A build tool must not yank a
// launcher out from under a live process.
func ensureNotRunning(bundleDir string) error {
	entries, err := os.ReadDir(bundleDir)
	if err != nil {
		// Nothing installed yet, nothing to guard.
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("read bundle directory %s: %w", bundleDir, err)
	}

	installed := make(map[string]struct{}, len(entries))

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		installed[entry.Name()] = struct{}{}
	}

	if len(installed) == 0 {
		return nil
	}

	processList, err := ps.Processes()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if _, found := installed[process.Executable()]; found {
			return fmt.Errorf("%s: %w", process.Executable(), errAppRunning)
		}
	}

	return nil
}
