package platform

import (
	"context"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
)

// Info describes the host the bundler is running on.
type Info struct {
	// OS is the operating system name ("linux", "darwin", "windows").
	OS string
	// Arch is the processor architecture as reported by the Go runtime.
	Arch string
	// Name is the human-facing platform name (distribution or product name)
	// reported by the host, empty when detection failed.
	Name string
}

// Detect returns host platform information.
// OS and architecture always come from the Go runtime; the human-facing
// platform name is read from the host and falls back to the OS name when
// detection fails, so callers never see an empty identifier.
func Detect(ctx context.Context) (*Info, error) {
	info := &Info{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
	}

	name, _, _, err := host.PlatformInformationWithContext(ctx)
	if err != nil {
		// Cancellation is a hard failure; detection trouble is not.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		return info, nil
	}

	info.Name = strings.TrimSpace(name)

	return info, nil
}

// String returns the identifier shown in user-facing messages.
func (i *Info) String() string {
	if i.Name != "" {
		return i.Name
	}

	return i.OS
}

// Tag returns the default build-tree platform segment for apps
// that do not set one explicitly.
func (i *Info) Tag() string {
	return i.OS
}
