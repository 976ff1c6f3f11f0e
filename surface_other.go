//go:build !windows && !linux && !freebsd && !netbsd && !openbsd

package sysmedia

import (
	"github.com/quailaudio/sysmedia/controls"
	"github.com/quailaudio/sysmedia/controls/smtc"
)

// No native surface on this platform; the stub fails Init and the
// integration stays inert.
func newPlatformSurface(cfg *Config, cacheDir string) controls.Surface {
	return smtc.New(cacheDir)
}
