//go:build linux || freebsd || netbsd || openbsd

package sysmedia

import (
	"fmt"
	"strings"

	"github.com/quailaudio/sysmedia/controls"
	"github.com/quailaudio/sysmedia/controls/mpris"
)

func newPlatformSurface(cfg *Config, cacheDir string) controls.Surface {
	name := cfg.Controls.PlayerName
	// D-Bus name elements may not contain dashes or start with a digit
	instance := strings.ReplaceAll(cfg.Controls.InstanceID.String(), "-", "")[:8]
	busName := fmt.Sprintf("%s.instance_%s", name, instance)
	return mpris.New(name, busName, cacheDir)
}
