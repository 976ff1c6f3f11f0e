//go:build windows

package sysmedia

import (
	"github.com/quailaudio/sysmedia/controls"
	"github.com/quailaudio/sysmedia/controls/smtc"
)

func newPlatformSurface(cfg *Config, cacheDir string) controls.Surface {
	return smtc.New(cacheDir)
}
