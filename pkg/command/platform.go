package command

import (
	"fmt"
	"runtime"
	"strings"
)

// Platform holds everything about the host that changes command text.
// It is passed in explicitly so both variants can be rendered side by side.
type Platform struct {
	Name          string   // "unix" or "windows"
	ListSeparator string   // classpath entry separator
	PathSeparator string   // directory separator used in wildcard patterns
	Shell         []string // interpreter prefix; the command is appended as the last argument
	ScriptExt     string   // build script extension
}

// Unix is the POSIX shell platform.
func Unix() Platform {
	return Platform{
		Name:          "unix",
		ListSeparator: ":",
		PathSeparator: "/",
		Shell:         []string{"/bin/sh", "-c"},
		ScriptExt:     ".sh",
	}
}

// Windows is the PowerShell platform.
func Windows() Platform {
	return Platform{
		Name:          "windows",
		ListSeparator: ";",
		PathSeparator: `\`,
		Shell:         []string{"pwsh", "-NoProfile", "-Command"},
		ScriptExt:     ".ps1",
	}
}

// ForOS returns the platform for a GOOS value.
func ForOS(goos string) Platform {
	if goos == "windows" {
		return Windows()
	}
	return Unix()
}

// ParsePlatform resolves a configured platform name. Blank detects the host.
func ParsePlatform(name string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return ForOS(runtime.GOOS), nil
	case "unix", "linux", "darwin", "posix":
		return Unix(), nil
	case "windows", "win":
		return Windows(), nil
	}
	return Platform{}, fmt.Errorf("unknown platform %q (want unix or windows)", name)
}

// IsWindows reports whether commands target PowerShell.
func (p Platform) IsWindows() bool {
	return p.Name == "windows"
}
