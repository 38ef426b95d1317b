// Package version reports the monobind build version.
package version

import (
	"fmt"
	"runtime/debug"
	"strconv"
	"strings"
)

// Version is set via ldflags at build time:
// -ldflags "-X github.com/Alia5/monobind/internal/version.Version=x.y.z"
var Version = ""

const devVersion = "0.0.1-dev"

// GetVersion returns the ldflags version without its "v" prefix, or the module
// version from the build info, or "0.0.1-dev".
func GetVersion() (string, error) {
	v := Version
	if v == "" {
		if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			v = bi.Main.Version
		}
	}
	if v == "" {
		return devVersion, nil
	}

	v = strings.TrimPrefix(v, "v")
	base := strings.SplitN(v, "-", 2)[0]
	if !strings.Contains(base, ".") {
		return "", fmt.Errorf("invalid version format: %s (expected x.y.z)", v)
	}
	return v, nil
}

// String is GetVersion with errors folded into the dev version.
func String() string {
	v, err := GetVersion()
	if err != nil {
		return devVersion
	}
	return v
}

// Revision returns the VCS revision recorded by the go tool, if any.
func Revision() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return ""
}

// ParseVersion splits "1.2.3" or "1.2.3-dirty" into its numeric parts.
func ParseVersion(version string) (major, minor, patch int) {
	version = strings.SplitN(version, "-", 2)[0]
	nums := strings.Split(version, ".")
	if len(nums) >= 1 {
		major, _ = strconv.Atoi(nums[0])
	}
	if len(nums) >= 2 {
		minor, _ = strconv.Atoi(nums[1])
	}
	if len(nums) >= 3 {
		patch, _ = strconv.Atoi(nums[2])
	}
	return
}
