// Package visibility decides which annotation a public symbol of a C/C++
// shared library should carry for a given set of build facts. The decision
// table is pure and total: every valid (Platform, BuildMode, Role, override)
// tuple resolves to exactly one public-API token and one hidden token, and
// invalid facts are rejected loudly instead of degrading to an undecorated
// binary.
package visibility

import (
	"fmt"
	"runtime"
)

// Platform identifies the target toolchain family. The enumeration is
// closed: Resolve returns an error for any value outside the three
// constants rather than silently emitting no decoration.
type Platform int

const (
	// PlatformWindows covers MSVC-style toolchains where shared-library
	// symbols are private by default and exported via __declspec.
	PlatformWindows Platform = iota

	// PlatformPOSIXVisibility covers POSIX toolchains that understand
	// __attribute__((visibility)), i.e. GCC and Clang.
	PlatformPOSIXVisibility

	// PlatformPOSIXPlain covers POSIX toolchains without visibility
	// attribute support. No decoration mechanism exists there; both the
	// export and hidden tokens resolve to empty. This is a documented
	// capability gap, not an error.
	PlatformPOSIXPlain
)

// String returns the config/CLI spelling of the platform.
func (p Platform) String() string {
	switch p {
	case PlatformWindows:
		return "windows"
	case PlatformPOSIXVisibility:
		return "posix-visibility"
	case PlatformPOSIXPlain:
		return "posix-plain"
	default:
		return fmt.Sprintf("platform(%d)", int(p))
	}
}

// Valid reports whether p is one of the three enumerated platforms.
func (p Platform) Valid() bool {
	return p == PlatformWindows || p == PlatformPOSIXVisibility || p == PlatformPOSIXPlain
}

// ParsePlatform converts a config/CLI string into a Platform.
func ParsePlatform(s string) (Platform, error) {
	switch s {
	case "windows":
		return PlatformWindows, nil
	case "posix-visibility":
		return PlatformPOSIXVisibility, nil
	case "posix-plain":
		return PlatformPOSIXPlain, nil
	default:
		return 0, fmt.Errorf("unknown platform %q (want windows, posix-visibility or posix-plain)", s)
	}
}

// HostPlatform maps the running OS to a Platform, for CLI defaults.
// Non-Windows hosts default to posix-visibility since GCC and Clang are
// the overwhelmingly common POSIX toolchains.
func HostPlatform() Platform {
	if runtime.GOOS == "windows" {
		return PlatformWindows
	}
	return PlatformPOSIXVisibility
}

// BuildMode says whether the build produces a shared library. Export and
// import decoration on Windows is only meaningful for shared builds.
type BuildMode int

const (
	// BuildShared is a shared-library build.
	BuildShared BuildMode = iota

	// BuildStatic covers static and any other non-shared build.
	BuildStatic
)

func (m BuildMode) String() string {
	switch m {
	case BuildShared:
		return "shared"
	case BuildStatic:
		return "static"
	default:
		return fmt.Sprintf("buildmode(%d)", int(m))
	}
}

// Valid reports whether m is an enumerated build mode.
func (m BuildMode) Valid() bool {
	return m == BuildShared || m == BuildStatic
}

// ParseBuildMode converts a config/CLI string into a BuildMode.
func ParseBuildMode(s string) (BuildMode, error) {
	switch s {
	case "shared":
		return BuildShared, nil
	case "static":
		return BuildStatic, nil
	default:
		return 0, fmt.Errorf("unknown build mode %q (want shared or static)", s)
	}
}

// Role says whether the translation unit being compiled belongs to the
// library's own implementation or to a consumer linking against it.
type Role int

const (
	// RoleBuildingLibrary marks translation units of the library itself;
	// public symbols receive the export token.
	RoleBuildingLibrary Role = iota

	// RoleConsumingLibrary marks consumer translation units; public
	// symbols receive the import token.
	RoleConsumingLibrary
)

func (r Role) String() string {
	switch r {
	case RoleBuildingLibrary:
		return "building"
	case RoleConsumingLibrary:
		return "consuming"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// Valid reports whether r is an enumerated role.
func (r Role) Valid() bool {
	return r == RoleBuildingLibrary || r == RoleConsumingLibrary
}

// ParseRole converts a config/CLI string into a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "building":
		return RoleBuildingLibrary, nil
	case "consuming":
		return RoleConsumingLibrary, nil
	default:
		return 0, fmt.Errorf("unknown role %q (want building or consuming)", s)
	}
}

// Facts is the full set of build-time inputs the resolver consumes. It is
// an explicit record passed to Resolve rather than ambient global state, so
// the decision table stays pure and testable outside a real toolchain.
type Facts struct {
	Platform  Platform
	BuildMode BuildMode
	Role      Role

	// SuppressExport is the consumer escape hatch that disables export
	// decoration entirely, e.g. when statically linking a library whose
	// headers would otherwise decorate. It suppresses only the export
	// token, not the import token; see Resolve.
	SuppressExport bool
}

// Validate checks every enum field against its closed enumeration.
func (f Facts) Validate() error {
	if !f.Platform.Valid() {
		return fmt.Errorf("invalid platform %s", f.Platform)
	}
	if !f.BuildMode.Valid() {
		return fmt.Errorf("invalid build mode %s", f.BuildMode)
	}
	if !f.Role.Valid() {
		return fmt.Errorf("invalid role %s", f.Role)
	}
	return nil
}

// String renders the tuple for logs and error messages.
func (f Facts) String() string {
	return fmt.Sprintf("platform=%s mode=%s role=%s suppress_export=%v",
		f.Platform, f.BuildMode, f.Role, f.SuppressExport)
}
