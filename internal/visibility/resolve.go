package visibility

// Annotation is the compiler-facing decoration text substituted in front of
// a declaration. AnnotationEmpty means the declaration is left undecorated.
type Annotation string

const (
	// AnnotationEmpty applies no decoration. It is the correct result, not
	// a failure, wherever the platform has no equivalent concept or the
	// suppress-export override is active.
	AnnotationEmpty Annotation = ""

	// DLLExport marks a symbol as part of a Windows shared library's
	// public interface.
	DLLExport Annotation = "__declspec(dllexport)"

	// DLLImport marks a symbol as resolved from an external Windows
	// shared library at link/load time.
	DLLImport Annotation = "__declspec(dllimport)"

	// VisibilityDefault gives a symbol default (public) visibility under
	// GCC/Clang -fvisibility=hidden builds.
	VisibilityDefault Annotation = `__attribute__((__visibility__("default")))`

	// VisibilityHidden keeps a symbol with external linkage out of the
	// shared object's exported symbol table.
	VisibilityHidden Annotation = `__attribute__((__visibility__("hidden")))`
)

// Empty reports whether the annotation applies no decoration.
func (a Annotation) Empty() bool { return a == AnnotationEmpty }

// Resolution is the full output of the decision table for one fact tuple.
// Export and Import are the raw per-role tokens, exposed for advanced use;
// PublicAPI is the one of the two selected by the role, and is what a
// library header applies to every boundary-crossing symbol. Hidden is an
// independent second token for symbols that need external linkage without
// entering the public ABI surface.
type Resolution struct {
	Export    Annotation `json:"export"`
	Import    Annotation `json:"import"`
	Hidden    Annotation `json:"hidden"`
	PublicAPI Annotation `json:"public_api"`
}

// Resolve runs the two-stage decision table over a validated fact tuple.
//
// Stage A fixes the hidden token from the platform alone: only toolchains
// with visibility attribute support have a hidden concept; Windows symbols
// are already private by default and posix-plain has no mechanism at all.
//
// Stage B fixes the export/import pair, then selects one as the public-API
// token by role. SuppressExport empties the export token only — the import
// token survives the override. Whether consumers genuinely always need
// import decoration under the override is an open question in the macro
// convention this table models, so the asymmetry is kept rather than
// unified.
func Resolve(f Facts) (Resolution, error) {
	if err := f.Validate(); err != nil {
		return Resolution{}, err
	}

	var res Resolution

	// Stage A: hidden token, platform only.
	if f.Platform == PlatformPOSIXVisibility {
		res.Hidden = VisibilityHidden
	}

	// Stage B: export/import pair.
	switch f.Platform {
	case PlatformWindows:
		if f.BuildMode == BuildShared {
			res.Export = DLLExport
			res.Import = DLLImport
		}
	case PlatformPOSIXVisibility:
		// POSIX toolchains decorate uniformly regardless of build mode,
		// and have no distinct import decoration: an imported symbol
		// needs no marker on the consuming side.
		res.Export = VisibilityDefault
		res.Import = VisibilityDefault
	case PlatformPOSIXPlain:
		// Capability gap: nothing to emit on either side.
	}

	if f.SuppressExport {
		res.Export = AnnotationEmpty
	}

	if f.Role == RoleBuildingLibrary {
		res.PublicAPI = res.Export
	} else {
		res.PublicAPI = res.Import
	}

	return res, nil
}
