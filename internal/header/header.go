// Package header renders C/C++ export macro headers from the visibility
// decision table. Two shapes are supported: a portable preprocessor header
// whose branches cover every platform (the form a library ships in its
// public include directory), and a flattened header resolved for one
// concrete fact tuple (for build systems that pass facts explicitly).
//
// Every decoration token in the rendered text comes from
// visibility.Resolve, so the generated headers cannot drift from the
// decision table.
package header

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"symvis/internal/visibility"
)

// Options controls the macro names and layout of a rendered header.
type Options struct {
	// Prefix is the macro namespace, e.g. "MYLIB" produces MYLIB_API,
	// MYLIB_EXPORT, MYLIB_IMPORT and MYLIB_HIDDEN. Required; must be a
	// valid uppercase C identifier.
	Prefix string

	// Guard is the include-guard macro. Defaults to <Prefix>_EXPORT_H.
	Guard string

	// BuildSharedDefine gates the Windows dllexport/dllimport pair.
	// Defaults to <Prefix>_BUILD_SHARED_LIBS.
	BuildSharedDefine string

	// BuildMainDefine distinguishes the library's own translation units
	// from consumers. Defaults to <Prefix>_BUILD_MAIN_LIB.
	BuildMainDefine string

	// SuppressDefine is the consumer escape hatch that empties the export
	// macro. Defaults to <Prefix>_NO_EXPORT.
	SuppressDefine string

	// MacrosInclude, when set, is an extra header included near the top
	// (typically the build system's generated option macros). Consumers
	// can replace it by defining CustomMacrosGuard before inclusion.
	MacrosInclude string

	// CustomMacrosGuard suppresses MacrosInclude when defined. Defaults
	// to <Prefix>_USING_CUSTOM_GENERATED_MACROS. Only rendered when
	// MacrosInclude is set.
	CustomMacrosGuard string
}

// DefaultOptions returns Options for the given macro prefix with every
// derived name filled in.
func DefaultOptions(prefix string) Options {
	o := Options{Prefix: prefix}
	o.applyDefaults()
	return o
}

func (o *Options) applyDefaults() {
	if o.Guard == "" {
		o.Guard = o.Prefix + "_EXPORT_H"
	}
	if o.BuildSharedDefine == "" {
		o.BuildSharedDefine = o.Prefix + "_BUILD_SHARED_LIBS"
	}
	if o.BuildMainDefine == "" {
		o.BuildMainDefine = o.Prefix + "_BUILD_MAIN_LIB"
	}
	if o.SuppressDefine == "" {
		o.SuppressDefine = o.Prefix + "_NO_EXPORT"
	}
	if o.CustomMacrosGuard == "" {
		o.CustomMacrosGuard = o.Prefix + "_USING_CUSTOM_GENERATED_MACROS"
	}
}

// Validate checks that every macro name is a usable C identifier.
func (o Options) Validate() error {
	if o.Prefix == "" {
		return fmt.Errorf("macro prefix is required")
	}
	names := map[string]string{
		"prefix":              o.Prefix,
		"guard":               o.Guard,
		"build shared define": o.BuildSharedDefine,
		"build main define":   o.BuildMainDefine,
		"suppress define":     o.SuppressDefine,
		"custom macros guard": o.CustomMacrosGuard,
	}
	for what, name := range names {
		if name == "" {
			continue // derived later by applyDefaults
		}
		if !isMacroName(name) {
			return fmt.Errorf("%s %q is not a valid macro name", what, name)
		}
	}
	return nil
}

// isMacroName reports whether s is an uppercase C identifier.
func isMacroName(s string) bool {
	for i, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return s != ""
}

// portableTmpl mirrors the classic hand-written export header: a Windows
// branch gated on the shared-build define, a POSIX branch split on
// visibility attribute support, the suppress-export escape hatch, and the
// final API macro selected by the build-main define.
var portableTmpl = template.Must(template.New("portable").Parse(`// Generated by symvis. Do not edit.

#ifndef {{.Guard}}
#define {{.Guard}}
{{if .MacrosInclude}}
#ifndef {{.CustomMacrosGuard}}
#include <{{.MacrosInclude}}>
#endif // {{.CustomMacrosGuard}}
{{end}}
#ifdef _WIN32
#define {{.Prefix}}_HIDDEN
#if defined({{.BuildSharedDefine}})
#define {{.Prefix}}_EXPORT {{.WinExport}}
#define {{.Prefix}}_IMPORT {{.WinImport}}
#else
#define {{.Prefix}}_EXPORT
#define {{.Prefix}}_IMPORT
#endif
#else
#if defined(__GNUC__)
#define {{.Prefix}}_EXPORT {{.PosixExport}}
#define {{.Prefix}}_HIDDEN {{.PosixHidden}}
#else // defined(__GNUC__)
#define {{.Prefix}}_EXPORT
#define {{.Prefix}}_HIDDEN
#endif // defined(__GNUC__)
#define {{.Prefix}}_IMPORT {{.Prefix}}_EXPORT
#endif

#ifdef {{.SuppressDefine}}
#undef {{.Prefix}}_EXPORT
#define {{.Prefix}}_EXPORT
#endif

#ifdef {{.BuildMainDefine}}
#define {{.Prefix}}_API {{.Prefix}}_EXPORT
#else
#define {{.Prefix}}_API {{.Prefix}}_IMPORT
#endif

#endif // {{.Guard}}
`))

type portableData struct {
	Options
	WinExport   visibility.Annotation
	WinImport   visibility.Annotation
	PosixExport visibility.Annotation
	PosixHidden visibility.Annotation
}

// Render produces the portable preprocessor header for the given options.
func Render(o Options) (string, error) {
	if err := o.Validate(); err != nil {
		return "", err
	}
	o.applyDefaults()

	win, err := visibility.Resolve(visibility.Facts{
		Platform:  visibility.PlatformWindows,
		BuildMode: visibility.BuildShared,
		Role:      visibility.RoleBuildingLibrary,
	})
	if err != nil {
		return "", fmt.Errorf("resolving windows branch: %w", err)
	}
	posix, err := visibility.Resolve(visibility.Facts{
		Platform:  visibility.PlatformPOSIXVisibility,
		BuildMode: visibility.BuildShared,
		Role:      visibility.RoleBuildingLibrary,
	})
	if err != nil {
		return "", fmt.Errorf("resolving posix branch: %w", err)
	}

	var sb strings.Builder
	data := portableData{
		Options:     o,
		WinExport:   win.Export,
		WinImport:   win.Import,
		PosixExport: posix.Export,
		PosixHidden: posix.Hidden,
	}
	if err := portableTmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("rendering header: %w", err)
	}
	return sb.String(), nil
}

// resolvedTmpl flattens the decision for one fact tuple: every macro is a
// plain define with no preprocessor branching. Empty annotations render as
// bare defines, which is the intended result for capability-gap platforms
// and suppressed exports.
var resolvedTmpl = template.Must(template.New("resolved").Parse(`// Generated by symvis for {{.Facts}}. Do not edit.

#ifndef {{.Guard}}
#define {{.Guard}}

#define {{.Prefix}}_EXPORT{{with .Res.Export}} {{.}}{{end}}
#define {{.Prefix}}_IMPORT{{with .Res.Import}} {{.}}{{end}}
#define {{.Prefix}}_HIDDEN{{with .Res.Hidden}} {{.}}{{end}}
#define {{.Prefix}}_API{{with .Res.PublicAPI}} {{.}}{{end}}

#endif // {{.Guard}}
`))

type resolvedData struct {
	Options
	Facts visibility.Facts
	Res   visibility.Resolution
}

// RenderResolved produces the flattened header for one concrete fact tuple.
func RenderResolved(o Options, f visibility.Facts) (string, error) {
	if err := o.Validate(); err != nil {
		return "", err
	}
	o.applyDefaults()

	res, err := visibility.Resolve(f)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if err := resolvedTmpl.Execute(&sb, resolvedData{Options: o, Facts: f, Res: res}); err != nil {
		return "", fmt.Errorf("rendering resolved header: %w", err)
	}
	return sb.String(), nil
}

// WriteFile renders content to path, creating parent directories.
func WriteFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	return nil
}
