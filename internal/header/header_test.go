package header

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"symvis/internal/visibility"
)

const wantPortable = `// Generated by symvis. Do not edit.

#ifndef MYLIB_EXPORT_H
#define MYLIB_EXPORT_H

#ifdef _WIN32
#define MYLIB_HIDDEN
#if defined(MYLIB_BUILD_SHARED_LIBS)
#define MYLIB_EXPORT __declspec(dllexport)
#define MYLIB_IMPORT __declspec(dllimport)
#else
#define MYLIB_EXPORT
#define MYLIB_IMPORT
#endif
#else
#if defined(__GNUC__)
#define MYLIB_EXPORT __attribute__((__visibility__("default")))
#define MYLIB_HIDDEN __attribute__((__visibility__("hidden")))
#else // defined(__GNUC__)
#define MYLIB_EXPORT
#define MYLIB_HIDDEN
#endif // defined(__GNUC__)
#define MYLIB_IMPORT MYLIB_EXPORT
#endif

#ifdef MYLIB_NO_EXPORT
#undef MYLIB_EXPORT
#define MYLIB_EXPORT
#endif

#ifdef MYLIB_BUILD_MAIN_LIB
#define MYLIB_API MYLIB_EXPORT
#else
#define MYLIB_API MYLIB_IMPORT
#endif

#endif // MYLIB_EXPORT_H
`

func TestRender_Portable(t *testing.T) {
	got, err := Render(DefaultOptions("MYLIB"))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if diff := cmp.Diff(wantPortable, got); diff != "" {
		t.Errorf("portable header mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_NoAttributeFallbackIsEmpty(t *testing.T) {
	// The non-GNUC fallback must define the real export macro as empty,
	// not some unrelated name.
	got, err := Render(DefaultOptions("MYLIB"))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	fallback := "#else // defined(__GNUC__)\n#define MYLIB_EXPORT\n#define MYLIB_HIDDEN\n"
	if !strings.Contains(got, fallback) {
		t.Errorf("header missing empty fallback block:\n%s", got)
	}
}

func TestRender_MacrosInclude(t *testing.T) {
	o := DefaultOptions("MYLIB")
	o.MacrosInclude = "mylib/macros/build_options.h"

	got, err := Render(o)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	for _, want := range []string{
		"#ifndef MYLIB_USING_CUSTOM_GENERATED_MACROS",
		"#include <mylib/macros/build_options.h>",
		"#endif // MYLIB_USING_CUSTOM_GENERATED_MACROS",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("header missing %q", want)
		}
	}
}

func TestRender_RejectsBadPrefix(t *testing.T) {
	for _, prefix := range []string{"", "my-lib", "1LIB", "lib api"} {
		if _, err := Render(Options{Prefix: prefix}); err == nil {
			t.Errorf("Render accepted prefix %q", prefix)
		}
	}
}

func TestRender_RejectsBadCustomMacrosGuard(t *testing.T) {
	o := DefaultOptions("MYLIB")
	o.MacrosInclude = "mylib/macros/build_options.h"
	o.CustomMacrosGuard = "bad guard"

	if _, err := Render(o); err == nil {
		t.Error("Render accepted invalid custom macros guard")
	}
}

func TestOptions_DerivedNames(t *testing.T) {
	o := DefaultOptions("XYZ")
	if o.Guard != "XYZ_EXPORT_H" {
		t.Errorf("Guard = %q", o.Guard)
	}
	if o.BuildSharedDefine != "XYZ_BUILD_SHARED_LIBS" {
		t.Errorf("BuildSharedDefine = %q", o.BuildSharedDefine)
	}
	if o.BuildMainDefine != "XYZ_BUILD_MAIN_LIB" {
		t.Errorf("BuildMainDefine = %q", o.BuildMainDefine)
	}
	if o.SuppressDefine != "XYZ_NO_EXPORT" {
		t.Errorf("SuppressDefine = %q", o.SuppressDefine)
	}
}

func TestRenderResolved_MatchesResolution(t *testing.T) {
	tests := []struct {
		name  string
		facts visibility.Facts
		api   string
	}{
		{
			name:  "windows shared building",
			facts: visibility.Facts{Platform: visibility.PlatformWindows, BuildMode: visibility.BuildShared, Role: visibility.RoleBuildingLibrary},
			api:   "#define MYLIB_API __declspec(dllexport)",
		},
		{
			name:  "windows shared consuming",
			facts: visibility.Facts{Platform: visibility.PlatformWindows, BuildMode: visibility.BuildShared, Role: visibility.RoleConsumingLibrary},
			api:   "#define MYLIB_API __declspec(dllimport)",
		},
		{
			name:  "posix plain is bare defines",
			facts: visibility.Facts{Platform: visibility.PlatformPOSIXPlain, BuildMode: visibility.BuildShared, Role: visibility.RoleBuildingLibrary},
			api:   "#define MYLIB_API\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RenderResolved(DefaultOptions("MYLIB"), tt.facts)
			if err != nil {
				t.Fatalf("RenderResolved failed: %v", err)
			}
			if !strings.Contains(got, tt.api) {
				t.Errorf("resolved header missing %q:\n%s", tt.api, got)
			}

			res, err := visibility.Resolve(tt.facts)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if res.Hidden != "" && !strings.Contains(got, "#define MYLIB_HIDDEN "+string(res.Hidden)) {
				t.Errorf("resolved header missing hidden token %q", res.Hidden)
			}
		})
	}
}

func TestRenderResolved_RejectsInvalidFacts(t *testing.T) {
	_, err := RenderResolved(DefaultOptions("MYLIB"), visibility.Facts{Platform: visibility.Platform(7)})
	if err == nil {
		t.Fatal("RenderResolved accepted invalid facts")
	}
}

func TestWriteFile_CreatesParents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "include", "mylib", "export.h")

	if err := WriteFile(path, "#define MYLIB_API\n"); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "#define MYLIB_API\n" {
		t.Errorf("unexpected content %q", data)
	}
}
