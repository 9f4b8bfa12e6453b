// Package testutil runs golden tests stored as txtar archives.
package testutil

import (
	"bytes"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/tools/txtar"
)

// Section returns the contents of the file called name in ar.
func Section(ar *txtar.Archive, name string) ([]byte, bool) {
	for _, f := range ar.Files {
		if f.Name == name {
			return f.Data, true
		}
	}
	return nil, false
}

// normalize reduces trailing newlines to a single one. Archives may
// contain blank lines between files.
func normalize(b []byte) string {
	return string(bytes.TrimRight(b, "\n")) + "\n"
}

// Golden runs fn as a subtest for every archive matching pattern. fn
// returns the sections it produced, keyed by name; each must equal the
// archive's file of the same name.
func Golden(t *testing.T, pattern string, fn func(t *testing.T, ar *txtar.Archive) map[string]string) {
	t.Helper()
	files, err := filepath.Glob(pattern)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatalf("no files match %s", pattern)
	}
	for _, file := range files {
		file := file
		name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		t.Run(name, func(t *testing.T) {
			ar, err := txtar.ParseFile(file)
			if err != nil {
				t.Fatalf("error reading %s: %v", file, err)
			}
			got := fn(t, ar)
			names := make([]string, 0, len(got))
			for n := range got {
				names = append(names, n)
			}
			sort.Strings(names)
			for _, n := range names {
				want, ok := Section(ar, n)
				if !ok {
					t.Errorf("%s has no section %q, but the test produced:\n%s", file, n, got[n])
					continue
				}
				if diff := cmp.Diff(normalize(want), normalize([]byte(got[n]))); diff != "" {
					t.Errorf("%s: section %s mismatch (-want +got):\n%s", file, n, diff)
				}
			}
		})
	}
}
