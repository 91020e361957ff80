package architecture_test

import (
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"golang.org/x/mod/modfile"
)

// Layering, bottom up: domain, platform, clients/store, services, http.
// Each layer may only reach down.
func TestImportBoundaries(t *testing.T) {
	root, modulePath := repoContext(t)

	layers := map[string][]string{
		"platform": {"clients", "store", "services", "http", "app"},
		"clients":  {"store", "services", "http", "app"},
		"store":    {"clients", "services", "http", "app"},
		"services": {"http", "app"},
		"http":     {"app"},
	}

	for layer, banned := range layers {
		dir := filepath.Join(root, "internal", layer)
		if _, err := os.Stat(dir); err != nil {
			t.Fatalf("layer dir %s: %v", layer, err)
		}
		forEachGoFile(t, dir, func(path string, imports []string) {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				rel = path
			}
			for _, imp := range imports {
				for _, name := range banned {
					target := modulePath + "/internal/" + name
					if imp == target || strings.HasPrefix(imp, target+"/") {
						t.Errorf("%s imports %q; %s may not depend on %s",
							filepath.ToSlash(rel), imp, layer, name)
					}
				}
			}
		})
	}
}

// The renderer must stay a pure function of an Order, so the domain
// package carries no module-internal or third-party imports.
func TestDomainStaysPure(t *testing.T) {
	root, _ := repoContext(t)

	forEachGoFile(t, filepath.Join(root, "internal", "domain"), func(path string, imports []string) {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		for _, imp := range imports {
			// A dotted first segment means a fetched module.
			first, _, _ := strings.Cut(imp, "/")
			if strings.Contains(first, ".") {
				t.Errorf("%s imports %q; internal/domain must stay stdlib-only",
					filepath.ToSlash(rel), imp)
			}
		}
	})
}

func forEachGoFile(t *testing.T, dir string, fn func(path string, imports []string)) {
	t.Helper()

	fset := token.NewFileSet()
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") {
			return nil
		}
		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		var imports []string
		for _, spec := range f.Imports {
			if imp, uerr := strconv.Unquote(spec.Path.Value); uerr == nil {
				imports = append(imports, imp)
			}
		}
		fn(path, imports)
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", dir, err)
	}
}

func repoContext(t *testing.T) (root, modulePath string) {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("go.mod not found above test dir")
		}
		dir = parent
	}

	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		t.Fatalf("read go.mod: %v", err)
	}
	mp := modfile.ModulePath(data)
	if mp == "" {
		t.Fatal("module path missing from go.mod")
	}
	return dir, mp
}
