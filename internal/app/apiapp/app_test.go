package apiapp

import (
	"go/parser"
	"go/token"
	"strconv"
	"strings"
	"testing"
)

func TestProductionWiringDoesNotUseMemoryStore(t *testing.T) {
	for _, name := range []string{"app.go", "routes.go", "middleware.go"} {
		file, err := parser.ParseFile(token.NewFileSet(), name, nil, parser.ImportsOnly)
		if err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		for _, spec := range file.Imports {
			path, err := strconv.Unquote(spec.Path.Value)
			if err != nil {
				t.Fatalf("unquote import in %s: %v", name, err)
			}
			if strings.HasSuffix(path, "/internal/repo/memory") {
				t.Fatalf("%s imports the in-process store %q", name, path)
			}
		}
	}
}
