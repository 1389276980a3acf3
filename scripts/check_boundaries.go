package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const rootModule = "covenant"

// valueLibraries are pure value types every layer may use.
var valueLibraries = []string{
	"github.com/shopspring/decimal",
}

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

// layerRule lists what one layer of a context may import. Paths starting
// with "/" are relative to the owning service.
type layerRule struct {
	name          string
	allowed       []string
	noAdapters    bool
	noRuntime     bool
	allowlistRule string
}

var layerRules = map[string]layerRule{
	"domain": {
		name:          "domain",
		allowed:       []string{"/domain"},
		noAdapters:    true,
		noRuntime:     true,
		allowlistRule: "domain import is outside explicit allowlist",
	},
	"ports": {
		name:          "ports",
		allowed:       []string{"/domain", rootModule + "/contracts"},
		allowlistRule: "ports may only depend on domain and contracts",
	},
	"application": {
		name:          "application",
		allowed:       []string{"/application", "/domain", "/ports", rootModule + "/contracts"},
		noAdapters:    true,
		noRuntime:     true,
		allowlistRule: "application import is outside explicit allowlist",
	},
	"transport": {
		name:          "transport",
		allowed:       []string{"/transport"},
		allowlistRule: "transport DTOs may only use value libraries",
	},
}

func main() {
	violations := collectViolations("contexts")
	if len(violations) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	fmt.Println("boundary violations found:")
	for _, v := range violations {
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

// collectViolations walks contexts/<context>/<service>/<layer>/... and returns
// every import that breaks a layer rule, sorted by file and line.
func collectViolations(root string) []violation {
	var violations []violation

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		normalized := filepath.ToSlash(path)
		parts := strings.Split(normalized, "/")
		if len(parts) < 4 || parts[0] != "contexts" {
			return nil
		}
		servicePrefix := fmt.Sprintf("%s/contexts/%s/%s", rootModule, parts[1], parts[2])
		violations = append(violations, checkFile(path, normalized, parts[3], servicePrefix)...)
		return nil
	})

	sort.Slice(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Import < b.Import
	})
	return violations
}

func checkFile(path string, normalizedPath string, layer string, servicePrefix string) []violation {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return []violation{{File: normalizedPath, Line: 1, Rule: "file must parse"}}
	}

	rule, layered := layerRules[layer]
	var violations []violation
	for _, imp := range file.Imports {
		importPath := strings.Trim(imp.Path.Value, "\"")
		flag := func(reason string) {
			violations = append(violations, violation{
				File:   normalizedPath,
				Line:   fset.Position(imp.Pos()).Line,
				Import: importPath,
				Rule:   reason,
			})
		}

		if hasPrefix(importPath, rootModule+"/contexts") && !hasPrefix(importPath, servicePrefix) {
			flag("cross-module imports are forbidden")
		}
		if !layered {
			continue
		}
		if rule.noAdapters && strings.Contains(importPath, "/adapters/") {
			flag(rule.name + " must not import adapters")
		}
		if rule.noRuntime && (hasPrefix(importPath, rootModule+"/internal") || hasPrefix(importPath, rootModule+"/cmd")) {
			flag(rule.name + " must not import runtime infrastructure")
		}
		if !isStdlib(importPath) && !isAllowed(importPath, rule.resolve(servicePrefix)) {
			flag(rule.allowlistRule)
		}
	}
	return violations
}

func (r layerRule) resolve(servicePrefix string) []string {
	allowed := make([]string, 0, len(r.allowed)+len(valueLibraries))
	for _, prefix := range r.allowed {
		if strings.HasPrefix(prefix, "/") {
			prefix = servicePrefix + prefix
		}
		allowed = append(allowed, prefix)
	}
	return append(allowed, valueLibraries...)
}

func hasPrefix(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func isAllowed(importPath string, allowedPrefixes []string) bool {
	for _, p := range allowedPrefixes {
		if hasPrefix(importPath, p) {
			return true
		}
	}
	return false
}

func isStdlib(importPath string) bool {
	if hasPrefix(importPath, rootModule) {
		return false
	}
	first, _, _ := strings.Cut(importPath, "/")
	return !strings.Contains(first, ".")
}
