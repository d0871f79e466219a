// Package focuslint detects forced-focus markers left in test sources.
// A focus marker (helpers.Only) is a local debugging aid; committed to CI it
// silently narrows the suite, so preflight treats it as a configuration error.
package focuslint

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Marker is the call that focuses a test run. The lint matches the call site
// textually so it also catches markers behind build tags.
const Marker = "helpers.Only("

// Finding is one focus-marker occurrence.
type Finding struct {
	File string
	Line int
}

func (f Finding) String() string {
	return fmt.Sprintf("%s:%d: focus marker %q left in source", f.File, f.Line, strings.TrimSuffix(Marker, "("))
}

// Scan walks root and reports every focus marker in _test.go files.
func Scan(root string) ([]Finding, error) {
	var findings []Finding
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if name := d.Name(); name == "node_modules" || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, "_test.go") {
			return nil
		}
		found, err := scanFile(path)
		if err != nil {
			return err
		}
		findings = append(findings, found...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("focus lint: %w", err)
	}
	return findings, nil
}

func scanFile(path string) ([]Finding, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var findings []Finding
	scanner := bufio.NewScanner(f)
	for line := 1; scanner.Scan(); line++ {
		text := scanner.Text()
		idx := strings.Index(text, Marker)
		if idx < 0 {
			continue
		}
		// Commented-out markers don't focus anything.
		if c := strings.Index(text, "//"); c >= 0 && c < idx {
			continue
		}
		findings = append(findings, Finding{File: path, Line: line})
	}
	return findings, scanner.Err()
}
