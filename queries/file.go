package queries

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPattern matches template files anywhere below a directory.
const DefaultPattern = "**/*.rq"

// Header keys of a .rq template file.
const (
	headerName        = "name"
	headerModule      = "module"
	headerRevision    = "revision"
	headerKind        = "kind"
	headerDescription = "description"
)

var headerOrder = []string{headerName, headerModule, headerRevision, headerKind, headerDescription}

// Marshal renders a template as .rq text: one "# key: value" comment line per
// header field followed by the body unchanged. A multi-line description is
// written as one description line per line.
func Marshal(t Template) []byte {
	var sb strings.Builder
	values := map[string]string{
		headerName:        t.Name,
		headerModule:      t.Module,
		headerRevision:    strconv.Itoa(t.Revision),
		headerKind:        string(t.Kind),
		headerDescription: t.Description,
	}
	for _, key := range headerOrder {
		if values[key] == "" {
			continue
		}
		for _, line := range strings.Split(values[key], "\n") {
			if line == "" {
				fmt.Fprintf(&sb, "# %s:\n", key)
				continue
			}
			fmt.Fprintf(&sb, "# %s: %s\n", key, line)
		}
	}
	sb.WriteString(t.Body)
	return []byte(sb.String())
}

// Unmarshal parses .rq text. Header lines are read until the first line that
// is not a known "# key: value" comment; the rest is the body. Repeated
// description lines are joined with newlines. Missing revision defaults to 1;
// missing kind is inferred from the body.
func Unmarshal(data []byte) (Template, error) {
	var t Template
	text := string(data)
	var description []string

	rest := text
	for rest != "" {
		line, after, found := strings.Cut(rest, "\n")
		key, value, ok := parseHeader(line)
		if !ok {
			break
		}
		switch key {
		case headerName:
			t.Name = value
		case headerModule:
			t.Module = value
		case headerRevision:
			n, err := strconv.Atoi(value)
			if err != nil {
				return Template{}, fmt.Errorf("%w: revision %q", ErrInvalid, value)
			}
			t.Revision = n
		case headerKind:
			t.Kind = Kind(value)
		case headerDescription:
			description = append(description, value)
		}
		if !found {
			after = ""
		}
		rest = after
	}
	t.Body = rest
	t.Description = strings.Join(description, "\n")

	if t.Revision == 0 {
		t.Revision = 1
	}
	if t.Kind == "" {
		t.Kind = inferKind(t.Body)
	}
	if err := t.check(); err != nil {
		return Template{}, err
	}
	return t, nil
}

func parseHeader(line string) (key, value string, ok bool) {
	line = strings.TrimRight(line, "\r")
	if !strings.HasPrefix(line, "#") {
		return "", "", false
	}
	key, value, ok = strings.Cut(strings.TrimSpace(line[1:]), ":")
	if !ok {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	for _, k := range headerOrder {
		if k == key {
			return key, strings.TrimSpace(value), true
		}
	}
	return "", "", false
}

// inferKind treats bodies starting with PREFIX, BASE or SELECT as queries.
func inferKind(body string) Kind {
	sc := bufio.NewScanner(strings.NewReader(body))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		word := strings.ToUpper(strings.Fields(line)[0])
		if word == "PREFIX" || word == "BASE" || word == "SELECT" {
			return KindQuery
		}
		return KindPattern
	}
	return KindPattern
}

// FileName returns the path of a template relative to an export directory:
// module/name.rq for revision 1, module/name.vN.rq otherwise.
func FileName(t Template) string {
	module := t.Module
	if module == "" {
		module = "custom"
	}
	name := t.Name + ".rq"
	if t.Revision > 1 {
		name = fmt.Sprintf("%s.v%d.rq", t.Name, t.Revision)
	}
	return filepath.Join(module, name)
}

// WriteDir writes each template to dir using FileName, creating module
// directories as needed. It returns the written paths.
func WriteDir(dir string, templates []Template) ([]string, error) {
	var paths []string
	for _, t := range templates {
		path := filepath.Join(dir, FileName(t))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return paths, fmt.Errorf("create template directory: %w", err)
		}
		if err := os.WriteFile(path, Marshal(t), 0o644); err != nil {
			return paths, fmt.Errorf("write template %s: %w", t.ID(), err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// LoadDir reads every file of fsys matching pattern (DefaultPattern when
// empty) in lexical order.
func LoadDir(fsys fs.FS, pattern string) ([]Template, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("glob error: %w", err)
	}
	sort.Strings(matches)

	templates := make([]Template, 0, len(matches))
	for _, m := range matches {
		data, err := fs.ReadFile(fsys, m)
		if err != nil {
			return nil, fmt.Errorf("read template: %w", err)
		}
		t, err := Unmarshal(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m, err)
		}
		templates = append(templates, t)
	}
	return templates, nil
}
