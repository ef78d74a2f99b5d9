package junitxml

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/ubuntu/decorate"
)

// Expand resolves glob patterns in args; "**" matches any number of directories. Arguments without glob metacharacters
// are kept as-is so a missing file is reported by the loader, not dropped here.
// Order follows args and duplicates are removed.
func Expand(args []string) (files []string, err error) {
	defer decorate.OnError(&err, "could not expand input files")

	seen := map[string]bool{}
	add := func(p string) {
		if seen[p] {
			return
		}
		seen[p] = true
		files = append(files, p)
	}

	for _, a := range args {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if !hasMeta(a) {
			add(a)
			continue
		}

		matches, gerr := doublestar.FilepathGlob(a)
		if gerr != nil {
			return nil, fmt.Errorf("pattern %q: %w", a, gerr)
		}
		sort.Strings(matches)
		for _, m := range matches {
			add(m)
		}
	}

	return files, nil
}

func hasMeta(p string) bool {
	return strings.ContainsAny(p, `*?[{`)
}
