package runner

import (
	"os"
	"strings"

	"github.com/ardnew/mung"
)

// mergeEnviron overlays key-value layers onto a base environment in
// "KEY=VALUE" form. Later layers win on collision, except for PATH-like
// keys, where the new value's elements are prefixed onto the existing list
// instead of replacing it. Duplicate list elements are dropped by mung.
func mergeEnviron(base []string, layers ...map[string]string) []string {
	merged := make(map[string]string, len(base))
	order := make([]string, 0, len(base))

	for _, kv := range base {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}

		if _, seen := merged[key]; !seen {
			order = append(order, key)
		}

		merged[key] = value
	}

	for _, layer := range layers {
		for key, value := range layer {
			existing, seen := merged[key]

			switch {
			case seen && isPathList(key):
				merged[key] = mungPrefix(existing, value)

			default:
				if !seen {
					order = append(order, key)
				}

				merged[key] = value
			}
		}
	}

	environ := make([]string, 0, len(order))

	for _, key := range order {
		environ = append(environ, key+"="+merged[key])
	}

	return environ
}

// isPathList reports whether a key conventionally holds an
// os.PathListSeparator-delimited list (PATH, MANPATH, GOPATH, and so on).
func isPathList(key string) bool {
	return strings.HasSuffix(key, "PATH")
}

func mungPrefix(subject string, prefix string) string {
	delim := string(os.PathListSeparator)

	return mung.Make(
		mung.WithSubjectItems(subject),
		mung.WithDelim(delim),
		mung.WithPrefixItems(strings.Split(prefix, delim)...),
	).String()
}
