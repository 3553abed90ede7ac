package pipeline

import "strings"

// ParentPath strips the last non-empty segment of path, keeping the trailing-slash
// convention of the input: "khan/math/" -> "khan/", "/test/test" -> "/test".
// It reports false for single-segment paths.
func ParentPath(path string) (string, bool) {
	trimmed := strings.TrimRight(path, "/")
	i := strings.LastIndex(trimmed, "/")
	if i <= 0 {
		return "", false
	}
	if strings.HasSuffix(path, "/") {
		return trimmed[:i+1], true
	}
	return trimmed[:i], true
}

// ancestors returns the strict ancestors of path, nearest first.
func ancestors(path string) []string {
	var out []string
	for p, ok := ParentPath(path); ok; p, ok = ParentPath(p) {
		out = append(out, p)
	}
	return out
}

// normalizePath drops trailing slashes so "khan/math/" and "khan/math" compare equal.
func normalizePath(path string) string {
	return strings.TrimRight(path, "/")
}
