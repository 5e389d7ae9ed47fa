// Package envfile mutates a persisted key=value configuration file so a
// single variable points at a new value while every other byte is preserved.
package envfile

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrKeyNotFound reports that the target variable has no line in the file.
var ErrKeyNotFound = errors.New("environment variable not found in file")

var keyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Rewrite replaces the value of the first line starting with "key=" and
// returns the new content together with whether a matching line existed.
// Every line other than the matched one is byte-identical in the result;
// when no line matches, the content is returned unchanged.
func Rewrite(content []byte, key, value string) ([]byte, bool) {
	prefix := key + "="
	lines := strings.Split(string(content), "\n")
	found := false
	for i, line := range lines {
		if !found && strings.HasPrefix(line, prefix) {
			lines[i] = prefix + value
			found = true
		}
	}
	if !found {
		return content, false
	}
	return []byte(strings.Join(lines, "\n")), true
}

// ParseEnv reads key=value lines into a map, skipping blanks and comments.
func ParseEnv(content []byte) map[string]string {
	env := make(map[string]string)
	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		k, v, ok := strings.Cut(trimmed, "=")
		if !ok {
			continue
		}
		env[strings.TrimSpace(k)] = v
	}
	return env
}

// SedCommand renders the line-targeted in-place substitution applied on the
// remote host, so only the matched line is touched on disk.
func SedCommand(path, key, value string) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", fmt.Errorf("invalid variable name %q", key)
	}
	if strings.ContainsAny(value, "#'\n&\\") {
		return "", fmt.Errorf("value %q contains characters unsafe for substitution", value)
	}
	if strings.ContainsAny(path, "'\n") {
		return "", fmt.Errorf("path %q contains characters unsafe for substitution", path)
	}
	return fmt.Sprintf("sed -i 's#^%s=.*#%s=%s#' '%s'", key, key, value, path), nil
}
