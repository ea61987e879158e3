package loader

import (
	"os"
	"strconv"
	"strings"
)

// DefaultEnvPrefix is the prefix for keymark environment variables.
const DefaultEnvPrefix = "KEYMARK_"

// EnvLoader loads configuration from environment variables.
type EnvLoader struct {
	prefix   string
	mapping  map[string]string // env var -> config path
	verbatim map[string]bool   // config paths whose values are never coerced
	environ  func() []string
}

// NewEnvLoader creates a loader with the default mappings. Values for the
// string settings (theme, locale, logging) are kept verbatim.
// The prefix should include the trailing underscore (e.g., "KEYMARK_").
func NewEnvLoader(prefix string) *EnvLoader {
	l := NewEnvLoaderWithMapping(prefix, defaultEnvMapping(prefix))
	l.verbatim = map[string]bool{
		"editor.theme":   true,
		"editor.locale":  true,
		"logging.level":  true,
		"logging.format": true,
	}
	return l
}

// NewEnvLoaderWithMapping creates a loader with custom environment variable mappings.
func NewEnvLoaderWithMapping(prefix string, mapping map[string]string) *EnvLoader {
	return &EnvLoader{prefix: prefix, mapping: mapping, environ: os.Environ}
}

func defaultEnvMapping(prefix string) map[string]string {
	return map[string]string{
		prefix + "THEME":           "editor.theme",
		prefix + "LOCALE":          "editor.locale",
		prefix + "LOG_LEVEL":       "logging.level",
		prefix + "LOG_FORMAT":      "logging.format",
		prefix + "IMAGE_MAX_WIDTH": "render.image_max_width",
	}
}

// Load reads environment variables and returns a configuration map.
// Empty values count as set.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)

	for _, kv := range l.environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		path, mapped := l.mapping[name]
		if !mapped {
			path = l.envToPath(name)
		}
		if path == "" {
			continue
		}
		if l.verbatim[path] {
			setByPath(config, path, value)
			continue
		}
		setByPath(config, path, parseValue(value))
	}

	return config, nil
}

// envToPath converts KEYMARK_RENDER_IMAGE_MAX_WIDTH to render.image_max_width.
// The first segment names the section; the rest is the snake_case key.
func (l *EnvLoader) envToPath(env string) string {
	name := strings.ToLower(strings.TrimPrefix(env, l.prefix))
	section, key, ok := strings.Cut(name, "_")
	if !ok || section == "" || key == "" {
		return name
	}
	return section + "." + key
}

// parseValue converts booleans and integers; everything else stays a string.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	return s
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}
