package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// File names looked up in the working directory, in order.
var projectFileNames = []string{"gantt.toml", ".gantt.toml"}

// Loader finds and layers config sources. The zero value reads the real
// environment.
type Loader struct {
	// UserConfigDir replaces os.UserConfigDir when set.
	UserConfigDir string
	// WorkDir replaces the working directory when set.
	WorkDir string
	// File, when set, is loaded instead of the project file.
	File string
	// Getenv replaces os.Getenv when set.
	Getenv func(string) string
}

// Load reads config with the default Loader.
func Load() (*Config, error) {
	return Loader{}.Load()
}

// Load applies defaults, the user file, the project file and the
// environment, then validates the result.
func (l Loader) Load() (*Config, error) {
	cfg := Default()

	if path := l.userFile(); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", path, err)
		}
	}

	projectFile := l.File
	if projectFile == "" {
		projectFile = l.projectFile()
	}
	if projectFile != "" {
		if err := loadFile(cfg, projectFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projectFile, err)
		}
	}

	if err := loadFromEnv(cfg, l.getenv()); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l Loader) getenv() func(string) string {
	if l.Getenv != nil {
		return l.Getenv
	}
	return os.Getenv
}

func (l Loader) userFile() string {
	dir := l.UserConfigDir
	if dir == "" {
		d, err := os.UserConfigDir()
		if err != nil {
			return ""
		}
		dir = d
	}
	path := filepath.Join(dir, "gantt", "gantt.toml")
	if fileExists(path) {
		return path
	}
	return ""
}

func (l Loader) projectFile() string {
	dir := l.WorkDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return ""
		}
		dir = wd
	}
	for _, name := range projectFileNames {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// loadFile decodes path over cfg. Keys the config does not know are errors.
func loadFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// loadFromEnv overrides config from GANTT_* environment variables.
func loadFromEnv(cfg *Config, getenv func(string) string) error {
	strs := map[string]*string{
		"GANTT_ROUTER":           &cfg.Layout.Router,
		"GANTT_DUPLICATES":       &cfg.Layout.Duplicates,
		"GANTT_TIMEZONE":         &cfg.Layout.Timezone,
		"GANTT_VIZ_TYPE":         &cfg.Render.VizType,
		"GANTT_STYLE":            &cfg.Render.Style,
		"GANTT_CACHE_BACKEND":    &cfg.Cache.Backend,
		"GANTT_CACHE_DIR":        &cfg.Cache.Dir,
		"GANTT_REDIS_ADDR":       &cfg.Cache.RedisAddr,
		"GANTT_REDIS_PASSWORD":   &cfg.Cache.RedisPassword,
		"GANTT_MONGO_URI":        &cfg.Cache.MongoURI,
		"GANTT_MONGO_DATABASE":   &cfg.Cache.MongoDatabase,
		"GANTT_MONGO_COLLECTION": &cfg.Cache.MongoCollection,
		"GANTT_SERVER_ADDR":      &cfg.Server.Addr,
	}
	for key, dst := range strs {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	floats := map[string]*float64{
		"GANTT_PIXELS_PER_HOUR": &cfg.Layout.PixelsPerHour,
		"GANTT_ROW_HEIGHT":      &cfg.Layout.RowHeight,
		"GANTT_LEFT_GUTTER":     &cfg.Layout.LeftGutter,
	}
	for key, dst := range floats {
		v := getenv(key)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %q is not a number", key, v)
		}
		*dst = f
	}

	bools := map[string]*bool{
		"GANTT_SHOW_HOURS": &cfg.Render.ShowHours,
		"GANTT_SHOW_TODAY": &cfg.Render.ShowToday,
	}
	for key, dst := range bools {
		v := getenv(key)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %q is not a boolean", key, v)
		}
		*dst = b
	}

	if v := getenv("GANTT_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("GANTT_REDIS_DB: %q is not an integer", v)
		}
		cfg.Cache.RedisDB = n
	}
	if v := getenv("GANTT_CACHE_TTL"); v != "" {
		if err := cfg.Cache.TTL.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("GANTT_CACHE_TTL: %w", err)
		}
	}
	return nil
}

// expandPath expands a leading ~ and environment variables.
func expandPath(p string) string {
	if p == "" {
		return p
	}
	expanded := os.ExpandEnv(p)
	if expanded == "~" || strings.HasPrefix(expanded, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return expanded
		}
		return filepath.Join(home, strings.TrimPrefix(expanded[1:], "/"))
	}
	return expanded
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
