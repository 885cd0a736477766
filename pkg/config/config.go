package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/ritzau/javabuild/pkg/command"
	"github.com/ritzau/javabuild/pkg/model"
)

const (
	// EnvPrefix prefixes environment overrides, e.g. JAVABUILD_TARGET=out.
	EnvPrefix = "JAVABUILD_"
	// TOMLFile is the optional structured config file in the project root.
	TOMLFile = "javabuild.toml"
	// YAMLFile is the YAML alternative to TOMLFile; TOML wins when both set a key.
	YAMLFile = "javabuild.yaml"
	// DefaultConfigFile is the `Key: value` config file in the project root.
	DefaultConfigFile = "config.txt"
	// DefaultHistoryFile is the build history database, relative to the root.
	DefaultHistoryFile = ".javabuild/history.db"
)

// Config holds all configuration for the application
type Config struct {
	Root      string        `koanf:"root"`
	Source    string        `koanf:"source"`
	Target    string        `koanf:"target"`
	Lib       string        `koanf:"lib"`
	Extract   string        `koanf:"extract"`
	Libraries string        `koanf:"libraries" validate:"oneof=include exclude ignore"`
	Flags     string        `koanf:"flags"`
	Main      string        `koanf:"main" validate:"omitempty,classname"`
	Author    string        `koanf:"author"`
	Expansion string        `koanf:"expansion" validate:"oneof=shallow transitive"`
	Platform  string        `koanf:"platform"`
	Release   int           `koanf:"release" validate:"gte=0"`
	Timeout   time.Duration `koanf:"timeout" validate:"gte=0"`
	Port      int           `koanf:"port" validate:"gte=0,lte=65535"`
	DryRun    bool          `koanf:"dry-run"`
	LogJSON   bool          `koanf:"log-json"`
	Verbose   int           `koanf:"verbose"`
	File      string        `koanf:"config"`
	History   string        `koanf:"history"`

	// Set by Validate
	LibraryPolicy   model.LibraryPolicy   `koanf:"-"`
	ExpansionPolicy model.ExpansionPolicy `koanf:"-"`
	TargetPlatform  command.Platform      `koanf:"-"`
}

// Defaults returns the built-in values, the lowest priority layer.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"root":      ".",
		"source":    "src",
		"target":    "bin",
		"lib":       "lib",
		"extract":   "extractionFiles",
		"libraries": string(model.LibraryExclude),
		"flags":     "",
		"main":      "",
		"author":    "",
		"expansion": string(model.ExpansionShallow),
		"platform":  "",
		"release":   0,
		"timeout":   "0s",
		"port":      8080,
		"dry-run":   false,
		"log-json":  false,
		"verbose":   0,
		"config":    DefaultConfigFile,
		"history":   DefaultHistoryFile,
	}
}

// RegisterFlags defines the command line flags read by Load. Flag names
// match the config keys.
func RegisterFlags(f *pflag.FlagSet) {
	f.String("root", ".", "Project root directory")
	f.String("source", "src", "Source directory, relative to the root")
	f.String("target", "bin", "Output directory for compiled classes, relative to the root")
	f.String("lib", "lib", "Directory holding third-party archives")
	f.String("extract", "extractionFiles", "Directory where included archives are unpacked")
	f.String("libraries", string(model.LibraryExclude), "Library policy: include, exclude or ignore")
	f.String("flags", "", "Compiler flags (default -Werror)")
	f.String("main", "", "Main class (detected when blank)")
	f.String("author", "", "Author written to the manifest")
	f.String("expansion", string(model.ExpansionShallow), "Dependent expansion: shallow or transitive")
	f.String("platform", "", "Command platform: unix or windows (detected when blank)")
	f.Int("release", 0, "Java release passed to the compiler (0 omits it)")
	f.Duration("timeout", 0, "Planning timeout (0 means none)")
	f.Int("port", 8080, "Port for the inspection server")
	f.Bool("dry-run", false, "Print commands without executing them")
	f.Bool("log-json", false, "Log as JSON")
	f.CountP("verbose", "v", "Increase verbosity (-v debug, -vv trace)")
	f.String("config", DefaultConfigFile, "Key: value config file, relative to the root")
	f.String("history", DefaultHistoryFile, "Build history database, relative to the root (blank disables)")
}

// Load loads configuration from defaults, config.txt, javabuild.toml,
// environment variables, and flags.
// Priority: Flags > Env > javabuild.toml > javabuild.yaml > config.txt > Defaults
//
// Both files are looked up in the project root, which itself may come from
// env or flags, so those two layers are read once up front to locate them.
func Load(f *pflag.FlagSet) (*Config, error) {
	pre := koanf.New(".")
	if err := loadBase(pre); err != nil {
		return nil, err
	}
	if err := loadOverrides(pre, f); err != nil {
		return nil, err
	}
	root := pre.String("root")

	k := koanf.New(".")
	if err := loadBase(k); err != nil {
		return nil, err
	}

	// config.txt (optional)
	if path := resolve(root, pre.String("config")); fileExists(path) {
		if err := k.Load(file.Provider(path), KeyValueParser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	// javabuild.yaml, then javabuild.toml (both optional)
	structured := []struct {
		name   string
		parser koanf.Parser
	}{
		{YAMLFile, YAMLParser()},
		{TOMLFile, toml.Parser()},
	}
	for _, sf := range structured {
		if path := filepath.Join(root, sf.name); fileExists(path) {
			if err := k.Load(file.Provider(path), sf.parser); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", path, err)
			}
		}
	}

	if err := loadOverrides(k, f); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadBase(k *koanf.Koanf) error {
	if err := k.Load(makeMapProvider(Defaults()), nil); err != nil {
		return fmt.Errorf("failed to load defaults: %w", err)
	}
	return nil
}

func loadOverrides(k *koanf.Koanf, f *pflag.FlagSet) error {
	// Environment Variables
	// Prefix: JAVABUILD_ (e.g., JAVABUILD_LOG_JSON=true sets log-json)
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, EnvPrefix)), "_", "-")
	}), nil); err != nil {
		return fmt.Errorf("failed to load env vars: %w", err)
	}

	// Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return fmt.Errorf("failed to load flags: %w", err)
		}
	}
	return nil
}

// Validate normalizes the policy and platform strings, then checks the
// validate struct tags. Errors name the config key. Blank roots are accepted;
// planning reports them as invalid.
func (c *Config) Validate() error {
	var err error
	if c.LibraryPolicy, err = model.ParseLibraryPolicy(c.Libraries); err != nil {
		return err
	}
	c.Libraries = string(c.LibraryPolicy)

	if c.ExpansionPolicy, err = model.ParseExpansionPolicy(c.Expansion); err != nil {
		return err
	}
	c.Expansion = string(c.ExpansionPolicy)

	if c.TargetPlatform, err = command.ParsePlatform(c.Platform); err != nil {
		return err
	}

	c.Main = strings.TrimSpace(c.Main)
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid %s %v (%s %s)", fe.Field(), fe.Value(), fe.Tag(), fe.Param())
		}
		return err
	}
	return nil
}

// HistoryPath returns the history database location, blank when disabled.
func (c *Config) HistoryPath() string { return c.path(c.History) }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their config key
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("koanf"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("classname", validateClassName)
	return v
}

// validateClassName accepts a fully-qualified class name such as app.Main
func validateClassName(fl validator.FieldLevel) bool {
	for _, part := range strings.Split(fl.Field().String(), ".") {
		if part == "" {
			return false
		}
		for i, r := range part {
			if !unicode.IsLetter(r) && r != '_' && r != '$' && (i == 0 || !unicode.IsDigit(r)) {
				return false
			}
		}
	}
	return true
}

// SourcePath returns the source root resolved against the project root.
func (c *Config) SourcePath() string { return c.path(c.Source) }

// TargetPath returns the output root resolved against the project root.
func (c *Config) TargetPath() string { return c.path(c.Target) }

// LibPath returns the library directory resolved against the project root.
func (c *Config) LibPath() string { return c.path(c.Lib) }

// ExtractPath returns the extraction directory resolved against the project root.
func (c *Config) ExtractPath() string { return c.path(c.Extract) }

// ConfigPath returns the config.txt location.
func (c *Config) ConfigPath() string { return resolve(c.Root, c.File) }

// path keeps blank values blank so planning can report them
func (c *Config) path(p string) string {
	if strings.TrimSpace(p) == "" {
		return ""
	}
	return resolve(c.Root, p)
}

// WriteDefault writes config.txt with the default values unless the file
// already exists. It reports whether the file was written.
func WriteDefault(path string) (bool, error) {
	if fileExists(path) {
		return false, nil
	}
	data, err := KeyValueParser().Marshal(Defaults())
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}

func resolve(root, p string) string {
	if filepath.IsAbs(p) || root == "" {
		return p
	}
	return filepath.Join(root, p)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
