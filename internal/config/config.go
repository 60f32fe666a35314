package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jgivc/mediaindex/internal/common"
	"github.com/jgivc/mediaindex/internal/entity"
	"gopkg.in/yaml.v2"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	defaultPublicDir   = "public"
	defaultOutputName  = "_media"
	defaultSkipEnv     = "VERCEL"
	defaultMinExisting = 10
	defaultRatio       = 0.1
	defaultS3Region    = "us-east-1"
	defaultCacheCtrl   = "public, max-age=300"

	envPublicDir   = "MEDIA_PUBLIC_DIR"
	envOutputDir   = "MEDIA_OUTPUT_DIR"
	envLogLevel    = "MEDIA_LOG_LEVEL"
	envSkipEnv     = "MEDIA_SKIP_ENV"
	envS3Endpoint  = "MEDIA_S3_ENDPOINT"
	envS3Region    = "MEDIA_S3_REGION"
	envS3AccessKey = "MEDIA_S3_ACCESS_KEY"
	envS3SecretKey = "MEDIA_S3_SECRET_KEY"
	envS3Bucket    = "MEDIA_S3_BUCKET"
	envS3Prefix    = "MEDIA_S3_PREFIX"
	envS3UseSSL    = "MEDIA_S3_USE_SSL"
)

type CategoryConfig struct {
	Name       string   `yaml:"name"`
	Type       string   `yaml:"type"`
	Extensions []string `yaml:"extensions"`
}

// ProtectionConfig guards a healthy index against a degraded scan: the
// existing file is kept when it has more than MinExisting items and the
// fresh scan found fewer than Ratio of them.
type ProtectionConfig struct {
	MinExisting int     `yaml:"min_existing"`
	Ratio       float64 `yaml:"ratio"`
}

type StorageConfig struct {
	Endpoint     string `yaml:"endpoint"`
	Region       string `yaml:"region"`
	AccessKey    string `yaml:"access_key"`
	SecretKey    string `yaml:"secret_key"`
	Bucket       string `yaml:"bucket"`
	Prefix       string `yaml:"prefix"`
	UseSSL       bool   `yaml:"use_ssl"`
	CacheControl string `yaml:"cache_control"`
}

func (s *StorageConfig) Enabled() bool {
	return strings.TrimSpace(s.Endpoint) != ""
}

type Config struct {
	PublicDir  string           `yaml:"public_dir"`
	OutputDir  string           `yaml:"output_dir"`
	LogLevel   string           `yaml:"log_level"`
	SkipEnv    string           `yaml:"skip_env"`
	Categories []CategoryConfig `yaml:"categories"`
	Protection ProtectionConfig `yaml:"protection"`
	Storage    StorageConfig    `yaml:"storage"`
}

func (c *Config) SetDefaults() {
	c.PublicDir = defaultPublicDir
	c.LogLevel = LogLevelInfo
	c.SkipEnv = defaultSkipEnv
	c.Categories = []CategoryConfig{
		{
			Name:       "images",
			Type:       string(entity.MediaTypeImage),
			Extensions: []string{".jpg", ".jpeg", ".png", ".webp", ".avif", ".gif"},
		},
		{
			Name:       "videos",
			Type:       string(entity.MediaTypeVideo),
			Extensions: []string{".mp4", ".webm", ".mov"},
		},
	}
	c.Protection = ProtectionConfig{
		MinExisting: defaultMinExisting,
		Ratio:       defaultRatio,
	}
	c.Storage = StorageConfig{
		Region:       defaultS3Region,
		UseSSL:       true,
		CacheControl: defaultCacheCtrl,
	}
}

// IndexDir returns the directory the category indexes are written to.
func (c *Config) IndexDir() string {
	if c.OutputDir != "" {
		return c.OutputDir
	}

	return filepath.Join(c.PublicDir, defaultOutputName)
}

// MediaCategories builds the immutable categories in declared order.
func (c *Config) MediaCategories() ([]*entity.Category, error) {
	if len(c.Categories) == 0 {
		return nil, common.ErrNoCategories
	}

	categories := make([]*entity.Category, 0, len(c.Categories))
	for _, cc := range c.Categories {
		name := strings.TrimSpace(cc.Name)
		if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
			return nil, fmt.Errorf("%w: %q", common.ErrInvalidCategoryName, cc.Name)
		}

		mediaType := entity.MediaType(strings.ToLower(strings.TrimSpace(cc.Type)))
		switch mediaType {
		case entity.MediaTypeImage, entity.MediaTypeVideo:
		default:
			return nil, fmt.Errorf("%w: %q in category %s", common.ErrUnknownMediaType, cc.Type, name)
		}

		categories = append(categories, entity.NewCategory(name, mediaType, cc.Extensions...))
	}

	return categories, nil
}

func (c *Config) Validate() error {
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("%w: %q", common.ErrUnknownLogLevel, c.LogLevel)
	}

	if c.Protection.MinExisting < 0 || c.Protection.Ratio < 0 || c.Protection.Ratio > 1 {
		return fmt.Errorf("%w: min_existing=%d ratio=%v", common.ErrInvalidProtection, c.Protection.MinExisting, c.Protection.Ratio)
	}

	if _, err := c.MediaCategories(); err != nil {
		return err
	}

	return nil
}

// Load reads defaults, then the optional yaml file, then environment overrides.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.SetDefaults()

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
		}

		if err := yaml.Unmarshal(content, cfg); err != nil {
			return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	setString(&c.PublicDir, getenv(envPublicDir))
	setString(&c.OutputDir, getenv(envOutputDir))
	setString(&c.LogLevel, strings.ToLower(getenv(envLogLevel)))
	setString(&c.SkipEnv, getenv(envSkipEnv))

	setString(&c.Storage.Endpoint, getenv(envS3Endpoint))
	setString(&c.Storage.Region, getenv(envS3Region))
	setString(&c.Storage.AccessKey, getenv(envS3AccessKey))
	setString(&c.Storage.SecretKey, getenv(envS3SecretKey))
	setString(&c.Storage.Bucket, getenv(envS3Bucket))
	setString(&c.Storage.Prefix, getenv(envS3Prefix))

	if raw := strings.TrimSpace(getenv(envS3UseSSL)); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %w", common.ErrInvalidEnvValue, envS3UseSSL, raw, err)
		}
		c.Storage.UseSSL = v
	}

	return nil
}

func setString(dst *string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		*dst = value
	}
}
