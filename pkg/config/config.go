package config

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sdejongh/extsort/pkg/models"
)

// Config represents the application configuration
type Config struct {
	Sort    SortConfig    `yaml:"sort"`
	Watch   WatchConfig   `yaml:"watch"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
	Ignore  []string      `yaml:"ignore"`
}

// SortConfig holds relocation settings
type SortConfig struct {
	EmptyExtension models.EmptyExtensionPolicy `yaml:"empty_extension" validate:"oneof=literal bucket"`
	UnsortedBucket string                      `yaml:"unsorted_bucket" validate:"required_if=EmptyExtension bucket,excludesall=/\\"`
	Collision      models.CollisionPolicy      `yaml:"collision" validate:"oneof=overwrite refuse"`
}

// WatchConfig holds change listener settings
type WatchConfig struct {
	Delay     time.Duration `yaml:"delay" validate:"gte=0"` // wait before relocating a created file
	SkipFirst bool          `yaml:"skip_first"`             // do not run the initial sort pass
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format" validate:"oneof=human json"`
	Progress bool   `yaml:"progress"` // Show a progress bar for the initial pass
	Quiet    bool   `yaml:"quiet"`    // Suppress non-error output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Format     string `yaml:"format" validate:"oneof=json logfmt text"`
	Level      string `yaml:"level" validate:"oneof=debug info warn error"`
	File       string `yaml:"file"` // Log file path (empty = stderr only)
	MaxSize    int64  `yaml:"max_size" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" validate:"gte=0"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Sort: SortConfig{
			EmptyExtension: models.EmptyExtLiteral,
			UnsortedBucket: models.DefaultUnsortedBucket,
			Collision:      models.CollisionOverwrite,
		},
		Watch: WatchConfig{
			Delay: time.Second,
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: true,
		},
		Logging: LoggingConfig{
			Format:     "text",
			Level:      "info",
			MaxSize:    10 * 1024 * 1024, // 10 MB
			MaxBackups: 5,
		},
	}
}

var validate = newValidator()

// newValidator reports fields by their YAML key
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks if the configuration is valid. The first offending field
// is returned as a *models.ValidationError named by its YAML path.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	return &models.ValidationError{Field: field, Message: validationMessage(fe)}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "required_if":
		return "required when empty_extension is 'bucket'"
	case "excludesall":
		return "must be a single directory name"
	case "gte":
		return "must not be negative"
	default:
		return "invalid value (" + fe.Tag() + ")"
	}
}
