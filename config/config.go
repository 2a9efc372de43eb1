// Package config implements the middleware pipeline's builder/configuration
// model: a defaulted, validated PipelineConfig, the Go counterpart of
// spec.md §4.5's "Builder/configuration model", grounded on sflowg's
// InitializeConfig/ApplyDefaults/validateConfig trio, with Build/Middleware
// assembling the configured options into the middleware chain and executor
// spec.md §4.5 calls for ("a fluent assembler accepts middleware in order
// and produces an executor").
package config

import (
	"fmt"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"

	"github.com/draftspec/draftspec"
	"github.com/draftspec/draftspec/middleware"
	"github.com/draftspec/draftspec/runner"
)

var validate = validator.New()

// BackoffStrategy selects the retry delay curve, mirroring sflowg's
// three-case backoff switch in computeDelay.
type BackoffStrategy string

const (
	BackoffNone        BackoffStrategy = "none"
	BackoffLinear      BackoffStrategy = "linear"
	BackoffExponential BackoffStrategy = "exponential"
)

// PipelineConfig is the validated configuration for a runner/middleware
// pipeline: parallelism, retry policy, per-spec timeout, and tag filters.
type PipelineConfig struct {
	// MaxParallelism bounds how many specs may run concurrently in parallel
	// mode; defaults to the host's GOMAXPROCS.
	MaxParallelism int `default:"-1" validate:"required,gt=0"`

	// MaxRetries is the number of additional attempts after a failure.
	MaxRetries int `default:"0" validate:"gte=0"`

	// Backoff selects the delay curve between retry attempts.
	Backoff BackoffStrategy `default:"none" validate:"oneof=none linear exponential"`

	// RetryBaseDelayMs is the base delay, in milliseconds, used by the
	// linear and exponential backoff curves.
	RetryBaseDelayMs int `default:"100" validate:"gte=0"`

	// SpecTimeoutMs bounds a single spec body's execution, 0 disables it.
	SpecTimeoutMs int `default:"0" validate:"gte=0"`

	// IncludeTags, when non-empty, restricts execution to specs carrying
	// at least one of these tags.
	IncludeTags []string `validate:"dive,required"`

	// ExcludeTags excludes any spec carrying one of these tags.
	ExcludeTags []string `validate:"dive,required"`

	// FilterName, when non-empty, restricts execution to specs whose
	// description matches this regular expression.
	FilterName string

	// ExcludeName, when non-empty, excludes specs whose description
	// matches this regular expression.
	ExcludeName string

	// FilterContext, when non-empty, restricts execution to specs whose
	// "/"-joined context path contains at least one of these substrings.
	FilterContext []string `validate:"dive,required"`

	// ExcludeContext excludes any spec whose "/"-joined context path
	// contains one of these substrings.
	ExcludeContext []string `validate:"dive,required"`

	// ParallelExecution enables bounded concurrent execution of sibling
	// specs, the Go counterpart of spec.md §4.5's parallel_execution.
	ParallelExecution bool `default:"false"`

	// Custom appends caller-supplied middleware innermost, after every
	// built-in the other fields configure.
	Custom []middleware.Middleware
}

// New returns a PipelineConfig with defaults applied and validated.
func New(opts ...Option) (*PipelineConfig, error) {
	cfg := &PipelineConfig{}
	if err := defaults.Set(cfg); err != nil {
		return nil, draftspec.WrapError(draftspec.KindInvalidArgument, err, "apply pipeline config defaults")
	}
	if cfg.MaxParallelism == -1 {
		cfg.MaxParallelism = runtime.GOMAXPROCS(0)
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Option mutates a PipelineConfig under construction.
type Option func(*PipelineConfig)

func WithMaxParallelism(n int) Option {
	return func(c *PipelineConfig) { c.MaxParallelism = n }
}

func WithRetries(maxRetries int, backoff BackoffStrategy, baseDelayMs int) Option {
	return func(c *PipelineConfig) {
		c.MaxRetries = maxRetries
		c.Backoff = backoff
		c.RetryBaseDelayMs = baseDelayMs
	}
}

func WithSpecTimeoutMs(ms int) Option {
	return func(c *PipelineConfig) { c.SpecTimeoutMs = ms }
}

func WithTagFilter(include, exclude []string) Option {
	return func(c *PipelineConfig) {
		c.IncludeTags = include
		c.ExcludeTags = exclude
	}
}

func WithNameFilter(include, exclude string) Option {
	return func(c *PipelineConfig) {
		c.FilterName = include
		c.ExcludeName = exclude
	}
}

func WithContextFilter(include, exclude []string) Option {
	return func(c *PipelineConfig) {
		c.FilterContext = include
		c.ExcludeContext = exclude
	}
}

func WithParallelExecution(enabled bool) Option {
	return func(c *PipelineConfig) { c.ParallelExecution = enabled }
}

func WithCustomMiddleware(mw ...middleware.Middleware) Option {
	return func(c *PipelineConfig) { c.Custom = append(c.Custom, mw...) }
}

// Validate struct-tag validates cfg, translating validator.ValidationErrors
// into a single KindInvalidArgument error, exactly as sflowg's
// validateConfig formats field errors for readability.
func Validate(cfg *PipelineConfig) error {
	if cfg == nil {
		return draftspec.NewError(draftspec.KindInvalidArgument, "pipeline config is nil")
	}
	if err := validate.Struct(cfg); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("field %q failed validation: %s (rule: %s)",
					fe.Field(), fe.Error(), fe.Tag()))
			}
			return draftspec.NewError(draftspec.KindInvalidArgument,
				"pipeline config validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
		}
		return draftspec.WrapError(draftspec.KindInvalidArgument, err, "pipeline config validation failed")
	}
	return nil
}

// Middleware assembles the configured built-ins into the fixed order
// spec.md §4.5's enumerated options imply: filters outermost, so an
// excluded spec never pays for retry/timeout work; then retry; then
// timeout, the innermost built-in; then any caller-supplied Custom
// middleware innermost of all, closest to the body.
func (c *PipelineConfig) Middleware() ([]middleware.Middleware, error) {
	var mw []middleware.Middleware

	if c.FilterName != "" || c.ExcludeName != "" {
		var include, exclude *regexp.Regexp
		var err error
		if c.FilterName != "" {
			if include, err = regexp.Compile(c.FilterName); err != nil {
				return nil, draftspec.WrapError(draftspec.KindInvalidArgument, err, "compile filter_name pattern %q", c.FilterName)
			}
		}
		if c.ExcludeName != "" {
			if exclude, err = regexp.Compile(c.ExcludeName); err != nil {
				return nil, draftspec.WrapError(draftspec.KindInvalidArgument, err, "compile exclude_name pattern %q", c.ExcludeName)
			}
		}
		mw = append(mw, middleware.FilterName(include, exclude))
	}

	if len(c.IncludeTags) > 0 || len(c.ExcludeTags) > 0 {
		mw = append(mw, middleware.FilterTags(c.IncludeTags, c.ExcludeTags))
	}

	if len(c.FilterContext) > 0 || len(c.ExcludeContext) > 0 {
		mw = append(mw, middleware.FilterContext(c.FilterContext, c.ExcludeContext))
	}

	if c.MaxRetries > 0 {
		mw = append(mw, middleware.RetryWithOptions(middleware.RetryOptions{
			MaxRetries: c.MaxRetries,
			Backoff:    middleware.BackoffStrategy(c.Backoff),
			BaseDelay:  time.Duration(c.RetryBaseDelayMs) * time.Millisecond,
		}))
	}

	if c.SpecTimeoutMs > 0 {
		mw = append(mw, middleware.Timeout(time.Duration(c.SpecTimeoutMs)*time.Millisecond))
	}

	mw = append(mw, c.Custom...)
	return mw, nil
}

// Build turns cfg into a ready-to-run *runner.Runner: its configured
// middleware chain plus parallelism, with any caller-supplied opts
// applied last so they can still override. This is the "produces an
// executor" half of spec.md §4.5's fluent assembler.
func (c *PipelineConfig) Build(opts ...runner.Option) (*runner.Runner, error) {
	mw, err := c.Middleware()
	if err != nil {
		return nil, err
	}
	built := append([]runner.Option{
		runner.WithMiddleware(mw...),
		runner.WithParallel(c.ParallelExecution, c.MaxParallelism),
	}, opts...)
	return runner.New(built...), nil
}
