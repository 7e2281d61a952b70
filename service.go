package transitions

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/reglet-dev/reglet-transitions/capability"
	"github.com/reglet-dev/reglet-transitions/emit"
	"github.com/reglet-dev/reglet-transitions/kinds"
	"github.com/reglet-dev/reglet-transitions/parser"
	"github.com/reglet-dev/reglet-transitions/registry"
	"github.com/reglet-dev/reglet-transitions/validation"
)

// Format selects the parser for raw configuration bytes.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks a format from a file extension. Unknown extensions
// are treated as YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Service owns a frozen kind registry and validates and emits transition
// lists against it. It is safe for concurrent use.
type Service struct {
	registry   *registry.Registry
	validator  *validation.TransitionListValidator
	checker    *CapabilityChecker
	logger     *slog.Logger
	hosts      *capability.Registry
	middleware []Middleware
	register   []func(registry.KindRegistry) error
	builtins   bool
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithRegistry uses r instead of a fresh registry. Kinds already in r are
// kept; r is frozen by New.
func WithRegistry(r *registry.Registry) Option {
	return func(s *Service) { s.registry = r }
}

// WithoutBuiltins skips registering fade, lambda, addressable_fade and
// addressable_lambda.
func WithoutBuiltins() Option {
	return func(s *Service) { s.builtins = false }
}

// WithKinds runs fn during New, after the builtins, to register custom kinds.
func WithKinds(fn func(registry.KindRegistry) error) Option {
	return func(s *Service) { s.register = append(s.register, fn) }
}

// WithHostTypes sets the host types resolvable by name. Defaults to
// capability.DefaultRegistry().
func WithHostTypes(hosts *capability.Registry) Option {
	return func(s *Service) { s.hosts = hosts }
}

// WithMiddleware wraps every emit function, first middleware outermost.
func WithMiddleware(mw ...Middleware) Option {
	return func(s *Service) { s.middleware = append(s.middleware, mw...) }
}

// New registers all kinds, freezes the registry and returns the service.
// A registration conflict is returned as an error wrapping
// registry.ErrRegistrationConflict and should abort startup.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		logger:   slog.Default(),
		builtins: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = registry.New(registry.WithLogger(s.logger))
	}
	if s.hosts == nil {
		s.hosts = capability.DefaultRegistry()
	}

	if s.builtins {
		if err := kinds.RegisterBuiltins(s.registry); err != nil {
			return nil, fmt.Errorf("failed to register builtin transitions: %w", err)
		}
	}
	for _, fn := range s.register {
		if err := fn(s.registry); err != nil {
			return nil, fmt.Errorf("failed to register transitions: %w", err)
		}
	}
	s.registry.Freeze()

	s.validator = validation.NewListValidator(s.registry, validation.WithLogger(s.logger))
	s.checker = NewCapabilityChecker(s.hosts, WithCapabilityDenialHandler(func(host string, t capability.Token) {
		s.logger.Debug("capability denied", "host", host, "capability", t)
	}))

	s.logger.Debug("transition service ready", "kinds", s.registry.Names())
	return s, nil
}

// Registry returns the frozen kind registry.
func (s *Service) Registry() registry.KindRegistry {
	return s.registry
}

// Hosts returns the host types resolvable by name.
func (s *Service) Hosts() *capability.Registry {
	return s.hosts
}

// Validate validates raw for a host described by has.
func (s *Service) Validate(raw parser.RawList, has capability.Checker) (*validation.ValidatedList, error) {
	return s.validator.Validate(raw, has)
}

// ValidateForHost validates raw for a named host type. An empty name means
// the host declares no capabilities.
func (s *Service) ValidateForHost(raw parser.RawList, hostName string) (*validation.ValidatedList, error) {
	has, err := s.checker.ForHost(hostName)
	if err != nil {
		return nil, err
	}
	return s.validator.Validate(raw, has)
}

// Parse decodes raw configuration bytes.
func (s *Service) Parse(data []byte, format Format) (parser.RawList, error) {
	var p parser.TransitionParser
	switch format {
	case FormatJSON:
		p = parser.NewJSONTransitionParser()
	case FormatYAML, "":
		p = parser.NewYamlTransitionParser()
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	return p.Parse(data)
}

// ValidateBytes parses data and validates it for a named host type.
func (s *Service) ValidateBytes(data []byte, format Format, hostName string) (*validation.ValidatedList, error) {
	raw, err := s.Parse(data, format)
	if err != nil {
		return nil, err
	}
	return s.ValidateForHost(raw, hostName)
}

// Emit hands every entry of a validated list to backend, once each, in
// order. Per-entry failures are reported in the results and joined into the
// returned error; they never stop sibling entries.
func (s *Service) Emit(ctx context.Context, backend emit.Backend, list *validation.ValidatedList, opts ...emit.DispatcherOption) ([]emit.Result, error) {
	jobs := list.Jobs()
	for i := range jobs {
		jobs[i].Emit = chain(jobs[i].Emit, s.middleware)
	}

	d := emit.NewDispatcher(backend, append([]emit.DispatcherOption{emit.WithLogger(s.logger)}, opts...)...)
	results := d.Dispatch(ctx, jobs)
	return results, emit.Err(results)
}
