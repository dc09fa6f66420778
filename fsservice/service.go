package fsservice

import (
	"context"
	"log/slog"
)

// Service is the facade every tool handler calls through. It owns the
// dynamic allow-list and the read-only gate; individual components
// (traversal, archive, edit, search, duplicates, io) are Service methods
// that route every client-supplied path through Service.validate (or
// validateWrite), the only place sandboxing happens.
type Service struct {
	roots      *AllowedRoots
	readOnly   bool
	logger     *slog.Logger
	skippedMsg string
}

// Option configures a Service at construction time.
type Option func(*Service)

// WithLogger overrides the service's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithReadOnly puts the service in read-only mode, rejecting every
// mutating operation before path validation even runs.
func WithReadOnly(readOnly bool) Option {
	return func(s *Service) { s.readOnly = readOnly }
}

// New builds a Service from an initial set of allowed root directories.
// Directories that don't exist are silently dropped; callers can read
// SkippedRootsWarning to surface that to an operator.
func New(roots []string, opts ...Option) *Service {
	allowed, skipped := NewAllowedRoots(roots)
	s := &Service{
		roots:  allowed,
		logger: slog.New(discardHandler{}),
	}
	if skipped > 0 {
		s.skippedMsg = newError(ErrNotFound, "%d provided root(s) were not valid directories and were skipped", skipped).Error()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SkippedRootsWarning returns a non-empty message if one or more roots
// given at construction time were skipped for not being directories.
func (s *Service) SkippedRootsWarning() string {
	return s.skippedMsg
}

// AllowedRoots returns a copy of the directories currently enforced.
func (s *Service) AllowedRoots() []string {
	return s.roots.Snapshot()
}

// ReadOnly reports whether mutating operations are currently rejected.
func (s *Service) ReadOnly() bool {
	return s.readOnly
}

// SetReadOnly toggles read-only mode at runtime.
func (s *Service) SetReadOnly(readOnly bool) {
	s.readOnly = readOnly
}

// UpdateRoots replaces the allow-list, used by the dynamic-roots
// protocol when a client reports its roots changed. Paths are
// home-expanded, deduplicated, and filtered to existing directories;
// everything else is dropped silently here and surfaced to the caller
// via the returned skipped count.
func (s *Service) UpdateRoots(paths []string) (applied []string, skipped int) {
	skipped = s.roots.Replace(paths)
	applied = s.roots.Snapshot()
	s.logger.Info("allowed roots updated", "count", len(applied), "skipped", skipped)
	return applied, skipped
}

// validate resolves a client-supplied path against the sandbox. It is
// the single choke point every component function is routed through.
func (s *Service) validate(path string) (string, error) {
	return s.roots.Validate(path)
}

// validateWrite is like validate but additionally rejects the call
// outright when the service is in read-only mode, before the path is
// even resolved — a denial for policy reasons should never leak
// information about whether the path exists or is in-sandbox.
func (s *Service) validateWrite(path string) (string, error) {
	if s.readOnly {
		return "", &ServiceError{Kind: ErrWriteDenied, Detail: "server is running in read-only mode"}
	}
	return s.validate(path)
}

// log is a convenience accessor used by component files
// that want to log without threading context.Context through every call.
func (s *Service) log() *slog.Logger { return s.logger }

// discardHandler is a slog.Handler that drops every record; used as the
// zero-value logger so a Service is usable without explicit wiring.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs(attrs []slog.Attr) slog.Handler   { return discardHandler{} }
func (discardHandler) WithGroup(name string) slog.Handler         { return discardHandler{} }
