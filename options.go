package malioc

import (
	"time"

	"github.com/gogpu/malioc/backend"
	"github.com/gogpu/malioc/compile"
	"github.com/gogpu/malioc/material"
)

// Option configures a Service during creation.
//
// Example:
//
//	// Compiler from the environment, logging load failures
//	svc, err := malioc.New()
//
//	// Explicit compiler directory, silent when it is missing
//	svc, err := malioc.New(
//		malioc.WithConfig(backend.Config{Dir: "/opt/mali"}),
//		malioc.WithSilent(true),
//	)
type Option func(*options)

// options holds optional configuration for Service creation.
type options struct {
	config    backend.Config
	backend   backend.Backend
	materials material.System
	adapter   compile.Adapter
	poll      time.Duration
	silent    bool
}

// defaultOptions returns the default service options.
func defaultOptions() options {
	return options{
		config: backend.DefaultConfig(),
		poll:   compile.DefaultPollInterval,
	}
}

// WithConfig sets where the compiler manager library is loaded from.
func WithConfig(cfg backend.Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithBackend uses b instead of loading the compiler manager. The Service
// does not release b on Close.
func WithBackend(b backend.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithMaterialSystem sets the cross-compiler used for materials.
// The default is a material.NagaSystem.
func WithMaterialSystem(s material.System) Option {
	return func(o *options) {
		o.materials = s
	}
}

// WithAdapter sets the GLSL adapter used by compile jobs.
func WithAdapter(a compile.Adapter) Option {
	return func(o *options) {
		o.adapter = a
	}
}

// WithPollInterval sets how often a blocking drain polls the scheduler.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		o.poll = d
	}
}

// WithSilent suppresses the error log when the compiler manager cannot be
// loaded.
func WithSilent(silent bool) Option {
	return func(o *options) {
		o.silent = silent
	}
}
