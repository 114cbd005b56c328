// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package makefs creates filesystems with the mkfs.<kind> family of tools.
package makefs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/siderolabs/go-cmd/pkg/cmd"
)

// DefaultToolPrefix is the prefix of filesystem creation tools.
const DefaultToolPrefix = "mkfs"

// Runner runs an external tool and returns its captured output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, name string, args ...string) (string, error)

// Run implements Runner.
func (f RunnerFunc) Run(ctx context.Context, name string, args ...string) (string, error) {
	return f(ctx, name, args...)
}

// DefaultRunner executes tools on the host.
var DefaultRunner Runner = RunnerFunc(cmd.RunContext)

// Option to control makefs settings.
type Option func(*Options)

// Options for makefs.
type Options struct {
	Runner     Runner
	ToolPrefix string
	Printf     func(string, ...any)
}

// WithRunner sets the tool runner.
func WithRunner(runner Runner) Option {
	return func(o *Options) {
		o.Runner = runner
	}
}

// WithToolPrefix sets the tool prefix, mkfs by default.
func WithToolPrefix(prefix string) Option {
	return func(o *Options) {
		o.ToolPrefix = prefix
	}
}

// WithPrintf sets the progress printer.
func WithPrintf(printf func(string, ...any)) Option {
	return func(o *Options) {
		o.Printf = printf
	}
}

// NewDefaultOptions builds options with specified setters applied.
func NewDefaultOptions(setters ...Option) Options {
	opt := Options{
		Runner:     DefaultRunner,
		ToolPrefix: DefaultToolPrefix,
		Printf:     func(string, ...any) {},
	}

	for _, o := range setters {
		o(&opt)
	}

	return opt
}

// Tool returns the name of the tool which creates kind filesystems.
func Tool(prefix, kind string) string {
	return prefix + "." + kind
}

// Make creates a kind filesystem on device by running "<prefix>.<kind> <device>".
//
// The captured output is returned, and is part of the error on failure.
func Make(ctx context.Context, kind, device string, setters ...Option) (string, error) {
	if device == "" {
		return "", errors.New("missing path to device")
	}

	if kind == "" || strings.ContainsAny(kind, "/ \t") {
		return "", fmt.Errorf("invalid filesystem kind %q", kind)
	}

	opts := NewDefaultOptions(setters...)
	tool := Tool(opts.ToolPrefix, kind)

	opts.Printf("creating %s filesystem on %s", kind, device)

	output, err := opts.Runner.Run(ctx, tool, device)
	if err != nil {
		return output, fmt.Errorf("%s %s failed: %w\n%s", tool, device, err, output)
	}

	return output, nil
}
