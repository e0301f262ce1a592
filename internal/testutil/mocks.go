// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

// Package testutil provides test doubles for the domain ports.
package testutil

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/janderssonse/devsetup/internal/domain"
	"github.com/stretchr/testify/mock"
)

// ErrCommandNotFound is returned by FakeRunner.LookPath for unavailable commands.
var ErrCommandNotFound = errors.New("executable file not found in $PATH")

// Call is one command recorded by FakeRunner.
type Call struct {
	Sudo bool
	Name string
	Args []string
}

// Line returns the call as a space-joined command line, with sudo prefixed.
func (c Call) Line() string {
	parts := append([]string{c.Name}, c.Args...)
	if c.Sudo {
		parts = append([]string{"sudo"}, parts...)
	}

	return strings.Join(parts, " ")
}

// FakeRunner implements domain.CommandRunner without running anything.
// Outputs and Failures are keyed by the command line without sudo.
type FakeRunner struct {
	mu sync.Mutex

	Calls     []Call
	Available map[string]bool
	Outputs   map[string]string
	Failures  map[string]error

	// OnExecute runs after a successful Execute or ExecuteSudo, e.g. to make a
	// command available once its installer ran.
	OnExecute func(call Call)
}

// NewFakeRunner creates a runner where the named commands are available.
func NewFakeRunner(available ...string) *FakeRunner {
	r := &FakeRunner{
		Available: make(map[string]bool),
		Outputs:   make(map[string]string),
		Failures:  make(map[string]error),
	}

	for _, name := range available {
		r.Available[name] = true
	}

	return r
}

// Provide marks commands as available.
func (r *FakeRunner) Provide(names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range names {
		r.Available[name] = true
	}
}

// Execute records the call.
func (r *FakeRunner) Execute(_ context.Context, name string, args ...string) error {
	return r.record(Call{Name: name, Args: args})
}

// ExecuteWithOutput records the call and returns the configured output.
func (r *FakeRunner) ExecuteWithOutput(_ context.Context, name string, args ...string) (string, error) {
	call := Call{Name: name, Args: args}
	if err := r.record(call); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.Outputs[call.Line()], nil
}

// ExecuteSudo records the call as privileged.
func (r *FakeRunner) ExecuteSudo(_ context.Context, name string, args ...string) error {
	return r.record(Call{Sudo: true, Name: name, Args: args})
}

// CommandExists reports whether name was made available.
func (r *FakeRunner) CommandExists(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.Available[name]
}

// LookPath returns /usr/bin/<name> for available commands.
func (r *FakeRunner) LookPath(name string) (string, error) {
	if !r.CommandExists(name) {
		return "", ErrCommandNotFound
	}

	return "/usr/bin/" + name, nil
}

// Lines returns every recorded call as a command line.
func (r *FakeRunner) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	lines := make([]string, len(r.Calls))
	for i, call := range r.Calls {
		lines[i] = call.Line()
	}

	return lines
}

// Ran reports whether a call with the given line prefix was recorded.
func (r *FakeRunner) Ran(prefix string) bool {
	for _, line := range r.Lines() {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}

	return false
}

func (r *FakeRunner) record(call Call) error {
	r.mu.Lock()
	r.Calls = append(r.Calls, call)
	err := r.Failures[Call{Name: call.Name, Args: call.Args}.Line()]
	hook := r.OnExecute
	r.mu.Unlock()

	if err != nil {
		return err
	}

	if hook != nil {
		hook(call)
	}

	return nil
}

// MockPackageInstaller mocks the PackageInstaller port.
type MockPackageInstaller struct {
	mock.Mock
}

// Install mocks package installation.
func (m *MockPackageInstaller) Install(ctx context.Context, target domain.Target, facts domain.SystemFacts) error {
	return m.Called(ctx, target, facts).Error(0)
}

// MockSystemProbe mocks the SystemProbe port.
type MockSystemProbe struct {
	mock.Mock
}

// Detect mocks system detection.
func (m *MockSystemProbe) Detect(ctx context.Context) (domain.SystemFacts, error) {
	args := m.Called(ctx)

	facts, _ := args.Get(0).(domain.SystemFacts)

	return facts, args.Error(1)
}

// MockPrompter mocks the Prompter port.
type MockPrompter struct {
	mock.Mock
}

// Confirm mocks a yes/no question.
func (m *MockPrompter) Confirm(title, description string, def bool) (bool, error) {
	args := m.Called(title, description, def)

	return args.Bool(0), args.Error(1)
}

// NopRefresher is a PathRefresher that does nothing.
type NopRefresher struct{}

// Refresh does nothing.
func (NopRefresher) Refresh() error { return nil }
