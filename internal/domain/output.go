// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

import "time"

// OutputPort defines the interface for presenting command results.
type OutputPort interface {
	// Success outputs a success message with optional structured data
	Success(message string, data interface{}) error

	// Error outputs an error message
	Error(message string) error

	// Info outputs an informational message
	Info(message string) error

	// Table outputs tabular data
	Table(headers []string, rows [][]string) error

	// IsQuiet returns true if output should be suppressed
	IsQuiet() bool
}

// StepStatus is the outcome of a single orchestrator step.
type StepStatus string

// Step outcomes.
const (
	StepOK      StepStatus = "ok"
	StepSkipped StepStatus = "skipped"
	StepWarning StepStatus = "warning"
	StepFailed  StepStatus = "failed"
)

// StepResult records what happened in one step.
type StepResult struct {
	Name    string     `json:"name"`
	Status  StepStatus `json:"status"`
	Message string     `json:"message,omitempty"`
}

// Summary is the outcome of an orchestrator run.
type Summary struct {
	Facts     SystemFacts   `json:"system"`
	Intent    Intent        `json:"intent"`
	Steps     []StepResult  `json:"steps"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

// Add appends a step result.
func (s *Summary) Add(result StepResult) {
	s.Steps = append(s.Steps, result)
}

// Count returns the number of steps with the given status.
func (s *Summary) Count(status StepStatus) int {
	n := 0

	for _, step := range s.Steps {
		if step.Status == status {
			n++
		}
	}

	return n
}

// Failed reports whether any step failed.
func (s *Summary) Failed() bool {
	return s.Count(StepFailed) > 0
}
