// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

// Package vcs updates a local git checkout from its remote: fast-forward when
// possible, a merge commit otherwise, and exit code 2 when the merge conflicts.
package vcs

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/janderssonse/devsetup/internal/domain"
	"github.com/rs/zerolog"
)

// DefaultRemote is used when no remote is given.
const DefaultRemote = "origin"

const stashMessage = "devsetup autostash"

// Precondition errors.
var (
	ErrNotRepository = errors.New("not inside a git work tree")
	ErrNoRemote      = errors.New("remote not configured")
	ErrDetachedHead  = errors.New("HEAD is detached, pass --branch")
	ErrDirtyTree     = errors.New("working tree has uncommitted changes")
)

// Options select what Sync merges.
type Options struct {
	// Dir is the checkout; empty means the current directory.
	Dir        string
	Remote     string
	Branch     string
	AllowDirty bool
	Autostash  bool
	PushAfter  bool
}

// Result describes what Sync did.
type Result struct {
	Remote      string   `json:"remote"`
	Branch      string   `json:"branch"`
	FastForward bool     `json:"fast_forward"`
	Stashed     bool     `json:"stashed"`
	Pushed      bool     `json:"pushed"`
	Conflicts   []string `json:"conflicts,omitempty"`
}

// Syncer runs git through the command runner.
type Syncer struct {
	commandRunner domain.CommandRunner
	logger        zerolog.Logger
}

// NewSyncer creates a syncer.
func NewSyncer(commandRunner domain.CommandRunner, logger zerolog.Logger) *Syncer {
	return &Syncer{
		commandRunner: commandRunner,
		logger:        logger,
	}
}

// Sync fetches the remote and merges <remote>/<branch> into the current branch.
// Precondition failures are ExitErrors with code 1 and nothing changed; conflicts
// leave the merge in progress and return an ExitError with code 2.
func (s *Syncer) Sync(ctx context.Context, opts Options) (*Result, error) {
	if opts.Remote == "" {
		opts.Remote = DefaultRemote
	}

	result := &Result{Remote: opts.Remote, Branch: opts.Branch}

	if err := s.preconditions(ctx, opts, result); err != nil {
		return result, domain.NewExitError(domain.ExitFatal, "cannot sync", err)
	}

	dirty, err := s.dirty(ctx, opts.Dir)
	if err != nil {
		return result, domain.NewExitError(domain.ExitFatal, "cannot read status", err)
	}

	if dirty {
		switch {
		case opts.Autostash:
			if err := s.git(ctx, opts.Dir, "stash", "push", "--include-untracked", "--message", stashMessage); err != nil {
				return result, domain.NewExitError(domain.ExitFatal, "autostash failed", err)
			}

			result.Stashed = true
		case !opts.AllowDirty:
			return result, domain.NewExitError(domain.ExitFatal, "cannot sync", ErrDirtyTree)
		}
	}

	if err := s.git(ctx, opts.Dir, "fetch", opts.Remote); err != nil {
		return result, s.abort(ctx, opts, result, domain.NewExitError(domain.ExitFatal, "fetch failed", err))
	}

	upstream := opts.Remote + "/" + result.Branch

	if err := s.merge(ctx, opts.Dir, upstream, result); err != nil {
		return result, s.abort(ctx, opts, result, err)
	}

	if result.Stashed {
		if err := s.git(ctx, opts.Dir, "stash", "pop"); err != nil {
			return result, s.conflictOr(ctx, opts.Dir, result, "restoring autostash", err)
		}
	}

	if opts.PushAfter {
		if err := s.git(ctx, opts.Dir, "push", opts.Remote, "HEAD:"+result.Branch); err != nil {
			return result, domain.NewExitError(domain.ExitFatal, "push failed", err)
		}

		result.Pushed = true
	}

	return result, nil
}

func (s *Syncer) preconditions(ctx context.Context, opts Options, result *Result) error {
	inside, err := s.output(ctx, opts.Dir, "rev-parse", "--is-inside-work-tree")
	if err != nil || strings.TrimSpace(inside) != "true" {
		return ErrNotRepository
	}

	remotes, err := s.output(ctx, opts.Dir, "remote")
	if err != nil {
		return err
	}

	if !slices.Contains(strings.Fields(remotes), opts.Remote) {
		return fmt.Errorf("%w: %s", ErrNoRemote, opts.Remote)
	}

	if result.Branch != "" {
		return nil
	}

	head, err := s.output(ctx, opts.Dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return err
	}

	result.Branch = strings.TrimSpace(head)
	if result.Branch == "" || result.Branch == "HEAD" {
		return ErrDetachedHead
	}

	return nil
}

func (s *Syncer) dirty(ctx context.Context, dir string) (bool, error) {
	status, err := s.output(ctx, dir, "status", "--porcelain")
	if err != nil {
		return false, err
	}

	return strings.TrimSpace(status) != "", nil
}

// merge tries a fast-forward first and falls back to a merge commit.
func (s *Syncer) merge(ctx context.Context, dir, upstream string, result *Result) error {
	if err := s.git(ctx, dir, "merge", "--ff-only", upstream); err == nil {
		result.FastForward = true

		return nil
	}

	s.logger.Debug().Str("upstream", upstream).Msg("fast-forward not possible, merging")

	if err := s.git(ctx, dir, "merge", "--no-ff", "--no-edit", upstream); err != nil {
		return s.conflictOr(ctx, dir, result, "merge", err)
	}

	return nil
}

// conflictOr reports unmerged paths as a conflict (exit 2) and anything else as fatal.
func (s *Syncer) conflictOr(ctx context.Context, dir string, result *Result, what string, cause error) error {
	unmerged, err := s.output(ctx, dir, "diff", "--name-only", "--diff-filter=U")
	if err == nil {
		result.Conflicts = strings.Fields(unmerged)
	}

	if len(result.Conflicts) > 0 {
		return domain.NewExitError(domain.ExitConflict,
			what+" finished with conflicts in "+strings.Join(result.Conflicts, ", ")+", resolve them and commit",
			domain.ErrMergeConflict)
	}

	return domain.NewExitError(domain.ExitFatal, what+" failed", cause)
}

// abort restores an autostash after a failure that left the tree untouched.
// With conflicts the stash is kept, since popping it onto a conflicted tree would fail.
func (s *Syncer) abort(ctx context.Context, opts Options, result *Result, err error) error {
	if !result.Stashed || len(result.Conflicts) > 0 {
		return err
	}

	if popErr := s.git(ctx, opts.Dir, "stash", "pop"); popErr != nil {
		s.logger.Warn().Err(popErr).Msg("autostash could not be restored, see git stash list")
	}

	return err
}

func (s *Syncer) git(ctx context.Context, dir string, args ...string) error {
	return s.commandRunner.Execute(ctx, "git", withDir(dir, args)...)
}

func (s *Syncer) output(ctx context.Context, dir string, args ...string) (string, error) {
	return s.commandRunner.ExecuteWithOutput(ctx, "git", withDir(dir, args)...)
}

func withDir(dir string, args []string) []string {
	if dir == "" {
		return args
	}

	return append([]string{"-C", dir}, args...)
}
