package commands

import (
	"log/slog"
	"os"

	"github.com/go-git/go-git/v5"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"shipwright.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Run      RunCmd      `cmd:"" help:"Classify changes, resolve a version and run the affected component lanes"`
	Classify ClassifyCmd `cmd:"" help:"Show which components a commit range affects, without running anything"`
	Version  VersionCmd  `cmd:"" help:"Resolve and print the semantic version for the current commit"`
	Init     InitCmd     `cmd:"" help:"Initialize a starter configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// currentBranch returns the checked-out branch for the repository, or
// empty when it cannot be determined (detached HEAD, missing repo).
func currentBranch(repoPath string) string {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return ""
	}
	head, err := repo.Head()
	if err != nil || !head.Name().IsBranch() {
		return ""
	}
	return head.Name().Short()
}

// resolveBranch prefers the explicit flag, then the CI-provided env var,
// then the repository HEAD.
func resolveBranch(flag, repoPath string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv("BRANCH_NAME"); env != "" {
		return env
	}
	return currentBranch(repoPath)
}
