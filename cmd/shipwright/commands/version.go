package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/shipwright/internal/config"
	"git.home.luguber.info/inful/shipwright/internal/version"
)

// VersionCmd implements the 'version' command: resolve and print the
// semantic version the next run would use.
type VersionCmd struct {
	Repo   string `short:"r" help:"Path to the repository working copy" default:"."`
	Branch string `short:"b" help:"Branch to resolve for (default: BRANCH_NAME env or repository HEAD)"`
	Info   bool   `help:"Also print the oracle's verbose diagnostic output"`
}

func (v *VersionCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	oracle := &version.ExecOracle{
		Command: cfg.Versioning.OracleCommand,
		Args:    cfg.Versioning.OracleArgs,
		Dir:     v.Repo,
		Timeout: cfg.OracleTimeout(),
	}

	if v.Info {
		info, infoErr := oracle.VerboseInfo(ctx)
		if infoErr != nil {
			fmt.Printf("verbose info unavailable: %v\n", infoErr)
		} else {
			fmt.Println(info)
		}
	}

	branch := resolveBranch(v.Branch, v.Repo)
	rv := version.NewResolver(oracle, branch, cfg.BuildCounter()).Resolve(ctx)
	if rv.Fallback {
		fmt.Printf("%s (FALLBACK build-counter version, branch %s)\n", rv.Value, rv.Branch)
	} else {
		fmt.Printf("%s (branch %s)\n", rv.Value, rv.Branch)
	}
	return nil
}
