package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/shipwright/internal/changeset"
	"git.home.luguber.info/inful/shipwright/internal/component"
	"git.home.luguber.info/inful/shipwright/internal/config"
)

// ClassifyCmd implements the 'classify' command: a dry run of the
// change-set resolver and classifier.
type ClassifyCmd struct {
	Repo    string `short:"r" help:"Path to the repository working copy" default:"."`
	Prev    string `help:"Previous commit ref"`
	Current string `help:"Current commit ref" default:"HEAD"`
}

func (c *ClassifyCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	cs := changeset.NewResolver(c.Repo).Resolve(context.Background(), c.Prev, c.Current)
	if cs.IsAll() {
		fmt.Println("Change set: ALL (full rebuild)")
	} else {
		fmt.Printf("Change set: %d path(s)\n", len(cs.Paths()))
		for _, p := range cs.Paths() {
			fmt.Printf("  %s\n", p)
		}
	}

	affected := component.Classify(cs, cfg.ComponentSpecs())
	for _, spec := range cfg.ComponentSpecs() {
		marker := " "
		if affected.Affected(spec.ID) {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, spec.ID)
	}
	if !affected.Any() {
		fmt.Println("No components affected; a run would be a no-op.")
	}
	return nil
}
