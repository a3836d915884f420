package main

import (
	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/shipwright/cmd/shipwright/commands"
)

func main() {
	cli := &commands.CLI{}
	ctx := kong.Parse(cli,
		kong.Name("shipwright"),
		kong.Description("Selective build-and-deploy orchestrator: rebuilds only the components a commit range touched."),
		kong.UsageOnError(),
	)
	// A failed run surfaces as an error here; kong exits non-zero.
	ctx.FatalIfErrorf(ctx.Run(&commands.Global{}, cli))
}
