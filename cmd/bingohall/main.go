package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Server  ServerCmd        `cmd:"" help:"Run the bingo server"`
	Verify  VerifyCmd        `cmd:"" help:"Verify a revealed seed against a published commitment hash"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("bingohall"),
		kong.Description("Real-time multiplayer bingo server with verifiably fair draws"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
