package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/litbundle/cmd/litbundle/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Build     commands.BuildCmd   `cmd:"" help:"Build the entry points and bundles of a package"`
		Rewrite   commands.RewriteCmd `cmd:"" help:"Print the source map path recorded for each source"`
		Remap     commands.RemapCmd   `cmd:"" help:"Rewrite the sources of an existing source map in place"`
		Config    commands.ConfigCmd  `cmd:"" help:"Print the resolved configuration"`
		Debug     bool                `help:"Enable debug mode." env:"LITBUNDLE_DEBUG"`
		Telemetry bool                `help:"Export traces and metrics over OTLP." env:"LITBUNDLE_TELEMETRY"`
		Version   kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("litbundle"),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Telemetry: cli.Telemetry, Version: version})
	cmd.FatalIfErrorf(err)
}
