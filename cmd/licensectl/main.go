package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/makkenzo/license-admin-console/cmd/licensectl/internal/commands"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cli commands.CLI
	cmd := kong.Parse(&cli,
		kong.Name("licensectl"),
		kong.Description("Administer licenses through the License API."),
		kong.Vars{
			"version":        version,
			"defaultBaseURL": commands.DefaultBaseURL,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(cli.Globals(version))
	cmd.FatalIfErrorf(err)
}
