package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"user-view/cmd/userview/app"
	"user-view/cmd/userview/server"
	"user-view/internal/ui/userview"
)

// Globals holds flags shared by every command.
type Globals struct {
	Config string `help:"Directory containing app.env." env:"CONFIG_PATH" default:"." type:"path"`
}

// cli is the command tree parsed by kong.
type cli struct {
	Globals

	Show  showCmd  `cmd:"" default:"1" help:"Mount the view once and print every frame."`
	TUI   tuiCmd   `cmd:"" name:"tui" help:"Run the view as an interactive terminal program."`
	Serve serveCmd `cmd:"" help:"Serve the view over HTTP with a gRPC health endpoint."`
}

// showCmd prints each frame of one mount to stdout.
type showCmd struct{}

// Run mounts the view and prints it.
func (c *showCmd) Run(ctx context.Context, g *Globals) error {
	a, err := app.New(g.Config)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Show(ctx, os.Stdout)
}

// tuiCmd runs the view as a Bubble Tea program.
type tuiCmd struct {
	Once bool `help:"Exit as soon as the view settles."`
}

// Run starts the program and reports a failed view as an error.
func (c *tuiCmd) Run(ctx context.Context, g *Globals) error {
	a, err := app.New(g.Config)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.TUI(ctx, c.Once)
	if err != nil {
		return err
	}
	if failed, ok := s.(userview.Failed); ok {
		return fmt.Errorf("view failed: %w", failed.Reason)
	}
	return nil
}

// serveCmd runs the preview HTTP host and the gRPC health server.
type serveCmd struct{}

// Run serves until the context is canceled.
func (c *serveCmd) Run(ctx context.Context, g *Globals) error {
	a, err := app.New(g.Config)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Run(ctx)
}

func main() {
	var args cli
	kctx := kong.Parse(&args,
		kong.Name("userview"),
		kong.Description("Fetch the current user once and render it."),
		kong.UsageOnError(),
	)

	ctx, stop := server.WithSignal(context.Background())
	defer stop()

	kctx.BindTo(ctx, (*context.Context)(nil))
	err := kctx.Run(&args.Globals)
	stop()
	kctx.FatalIfErrorf(err)
}
