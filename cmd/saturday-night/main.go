package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/drewfsc/saturday-night/internal/adapters/driving/cli"
	"github.com/drewfsc/saturday-night/internal/app"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, error) {
	a, err := app.New(ctx, app.Options{
		ConfigDir: opts.ConfigDir,
		Version:   opts.Version,
	})
	if err != nil {
		return nil, err
	}

	return &cli.Services{
		Dispatcher:  a,
		Interpreter: a,
		Settings:    a.Settings(),
		Watch:       a.Watch,
		Close:       a.Close,
	}, nil
}
