package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"randpost/internal/app"
	"randpost/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	var opts app.Options
	flag.StringVar(&opts.ConfigPath, "config", config.DefaultPath, "path to settings (yaml or json)")
	flag.StringVar(&opts.EnvFile, "env", "", "dotenv file to load (default "+config.DefaultEnvFile+" when present)")
	flag.StringVar(&opts.StatePath, "state", "", "override storage.path")
	flag.BoolVar(&opts.DryRun, "dry-run", false, "select a message but do not post or save")
	flag.Uint64Var(&opts.Seed, "seed", 0, "seed for the random draw (0 = clock)")
	flag.Parse()
	// An explicitly named env file must exist.
	opts.EnvRequired = opts.EnvFile != ""

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(opts)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	res, err := a.Run(ctx)
	if err != nil {
		return fail(err)
	}
	if res.DryRun {
		fmt.Println(res.MessageID)
	}
	return app.ExitOK
}

func fail(err error) int {
	code, class := app.Classify(err)
	fmt.Fprintf(os.Stderr, "%s: %v\n", class, err)
	return code
}
