package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	dotenv "github.com/joho/godotenv"

	"github.com/hasbyte1/hash-audit/internal/app"
)

func main() {
	_ = dotenv.Load()

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		os.Interrupt,
	)

	err := app.New(app.NewConfig()).RunContext(ctx, os.Args)
	cancel()

	if err != nil {
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(app.ExitCode(err))
	}
}
