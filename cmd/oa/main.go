package main

import (
	"fmt"
	"log/slog"
	"os"
)

func main() {
	level := slog.LevelInfo
	if os.Getenv("OPSAUDIT_DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
