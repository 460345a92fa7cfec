// Package main is the single-binary entrypoint for Habit King.
package main

import "github.com/habit-king/habitking/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
