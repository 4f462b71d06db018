package main

import (
	"embed"
	"os"

	"github.com/klabast/wb-services/event-timeline/internal/commands"
)

//go:embed static/*
var staticFiles embed.FS

func main() {
	if err := commands.NewRootCmd(staticFiles).Execute(); err != nil {
		os.Exit(1)
	}
}
