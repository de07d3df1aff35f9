package main

import (
	"embed"
	"log"

	"github.com/Zer0phucks/pubhub-connect/cmd"
)

//go:embed migrations
var embeddedMigrations embed.FS

func main() {
	cmd.EmbeddedMigrations = embeddedMigrations

	if err := cmd.RootCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}
