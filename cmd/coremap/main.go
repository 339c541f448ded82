package main

import (
	"embed"
	"fmt"
	"io/fs"
	"os"

	"coremap/internal/cli"
)

//go:embed web/*
var webFS embed.FS

func main() {
	webContent, err := fs.Sub(webFS, "web")
	if err != nil {
		fmt.Fprintf(os.Stderr, "embedded viewer: %v\n", err)
		os.Exit(1)
	}
	if err := cli.Execute(webContent); err != nil {
		os.Exit(1)
	}
}
