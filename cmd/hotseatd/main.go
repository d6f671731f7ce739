package main

import (
	"flag"
	"fmt"
	"os"

	"hotseatd/internal/di"
	"hotseatd/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "path to the configuration file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "enable debug logging to the console")
	flag.Parse()

	if _, err := di.InitApp(flags); err != nil {
		fmt.Fprintf(os.Stderr, "hotseatd: %s\n", err)
		os.Exit(1)
	}
}
