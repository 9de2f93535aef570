package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/keyfold/internal/buildinfo"
	"github.com/dmitrijs2005/keyfold/internal/cli"
	"github.com/dmitrijs2005/keyfold/internal/config"
	"github.com/dmitrijs2005/keyfold/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewJSON(os.Stderr)

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
