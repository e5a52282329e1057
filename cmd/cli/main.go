package main

import (
	"context"
	"log"
	"os"

	"github.com/evolveua/queuevault/internal/buildinfo"
	"github.com/evolveua/queuevault/internal/client/cli"
	"github.com/evolveua/queuevault/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
