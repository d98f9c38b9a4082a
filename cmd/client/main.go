package main

import (
	"context"
	"log"

	"github.com/clipfeed/clipfeed/internal/client/cli"
	"github.com/clipfeed/clipfeed/internal/client/config"
)

func main() {
	ctx := context.Background()

	cfg := config.LoadConfig()
	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	app.Run(ctx)
}
