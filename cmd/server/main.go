package main

import (
	"log"

	"github.com/clipfeed/clipfeed/internal/server"
	"github.com/clipfeed/clipfeed/internal/server/config"
)

func main() {
	cfg := config.LoadConfig()
	app := server.NewApp(cfg)
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
