// Package cli is the terminal presentation layer: it renders Session and
// UploadAttempt state and forwards user actions to the core services.
package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/clipfeed/clipfeed/internal/client/client"
	"github.com/clipfeed/clipfeed/internal/client/config"
	"github.com/clipfeed/clipfeed/internal/client/feed"
	"github.com/clipfeed/clipfeed/internal/client/providers/httpapi"
	"github.com/clipfeed/clipfeed/internal/client/repositories/feedcache"
	"github.com/clipfeed/clipfeed/internal/client/repositories/localstate"
	"github.com/clipfeed/clipfeed/internal/client/session"
	"github.com/clipfeed/clipfeed/internal/client/upload"
	"github.com/clipfeed/clipfeed/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	config   *config.Config
	session  *session.Controller
	pipeline *upload.Pipeline
	feed     *feed.Service
	logger   logging.Logger
	reader   *bufio.Reader
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stderr)

	db, err := client.InitDatabase(ctx, c.DatabaseFile)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	state := localstate.NewSQLiteRepository(db)
	cache := feedcache.NewSQLiteRepository(db)
	api := httpapi.NewClient(ctx, c.APIBaseURL, state, logger)

	sc := session.NewController(api, session.Config{DefaultCountryPrefix: c.DefaultCountryPrefix}, logger)
	pipeline := upload.NewPipeline(api, api, api, nil, logger)
	feedSvc := feed.NewService(api, cache, logger)

	return &App{
		config:   c,
		session:  sc,
		pipeline: pipeline,
		feed:     feedSvc,
		logger:   logger,
		reader:   bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.session.Close()
	a.Root(ctx)
}
