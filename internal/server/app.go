// Package server wires the backend together: database, blob storage, SMS
// delivery, services, and the HTTP API.
package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/clipfeed/clipfeed/internal/logging"
	"github.com/clipfeed/clipfeed/internal/server/blobstore"
	"github.com/clipfeed/clipfeed/internal/server/config"
	"github.com/clipfeed/clipfeed/internal/server/httpapi"
	"github.com/clipfeed/clipfeed/internal/server/repositories/repomanager"
	"github.com/clipfeed/clipfeed/internal/server/services"
	"github.com/clipfeed/clipfeed/internal/server/shared/db"
	"github.com/clipfeed/clipfeed/internal/server/sms"
)

type App struct {
	config *config.Config
	logger logging.Logger
}

func NewApp(c *config.Config) *App {
	return &App{
		config: c,
		logger: logging.NewJSON(os.Stderr),
	}
}

// Run starts the server and blocks until SIGINT/SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := db.InitDatabase(ctx, a.config.DatabaseDSN)
	if err != nil {
		a.logger.Error(ctx, "error initializing database", "error", err)
		return err
	}
	defer conn.Close()

	blobs, err := blobstore.NewS3Store(ctx, blobstore.Options{
		RootUser:     a.config.S3RootUser,
		RootPassword: a.config.S3RootPassword,
		Bucket:       a.config.S3Bucket,
		Region:       a.config.S3Region,
		BaseEndpoint: a.config.S3BaseEndpoint,
		URLValidity:  a.config.BlobURLValidity,
	})
	if err != nil {
		a.logger.Error(ctx, "error initializing blob storage", "error", err)
		return err
	}

	var sender sms.Sender
	if a.config.SMSGatewayURL != "" {
		sender = sms.NewGatewayClient(a.config.SMSGatewayURL, a.config.SMSAPIKey)
	} else {
		sender = sms.NewLogSender(a.logger)
	}

	repos := repomanager.NewPostgres()

	verification := services.NewVerificationService(conn, repos, sender, a.logger,
		services.VerificationConfig{
			CodeTTL:              a.config.CodeTTL,
			ResendWindow:         a.config.ResendWindow,
			MaxResends:           a.config.MaxResends,
			MaxConfirmAttempts:   a.config.MaxConfirmAttempts,
			SecretKey:            a.config.SecretKey,
			TokenValidity:        a.config.AccessTokenValidityDuration,
			RefreshTokenValidity: a.config.RefreshTokenValidityDuration,
		})
	videos := services.NewVideoService(conn, repos, blobs, a.logger)

	handlers := httpapi.NewHandlers(verification, videos)
	srv := httpapi.NewServer(a.config.EndpointAddrHTTP, handlers, a.config.SecretKey, a.logger)

	if err := srv.Run(ctx); err != nil {
		a.logger.Error(ctx, "http server error", "error", err)
		return err
	}

	a.logger.Info(ctx, "server stopped")
	return nil
}
