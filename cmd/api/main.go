package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"users-api/cmd/api/app"
	"users-api/cmd/api/server"
)

func main() {
	a, err := app.New(context.Background())
	if err != nil {
		log.Fatalf("application failed to start: %v", err)
	}

	ctx, stop := server.WithSignal(context.Background(), a.Logger)
	defer stop()

	if err := a.Run(ctx); err != nil {
		a.Logger.Error("application exited with error", zap.Error(err))
		stop()
		log.Fatalf("application exited with error: %v", err)
	}
}
