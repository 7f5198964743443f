// Package main implements the entry point for the renshu server, which
// drives spaced-repetition study sessions and delivers review outcomes
// to the remote review store, falling back to a durable offline queue
// when the network is down.
package main

import (
	"context"
	"log"
)

func main() {
	ctx := context.Background()

	app, err := initializeApp(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Drain reviews stranded by a previous run, then keep retrying in
	// the background.
	app.flushRunner.Start()

	router := app.setupRouter()
	if err := app.startHTTPServer(ctx, router); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
