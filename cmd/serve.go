package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	handlerhttp "ragchat/handler/http"
	"ragchat/src/log"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the document chat HTTP server",
	Long:  `The serve command starts an HTTP server exposing document upload, chat and settings APIs`,
	Run:   RunServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer(cmd *cobra.Command, args []string) {
	a, err := buildApp()
	if err != nil {
		log.Error(err, "Failed to build application")
		return
	}
	defer a.close()

	// Log ingestion completions as they happen.
	subCtx, subCancel := context.WithCancel(context.Background())
	defer subCancel()
	ingested, err := a.bus.SubscribeDocumentIngested(subCtx)
	if err != nil {
		log.Error(err, "Failed to subscribe to ingestion events")
		return
	}
	go func() {
		for event := range ingested {
			log.Info("document ingested", "filename", event.Filename, "chunks", event.ChunkCount)
		}
	}()

	handler := handlerhttp.NewHandler(
		a.pipeline,
		a.ingestor,
		a.session,
		a.store,
		a.history,
		a.registry,
		a.collection,
	)

	// Setup gin router
	r := gin.Default()

	// Register routes
	handler.RegisterRoutes(r)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + viper.GetString("server.port"),
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, "Failed to start server")
			return
		}
	}()
	log.Info("Server started", "port", viper.GetString("server.port"), "session", a.session.ID)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Parse shutdown timeout
	timeout, err := time.ParseDuration(viper.GetString("server.shutdown_timeout"))
	if err != nil {
		log.Error(err, "Invalid shutdown timeout, using default 5s")
		timeout = 5 * time.Second
	}

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "Server forced to shutdown")
	}

	log.Info("Server exited")
}
