package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Goldziher/kreuzberg-go/internal/server"
	"github.com/Goldziher/kreuzberg-go/pkg/kreuzberg"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP extraction API",
	Long: `Start an HTTP API server exposing the extraction engine.

Endpoints:
  - POST   /extract       - Extract one or more uploaded files
  - GET    /health         - Health check
  - GET    /info           - Backend/version info
  - GET    /cache/stats    - Extraction cache statistics
  - DELETE /cache/clear    - Clear the extraction cache

Examples:
  kreuzberg serve
  kreuzberg serve --address :9000 --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", ":8080", "Server listen address")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode (gin request logging)")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 5*time.Minute, "HTTP write timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	opts := kreuzberg.DefaultOptions()
	if cacheDir != "" {
		opts.CacheDir = cacheDir
	}
	if maxConcurrent > 0 {
		opts.MaxConcurrent = maxConcurrent
	}

	engine, err := kreuzberg.New(opts)
	if err != nil {
		return fmt.Errorf("failed to initialize extraction engine: %w", err)
	}

	config := &server.Config{
		Address:      serverAddr,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		Debug:        serverDebug,
	}

	srv := server.NewServer(config, engine)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		fmt.Println("\nShutting down server...")
		os.Exit(0)
	}()

	fmt.Printf("Starting server on %s (cache: %s)\n", serverAddr, opts.CacheDir)
	return srv.Run()
}
