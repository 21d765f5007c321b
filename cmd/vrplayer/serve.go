package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-panorama/internal/log"
	"github.com/teslashibe/go-panorama/pkg/web"
)

var (
	servePort   string
	serveStatic string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the player page and session WebSocket",
	RunE:  serve,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "HTTP port (overrides config)")
	serveCmd.Flags().StringVar(&serveStatic, "static", "", "directory with the player page to serve at / (overrides config; none by default)")
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Server.Port = servePort
	}
	if serveStatic != "" {
		cfg.Server.StaticDir = serveStatic
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("🎥 VR Player v" + version)
	fmt.Printf("   http://localhost:%s\n", cfg.Server.Port)
	fmt.Println()

	server := web.NewServer(cfg, version)
	server.StartAsync()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
