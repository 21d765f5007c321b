package main

import (
	"github.com/spf13/cobra"

	"github.com/teslashibe/go-panorama/internal/config"
	"github.com/teslashibe/go-panorama/internal/log"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "vrplayer",
	Short:        "Panoramic video player server",
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
}

// loadConfig reads the config and sets up logging from it
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	log.Init(cfg.Log.Level)
	return cfg, nil
}
