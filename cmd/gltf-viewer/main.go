package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gltf-viewer/internal/logging"
	"gltf-viewer/viewer"
)

var (
	configPath string
	logLevel   string
	devLog     bool
)

var rootCmd = &cobra.Command{
	Use:   "gltf-viewer",
	Short: "View glTF models and inspect their bounding boxes",
	Long: `gltf-viewer loads glTF 2.0 files (.gltf or .glb) into an OpenGL scene.
The view command opens an interactive window; bounds prints the world-space
boxes of every mesh node without opening one.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "YAML config file")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVar(&devLog, "dev", false, "human-readable development logging")
}

// loadConfig reads --config, if given, and applies the global flags on top.
func loadConfig(cmd *cobra.Command) (viewer.Config, error) {
	cfg := viewer.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = viewer.LoadConfigFile(configPath); err != nil {
			return viewer.Config{}, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("dev") {
		cfg.Log.Dev = devLog
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg viewer.Config) (*zap.Logger, error) {
	return logging.New(cfg.Log.Level, cfg.Log.Dev)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
