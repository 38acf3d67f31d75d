package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vango-dev/area/internal/config"
	"github.com/vango-dev/area/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "area",
		Short: "Hierarchical area router",
		Long: `area runs a router whose named areas each show one component.

Routes are declared in a YAML manifest. Each area navigates on its
own, with guards that can deny a navigation and lazily loaded
components fetched on first use. The devtools API inspects and
drives the areas over HTTP and WebSocket.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: area.yaml in the working directory or a parent)")

	loadConfig := func() (*config.Config, error) {
		return resolveConfig(configPath)
	}

	rootCmd.AddCommand(
		serveCmd(loadConfig),
		routesCmd(loadConfig),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		errors.Print(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveConfig loads the config file, falls back to defaults when none
// exists, then applies the environment.
func resolveConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.LoadFromWorkingDir()
		if errors.CodeOf(err) == "A060" {
			cfg, err = config.New(), nil
		}
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
