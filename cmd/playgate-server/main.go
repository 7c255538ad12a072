package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/playgate/internal/infra/buildinfo"
	"github.com/yndnr/playgate/internal/infra/confloader"
	"github.com/yndnr/playgate/internal/server/config"
)

func main() {
	if err := app().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app creates the CLI application. serve is the default action.
func app() *cli.App {
	return &cli.App{
		Name:    "playgate-server",
		Usage:   "Game service front door",
		Version: buildinfo.String(),
		Flags:   configFlags(),
		Action:  serveAction,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Connect to storage and serve HTTP",
				Flags:  configFlags(),
				Action: serveAction,
			},
			{
				Name:  "version",
				Usage: "Show version information",
				Action: func(c *cli.Context) error {
					fmt.Fprintf(c.App.Writer, "playgate-server %s\n", buildinfo.String())
					return nil
				},
			},
			{
				Name:   "check-config",
				Usage:  "Load and verify the configuration, then print it with secrets masked",
				Flags:  configFlags(),
				Action: checkConfigAction,
			},
		},
	}
}

// configFlags returns the flags shared by commands that load configuration.
func configFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to a YAML configuration file",
			EnvVars: []string{"PLAYGATE_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "env-file",
			Usage:   "Path to a dotenv file",
			Value:   confloader.DefaultEnvFile,
			EnvVars: []string{"PLAYGATE_ENV_FILE"},
		},
	}
}

// loadConfig loads configuration from defaults, the optional file, the
// dotenv file and the environment, then verifies it.
func loadConfig(c *cli.Context) (*config.ServerConfig, error) {
	opts := []confloader.Option{confloader.WithEnvFile(c.String("env-file"))}
	if path := c.String("config"); path != "" {
		opts = append(opts, confloader.WithConfigFile(path))
	}

	cfg, err := config.Load(opts...)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func checkConfigAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(config.Sanitize(cfg))
}

func serveAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	return run(c.Context, cfg, c.String("config"))
}
