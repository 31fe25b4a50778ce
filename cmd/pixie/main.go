// Pixie is the operator CLI for the PhonePixie chat pipeline.
//
// Usage:
//
//	pixie ask "Best camera phone under 30k"
//	pixie catalog
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/krishanki/PhonePixie/internal/app"
	"github.com/krishanki/PhonePixie/internal/catalog"
	"github.com/krishanki/PhonePixie/internal/config"
	"github.com/krishanki/PhonePixie/internal/pipeline"
	"github.com/krishanki/PhonePixie/internal/synth"
	"github.com/krishanki/PhonePixie/pkg/logger"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	cliApp := &cli.App{
		Name:    "pixie",
		Usage:   "Run PhonePixie chat turns and inspect the catalog from the terminal",
		Version: version,

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: "configs/config.yaml",
				Usage: "Path to configuration file",
			},
			&cli.StringFlag{
				Name:  "env",
				Value: ".env",
				Usage: "Path to .env file",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"PIXIE_LOG_LEVEL"},
			},
		},

		Commands: []*cli.Command{
			askCommand(),
			catalogCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) (*config.Config, *logrus.Logger, error) {
	// a missing .env is fine
	_ = godotenv.Load(c.String("env"))

	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, nil, err
	}
	cfg.Logging.Level = c.String("log-level")
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "stdout"

	log, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log.SetOutput(os.Stderr)
	return cfg, log, nil
}

func askCommand() *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Send one message through the chat pipeline",
		ArgsUsage: "<message>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the full response body as JSON",
			},
		},
		Action: runAsk,
	}
}

func runAsk(c *cli.Context) error {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return err
	}
	a, err := app.New(cfg, nil, log)
	if err != nil {
		return err
	}

	text := strings.Join(c.Args().Slice(), " ")
	resp, err := a.Pipeline.Run(context.Background(), pipeline.Input{Text: text, ClientKey: "cli"})
	if err != nil {
		return err
	}

	if c.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	fmt.Fprintf(os.Stderr, "type: %s, phones: %d\n\n", resp.Type, len(resp.Phones))
	fmt.Println(resp.Message)
	for _, p := range resp.AdditionalPhones {
		fmt.Printf("also consider: %s - %s\n", p.Model, synth.FormatPrice(p.Price))
	}
	return nil
}

func catalogCommand() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Print catalog snapshot statistics",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "path",
				Usage: "Catalog snapshot to inspect (defaults to catalog.path)",
			},
		},
		Action: runCatalog,
	}
}

func runCatalog(c *cli.Context) error {
	cfg, _, err := loadConfig(c)
	if err != nil {
		return err
	}
	path := c.String("path")
	if path == "" {
		path = cfg.Catalog.Path
	}

	store, err := catalog.Open(path)
	if err != nil {
		return err
	}
	phones, err := store.Snapshot()
	if err != nil {
		return err
	}

	byBrand := make(map[string]int)
	var with5G int
	lo, hi := 0.0, 0.0
	for i, p := range phones {
		byBrand[strings.ToLower(strings.TrimSpace(p.BrandName))]++
		if p.Has5G {
			with5G++
		}
		if i == 0 || p.Price < lo {
			lo = p.Price
		}
		if p.Price > hi {
			hi = p.Price
		}
	}

	fmt.Printf("📱 %d phones from %d brands in %s\n", store.Len(), len(store.Brands()), path)
	if len(phones) == 0 {
		return nil
	}
	fmt.Printf("💰 Prices %s to %s, %d with 5G\n\n", synth.FormatPrice(lo), synth.FormatPrice(hi), with5G)

	brands := store.Brands()
	sort.SliceStable(brands, func(i, j int) bool {
		return byBrand[brands[i]] > byBrand[brands[j]]
	})
	for _, b := range brands {
		fmt.Printf("  %-12s %d\n", b, byBrand[b])
	}
	return nil
}
