package cmd

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tuteke2023/bankparse/internal/api"
	"github.com/tuteke2023/bankparse/internal/vlm"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// Optional .env for local runs; deployed environments set real env vars.
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	var client vlm.Client
	switch cfg.VLM.Provider {
	case "", "none":
	case "http":
		client = vlm.NewHTTPClient(cfg.VLM.Endpoint)
	case "gemini":
		client, err = vlm.NewGeminiClient(context.Background(), cfg.VLM.Model)
		if err != nil {
			return err
		}
	}

	h := &api.Handler{
		Engine:      engine,
		VLM:         client,
		BodyLimitMB: cfg.Server.BodyLimitMB,
	}
	app := h.NewApp()

	fmt.Fprintf(cmd.OutOrStdout(), "listening on :%d\n", cfg.Server.Port)
	return app.Listen(fmt.Sprintf(":%d", cfg.Server.Port))
}
