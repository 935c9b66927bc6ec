package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/templui/spacetraveling/internal/app"
	"github.com/templui/spacetraveling/internal/config"
	"github.com/templui/spacetraveling/internal/logger"
)

func BuildCmd() *cobra.Command {
	var clean bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Export the site as static files (OUTPUT_DIR or S3)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			flush := logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)
			defer flush()

			if clean && !cfg.PublishesToS3() {
				fmt.Println("==> Removing", cfg.OutputDir)
				if err := os.RemoveAll(cfg.OutputDir); err != nil {
					return fmt.Errorf("failed to clean output: %w", err)
				}
			}
			return runBuild(cmd.Context(), cfg)
		},
	}

	cmd.Flags().BoolVar(&clean, "clean", false, "remove the local output directory first")
	return cmd
}

func runBuild(ctx context.Context, cfg *config.Config) error {
	a, err := app.NewContent(cfg)
	if err != nil {
		return err
	}

	builder, err := a.Builder(ctx)
	if err != nil {
		return err
	}

	res, err := builder.Build(ctx)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	fmt.Printf("==> Build %s: %d posts, %d load more fragments, %d pages, %d pruned (%s)\n",
		res.ID, res.Posts, res.Fragments, res.Pages, res.Pruned, res.Duration.Round(time.Millisecond))
	fmt.Println("==> Published for", res.URL)
	return nil
}
