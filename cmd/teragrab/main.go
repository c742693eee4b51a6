package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"teragrab/internal/browser"
	"teragrab/internal/client"
	"teragrab/internal/config"
	"teragrab/internal/download"
	"teragrab/internal/extract"
	"teragrab/internal/resolve"
	"teragrab/internal/ui"
	"teragrab/internal/utils"
)

func main() {
	cfg := config.NewConfig()
	cfg.ParseFlags()

	if !cfg.Silent {
		printBanner()
	}

	if cfg.ShareURL == "" {
		fmt.Println("Usage: teragrab [flags] <share-url>")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  -o            Output directory (default: videos)")
		fmt.Println("  -endpoints    YAML file overriding share hosts and API bases")
		fmt.Println("  -wait         Seconds to wait for a verification page (default: 15)")
		fmt.Println("  -timeout      Browser stage timeout in seconds (default: 120)")
		fmt.Println("  -interactive  Visible browser window for challenge pages")
		fmt.Println("  -verbose      Print cookies and resolver details")
		fmt.Println("  -silent       No banner")
		os.Exit(1)
	}

	if err := cfg.LoadEndpoints(); err != nil {
		ui.Error("%v", err)
		os.Exit(1)
	}

	// Ctrl-C cancels the context; deferred session teardown inside each
	// stage still runs before the process exits.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ok := run(ctx, cfg)

	fmt.Println("\nDone.")
	if !ok {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) bool {
	if !utils.ValidateShareURL(cfg.ShareURL, cfg.Endpoints.ShareHosts) {
		ui.Error("Invalid share URL: %s", cfg.ShareURL)
		return false
	}

	sessions := browser.Factory(func() (browser.Inspector, error) {
		return browser.NewSession(ctx, browser.Options{
			Headless: !cfg.Interactive,
			Timeout:  time.Duration(cfg.Timeout) * time.Second,
		})
	})

	ui.Info("Opening browser to extract video information...")
	meta, err := extract.New(sessions).Extract(cfg.ShareURL)
	if err != nil {
		reportStageError(ctx, err)
		return false
	}

	ui.Section("Video Information")
	fmt.Printf("Name: %s\n", meta.Name)
	if meta.Size != "" {
		fmt.Printf("Size: %s\n", meta.Size)
	}

	ui.Info("Generating download link...")
	if cfg.Interactive {
		ui.Info("If a verification page appears, please complete it.")
	}

	cl := client.New(cfg.ShareURL)
	link, err := resolve.New(cfg, sessions, cl, nil).Resolve(ctx, cfg.ShareURL, meta)
	if err != nil {
		reportStageError(ctx, err)
		return false
	}

	ui.Info("Starting download...")
	res := download.New(cl).Download(ctx, link, meta, cfg.OutputDir)
	if !res.Success {
		ui.Error("%s", res.Message)
		return false
	}

	ui.Success("Video successfully downloaded to: %s", res.Message)
	return true
}

func reportStageError(ctx context.Context, err error) {
	if errors.Is(ctx.Err(), context.Canceled) {
		ui.Warning("Process interrupted by user")
		return
	}
	ui.Error("%v", err)
}

func printBanner() {
	ui.Println(ui.Bold+ui.Cyan, `
  ______                ______           __
 /_  __/__  _________ _/ ____/________ _/ /_
  / / / _ \/ ___/ __ '/ / __/ ___/ __ '/ __ \
 / / /  __/ /  / /_/ / /_/ / /  / /_/ / /_/ /
/_/  \___/_/   \__,_/\____/_/   \__,_/_.___/`)
	ui.Println(ui.Bold+ui.Yellow, "    TERAGRAB", ui.Reset, " - ", ui.Green, "Terabox share links straight to disk.")
	ui.Println(ui.Gray, "    Version: 1.0.0")
	fmt.Println()
}
