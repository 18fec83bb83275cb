package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/adrianliechti/menuart/config"
	"github.com/adrianliechti/menuart/pkg/batch"
	"github.com/adrianliechti/menuart/pkg/otel"
)

type listFlag []string

func (l *listFlag) String() string {
	return strings.Join(*l, ",")
}

func (l *listFlag) Set(val string) error {
	*l = append(*l, val)
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	configFlag := flag.String("config", "", "config file")
	rendererFlag := flag.String("renderer", "", "renderer id")
	outputFlag := flag.String("output", "", "output directory")

	var categories listFlag
	flag.Var(&categories, "category", "category to generate (repeatable)")

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := otel.Setup(ctx, "menugen")

	if err != nil {
		return fail(err)
	}

	defer shutdown(context.Background())

	cfg, err := loadConfig(*configFlag)

	if err != nil {
		return fail(err)
	}

	renderer, err := cfg.Renderer(*rendererFlag)

	if err != nil {
		return fail(err)
	}

	menu, err := cfg.Catalog.Filter(categories...)

	if err != nil {
		return fail(err)
	}

	output := cfg.Output

	if *outputFlag != "" {
		output = *outputFlag
	}

	driver, err := batch.New(renderer, menu,
		batch.WithPacer(cfg.Pacer),
		batch.WithOutputDir(output),
	)

	if err != nil {
		return fail(err)
	}

	slog.Info("starting generation", "images", menu.ViewCount(), "output", output)

	report, err := driver.Run(ctx)

	if err != nil {
		slog.Warn("generation interrupted", "error", err)
	}

	report.WriteSummary(os.Stdout)

	return 0
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default()
	}

	return config.Parse(path)
}

func fail(err error) int {
	slog.Error("menugen failed", "error", err)
	fmt.Fprintln(os.Stderr, "error:", err)

	return 1
}
