package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/adrianliechti/menuart/config"
	"github.com/adrianliechti/menuart/pkg/mask"
	"github.com/adrianliechti/menuart/pkg/otel"
)

func main() {
	os.Exit(run())
}

func run() int {
	configFlag := flag.String("config", "", "config file")
	thresholdFlag := flag.Int("threshold", -1, "channel threshold (0-255)")

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := otel.Setup(ctx, "bgmask")

	if err != nil {
		return fail(err)
	}

	defer shutdown(context.Background())

	targets := mask.DefaultTargets
	threshold := uint8(mask.Threshold)

	if *configFlag != "" {
		cfg, err := config.Parse(*configFlag)

		if err != nil {
			return fail(err)
		}

		targets = cfg.MaskTargets
		threshold = cfg.MaskThreshold
	}

	if *thresholdFlag > 255 {
		return fail(fmt.Errorf("invalid threshold: %d", *thresholdFlag))
	}

	if *thresholdFlag >= 0 {
		threshold = uint8(*thresholdFlag)
	}

	if flag.NArg() > 0 {
		targets = flag.Args()
	}

	report, _ := mask.Run(ctx, targets, &mask.Options{
		Threshold: &threshold,
	})

	report.WriteSummary(os.Stdout)

	return 0
}

func fail(err error) int {
	slog.Error("bgmask failed", "error", err)
	fmt.Fprintln(os.Stderr, "error:", err)

	return 1
}
