package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/altair-hq/igclient/internal/app"
	"github.com/altair-hq/igclient/internal/config"
	"github.com/altair-hq/igclient/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "igcli failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	path := flag.String("path", "", "API path relative to the base URL, e.g. feed/timeline/")
	method := flag.String("method", "GET", "HTTP method")
	data := flag.String("data", "", "extra body fields as a JSON object")
	flag.Parse()

	if strings.TrimSpace(*path) == "" {
		return fmt.Errorf("-path is required")
	}

	var fields map[string]any
	if strings.TrimSpace(*data) != "" {
		if err := json.Unmarshal([]byte(*data), &fields); err != nil {
			return fmt.Errorf("parse -data: %w", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runtime, err := app.New(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize app", "error", err)
		return err
	}
	defer runtime.Close()

	out, err := runtime.Send(ctx, *path, *method, fields)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}

	fmt.Println(string(out))
	return nil
}
