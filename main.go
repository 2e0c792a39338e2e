package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/tablefs/tablefs-querier/backends"
	"github.com/tablefs/tablefs-querier/config"
	"github.com/tablefs/tablefs-querier/core"
	"github.com/tablefs/tablefs-querier/module"
	"github.com/tablefs/tablefs-querier/querier"
)

func main() {
	configFlag := flag.String("config", "", "Path to a config file")
	pathFlag := flag.String("path", "", "Fetch a single table and exit")
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *debugFlag || cfg.Debug {
		core.SetDebugLogging()
	}

	ctx := core.WithDefaultLogger(context.Background(), "main")

	fs, err := backends.New(cfg.Backend)
	if err != nil {
		core.Errorf(ctx, "Failed to construct %s backend: %v", cfg.Backend.Type, err)
		os.Exit(1)
	}

	cache := querier.NewTableCache(querier.CachePolicy{
		TTL:        cfg.Cache.TTL,
		MaxEntries: cfg.Cache.MaxEntries,
	})
	client := querier.NewQueryClient(fs, cache)

	// If a path is provided, fetch one table and exit
	if *pathFlag != "" {
		table, err := client.ResolveTable(ctx, *pathFlag)
		if err != nil {
			core.Errorf(ctx, "Fetch error: %v", err)
			os.Exit(1)
		}
		jsonData, err := json.MarshalIndent(table, "", "  ")
		if err != nil {
			core.Errorf(ctx, "Failed to marshal table: %v", err)
			os.Exit(1)
		}
		fmt.Println(string(jsonData))
		return
	}

	server := querier.NewServer(client)

	mux := module.Init(nil, server)

	core.Infof(ctx, "tablefs-querier running at http://localhost:%d (backend %s)", cfg.Port, cfg.Backend.Type)
	go func() {
		if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.Port), mux); err != nil {
			core.Errorf(ctx, "Failed to start HTTP server: %v", err)
			os.Exit(1)
		}
	}()

	core.Infof(ctx, "Flight server running on port %d", cfg.FlightPort)
	if err := querier.StartFlightServer(cfg.FlightPort, client); err != nil {
		core.Errorf(ctx, "Failed to start Flight server: %v", err)
		os.Exit(1)
	}
}
