// Package main implements the localconnect command line interface: public
// business discovery, a local saved list, owner portal operations, and the
// orphaned-object maintenance sweep.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/localconnect/directory/infra/supabase"
	"github.com/localconnect/directory/internal/bookmarks"
	"github.com/localconnect/directory/internal/config"
	"github.com/localconnect/directory/internal/discovery"
	"github.com/localconnect/directory/internal/maintenance"
	"github.com/localconnect/directory/internal/metrics"
	"github.com/localconnect/directory/internal/store"
	"github.com/localconnect/directory/pkg/logger"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: localconnect <command> [flags]

Commands:
  search [term]            List businesses, optionally filtered by name
  show <business-id>       Show one business profile with its gallery
  save <business-id>       Toggle a business on the local saved list
  saved                    Show the saved list
  portal <subcommand>      Owner operations (profile, save, upload,
                           remove-image, delete); requires sign-in
  sweep                    Remove orphaned gallery objects

Environment:
  SUPABASE_URL, SUPABASE_ANON_KEY, SUPABASE_SERVICE_KEY,
  SUPABASE_JWT_SECRET, LOCALCONNECT_EMAIL, LOCALCONNECT_PASSWORD
`)
	os.Exit(2)
}

// app bundles the wired clients every command needs.
type app struct {
	cfg        *config.Config
	log        *logger.Logger
	client     *supabase.Client
	businesses *store.BusinessRepository
	images     *store.ImageRepository
	objects    *store.Objects
}

func newApp(configPath string) (*app, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}

	log := logger.New(cfg.Logging)

	client, err := supabase.New(supabase.Config{
		ProjectURL: cfg.Supabase.URL,
		AnonKey:    cfg.Supabase.AnonKey,
		ServiceKey: cfg.Supabase.ServiceKey,
		JWTSecret:  cfg.Supabase.JWTSecret,
		Timeout:    cfg.Supabase.Timeout,
	})
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:        cfg,
		log:        log,
		client:     client,
		businesses: store.NewBusinessRepository(client.Database()),
		images:     store.NewImageRepository(client.Database()),
		objects:    store.NewObjects(client.Storage()),
	}, nil
}

func (a *app) discovery() *discovery.Service {
	return discovery.New(a.businesses, a.images, a.objects)
}

func (a *app) bookmarks() *bookmarks.Store {
	return bookmarks.New(bookmarks.NewFileKV(a.cfg.StatePath))
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "search":
		err = runSearch(ctx, os.Args[2:])
	case "show":
		err = runShow(ctx, os.Args[2:])
	case "save":
		err = runSave(ctx, os.Args[2:])
	case "saved":
		err = runSaved(ctx, os.Args[2:])
	case "portal":
		err = runPortal(ctx, os.Args[2:])
	case "sweep":
		err = runSweep(ctx, os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "localconnect: %v\n", err)
		os.Exit(1)
	}
}

func runSearch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(*configPath)
	if err != nil {
		return err
	}

	term := ""
	if fs.NArg() > 0 {
		term = fs.Arg(0)
	}

	results, err := a.discovery().Search(ctx, term)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("No businesses found.")
		return nil
	}
	for _, b := range results {
		printBusinessLine(b)
	}
	return nil
}

func runShow(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: localconnect show <business-id>")
	}

	a, err := newApp(*configPath)
	if err != nil {
		return err
	}

	p, err := a.discovery().PublicProfile(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	b := p.Business
	fmt.Printf("%s\n", b.Name)
	if b.Category != "" {
		fmt.Printf("Category:    %s\n", b.Category)
	}
	if b.Description != "" {
		fmt.Printf("Description: %s\n", b.Description)
	}
	if b.Address != "" {
		fmt.Printf("Address:     %s\n", b.Address)
	}
	if b.Phone != "" {
		fmt.Printf("Phone:       %s\n", b.Phone)
	}
	fmt.Println("Gallery:")
	for _, url := range p.Images {
		fmt.Printf("  %s\n", url)
	}
	return nil
}

func runSave(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("save", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: localconnect save <business-id>")
	}

	a, err := newApp(*configPath)
	if err != nil {
		return err
	}

	saved, err := a.bookmarks().Toggle(fs.Arg(0))
	if err != nil {
		return err
	}
	if saved {
		fmt.Printf("Saved %s.\n", fs.Arg(0))
	} else {
		fmt.Printf("Removed %s from saved list.\n", fs.Arg(0))
	}
	return nil
}

func runSaved(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("saved", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(*configPath)
	if err != nil {
		return err
	}

	ids, err := a.bookmarks().IDs()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Println("No saved businesses.")
		return nil
	}

	results, err := a.discovery().ListByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, b := range results {
		printBusinessLine(b)
	}
	return nil
}

func runSweep(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sweep", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	dryRun := fs.Bool("dry-run", false, "Report orphans without removing them")
	watch := fs.Bool("watch", false, "Keep running on the configured schedule")
	metricsAddr := fs.String("metrics", ":9090", "Metrics listen address in watch mode")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(*configPath)
	if err != nil {
		return err
	}

	sweeper := maintenance.New(a.businesses, a.images, a.objects, a.log)
	sweeper.DryRun = *dryRun || a.cfg.Sweep.DryRun

	report, err := sweeper.RunOnce(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Scanned %d businesses, %d objects: %d orphans, %d removed.\n",
		report.Businesses, report.Objects, report.Orphans, report.Removed)

	if !*watch {
		return nil
	}

	stop, err := sweeper.Schedule(a.cfg.Sweep.Schedule)
	if err != nil {
		return err
	}
	defer stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: *metricsAddr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Errorf("metrics server: %v", err)
		}
	}()
	a.log.Infof("sweeping on schedule %q, metrics on %s", a.cfg.Sweep.Schedule, *metricsAddr)

	<-ctx.Done()
	return srv.Shutdown(context.Background())
}

func printBusinessLine(b store.Business) {
	line := b.ID + "  " + b.Name
	if b.Category != "" {
		line += "  (" + b.Category + ")"
	}
	fmt.Println(line)
}
