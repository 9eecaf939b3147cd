package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/jessevdk/go-flags"

	"github.com/revistaviva/leitor/internal/backend"
	"github.com/revistaviva/leitor/internal/cache"
	"github.com/revistaviva/leitor/internal/commands"
	"github.com/revistaviva/leitor/internal/config"
	"github.com/revistaviva/leitor/internal/feed"
	"github.com/revistaviva/leitor/internal/httpclient"
	"github.com/revistaviva/leitor/internal/magazine"
	"github.com/revistaviva/leitor/internal/store"
)

const version = "v0.1.0"

type Options struct {
	Verbose    bool   `short:"v" long:"verbose" description:"Show verbose logging"`
	Number     int    `short:"n" long:"number" description:"Number of results to show"`
	Category   string `short:"c" long:"category" description:"News category to list, only valid for news"`
	Filter     string `short:"f" long:"filter" description:"Filter listed items, supports category: and author: tags"`
	Pager      string `short:"p" long:"pager" description:"Pager to use for longer output. Set to false for no pager"`
	NoCache    bool   `long:"no-cache" description:"Keep the cache in memory for this run only"`
	ConfigPath string `long:"config-path" description:"Location of config.yml"`
}

var ErrNotEnoughArgs = errors.New("not enough args")

func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.NoCache {
		return store.NewMemoryStore(), nil
	}

	dir, err := cfg.CacheDir()
	if err != nil {
		return nil, err
	}

	switch cfg.Cache.Driver {
	case config.DriverFile:
		return store.NewFileStore(dir, cfg.Cache.Partition), nil
	case config.DriverMemory:
		return store.NewMemoryStore(), nil
	default:
		return store.NewSQLiteStore(filepath.Join(dir, "leitor.db"), cfg.Cache.Partition), nil
	}
}

func run(ctx context.Context, args []string, opts Options) error {
	cfg, err := config.New(opts.ConfigPath, opts.Pager, opts.NoCache, version)
	if err != nil {
		return err
	}

	if err := cfg.Load(); err != nil {
		return err
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	ttl, err := cfg.CacheTTL()
	if err != nil {
		return err
	}
	timeout, err := cfg.HTTPTimeout()
	if err != nil {
		return err
	}

	httpClient := httpclient.New(httpclient.Options{
		Timeout:       timeout,
		MinTLSVersion: cfg.MinTLSVersion(),
		UserAgent:     "leitor/" + version,
	})

	// no backend configured means every read is served from the cache
	var client backend.Client
	if cfg.Backend.URL != "" {
		rest, err := backend.NewREST(cfg.Backend.URL, cfg.Backend.APIKey, httpClient)
		if err != nil {
			return err
		}
		client = rest
	}

	var videos magazine.VideoSource
	if cfg.Content.VideoFeedURL != "" {
		videos = feed.New(cfg.Content.VideoFeedURL, cfg.Content.VideoCategory, httpClient)
	}

	svc := magazine.New(client, cache.New(s, ttl), videos, magazine.Options{
		AllCategory: cfg.Content.AllCategory,
		Limit:       cfg.Content.Limit,
	})

	cmds := commands.New(cfg, svc, httpClient)

	// no subcommand, list the news
	if len(args) == 0 {
		return cmds.List(ctx, magazine.News, opts.Category, opts.Filter, opts.Number)
	}

	switch args[0] {
	case "list":
		resource := ""
		if len(args) > 1 {
			resource = args[1]
		}

		return cmds.List(ctx, resource, opts.Category, opts.Filter, opts.Number)
	case "search":
		if len(args) < 2 {
			return ErrNotEnoughArgs
		}

		return cmds.Search(ctx, strings.Join(args[1:], " "), opts.Number)
	case "read":
		if len(args) != 2 {
			return ErrNotEnoughArgs
		}

		return cmds.Read(ctx, args[1])
	case "clear":
		resource, filter := "", ""
		if len(args) > 1 {
			resource = args[1]
		}
		if len(args) > 2 {
			filter = args[2]
		}

		return cmds.ClearCache(ctx, resource, filter)
	case "stats":
		return cmds.Stats(ctx)
	case "config":
		return cmds.ShowConfig()
	}

	return fmt.Errorf("unknown command %q", args[0])
}

func main() {
	var opts Options

	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[OPTIONS] [list [news|editorials|videos|columnists] | search <term> | read <id> | clear [resource [filter]] | stats | config]"

	args, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// cache fallbacks are silent unless asked for
	if !opts.Verbose {
		log.SetOutput(io.Discard)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, args, opts); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)

		if errors.Is(err, ErrNotEnoughArgs) {
			parser.WriteHelp(os.Stderr)
		}
		stop()
		os.Exit(1)
	}
}
