package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"

	"github.com/umputun/social-feed/app/api"
	"github.com/umputun/social-feed/app/proc"
	"github.com/umputun/social-feed/app/store"
)

type options struct {
	DB   string `short:"c" long:"db" env:"SF_DB" default:"var/social-feed.bdb" description:"bolt db file"`
	Seed string `short:"s" long:"seed" env:"SF_SEED" description:"seed file (yml), embedded seed if not set"`
	Port int    `short:"p" long:"port" env:"SF_PORT" default:"3000" description:"http port"`

	Reset      bool    `long:"reset" env:"SF_RESET" description:"reset db from seed on start"`
	Limit      float64 `long:"limit" env:"SF_LIMIT" default:"0" description:"requests per second per client, 0 - unlimited"`
	Concurrent int     `long:"concurrent" env:"SF_CONCURRENT" default:"8" description:"max feed items resolved in parallel"`

	Dbg bool `long:"dbg" env:"DEBUG" description:"debug mode"`
}

var revision = "local"

func main() {
	fmt.Printf("social-feed %s\n", revision)
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(1)
	}
	setupLog(opts.Dbg)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { // catch signal and invoke graceful termination
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		log.Printf("[WARN] interrupt signal")
		cancel()
	}()

	if err := run(ctx, opts); err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
}

func run(ctx context.Context, opts options) error {
	seed, err := store.LoadSeed(opts.Seed)
	if err != nil {
		return errors.Wrapf(err, "can't load seed %q", opts.Seed)
	}

	db, err := store.NewBoltStore(opts.DB, seed)
	if err != nil {
		return errors.Wrapf(err, "can't open db %s", opts.DB)
	}
	defer func() {
		if e := db.Close(); e != nil {
			log.Printf("[WARN] can't close db, %v", e)
		}
	}()

	ids, err := db.Users().List(ctx)
	if err != nil {
		return errors.Wrap(err, "can't list users")
	}
	if opts.Reset || len(ids) == 0 {
		if err = db.Reset(ctx); err != nil {
			return errors.Wrap(err, "can't reset db")
		}
	}

	server := api.Server{
		Version:   revision,
		Processor: proc.NewProcessor(proc.Conf{Concurrent: opts.Concurrent}, db.Users(), db.Feeds(), db.FeedItems()),
		Resetter:  db,
		Limit:     opts.Limit,
	}
	return server.Run(ctx, opts.Port)
}

func setupLog(dbg bool) {
	if dbg {
		log.Setup(log.Debug, log.CallerFile, log.Msec, log.LevelBraces)
		return
	}
	log.Setup(log.Msec, log.LevelBraces)
}
