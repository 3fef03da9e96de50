package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/vytor/betterank/internal/client"
	"github.com/vytor/betterank/internal/config"
	"github.com/vytor/betterank/internal/db"
	"github.com/vytor/betterank/internal/errors"
	"github.com/vytor/betterank/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// app is what every subcommand runs against.
type app struct {
	cfg    config.Config
	log    *logger.Logger
	store  *db.DB
	client *client.Client
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	now    func() time.Time
}

type command struct {
	usage string
	// public commands run without a saved token.
	public bool
	run    func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"login":         {usage: "login [-u user] [-p password]   save a token for the backend", public: true, run: cmdLogin},
	"register":      {usage: "register -u user -e email -p password", public: true, run: cmdRegister},
	"logout":        {usage: "logout                          forget the saved token", public: true, run: cmdLogout},
	"whoami":        {usage: "whoami                          show the logged in account", run: cmdWhoami},
	"decks":         {usage: "decks                           list decks with due counts", run: cmdDecks},
	"deck-create":   {usage: "deck-create -n name [-d description]", run: cmdDeckCreate},
	"deck-rename":   {usage: "deck-rename <deck-id> [-n name] [-d description]", run: cmdDeckRename},
	"deck-delete":   {usage: "deck-delete <deck-id>", run: cmdDeckDelete},
	"cards":         {usage: "cards [--deck id] [--due] [--limit n]", run: cmdCards},
	"card":          {usage: "card <card-id>                  show both sides of a card", run: cmdCard},
	"card-assign":   {usage: "card-assign <card-id> <deck-id>", run: cmdCardAssign},
	"card-unassign": {usage: "card-unassign <card-id>", run: cmdCardUnassign},
	"review":        {usage: "review <deck-id>                review due cards in the terminal", run: cmdReview},
	"generate":      {usage: "generate --deck id (--text t | --file f | --image f) [--count n] [--save]", run: cmdGenerate},
	"serve":         {usage: "serve                           serve the review page on --addr", run: cmdServe},
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg := config.Load()

	fs := pflag.NewFlagSet("betterank", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SetInterspersed(false)
	cfg.BindFlags(fs)
	fs.Usage = func() { usage(stderr, fs) }
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		usage(stderr, fs)
		return 2
	}
	name, rest := fs.Arg(0), fs.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "betterank: unknown command %q\n", name)
		usage(stderr, fs)
		return 2
	}

	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	cfg.LogLevel = strings.ToUpper(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "betterank: invalid configuration: %v\n", err)
		return 2
	}

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithOutput(stderr),
	)
	logger.SetDefault(log)
	log.Debug("api_url=%s db=%s due_limit=%d", cfg.APIURL, cfg.DBPath, cfg.DueLimit)

	store, err := db.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(stderr, "betterank: open credential store: %v\n", err)
		return 1
	}
	defer func() {
		log.Debug("closing database connection")
		_ = store.Close()
	}()

	a := &app{
		cfg:    cfg,
		log:    log,
		store:  store,
		client: client.New(cfg.APIURL, client.WithTimeout(cfg.HTTPTimeout), client.WithLogger(log)),
		in:     stdin,
		out:    stdout,
		errOut: stderr,
		now:    time.Now,
	}
	ctx = logger.NewContext(ctx, log)

	if !cmd.public {
		if err := a.authenticate(ctx); err != nil {
			report(stderr, err)
			return 1
		}
	}
	if err := cmd.run(ctx, a, rest); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		report(stderr, err)
		return 1
	}
	return 0
}

// authenticate installs the saved token for the configured backend.
func (a *app) authenticate(ctx context.Context) error {
	cred, err := a.store.Credential(ctx, a.cfg.APIURL)
	if err != nil {
		return fmt.Errorf("read saved token: %w", err)
	}
	if cred == nil {
		return errors.ErrNoToken
	}
	claims, err := client.CheckToken(cred.Token, a.now())
	if err != nil {
		return err
	}
	a.log.Debug("using token of %s", claims.Subject)
	a.client.SetToken(cred.Token)
	return nil
}

func report(w io.Writer, err error) {
	switch {
	case errors.Is(err, errors.ErrNoToken), errors.Is(err, errors.ErrTokenExpired), errors.IsUnauthorized(err):
		fmt.Fprintf(w, "betterank: %v; run `betterank login`\n", err)
	default:
		fmt.Fprintf(w, "betterank: %v\n", err)
	}
}

func usage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintln(w, "usage: betterank [flags] <command> [args]")
	fmt.Fprintln(w, "\ncommands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
	fmt.Fprintln(w, "\nflags:")
	fmt.Fprint(w, fs.FlagUsages())
}
