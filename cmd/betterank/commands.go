package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/vytor/betterank/internal/client"
	"github.com/vytor/betterank/internal/db"
	"github.com/vytor/betterank/internal/errors"
	"github.com/vytor/betterank/internal/models"
	"github.com/vytor/betterank/internal/review"
	"github.com/vytor/betterank/internal/view"
	"github.com/vytor/betterank/internal/web"
)

func newFlagSet(a *app, name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

// prompt reads one line from the app's input, used when a flag is missing.
func (a *app) prompt(r *bufio.Reader, label string) (string, error) {
	fmt.Fprint(a.out, label)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.TrimSpace(label), ":"), err)
	}
	return strings.TrimSpace(line), nil
}

func cmdLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "login")
	username := fs.StringP("username", "u", "", "account username")
	password := fs.StringP("password", "p", "", "account password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in := bufio.NewReader(a.in)
	var err error
	if *username == "" {
		if *username, err = a.prompt(in, "username: "); err != nil {
			return err
		}
	}
	if *password == "" {
		if *password, err = a.prompt(in, "password: "); err != nil {
			return err
		}
	}

	token, err := a.client.Login(ctx, *username, *password)
	if err != nil {
		return err
	}

	cred := db.Credential{BaseURL: a.cfg.APIURL, Username: *username, Token: token}
	if claims, err := client.ParseTokenClaims(token); err == nil && !claims.ExpiresAt.IsZero() {
		cred.ExpiresAt = &claims.ExpiresAt
	} else if err != nil {
		a.log.Warn("token is not a readable JWT, saving it without expiry: %v", err)
	}
	if err := a.store.SaveCredential(ctx, cred); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	fmt.Fprintf(a.out, "logged in as %s\n", *username)
	return nil
}

func cmdRegister(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "register")
	var reg models.Registration
	fs.StringVarP(&reg.Username, "username", "u", "", "account username")
	fs.StringVarP(&reg.Email, "email", "e", "", "account email")
	fs.StringVarP(&reg.Password, "password", "p", "", "account password, at least 8 characters")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := a.client.Register(ctx, reg)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "registered %s (id %d); now run `betterank login`\n", user.Username, user.ID)
	return nil
}

func cmdLogout(ctx context.Context, a *app, _ []string) error {
	if err := a.store.DeleteCredential(ctx, a.cfg.APIURL); err != nil {
		return fmt.Errorf("forget token: %w", err)
	}
	fmt.Fprintln(a.out, "logged out")
	return nil
}

func cmdWhoami(ctx context.Context, a *app, _ []string) error {
	user, err := a.client.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s>\n", user.Username, user.Email)
	return nil
}

func cmdDecks(ctx context.Context, a *app, _ []string) error {
	decks, err := a.client.DeckSummaries(ctx, a.cfg.DueLimit)
	if err != nil {
		return err
	}
	return view.RenderDecks(a.out, decks)
}

func cmdDeckCreate(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "deck-create")
	var in models.NewDeck
	fs.StringVarP(&in.Name, "name", "n", "", "deck name")
	fs.StringVarP(&in.Description, "description", "d", "", "deck description")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if in.Name == "" && fs.NArg() > 0 {
		in.Name = strings.Join(fs.Args(), " ")
	}

	deck, err := a.client.CreateDeck(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "created deck %d %q\n", deck.ID, deck.Name)
	return nil
}

func parseDeckID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errors.NewValidationError("deck-id", "exactly one deck id is required")
	}
	return parseID("deck", args[0])
}

func parseID(kind, arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewValidationError(kind+"-id", fmt.Sprintf("%q is not a %s id", arg, kind))
	}
	return id, nil
}

func cmdDeckRename(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "deck-rename")
	var in models.DeckUpdate
	fs.StringVarP(&in.Name, "name", "n", "", "new deck name")
	fs.StringVarP(&in.Description, "description", "d", "", "new deck description")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := parseDeckID(fs.Args())
	if err != nil {
		return err
	}

	deck, err := a.client.UpdateDeck(ctx, id, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "updated deck %d %q\n", deck.ID, deck.Name)
	return nil
}

// cmdCards lists cards of one deck, or of every deck when --deck is unset.
func cmdCards(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "cards")
	deckID := fs.Int64("deck", 0, "only cards of this deck")
	due := fs.Bool("due", false, "only cards due now")
	limit := fs.Int("limit", a.cfg.DueLimit, "maximum number of cards")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		cards []models.Flashcard
		err   error
	)
	if *deckID > 0 {
		cards, err = a.client.DeckFlashcards(ctx, *deckID, *due, *limit)
	} else {
		cards, err = a.client.ListFlashcards(ctx, *due, *limit)
	}
	if err != nil {
		return err
	}
	return view.RenderCards(a.out, cards)
}

func cmdCard(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.NewValidationError("card-id", "exactly one card id is required")
	}
	id, err := parseID("card", args[0])
	if err != nil {
		return err
	}
	card, err := a.client.GetFlashcard(ctx, id)
	if err != nil {
		return err
	}
	return view.RenderCard(a.out, *card)
}

func cmdCardAssign(ctx context.Context, a *app, args []string) error {
	if len(args) != 2 {
		return errors.NewValidationError("card-id", "usage: card-assign <card-id> <deck-id>")
	}
	cardID, err := parseID("card", args[0])
	if err != nil {
		return err
	}
	deckID, err := parseID("deck", args[1])
	if err != nil {
		return err
	}
	deck, err := a.client.AddToDeck(ctx, deckID, cardID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "moved card %d to deck %d %q\n", cardID, deck.ID, deck.Name)
	return nil
}

func cmdCardUnassign(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.NewValidationError("card-id", "exactly one card id is required")
	}
	id, err := parseID("card", args[0])
	if err != nil {
		return err
	}
	if err := a.client.RemoveFromDeck(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "removed card %d from its deck\n", id)
	return nil
}

func cmdDeckDelete(ctx context.Context, a *app, args []string) error {
	id, err := parseDeckID(args)
	if err != nil {
		return err
	}
	if err := a.client.DeleteDeck(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "deleted deck %d\n", id)
	return nil
}

func cmdReview(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "review")
	noColor := fs.Bool("no-color", os.Getenv("NO_COLOR") != "", "disable colored output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	deckID, err := parseDeckID(fs.Args())
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "press ? for keys, q to quit")
	term := view.NewTerminal(a.out, !*noColor)
	session := review.NewSession(a.client,
		review.WithRenderer(term),
		review.WithLogger(a.log),
		review.WithDueLimit(a.cfg.DueLimit),
		review.WithFeedbackQueueSize(a.cfg.FeedbackQueueSize),
	)
	if err := session.Load(ctx, deckID); err != nil {
		session.Close()
		return fmt.Errorf("load deck %d: %w", deckID, err)
	}

	loop := view.NewLoop(a.in, term, session)
	runErr := loop.Run(ctx)
	session.Close()
	loop.ReportFailures()
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

func cmdGenerate(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "generate")
	deckID := fs.Int64("deck", 0, "deck the cards belong to")
	count := fs.IntP("count", "c", 5, "number of cards to draft")
	text := fs.StringP("text", "t", "", "source text")
	file := fs.StringP("file", "f", "", "read the source text from a file")
	image := fs.String("image", "", "draft cards from an image file")
	save := fs.Bool("save", false, "save the drafts to the deck")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *deckID <= 0 {
		return errors.NewValidationError("deck", "is required")
	}

	var (
		batch *models.GeneratedBatch
		err   error
	)
	switch {
	case *image != "":
		raw, rerr := os.ReadFile(*image)
		if rerr != nil {
			return fmt.Errorf("read image: %w", rerr)
		}
		batch, err = a.client.GenerateFromImage(ctx, raw, *count, deckID)
	default:
		if *file != "" {
			raw, rerr := os.ReadFile(*file)
			if rerr != nil {
				return fmt.Errorf("read text: %w", rerr)
			}
			*text = string(raw)
		}
		batch, err = a.client.GenerateFromText(ctx, models.GenerateFromTextRequest{Text: *text, NumCards: *count, DeckID: deckID})
	}
	if err != nil {
		return err
	}

	if err := view.RenderDrafts(a.out, batch.Flashcards); err != nil {
		return err
	}
	if !*save {
		fmt.Fprintln(a.out, "preview only; pass --save to add these cards")
		return nil
	}
	saved, err := a.client.SaveDrafts(ctx, *deckID, batch.Flashcards)
	fmt.Fprintf(a.out, "saved %d of %d cards to deck %d\n", len(saved), len(batch.Flashcards), *deckID)
	return err
}

func cmdServe(ctx context.Context, a *app, _ []string) error {
	tmpl, err := web.LoadTemplates()
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}
	srv := web.NewServer(a.client, tmpl,
		web.WithLogger(a.log),
		web.WithDueLimit(a.cfg.DueLimit),
		web.WithSessionOptions(
			review.WithDueLimit(a.cfg.DueLimit),
			review.WithFeedbackQueueSize(a.cfg.FeedbackQueueSize),
		),
	)

	httpServer := &http.Server{
		Addr:         a.cfg.UIAddr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.log.Info("review page listening on http://%s", a.cfg.UIAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()
	fmt.Fprintf(a.out, "review page at http://%s (ctrl-c to stop)\n", a.cfg.UIAddr)

	select {
	case err := <-serveErr:
		srv.Close()
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down review page")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		a.log.Error("HTTP server shutdown error: %v", err)
	}
	srv.Close()
	return nil
}
