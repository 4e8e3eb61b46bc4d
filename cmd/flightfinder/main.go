// Command flightfinder searches one-way or round-trip flights through the
// proxy and prints the closest offers per leg.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dharmasatrya/flightfinder/internal/config"
	"github.com/dharmasatrya/flightfinder/internal/coordinator"
	"github.com/dharmasatrya/flightfinder/internal/flightquery"
	"github.com/dharmasatrya/flightfinder/internal/models"
	"github.com/dharmasatrya/flightfinder/internal/places"
	"github.com/dharmasatrya/flightfinder/internal/render"
)

type options struct {
	from, to         string
	fromCode, toCode string
	depart, ret      string
	pick             int
	name             string
	suggest          string
}

func main() {
	var opts options
	flag.StringVar(&opts.from, "from", "", "origin city, airport or country to look up")
	flag.StringVar(&opts.to, "to", "", "destination city, airport or country to look up")
	flag.StringVar(&opts.fromCode, "from-code", "", "origin IATA code, skips the lookup")
	flag.StringVar(&opts.toCode, "to-code", "", "destination IATA code, skips the lookup")
	flag.StringVar(&opts.depart, "depart", "", "departure date (YYYY-MM-DD)")
	flag.StringVar(&opts.ret, "return", "", "return date (YYYY-MM-DD), omit for one-way")
	flag.IntVar(&opts.pick, "pick", 0, "which suggestion to use for -from and -to, 0 is the first")
	flag.StringVar(&opts.name, "name", "", "name to greet")
	flag.StringVar(&opts.suggest, "suggest", "", "print suggestions for a term and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	config.SetupLogging(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, opts options, stdout, stderr io.Writer) error {
	suggester := places.NewSuggester(places.NewClient(places.Config{
		BaseURL: cfg.Client.PlacesURL,
		Locale:  cfg.Client.Locale,
		Timeout: cfg.Client.PlacesTimeout,
	}))

	if opts.suggest != "" {
		return printSuggestions(ctx, suggester, opts.suggest, stdout)
	}

	if opts.name != "" {
		fmt.Fprintln(stdout, render.Greeting(opts.name))
	}

	origin, err := resolve(ctx, suggester, opts.fromCode, opts.from, opts.pick)
	if err != nil {
		return err
	}
	destination, err := resolve(ctx, suggester, opts.toCode, opts.to, opts.pick)
	if err != nil {
		return err
	}

	indicator, err := coordinator.ParseIndicatorPolicy(cfg.Client.Indicator)
	if err != nil {
		return err
	}

	executor := flightquery.NewExecutor(flightquery.Config{
		ProxyURL: cfg.Client.ProxyURL,
		Timeout:  cfg.Client.LegTimeout,
	})
	coord := coordinator.New(executor, render.NewTerminal(stdout, stderr), coordinator.Config{Indicator: indicator})

	sess, err := coord.Search(ctx, coordinator.TripRequest{
		Origin:        origin,
		Destination:   destination,
		DepartureDate: opts.depart,
		ReturnDate:    opts.ret,
	})
	if err != nil {
		return err
	}

	slog.Debug("waiting for legs", "session", sess.ID)
	return sess.Wait(ctx)
}

// resolve turns a code or a free-text term into a selection. Neither set
// yields an unresolved selection, which the coordinator rejects.
func resolve(ctx context.Context, s *places.Suggester, code, term string, pick int) (models.PlaceSelection, error) {
	if code = strings.ToUpper(strings.TrimSpace(code)); code != "" {
		return models.PlaceSelection{Code: code, Type: models.PlaceCity, Label: code}, nil
	}
	if strings.TrimSpace(term) == "" {
		return models.PlaceSelection{}, nil
	}

	found, err := s.Suggest(ctx, term)
	if err != nil {
		return models.PlaceSelection{}, err
	}
	return places.Pick(found, pick, term)
}

func printSuggestions(ctx context.Context, s *places.Suggester, term string, w io.Writer) error {
	found, err := s.Suggest(ctx, term)
	if err != nil {
		return err
	}
	n := 0
	for _, p := range found {
		if !p.Selectable() {
			continue
		}
		fmt.Fprintf(w, "%d  %s\n", n, p.Label())
		n++
	}
	if n == 0 {
		return fmt.Errorf("%w for %q", places.ErrNoMatch, term)
	}
	return nil
}
