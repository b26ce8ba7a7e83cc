// File: /cmd/eventctl/main.go

// eventctl inspects and repairs the active-event flag directly against the
// configured store. It is the repair path when a failed activation has left
// no event active.
//
//	eventctl [--atomic] health
//	eventctl list
//	eventctl activate <event-id>
//	eventctl deactivate <event-id>
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"convoy-api/config"
	"convoy-api/database"
	"convoy-api/models"
	"convoy-api/repositories"
	"convoy-api/utils"

	"github.com/spf13/pflag"
)

// errUnhealthy makes `health` exit non-zero without printing a second error.
var errUnhealthy = errors.New("active event invariant violated")

// eventStore is what the commands need from the event repository.
type eventStore interface {
	List(ctx context.Context, opts repositories.ListEventsOptions) ([]models.Event, error)
	SetActive(ctx context.Context, id string) error
	SetInactive(ctx context.Context, id string) error
	ActiveState(ctx context.Context) (models.ActiveStateReport, error)
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, errUnhealthy) {
			fmt.Fprintf(os.Stderr, "eventctl: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	flags := pflag.NewFlagSet("eventctl", pflag.ContinueOnError)
	atomic := flags.Bool("atomic", true, "activate in a single transaction (defaults to ATOMIC_ACTIVATION)")
	timeout := flags.Duration("timeout", 30*time.Second, "deadline for the whole command")
	flags.SetOutput(out)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return errors.New("a command is required: health, list, activate, deactivate")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	utils.InitLogger(cfg.IsProduction(), "warn")

	db, err := database.Initialize(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if !flags.Changed("atomic") {
		*atomic = cfg.AtomicActivation
	}
	return dispatch(ctx, repositories.NewEventRepository(db, *atomic), flags.Args(), out)
}

func dispatch(ctx context.Context, events eventStore, args []string, out io.Writer) error {
	command, rest := args[0], args[1:]

	switch command {
	case "health":
		return health(ctx, events, out)
	case "list":
		return list(ctx, events, out)
	case "activate", "deactivate":
		if len(rest) != 1 {
			return fmt.Errorf("usage: eventctl %s <event-id>", command)
		}
		if command == "activate" {
			if err := events.SetActive(ctx, rest[0]); err != nil {
				return fmt.Errorf("activate %s: %w", rest[0], err)
			}
			fmt.Fprintf(out, "activated %s\n", rest[0])
			return health(ctx, events, out)
		}

		if err := events.SetInactive(ctx, rest[0]); err != nil {
			return fmt.Errorf("deactivate %s: %w", rest[0], err)
		}
		fmt.Fprintf(out, "deactivated %s\n", rest[0])
		// zero active events is the expected result of deactivating
		if err := health(ctx, events, out); err != nil && !errors.Is(err, errUnhealthy) {
			return err
		}
		return nil
	}
	return fmt.Errorf("unknown command %q", command)
}

func health(ctx context.Context, events eventStore, out io.Writer) error {
	report, err := events.ActiveState(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "status=%s count=%d active=%v\n", report.Status, report.Count, report.ActiveIDs)
	if !report.Healthy() {
		return errUnhealthy
	}
	return nil
}

func list(ctx context.Context, events eventStore, out io.Writer) error {
	all, err := events.List(ctx, repositories.ListEventsOptions{})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSLUG\tDATE\tPUBLISHED\tACTIVE")
	for _, e := range all {
		date := e.DateValue()
		if date == "" {
			date = utils.DateTBD
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%t\n", e.ID, e.Slug, date, e.Published, e.Active)
	}
	return tw.Flush()
}
