// Command courtctl talks to a running CUTRACKIT server from the terminal.
//
//	courtctl [-url U] [-email E] toggle -court ID
//	courtctl [-url U] [-email E] courts
//	courtctl [-url U] [-email E] leaderboard [-top N] [-q NAME]
//	courtctl [-url U] [-email E] traffic [-weeks N | -all]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"cutrackit/internal/client"
)

const (
	passwordEnv = "COURTCTL_PASSWORD"
	barWidth    = 30
)

var errUsage = errors.New("usage: courtctl [-url U] [-email E] <toggle -court ID | courts | leaderboard [-top N] | traffic [-weeks N | -all]>")

// readPassword prompts on the terminal without echo. Swapped in tests.
var readPassword = func(prompt string, stderr io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("stdin is not a terminal; set %s", passwordEnv)
	}
	fmt.Fprint(stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv); err != nil {
		fmt.Fprintln(os.Stderr, "courtctl:", err)
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) error {
	fs := flag.NewFlagSet("courtctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	baseURL := fs.String("url", "http://localhost:8080", "server base URL")
	emailAddr := fs.String("email", getenv("COURTCTL_EMAIL"), "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errUsage
	}
	cmd, rest := fs.Arg(0), fs.Args()[1:]

	var handler func(context.Context, *client.Client, []string, io.Writer) error
	switch cmd {
	case "toggle":
		handler = cmdToggle
	case "courts":
		handler = cmdCourts
	case "leaderboard":
		handler = cmdLeaderboard
	case "traffic":
		handler = cmdTraffic
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}

	if strings.TrimSpace(*emailAddr) == "" {
		return fmt.Errorf("%w: -email is required", errUsage)
	}
	password := getenv(passwordEnv)
	if password == "" {
		var err error
		if password, err = readPassword("Password: ", stderr); err != nil {
			return err
		}
	}

	c := client.New(*baseURL)
	if _, err := c.Login(ctx, *emailAddr, password); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return handler(ctx, c, rest, stdout)
}

func cmdToggle(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("toggle", flag.ContinueOnError)
	courtID := fs.String("court", "", "court to check in to")
	if err := fs.Parse(args); err != nil {
		return err
	}
	res, err := c.Toggle(ctx, *courtID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %s (%s)\n", res.Outcome, res.CourtName, capacity(res.Occupancy, res.MaxCapacity))
	return nil
}

func cmdCourts(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: courts takes no arguments", errUsage)
	}
	courts, err := c.Courts(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPLAYERS\tSTATUS")
	for _, ct := range courts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", ct.ID, ct.Name, capacity(ct.Occupancy, ct.MaxCapacity), ct.Status)
	}
	return tw.Flush()
}

func cmdLeaderboard(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("leaderboard", flag.ContinueOnError)
	top := fs.Int("top", 10, "rows to show, 0 for everyone")
	search := fs.String("q", "", "filter by name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *top < 0 {
		return fmt.Errorf("%w: -top must not be negative", errUsage)
	}
	rows, err := c.Leaderboard(ctx, *search, *top)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tGAMES")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", r.Rank, r.Name, r.Games)
	}
	return tw.Flush()
}

func cmdTraffic(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("traffic", flag.ContinueOnError)
	weeks := fs.Int("weeks", 0, "weeks to look back, 0 for the server default")
	all := fs.Bool("all", false, "use all history")
	if err := fs.Parse(args); err != nil {
		return err
	}
	res, err := c.Traffic(ctx, *weeks, *all)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, res.Label)
	peak := 0
	for _, d := range res.Days {
		peak = max(peak, d.Count)
	}
	for _, d := range res.Days {
		bar := 0
		if peak > 0 {
			bar = d.Count * barWidth / peak
		}
		mark := ""
		if d.Busiest {
			mark = " *"
		}
		fmt.Fprintf(out, "%-3s %4d %s%s\n", d.Day, d.Count, strings.Repeat("#", bar), mark)
	}
	return nil
}

func capacity(occupancy, limit int) string {
	if limit <= 0 {
		return fmt.Sprintf("%d", occupancy)
	}
	return fmt.Sprintf("%d/%d", occupancy, limit)
}
