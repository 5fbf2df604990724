// Command rso-watch follows a user's activity feed from the terminal. It
// holds the notification channel open, reconnecting with backoff, and
// reprints the first feed page whenever the server signals new activity.
package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/docopt/docopt-go"
	"go.uber.org/zap"

	"github.com/photosunthesis/rate-stuff.online-sub001/feedclient"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg/logger"
	"github.com/photosunthesis/rate-stuff.online-sub001/wsclient"
)

const version = "0.1.0"

const usage = `Rate Stuff Online activity watcher.

Usage:
    rso-watch [--server=<url>] [--limit=<n>] [--timeout=<duration>] [--ping=<duration>] [--log=<level>] --token=<token>
    rso-watch -h | --help
    rso-watch --version

Options:
    -h --help               Show this screen.
    --version               Show version.
    --server=<url>          Server base url [default: http://localhost:9090].
    --token=<token>         Access token.
    --limit=<n>             Activities per page [default: 20].
    --timeout=<duration>    Refetch timeout [default: 20s].
    --ping=<duration>       Client ping interval [default: 30s].
    --log=<level>           Log level [default: warn].`

func main() {
	opts, err := docopt.ParseArgs(usage, os.Args[1:], version)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, "rso-watch:", err)
		os.Exit(1)
	}
}

func run(opts docopt.Opts) error {
	server, _ := opts.String("--server")
	token, _ := opts.String("--token")
	level, _ := opts.String("--log")

	limit, err := opts.Int("--limit")
	if err != nil {
		return fmt.Errorf("invalid --limit: %w", err)
	}
	timeout, err := durationOpt(opts, "--timeout")
	if err != nil {
		return err
	}
	ping, err := durationOpt(opts, "--ping")
	if err != nil {
		return err
	}

	log, err := logger.New(level, "console")
	if err != nil {
		return err
	}
	defer log.Sync()

	wsURL, err := channelURL(server, token)
	if err != nil {
		return err
	}

	feed := feedclient.NewFeed(feedclient.NewClient(server, token, nil), feedclient.FeedOptions{
		Limit:          limit,
		RefetchTimeout: timeout,
		Logger:         log.Named("feed"),
		OnUpdate:       printSnapshot,
	})

	channel := wsclient.New(wsclient.Options{
		URL:          wsURL,
		Invalidator:  feed,
		PingInterval: ping,
		Logger:       log.Named("channel"),
		OnStateChange: func(s wsclient.State) {
			log.Info("channel", zap.Stringer("state", s))
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	channel.Start()
	feed.Refresh(ctx)

	<-ctx.Done()

	if err := channel.Close(); err != nil {
		log.Debug("close", zap.Error(err))
	}
	feed.Wait()
	return nil
}

func durationOpt(opts docopt.Opts, key string) (time.Duration, error) {
	raw, _ := opts.String(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// channelURL maps http(s)://host to ws(s)://host/ws?token=...
func channelURL(server, token string) (string, error) {
	u, err := url.Parse(strings.TrimRight(server, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid --server: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("invalid --server scheme %q", u.Scheme)
	}

	u.Path += "/ws"
	u.RawQuery = url.Values{"token": {token}}.Encode()
	return u.String(), nil
}

func printSnapshot(s feedclient.Snapshot) {
	stamp := s.FetchedAt.Format(time.TimeOnly)

	switch s.Status {
	case feedclient.TimedOut, feedclient.Failed:
		fmt.Printf("[%s] refresh %s: %v\n", stamp, s.Status, s.Err)
		return
	}

	fmt.Printf("[%s] %d activities\n", stamp, len(s.Page.Items))
	for _, a := range s.Page.Items {
		read := " "
		if !a.Read {
			read = "*"
		}
		fmt.Printf("  %s %s  %-8s by %s on rating %s\n",
			read, a.CreatedAt.Local().Format(time.DateTime), a.Type, a.ActorUsername, a.RatingID)
	}
	if !s.CaughtUp {
		fmt.Println("  ...")
	}
}
