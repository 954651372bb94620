package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"qrentry/internal/adapters/scanner"
	"qrentry/internal/infrastructure/i18n"
	"qrentry/internal/ports/output"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		serverURL string
		venue     string
		cooldown  time.Duration
		buffer    int
		images    []string
		useStdin  bool
		locale    string
	)

	flagSet := pflag.NewFlagSet("scanner", pflag.ContinueOnError)
	flagSet.StringVar(&serverURL, "server", "http://localhost:3000", "check-in server base URL")
	flagSet.StringVar(&venue, "venue", "", "venue recorded on entry (default: the server's default venue)")
	flagSet.DurationVar(&cooldown, "cooldown", scanner.DefaultCooldown, "ignore the same code scanned again within this window")
	flagSet.IntVar(&buffer, "buffer", scanner.DefaultBuffer, "codes waiting for validation; --image and --stdin wait for room instead of dropping")
	flagSet.StringSliceVar(&images, "image", nil, "PNG or JPEG file containing a QR code (repeatable)")
	flagSet.StringVar(&locale, "locale", "en", "language of the gate display (en or fr)")
	flagSet.BoolVar(&useStdin, "stdin", true, "read codes line by line from standard input (default false when --image is set)")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if len(images) > 0 && !flagSet.Changed("stdin") {
		useStdin = false
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := scanner.NewClient(serverURL, nil)
	if venue == "" {
		cfg, err := client.Config(ctx)
		if err != nil {
			return fmt.Errorf("no --venue given and server defaults unavailable: %w", err)
		}
		venue = cfg.DefaultVenue
	}
	log.Printf("🚀 Scanner prêt (server=%s, venue=%q)", serverURL, venue)

	q := scanner.NewQueue(client, venue, buffer, cooldown)
	tr := i18n.NewTranslator("en")
	q.OnResult = func(text string, res scanner.Result, err error) {
		printResult(tr, locale, res, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return q.Run(gctx)
	})
	g.Go(func() error {
		defer q.Close()
		for _, path := range images {
			text, err := decodeFile(path)
			if err != nil {
				log.Printf("❌ %s: %v", path, err)
				continue
			}
			if err := q.PushWait(gctx, text); err != nil {
				return nil
			}
		}
		if !useStdin {
			return nil
		}
		lines := readLines(os.Stdin)
		for {
			select {
			case <-gctx.Done():
				return nil
			case line, ok := <-lines:
				if !ok {
					return nil
				}
				if err := q.PushWait(gctx, line); err != nil {
					return nil
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func decodeFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return scanner.DecodeImage(f)
}

// readLines streams r line by line. The channel closes at EOF; the goroutine
// is left blocked on r if the caller stops reading first.
func readLines(r io.Reader) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			out <- sc.Text()
		}
		if err := sc.Err(); err != nil {
			log.Printf("⚠️ lecture stdin: %v", err)
		}
	}()
	return out
}

func printResult(tr output.T, locale string, res scanner.Result, err error) {
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return
	}
	fmt.Println(res.Line(tr, locale))
}
