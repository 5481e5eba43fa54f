package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chzyer/readline"

	"github.com/Brownie44l1/solariq/internal/classifier"
	"github.com/Brownie44l1/solariq/internal/config"
	"github.com/Brownie44l1/solariq/internal/notifier"
	"github.com/Brownie44l1/solariq/internal/report"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("solariq", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to config.yaml")
	withProbs := fs.Bool("probs", false, "include per-class probabilities")
	format := fs.String("format", "text", "output format: text, json or yaml")
	notify := fs.Bool("notify", false, "send Telegram alerts for results that require one")
	interactive := fs.Bool("console", false, "read image paths interactively")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: solariq [flags] image...")
		fmt.Fprintln(fs.Output(), "       solariq [flags] -console")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := checkFormat(*format); err != nil {
		return err
	}
	if fs.NArg() == 0 && !*interactive {
		fs.Usage()
		return fmt.Errorf("no images given")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logOut, err := cfg.OpenLog()
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	if logOut != os.Stderr {
		defer logOut.Close()
	}
	logger := log.New(logOut, "solariq ", log.LstdFlags)

	clf, err := classifier.Load(cfg.ClassifierConfig(), logger)
	if err != nil {
		return err
	}
	defer clf.Close()

	var n notifier.Notifier = notifier.Nop{}
	if *notify {
		if !cfg.TelegramEnabled() {
			return fmt.Errorf("-notify needs notifier.telegram_token and notifier.telegram_chat_ids")
		}
		tg, err := notifier.NewTelegram(cfg.Notifier.TelegramToken, cfg.Notifier.TelegramChatIDs)
		if err != nil {
			return err
		}
		n = tg
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a := &app{
		clf:       clf,
		notifier:  n,
		logger:    logger,
		out:       stdout,
		format:    *format,
		withProbs: *withProbs,
	}

	if *interactive {
		return a.console(ctx)
	}
	return a.classify(ctx, fs.Args())
}

var formats = []string{"text", "json", "yaml"}

func checkFormat(format string) error {
	for _, f := range formats {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q (want %s)", format, strings.Join(formats, ", "))
}

type app struct {
	clf       *classifier.Classifier
	notifier  notifier.Notifier
	logger    *log.Logger
	out       io.Writer
	format    string
	withProbs bool
}

func (a *app) classify(ctx context.Context, paths []string) error {
	results := a.clf.BatchPredict(paths, a.withProbs)
	for _, r := range results {
		a.logger.Print(report.Summary(r))
	}

	if err := a.render(results); err != nil {
		return err
	}

	sent, err := notifier.Dispatch(ctx, a.notifier, results)
	if err != nil {
		a.logger.Printf("notify: %v", err)
	}
	if sent > 0 {
		a.logger.Printf("Sent %d alert(s)", sent)
	}
	return nil
}

func (a *app) render(results []classifier.Result) error {
	switch a.format {
	case "json":
		return report.JSON(a.out, results)
	case "yaml":
		return report.YAML(a.out, results)
	case "text":
		for i, r := range results {
			if i > 0 {
				fmt.Fprintln(a.out, strings.Repeat("-", 50))
			}
			if err := report.Text(a.out, r, a.clf.Conditions()); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", a.format)
	}
}

// console classifies one path per line until EOF or interrupt.
func (a *app) console(ctx context.Context) error {
	rl, err := readline.New("image> ")
	if err != nil {
		return err
	}
	defer func() {
		_ = rl.Close()
	}()

	for ctx.Err() == nil {
		line, err := rl.Readline()
		if err != nil { // io.EOF or readline.ErrInterrupt
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := a.classify(ctx, strings.Fields(line)); err != nil {
			fmt.Fprintln(a.out, err)
		}
	}
	return nil
}
