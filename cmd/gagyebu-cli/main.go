// Command gagyebu-cli is the terminal front end: it unlocks with the PIN,
// loads a month, applies edits and optionally saves, copies or shares the
// summary.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gagyebu/internal/budget"
	"gagyebu/internal/cli"
	"gagyebu/internal/core"
	"gagyebu/internal/log"
	"gagyebu/internal/session"
	"gagyebu/internal/share"
	"gagyebu/internal/store"
)

// multiFlag collects a repeatable string flag.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

type options struct {
	monthOffset int
	sets        multiFlag
	toggles     multiFlag
	save        bool
	history     bool
	copy        bool
	share       bool
	shareCmd    string
	osc52       bool
	verbose     bool
}

func main() {
	var opts options
	flag.IntVar(&opts.monthOffset, "month", 0, "month offset from the current month (-1 is last month)")
	flag.Var(&opts.sets, "set", "set an amount, base=N or <slot>=N (repeatable)")
	flag.Var(&opts.toggles, "toggle", "flip a slot between + and - (repeatable)")
	flag.BoolVar(&opts.save, "save", false, "save the month as a new snapshot")
	flag.BoolVar(&opts.history, "history", false, "list the saved snapshots of the month")
	flag.BoolVar(&opts.copy, "copy", false, "copy the summary to the clipboard")
	flag.BoolVar(&opts.share, "share", false, "hand the summary to the share command")
	flag.StringVar(&opts.shareCmd, "share-cmd", os.Getenv("GAGYEBU_SHARE_CMD"), "share command; the title is appended and the body goes to stdin")
	flag.BoolVar(&opts.osc52, "osc52", false, "copy through the terminal (OSC 52) instead of a clipboard tool")
	flag.BoolVar(&opts.verbose, "v", false, "log at the configured level instead of warnings only")
	flag.Parse()

	cli.LoadEnvFile()
	cfg := cli.LoadConfig(log.ComponentApp)
	lc := log.DefaultConfig()
	lc.Output = os.Stderr
	lc.Format = cfg.LogFormat
	lc.Level = slog.LevelWarn
	if opts.verbose {
		lc.Level = log.ParseLevel(cfg.LogLevel)
	}
	logger := log.Setup(lc)
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	ctx := context.Background()
	res := cli.InitBackend(ctx, logger, cfg)
	code := run(ctx, logger, res.Backend, opts)
	cli.CloseBackend(logger, res)
	os.Exit(code)
}

type cliStore interface {
	store.PinLookup
	store.SnapshotReader
	store.SnapshotWriter
}

func run(ctx context.Context, logger *log.Logger, st cliStore, opts options) int {
	sess := session.New()
	form := &session.PinForm{}
	form.SetCandidate(readPIN())

	gate := session.NewGate(st, logger.WithComponent(log.ComponentAuth).Logger)
	if !gate.Verify(ctx, sess, form) {
		fmt.Fprintln(os.Stderr, "PIN이 올바르지 않습니다.")
		return 1
	}

	ctrl := budget.NewController(sess, st, st, budget.Options{
		Logger: logger.WithComponent(log.ComponentBudget).Logger,
	})
	defer ctrl.Close()

	ctrl.Navigate(ctx, opts.monthOffset)

	for _, kv := range opts.sets {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			fmt.Fprintf(os.Stderr, "invalid -set %q, want key=amount\n", kv)
			return 2
		}
		if key == "base" {
			ctrl.SetBaseAmount(value)
			continue
		}
		if core.Label(key) == "" {
			fmt.Fprintf(os.Stderr, "unknown slot %q\n", key)
			return 2
		}
		ctrl.SetEntryAmount(key, value)
	}
	for _, id := range opts.toggles {
		if core.Label(id) == "" {
			fmt.Fprintf(os.Stderr, "unknown slot %q\n", id)
			return 2
		}
		ctrl.ToggleOperator(id)
	}

	fmt.Println(ctrl.Summary())

	code := 0
	if opts.save {
		if err := ctrl.Save(ctx); err != nil {
			fmt.Fprintln(os.Stderr, ctrl.View().ErrorMessage)
			code = 1
		} else {
			fmt.Fprintln(os.Stderr, "저장되었습니다.")
		}
	}

	if opts.history {
		ctrl.OpenHistory(ctx)
		printHistory(ctrl.View().History)
	}

	if opts.share || opts.copy {
		if err := deliver(ctx, ctrl, opts); err != nil {
			logger.Error("Delivering summary failed", log.FieldOperation, log.OpShare, log.FieldError, err)
			code = 1
		}
	}
	return code
}

func readPIN() string {
	if pin := os.Getenv("GAGYEBU_PIN"); pin != "" {
		return pin
	}
	fmt.Fprint(os.Stderr, "PIN: ")
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(line)
}

func printHistory(list []core.Snapshot) {
	if len(list) == 0 {
		fmt.Println("저장된 내역이 없습니다.")
		return
	}
	for _, s := range list {
		fmt.Println()
		fmt.Println(core.HistoryHeader(s))
		fmt.Println(s.Memo)
	}
}

func deliver(ctx context.Context, ctrl *budget.Controller, opts options) error {
	var clipboard share.Clipboard = share.OSC52Clipboard{W: os.Stdout}
	if !opts.osc52 {
		if c, ok := share.DetectClipboard(); ok {
			clipboard = c
		}
	}

	title, body := ctrl.ShareTitle(), ctrl.Summary()
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	if !opts.share {
		if err := clipboard.Copy(ctx, body); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, share.CopiedNotice)
		return nil
	}

	var sharer share.Sharer
	if fields := strings.Fields(opts.shareCmd); len(fields) > 0 {
		sharer = share.CommandSharer{Name: fields[0], Args: fields[1:]}
	}
	res, err := share.Deliver(ctx, sharer, clipboard, title, body)
	if res.Notice != "" {
		fmt.Fprintln(os.Stderr, res.Notice)
	}
	return err
}
