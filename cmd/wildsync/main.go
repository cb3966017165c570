package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/wildsync/internal/app"
	"github.com/joseph-ayodele/wildsync/internal/common"
	"github.com/joseph-ayodele/wildsync/internal/forests"
)

const usage = `usage: wildsync [-config path] [-debug] <command> [flags]

commands:
  ingest  -file PATH | -dir PATH [-forest ID]   ingest survey documents
  analyze -forest ID                            run a risk analysis
  history -forest ID                            list past analyses
  export  -forest ID -out FILE                  write analysis history as XLSX
  ask     -q TEXT [-forest ID]                  ask the assistant
  seed                                          create the demo admin and forest
`

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "optional YAML config file")
		debug      = flag.Bool("debug", false, "development logging")
	)
	flag.Usage = func() { printError(usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	logger := zap.NewNop()
	if *debug {
		l, err := app.Logger(true)
		if err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
		logger = l
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		printError("Error: %v\n", err)
		if common.IsValidationError(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	code := 0
	if err := run(ctx, a, flag.Arg(0), flag.Args()[1:]); err != nil {
		code = 1
		if errors.Is(err, flag.ErrHelp) {
			code = 2
		} else {
			printError("Error: %s\n", describe(err))
			logger.Debug("command failed", zap.Error(err))
		}
	}
	a.Close()
	stop()
	_ = logger.Sync()
	os.Exit(code)
}

func run(ctx context.Context, a *app.App, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	forest := fs.String("forest", "", "forest id")

	switch cmd {
	case "ingest":
		file := fs.String("file", "", "document to ingest")
		dir := fs.String("dir", "", "directory to ingest recursively")
		if err := fs.Parse(args); err != nil {
			return err
		}
		forestID, err := optionalID(*forest)
		if err != nil {
			return err
		}
		switch {
		case *file != "":
			res, err := a.FS.IngestPath(ctx, forestID, *file)
			if err != nil {
				return err
			}
			return printJSON(res)
		case *dir != "":
			results, stats, err := a.FS.IngestDirectory(ctx, forestID, *dir, true)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"stats": stats, "files": results})
		default:
			return errors.New("-file or -dir is required")
		}

	case "analyze", "history":
		if err := fs.Parse(args); err != nil {
			return err
		}
		forestID, err := requiredID(*forest)
		if err != nil {
			return err
		}
		if cmd == "history" {
			list, err := a.Analysis.History(ctx, forestID)
			if err != nil {
				return err
			}
			return printJSON(list)
		}
		out, err := a.Analysis.Start(ctx, forestID)
		if err != nil {
			return err
		}
		return printJSON(out)

	case "export":
		path := fs.String("out", "", "output XLSX path")
		if err := fs.Parse(args); err != nil {
			return err
		}
		forestID, err := requiredID(*forest)
		if err != nil {
			return err
		}
		if *path == "" {
			*path = fmt.Sprintf("analyses-%s.xlsx", forestID)
		}
		data, err := a.Export.ExportAnalysesXLSX(ctx, forestID)
		if err != nil {
			return err
		}
		if err := os.WriteFile(*path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", *path, err)
		}
		fmt.Printf("Export complete: %s\n", *path)
		return nil

	case "ask":
		q := fs.String("q", "", "question")
		if err := fs.Parse(args); err != nil {
			return err
		}
		forestID, err := optionalID(*forest)
		if err != nil {
			return err
		}
		ans, err := a.Chat.Ask(ctx, *q, forestID)
		if err != nil {
			return err
		}
		fmt.Println(ans.Reply)
		return nil

	case "seed":
		if err := fs.Parse(args); err != nil {
			return err
		}
		res, err := forests.Seed(ctx, a.Store, nil)
		if err != nil {
			return err
		}
		if !res.Created {
			fmt.Printf("Seed data already present (forest %s)\n", res.Forest.ID)
			return nil
		}
		fmt.Printf("Seeded admin %s and forest %s\n", res.Admin.Email, res.Forest.ID)
		return nil

	default:
		printError(usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// describe prefers the caller-facing message of application errors.
func describe(err error) string {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func requiredID(raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, errors.New("-forest is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("-forest must be a UUID: %w", err)
	}
	return id, nil
}

func optionalID(raw string) (*uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	id, err := requiredID(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
