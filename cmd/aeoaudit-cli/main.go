package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"github.com/use-agent/aeoaudit/audit"
	"github.com/use-agent/aeoaudit/config"
	"github.com/use-agent/aeoaudit/extractor"
	"github.com/use-agent/aeoaudit/fetcher"
	"github.com/use-agent/aeoaudit/llm"
	"github.com/use-agent/aeoaudit/models"
	"github.com/use-agent/aeoaudit/oracle"
	"github.com/use-agent/aeoaudit/prompt"
	"github.com/use-agent/aeoaudit/report"
)

func main() {
	_ = godotenv.Load()

	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	pageFlags := []cli.Flag{
		&cli.StringFlag{Name: "url", Aliases: []string{"u"}, Usage: "page URL (resolves links; fetched when --html is absent)", Required: true},
		&cli.StringFlag{Name: "html", Usage: "read page HTML from `FILE` (- for stdin)"},
		&cli.StringFlag{Name: "robots", Usage: "read robots.txt from `FILE`"},
		&cli.IntFlag{Name: "max-words", Value: extractor.DefaultMaxWords, Usage: "body text word bound"},
		&cli.IntFlag{Name: "schema-cap", Value: extractor.DefaultSchemaCap, Usage: "per-block JSON-LD display bound"},
		&cli.BoolFlag{Name: "skip-language", Usage: "skip content language detection"},
	}
	formatFlag := &cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: formatText, Usage: "output format: json, yaml or text"}
	practicesFlag := &cli.StringFlag{Name: "best-practices", Usage: "inject best-practice text from `FILE` into the system prompt"}

	return &cli.App{
		Name:      "aeoaudit-cli",
		Usage:     "audit pages for answer-engine optimisation from local files",
		Writer:    out,
		ErrWriter: os.Stderr,
		Before: func(c *cli.Context) error {
			level := slog.LevelWarn
			if c.Bool("verbose") {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return nil
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "debug logging to stderr"},
		},
		Commands: []*cli.Command{
			{
				Name:   "features",
				Usage:  "extract the feature document for a page",
				Flags:  append(pageFlags, formatFlag),
				Action: featuresAction,
			},
			{
				Name:   "prompts",
				Usage:  "print the oracle prompts for a page without calling the oracle",
				Flags:  append(pageFlags, formatFlag, practicesFlag),
				Action: promptsAction,
			},
			{
				Name:  "transform",
				Usage: "validate a saved oracle response and build the report",
				Flags: append(pageFlags, formatFlag,
					&cli.StringFlag{Name: "analysis", Usage: "oracle response `FILE` (- for stdin)", Required: true},
				),
				Action: transformAction,
			},
			{
				Name:   "audit",
				Usage:  "run the full audit against the configured oracle (AEO_ORACLE_* / OPENAI_API_KEY)",
				Flags:  append(pageFlags, formatFlag, practicesFlag),
				Action: auditAction,
			},
		},
	}
}

// loadPage reads or fetches the page named by the common flags.
func loadPage(c *cli.Context) (rawHTML, robotsTxt string, err error) {
	if path := c.String("html"); path != "" {
		if rawHTML, err = readInput(c, path); err != nil {
			return "", "", err
		}
		if path := c.String("robots"); path != "" {
			if robotsTxt, err = readInput(c, path); err != nil {
				return "", "", err
			}
		}
		return rawHTML, robotsTxt, nil
	}

	f := fetcher.New(fetcher.Options{Timeout: 30 * time.Second})
	page, err := f.FetchPage(c.Context, c.String("url"))
	if err != nil {
		return "", "", err
	}
	return page.HTML, f.FetchRobots(c.Context, c.String("url")), nil
}

func readInput(c *cli.Context, path string) (string, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(c.App.Reader)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}

func extractOptions(c *cli.Context) extractor.Options {
	return extractor.Options{
		MaxWords:              c.Int("max-words"),
		SchemaCap:             c.Int("schema-cap"),
		SkipLanguageDetection: c.Bool("skip-language"),
	}
}

func bestPractices(c *cli.Context) (string, error) {
	if path := c.String("best-practices"); path != "" {
		return readInput(c, path)
	}
	return "", nil
}

func featuresAction(c *cli.Context) error {
	rawHTML, robotsTxt, err := loadPage(c)
	if err != nil {
		return err
	}
	doc := extractor.Extract(rawHTML, c.String("url"), robotsTxt, extractOptions(c))
	return render(c.App.Writer, c.String("format"), doc, func(w io.Writer) { writeFeaturesText(w, doc) })
}

type promptOutput struct {
	System          string `json:"system" yaml:"system"`
	User            string `json:"user" yaml:"user"`
	EstimatedTokens int    `json:"estimated_tokens" yaml:"estimated_tokens"`
}

func promptsAction(c *cli.Context) error {
	rawHTML, robotsTxt, err := loadPage(c)
	if err != nil {
		return err
	}
	practices, err := bestPractices(c)
	if err != nil {
		return err
	}

	doc := extractor.Extract(rawHTML, c.String("url"), robotsTxt, extractOptions(c))
	out := promptOutput{
		System: prompt.BuildSystemPrompt(practices),
		User:   prompt.BuildUserPrompt(doc),
	}
	out.EstimatedTokens = prompt.EstimateTokens(out.System) + prompt.EstimateTokens(out.User)

	return render(c.App.Writer, c.String("format"), out, func(w io.Writer) {
		fmt.Fprintln(w, heading.Sprint("SYSTEM"))
		fmt.Fprintln(w, out.System)
		fmt.Fprintln(w, heading.Sprint("USER"))
		fmt.Fprintln(w, out.User)
		fmt.Fprintln(w, dim.Sprintf("~%d tokens", out.EstimatedTokens))
	})
}

func transformAction(c *cli.Context) error {
	raw, err := readInput(c, c.String("analysis"))
	if err != nil {
		return err
	}
	validated, err := oracle.Parse(raw)
	if err != nil {
		return err
	}

	rawHTML, robotsTxt, err := loadPage(c)
	if err != nil {
		return err
	}
	doc := extractor.Extract(rawHTML, c.String("url"), robotsTxt, extractOptions(c))

	rep, err := report.Transform(validated.Analysis, doc.Metrics, models.AnalysisMeta{
		URL:         c.String("url"),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Violations:  validated.Violations,
	})
	if err != nil {
		return err
	}
	return render(c.App.Writer, c.String("format"), rep, func(w io.Writer) { writeReportText(w, rep) })
}

func auditAction(c *cli.Context) error {
	cfg := config.Load()
	if cfg.Oracle.APIKey == "" {
		return fmt.Errorf("no oracle API key: set AEO_ORACLE_API_KEY or OPENAI_API_KEY")
	}
	practices, err := bestPractices(c)
	if err != nil {
		return err
	}

	client := llm.NewClient(nil, llm.Params{
		APIKey:      cfg.Oracle.APIKey,
		Model:       cfg.Oracle.Model,
		BaseURL:     cfg.Oracle.BaseURL,
		Temperature: cfg.Oracle.Temperature,
		MaxTokens:   cfg.Oracle.MaxTokens,
	}, 0)

	svc := audit.New(audit.Deps{
		Oracle:  client,
		Fetcher: fetcher.New(fetcher.Options{Timeout: cfg.Fetch.Timeout, UserAgent: cfg.Fetch.UserAgent}),
	}, audit.Options{
		Model:                 cfg.Oracle.Model,
		OracleTimeout:         cfg.Oracle.Timeout,
		BestPractices:         practices,
		SkipLanguageDetection: c.Bool("skip-language"),
	})

	req := audit.Request{
		URL:       c.String("url"),
		MaxWords:  c.Int("max-words"),
		SchemaCap: c.Int("schema-cap"),
	}
	if path := c.String("html"); path != "" {
		if req.HTML, err = readInput(c, path); err != nil {
			return err
		}
		if path := c.String("robots"); path != "" {
			if req.RobotsTxt, err = readInput(c, path); err != nil {
				return err
			}
		}
	}

	res, err := svc.Audit(c.Context, req)
	if err != nil {
		return err
	}
	return render(c.App.Writer, c.String("format"), res.Report, func(w io.Writer) { writeReportText(w, res.Report) })
}
