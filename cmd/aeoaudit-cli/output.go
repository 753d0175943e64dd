package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/use-agent/aeoaudit/models"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatText = "text"
)

var (
	heading = color.New(color.FgCyan, color.Bold)
	good    = color.New(color.FgGreen)
	warn    = color.New(color.FgYellow)
	bad     = color.New(color.FgRed, color.Bold)
	dim     = color.New(color.Faint)
)

// render writes v as JSON or YAML, or calls text for the human format.
func render(w io.Writer, format string, v any, text func(io.Writer)) error {
	switch strings.ToLower(format) {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		// Round-trip through JSON so YAML keys follow the json tags.
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic any
		if err := json.Unmarshal(b, &generic); err != nil {
			return err
		}
		out, err := yaml.Marshal(generic)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	case formatText, "":
		text(w)
		return nil
	default:
		return fmt.Errorf("unknown format %q (want json, yaml or text)", format)
	}
}

func scoreColor(score float64) *color.Color {
	switch {
	case score >= 80:
		return good
	case score >= 50:
		return warn
	default:
		return bad
	}
}

func writeReportText(w io.Writer, r *models.TransformedReport) {
	fmt.Fprintln(w, heading.Sprintf("AEO audit: %s", r.Meta.URL))
	fmt.Fprintf(w, "Overall: %s\n\n", scoreColor(r.Scores.Overall).Sprintf("%.0f/100", r.Scores.Overall))

	for _, c := range models.Categories {
		score := r.Scores.Categories[c]
		fmt.Fprintf(w, "  %-26s %s\n", c.Label(), scoreColor(score).Sprintf("%3.0f", score))
	}

	if len(r.Prioritized.Fixes) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, heading.Sprint("Top fixes"))
		for i, f := range r.Prioritized.Fixes {
			fmt.Fprintf(w, "%d. %s %s\n", i+1, f.Title,
				dim.Sprintf("[%s/%s, priority %.2f]", f.Impact, f.Effort, f.Priority))
			if f.Why != "" {
				fmt.Fprintf(w, "   %s\n", f.Why)
			}
		}
	}

	if len(r.Prioritized.QuickWins) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, heading.Sprint("Quick wins"))
		for _, q := range r.Prioritized.QuickWins {
			fmt.Fprintf(w, "  - %s\n", q)
		}
	}

	if len(r.Meta.Violations) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, warn.Sprintf("Oracle contract violations (%d):", len(r.Meta.Violations)))
		for _, v := range r.Meta.Violations {
			fmt.Fprintf(w, "  - %s\n", v)
		}
	}
}

func writeFeaturesText(w io.Writer, doc models.FeatureDocument) {
	m := doc.Metrics
	section := func(name, body string) {
		fmt.Fprintln(w, heading.Sprint(name))
		if body == "" {
			body = dim.Sprint("(none)")
		}
		fmt.Fprintln(w, body)
		fmt.Fprintln(w)
	}

	section("HEAD", doc.Head)
	section("SCHEMA", doc.Schema)
	section("HEADINGS", doc.Headings)

	fmt.Fprintln(w, heading.Sprint("METRICS"))
	fmt.Fprintf(w, "  JSON-LD blocks:   %d (%d valid) %s\n", m.StructuredData.JSONLDBlocks, m.StructuredData.ValidBlocks,
		strings.Join(m.StructuredData.SchemaTypes, ", "))
	fmt.Fprintf(w, "  Answer upfront:   %d words via %s\n", m.AnswerUpfront.WordCount, m.AnswerUpfront.Source)
	fmt.Fprintf(w, "  Author:           %s\n", orNone(m.EEATSignals.Author))
	fmt.Fprintf(w, "  Text:             %d words, %d sentences, avg %.1f\n",
		m.SnippetConciseness.TextWords, m.SnippetConciseness.SentenceCount, m.SnippetConciseness.AvgSentenceLength)
	fmt.Fprintf(w, "  Images:           %d (%d missing good alt)\n", m.MediaAltCaption.ImagesTotal, m.MediaAltCaption.ImagesMissingGoodAlt)
	fmt.Fprintf(w, "  Speakable:        %d\n", m.SpeakableReady.SpeakableCount)
	fmt.Fprintf(w, "  html lang:        %s\n", orNone(m.HreflangLangMeta.HTMLLang))

	if blocked := doc.CrawlerAccess.Blocked(); len(blocked) > 0 {
		fmt.Fprintf(w, "  Blocked crawlers: %s\n", bad.Sprint(strings.Join(blocked, ", ")))
	} else {
		fmt.Fprintf(w, "  Blocked crawlers: %s\n", good.Sprint("none"))
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
