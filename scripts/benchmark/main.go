package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	"github.com/use-agent/aeoaudit/models"
)

// Pages covering the common page shapes an audit sees.
var defaultPages = []struct {
	Label string
	URL   string
}{
	{"Static", "https://example.com"},
	{"Blog", "https://go.dev/blog/go1.21"},
	{"Docs", "https://go.dev/doc/effective_go"},
	{"News", "https://www.bbc.com/news"},
	{"Wiki", "https://en.wikipedia.org/wiki/Coffee"},
}

type runResult struct {
	Run         int     `json:"run"`
	TotalMs     int64   `json:"total_ms"`
	FetchMs     int64   `json:"fetch_ms"`
	ExtractMs   int64   `json:"extract_ms"`
	OracleMs    int64   `json:"oracle_ms"`
	HTTPStatus  int     `json:"http_status"`
	CacheStatus string  `json:"cache_status,omitempty"`
	Score       float64 `json:"score,omitempty"`
	Fixes       int     `json:"fixes,omitempty"`
	Success     bool    `json:"success"`
	Error       string  `json:"error,omitempty"`
}

type pageAverages struct {
	TotalMs   float64 `json:"total_ms"`
	FetchMs   float64 `json:"fetch_ms"`
	ExtractMs float64 `json:"extract_ms"`
	OracleMs  float64 `json:"oracle_ms"`
	Score     float64 `json:"score"`
}

type pageResult struct {
	URL      string        `json:"url"`
	Label    string        `json:"label"`
	Runs     []runResult   `json:"runs"`
	Averages *pageAverages `json:"averages,omitempty"`
}

type benchmarkReport struct {
	Timestamp  string       `json:"timestamp"`
	APIURL     string       `json:"api_url"`
	Endpoint   string       `json:"endpoint"`
	RunsPerURL int          `json:"runs_per_url"`
	Results    []pageResult `json:"results"`
}

var (
	ok     = color.New(color.FgGreen)
	failed = color.New(color.FgRed, color.Bold)
)

func main() {
	app := &cli.App{
		Name:  "benchmark",
		Usage: "measure audit API latency against a fixed set of pages",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api-url", Value: "http://localhost:8080", EnvVars: []string{"AEO_API_URL"}},
			&cli.StringFlag{Name: "api-key", EnvVars: []string{"AEO_API_KEY"}},
			&cli.StringFlag{Name: "endpoint", Value: "features", Usage: "features (no oracle cost) or audit"},
			&cli.IntFlag{Name: "runs", Value: 3, Usage: "runs per URL for averaging"},
			&cli.IntFlag{Name: "max-age", Value: 0, Usage: "max_age sent with audit runs, in seconds"},
			&cli.StringFlag{Name: "output", Value: "benchmark-results.json", Usage: "JSON output file path"},
		},
		Action: benchmarkAction,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func benchmarkAction(c *cli.Context) error {
	apiURL := strings.TrimRight(c.String("api-url"), "/")
	endpoint := c.String("endpoint")
	if endpoint != "features" && endpoint != "audit" {
		return fmt.Errorf("unknown endpoint %q", endpoint)
	}
	runs := c.Int("runs")

	fmt.Println("=== AEO Audit Benchmark ===")
	fmt.Printf("API URL:   %s\n", apiURL)
	fmt.Printf("Endpoint:  /api/v1/%s\n", endpoint)
	fmt.Printf("Runs/URL:  %d\n\n", runs)

	client := &http.Client{Timeout: 180 * time.Second}
	if err := checkAPI(client, apiURL); err != nil {
		return fmt.Errorf("cannot reach API at %s: %w", apiURL, err)
	}

	report := benchmarkReport{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		APIURL:     apiURL,
		Endpoint:   endpoint,
		RunsPerURL: runs,
	}

	for _, p := range defaultPages {
		fmt.Printf("Benchmarking [%s] %s ...\n", p.Label, p.URL)
		pr := pageResult{URL: p.URL, Label: p.Label}

		for i := 1; i <= runs; i++ {
			req := models.AuditRequest{URL: p.URL}
			if endpoint == "audit" {
				maxAge := c.Int("max-age")
				req.MaxAge = &maxAge
			}
			rr := runOnce(client, apiURL+"/api/v1/"+endpoint, c.String("api-key"), req)
			rr.Run = i
			if rr.Success {
				fmt.Printf("  Run %d/%d %s %dms %s\n", i, runs, ok.Sprint("OK"), rr.TotalMs, rr.CacheStatus)
			} else {
				fmt.Printf("  Run %d/%d %s %s\n", i, runs, failed.Sprint("FAILED"), rr.Error)
			}
			pr.Runs = append(pr.Runs, rr)
		}

		pr.Averages = computeAverages(pr.Runs)
		report.Results = append(report.Results, pr)
		fmt.Println()
	}

	printTable(report.Results)

	if err := writeJSON(c.String("output"), report); err != nil {
		return fmt.Errorf("write JSON output: %w", err)
	}
	fmt.Printf("\nDetailed results written to %s\n", c.String("output"))
	return nil
}

func checkAPI(client *http.Client, baseURL string) error {
	resp, err := client.Get(baseURL + "/api/v1/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// runOnce posts req to target. The features response decodes into
// AuditResponse too since both share success, timing and error.
func runOnce(client *http.Client, target, apiKey string, req models.AuditRequest) runResult {
	var rr runResult

	body, err := json.Marshal(req)
	if err != nil {
		rr.Error = fmt.Sprintf("marshal error: %v", err)
		return rr
	}
	httpReq, err := http.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		rr.Error = fmt.Sprintf("request error: %v", err)
		return rr
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		rr.Error = fmt.Sprintf("request failed: %v", err)
		return rr
	}
	defer resp.Body.Close()
	rr.HTTPStatus = resp.StatusCode

	var ar models.AuditResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		rr.Error = fmt.Sprintf("decode error: %v", err)
		return rr
	}

	rr.Success = ar.Success
	rr.TotalMs = ar.Timing.TotalMs
	rr.FetchMs = ar.Timing.FetchMs
	rr.ExtractMs = ar.Timing.ExtractMs
	rr.OracleMs = ar.Timing.OracleMs
	rr.CacheStatus = ar.CacheStatus
	if ar.Report != nil {
		rr.Score = ar.Report.Scores.Overall
		rr.Fixes = len(ar.Report.Prioritized.Fixes)
	}
	if ar.Error != nil {
		rr.Error = fmt.Sprintf("[%s] %s", ar.Error.Code, ar.Error.Message)
	}
	return rr
}

func computeAverages(runs []runResult) *pageAverages {
	var n float64
	var avg pageAverages

	for _, r := range runs {
		if !r.Success {
			continue
		}
		n++
		avg.TotalMs += float64(r.TotalMs)
		avg.FetchMs += float64(r.FetchMs)
		avg.ExtractMs += float64(r.ExtractMs)
		avg.OracleMs += float64(r.OracleMs)
		avg.Score += r.Score
	}
	if n == 0 {
		return nil
	}

	avg.TotalMs /= n
	avg.FetchMs /= n
	avg.ExtractMs /= n
	avg.OracleMs /= n
	avg.Score /= n
	return &avg
}

// medianStatus returns the middle HTTP status of the runs, 0 when empty.
func medianStatus(runs []runResult) int {
	if len(runs) == 0 {
		return 0
	}
	codes := make([]int, len(runs))
	for i, r := range runs {
		codes[i] = r.HTTPStatus
	}
	sort.Ints(codes)
	return codes[len(codes)/2]
}

func printTable(results []pageResult) {
	fmt.Println(strings.Repeat("─", 90))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "URL\tTotal\tFetch\tExtract\tOracle\tScore\tStatus\n")

	for _, r := range results {
		if r.Averages == nil {
			fmt.Fprintf(w, "%s\tFAILED\t-\t-\t-\t-\t%d\n", truncateURL(r.URL, 40), medianStatus(r.Runs))
			continue
		}
		a := r.Averages
		fmt.Fprintf(w, "%s\t%.0fms\t%.0fms\t%.0fms\t%.0fms\t%.0f\t%d\n",
			truncateURL(r.URL, 40), a.TotalMs, a.FetchMs, a.ExtractMs, a.OracleMs, a.Score, medianStatus(r.Runs))
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 90))
}

func truncateURL(u string, max int) string {
	if len(u) <= max {
		return u
	}
	return u[:max-3] + "..."
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
