package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/aeoaudit/models"
)

func main() {
	apiURL := os.Getenv("AEO_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("AEO_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "AEO_API_KEY is required")
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"aeoaudit",
		"0.1.0",
		server.WithToolCapabilities(false),
	)

	auditPageTool := mcp.NewTool("audit_page",
		mcp.WithDescription("Audit a web page for answer-engine optimisation. Scores nine categories (structured data, answer upfront, freshness, E-E-A-T, speakable, conciseness, crawler access, media, hreflang) and returns prioritised fixes."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the page to audit. Fetched by the server unless html is given."),
		),
		mcp.WithString("html",
			mcp.Description("Page HTML to audit instead of fetching the URL"),
		),
		mcp.WithString("robots_txt",
			mcp.Description("The site's robots.txt body, used together with html"),
		),
		mcp.WithNumber("max_words",
			mcp.Description("Maximum words of body text sent for scoring (default: 1200)"),
		),
		mcp.WithNumber("max_age",
			mcp.Description("Seconds a cached report for an unchanged page may be reused (default: server setting)"),
		),
	)
	s.AddTool(auditPageTool, handleAuditPage(apiURL, apiKey))

	extractFeaturesTool := mcp.NewTool("extract_features",
		mcp.WithDescription("Extract the bounded AEO feature document (head signals, JSON-LD, headings, text and metrics) for a page without scoring it."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the page"),
		),
		mcp.WithString("html",
			mcp.Description("Page HTML to use instead of fetching the URL"),
		),
		mcp.WithString("robots_txt",
			mcp.Description("The site's robots.txt body, used together with html"),
		),
	)
	s.AddTool(extractFeaturesTool, handleExtractFeatures(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiPost sends a POST request to the audit API and returns the response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// requestFromTool maps tool arguments onto the API request.
func requestFromTool(request mcp.CallToolRequest) (models.AuditRequest, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return models.AuditRequest{}, err
	}
	req := models.AuditRequest{
		URL:       url,
		HTML:      request.GetString("html", ""),
		RobotsTxt: request.GetString("robots_txt", ""),
		MaxWords:  int(request.GetFloat("max_words", 0)),
	}
	if maxAge := request.GetFloat("max_age", -1); maxAge >= 0 {
		v := int(maxAge)
		req.MaxAge = &v
	}
	return req, nil
}

func handleAuditPage(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 180 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req, err := requestFromTool(request)
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/audit", req)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("audit request failed: %v", err)), nil
		}

		var resp models.AuditResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse audit response: %v", err)), nil
		}
		if !resp.Success || resp.Report == nil {
			return mcp.NewToolResultError(errorMessage("audit failed", resp.Error)), nil
		}

		return mcp.NewToolResultText(formatReport(resp.Report)), nil
	}
}

func handleExtractFeatures(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 60 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req, err := requestFromTool(request)
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/features", req)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("features request failed: %v", err)), nil
		}

		var resp models.FeaturesResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse features response: %v", err)), nil
		}
		if !resp.Success || resp.Features == nil {
			return mcp.NewToolResultError(errorMessage("extraction failed", resp.Error)), nil
		}

		pretty, err := json.MarshalIndent(resp.Features, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to format features: %v", err)), nil
		}
		return mcp.NewToolResultText(string(pretty)), nil
	}
}
