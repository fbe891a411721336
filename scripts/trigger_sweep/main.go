// Command trigger_sweep calls the expiration sweep endpoint and prints the
// run summary. Useful for manual runs and for smoke-testing scheduler
// credentials.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

type sweepDetails struct {
	EmailsSent     int      `json:"emailsSent"`
	ProcessedUsers int      `json:"processedUsers"`
	ErrorCount     int      `json:"errorCount"`
	Errors         []string `json:"errors"`
}

type sweepResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Details sweepDetails `json:"details"`
}

func main() {
	var (
		baseURL     string
		token       string
		asScheduler bool
		signature   string
		timeout     time.Duration
	)

	flag.StringVar(&baseURL, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&token, "token", os.Getenv("CRON_SECRET_KEY"), "Cron trigger token")
	flag.BoolVar(&asScheduler, "scheduler", false, "Impersonate the platform scheduler User-Agent")
	flag.StringVar(&signature, "signature", "docnotify-scheduler", "Scheduler User-Agent signature")
	flag.DurationVar(&timeout, "timeout", 2*time.Minute, "HTTP client timeout")
	flag.Parse()

	if token == "" {
		log.Fatal("a trigger token is required (flag -token or CRON_SECRET_KEY)")
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/v1/internal/cron/check-expirations", nil)
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if asScheduler {
		req.Header.Set("User-Agent", signature+"/manual")
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("trigger sweep: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Fatalf("trigger rejected: HTTP %d", resp.StatusCode)
	}

	var result sweepResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Fatalf("decode response: %v", err)
	}

	fmt.Printf("success:         %v\n", result.Success)
	fmt.Printf("message:         %s\n", result.Message)
	fmt.Printf("processed users: %d\n", result.Details.ProcessedUsers)
	fmt.Printf("emails sent:     %d\n", result.Details.EmailsSent)
	fmt.Printf("errors:          %d\n", result.Details.ErrorCount)
	for _, msg := range result.Details.Errors {
		fmt.Printf("  - %s\n", msg)
	}

	if !result.Success {
		os.Exit(1)
	}
}
