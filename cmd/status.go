package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var serverURL string

var statusCmd = &cobra.Command{
	Use:   "status [job-id]",
	Short: "Query server status or a specific job",
	Long: `Queries the server for job status information.
If no job-id is provided, lists all jobs.
If job-id is provided, shows detailed status for that job.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return listJobs(fmt.Sprintf("%s/api/v1/jobs", serverURL))
	}
	jobID := args[0]
	return getJobStatus(fmt.Sprintf("%s/api/v1/jobs/%s/status", serverURL, jobID), jobID)
}

func listJobs(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var jobs []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&jobs); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(jobs) == 0 {
		fmt.Println("No jobs found")
		return nil
	}

	fmt.Printf("Found %d job(s):\n\n", len(jobs))
	for _, job := range jobs {
		config, _ := job["config"].(map[string]interface{})
		fmt.Printf("Job ID: %s\n", job["id"])
		fmt.Printf("  State: %s\n", job["state"])
		fmt.Printf("  Problem: %s\n", config["problem"])
		fmt.Printf("  Optimizer: %s\n", config["optimizer"])
		if state, _ := job["state"].(string); state != "queued" {
			fmt.Printf("  Cost: %.6g -> %.6g\n", job["initialCost"], job["bestCost"])
		}
		fmt.Println()
	}

	return nil
}

func getJobStatus(url, jobID string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("job not found: %s", jobID)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var status map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	// Display status
	fmt.Printf("Job: %s\n", status["id"])
	fmt.Printf("State: %s\n", status["state"])
	fmt.Println()

	config, _ := status["config"].(map[string]interface{})
	fmt.Println("Configuration:")
	fmt.Printf("  Problem: %s\n", config["problem"])
	fmt.Printf("  Optimizer: %s\n", config["optimizer"])
	fmt.Printf("  Iterations: %v\n", config["iterations"])
	fmt.Printf("  Memory size: %v\n", config["memorySize"])
	if restarts, ok := config["restarts"].(float64); ok && restarts > 1 {
		fmt.Printf("  Restarts: %.0f\n", restarts)
	}
	fmt.Println()

	fmt.Println("Progress:")
	fmt.Printf("  Iterations: %v\n", status["iterations"])
	if initial, ok := status["initialCost"].(float64); ok && initial != 0 {
		fmt.Printf("  Initial cost: %.6g\n", initial)
	}
	if cost, ok := status["bestCost"].(float64); ok {
		fmt.Printf("  Best cost: %.6g\n", cost)
		if initial, ok := status["initialCost"].(float64); ok && initial != 0 {
			improvement := initial - cost
			fmt.Printf("  Improvement: %.6g (%.1f%%)\n", improvement, improvement/initial*100)
		}
	}
	if best, ok := status["best"].([]interface{}); ok && len(best) > 0 {
		fmt.Printf("  Best: %v\n", best)
	}
	if converged, ok := status["converged"].(bool); ok && converged {
		fmt.Println("  Converged early")
	}

	if elapsed, ok := status["elapsed"].(float64); ok {
		d := time.Duration(elapsed * float64(time.Second))
		fmt.Printf("  Elapsed: %s\n", d.Round(time.Millisecond))
	}

	if errMsg, ok := status["error"].(string); ok && errMsg != "" {
		fmt.Printf("\nError: %s\n", errMsg)
	}

	return nil
}
