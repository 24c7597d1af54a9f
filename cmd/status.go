package cmd

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
	Long: `Queries the job server for status information.
If no job-id is provided, lists all jobs.
If a job-id is provided, shows detailed status for that job.`,
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
		fmt.Printf("Job ID: %s\n", job["id"])
		fmt.Printf("  State: %s\n", job["state"])
		if config, ok := job["config"].(map[string]interface{}); ok {
			fmt.Printf("  Target: %s\n", config["refPath"])
			fmt.Printf("  Shape: %s x %v\n", config["kind"], config["shapes"])
		}
		if sim, ok := job["similarity"].(float64); ok && sim > 0 {
			fmt.Printf("  Similarity: %.2f%%\n", sim)
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

	fmt.Printf("Job: %s\n", status["id"])
	fmt.Printf("State: %s\n", status["state"])
	fmt.Println()

	if config, ok := status["config"].(map[string]interface{}); ok {
		fmt.Println("Configuration:")
		fmt.Printf("  Target: %s\n", config["refPath"])
		fmt.Printf("  Shape: %s\n", config["kind"])
		fmt.Printf("  Number: %v\n", config["shapes"])
		fmt.Printf("  Iterations: %v\n", config["iterations"])
		fmt.Println()
	}

	fmt.Println("Progress:")
	fmt.Printf("  Iteration: %v\n", status["iteration"])
	fmt.Printf("  Changes: %v\n", status["changes"])
	if initial, ok := status["initialScore"].(float64); ok && initial > 0 {
		fmt.Printf("  Score: %.0f -> %.0f\n", initial, status["score"])
	}
	if sim, ok := status["similarity"].(float64); ok {
		fmt.Printf("  Similarity: %.2f%%\n", sim)
	}

	if elapsed, ok := status["elapsed"].(float64); ok {
		fmt.Printf("  Elapsed: %s\n", time.Duration(elapsed*float64(time.Second)).Round(time.Millisecond))
	}
	if ips, ok := status["ips"].(float64); ok && ips > 0 {
		fmt.Printf("  Throughput: %.0f iterations/sec\n", ips)
	}

	if errMsg, ok := status["error"].(string); ok && errMsg != "" {
		fmt.Printf("\nError: %s\n", errMsg)
	}

	return nil
}
