package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
	actor   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tajbilling-cli",
		Short: "TajBilling CLI tool",
		Long:  `A command line interface for interacting with the TajBilling API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the TajBilling API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&actor, "actor", "cli", "Actor recorded in the audit trail")

	// Reconciliation commands
	reconcileCmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconciliation operations",
	}

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Run the full reconciliation report",
		Run: func(cmd *cobra.Command, args []string) {
			runReport()
		},
	}

	ownerMatchesCmd := &cobra.Command{
		Use:   "owner-matches",
		Short: "List fuzzy owner-name match suggestions",
		Run: func(cmd *cobra.Command, args []string) {
			runOwnerMatches()
		},
	}

	reconcileCmd.AddCommand(reportCmd, ownerMatchesCmd)
	rootCmd.AddCommand(reconcileCmd)

	// Invoice commands
	invoiceCmd := &cobra.Command{
		Use:   "invoices",
		Short: "Invoice operations",
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Mark unpaid invoices past their due date as overdue",
		Run: func(cmd *cobra.Command, args []string) {
			runSweep()
		},
	}

	invoiceCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(invoiceCmd)

	// Bulk generation commands
	var year, month int
	var readingsFile string

	bulkCmd := &cobra.Command{
		Use:   "bulk",
		Short: "Bulk billing operations",
	}

	bulkCAMCmd := &cobra.Command{
		Use:   "cam",
		Short: "Generate CAM charges for every active property",
		Run: func(cmd *cobra.Command, args []string) {
			runBulkCAM(year, month)
		},
	}
	bulkCAMCmd.Flags().IntVar(&year, "year", time.Now().Year(), "Billing year")
	bulkCAMCmd.Flags().IntVar(&month, "month", int(time.Now().Month()), "Billing month (1-12)")

	bulkElectricityCmd := &cobra.Command{
		Use:   "electricity",
		Short: "Generate electricity bills from a meter readings file",
		Run: func(cmd *cobra.Command, args []string) {
			runBulkElectricity(year, month, readingsFile)
		},
	}
	bulkElectricityCmd.Flags().IntVar(&year, "year", time.Now().Year(), "Billing year")
	bulkElectricityCmd.Flags().IntVar(&month, "month", int(time.Now().Month()), "Billing month (1-12)")
	bulkElectricityCmd.Flags().StringVar(&readingsFile, "readings", "", "Path to a JSON file of meter readings")
	bulkElectricityCmd.MarkFlagRequired("readings")

	bulkCmd.AddCommand(bulkCAMCmd, bulkElectricityCmd)
	rootCmd.AddCommand(bulkCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runReport() {
	body, status, err := doRequest(http.MethodGet, "/api/v1/reconciliation/report", nil)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	if status != http.StatusOK {
		fmt.Printf("Reconciliation report FAILED (Status: %d)\nResponse: %s\n", status, string(body))
		os.Exit(1)
	}
	printJSON(body)
}

func runOwnerMatches() {
	body, status, err := doRequest(http.MethodGet, "/api/v1/reconciliation/owner-matches", nil)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	if status != http.StatusOK {
		fmt.Printf("Owner match lookup FAILED (Status: %d)\nResponse: %s\n", status, string(body))
		os.Exit(1)
	}
	printJSON(body)
}

func runSweep() {
	body, status, err := doRequest(http.MethodPost, "/api/v1/invoices/sweep", nil)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	if status != http.StatusOK {
		fmt.Printf("Overdue sweep FAILED (Status: %d)\nResponse: %s\n", status, string(body))
		os.Exit(1)
	}
	printJSON(body)
}

func runBulkCAM(year, month int) {
	payload, _ := json.Marshal(map[string]int{"year": year, "month": month})
	body, status, err := doRequest(http.MethodPost, "/api/v1/cam-charges/bulk", payload)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	if status != http.StatusOK {
		fmt.Printf("Bulk CAM generation FAILED (Status: %d)\nResponse: %s\n", status, string(body))
		os.Exit(1)
	}
	printJSON(body)
}

func runBulkElectricity(year, month int, readingsFile string) {
	readings, err := os.ReadFile(readingsFile)
	if err != nil {
		fmt.Printf("Error reading %s: %v\n", readingsFile, err)
		os.Exit(1)
	}

	payload, err := bulkElectricityPayload(year, month, readings)
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}

	body, status, err := doRequest(http.MethodPost, "/api/v1/electricity-bills/bulk", payload)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	if status != http.StatusOK {
		fmt.Printf("Bulk electricity generation FAILED (Status: %d)\nResponse: %s\n", status, string(body))
		os.Exit(1)
	}
	printJSON(body)
}

// bulkElectricityPayload wraps a raw readings array into the bulk request body.
func bulkElectricityPayload(year, month int, readings []byte) ([]byte, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(readings, &items); err != nil {
		return nil, fmt.Errorf("readings file must contain a JSON array: %w", err)
	}
	return json.Marshal(map[string]any{
		"year":     year,
		"month":    month,
		"readings": items,
	})
}

func doRequest(method, path string, payload []byte) ([]byte, int, error) {
	client := &http.Client{Timeout: timeout}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, baseURL+path, reqBody)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-ID", actor)

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

func printJSON(body []byte) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return
	}
	fmt.Println(pretty.String())
}
