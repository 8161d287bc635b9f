package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	token   string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bankrec-cli",
		Short: "Bank statement reconciliation CLI",
		Long:  `A command line interface for the bankrec statement import API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the bankrec API")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token for authenticated deployments")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(undoCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(auditCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func importCmd() *cobra.Command {
	var bank string
	var idempotencyKey string

	cmd := &cobra.Command{
		Use:   "import <statement.csv>",
		Short: "Upload a bank statement and run an import batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(args[0], bank, idempotencyKey)
		},
	}

	cmd.Flags().StringVar(&bank, "bank", "", "Bank name hint for the parser")
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key so retried uploads import once")

	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <batch-id>",
		Short: "Show one import batch with its expenses and payments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/imports/" + args[0])
		},
	}
}

func undoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo <batch-id>",
		Short: "Reverse a completed import batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := newRequest(http.MethodDelete, "/api/v1/imports/"+args[0], nil)
			if err != nil {
				return err
			}
			return doAndPrint(req)
		},
	}
}

func historyCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List import batches, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/imports/?limit=" + strconv.Itoa(limit) + "&offset=" + strconv.Itoa(offset)
			return getJSON(path)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum batches to return")
	cmd.Flags().IntVar(&offset, "offset", 0, "Batches to skip")

	return cmd
}

func auditCmd() *cobra.Command {
	var action string
	var limit int

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the audit trail of imports and undos",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			query.Set("limit", strconv.Itoa(limit))
			if action != "" {
				query.Set("action", action)
			}
			return getJSON("/api/v1/audit-logs?" + query.Encode())
		},
	}

	cmd.Flags().StringVar(&action, "action", "", "Filter by action (statement.import, statement.undo)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries to return")

	return cmd
}

func runImport(filePath, bank, idempotencyKey string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open statement: %w", err)
	}
	defer file.Close()

	body, contentType, err := buildUpload(file, filepath.Base(filePath), bank)
	if err != nil {
		return err
	}

	req, err := newRequest(http.MethodPost, "/api/v1/imports/", body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	return doAndPrint(req)
}

func buildUpload(file io.Reader, fileName, bank string) (io.Reader, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, "", fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("read statement: %w", err)
	}
	if bank != "" {
		if err := writer.WriteField("bank", bank); err != nil {
			return nil, "", fmt.Errorf("build upload: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("build upload: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}

func getJSON(path string) error {
	req, err := newRequest(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return doAndPrint(req)
}

func newRequest(method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func doAndPrint(req *http.Request) error {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(payload))
	}

	if resp.Header.Get("X-Idempotency-Replay") == "true" {
		fmt.Println("(replayed earlier import)")
	}

	var pretty any
	if err := json.Unmarshal(payload, &pretty); err != nil {
		fmt.Println(string(payload))
		return nil
	}
	printJSON(pretty)
	return nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(out))
}
