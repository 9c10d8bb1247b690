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

	"github.com/iho/gobalance/internal/infrastructure/logger"
	"github.com/iho/gobalance/internal/infrastructure/postgres"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gobalance-cli",
		Short: "GoBalance CLI tool",
		Long:  `A command line interface for interacting with the GoBalance API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the GoBalance API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	balanceCmd := &cobra.Command{
		Use:   "balance",
		Short: "Balance operations",
	}
	balanceCmd.AddCommand(createBalanceCmd(), getBalanceCmd(), applyCmd())

	entryCmd := &cobra.Command{
		Use:   "entry",
		Short: "Ledger entry operations",
	}
	entryCmd.AddCommand(getEntryCmd())

	rootCmd.AddCommand(balanceCmd, entryCmd, migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func createBalanceCmd() *cobra.Command {
	var initial string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/api/v1/balances", "", map[string]any{
				"initial_amount": initial,
			})
		},
	}

	cmd.Flags().StringVar(&initial, "initial", "0", "Initial amount")

	return cmd
}

func getBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <balance-id>",
		Short: "Get a balance by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/balances/" + args[0])
		},
	}
}

func applyCmd() *cobra.Command {
	var (
		amount           string
		token            string
		strategy         string
		guard            string
		transactionToken string
	)

	cmd := &cobra.Command{
		Use:   "apply <balance-id>",
		Short: "Apply an idempotent mutation to a balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{"amount": amount}

			if strategy != "" {
				body["strategy"] = strategy
			}
			if guard != "" {
				body["guard"] = guard
			}
			if transactionToken != "" {
				body["transaction_token"] = transactionToken
			}

			return postJSON("/api/v1/balances/"+args[0]+"/apply", token, body)
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "Signed amount to apply")
	cmd.Flags().StringVar(&token, "token", "", "Idempotency token")
	cmd.Flags().StringVar(&strategy, "strategy", "", "Concurrency strategy: lock, optimistic or token")
	cmd.Flags().StringVar(&guard, "guard", "", "Duplicate guard: probe or insert-first")
	cmd.Flags().StringVar(&transactionToken, "transaction-token", "", "Token stamped onto the balance (token strategy)")
	cmd.MarkFlagRequired("amount")
	cmd.MarkFlagRequired("token")

	return cmd
}

func getEntryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <token>",
		Short: "Get the entry recorded for a token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/entries/" + args[0])
		},
	}
}

func migrateCmd() *cobra.Command {
	var (
		databaseURL    string
		migrationsPath string
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}

	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Database URL")
	cmd.PersistentFlags().StringVar(&migrationsPath, "path", "migrations", "Migrations directory")
	cmd.MarkPersistentFlagRequired("database-url")

	log := logger.New(logger.Config{Level: "info", Format: "console"})

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return postgres.RunMigrations(databaseURL, migrationsPath, log)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return postgres.RunMigrationsDown(databaseURL, migrationsPath, log)
			},
		},
	)

	return cmd
}

func getJSON(path string) error {
	client := &http.Client{Timeout: timeout}

	resp, err := client.Get(baseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func postJSON(path, idempotencyKey string, body map[string]any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	client := &http.Client{Timeout: timeout}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		fmt.Println(string(body))
	} else {
		printJSON(parsed)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	return nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to format output: %v\n", err)
		return
	}

	fmt.Println(string(out))
}
