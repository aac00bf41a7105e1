package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the console web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		a.start()
		defer a.stop()
		err = a.serve()
		if err != nil {
			a.logger.PrintFatal(err, nil)
		}
		return err
	},
}

var importCmd = &cobra.Command{
	Use:   "import [catalog.yml]",
	Short: "Create books in bulk from a YAML catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.stop()

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		results, err := a.service.ImportBooks(cmd.Context(), f)
		if err != nil {
			return fmt.Errorf("failed to import catalog: %w", err)
		}
		failed := 0
		for _, res := range results {
			if res.Err != nil {
				failed++
				fmt.Fprintf(cmd.OutOrStdout(), "line %d %q: %v\n", res.Line, res.Title, res.Err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "line %d %q: created %s\n", res.Line, res.Title, res.Book.ID)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d created, %d failed\n", len(results)-failed, failed)
		if failed > 0 {
			return fmt.Errorf("%d records failed", failed)
		}
		return nil
	},
}

var exportSummaryCmd = &cobra.Command{
	Use:   "export-summary",
	Short: "Upload the borrow summary as CSV to the configured S3 bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.stop()

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()
		key, err := a.service.ExportBorrowSummary(ctx)
		if err != nil {
			return fmt.Errorf("failed to export borrow summary: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "uploaded s3://%s/%s\n", a.config.S3.Bucket, key)
		return nil
	},
}
