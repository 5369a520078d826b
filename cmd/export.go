/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/jjudge-oj/glossary/config"
	"github.com/jjudge-oj/glossary/internal/db"
	"github.com/jjudge-oj/glossary/internal/services"
	"github.com/jjudge-oj/glossary/internal/storage"
	"github.com/jjudge-oj/glossary/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// exportCmd writes a snapshot straight from the database.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a JSON snapshot of the glossary to object storage",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		objects, err := storage.Open(cmd.Context(), cfg.Storage)
		if err != nil {
			return err
		}
		if objects == nil {
			return errors.New("STORAGE_BACKEND is not configured")
		}

		conn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer conn.Close()

		exportService := services.NewExportService(
			store.NewCategoryRepository(conn),
			store.NewTermRepository(conn),
			objects,
			nil,
			logger,
		)
		export, err := exportService.Create(cmd.Context(), "")
		if err != nil {
			return err
		}

		logger.Info("glossary exported", zap.String("key", export.Key), zap.String("bucket", objects.Bucket()))
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "key:    %s\n", export.Key)
		fmt.Fprintf(out, "size:   %d\n", export.Size)
		fmt.Fprintf(out, "sha256: %s\n", export.SHA256)
		if export.URL != "" {
			fmt.Fprintf(out, "url:    %s\n", export.URL)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
