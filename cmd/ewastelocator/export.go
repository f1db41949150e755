package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ewastelocator/internal/config"
	"ewastelocator/internal/exporter"
	"ewastelocator/internal/util"
)

var (
	exportEmail  string
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a user's pickup folder",
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportEmail == "" {
			return errors.New("--email is required")
		}
		format, err := exporter.ParseFormat(exportFormat)
		if err != nil {
			return err
		}

		st, err := openStore(config.ResolveDataDir(cfg))
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		var artifact exporter.Artifact
		switch format {
		case exporter.FormatXLSX:
			folder, err := st.Folder(ctx, exportEmail)
			if err != nil {
				return err
			}
			if artifact, err = exporter.XLSX(exportEmail, folder); err != nil {
				return err
			}
		default:
			raw, err := st.FolderJSON(ctx, exportEmail)
			if err != nil {
				return err
			}
			artifact = exporter.JSON(exportEmail, raw)
		}

		path := filepath.Join(exportOut, artifact.FileName)
		if err := util.WriteFileAtomic(path, artifact.Body, 0644); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		logger.Info("folder exported", zap.String("email", exportEmail), zap.String("path", path))
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportEmail, "email", "", "用户邮箱")
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "导出格式 json / xlsx")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", ".", "输出目录")
}
