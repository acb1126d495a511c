package main

import (
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/trustcheck/internal/export"
	"github.com/sells-group/trustcheck/internal/model"
)

var (
	screenLang       string
	screenMaxResults int
	screenFormat     string
	screenOut        string
)

var screenCmd = &cobra.Command{
	Use:   "screen <name>",
	Short: "Screen one person or organization for adverse media",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("screen"); err != nil {
			return err
		}

		format, err := export.ParseFormat(screenFormat)
		if err != nil {
			return err
		}
		lang, err := model.ParseLanguage(screenLang, "")
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		env, err := initScreening(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		rep, err := env.Service.Screen(ctx, strings.Join(args, " "), lang, screenMaxResults)
		if err != nil {
			return err
		}

		return writeReport(cmd.OutOrStdout(), screenOut, rep, format)
	},
}

// writeReport writes rep to path, or to stdout when path is empty.
func writeReport(stdout io.Writer, path string, rep *model.ScreeningReport, format export.Format) error {
	if path == "" {
		return export.Write(stdout, rep, format)
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "screen: create %s", path)
	}
	if err := export.Write(f, rep, format); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "screen: close %s", path)
	}

	zap.L().Info("report written",
		zap.String("path", path),
		zap.String("format", string(format)),
		zap.Int("adverse_count", rep.AdverseCount),
	)
	return nil
}

func init() {
	screenCmd.Flags().StringVar(&screenLang, "lang", "", "language: en or it (default from config)")
	screenCmd.Flags().IntVar(&screenMaxResults, "max-results", 0, "target distinct results, 10-100 (default from config)")
	screenCmd.Flags().StringVar(&screenFormat, "format", string(export.JSON), "output format: json, yaml, csv, xlsx")
	screenCmd.Flags().StringVarP(&screenOut, "out", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(screenCmd)
}
