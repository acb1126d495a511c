package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/trustcheck/internal/model"
	"github.com/sells-group/trustcheck/internal/query"
)

var queriesLang string

var queriesCmd = &cobra.Command{
	Use:   "queries <name>",
	Short: "Print the search queries a screening would issue, without searching",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fallback, err := model.ParseLanguage(cfg.Screen.DefaultLanguage, model.LanguageEN)
		if err != nil {
			return err
		}
		lang, err := model.ParseLanguage(queriesLang, fallback)
		if err != nil {
			return err
		}

		exp, err := newExpander(cfg)
		if err != nil {
			return err
		}

		name := strings.TrimSpace(strings.Join(args, " "))
		queries, err := exp.Expand(name, lang)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, q := range query.WithFallback(queries, name) {
			fmt.Fprintf(out, "%s\t%s\n", q.ID, q.Text)
		}
		return nil
	},
}

func init() {
	queriesCmd.Flags().StringVar(&queriesLang, "lang", "", "language: en or it (default from config)")
	rootCmd.AddCommand(queriesCmd)
}
