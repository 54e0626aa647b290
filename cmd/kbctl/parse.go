package main

import (
	"fmt"
	"io"
	"os"

	"bi-admin/internal/parser"
	"bi-admin/internal/service"
	"bi-admin/pkg/cache"

	"github.com/bytedance/sonic"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var parseJSON bool

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a documentation file without saving it",
	Long: `Parse a documentation file and print how many records landed in each
section. Use "-" to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := readSource(cmd, args[0])
		if err != nil {
			return err
		}

		svc := service.NewKnowledgeService(nil, cache.Noop{}, zap.NewNop())
		sections, stats, err := svc.PreviewParse(content)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if parseJSON {
			data, err := sonic.ConfigStd.MarshalIndent(sections, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode sections: %w", err)
			}
			_, err = fmt.Fprintln(out, string(data))
			return err
		}

		printStats(out, args[0], stats)
		return nil
	},
}

func init() {
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "print the parsed sections as JSON")
	rootCmd.AddCommand(parseCmd)
}

func readSource(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func printStats(w io.Writer, source string, stats parser.Stats) {
	title := color.New(color.FgCyan, color.Bold).SprintFunc()
	count := color.New(color.FgGreen).SprintFunc()
	warn := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintf(w, "%s\n", title(source))
	rows := []struct {
		name string
		n    int
	}{
		{"medidas", stats.Medidas},
		{"tabelas", stats.Tabelas},
		{"queries", stats.Queries},
		{"exemplos", stats.Exemplos},
	}
	for _, r := range rows {
		n := count(r.n)
		if r.n == 0 {
			n = warn(r.n)
		}
		fmt.Fprintf(w, "  %-9s %s\n", r.name, n)
	}
	base := count("yes")
	if !stats.HasBase {
		base = warn("no")
	}
	fmt.Fprintf(w, "  %-9s %s\n", "base", base)
}
