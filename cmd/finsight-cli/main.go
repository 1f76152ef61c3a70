// finsight-cli 离线执行表格识别、转换与仪表盘计算，输出 JSON
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"finsight/internal/config"
	"finsight/internal/dashboard"
	"finsight/internal/exporter"
	"finsight/internal/format"
	"finsight/internal/importer"
	"finsight/internal/model"
	"finsight/internal/normalizer"
	"finsight/internal/parser"
)

type cliOptions struct {
	pretty      bool
	outputPath  string
	lexiconPath string
	sampleRows  int
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &cliOptions{}
	defaults := config.DefaultConfig()

	root := &cobra.Command{
		Use:          "finsight-cli",
		Short:        "Classify financial spreadsheets and compute dashboards",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.PersistentFlags().BoolVar(&opts.pretty, "pretty", false, "Pretty-print JSON output")
	root.PersistentFlags().StringVarP(&opts.outputPath, "output", "o", "", "Output file path (default: stdout)")
	root.PersistentFlags().StringVar(&opts.lexiconPath, "lexicon", "", "Synonym lexicon YAML (default: built-in)")
	root.PersistentFlags().IntVar(&opts.sampleRows, "sample-rows", defaults.Data.SampleRows, "Rows sampled for classification")

	root.AddCommand(
		newClassifyCmd(opts),
		newNormalizeCmd(opts),
		newDashboardCmd(opts, defaults),
	)
	return root
}

func newClassifyCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "classify [file]",
		Short: "Detect the shape of a CSV/XLSX/XLS file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			classifier, err := opts.classifier()
			if err != nil {
				return err
			}
			table, _, err := importer.ReadFile(args[0])
			if err != nil {
				return err
			}
			return opts.write(cmd, map[string]any{
				"filename":   args[0],
				"headers":    table.Headers(),
				"rowCount":   table.Len(),
				"assessment": classifier.ClassifyTable(table, opts.sampleRows),
			})
		},
	}
}

func newNormalizeCmd(opts *cliOptions) *cobra.Command {
	rules := normalizer.DefaultRules()
	var years []string

	cmd := &cobra.Command{
		Use:   "normalize [file]",
		Short: "Apply unpivot / debit-credit transformations to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			classifier, err := opts.classifier()
			if err != nil {
				return err
			}
			table, _, err := importer.ReadFile(args[0])
			if err != nil {
				return err
			}
			rules.YearColumns = years
			return opts.write(cmd, normalizer.Normalize(table, rules, classifier))
		},
	}
	f := cmd.Flags()
	f.BoolVar(&rules.Unpivot, "unpivot", false, "Melt year columns into (year, amount) rows")
	f.StringSliceVar(&years, "years", nil, "Year columns to unpivot (default: detected)")
	f.BoolVar(&rules.DeriveAmount, "debit-credit", false, "Derive amount = debit - credit")
	f.StringVar(&rules.DebitColumn, "debit", "", "Debit column (default: detected)")
	f.StringVar(&rules.CreditColumn, "credit", "", "Credit column (default: detected)")
	f.BoolVar(&rules.DropEmptyRows, "drop-empty-rows", true, "Drop rows with no values")
	f.BoolVar(&rules.DropEmptyColumns, "drop-empty-columns", true, "Drop columns with no values")
	f.BoolVar(&rules.InvertSigns, "invert-signs", false, "Negate numeric values of the amount column")
	f.StringVar(&rules.Mapping.DateColumn, "date-column", "", "Rename this column to \"date\"")
	f.StringVar(&rules.Mapping.AmountColumn, "amount-column", "", "Rename this column to \"amount\"")
	f.StringVar(&rules.Mapping.CategoryColumn, "category-column", "", "Rename this column to \"category\"")
	f.StringVar(&rules.Mapping.ConceptColumn, "concept-column", "", "Rename this column to \"concept\"")
	return cmd
}

func newDashboardCmd(opts *cliOptions, defaults *config.AppConfig) *cobra.Command {
	var (
		example  bool
		currency string
		locale   string
		xlsxPath string
	)
	cmd := &cobra.Command{
		Use:   "dashboard [bundle.json]",
		Short: "Compute indicators, ratios and charts from analysis results",
		Args: func(cmd *cobra.Command, args []string) error {
			if example {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := format.New(currency, locale)
			if err != nil {
				return err
			}
			bundle := dashboard.ExampleBundle()
			if !example {
				if bundle, err = readBundle(args[0]); err != nil {
					return err
				}
			}
			d := dashboard.Build(bundle, dashboard.Options{Formatter: formatter})
			if xlsxPath != "" {
				if err := writeWorkbook(xlsxPath, d); err != nil {
					return err
				}
			}
			return opts.write(cmd, d)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&example, "example", false, "Use the built-in example analyses")
	f.StringVar(&currency, "currency", defaults.Display.Currency, "ISO 4217 display currency")
	f.StringVar(&locale, "locale", defaults.Display.Locale, "BCP 47 display locale")
	f.StringVar(&xlsxPath, "xlsx", "", "Also write the dashboard to an XLSX workbook")
	return cmd
}

func writeWorkbook(path string, d dashboard.Dashboard) error {
	f, err := exporter.Write(exporter.Workbook{Dashboard: d}, nil)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func readBundle(path string) (model.AnalysisBundle, error) {
	var bundle model.AnalysisBundle
	data, err := os.ReadFile(path)
	if err != nil {
		return bundle, fmt.Errorf("failed to read bundle: %w", err)
	}
	if err := json.Unmarshal(data, &bundle); err != nil {
		return bundle, fmt.Errorf("invalid bundle %s: %w", path, err)
	}
	return bundle, nil
}

func (o *cliOptions) classifier() (*parser.ShapeClassifier, error) {
	lexicon, err := parser.LoadLexicon(o.lexiconPath)
	if err != nil {
		return nil, err
	}
	return parser.NewShapeClassifier(lexicon), nil
}

func (o *cliOptions) write(cmd *cobra.Command, v any) error {
	var (
		data []byte
		err  error
	)
	if o.pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	if o.outputPath != "" {
		if err := os.WriteFile(o.outputPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
