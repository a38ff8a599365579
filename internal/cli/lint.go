package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/raywall/terraform-provider-dlfmwrk/internal/catalog"
	"github.com/raywall/terraform-provider-dlfmwrk/internal/document"
	"github.com/raywall/terraform-provider-dlfmwrk/internal/lint"
	"github.com/raywall/terraform-provider-dlfmwrk/internal/resolve"
)

var ErrFindings = errors.New("lint findings")

func newLintCmd(o *options) *cobra.Command {
	var (
		params     map[string]string
		skipNaming bool
	)
	cmd := &cobra.Command{
		Use:   "lint <template>...",
		Short: "Check templates for required fields, references and naming",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := lo.Assign(params)
			if o.explicitEnv {
				overrides[catalog.ParamEnvironment] = o.environment
			}
			opts := lint.Options{
				Resolve: resolve.Options{
					Overrides: overrides,
					Region:    o.env.Region,
					AccountID: o.env.AccountID,
				},
				SkipNaming: skipNaming,
			}

			total := 0
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("reading %s: %w", path, err)
				}
				doc, err := document.Parse(data)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}

				report := lint.Check(doc, opts)
				if report.OK() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
					continue
				}
				for _, f := range report.Findings {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", path, f.Error())
				}
				o.log.Debug("template has findings", zap.String("path", path), zap.Strings("rules", report.Rules()))
				total += len(report.Findings)
			}
			if total > 0 {
				return fmt.Errorf("%w: %d", ErrFindings, total)
			}
			return nil
		},
	}
	cmd.Flags().StringToStringVarP(&params, "param", "p", nil, "parameter value as KEY=VALUE")
	cmd.Flags().BoolVar(&skipNaming, "skip-naming", false, "disable the aws-dl-fmwrk naming rule")
	return cmd
}
