package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/raywall/terraform-provider-dlfmwrk/internal/catalog"
)

func newRenderCmd(o *options) *cobra.Command {
	var (
		out    string
		params map[string]string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the CloudFormation template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := o.synthesize(params)
			if err != nil {
				return err
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(res.Body)
				return err
			}
			if err := os.WriteFile(out, res.Body, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			o.log.Info("template written", zap.String("path", out), zap.Int("bytes", len(res.Body)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the template to a file instead of stdout")
	cmd.Flags().StringToStringVarP(&params, "param", "p", nil, "parameter value as KEY=VALUE")
	return cmd
}

func newNamesCmd(o *options) *cobra.Command {
	var params map[string]string
	cmd := &cobra.Command{
		Use:   "names",
		Short: "Print the function names, code keys and layer name the stack produces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := o.synthesize(params)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SERVICE\tFUNCTION\tCODE KEY")
			for _, service := range catalog.Services() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", service, res.FunctionNames[service], res.CodeKeys[service])
			}
			fmt.Fprintf(w, "layer\t%s\t%s\n", res.LayerName, catalog.LayerCodeKey)
			return w.Flush()
		},
	}
	cmd.Flags().StringToStringVarP(&params, "param", "p", nil, "parameter value as KEY=VALUE")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the dlfmwrk-stack version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "dlfmwrk-stack %s\n", Version)
			return nil
		},
	}
}
