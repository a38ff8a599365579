// Package cli contém os comandos do dlfmwrk-stack.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/raywall/terraform-provider-dlfmwrk/internal/config"
	"github.com/raywall/terraform-provider-dlfmwrk/internal/stack"
	tpl "github.com/raywall/terraform-provider-dlfmwrk/internal/template"
)

var Version = "dev"

type options struct {
	// vars substitui o ambiente do processo quando definido.
	vars map[string]string

	environment string
	configFile  string
	format      string
	// explicitEnv indica que o ambiente veio da flag ou de DLFMWRK_ENVIRONMENT.
	explicitEnv bool

	env       config.Env
	overrides *config.Overrides
	log       *zap.Logger
}

// NewRootCmd monta a árvore de comandos.
func NewRootCmd() *cobra.Command {
	return newRootCmd(nil)
}

func newRootCmd(vars map[string]string) *cobra.Command {
	o := &options{vars: vars}
	root := &cobra.Command{
		Use:   "dlfmwrk-stack",
		Short: "Render and check the data lake framework lambda stack",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.load()
		},
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&o.environment, "env", "e", "", "environment suffix (DLFMWRK_ENVIRONMENT)")
	flags.StringVar(&o.configFile, "config", "", "TOML overrides file (DLFMWRK_CONFIG)")
	flags.StringVar(&o.format, "format", "", "template format, yaml or json (DLFMWRK_FORMAT)")

	root.AddCommand(newRenderCmd(o), newNamesCmd(o), newLintCmd(o), newVersionCmd())
	return root
}

// load combina ambiente e flags e lê o arquivo de overrides.
func (o *options) load() error {
	var err error
	if o.vars != nil {
		o.env, err = config.LoadEnvFrom(o.vars)
	} else {
		o.env, err = config.LoadEnv()
	}
	if err != nil {
		return err
	}
	o.explicitEnv = o.environment != "" || o.lookup("DLFMWRK_ENVIRONMENT")
	if o.environment == "" {
		o.environment = o.env.Environment
	}
	if o.configFile == "" {
		o.configFile = o.env.ConfigFile
	}
	if o.format == "" {
		o.format = o.env.Format
	}

	if o.log, err = newLogger(o.env.LogLevel); err != nil {
		return err
	}
	if o.overrides, err = config.LoadOverrides(o.configFile); err != nil {
		return err
	}
	return nil
}

func (o *options) lookup(name string) bool {
	if o.vars != nil {
		_, ok := o.vars[name]
		return ok
	}
	_, ok := os.LookupEnv(name)
	return ok
}

func (o *options) synthesize(params map[string]string) (*stack.Result, error) {
	format, err := tpl.ParseFormat(o.format)
	if err != nil {
		return nil, err
	}
	res, err := stack.Synthesize(stack.Request{
		Environment: o.environment,
		Parameters:  params,
		Overrides:   o.overrides,
		Format:      format,
		Region:      o.env.Region,
		AccountID:   o.env.AccountID,
	})
	if err != nil {
		return nil, err
	}
	o.log.Debug("template synthesized",
		zap.String("environment", o.environment),
		zap.String("format", string(format)),
		zap.Int("bytes", len(res.Body)))
	return res, nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
