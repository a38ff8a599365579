package main

import (
	"os"

	"go.uber.org/zap"

	"github.com/raywall/terraform-provider-dlfmwrk/internal/cli"
)

func init() {
	zap.ReplaceGlobals(zap.Must(zap.NewProduction()))
}

func main() {
	root := cli.NewRootCmd()
	if err := root.Execute(); err != nil {
		zap.L().Fatal("Failed to execute root command", zap.Error(err))
	}
	os.Exit(0)
}
