package main

import (
	"github.com/propertyplus/propertyplus/internal/buildconfig"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "propertyplus",
		Short:        "PropertyPlus real estate platform server",
		Version:      buildconfig.Version(),
		SilenceUsage: true,
	}
	cmd.AddCommand(NewServeCommand(), NewMigrateCommand())
	return cmd
}

func newLogger() (*zap.Logger, error) {
	if buildconfig.IsRelease() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
