package main

import (
	"github.com/propertyplus/propertyplus/internal/env"
	"github.com/propertyplus/propertyplus/internal/migrations"
	"github.com/spf13/cobra"
)

func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			env.Initialize()
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			return migrations.Up(logger)
		},
	}
}
