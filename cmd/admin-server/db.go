package main

import "github.com/spf13/cobra"

func newDBCmd(c *cli) *cobra.Command {
	db := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	db.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the users and log_entries tables",
		Long:  `Creates the schema if it does not exist. Safe to run repeatedly.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			factory, err := c.repositories()
			if err != nil {
				return err
			}
			defer factory.Close()

			return factory.GetDB().InitSchema(cmd.Context())
		},
	})

	return db
}
