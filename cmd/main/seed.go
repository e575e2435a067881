package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"gitlab.com/timkado/api/agency-core/internal/seed"
	"gitlab.com/timkado/api/agency-core/pkg/logger"
	"gitlab.com/timkado/api/agency-core/pkg/utils"
)

func seedCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load reference or sample data",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "acord125",
		Short: "Create the ACORD 125 template and its fields",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx := context.Background()
			repo, err := initPostgresRepo(ctx, cfg.Database.PostgresDSN, cfg.Database.PostgresAutoMigrate)
			if err != nil {
				return err
			}
			defer closeRepo(repo)

			return utils.WrapWithContextRecovery("seed acord125", func(ctx context.Context) error {
				spec, err := seed.ACORD125()
				if err != nil {
					return err
				}
				res, err := seed.Template(ctx, repo, spec)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (id %d): %d fields created, %d already present\n",
					res.Document.Name, res.Document.ID, res.FieldsCreated, res.FieldsSkipped)
				return nil
			})(ctx)
		},
	})

	opts := seed.SampleOptions{}
	sample := &cobra.Command{
		Use:   "sample",
		Short: "Create a sample user, agency, customers and businesses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx := context.Background()
			repo, err := initPostgresRepo(ctx, cfg.Database.PostgresDSN, cfg.Database.PostgresAutoMigrate)
			if err != nil {
				return err
			}
			defer closeRepo(repo)

			return utils.WrapWithContextRecovery("seed sample", func(ctx context.Context) error {
				res, err := seed.Sample(ctx, repo, opts)
				if err != nil {
					return err
				}
				if !res.Created {
					fmt.Fprintf(cmd.OutOrStdout(), "user %s already exists, nothing to do\n", res.User.Username)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created user %s in agency %q with %d customers\n",
					res.User.Username, res.Agency.Name, res.Customers)
				return nil
			})(ctx)
		},
	}
	sample.Flags().StringVar(&opts.Username, "username", seed.DefaultSampleUsername, "Username of the sample user")
	sample.Flags().StringVar(&opts.Email, "email", seed.DefaultSampleEmail, "Email of the sample user")
	sample.Flags().StringVar(&opts.Password, "password", seed.DefaultSamplePassword, "Password of the sample user")
	sample.Flags().IntVar(&opts.Customers, "customers", 5, "Number of fake customers to create")
	cmd.AddCommand(sample)

	return cmd
}
