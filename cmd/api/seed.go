package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/catalog"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
)

var (
	seedCatalog string
	seedCompany string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a service catalog from YAML into a company",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(seedCatalog)
		if err != nil {
			return fmt.Errorf("open catalog: %w", err)
		}
		defer f.Close()

		entries, err := catalog.Parse(f)
		if err != nil {
			return err
		}

		gdb, err := openDB()
		if err != nil {
			return err
		}

		var company models.Company
		if err := gdb.Where("slug = ?", seedCompany).First(&company).Error; err != nil {
			return fmt.Errorf("company %q: %w", seedCompany, err)
		}

		res, err := catalog.Seed(cmd.Context(), gdb, company.ID, entries)
		if err != nil {
			return err
		}
		logger.Info("seed complete",
			zap.String("company", company.Slug),
			zap.Int("created", res.Created),
			zap.Int("updated", res.Updated),
		)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedCatalog, "catalog", "services.yaml", "catalog YAML file")
	seedCmd.Flags().StringVar(&seedCompany, "company", "", "company slug")
	_ = seedCmd.MarkFlagRequired("company")
}
