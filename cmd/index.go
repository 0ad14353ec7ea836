package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Embed the document folder and report the index size",
	Long:  `Loads every document of corpus.dir, embeds it (filling the local embedding cache) and prints the resulting vector count and dimensions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		svc, err := buildService(context.Background(), cfg, database, nil)
		if err != nil {
			return err
		}

		fmt.Printf("Indexed %d documents from %s (%d dimensions, metric %s)\n",
			svc.Len(), cfg.Corpus.Dir, svc.Dimensions(), cfg.Retrieval.Metric)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
