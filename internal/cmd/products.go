package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kamiza/kamiza/internal/catalog"
	"github.com/kamiza/kamiza/internal/output"
)

var (
	productsOutput string
	productsPath   string
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List the product catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(productsOutput)
		if err != nil {
			return err
		}
		path := productsPath
		if path == "" {
			path = currentConfig().Catalog.Path
		}
		return renderProducts(cmd.Context(), &catalog.FileStore{Path: path}, format, cmd.OutOrStdout())
	},
}

func renderProducts(ctx context.Context, store *catalog.FileStore, format output.Format, w io.Writer) error {
	products, err := store.Products(ctx)
	if err != nil {
		return err
	}
	rendered, err := output.Render(format, output.Products(products))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, rendered)
	return err
}

func init() {
	rootCmd.AddCommand(productsCmd)
	productsCmd.Flags().StringVarP(&productsOutput, "output", "o", "table", "output format: table, json, markdown")
	productsCmd.Flags().StringVar(&productsPath, "file", "", "catalog file (overrides catalog.path)")
}
