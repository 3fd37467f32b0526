package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	woo "woosync/internal/services/woocommerce"
)

func newFindCommand() *cobra.Command {
	var sku string

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Prints the store product with a SKU",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()

			product, err := s.connector.FindBySKU(cmd.Context(), sku)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), product)
		},
	}

	cmd.Flags().StringVar(&sku, "sku", "", "SKU to look up")
	cmd.MarkFlagRequired("sku")

	return cmd
}

func newListCommand() *cobra.Command {
	var page, perPage int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Prints one page of store products",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()

			result, err := s.connector.ListProducts(cmd.Context(), woo.ListOptions{Page: page, PerPage: perPage})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&perPage, "per-page", 20, "Products per page (max 100)")

	return cmd
}

func newDeleteCommand() *cobra.Command {
	var (
		id    int64
		sku   string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Moves a product to the trash, or deletes it with --force",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (id == 0) == (sku == "") {
				return errors.New("exactly one of --id or --sku is required")
			}

			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()

			if id != 0 {
				product, err := s.connector.DeleteProduct(cmd.Context(), id, force)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), product)
			}

			product, err := s.connector.DeleteBySKU(cmd.Context(), sku, force)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), product)
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "Store product id")
	cmd.Flags().StringVar(&sku, "sku", "", "SKU of the product")
	cmd.Flags().BoolVar(&force, "force", false, "Delete permanently instead of trashing")

	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Checks the store connection and credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()

			status, err := s.connector.Ping(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), status)
		},
	}
}
