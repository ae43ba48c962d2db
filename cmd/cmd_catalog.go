package main

import (
	"context"
	"fmt"

	"github.com/akhdanrgya/teluhub-client/model"
	"github.com/spf13/cobra"
)

var (
	searchFlag   string
	categoryFlag string
	sortFlag     string
)

// teluhub products
var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := client.products.ListProducts(cmd.Context(), model.ProductFilter{
			Search:   searchFlag,
			Category: categoryFlag,
			Sort:     model.ProductSort(sortFlag),
		})
		if err != nil {
			return err
		}
		printProducts(items)
		return nil
	},
}

// teluhub product <slug>
var productCmd = &cobra.Command{
	Use:   "product <slug>",
	Short: "Show one product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := client.products.GetProduct(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		category := "-"
		if p.Category != nil {
			category = p.Category.Name
		}
		fmt.Println(headerStyle.Render(p.Name))
		fmt.Println(p.Description)
		fmt.Println(renderTable(
			[]string{"ID", "Price", "Stock", "Category", "Seller"},
			[][]string{{fmt.Sprint(p.ID), rupiah(p.Price), fmt.Sprint(p.Stock), category, p.Seller.Username}},
		))
		fmt.Println(mutedStyle.Render(fmt.Sprintf("teluhub cart add %d 1  •  teluhub watch %s", p.ID, p.Slug)))
		return nil
	},
}

// teluhub categories
var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List product categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		categories, err := client.products.Categories(cmd.Context())
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(categories))
		for _, c := range categories {
			rows = append(rows, []string{fmt.Sprint(c.ID), c.Name, c.Slug})
		}
		fmt.Println(renderTable([]string{"ID", "Name", "Slug"}, rows))
		return nil
	},
}

// teluhub profile <username>
var profileCmd = &cobra.Command{
	Use:   "profile <username>",
	Short: "Show a public profile and its products",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, items, err := client.users.Profile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s)", headerStyle.Render(profile.Username), profile.Role)
		if !profile.JoinedAt.IsZero() {
			fmt.Printf(" joined %s", profile.JoinedAt.Format("2 Jan 2006"))
		}
		fmt.Println()
		printProducts(items)
		return nil
	},
}

var sellerCmd = &cobra.Command{
	Use:   "seller",
	Short: "Seller dashboard",
}

// teluhub seller products
var sellerProductsCmd = &cobra.Command{
	Use:   "products",
	Short: "List your own products",
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := client.products.MyProducts(cmd.Context())
		if err != nil {
			return err
		}
		printProducts(items)
		return nil
	},
}

var (
	productName        string
	productDescription string
	productPrice       int64
	productStock       int64
	productImage       string
	productImageFile   string
	productCategory    uint64
)

// teluhub seller add
var sellerAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Publish a new product",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := productRequest(cmd.Context())
		if err != nil {
			return err
		}
		p, err := client.products.CreateProduct(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Printf("Product %d created: %s\n", p.ID, p.Slug)
		return nil
	},
}

// teluhub seller edit <product-id>
var sellerEditCmd = &cobra.Command{
	Use:   "edit <product-id>",
	Short: "Replace a product's details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "product id")
		if err != nil {
			return err
		}
		req, err := productRequest(cmd.Context())
		if err != nil {
			return err
		}
		p, err := client.products.UpdateProduct(cmd.Context(), id, req)
		if err != nil {
			return err
		}
		fmt.Printf("Product %d updated.\n", p.ID)
		return nil
	},
}

// teluhub seller rm <product-id>
var sellerRemoveCmd = &cobra.Command{
	Use:   "rm <product-id>",
	Short: "Delete a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "product id")
		if err != nil {
			return err
		}
		if err := client.products.DeleteProduct(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Product %d deleted.\n", id)
		return nil
	},
}

// productRequest builds the request from the flags, uploading --image-file
// first when given.
func productRequest(ctx context.Context) (*model.ProductRequest, error) {
	image, err := resolveImage(ctx, client.uploads, productImage, productImageFile)
	if err != nil {
		return nil, err
	}
	return &model.ProductRequest{
		Name:        productName,
		Description: productDescription,
		Price:       productPrice,
		Stock:       productStock,
		ImageURL:    image,
		CategoryID:  productCategory,
	}, nil
}

func printProducts(items []model.Product) {
	if len(items) == 0 {
		fmt.Println(mutedStyle.Render("No products."))
		return
	}
	rows := make([][]string, 0, len(items))
	for _, p := range items {
		category := "-"
		if p.Category != nil {
			category = p.Category.Slug
		}
		rows = append(rows, []string{fmt.Sprint(p.ID), p.Name, rupiah(p.Price), fmt.Sprint(p.Stock), category, p.Slug})
	}
	fmt.Println(renderTable([]string{"ID", "Name", "Price", "Stock", "Category", "Slug"}, rows))
}

func init() {
	productsCmd.Flags().StringVarP(&searchFlag, "search", "s", "", "Match name or description")
	productsCmd.Flags().StringVarP(&categoryFlag, "category", "c", "", "Category slug")
	productsCmd.Flags().StringVar(&sortFlag, "sort", string(model.SortNewest), "newest | price_low | price_high | name_az")

	for _, c := range []*cobra.Command{sellerAddCmd, sellerEditCmd} {
		c.Flags().StringVar(&productName, "name", "", "Product name")
		c.Flags().StringVar(&productDescription, "description", "", "Product description")
		c.Flags().Int64Var(&productPrice, "price", 0, "Price in rupiah")
		c.Flags().Int64Var(&productStock, "stock", 0, "Units in stock")
		c.Flags().StringVar(&productImage, "image", "", "Image URL")
		c.Flags().StringVar(&productImageFile, "image-file", "", "Upload this JPEG, PNG or GIF as the product image")
		c.Flags().Uint64Var(&productCategory, "category", 0, "Category ID")
	}

	sellerCmd.AddCommand(sellerProductsCmd)
	sellerCmd.AddCommand(sellerAddCmd)
	sellerCmd.AddCommand(sellerEditCmd)
	sellerCmd.AddCommand(sellerRemoveCmd)
}
