// Command catalog browses the storefront listing and prices a basket from the shell.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"outfitorbit/models"
	"outfitorbit/pricing"
	"outfitorbit/storefront"

	"github.com/spf13/cobra"
)

var (
	baseURL   string
	timeout   time.Duration
	page      int
	limit     int
	sortBy    string
	sortOrder string
	asJSON    bool
	delivery  string
)

var rootCmd = &cobra.Command{
	Use:           "catalog",
	Short:         "Browse the Outfit Orbit catalogue",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var listCmd = &cobra.Command{
	Use:   "list <category>",
	Short: "List one page of a category",
	Long: `List products in a category through the public listing API.

sort keys: createdAt, price, -price, -rating, name`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

var quoteCmd = &cobra.Command{
	Use:   "quote <price>x<qty>...",
	Short: "Price a basket the way checkout does",
	Example: `  catalog quote 1899x2 899x1
  catalog quote 1899x2 899x1 --delivery express`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuote,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", envOr("CATALOG_URL", "http://localhost:8080"), "storefront API base URL")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")

	listCmd.Flags().IntVar(&page, "page", 1, "page number")
	listCmd.Flags().IntVar(&limit, "limit", 12, "products per page")
	listCmd.Flags().StringVar(&sortBy, "sort-by", "createdAt", "sort key")
	listCmd.Flags().StringVar(&sortOrder, "sort-order", "desc", "asc or desc")
	listCmd.Flags().BoolVar(&asJSON, "json", false, "print the raw listing as JSON")

	quoteCmd.Flags().StringVar(&delivery, "delivery", string(models.DeliveryStandard), "standard or express")

	rootCmd.AddCommand(listCmd, quoteCmd)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func runList(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	listing, err := storefront.NewClient(baseURL).ListProducts(ctx, storefront.Query{
		Category:  args[0],
		Page:      page,
		Limit:     limit,
		SortBy:    sortBy,
		SortOrder: sortOrder,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(listing)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tRATING\tSTOCK")
	for _, p := range listing.Products {
		stock := "yes"
		if !p.InStock {
			stock = "no"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.1f\t%s\n", p.ProductID, p.Name, p.Price, p.Rating, stock)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	pg := listing.Pagination
	fmt.Fprintf(out, "%s: page %d of %d (%d products)\n", listing.Category, pg.CurrentPage, pg.TotalPages, pg.TotalProducts)
	return nil
}

func runQuote(cmd *cobra.Command, args []string) error {
	method := models.DeliveryMethod(delivery)
	if !method.Valid() {
		return fmt.Errorf("unknown delivery method %q", delivery)
	}
	items, err := parseItems(args)
	if err != nil {
		return err
	}

	b := pricing.Calculate(items, method)
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Items\t%d\t\n", b.ItemCount)
	fmt.Fprintf(tw, "Subtotal\t%d\t\n", b.Subtotal)
	fmt.Fprintf(tw, "Shipping\t%d\t\n", b.Shipping)
	fmt.Fprintf(tw, "Tax (%d%%)\t%d\t\n", pricing.TaxPercent, b.Tax)
	fmt.Fprintf(tw, "Total\t%d\t\n", b.Total)
	return tw.Flush()
}

// parseItems reads "1899x2" style arguments.
func parseItems(args []string) ([]models.CartItem, error) {
	items := make([]models.CartItem, 0, len(args))
	for _, a := range args {
		priceStr, qtyStr, ok := strings.Cut(a, "x")
		if !ok {
			qtyStr = "1"
		}
		price, err := strconv.ParseInt(priceStr, 10, 64)
		if err != nil || price < 0 {
			return nil, fmt.Errorf("bad price in %q", a)
		}
		qty, err := strconv.Atoi(qtyStr)
		if err != nil || qty < 1 {
			return nil, fmt.Errorf("bad quantity in %q", a)
		}
		items = append(items, models.CartItem{Price: price, Quantity: qty})
	}
	return items, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "catalog:", err)
		os.Exit(1)
	}
}
