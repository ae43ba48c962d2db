package main

import (
	"fmt"
	"strconv"

	"github.com/akhdanrgya/teluhub-client/constant"
	"github.com/akhdanrgya/teluhub-client/model"
	"github.com/akhdanrgya/teluhub-client/thirdparty/rabbitmq"
	"github.com/akhdanrgya/teluhub-client/utils/errors"
	"github.com/spf13/cobra"
)

// teluhub cart
var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !client.store.IsAuthenticated() {
			return errors.SetCustomError(constant.ErrUnauthorize)
		}
		if err := client.store.FetchCart(cmd.Context()); err != nil {
			return err
		}
		printCart(client.store.Cart())
		return nil
	},
}

// teluhub cart add <product-id> [qty]
var cartAddCmd = &cobra.Command{
	Use:   "add <product-id> [qty]",
	Short: "Add a product to the cart",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		productID, err := parseID(args[0], "product id")
		if err != nil {
			return err
		}
		qty := 1
		if len(args) == 2 {
			if qty, err = parseQuantity(args[1]); err != nil {
				return err
			}
		}
		if err := client.store.AddToCart(cmd.Context(), productID, qty); err != nil {
			return err
		}
		printCart(client.store.Cart())
		return nil
	},
}

// teluhub cart set <item-id> <qty>
var cartSetCmd = &cobra.Command{
	Use:   "set <item-id> <qty>",
	Short: "Change an item's quantity (0 removes it)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		itemID, err := parseID(args[0], "item id")
		if err != nil {
			return err
		}
		qty, err := parseQuantity(args[1])
		if err != nil {
			return err
		}
		if err := client.store.UpdateCartQuantity(cmd.Context(), itemID, qty); err != nil {
			return err
		}
		printCart(client.store.Cart())
		return nil
	},
}

// teluhub cart rm <item-id>
var cartRemoveCmd = &cobra.Command{
	Use:   "rm <item-id>",
	Short: "Remove an item from the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		itemID, err := parseID(args[0], "item id")
		if err != nil {
			return err
		}
		if err := client.store.RemoveCartItem(cmd.Context(), itemID); err != nil {
			return err
		}
		printCart(client.store.Cart())
		return nil
	},
}

// teluhub checkout
var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Turn the cart into an order and print the payment token",
	RunE: func(cmd *cobra.Command, args []string) error {
		var relay *rabbitmq.Publisher
		if checkoutRelayFlag {
			var err error
			if relay, err = client.relay(); err != nil {
				return err
			}
			defer relay.Close()
		}

		resp, err := client.checkout(orderPublisher(relay)).Checkout(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(okStyle.Render(fmt.Sprintf("Order %d created.", resp.OrderID)))
		fmt.Printf("Snap token: %s\n", resp.SnapToken)
		if key := client.cfg.Payment.ClientKey; key != "" {
			fmt.Printf("Client key: %s\n", key)
		}
		return nil
	},
}

var checkoutRelayFlag bool

// teluhub orders
var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List your orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		orders, err := client.orders.ListOrders(cmd.Context())
		if err != nil {
			return err
		}
		if len(orders) == 0 {
			fmt.Println(mutedStyle.Render("No orders yet."))
			return nil
		}
		rows := make([][]string, 0, len(orders))
		for _, o := range orders {
			rows = append(rows, []string{
				fmt.Sprint(o.ID),
				o.CreatedAt.Format("2006-01-02 15:04"),
				fmt.Sprint(len(o.OrderItems)),
				rupiah(o.TotalAmount),
				statusLabel(o.Status),
			})
		}
		fmt.Println(renderTable([]string{"ID", "Date", "Items", "Total", "Status"}, rows))
		return nil
	},
}

// teluhub order <id>
var orderCmd = &cobra.Command{
	Use:   "order <id>",
	Short: "Show one order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "order id")
		if err != nil {
			return err
		}
		o, err := client.orders.GetOrder(cmd.Context(), id)
		if err != nil {
			return err
		}

		fmt.Printf("Order %d  %s  %s\n", o.ID, statusLabel(o.Status), o.CreatedAt.Format("2006-01-02 15:04"))
		rows := make([][]string, 0, len(o.OrderItems))
		for _, item := range o.OrderItems {
			rows = append(rows, []string{
				item.Product.Name,
				fmt.Sprint(item.Quantity),
				rupiah(item.PriceAtTime),
				rupiah(int64(item.Quantity) * item.PriceAtTime),
			})
		}
		fmt.Println(renderTable([]string{"Product", "Qty", "Price", "Subtotal"}, rows))
		fmt.Printf("Total: %s\n", rupiah(o.TotalAmount))
		return nil
	},
}

func parseQuantity(arg string) (int, error) {
	qty, err := strconv.Atoi(arg)
	if err != nil {
		return 0, errors.SetCustomErrorMessage(constant.ErrInvalidRequest, "quantity must be a number")
	}
	return qty, nil
}

func printCart(cart *model.Cart) {
	if cart == nil || len(cart.CartItems) == 0 {
		fmt.Println(mutedStyle.Render("Your cart is empty."))
		return
	}
	rows := make([][]string, 0, len(cart.CartItems))
	for _, item := range cart.CartItems {
		rows = append(rows, []string{
			fmt.Sprint(item.ID),
			item.Product.Name,
			fmt.Sprint(item.Quantity),
			rupiah(item.Product.Price),
			rupiah(int64(item.Quantity) * item.Product.Price),
		})
	}
	fmt.Println(renderTable([]string{"Item", "Product", "Qty", "Price", "Subtotal"}, rows))
	fmt.Printf("Total: %s\n", rupiah(cart.Total()))
}

func init() {
	cartCmd.AddCommand(cartAddCmd)
	cartCmd.AddCommand(cartSetCmd)
	cartCmd.AddCommand(cartRemoveCmd)

	checkoutCmd.Flags().BoolVar(&checkoutRelayFlag, "relay", false, "Publish checkout.completed to RabbitMQ")
}
