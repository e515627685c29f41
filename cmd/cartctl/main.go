package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"text/tabwriter"

	"cart-service/config"
	"cart-service/internal/cart"
	"cart-service/internal/catalog"
	"cart-service/internal/checkout"
	"cart-service/internal/slot"
	"cart-service/internal/util"

	"github.com/urfave/cli/v3"
)

func main() {
	if err := newApp(os.Stdout).Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// newApp builds the command tree. Cart listings are written to out.
func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "cartctl",
		Usage: "Inspect and edit the persisted cart",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "backend",
				Usage: "storage backend (sqlite, postgres, redis, memory); defaults to STORAGE_BACKEND",
			},
			&cli.StringFlag{
				Name:  "key",
				Usage: "slot key holding the cart; defaults to CART_KEY",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the cart with its order summary",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withStore(ctx, c, func(store *cart.Store) error {
						printCart(out, store.Snapshot())
						return nil
					})
				},
			},
			{
				Name:      "add",
				Usage:     "Add a catalog product variant",
				ArgsUsage: "<product-id> <size> <color> [quantity]",

				// Quantities may be negative, so nothing after the command is a flag.
				SkipFlagParsing: true,
				Action: func(ctx context.Context, c *cli.Command) error {
					if c.Args().Len() < 3 {
						return fmt.Errorf("usage: cartctl add %s", c.ArgsUsage)
					}
					productID, err := strconv.ParseInt(c.Args().Get(0), 10, 64)
					if err != nil {
						return fmt.Errorf("invalid product id %q", c.Args().Get(0))
					}
					quantity := 1
					if c.Args().Len() > 3 {
						if quantity, err = strconv.Atoi(c.Args().Get(3)); err != nil {
							return fmt.Errorf("invalid quantity %q", c.Args().Get(3))
						}
					}

					product, err := catalog.NewStatic().Get(productID)
					if err != nil {
						return err
					}
					item, err := catalog.NewLineItem(product, c.Args().Get(1), c.Args().Get(2), quantity)
					if err != nil {
						return err
					}

					return withStore(ctx, c, func(store *cart.Store) error {
						if err := store.AddItem(ctx, item); err != nil {
							return err
						}
						printCart(out, store.Snapshot())
						return nil
					})
				},
			},
			{
				Name:      "set",
				Usage:     "Set the quantity of a line item (0 removes it)",
				ArgsUsage: "<item-id> <quantity>",

				// Quantities may be negative, so nothing after the command is a flag.
				SkipFlagParsing: true,
				Action: func(ctx context.Context, c *cli.Command) error {
					if c.Args().Len() != 2 {
						return fmt.Errorf("usage: cartctl set %s", c.ArgsUsage)
					}
					quantity, err := strconv.Atoi(c.Args().Get(1))
					if err != nil {
						return fmt.Errorf("invalid quantity %q", c.Args().Get(1))
					}

					return withStore(ctx, c, func(store *cart.Store) error {
						if err := store.UpdateQuantity(ctx, c.Args().Get(0), quantity); err != nil {
							return err
						}
						printCart(out, store.Snapshot())
						return nil
					})
				},
			},
			{
				Name:      "remove",
				Usage:     "Remove a line item",
				ArgsUsage: "<item-id>",
				Action: func(ctx context.Context, c *cli.Command) error {
					if c.Args().Len() != 1 {
						return fmt.Errorf("usage: cartctl remove %s", c.ArgsUsage)
					}

					return withStore(ctx, c, func(store *cart.Store) error {
						if err := store.RemoveItem(ctx, c.Args().First()); err != nil {
							return err
						}
						printCart(out, store.Snapshot())
						return nil
					})
				},
			},
			{
				Name:  "clear",
				Usage: "Empty the cart",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withStore(ctx, c, func(store *cart.Store) error {
						if err := store.ClearCart(ctx); err != nil {
							return err
						}
						fmt.Fprintln(out, "Cart cleared")
						return nil
					})
				},
			},
			{
				Name:  "products",
				Usage: "List the catalog",
				Action: func(ctx context.Context, c *cli.Command) error {
					w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE")
					for _, p := range catalog.NewStatic().List() {
						fmt.Fprintf(w, "%d\t%s\t%s\t$%.2f\n", p.ID, p.Name, p.Category, p.Price)
					}
					return w.Flush()
				},
			},
		},
	}
}

// withStore opens the configured slot, rehydrates the cart and runs fn
func withStore(ctx context.Context, c *cli.Command, fn func(*cart.Store) error) error {
	cfg := config.Load()
	if backend := c.String("backend"); backend != "" {
		cfg.Storage.Backend = backend
	}
	if key := c.String("key"); key != "" {
		cfg.Cart.Key = key
	}

	if err := util.InitLogger(cfg.Server.Env, "warn"); err != nil {
		return err
	}
	defer util.SyncLogger()

	kv, err := slot.Open(cfg.Storage)
	if err != nil {
		return err
	}
	defer kv.Close()

	store, err := cart.Open(ctx, kv, cart.WithKey(cfg.Cart.Key))
	if err != nil {
		return err
	}
	return fn(store)
}

func printCart(out io.Writer, snap cart.Snapshot) {
	if len(snap.Items) == 0 {
		fmt.Fprintln(out, "Your cart is empty")
		return
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRODUCT\tSIZE\tCOLOR\tQTY\tPRICE")
	for _, item := range snap.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t$%.2f\n",
			item.ID, item.Name, item.Size, item.Color, item.Quantity, item.Price)
	}
	_ = w.Flush()

	summary := checkout.Summarize(snap)
	fmt.Fprintf(out, "\nItems:    %d\n", snap.Count)
	fmt.Fprintf(out, "Subtotal: $%s\n", summary.Subtotal.StringFixed(2))
	if summary.FreeShipping() {
		fmt.Fprintln(out, "Shipping: Free")
	} else {
		fmt.Fprintf(out, "Shipping: $%s\n", summary.Shipping.StringFixed(2))
	}
	fmt.Fprintf(out, "Tax:      $%s\n", summary.Tax.StringFixed(2))
	fmt.Fprintf(out, "Total:    $%s\n", summary.Total.StringFixed(2))
}
