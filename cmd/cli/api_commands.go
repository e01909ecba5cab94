package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/goticket/internal/adapter/http/dto"
)

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}

func accountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	var card string
	openCmd := &cobra.Command{
		Use:   "open",
		Short: "Open an account for the current user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			var account dto.AccountResponse
			if err := newAPIClient().post(ctx, "/accounts", dto.OpenAccountRequest{CardNumber: card}, &account); err != nil {
				return err
			}
			printJSON(account)
			return nil
		},
	}
	openCmd.Flags().StringVar(&card, "card", "", "Payment card number")
	_ = openCmd.MarkFlagRequired("card")

	cmd.AddCommand(openCmd)
	return cmd
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the current user's balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			var account dto.AccountResponse
			if err := newAPIClient().get(ctx, "/account", &account); err != nil {
				return err
			}
			fmt.Printf("Balance: %s\n", account.Balance)
			return nil
		},
	}
}

func depositCmd() *cobra.Command {
	var card string
	cmd := &cobra.Command{
		Use:   "deposit <amount>",
		Short: "Deposit funds from the card on file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			var balance dto.BalanceResponse
			req := dto.DepositRequest{CardNumber: card, Amount: amount}
			if err := newAPIClient().post(ctx, "/account/deposits", req, &balance); err != nil {
				return err
			}
			fmt.Printf("Balance: %s\n", balance.Balance)
			return nil
		},
	}
	cmd.Flags().StringVar(&card, "card", "", "Card number matching the one on file")
	_ = cmd.MarkFlagRequired("card")
	return cmd
}

func catalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog [event]",
		Short: "List events for sale, or show one event",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			client := newAPIClient()
			if len(args) == 1 {
				var item dto.CatalogItemResponse
				if err := client.get(ctx, "/catalog/"+url.PathEscape(args[0]), &item); err != nil {
					return err
				}
				printJSON(item)
				return nil
			}

			var items []dto.CatalogItemResponse
			if err := client.get(ctx, "/catalog", &items); err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "EVENT\tLOCATION\tDATE\tPRICE\tREMAINING")
			for _, item := range items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
					truncate(item.EventName, 32),
					truncate(item.Location, 24),
					item.EventDate.Format("2006-01-02"),
					item.UnitPrice,
					item.Remaining,
				)
			}
			return w.Flush()
		},
	}
}

func holdingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "holdings",
		Short: "List the current user's tickets",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			var holdings []dto.HoldingResponse
			if err := newAPIClient().get(ctx, "/holdings", &holdings); err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "EVENT\tPRICE\tQUANTITY\tTOTAL")
			for _, h := range holdings {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", truncate(h.EventName, 32), h.UnitPrice, h.Quantity, h.TotalCost)
			}
			return w.Flush()
		},
	}
}

func buyCmd() *cobra.Command {
	return exchangeCmd("buy", "Buy tickets for an event", "/purchases")
}

func sellCmd() *cobra.Command {
	return exchangeCmd("sell", "Sell tickets back to the venue", "/sales")
}

func exchangeCmd(use, short, path string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <event> <quantity>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q: %w", args[1], err)
			}

			req := dto.ExchangeRequest{EventName: args[0], Quantity: quantity}
			if err := req.Validate(); err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			var receipt dto.ReceiptResponse
			if err := newAPIClient().post(ctx, path, req, &receipt); err != nil {
				return err
			}
			printJSON(receipt)
			return nil
		},
	}
}
