package main

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/sigweihq/bifbridge/pkg/chains/bif"
	"github.com/sigweihq/bifbridge/pkg/types"
)

func (c *cli) accountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List the addresses of the configured private keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.provider()
			if err != nil {
				return err
			}
			accounts, err := bif.Accounts(cmd.Context(), p)
			if err != nil {
				return err
			}
			return c.print(accounts)
		},
	}
}

func (c *cli) balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <address>",
		Short: "Show an account balance (-1 if the ledger reports an error)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.provider()
			if err != nil {
				return err
			}
			balance, err := p.Balance(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.print(map[string]any{"address": args[0], "balance": balance})
		},
	}
}

func (c *cli) nonceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "nonce <address>",
		Short: "Show an account's transaction count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.provider()
			if err != nil {
				return err
			}
			nonce, err := p.TransactionCount(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.print(map[string]any{"address": args[0], "nonce": nonce})
		},
	}
}

func (c *cli) codeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "code <address>",
		Short: "Show the contract payload of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.provider()
			if err != nil {
				return err
			}
			code, err := p.Code(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.print(map[string]any{"address": args[0], "code": code})
		},
	}
}

func (c *cli) blockCmd() *cobra.Command {
	var withTxs bool
	cmd := &cobra.Command{
		Use:   "block [height|latest]",
		Short: "Show a block",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag := bif.BlockTagLatest
			if len(args) == 1 {
				tag = args[0]
			}
			p, err := c.provider()
			if err != nil {
				return err
			}
			if withTxs {
				block, err := p.BlockWithTransactions(cmd.Context(), tag)
				if err != nil {
					return err
				}
				return c.print(block)
			}
			block, err := p.Block(cmd.Context(), tag)
			if err != nil {
				return err
			}
			return c.print(block)
		},
	}
	cmd.Flags().BoolVar(&withTxs, "txs", false, "resolve every transaction of the block")
	return cmd
}

func (c *cli) txCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tx <hash>",
		Short: "Show a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.provider()
			if err != nil {
				return err
			}
			tx, err := p.Transaction(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.print(tx)
		},
	}
}

func (c *cli) receiptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "receipt <hash>",
		Short: "Show a transaction receipt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.provider()
			if err != nil {
				return err
			}
			receipt, err := p.TransactionReceipt(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if receipt == nil {
				return fmt.Errorf("transaction %s is not known to the ledger yet", args[0])
			}
			return c.print(receipt)
		},
	}
}

func (c *cli) callCmd() *cobra.Command {
	var from, data string
	cmd := &cobra.Command{
		Use:   "call <contract>",
		Short: "Run a read-only contract query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.provider()
			if err != nil {
				return err
			}
			out, err := p.Call(cmd.Context(), types.TransactionRequest{From: from, To: args[0], Data: data})
			if err != nil {
				return err
			}
			return c.print(map[string]any{"contract": args[0], "result": out})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "source address")
	cmd.Flags().StringVar(&data, "data", "", "0x call data")
	return cmd
}

func (c *cli) sendCmd() *cobra.Command {
	var (
		from, to, data string
		value          int64
		confirmations  int
	)
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Sign, submit and confirm a transaction (contract creation without --to)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, network, err := c.adapter()
			if err != nil {
				return err
			}
			if from == "" {
				return fmt.Errorf("--from is required")
			}
			signer, err := a.Signer(cmd.Context(), from)
			if err != nil {
				return err
			}
			if confirmations <= 0 {
				confirmations = network.GetConfirmations()
			}

			tx := types.TransactionRequest{From: from, To: to, Data: data}
			if value != 0 {
				tx.Value = big.NewInt(value)
			}
			out, err := a.Lifecycle(signer).Execute(cmd.Context(), tx, confirmations)
			if err != nil {
				return err
			}
			return c.print(map[string]any{
				"hash":    out.Response.Hash,
				"state":   out.Confirmation.State.String(),
				"polls":   out.Confirmation.Polls,
				"nonce":   out.Response.Nonce,
				"receipt": out.Confirmation.Receipt,
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "sending account, must be a configured key")
	cmd.Flags().StringVar(&to, "to", "", "destination account or contract")
	cmd.Flags().StringVar(&data, "data", "", "0x call data or contract init code")
	cmd.Flags().Int64Var(&value, "value", 0, "amount to transfer")
	cmd.Flags().IntVar(&confirmations, "confirmations", 0, "block drift tolerated while waiting (default: network setting)")
	return cmd
}
