package main

import (
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/sigweihq/bifbridge/pkg/address"
	"github.com/sigweihq/bifbridge/pkg/utils"
)

// addressCmd groups the offline address conversions
func addressCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Convert between tagged and linear addresses",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "linear <tagged>",
			Short: "Convert a did:bid address to its 0x form",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				linear, err := address.ToLinear(args[0])
				if err != nil {
					return err
				}
				return c.print(map[string]string{"tagged": args[0], "linear": linear})
			},
		},
		&cobra.Command{
			Use:   "tagged <linear>",
			Short: "Convert a 0x address to its did:bid form",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				tagged, err := address.ToTagged(args[0])
				if err != nil {
					return err
				}
				return c.print(map[string]string{"linear": args[0], "tagged": tagged})
			},
		},
		&cobra.Command{
			Use:   "contract <deployer> <nonce>",
			Short: "Derive the address of a contract deployed by deployer at nonce",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				nonce, err := strconv.ParseUint(args[1], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid nonce %q: %w", args[1], err)
				}
				return c.print(map[string]any{
					"deployer": args[0],
					"nonce":    nonce,
					"contract": address.ContractAddress(args[0], nonce),
				})
			},
		},
		&cobra.Command{
			Use:   "word <tagged|0xword>",
			Short: "Encode a tagged address as an ABI word, or decode a 32-byte word",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if address.IsTagged(args[0]) {
					word, err := address.EncodeWord(args[0])
					if err != nil {
						return err
					}
					return c.print(map[string]string{"tagged": args[0], "word": word.Hex()})
				}

				raw, err := utils.HexToBytes(args[0])
				if err != nil {
					return fmt.Errorf("invalid word %q: %w", args[0], err)
				}
				if len(raw) != common.HashLength {
					return fmt.Errorf("invalid word %q: want %d bytes, got %d", args[0], common.HashLength, len(raw))
				}
				tagged, err := address.DecodeWord(common.BytesToHash(raw))
				if err != nil {
					return err
				}
				return c.print(map[string]string{"word": args[0], "tagged": tagged})
			},
		},
		&cobra.Command{
			Use:   "calldata <selector> [tagged...]",
			Short: "Build call data from a 4-byte selector and tagged address arguments",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				selector, err := utils.HexToBytes(args[0])
				if err != nil || len(selector) != 4 {
					return fmt.Errorf("invalid selector %q: want 4 hex bytes", args[0])
				}
				data, err := address.EncodeCallData(selector, args[1:]...)
				if err != nil {
					return err
				}
				return c.print(map[string]string{"data": data})
			},
		},
		&cobra.Command{
			Use:   "normalize <0xliteral>",
			Short: "Rewrite a contract source address literal into canonical linear form",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.print(map[string]string{
					"literal": args[0],
					"linear":  address.NormalizeContractLiteral(args[0]),
				})
			},
		},
	)
	return cmd
}
