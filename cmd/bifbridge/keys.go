package main

import (
	"crypto/rand"

	"github.com/spf13/cobra"

	"github.com/sigweihq/bifbridge/pkg/keys"
)

func keysCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Create and inspect account keys",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "new",
			Short: "Generate a new ed25519 account key",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				key, err := keys.GeneratePrivateKey(rand.Reader)
				if err != nil {
					return err
				}
				return c.print(map[string]string{
					"address":    key.Address(),
					"publicKey":  key.PublicKey().Encode(),
					"privateKey": key.String(),
				})
			},
		},
		&cobra.Command{
			Use:   "address <privateKey>",
			Short: "Show the account address and public key of a private key",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				key, err := keys.ParsePrivateKey(args[0])
				if err != nil {
					return err
				}
				return c.print(map[string]string{
					"address":   key.Address(),
					"publicKey": key.PublicKey().Encode(),
				})
			},
		},
	)
	return cmd
}
