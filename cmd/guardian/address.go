package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"coin-guardian/internal/domain"
)

func addressCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "address <base58>...",
		Short: "Validate and inspect addresses",
		Long: "Decodes each base58 address and reports its hex form and whether it " +
			"is an ed25519 point (a wallet key) or off-curve (a program-derived address).",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			var failed int
			for _, arg := range args {
				addr, err := domain.ParseAddress(arg)
				if err != nil {
					fmt.Fprintf(out, "%s\tinvalid: %v\n", arg, err)
					failed++
					continue
				}
				kind := "program-derived"
				if addr.IsOnCurve() {
					kind = "wallet"
				}
				fmt.Fprintf(out, "%s\thex=%s\tkind=%s\n", addr, hex.EncodeToString(addr[:]), kind)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d addresses invalid", failed, len(args))
			}
			return nil
		},
	}
}
