package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/aussiebroadwan/campusgate/pkg/cryptox"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var keygenOut string

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a master key for sealing stored credentials",
	Long: `Prints 256 bits of random key material. With --out the key is written to a
new file readable only by the current user, suitable for GATEWAY_MASTER_KEY_PATH.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return err
		}

		if keygenOut == "" {
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		}

		f, err := os.OpenFile(keygenOut, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%s already exists, refusing to replace a master key", keygenOut)
		}
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(f, key); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}

		pterm.Success.Printf("Wrote master key to %s\n", keygenOut)
		return nil
	},
}

func init() {
	keygenCmd.Flags().StringVarP(&keygenOut, "out", "o", "", "write the key to this file instead of stdout")
}
