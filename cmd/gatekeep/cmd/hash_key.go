package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sentinelgate/gatekeep/internal/domain/auth"
)

var hashKeyCmd = &cobra.Command{
	Use:   "hash-key [api-key]",
	Short: "Generate the SHA-256 fingerprint for an API key",
	Long: `Generate the SHA-256 fingerprint of a cleartext API key for use in
config.yaml's auth.api_keys.key_hash field.

Example:
  gatekeep hash-key "my-secret-api-key"

Security note: the key will appear in shell history. Consider clearing
history after use or passing it via environment variable:
  gatekeep hash-key "$MY_API_KEY"`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(auth.Fingerprint(args[0]))
	},
}

func init() {
	rootCmd.AddCommand(hashKeyCmd)
}
