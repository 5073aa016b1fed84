package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kryptorfile/kryptor/batch"
	"github.com/kryptorfile/kryptor/config"
	"github.com/kryptorfile/kryptor/orchestrator"
	"github.com/kryptorfile/kryptor/progress"
)

var (
	decryptPassword  string
	decryptKey       string
	decryptPrivate   string
	decryptPublic    []string
	decryptPSK       string
	decryptOverwrite bool
)

var decryptCmd = &cobra.Command{
	Use:   "decrypt [paths...]",
	Short: "Decrypt one or more .kryptor files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDecrypt,
}

func init() {
	rootCmd.AddCommand(decryptCmd)

	decryptCmd.Flags().StringVar(&decryptPassword, "password", "", "password for password-based decryption")
	decryptCmd.Flags().StringVar(&decryptKey, "key", "", "symmetric key, hex-encoded or a path to a 32-byte keyfile")
	decryptCmd.Flags().StringVar(&decryptPrivate, "private", "", "path to the recipient's private keyfile (asymmetric mode)")
	decryptCmd.Flags().StringArrayVar(&decryptPublic, "public", nil, "sender public key, hex or path (asymmetric mode)")
	decryptCmd.Flags().StringVar(&decryptPSK, "psk", "", "optional hex pre-shared key mixed into password- and asymmetric-mode derivation")
	decryptCmd.Flags().BoolVar(&decryptOverwrite, "overwrite", false, "delete each .kryptor input once it has been fully decrypted")
}

func runDecrypt(cmd *cobra.Command, args []string) error {
	keys, err := resolveKeySource(decryptPassword, decryptKey, decryptPrivate, decryptPublic, decryptPSK, false)
	if err != nil {
		return err
	}

	cfg := appConfig
	if cfg == nil {
		cfg = config.Default()
	}

	overwrite := decryptOverwrite
	if !cmd.Flags().Changed("overwrite") {
		overwrite = cfg.Output.Overwrite
	}

	orch := orchestrator.New(progress.NewConsoleSink(os.Stdout))
	driver := batch.New(orch, 1)
	result := driver.Run(args, keys, batch.Decrypt, orchestrator.Options{
		OverwriteInput: overwrite,
		OutputDir:      cfg.Output.Directory,
	})

	return reportBatchResult(result)
}
