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
	encryptPassword  string
	encryptKey       string
	encryptPrivate   string
	encryptPublic    []string
	encryptPSK       string
	encryptNames     bool
	encryptOverwrite bool
)

var encryptCmd = &cobra.Command{
	Use:   "encrypt [paths...]",
	Short: "Encrypt one or more files or directories",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runEncrypt,
}

func init() {
	rootCmd.AddCommand(encryptCmd)

	encryptCmd.Flags().StringVar(&encryptPassword, "password", "", "password for password-based encryption")
	encryptCmd.Flags().StringVar(&encryptKey, "key", "", "symmetric key, hex-encoded or a path to a 32-byte keyfile")
	encryptCmd.Flags().StringVar(&encryptPrivate, "private", "", "path to the sender's private keyfile (asymmetric mode)")
	encryptCmd.Flags().StringArrayVar(&encryptPublic, "public", nil, "recipient public key, hex or path (asymmetric mode)")
	encryptCmd.Flags().StringVar(&encryptPSK, "psk", "", "optional hex pre-shared key mixed into password- and asymmetric-mode derivation")
	encryptCmd.Flags().BoolVar(&encryptNames, "names", false, "hide original file names in output file names")
	encryptCmd.Flags().BoolVar(&encryptOverwrite, "overwrite", false, "delete each input once it has been fully encrypted")
}

func runEncrypt(cmd *cobra.Command, args []string) error {
	keys, err := resolveKeySource(encryptPassword, encryptKey, encryptPrivate, encryptPublic, encryptPSK, true)
	if err != nil {
		return err
	}

	cfg := appConfig
	if cfg == nil {
		cfg = config.Default()
	}

	overwrite := encryptOverwrite
	if !cmd.Flags().Changed("overwrite") {
		overwrite = cfg.Output.Overwrite
	}

	orch := orchestrator.New(progress.NewConsoleSink(os.Stdout))
	driver := batch.New(orch, 1)
	result := driver.Run(args, keys, batch.Encrypt, orchestrator.Options{
		EncryptFileNames: encryptNames,
		OverwriteInput:   overwrite,
		OutputDir:        cfg.Output.Directory,
	})

	return reportBatchResult(result)
}
