// Kryptor
// Copyright (C) 2025 Kryptor Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

// kryptor is a thin CLI around the core chunked-AEAD file encryption
// pipeline. Key-pair generation, signing/verification, and the
// updater are separate collaborators this binary does not implement.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/kryptorfile/kryptor/config"
	"github.com/kryptorfile/kryptor/primitives"
)

var rootCmd = &cobra.Command{
	Use:   "kryptor",
	Short: "Encrypt and decrypt files with a chunked, authenticated cipher",
	Long: `kryptor encrypts and decrypts files and directories using an
XChaCha20-BLAKE2b chunked AEAD construction, with password, symmetric
key, or X25519 public-key modes.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		appConfig = loadConfig()
	},
}

var configPath string

// appConfig is loaded once in rootCmd's PersistentPreRun and read by
// encrypt/decrypt to fill in defaults (output directory, overwrite
// default, the Argon2id test-cost override) that were not given on
// the command line.
var appConfig *config.Config

func loadConfig() *config.Config {
	if configPath == "" {
		return config.Default()
	}

	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		log.Fatalf("kryptor: %v", err)
	}

	if cfg.Argon2id.Insecure {
		log.Printf("kryptor: Argon2id running at insecure test cost (time=%d memory=%dKiB parallelism=%d); do not encrypt real data with this config",
			cfg.Argon2id.TimeCost, cfg.Argon2id.MemoryKiB, cfg.Argon2id.Parallelism)
		primitives.SetArgon2idCost(cfg.Argon2id.TimeCost, cfg.Argon2id.MemoryKiB, cfg.Argon2id.Parallelism)
	}

	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML or JSON config file (logging, output directory, Argon2id test overrides)")
}
