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

// Package orchestrator implements FileOrchestrator: the single-file
// encrypt/decrypt operation that ties together key derivation, the
// header codec, the chunk pipeline, and the ArchivePacker and
// ProgressSink collaborators.
package orchestrator

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kryptorfile/kryptor/archive"
	"github.com/kryptorfile/kryptor/chunk"
	"github.com/kryptorfile/kryptor/header"
	"github.com/kryptorfile/kryptor/kdf"
	"github.com/kryptorfile/kryptor/kryptorerr"
	"github.com/kryptorfile/kryptor/primitives"
	"github.com/kryptorfile/kryptor/progress"
)

// Options controls the naming and post-success cleanup behaviour of a
// single file operation.
type Options struct {
	// EncryptFileNames hides the original name from the output file's
	// on-disk name when encrypting; the header still records the
	// original name either way, so decrypt can restore it.
	EncryptFileNames bool
	// OverwriteInput unlinks the input only once the whole operation
	// has succeeded.
	OverwriteInput bool
	// OutputDir places the output file in this directory instead of
	// alongside the input. Empty means alongside the input.
	OutputDir string
	// Cancel, if non-nil, is polled between chunks.
	Cancel <-chan struct{}
}

// FileOrchestrator runs one file (or directory) through the encrypt or
// decrypt pipeline. A zero-value FileOrchestrator is usable; Progress
// defaults to a NopSink.
type FileOrchestrator struct {
	Progress progress.Sink
}

// New builds a FileOrchestrator reporting to sink. A nil sink is
// replaced with progress.NopSink{}.
func New(sink progress.Sink) *FileOrchestrator {
	if sink == nil {
		sink = progress.NopSink{}
	}
	return &FileOrchestrator{Progress: sink}
}

func (o *FileOrchestrator) sink() progress.Sink {
	if o.Progress == nil {
		return progress.NopSink{}
	}
	return o.Progress
}

// EncryptFile encrypts inputPath (a regular file or a directory) under
// the key material keys derives, writing a new .kryptor file alongside
// it and returning its path. On any failure the partially written
// output is removed and dek/kek buffers are zeroised before returning.
func (o *FileOrchestrator) EncryptFile(inputPath string, keys kdf.KeySource, opts Options) (string, error) {
	o.sink().FileStarted(inputPath)

	outputPath, err := o.encryptFile(inputPath, keys, opts)
	if err != nil {
		o.sink().FileFailed(inputPath, err)
		return "", err
	}
	o.sink().FileCompleted(inputPath, outputPath)
	return outputPath, nil
}

func (o *FileOrchestrator) encryptFile(inputPath string, keys kdf.KeySource, opts Options) (string, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return "", kryptorerr.Wrap(kryptorerr.Validation, "orchestrator.EncryptFile", err)
	}

	isDir := info.IsDir()
	plaintextPath := inputPath
	if isDir {
		archivePath, cleanup, err := packDirectory(inputPath)
		if err != nil {
			return "", err
		}
		defer cleanup()
		plaintextPath = archivePath
		info, err = os.Stat(plaintextPath)
		if err != nil {
			return "", kryptorerr.Wrap(kryptorerr.Internal, "orchestrator.EncryptFile", err)
		}
	}
	plaintextSize := info.Size()

	in, err := os.Open(plaintextPath)
	if err != nil {
		return "", kryptorerr.Wrap(kryptorerr.IO, "orchestrator.EncryptFile", err)
	}
	defer in.Close()

	headerNonce, err := primitives.RandomBytes(primitives.NonceSize)
	if err != nil {
		return "", kryptorerr.Wrap(kryptorerr.Internal, "orchestrator.EncryptFile", err)
	}
	dekBytes, err := primitives.RandomBytes(primitives.KeySize)
	if err != nil {
		return "", kryptorerr.Wrap(kryptorerr.Internal, "orchestrator.EncryptFile", err)
	}
	dek := primitives.NewSecret(dekBytes)

	kek, ephemeralPublic, err := keys.DeriveEncryptKEK(headerNonce)
	if err != nil {
		dek.Wipe()
		return "", kryptorerr.Wrap(kryptorerr.Validation, "orchestrator.EncryptFile", err)
	}

	storedName := filepath.Base(filepath.Clean(inputPath))
	inner := header.InnerHeader{
		PaddingLength:  chunk.PaddingLength(plaintextSize),
		IsDirectory:    isDir,
		FileNameLength: uint32(len(storedName)),
		FileName:       storedName,
		DEK:            dek.Bytes(),
	}
	ciphertextBodyLength := chunk.CiphertextBodyLength(plaintextSize)

	sealed, err := header.SealHeader(kek, ephemeralPublic, headerNonce, inner, ciphertextBodyLength)
	kek.Wipe()
	if err != nil {
		dek.Wipe()
		return "", err
	}

	outputPath, err := resolveOutputPath(inputPath, opts.EncryptFileNames, opts.OutputDir)
	if err != nil {
		dek.Wipe()
		return "", kryptorerr.Wrap(kryptorerr.Internal, "orchestrator.EncryptFile", err)
	}

	out, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		dek.Wipe()
		return "", kryptorerr.Wrap(kryptorerr.IO, "orchestrator.EncryptFile", err)
	}

	if _, err := out.Write(sealed.Bytes); err != nil {
		out.Close()
		os.Remove(outputPath)
		dek.Wipe()
		return "", kryptorerr.Wrap(kryptorerr.IO, "orchestrator.EncryptFile", err)
	}

	if err := chunk.Encrypt(out, in, dek, headerNonce, plaintextSize, opts.Cancel); err != nil {
		out.Close()
		os.Remove(outputPath)
		return "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(outputPath)
		return "", kryptorerr.Wrap(kryptorerr.IO, "orchestrator.EncryptFile", err)
	}

	if opts.OverwriteInput {
		if isDir {
			os.RemoveAll(inputPath)
		} else {
			os.Remove(inputPath)
		}
	}

	return outputPath, nil
}

// DecryptFile decrypts inputPath, restoring the original file (or
// directory tree) alongside it and returning its path.
func (o *FileOrchestrator) DecryptFile(inputPath string, keys kdf.KeySource, opts Options) (string, error) {
	o.sink().FileStarted(inputPath)

	outputPath, err := o.decryptFile(inputPath, keys, opts)
	if err != nil {
		o.sink().FileFailed(inputPath, err)
		return "", err
	}
	o.sink().FileCompleted(inputPath, outputPath)
	return outputPath, nil
}

func (o *FileOrchestrator) decryptFile(inputPath string, keys kdf.KeySource, opts Options) (string, error) {
	in, err := os.Open(inputPath)
	if err != nil {
		return "", kryptorerr.Wrap(kryptorerr.Validation, "orchestrator.DecryptFile", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return "", kryptorerr.Wrap(kryptorerr.IO, "orchestrator.DecryptFile", err)
	}
	fileLength := info.Size()

	headerBuf := make([]byte, header.FixedHeaderLen)
	if _, err := io.ReadFull(in, headerBuf); err != nil {
		return "", kryptorerr.New(kryptorerr.UnsupportedFormat, "orchestrator.DecryptFile", "file too short to hold a header")
	}

	prefix, err := header.ParsePrefix(headerBuf)
	if err != nil {
		return "", err
	}

	kek, err := keys.DeriveDecryptKEK(prefix.HeaderNonce, prefix.EphemeralPublic)
	if err != nil {
		return "", kryptorerr.Wrap(kryptorerr.Validation, "orchestrator.DecryptFile", err)
	}

	inner, _, headerNonce, err := header.OpenHeader(kek, headerBuf, fileLength)
	kek.Wipe()
	if err != nil {
		return "", err
	}
	dek := primitives.NewSecret(inner.DEK)

	remaining := fileLength - int64(header.FixedHeaderLen)
	if remaining < 0 || remaining%int64(chunk.SealedSize) != 0 {
		dek.Wipe()
		return "", kryptorerr.New(kryptorerr.TamperOrWrongKey, "orchestrator.DecryptFile", "corrupt chunk stream length")
	}
	chunkCount := uint64(remaining) / uint64(chunk.SealedSize)

	targetName := inner.FileName
	if targetName == "" {
		targetName = fallbackOutputName(inputPath)
	}
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = filepath.Dir(inputPath)
	} else if err := os.MkdirAll(outputDir, 0o700); err != nil {
		dek.Wipe()
		return "", kryptorerr.Wrap(kryptorerr.IO, "orchestrator.DecryptFile", err)
	}
	outputPath, err := resolveCollision(outputDir, targetName)
	if err != nil {
		dek.Wipe()
		return "", kryptorerr.Wrap(kryptorerr.Internal, "orchestrator.DecryptFile", err)
	}

	out, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		dek.Wipe()
		return "", kryptorerr.Wrap(kryptorerr.IO, "orchestrator.DecryptFile", err)
	}

	if err := chunk.Decrypt(out, in, dek, headerNonce, chunkCount, inner.PaddingLength, opts.Cancel); err != nil {
		out.Close()
		os.Remove(outputPath)
		return "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(outputPath)
		return "", kryptorerr.Wrap(kryptorerr.IO, "orchestrator.DecryptFile", err)
	}

	if inner.IsDirectory {
		if err := unpackToDirectory(outputPath); err != nil {
			os.Remove(outputPath)
			return "", err
		}
	}

	if opts.OverwriteInput {
		os.Remove(inputPath)
	}

	return outputPath, nil
}

// packDirectory archives dirPath into a temporary file beside it and
// returns its path along with a cleanup func that removes it. The
// caller must call cleanup once the archive has been consumed.
func packDirectory(dirPath string) (string, func(), error) {
	id, err := randomHex(8)
	if err != nil {
		return "", nil, kryptorerr.Wrap(kryptorerr.Internal, "orchestrator.packDirectory", err)
	}
	archivePath := filepath.Clean(dirPath) + fmt.Sprintf(".%s.kryptor-pack.tmp", id)
	if _, err := archive.Pack(dirPath, archivePath); err != nil {
		return "", nil, kryptorerr.Wrap(kryptorerr.IO, "orchestrator.packDirectory", err)
	}
	return archivePath, func() { os.Remove(archivePath) }, nil
}

// unpackToDirectory replaces the file at path (the decrypted archive)
// with a directory holding its unpacked contents.
func unpackToDirectory(path string) error {
	id, err := randomHex(8)
	if err != nil {
		return kryptorerr.Wrap(kryptorerr.Internal, "orchestrator.unpackToDirectory", err)
	}
	archivePath := path + "." + id + ".kryptor-unpack.tmp"
	if err := os.Rename(path, archivePath); err != nil {
		return kryptorerr.Wrap(kryptorerr.IO, "orchestrator.unpackToDirectory", err)
	}
	defer os.Remove(archivePath)

	if err := archive.Unpack(archivePath, path); err != nil {
		return kryptorerr.Wrap(kryptorerr.IO, "orchestrator.unpackToDirectory", err)
	}
	return nil
}
