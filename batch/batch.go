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

// Package batch implements BatchDriver: a sequential-by-default driver
// over a list of input paths that validates everything up front, then
// runs each remaining path through a FileOrchestrator, isolating one
// file's failure from the rest of the batch.
package batch

import (
	"os"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/kryptorfile/kryptor/kdf"
	"github.com/kryptorfile/kryptor/kryptorerr"
	"github.com/kryptorfile/kryptor/orchestrator"
)

// Mode selects the direction BatchDriver runs every path in.
type Mode int

const (
	Encrypt Mode = iota
	Decrypt
)

// Issue pairs a rejected path with the reason it was rejected.
type Issue struct {
	Path string
	Err  error
}

// Report is the combined validation report BatchDriver produces before
// touching any file: paths that passed validation and paths that did
// not, with the reason for each rejection.
type Report struct {
	Valid   []string
	Invalid []Issue
}

// OK reports whether every path in the batch passed validation.
func (r Report) OK() bool { return len(r.Invalid) == 0 }

// ValidatePaths checks that every path exists, returning the paths that qualify to run alongside a report of the
// ones that don't. A path's existence is the only thing validated
// here; the per-file encrypt/decrypt pipeline still carries out its
// own key and format checks.
func ValidatePaths(paths []string) ([]string, Report) {
	report := Report{}
	var valid []string
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			report.Invalid = append(report.Invalid, Issue{Path: p, Err: kryptorerr.Wrap(kryptorerr.Validation, "batch.ValidatePaths", err)})
			continue
		}
		valid = append(valid, p)
		report.Valid = append(report.Valid, p)
	}
	return valid, report
}

// Stats are the counters BatchDriver maintains across a run. They are
// safe to read concurrently with a running batch via their accessor
// methods; Total is fixed at construction.
type Stats struct {
	total     int64
	succeeded int64
	failed    int64
}

func (s *Stats) Total() int64     { return atomic.LoadInt64(&s.total) }
func (s *Stats) Succeeded() int64 { return atomic.LoadInt64(&s.succeeded) }
func (s *Stats) Failed() int64    { return atomic.LoadInt64(&s.failed) }

// Failure records which input path failed and why.
type Failure struct {
	Path string
	Err  error
}

// Result is what a batch run returns: the final counters, the
// per-file failures (if any), and the validation report produced
// before the run started.
type Result struct {
	Stats      *Stats
	Failures   []Failure
	Validation Report
}

// Succeeded reports whether every valid path in the batch succeeded
// and no path failed validation either.
func (r *Result) Succeeded() bool {
	return r.Validation.OK() && r.Stats.Failed() == 0
}

// Driver runs a batch of files through a FileOrchestrator. Concurrency
// is the number of files processed at once; 0 or 1 means sequential.
// Parallel workers never share a KEK/DEK buffer or an un-serialised
// progress sink; FileOrchestrator already guarantees both.
type Driver struct {
	Orchestrator *orchestrator.FileOrchestrator
	Concurrency  int
}

// New builds a Driver over orch. A nil orch is replaced with a
// default, unreported FileOrchestrator.
func New(orch *orchestrator.FileOrchestrator, concurrency int) *Driver {
	if orch == nil {
		orch = orchestrator.New(nil)
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Driver{Orchestrator: orch, Concurrency: concurrency}
}

// Run validates paths, then runs every path that passed validation
// through the given mode with keys and opts, isolating one file's
// failure from the rest. It always returns a non-nil Result, even when
// every path was rejected by validation.
func (d *Driver) Run(paths []string, keys kdf.KeySource, mode Mode, opts orchestrator.Options) *Result {
	valid, report := ValidatePaths(paths)

	stats := &Stats{total: int64(len(valid))}
	result := &Result{Stats: stats, Validation: report}
	if len(valid) == 0 {
		return result
	}

	concurrency := d.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(concurrency)

	for _, path := range valid {
		path := path
		g.Go(func() error {
			var err error
			switch mode {
			case Encrypt:
				_, err = d.Orchestrator.EncryptFile(path, keys, opts)
			case Decrypt:
				_, err = d.Orchestrator.DecryptFile(path, keys, opts)
			}

			if err != nil {
				atomic.AddInt64(&stats.failed, 1)
				mu.Lock()
				result.Failures = append(result.Failures, Failure{Path: path, Err: err})
				mu.Unlock()
				return nil
			}
			atomic.AddInt64(&stats.succeeded, 1)
			return nil
		})
	}

	// Every goroutine reports its own failure into result.Failures and
	// always returns nil, so Wait's error return carries nothing; a
	// non-nil file error must never abort the rest of the batch.
	_ = g.Wait()
	return result
}
