package main

import (
	"fmt"

	"github.com/kryptorfile/kryptor/batch"
	"github.com/kryptorfile/kryptor/kryptorerr"
)

// reportBatchResult prints per-file validation and processing
// failures and returns a non-nil error iff the batch did not fully
// succeed.
func reportBatchResult(result *batch.Result) error {
	for _, issue := range result.Validation.Invalid {
		fmt.Printf("skipped %s: %v\n", issue.Path, issue.Err)
	}
	for _, failure := range result.Failures {
		fmt.Printf("failed %s: %s\n", failure.Path, kryptorerr.UserMessage(failure.Err))
	}

	fmt.Printf("%d succeeded, %d failed, %d skipped\n",
		result.Stats.Succeeded(), result.Stats.Failed(), len(result.Validation.Invalid))

	if !result.Succeeded() {
		return fmt.Errorf("kryptor: %d file(s) did not complete", result.Stats.Failed()+int64(len(result.Validation.Invalid)))
	}
	return nil
}
