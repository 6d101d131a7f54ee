package errors

import (
	"fmt"
)

// SnapshotMissingError reports a workflow snapshot file that does not exist.
// Distinct from SnapshotUnparseableError so operators can tell "producer
// never ran" apart from "producer wrote garbage".
func SnapshotMissingError(workflow, path string) *SentinelError {
	return Newf(ErrorTypeSnapshotMissing, "snapshot file not found: %s", path).
		WithWorkflow(workflow).
		WithSolutions(
			"Check that the snapshot producer for this workflow has run",
			fmt.Sprintf("Confirm the snapshots directory holds %s", path),
			`Point SENTINEL_SNAPSHOTS_DIR at the directory the producer writes to`,
		).
		WithVerify(fmt.Sprintf("ls -l %s", path)).
		WithHelp("sentinel workflows")
}

// SnapshotUnparseableError reports a snapshot file that exists but is not
// valid JSON.
func SnapshotUnparseableError(workflow, path string, cause error) *SentinelError {
	return Newf(ErrorTypeSnapshotUnparseable, "snapshot file is not valid JSON: %s", path).
		WithWorkflow(workflow).
		WithCause(cause).
		WithSolutions(
			"Inspect the file for truncation; the producer may have been killed mid-write",
			"Delete the file and wait for the producer's next run",
		).
		WithVerify(fmt.Sprintf("python3 -m json.tool %s", path))
}

// EncodingFailedError reports a canonical encoding failure. These indicate a
// schema bug rather than bad input, since extraction coerces bad values to zero.
func EncodingFailedError(workflow string, cause error) *SentinelError {
	return Newf(ErrorTypeEncoding, "canonical encoding failed").
		WithWorkflow(workflow).
		WithCause(cause)
}

// AllEndpointsFailedError reports that every configured RPC endpoint was
// tried and none produced a confirmed transaction.
func AllEndpointsFailedError(workflow string, attempts int, last error) *SentinelError {
	return Newf(ErrorTypeAllEndpointsFailed, "all %d RPC endpoints failed", attempts).
		WithWorkflow(workflow).
		WithCause(last).
		WithSolutions(
			"Check network reachability of the configured endpoints",
			`Review SENTINEL_RPC_ENDPOINTS ordering; the first healthy endpoint wins`,
			"Confirm the chain is producing blocks",
		).
		WithVerify("sentinel status")
}

// RegistryRejectedError reports an authoritative on-chain rejection.
// Failover never retries these: the contract gave its answer.
func RegistryRejectedError(workflow, reason string, cause error) *SentinelError {
	return Newf(ErrorTypeRegistryRejected, "registry rejected the assessment: %s", reason).
		WithWorkflow(workflow).
		WithCause(cause).
		WithSolutions(
			"A duplicate submission usually means another bridge instance published first",
			"An authorization failure means the signer is not allowlisted on the registry",
		).
		WithVerify("sentinel status")
}

// ConfigurationError reports invalid or incomplete process configuration.
func ConfigurationError(message string) *SentinelError {
	return New(ErrorTypeConfiguration, message).
		WithHelp("sentinel --help")
}

// StateStoreError reports a write-state file that could not be read or
// written. Fatal at startup; logged and tolerated mid-cycle.
func StateStoreError(op, path string, cause error) *SentinelError {
	return Newf(ErrorTypeStateStore, "write-state %s failed: %s", op, path).
		WithCause(cause).
		WithSolutions(
			"Check permissions on the state file's directory",
			`Set SENTINEL_STATE_PATH to a writable location`,
		)
}

// CycleFailedError reports a cycle in which every attempted workflow failed.
func CycleFailedError(failed int) *SentinelError {
	return Newf(ErrorTypeCycleFailed, "assessment cycle failed: %d workflow(s) errored and none published", failed).
		WithSolutions(
			"Inspect the per-workflow errors above",
			"Run with --log-level debug for endpoint-by-endpoint detail",
		)
}
