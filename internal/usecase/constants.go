package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// DefaultBulkChunkSize is how many properties a bulk billing run loads per batch
	DefaultBulkChunkSize = 50

	// DefaultBulkWorkers bounds the parallelism of a bulk billing run
	DefaultBulkWorkers = 8

	// DefaultDueDateOffsetDays is added to the period end to get the due date
	DefaultDueDateOffsetDays = 15
)
