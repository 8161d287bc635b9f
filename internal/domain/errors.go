package domain

import "errors"

var (
	// Batch errors
	ErrBatchNotFound      = errors.New("import batch not found")
	ErrBatchAlreadyUndone = errors.New("import batch already undone")
	ErrBatchNotCompleted  = errors.New("only completed batches can be undone")

	// Statement errors
	ErrEmptyStatement      = errors.New("statement contains no transactions")
	ErrUnsupportedFileType = errors.New("unsupported statement file type")
	ErrMissingColumns      = errors.New("statement is missing required columns")

	// Invoice errors
	ErrInvoiceNotFound  = errors.New("invoice not found")
	ErrCustomerNotFound = errors.New("customer not found")

	// Auth errors
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)
