package events

import (
	"time"
)

// EventType is an enum-like string type for ledger events
type EventType string

const (
	EventTransactionExecuted EventType = "TransactionExecuted"
	EventTransactionFailed   EventType = "TransactionFailed"
)

// LedgerEvent represents any outcome the ledger reports for a transaction
type LedgerEvent interface {
	Type() EventType
	Timestamp() time.Time
	TxHash() string
	Instruction() string
}

// TransactionExecuted event when a transaction's writes are committed
type TransactionExecuted struct {
	txHash      string
	instruction string
	timestamp   time.Time
}

func NewTransactionExecuted(txHash, instruction string) *TransactionExecuted {
	return &TransactionExecuted{
		txHash:      txHash,
		instruction: instruction,
		timestamp:   time.Now(),
	}
}

func (e *TransactionExecuted) Type() EventType {
	return EventTransactionExecuted
}

func (e *TransactionExecuted) Timestamp() time.Time {
	return e.timestamp
}

func (e *TransactionExecuted) TxHash() string {
	return e.txHash
}

func (e *TransactionExecuted) Instruction() string {
	return e.instruction
}

// TransactionFailed event when a transaction is rejected and nothing was written
type TransactionFailed struct {
	txHash       string
	instruction  string
	errorMessage string
	timestamp    time.Time
}

func NewTransactionFailed(txHash, instruction, errorMessage string) *TransactionFailed {
	return &TransactionFailed{
		txHash:       txHash,
		instruction:  instruction,
		errorMessage: errorMessage,
		timestamp:    time.Now(),
	}
}

func (e *TransactionFailed) Type() EventType {
	return EventTransactionFailed
}

func (e *TransactionFailed) Timestamp() time.Time {
	return e.timestamp
}

func (e *TransactionFailed) TxHash() string {
	return e.txHash
}

func (e *TransactionFailed) Instruction() string {
	return e.instruction
}

func (e *TransactionFailed) ErrorMessage() string {
	return e.errorMessage
}
