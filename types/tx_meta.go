package types

const (
	TxStatusFailed  = 0
	TxStatusSuccess = 1
)

type TransactionMeta struct {
	TxHash      string `json:"tx_hash"`
	Instruction string `json:"instruction"`
	Status      int32  `json:"status"`
	Error       string `json:"error"`
	Timestamp   uint64 `json:"timestamp"`
}

func NewTxMeta(txHash, instruction string, status int32, err string, timestamp uint64) *TransactionMeta {
	return &TransactionMeta{
		TxHash:      txHash,
		Instruction: instruction,
		Status:      status,
		Error:       err,
		Timestamp:   timestamp,
	}
}
