package models

// Record maps field names to generated values. Value kinds depend on the
// field type: string, stringified integer, epoch-millisecond int64, or an
// OperationDescriptor. Unknown field types carry nil.
type Record map[string]any

// OperationDescriptor is the fixed change-operation marker attached to every
// record under its schema's operation field.
type OperationDescriptor struct {
	EnumName     string `json:"enumName"`
	ValueName    string `json:"valueName"`
	ValueOrdinal int    `json:"valueOrdinal"`
}

// UpsertOperation returns the descriptor every generated record carries.
func UpsertOperation() OperationDescriptor {
	return OperationDescriptor{
		EnumName:     "Operation",
		ValueName:    "UPSERT",
		ValueOrdinal: 1,
	}
}

// TransactionEnvelope wraps a single generated record in the transaction
// shape consumed by downstream replication tooling. One envelope is produced
// per record.
type TransactionEnvelope struct {
	StartTransaction bool                `json:"startTransaction"`
	TransactionID    string              `json:"transactionId"`
	EndTransaction   bool                `json:"endTransaction"`
	RepeatedMessages map[string][]Record `json:"repeatedMessages"`
}
