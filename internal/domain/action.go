package domain

// RawAction is one flattened transfer-shaped action from the history feed.
// Corresponds to the actions table in PostgreSQL. Identity is GlobalSeq;
// re-ingesting the same sequence number replaces the row.
type RawAction struct {
	GlobalSeq   int64  // global action sequence number, unique
	BlockNum    int64  // block number
	BlockTime   string // ledger timestamp, ISO-8601, lexicographically sortable
	TrxID       string // transaction id shared by all legs of one transaction
	Actor       string // first authorizing actor
	ActionName  string // e.g. "transfer"
	From        string // sending account
	To          string // receiving account
	Memo        string
	Quantity    string // "<amount> <symbol>", parsed downstream
	Contract    string // contract account that defined the action
	RawData     string // original action envelope JSON as received
	ProcessedAt string // when this row was flattened (RFC3339 UTC)
}

// ActionTransfer is the action name of transfer-shaped ledger actions,
// the only kind the reconstruction pipeline consumes.
const ActionTransfer = "transfer"
