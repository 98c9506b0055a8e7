package eos

import "encoding/json"

// getActionsRequest is the v1 history get_actions request body.
type getActionsRequest struct {
	AccountName string `json:"account_name"`
	Pos         int64  `json:"pos"`
	Offset      int64  `json:"offset"`
}

// getActionsResponse is the raw response. Actions are kept as raw JSON so the
// original envelope can be stored verbatim alongside the flattened fields.
type getActionsResponse struct {
	Actions []json.RawMessage `json:"actions"`
}

// actionEnvelope is one entry of the get_actions response.
type actionEnvelope struct {
	GlobalActionSeq int64       `json:"global_action_seq"`
	BlockNum        int64       `json:"block_num"`
	BlockTime       string      `json:"block_time"`
	ActionTrace     actionTrace `json:"action_trace"`
}

type actionTrace struct {
	TrxID string `json:"trx_id"`
	Act   act    `json:"act"`
}

type act struct {
	Account       string          `json:"account"`
	Name          string          `json:"name"`
	Authorization []authorization `json:"authorization"`
	Data          json.RawMessage `json:"data"`
}

type authorization struct {
	Actor      string `json:"actor"`
	Permission string `json:"permission"`
}

// transferData is the action-specific payload of transfer-shaped actions.
// Non-transfer actions carry different payloads; their fields stay empty.
type transferData struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Quantity string `json:"quantity"`
	Memo     string `json:"memo"`
}
