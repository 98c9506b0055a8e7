package trades

import "eos-swap-lab/internal/domain"

// GroupByTransaction partitions an ordered action sequence into contiguous
// runs sharing a transaction id. Concatenating the groups in order reproduces
// the input exactly. A transaction id that reappears after an unrelated row
// deliberately forms a second group; the candidate query orders by
// (block_time, trx_id) so legs of one transaction arrive adjacent.
func GroupByTransaction(actions []*domain.RawAction) [][]*domain.RawAction {
	var groups [][]*domain.RawAction

	start := 0
	for i := 1; i <= len(actions); i++ {
		if i == len(actions) || actions[i].TrxID != actions[start].TrxID {
			groups = append(groups, actions[start:i])
			start = i
		}
	}

	return groups
}
