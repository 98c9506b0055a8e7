package trades

import (
	"log"
	"strings"
	"time"

	"eos-swap-lab/internal/domain"
)

// Token symbols of the swap pair.
const (
	TokenEFX = "EFX"
	TokenNFX = "NFX"
)

// DefaultFeeCollector is the account that receives the fee leg of a swap.
const DefaultFeeCollector = "fees.defi"

// swapMemoPrefix marks the leg the trader sent into the swap pool.
const swapMemoPrefix = "swap,"

// RejectReason explains why a group did not produce a trade. Rejection is
// routine filtering, not an error condition.
type RejectReason int

const (
	RejectNone RejectReason = iota
	RejectGroupSize
	RejectMissingLeg
	RejectZeroNFXAmount
)

func (r RejectReason) String() string {
	switch r {
	case RejectNone:
		return "none"
	case RejectGroupSize:
		return "group_size"
	case RejectMissingLeg:
		return "missing_leg"
	case RejectZeroNFXAmount:
		return "zero_nfx_amount"
	default:
		return "unknown"
	}
}

// Classifier validates action groups against the three-leg swap pattern and
// derives the economic event from matching groups.
type Classifier struct {
	feeCollector string
	logger       *log.Logger
}

// NewClassifier creates a classifier for the given fee-collector account.
func NewClassifier(feeCollector string, logger *log.Logger) *Classifier {
	if feeCollector == "" {
		feeCollector = DefaultFeeCollector
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Classifier{
		feeCollector: feeCollector,
		logger:       logger,
	}
}

// Classify validates one transaction group and derives a Trade from it.
// A valid group has exactly three legs: the fee leg (recipient is the
// fee collector), one EFX leg and one NFX leg. Any other shape is rejected
// with the reason; no trade is produced.
func (c *Classifier) Classify(group []*domain.RawAction) (*domain.Trade, RejectReason) {
	if len(group) != 3 {
		return nil, RejectGroupSize
	}

	var feeLeg, efxLeg, nfxLeg *domain.RawAction
	var feeAmount, efxAmount, nfxAmount float64

	for _, leg := range group {
		amount, token := ParseQuantity(leg.Quantity)

		// The fee check comes first: a fee paid in EFX must not be
		// mistaken for the EFX leg.
		switch {
		case leg.To == c.feeCollector:
			feeLeg = leg
			feeAmount = amount
		case token == TokenEFX:
			efxLeg = leg
			efxAmount = amount
		case token == TokenNFX:
			nfxLeg = leg
			nfxAmount = amount
		}
	}

	if feeLeg == nil || efxLeg == nil || nfxLeg == nil {
		return nil, RejectMissingLeg
	}

	// A zero NFX amount would make the ratio undefined. The feed should
	// never produce one, but the lenient quantity parse makes it possible.
	if nfxAmount == 0 {
		return nil, RejectZeroNFXAmount
	}

	var direction domain.Direction
	var trader string
	if strings.HasPrefix(efxLeg.Memo, swapMemoPrefix) {
		direction = domain.DirectionEFXToNFX
		trader = efxLeg.From
	} else {
		direction = domain.DirectionNFXToEFX
		trader = nfxLeg.From
	}

	timestamp, ok := parseBlockTime(efxLeg.BlockTime)
	if !ok {
		c.logger.Printf("Unparseable block time %q on trx %s", efxLeg.BlockTime, efxLeg.TrxID)
	}

	return &domain.Trade{
		Timestamp: timestamp,
		TrxID:     efxLeg.TrxID,
		Trader:    trader,
		Direction: direction,
		EFXAmount: efxAmount,
		NFXAmount: nfxAmount,
		Ratio:     efxAmount / nfxAmount,
		FeeAmount: feeAmount,
	}, RejectNone
}

// blockTimeLayouts covers the timestamp formats the history feed emits.
var blockTimeLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

func parseBlockTime(s string) (time.Time, bool) {
	for _, layout := range blockTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
