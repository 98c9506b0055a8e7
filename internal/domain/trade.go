package domain

import "time"

// Direction indicates which token the trader sent into the swap.
type Direction string

const (
	DirectionEFXToNFX Direction = "EFX_TO_NFX"
	DirectionNFXToEFX Direction = "NFX_TO_EFX"
)

// Trade is a swap reconstructed from exactly three transfer legs sharing one
// transaction id: an EFX leg, an NFX leg and a fee leg. Never mutated after
// classification.
type Trade struct {
	Timestamp time.Time // block time of the EFX leg
	TrxID     string
	Trader    string
	Direction Direction
	EFXAmount float64
	NFXAmount float64
	Ratio     float64 // EFX denominated in NFX: EFXAmount / NFXAmount
	FeeAmount float64
}
