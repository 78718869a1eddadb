package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Beer is a row in the beer catalog. Version is the optimistic-concurrency
// counter: every successful write bumps it by one and a write carrying a
// stale version fails instead of overwriting.
type Beer struct {
	ID             uuid.UUID
	Version        int32
	BeerName       string
	BeerStyle      BeerStyle
	UPC            string
	QuantityOnHand int
	Price          decimal.Decimal
	CreatedDate    time.Time
	UpdateDate     time.Time
}

// BeerStyle is the fixed set of styles a beer can be catalogued under.
type BeerStyle string

const (
	StyleLager   BeerStyle = "LAGER"
	StylePilsner BeerStyle = "PILSNER"
	StyleStout   BeerStyle = "STOUT"
	StyleGose    BeerStyle = "GOSE"
	StylePorter  BeerStyle = "PORTER"
	StyleAle     BeerStyle = "ALE"
	StyleWheat   BeerStyle = "WHEAT"
	StyleIPA     BeerStyle = "IPA"
	StylePaleAle BeerStyle = "PALE_ALE"
	StyleSaison  BeerStyle = "SAISON"
)

func (s BeerStyle) String() string {
	return string(s)
}

// Validate reports whether the style is a member of the enumerated set.
func (s BeerStyle) Validate() error {
	switch s {
	case StyleLager, StylePilsner, StyleStout, StyleGose, StylePorter,
		StyleAle, StyleWheat, StyleIPA, StylePaleAle, StyleSaison:
		return nil
	default:
		return fmt.Errorf("invalid beer style: %s", string(s))
	}
}
