package bootstrap

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/tapcellar/beer-catalog/internal/model"
)

// BeerCSVRecord is one row of the catalog export this service is seeded
// from (craft-beers dataset layout).
type BeerCSVRecord struct {
	Row     int     `csv:"row"`
	Count   int     `csv:"count"`
	ABV     string  `csv:"abv"`
	IBU     string  `csv:"ibu"`
	ID      int     `csv:"id"`
	Beer    string  `csv:"beer"`
	Style   string  `csv:"style"`
	Brewery string  `csv:"brewery"`
	Ounces  float64 `csv:"ounces"`
}

// ConvertCSV parses a beer catalog CSV stream.
func ConvertCSV(r io.Reader) ([]BeerCSVRecord, error) {
	var records []BeerCSVRecord
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, fmt.Errorf("unmarshal csv: %w", err)
	}

	return records, nil
}

// styleFromCSV maps the free-text style names of the dataset onto the
// catalog's enumerated styles.
func styleFromCSV(style string) model.BeerStyle {
	switch style {
	case "American Pale Lager":
		return model.StyleLager
	case "American Pale Ale (APA)", "American Black Ale",
		"Belgian Dark Ale", "American Blonde Ale":
		return model.StyleAle
	case "American IPA", "American Double / Imperial IPA", "Belgian IPA":
		return model.StyleIPA
	case "American Porter":
		return model.StylePorter
	case "Oatmeal Stout", "American Stout":
		return model.StyleStout
	case "Saison / Farmhouse Ale":
		return model.StyleSaison
	case "Fruit / Vegetable Beer", "Winter Warmer", "Berliner Weissbier":
		return model.StyleWheat
	case "English Pale Ale":
		return model.StylePaleAle
	default:
		return model.StylePilsner
	}
}
