package tcgcsv

import (
	"errors"
	"fmt"
	"strings"
)

var ErrPriceNotFound = errors.New("no price found")

// PriceGuide answers market price lookups by print identifier, loading
// each set's product and price tables on first use. Lookups are best
// effort, a missing price is reported with ErrPriceNotFound and should
// not abort the caller's batch.
type PriceGuide struct {
	groups map[string]int
	loaded map[int]bool
	prices map[string]float64
}

func NewPriceGuide() (*PriceGuide, error) {
	groups, err := Groups()
	if err != nil {
		return nil, err
	}

	pg := PriceGuide{
		groups: map[string]int{},
		loaded: map[int]bool{},
		prices: map[string]float64{},
	}
	for _, group := range groups {
		if group.Abbreviation == "" {
			continue
		}
		pg.groups[strings.ToUpper(group.Abbreviation)] = group.GroupID
	}
	return &pg, nil
}

// MarketPrice returns the market price of the regular (non reverse
// holo) print with the given set code and collector number.
func (pg *PriceGuide) MarketPrice(setCode, number string) (float64, error) {
	setCode = strings.ToUpper(setCode)
	groupID, found := pg.groups[setCode]
	if !found {
		return 0, ErrPriceNotFound
	}

	if !pg.loaded[groupID] {
		err := pg.loadGroup(setCode, groupID)
		if err != nil {
			return 0, err
		}
	}

	price, found := pg.prices[priceKey(setCode, number)]
	if !found {
		return 0, ErrPriceNotFound
	}
	return price, nil
}

func (pg *PriceGuide) loadGroup(setCode string, groupID int) error {
	products, err := Products(groupID)
	if err != nil {
		return err
	}
	prices, err := Prices(groupID)
	if err != nil {
		return err
	}

	// Mark loaded even if the join below finds nothing, so a group with
	// missing data is only fetched once
	pg.loaded[groupID] = true

	market := map[int]float64{}
	for _, price := range prices {
		if price.SubTypeName != "Normal" && price.SubTypeName != "Holofoil" {
			continue
		}
		_, found := market[price.ProductID]
		if !found {
			market[price.ProductID] = price.MarketPrice
		}
	}

	for _, product := range products {
		number := product.Number()
		if number == "" {
			continue
		}
		price, found := market[product.ProductID]
		if !found {
			continue
		}
		// Numbers are stored as "54/182" on some products
		number = strings.Split(number, "/")[0]
		pg.prices[priceKey(setCode, number)] = price
	}
	return nil
}

func priceKey(setCode, number string) string {
	return fmt.Sprintf("%s|%s", setCode, strings.TrimLeft(number, "0"))
}
