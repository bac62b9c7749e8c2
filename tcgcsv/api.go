package tcgcsv

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hashicorp/go-cleanhttp"
)

// The upstream feed namespaces everything under the Pokemon category, id 3
const (
	csvGroupsURL   = "https://tcgcsv.com/tcgplayer/3/groups"
	csvProductsURL = "https://tcgcsv.com/tcgplayer/3/%d/products"
	csvPricesURL   = "https://tcgcsv.com/tcgplayer/3/%d/prices"
)

type Group struct {
	GroupID      int    `json:"groupId"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	PublishedOn  string `json:"publishedOn"`
}

type Product struct {
	ProductID    int    `json:"productId"`
	Name         string `json:"name"`
	CleanName    string `json:"cleanName"`
	GroupID      int    `json:"groupId"`
	URL          string `json:"url"`
	ExtendedData []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"extendedData"`
}

// Number returns the collector number from the product extended data,
// or an empty string when the product has none (sealed, bundles).
func (p Product) Number() string {
	for _, data := range p.ExtendedData {
		if data.Name == "Number" {
			return data.Value
		}
	}
	return ""
}

type Price struct {
	ProductID   int     `json:"productId"`
	LowPrice    float64 `json:"lowPrice"`
	MidPrice    float64 `json:"midPrice"`
	HighPrice   float64 `json:"highPrice"`
	MarketPrice float64 `json:"marketPrice"`
	SubTypeName string  `json:"subTypeName"`
}

type response struct {
	Success bool            `json:"success"`
	Errors  []string        `json:"errors"`
	Results json.RawMessage `json:"results"`
}

func Groups() ([]Group, error) {
	var groups []Group
	err := query(csvGroupsURL, &groups)
	return groups, err
}

func Products(groupID int) ([]Product, error) {
	var products []Product
	err := query(fmt.Sprintf(csvProductsURL, groupID), &products)
	return products, err
}

func Prices(groupID int) ([]Price, error) {
	var prices []Price
	err := query(fmt.Sprintf(csvPricesURL, groupID), &prices)
	return prices, err
}

func query(link string, out interface{}) error {
	resp, err := cleanhttp.DefaultClient().Get(link)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var blob response
	err = json.Unmarshal(data, &blob)
	if err != nil {
		return err
	}
	if !blob.Success {
		return fmt.Errorf("feed error: %v", blob.Errors)
	}

	return json.Unmarshal(blob.Results, out)
}
