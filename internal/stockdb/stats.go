package stockdb

import "math"

// Stats summarizes the current stock collection. HighestSymbol and
// LowestSymbol are omitted when the collection is empty.
type Stats struct {
	Count          int     `json:"count"`
	AveragePrice   float64 `json:"average_price"`
	TotalMarketCap float64 `json:"total_market_cap"`
	HighestSymbol  string  `json:"highest_symbol,omitempty"`
	LowestSymbol   string  `json:"lowest_symbol,omitempty"`
}

// ComputeStats derives aggregate figures from a snapshot of the collection:
// record count, mean price rounded to two decimals, market cap total, and
// the symbols holding the maximum and minimum price. Ties keep the first
// record encountered.
func ComputeStats(stocks []Stock) Stats {
	if len(stocks) == 0 {
		return Stats{}
	}

	var priceSum, capSum float64
	highest := stocks[0]
	lowest := stocks[0]

	for _, s := range stocks {
		priceSum += s.Price
		capSum += s.MarketCap
		if s.Price > highest.Price {
			highest = s
		}
		if s.Price < lowest.Price {
			lowest = s
		}
	}

	avg := priceSum / float64(len(stocks))

	return Stats{
		Count:          len(stocks),
		AveragePrice:   math.Round(avg*100) / 100,
		TotalMarketCap: capSum,
		HighestSymbol:  highest.Symbol,
		LowestSymbol:   lowest.Symbol,
	}
}
