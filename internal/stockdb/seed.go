package stockdb

// sampleStocks are the records seeded into a fresh store.
var sampleStocks = []StockCreate{
	{Symbol: "AAPL", Name: "Apple Inc.", Price: 175.43, Change: 2.14, Volume: 52000000, MarketCap: 2800000000000},
	{Symbol: "GOOGL", Name: "Alphabet Inc.", Price: 138.21, Change: -1.23, Volume: 28000000, MarketCap: 1700000000000},
	{Symbol: "MSFT", Name: "Microsoft Corp.", Price: 378.85, Change: 5.67, Volume: 31000000, MarketCap: 2900000000000},
	{Symbol: "TSLA", Name: "Tesla Inc.", Price: 248.42, Change: -8.91, Volume: 89000000, MarketCap: 790000000000},
	{Symbol: "NVDA", Name: "NVIDIA Corp.", Price: 875.28, Change: 15.73, Volume: 45000000, MarketCap: 2100000000000},
}

// SeedSampleData populates the store with the sample records when it is
// empty. Duplicate symbols are skipped so seeding is safe to repeat. It
// returns the number of records created.
func SeedSampleData(db *StockDatabase) (int, error) {
	existing, err := db.List()
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	created := 0
	for _, input := range sampleStocks {
		if _, err := db.Create(input); err != nil {
			if IsDuplicateSymbol(err) {
				continue
			}
			return created, err
		}
		created++
	}

	return created, nil
}
