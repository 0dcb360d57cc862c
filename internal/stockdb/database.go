// Package stockdb owns the persisted stock collection. It is the only
// writer of the data file and enforces the symbol-uniqueness invariant.
//
// Every operation is a full load of the persisted collection, an in-memory
// change, and a complete write-back, serialized through one mutex so
// concurrent callers cannot lose updates. The file always holds a complete
// JSON object: writes go to a temp file that is renamed into place.
package stockdb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"stockmcp/internal/config"
	"stockmcp/internal/logging"

	"github.com/google/uuid"
)

// timeFormat is RFC 3339 with fixed nanosecond precision so stored UTC
// timestamps sort lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z"

// StockDatabase is a file-backed store of stock records keyed by ID.
type StockDatabase struct {
	mu     sync.Mutex
	path   string
	strict bool
	logger *logging.AppLogger

	now   func() time.Time
	newID func() string
}

// Option configures a StockDatabase.
type Option func(*StockDatabase)

// WithClock replaces the timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(db *StockDatabase) { db.now = now }
}

// WithIDGenerator replaces the record ID source, for tests.
func WithIDGenerator(gen func() string) Option {
	return func(db *StockDatabase) { db.newID = gen }
}

// New opens (or creates) the stock database at path. corruptionPolicy is
// config.CorruptionReset or config.CorruptionStrict.
func New(path string, corruptionPolicy string, logger *logging.AppLogger, opts ...Option) (*StockDatabase, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("data file path cannot be empty")
	}
	if logger == nil {
		logger = logging.GetDefault()
	}

	db := &StockDatabase{
		path:   path,
		strict: corruptionPolicy == config.CorruptionStrict,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(db)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// Materialize an empty collection so the file exists from the start
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := db.save(map[string]Stock{}); err != nil {
			return nil, err
		}
	}

	return db, nil
}

// Path returns the data file the store owns.
func (db *StockDatabase) Path() string {
	return db.path
}

// load reads and decodes the full collection. A missing or empty file is an
// empty collection. Malformed content follows the corruption policy: strict
// fails with ErrCorruptData, reset logs and starts over empty.
func (db *StockDatabase) load() (map[string]Stock, error) {
	content, err := os.ReadFile(db.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Stock{}, nil
		}
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}

	if len(strings.TrimSpace(string(content))) == 0 {
		return map[string]Stock{}, nil
	}

	var data map[string]Stock
	if err := json.Unmarshal(content, &data); err != nil {
		if db.strict {
			return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
		}
		db.logger.Warn("Persisted stock data is unreadable, resetting to empty collection",
			"path", db.path,
			"error", err,
		)
		return map[string]Stock{}, nil
	}

	return data, nil
}

// save writes the complete collection atomically: encode to a temp file in
// the same directory, then rename over the data file.
func (db *StockDatabase) save(data map[string]Stock) error {
	tmp, err := os.CreateTemp(filepath.Dir(db.path), ".stocks-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp data file: %w", err)
	}
	tmpPath := tmp.Name()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	// Keep non-ASCII symbols and names readable in the file
	enc.SetEscapeHTML(false)

	if err := enc.Encode(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to encode stock data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp data file: %w", err)
	}

	if err := os.Rename(tmpPath, db.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace data file: %w", err)
	}

	return nil
}

// timestamp renders the clock in the stored, sortable form.
func (db *StockDatabase) timestamp() string {
	return db.now().UTC().Format(timeFormat)
}

// Create adds a new stock. It fails with DuplicateSymbolError when another
// record already holds the symbol (case-insensitive).
func (db *StockDatabase) Create(input StockCreate) (*Stock, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	data, err := db.load()
	if err != nil {
		return nil, err
	}

	symbol := NormalizeSymbol(input.Symbol)
	for _, existing := range data {
		if strings.EqualFold(existing.Symbol, symbol) {
			return nil, &DuplicateSymbolError{Symbol: symbol}
		}
	}

	now := db.timestamp()
	stock := Stock{
		ID:        db.newID(),
		Symbol:    symbol,
		Name:      input.Name,
		Price:     input.Price,
		Change:    input.Change,
		Volume:    input.Volume,
		MarketCap: input.MarketCap,
		CreatedAt: now,
		UpdatedAt: now,
	}

	data[stock.ID] = stock
	if err := db.save(data); err != nil {
		return nil, err
	}

	db.logger.Debug("Created stock", "id", stock.ID, "symbol", stock.Symbol)
	return &stock, nil
}

// Get returns the stock with the given ID, or nil when absent.
func (db *StockDatabase) Get(id string) (*Stock, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	data, err := db.load()
	if err != nil {
		return nil, err
	}

	stock, ok := data[id]
	if !ok {
		return nil, nil
	}
	return &stock, nil
}

// GetBySymbol returns the stock with the given symbol (case-insensitive),
// or nil when absent.
func (db *StockDatabase) GetBySymbol(symbol string) (*Stock, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	data, err := db.load()
	if err != nil {
		return nil, err
	}

	for _, stock := range data {
		if strings.EqualFold(stock.Symbol, symbol) {
			s := stock
			return &s, nil
		}
	}
	return nil, nil
}

// List returns every stock, ordered by creation time then ID. The persisted
// encoding is an unordered object, so the store imposes this ordering rather
// than promising insertion order.
func (db *StockDatabase) List() ([]Stock, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	data, err := db.load()
	if err != nil {
		return nil, err
	}

	stocks := make([]Stock, 0, len(data))
	for _, stock := range data {
		stocks = append(stocks, stock)
	}
	sort.Slice(stocks, func(i, j int) bool {
		if stocks[i].CreatedAt != stocks[j].CreatedAt {
			return stocks[i].CreatedAt < stocks[j].CreatedAt
		}
		return stocks[i].ID < stocks[j].ID
	})

	return stocks, nil
}

// Update applies a partial update to the stock with the given ID. It returns
// nil (no error) when the ID is absent and DuplicateSymbolError when the
// patch would move the record onto a symbol another record holds.
func (db *StockDatabase) Update(id string, patch StockUpdate) (*Stock, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	data, err := db.load()
	if err != nil {
		return nil, err
	}

	stock, ok := data[id]
	if !ok {
		return nil, nil
	}

	if patch.Symbol != nil {
		symbol := NormalizeSymbol(*patch.Symbol)
		for otherID, other := range data {
			if otherID != id && strings.EqualFold(other.Symbol, symbol) {
				return nil, &DuplicateSymbolError{Symbol: symbol}
			}
		}
		stock.Symbol = symbol
	}
	if patch.Name != nil {
		stock.Name = *patch.Name
	}
	if patch.Price != nil {
		stock.Price = *patch.Price
	}
	if patch.Change != nil {
		stock.Change = *patch.Change
	}
	if patch.Volume != nil {
		stock.Volume = *patch.Volume
	}
	if patch.MarketCap != nil {
		stock.MarketCap = *patch.MarketCap
	}

	stock.UpdatedAt = db.advanceTimestamp(stock.UpdatedAt)

	data[id] = stock
	if err := db.save(data); err != nil {
		return nil, err
	}

	db.logger.Debug("Updated stock", "id", id, "symbol", stock.Symbol)
	return &stock, nil
}

// advanceTimestamp returns the current timestamp, bumped past prev when the
// clock has not moved since the last update. UpdatedAt must strictly
// advance on every successful update.
func (db *StockDatabase) advanceTimestamp(prev string) string {
	now := db.now().UTC()
	if prevTime, err := time.Parse(timeFormat, prev); err == nil && !now.After(prevTime) {
		now = prevTime.Add(time.Nanosecond)
	}
	return now.Format(timeFormat)
}

// Delete removes the stock with the given ID. It reports whether a record
// was removed; deleting an unknown ID is not an error.
func (db *StockDatabase) Delete(id string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	data, err := db.load()
	if err != nil {
		return false, err
	}

	if _, ok := data[id]; !ok {
		return false, nil
	}

	delete(data, id)
	if err := db.save(data); err != nil {
		return false, err
	}

	db.logger.Debug("Deleted stock", "id", id)
	return true, nil
}

// Stats derives aggregate figures from the current collection. The result
// is recomputed on every call; the collection may have changed in between.
func (db *StockDatabase) Stats() (Stats, error) {
	stocks, err := db.List()
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(stocks), nil
}
