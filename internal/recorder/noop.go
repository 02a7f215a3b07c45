package recorder

// Noop discards all records. Used when no database path is configured.
type Noop struct{}

func (Noop) Record(*TradeRecord) error         { return nil }
func (Noop) Recent(int) ([]TradeRecord, error) { return nil, nil }
func (Noop) Close() error                      { return nil }
