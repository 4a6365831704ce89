package raffle

type StockAction string

const (
	StockHealthy StockAction = "ok"
	// StockRestore: no stock left but nobody won, typically an aborted draw.
	StockRestore StockAction = "restore"
	// StockWarning: stock remains although a winner is recorded. Never auto-fixed.
	StockWarning StockAction = "warning"
)

func ClassifyStock(stock int, winners int) StockAction {
	switch {
	case stock <= 0 && winners == 0:
		return StockRestore
	case stock > 0 && winners > 0:
		return StockWarning
	default:
		return StockHealthy
	}
}

func UnitStateFor(stock int) UnitState {
	if stock > 0 {
		return UnitAvailable
	}
	return UnitWon
}
