package sales

import "time"

// Tipos de evento publicados tras el commit de un checkout.
const (
	EventSaleCompleted = "sale.completed"
	EventStockLow      = "stock.low"
)

// Event notificación para los clientes conectados (panel admin, cajas).
type Event struct {
	Type       string         `json:"type"`
	SaleNumber int64          `json:"saleNumber,omitempty"`
	CashierID  string         `json:"cashierId,omitempty"`
	LowStock   []LowStockItem `json:"lowStock,omitempty"`
	At         time.Time      `json:"at"`
}

// Notifier publica eventos. Publish no debe bloquear al caller.
type Notifier interface {
	Publish(event Event)
}

// NopNotifier descarta todos los eventos.
type NopNotifier struct{}

// Publish no hace nada.
func (NopNotifier) Publish(Event) {}
