// internal/domain/models.go
package domain

import "time"

// UrgencyTier classifies how soon a SKU needs restocking.
type UrgencyTier string

const (
	TierCritical UrgencyTier = "CRITICO"
	TierReorder  UrgencyTier = "ORDINARE"
	TierOK       UrgencyTier = "OK"
)

// SalesEvent is one unit-sold observation, normalized to a calendar day.
// Produced by the Shopify order feed (one per line item) or by the GLS
// consignment annotation parser (one per annotation token on a returned
// shipment). Immutable once constructed.
type SalesEvent struct {
	SKU      string    `json:"sku"`
	Quantity int       `json:"quantity"`
	Date     time.Time `json:"date"`
}

// StockLevels are the per-SKU quantity tables read from the inventory
// spreadsheet and the backorder feed. Order preserves the source sheet's
// row order so reports come out in the same order the warehouse keeps them.
type StockLevels struct {
	Quantities map[string]int
	Order      []string
}

// StockRecord is one fully projected row of the stock report.
type StockRecord struct {
	SKU            string      `json:"sku"`
	Modelo         string      `json:"modelo"`
	Talla          string      `json:"talla"`
	OnHand         int         `json:"magazzino_attuale"`
	Incoming       int         `json:"in_arrivo"`
	TotalAvailable int         `json:"totale_disponibile"`
	Backordered    int         `json:"ordini_arretrati"`
	NetAvailable   int         `json:"magazzino_netto"`
	DailyDemand    float64     `json:"media_vendite_giornaliere"`
	DaysOfAutonomy float64     `json:"-"`
	AutonomyShown  float64     `json:"giorni_autonomia"`
	Urgency        UrgencyTier `json:"urgenza"`
}

// ReorderSuggestion is one row of the supplier order proposal. Present only
// for SKUs outside the OK tier.
type ReorderSuggestion struct {
	SKU            string      `json:"sku"`
	Modelo         string      `json:"modelo"`
	Talla          string      `json:"talla"`
	Quantity       int         `json:"quantita"`
	Urgency        UrgencyTier `json:"urgenza"`
	DaysOfAutonomy float64     `json:"giorni_autonomia"`
}

// ReportSummary aggregates a report run.
type ReportSummary struct {
	TotalSKUs           int `json:"totale_sku"`
	TotalUnitsAvailable int `json:"totale_pezzi_stock"`
	TotalOnHand         int `json:"totale_magazzino_attuale"`
	TotalIncoming       int `json:"totale_in_arrivo"`
	CriticalCount       int `json:"sku_critici"`
	ReorderCount        int `json:"sku_da_ordinare"`
	TotalReorderUnits   int `json:"totale_pezzi_ordine"`
}

// StockReport is the full output of one forecasting run. Stateless: rebuilt
// from scratch on every invocation over the current inputs.
type StockReport struct {
	Stock       []StockRecord       `json:"stock"`
	Reorder     []ReorderSuggestion `json:"ordine_fornitore"`
	Summary     ReportSummary       `json:"summary"`
	GeneratedAt time.Time           `json:"timestamp"`
}

// ReportRun is one persisted forecasting run.
type ReportRun struct {
	ID            int64     `json:"id" db:"id"`
	RunDate       time.Time `json:"run_date" db:"run_date"`
	SKUCount      int       `json:"sku_count" db:"sku_count"`
	CriticalCount int       `json:"critical_count" db:"critical_count"`
	ReorderCount  int       `json:"reorder_count" db:"reorder_count"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Shipment is one row of the GLS extranet consignment search result.
type Shipment struct {
	Expedition  string
	Date        time.Time
	Reference   string
	Recipient   string
	Status      string
	Return      string
	Observation string
}

// FulfillRequest carries everything needed to ship an order and mark it
// fulfilled on the platform.
type FulfillRequest struct {
	OrderID         string        `json:"orderId"`
	OrderName       string        `json:"orderName"`
	CustomerName    string        `json:"customerName"`
	Email           string        `json:"email"`
	TotalPrice      string        `json:"totalPrice"`
	FinancialStatus string        `json:"financialStatus"`
	Observations    string        `json:"customObservations"`
	NotifyCustomer  bool          `json:"notifyCustomer"`
	Shipping        Address       `json:"shippingAddress"`
	Items           []FulfillItem `json:"items"`
}

type Address struct {
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	City     string `json:"city"`
	Province string `json:"province"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
	Phone    string `json:"phone"`
}

type FulfillItem struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
	Title    string `json:"title,omitempty"`
}

// FulfillResult is the outcome of a fulfillment attempt.
type FulfillResult struct {
	Success        bool   `json:"success"`
	TrackingNumber string `json:"trackingNumber,omitempty"`
	Message        string `json:"message,omitempty"`
	Error          string `json:"error,omitempty"`
}
