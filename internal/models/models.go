// Package models defines the entity shapes returned by the upstream
// marketplace API and the response wrappers this service emits.
package models

import (
	"encoding/json"
	"time"
)

// Envelope is the wire format every upstream endpoint replies with.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data"`
}

// Meta carries pagination metadata on list responses.
type Meta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

// APIResponse is the standard response shape of this service.
type APIResponse struct {
	Data interface{} `json:"data"`
	Meta *Meta       `json:"meta,omitempty"`
}

// OrderRef is an order reference that the upstream returns either as a bare
// id string or as an embedded object, depending on the endpoint.
type OrderRef struct {
	ID          string `json:"_id"`
	OrderNumber string `json:"order_number,omitempty"`
}

func (o *OrderRef) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var id string
		if err := json.Unmarshal(b, &id); err != nil {
			return err
		}
		o.ID = id
		return nil
	}
	type alias OrderRef
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*o = OrderRef(a)
	return nil
}

// Display returns the human-facing form of the reference, falling back to
// the raw id when no order number is embedded.
func (o OrderRef) Display() string {
	if o.OrderNumber != "" {
		return o.OrderNumber
	}
	return o.ID
}

type Dealer struct {
	ID        string    `json:"_id"`
	LegalName string    `json:"legal_name"`
	TradeName string    `json:"trade_name,omitempty"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	GSTNumber string    `json:"gst_number,omitempty"`
	Pincode   string    `json:"pincode"`
	City      string    `json:"city,omitempty"`
	State     string    `json:"state,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type StockMovement struct {
	Qty    int       `json:"qty"`
	Reason string    `json:"reason,omitempty"`
	At     time.Time `json:"at"`
}

type Product struct {
	ID        string          `json:"_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Brand     string          `json:"brand,omitempty"`
	Category  string          `json:"category,omitempty"`
	Price     float64         `json:"price"`
	DealerID  string          `json:"dealer_id"`
	Status    string          `json:"status"`
	ImagePath string          `json:"image,omitempty"`
	Movements []StockMovement `json:"stock_movements,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type OrderItem struct {
	SKU       string  `json:"sku"`
	Name      string  `json:"name"`
	Qty       int     `json:"qty"`
	UnitPrice float64 `json:"unit_price"`
}

type Order struct {
	ID           string      `json:"_id"`
	OrderNumber  string      `json:"order_number"`
	DealerID     string      `json:"dealer_id"`
	CustomerName string      `json:"customer_name,omitempty"`
	Items        []OrderItem `json:"items,omitempty"`
	Total        float64     `json:"total"`
	Status       string      `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
}

type Pickup struct {
	ID          string    `json:"_id"`
	Order       OrderRef  `json:"order_id"`
	DealerID    string    `json:"dealer_id"`
	StaffID     string    `json:"staff_id,omitempty"`
	Status      string    `json:"status"`
	ScheduledAt time.Time `json:"scheduled_at,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type PickList struct {
	ID        string    `json:"_id"`
	Number    string    `json:"number"`
	StaffID   string    `json:"staff_id"`
	PickupIDs []string  `json:"pickup_ids"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type Ticket struct {
	ID          string    `json:"_id"`
	Subject     string    `json:"subject"`
	Description string    `json:"description,omitempty"`
	DealerID    string    `json:"dealer_id,omitempty"`
	AssignedTo  string    `json:"assigned_to,omitempty"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

type SLAViolation struct {
	ID         string    `json:"_id"`
	Order      OrderRef  `json:"order_id"`
	DealerID   string    `json:"dealer_id"`
	Stage      string    `json:"stage"`
	Minutes    int       `json:"violation_minutes"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Pincode struct {
	ID           string    `json:"_id"`
	Code         string    `json:"code"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	Serviceable  bool      `json:"serviceable"`
	CODAvailable bool      `json:"cod_available"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

type Settings struct {
	SupportEmail       string    `json:"support_email"`
	SupportPhone       string    `json:"support_phone"`
	PickupSLAMinutes   int       `json:"pickup_sla_minutes"`
	DeliverySLAMinutes int       `json:"delivery_sla_minutes"`
	MaintenanceMode    bool      `json:"maintenance_mode"`
	UpdatedAt          time.Time `json:"updated_at,omitempty"`
}

// Staff is the resolved form of a staff_id reference.
type Staff struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// DealerInfo is the resolved form of a dealer_id reference.
type DealerInfo struct {
	ID        string `json:"_id"`
	LegalName string `json:"legal_name"`
	City      string `json:"city,omitempty"`
}

// User is the authenticated dashboard user as reported by the upstream.
type User struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// SavedSearch is a stored search configuration, local to this dashboard.
type SavedSearch struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Screen    string    `json:"screen"`
	Search    string    `json:"search"`
	Filters   string    `json:"filters"`
	SortBy    string    `json:"sort_by"`
	SortOrder string    `json:"sort_order"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}
