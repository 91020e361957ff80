package domain

import "time"

// Order is the immutable record produced at the moment of confirmation.
// Nothing mutates an Order after the assembler returns it; the invoice
// renderer is a pure function of this struct.
type Order struct {
	ID            string    `json:"id"`
	CustomerID    string    `json:"customer_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	DeliveryZone  string    `json:"delivery_zone"`
	EtaLabel      string    `json:"eta_label"`
	ItemName      string    `json:"item_name"`
	ItemCategory  Category  `json:"item_category"`
	ItemCapacity  int       `json:"item_capacity"`
	ItemPrice     int       `json:"item_price"`
	CreatedAt     time.Time `json:"created_at"`
}
