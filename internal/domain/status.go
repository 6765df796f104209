package domain

// OrderStatus is the fulfillment state of an order. On the wire and in the
// database it is the boolean "delivered" flag.
type OrderStatus int

const (
	StatusPlaced OrderStatus = iota
	StatusDelivered
)

// OrderStatusFromBool maps the wire representation onto the enum
func OrderStatusFromBool(delivered bool) OrderStatus {
	if delivered {
		return StatusDelivered
	}
	return StatusPlaced
}

// Bool returns the wire representation
func (s OrderStatus) Bool() bool {
	return s == StatusDelivered
}

func (s OrderStatus) String() string {
	if s == StatusDelivered {
		return "delivered"
	}
	return "placed"
}

// OrderEventType names the order lifecycle events published to the broker
type OrderEventType string

const (
	EventOrderPlaced    OrderEventType = "order.placed"
	EventOrderAssigned  OrderEventType = "order.assigned"
	EventOrderDelivered OrderEventType = "order.delivered"
)
