package orders

const (
	TopicOrderPlaced      = "rental.order.placed"
	TopicBookingConfirmed = "rental.booking.confirmed"
	TopicBookingRejected  = "rental.booking.rejected"
)

// Partition key = order_id, so every event of one order keeps its order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
