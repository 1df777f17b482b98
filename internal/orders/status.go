package orders

type Status string

const (
	StatusPlaced    Status = "PLACED"
	StatusConfirmed Status = "CONFIRMED"
	StatusRejected  Status = "REJECTED"
)

var validNext = map[Status]map[Status]bool{
	StatusPlaced:    {StatusConfirmed: true, StatusRejected: true},
	StatusConfirmed: {},
	StatusRejected:  {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
