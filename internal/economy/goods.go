// Package economy provides building definitions and the building factory.
package economy

// GoodAmount is a quantity of one good, used for building outputs and costs.
type GoodAmount struct {
	Good   int `json:"good"`
	Amount int `json:"amount"`
}

// TotalAmount sums the amounts of all entries for good.
func TotalAmount(goods []GoodAmount, good int) int {
	total := 0
	for _, g := range goods {
		if g.Good == good {
			total += g.Amount
		}
	}
	return total
}
