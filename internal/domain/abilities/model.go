package abilities

import "time"

// Ability es una entrada del catálogo. BaseCost se descuenta de reserve en cada consumo de un grant.
type Ability struct {
	ID          string
	Name        string
	Description string
	BaseCost    int
	CreatedAt   time.Time
}
