package grants

import "campaign-grants/internal/domain/resources"

var (
	maxFields     = []resources.Field{resources.FieldMaxVitality, resources.FieldMaxTravel, resources.FieldMaxReserve}
	currentFields = []resources.Field{resources.FieldHealth, resources.FieldVitality, resources.FieldTravel, resources.FieldReserve, resources.FieldProgress}
)

// applyEffects descuenta cost de reserve y aplica v en orden: primero los
// máximos, después los currents acotados contra los máximos ya actualizados.
// El delta de reserve se suma sobre el valor ya descontado.
func applyEffects(st resources.State, cost int, v EffectVector) resources.State {
	next := st
	next.Reserve -= cost

	for _, f := range maxFields {
		if d := v.Delta(f); d != 0 {
			next = next.ApplyDelta(f, d, false)
		}
	}
	for _, f := range currentFields {
		if d := v.Delta(f); d != 0 {
			next = next.ApplyDelta(f, d, true)
		}
	}
	// Un máximo pudo bajar sin delta sobre su current.
	return next.Clamp()
}
