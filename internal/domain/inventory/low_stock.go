package inventory

// IsLowStock reporta si una cantidad (ya descontada) quedó por debajo del umbral de reorden.
// Función pura: debe evaluarse dentro de la misma transacción que escribió la cantidad.
func IsLowStock(quantity, reorderThreshold int) bool {
	return quantity < reorderThreshold
}

// SuggestedOrderQty cantidad sugerida para volver a 1.5x el umbral de reorden (redondeo hacia arriba).
func SuggestedOrderQty(quantity, reorderThreshold int) int {
	ideal := (reorderThreshold*3 + 1) / 2
	if quantity >= ideal {
		return 0
	}
	return ideal - quantity
}
