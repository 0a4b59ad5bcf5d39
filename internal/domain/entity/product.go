package entity

// Product es la referencia de catálogo que consume el libro diario (solo lectura).
// El catálogo (categorías, tamaños, precios) lo administra otro servicio.
type Product struct {
	ID       int64
	Code     string
	Name     string
	Category string
	IsActive bool
}
