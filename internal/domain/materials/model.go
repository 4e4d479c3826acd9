package materials

// Material сырьё на складе. Quantity может быть отрицательной: это сигнал нехватки, а не ошибка.
type Material struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"` // цена за единицу
}

// Value стоимость остатка.
func (m Material) Value() float64 { return m.Quantity * m.UnitPrice }

type Field string

const (
	FieldName      Field = "name"
	FieldQuantity  Field = "quantity"
	FieldUnitPrice Field = "unitPrice"
)
