package entity

import "github.com/shopspring/decimal"

// Estados de un pallet dentro de la sesión (statusSummary). El servicio remoto
// puede devolver otros estados propios; estos son los que el verificador asigna.
const (
	StatusMixto          = "Mixto"
	StatusNoEncontrado   = "No Encontrado"
	StatusErrorServidor  = "Error Servidor"
	StatusErrorConexion  = "Error Conexión"
	StatusEditado        = "Editado"
	StatusAgregadoManual = "Agregado Manual"
)

// ProductLine es la línea de un producto dentro de un pallet: los campos de
// sistema llegan del servicio remoto con las etiquetas de la hoja maestra (no
// se renombran en el wire), y cantidadContada la ingresa el operador.
// El código de artículo es la llave natural al fusionar re-escaneos.
type ProductLine struct {
	CodigoArticulo   string           `json:"Código de artículo"`
	NombreProducto   string           `json:"Nombre del producto"`
	InventarioFisico Cantidad         `json:"Inventario físico"`
	FisicaDisponible Cantidad         `json:"Física disponible"`
	Almacen          string           `json:"Almacén"`
	NumeroSerie      string           `json:"Número de serie,omitempty"`
	CantidadContada  *decimal.Decimal `json:"cantidadContada,omitempty"` // nil = aún sin contar; nunca cero implícito
}

// Clone copia la línea, incluida la cantidad contada si existe.
func (p ProductLine) Clone() ProductLine {
	c := p
	if p.CantidadContada != nil {
		v := *p.CantidadContada
		c.CantidadContada = &v
	}
	return c
}

// PalletRecord es el estado de verificación de un pallet dentro de la sesión.
type PalletRecord struct {
	ID               string        `json:"id"`
	Found            bool          `json:"found"`
	StatusSummary    string        `json:"statusSummary"`
	Products         []ProductLine `json:"products"`
	IsManuallyAdded  bool          `json:"isManuallyAdded,omitempty"`
	IsManuallyEdited bool          `json:"isManuallyEdited,omitempty"`
}

// Clone copia profunda del registro.
func (r PalletRecord) Clone() PalletRecord {
	c := r
	c.Products = make([]ProductLine, len(r.Products))
	for i, p := range r.Products {
		c.Products[i] = p.Clone()
	}
	return c
}

// CountedProducts devuelve cuántos productos del pallet ya tienen cantidad contada.
func (r PalletRecord) CountedProducts() int {
	n := 0
	for _, p := range r.Products {
		if p.CantidadContada != nil {
			n++
		}
	}
	return n
}
