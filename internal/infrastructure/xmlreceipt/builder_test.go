package xmlreceipt

import (
	"bytes"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/jhoicas/PuntoVenta-api/internal/application/sales"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSale() (*entity.Sale, []sales.SaleLineForReceipt) {
	at := time.Date(2026, 3, 1, 15, 4, 5, 0, time.UTC)
	l1 := entity.SaleLineItem{ID: "a", SaleNumber: 12, ProductCode: "001", Quantity: 2, UnitPriceAtSale: decimal.NewFromInt(2500), Timestamp: at, CashierID: "c1"}
	l2 := entity.SaleLineItem{ID: "b", SaleNumber: 12, ProductCode: "002", Quantity: 1, UnitPriceAtSale: decimal.RequireFromString("990.50"), Timestamp: at, CashierID: "c1"}
	sale := &entity.Sale{Number: 12, CashierID: "c1", Date: at, Lines: []*entity.SaleLineItem{&l1, &l2}}
	return sale, []sales.SaleLineForReceipt{
		{SaleLineItem: l1, ProductName: "Arroz & Cía"},
		{SaleLineItem: l2, ProductName: "Sal"},
	}
}

func TestBuildReceiptXML(t *testing.T) {
	sale, lines := sampleSale()
	out, err := NewBuilder().BuildReceiptXML(sales.StoreInfo{Name: "Tienda", TaxID: "900"}, sale, lines)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))
	venta := doc.Root().SelectElement("Venta")
	require.NotNil(t, venta)
	assert.Equal(t, "000012", venta.SelectAttrValue("numero", ""))
	assert.Equal(t, "2026-03-01T15:04:05Z", venta.SelectAttrValue("fecha", ""))
	assert.Len(t, venta.FindElements("Lineas/Linea"), 2)
	assert.Equal(t, "Arroz & Cía", venta.FindElement("Lineas/Linea[1]/Descripcion").Text())
	assert.Equal(t, "5990.50", venta.SelectElement("Total").Text())

	ok, err := Verify(out)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerify_DetectaAlteracion(t *testing.T) {
	sale, lines := sampleSale()
	out, err := NewBuilder().BuildReceiptXML(sales.StoreInfo{Name: "Tienda"}, sale, lines)
	require.NoError(t, err)

	tampered := bytes.Replace(out, []byte("5990.50"), []byte("1.00"), 1)
	ok, err := Verify(tampered)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = Verify([]byte("<otro/>"))
	assert.Error(t, err)
}
