// Package xmlreceipt construye la versión XML del comprobante de venta con una huella
// SHA-256 sobre la forma canónica (C14N) del nodo <Venta>, para detectar alteraciones.
package xmlreceipt

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/jhoicas/PuntoVenta-api/internal/application/sales"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/ucarion/c14n"
)

// Algoritmos declarados en <Huella>.
const (
	AlgC14N   = "http://www.w3.org/TR/2001/REC-xml-c14n-20010315"
	AlgSHA256 = "http://www.w3.org/2001/04/xmlenc#sha256"
)

// Builder implementa sales.ReceiptXMLBuilder.
type Builder struct{}

var _ sales.ReceiptXMLBuilder = (*Builder)(nil)

// NewBuilder crea el builder.
func NewBuilder() *Builder { return &Builder{} }

// BuildReceiptXML genera <Comprobante><Venta>…</Venta><Huella/></Comprobante>.
func (b *Builder) BuildReceiptXML(store sales.StoreInfo, sale *entity.Sale, lines []sales.SaleLineForReceipt) ([]byte, error) {
	if sale == nil {
		return nil, fmt.Errorf("xmlreceipt: venta nil")
	}
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("Comprobante")
	root.CreateAttr("version", "1.0")

	venta := root.CreateElement("Venta")
	venta.CreateAttr("numero", fmt.Sprintf("%06d", sale.Number))
	venta.CreateAttr("fecha", sale.Date.UTC().Format(time.RFC3339))
	venta.CreateAttr("cajero", sale.CashierID)

	emisor := venta.CreateElement("Emisor")
	emisor.CreateElement("Nombre").SetText(store.Name)
	emisor.CreateElement("NIT").SetText(store.TaxID)
	if store.Address != "" {
		emisor.CreateElement("Direccion").SetText(store.Address)
	}

	lineas := venta.CreateElement("Lineas")
	for i, l := range lines {
		el := lineas.CreateElement("Linea")
		el.CreateAttr("n", strconv.Itoa(i+1))
		el.CreateElement("Codigo").SetText(l.ProductCode)
		el.CreateElement("Descripcion").SetText(l.ProductName)
		el.CreateElement("Cantidad").SetText(strconv.Itoa(l.Quantity))
		el.CreateElement("PrecioUnitario").SetText(l.UnitPriceAtSale.StringFixed(2))
		el.CreateElement("Subtotal").SetText(l.Subtotal().StringFixed(2))
	}
	total := venta.CreateElement("Total")
	total.CreateAttr("moneda", "COP")
	total.SetText(sale.Total().StringFixed(2))

	digest, err := digestElement(venta)
	if err != nil {
		return nil, err
	}
	huella := root.CreateElement("Huella")
	huella.CreateAttr("c14n", AlgC14N)
	huella.CreateAttr("algoritmo", AlgSHA256)
	huella.SetText(digest)

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("xmlreceipt: serializar: %w", err)
	}
	return out, nil
}

// Verify recalcula la huella de <Venta> y la compara con <Huella>.
func Verify(xmlBytes []byte) (bool, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xmlBytes); err != nil {
		return false, fmt.Errorf("xmlreceipt: parsear XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return false, fmt.Errorf("xmlreceipt: documento sin raíz")
	}
	venta := root.SelectElement("Venta")
	huella := root.SelectElement("Huella")
	if venta == nil || huella == nil {
		return false, fmt.Errorf("xmlreceipt: faltan Venta o Huella")
	}
	digest, err := digestElement(venta)
	if err != nil {
		return false, err
	}
	return digest == huella.Text(), nil
}

// digestElement serializa el elemento solo, lo canonicaliza y devuelve SHA-256 en base64.
func digestElement(el *etree.Element) (string, error) {
	cp := el.Copy()
	stripIndent(cp)
	sub := etree.NewDocument()
	sub.SetRoot(cp)
	raw, err := sub.WriteToBytes()
	if err != nil {
		return "", fmt.Errorf("xmlreceipt: serializar nodo: %w", err)
	}
	dec := xml.NewDecoder(bytes.NewReader(raw))
	dec.Entity = map[string]string{}
	canonical, err := c14n.Canonicalize(dec)
	if err != nil {
		return "", fmt.Errorf("xmlreceipt: canonicalizar: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return base64.StdEncoding.EncodeToString(sum[:]), nil
}

// stripIndent quita los nodos de texto solo-espacios entre elementos (la indentación).
func stripIndent(el *etree.Element) {
	hasElements := len(el.ChildElements()) > 0
	var drop []etree.Token
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			if hasElements && strings.TrimSpace(t.Data) == "" {
				drop = append(drop, t)
			}
		case *etree.Element:
			stripIndent(t)
		}
	}
	for _, tok := range drop {
		el.RemoveChild(tok)
	}
}
