// Package receipt 生成订单PDF收据，右上角二维码内容为订单号
package receipt

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/xiebiao/tintayhojas/internal/domain/order"
)

const (
	qrSize    = 256 // 二维码像素
	qrImageMM = 35.0
)

// PDFRenderer 实现port.ReceiptRenderer
type PDFRenderer struct {
	shopName string
}

func NewPDFRenderer(shopName string) *PDFRenderer {
	return &PDFRenderer{shopName: shopName}
}

var statusLabels = map[order.Status]string{
	order.StatusPending: "Pendiente",
	order.StatusPaid:    "Pagado",
	order.StatusShipped: "Enviado",
}

// Render 生成A4单页收据
func (r *PDFRenderer) Render(o *order.Order) ([]byte, error) {
	qrPNG, err := qrcode.Encode(o.OrderNo, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("生成二维码失败: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	// 核心字体只支持cp1252，西语重音字符需要转换
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(120, 10, tr(r.shopName))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(120, 7, tr("Recibo de compra"))
	pdf.Ln(7)
	pdf.Cell(120, 7, tr("Pedido: "+o.OrderNo))
	pdf.Ln(7)
	pdf.Cell(120, 7, tr("Fecha: "+o.CreatedAt.Format("02/01/2006 15:04")))
	pdf.Ln(7)
	if o.Username != "" {
		pdf.Cell(120, 7, tr("Cliente: "+o.Username))
		pdf.Ln(7)
	}
	pdf.Cell(120, 7, tr("Dirección de envío: "+o.Address))
	pdf.Ln(7)
	pdf.Cell(120, 7, tr("Método de pago: "+o.PaymentMethod))
	pdf.Ln(7)
	pdf.Cell(120, 7, tr("Estado: "+statusLabel(o.Status)))
	pdf.Ln(12)

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 160, 12, qrImageMM, qrImageMM, false, opts, 0, "")

	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(95, 8, tr("Libro"), "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 8, tr("Cant."), "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 8, tr("Precio"), "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 8, tr("Importe"), "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, l := range o.Lines {
		pdf.CellFormat(95, 7, tr(truncate(l.BookTitle, 55)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", l.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 7, "$"+l.UnitPrice.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, "$"+l.Subtotal().StringFixed(2), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	total := func(label, amount string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Arial", style, 11)
		pdf.CellFormat(150, 7, tr(label), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, "$"+amount, "", 1, "R", false, 0, "")
	}
	total("Subtotal", o.Subtotal.StringFixed(2), false)
	total("IVA", o.Taxes.StringFixed(2), false)
	total("Total", o.Total.StringFixed(2), true)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("生成PDF失败: %w", err)
	}
	return buf.Bytes(), nil
}

func statusLabel(s order.Status) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return s.String()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
