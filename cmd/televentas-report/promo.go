package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"televentas-insights/insights"
)

// Discount band the promo copy assumes; out-of-range values are clamped, not
// rejected.
const (
	minDiscount = 5
	maxDiscount = 50
)

var promoTemplate = template.Must(template.New("promo").Parse(
	"¡Tenemos una oferta especial para usted!\n" +
		"{{.Discount}}% DE DESCUENTO en {{.Product}}\n" +
		"Solo hasta el {{.Until}}\n" +
		"Responda a este mensaje con 'SI' para apartar su pedido\n" +
		"Oferta incluye entrega gratuita*\n" +
		"\n" +
		"*Válido para pedidos mayores a RD$2,000. Aplican términos y condiciones.\n"))

func clampDiscount(discount int) int {
	if discount < minDiscount {
		return minDiscount
	}
	if discount > maxDiscount {
		return maxDiscount
	}
	return discount
}

func promoText(product string, discount int, until time.Time) (string, error) {
	product = strings.TrimSpace(product)
	if product == "" {
		return "", errors.New("promo product is required")
	}
	var buf bytes.Buffer
	err := promoTemplate.Execute(&buf, struct {
		Product  string
		Discount int
		Until    string
	}{
		Product:  product,
		Discount: clampDiscount(discount),
		Until:    until.Format("02/01/2006"),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// salesScript picks an opening line for the call by segment, the way the
// sales guide frames it: cross-sell actives, reactivate diminished, win back
// inactives.
func salesScript(profile insights.CustomerProfile, rec *insights.Recommendation) string {
	name := firstName(profile.Name)
	product := pitchProduct(rec)

	switch profile.Segment {
	case insights.SegmentDiminished:
		return fmt.Sprintf("Don/Dña %s, ¡cuánto tiempo sin atenderle! Tenemos una oferta especial en %s solo este mes, con un 10%% de descuento para que vuelva a disfrutar de nuestros productos.", name, product)
	case insights.SegmentInactive:
		return fmt.Sprintf("Don/Dña %s, nos hacía falta su visita. Le ofrecemos un 15%% de descuento más entrega gratuita en su próxima compra; tenemos disponibilidad de %s.", name, product)
	default:
		return fmt.Sprintf("Don/Dña %s, siempre es un placer atenderle. %s está teniendo mucha aceptación; ¿le interesaría probarlo con un 5%% de descuento por ser cliente preferencial?", name, product)
	}
}

func contactCadence(recency int) string {
	if recency < 15 {
		return "every 2 weeks (very active customer)"
	}
	if recency < 30 {
		return "weekly (keep engagement)"
	}
	return "2-3 times per week (urgent win-back)"
}

func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "cliente"
	}
	return fields[0]
}

func pitchProduct(rec *insights.Recommendation) string {
	if rec != nil && len(rec.Recommended) > 0 {
		return rec.Recommended[0].Product
	}
	if rec != nil && len(rec.FrequentlyBought) > 0 {
		return rec.FrequentlyBought[0].Product
	}
	return "nuestros productos"
}
