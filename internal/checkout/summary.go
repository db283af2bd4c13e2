// Package checkout turns a cart into the order message handed off to WhatsApp.
package checkout

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"courtside/internal/cart"
)

// Translator resolves a dot-path UI key to text.
type Translator func(key string) string

var hundred = decimal.NewFromInt(100)

type Line struct {
	N         int             `json:"n"`
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Size      int             `json:"size"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

type Summary struct {
	Lines      []Line          `json:"lines"`
	TotalItems int             `json:"totalItems"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total"`
}

// Summarize computes the order totals for st. Tax is rounded to cents before it is added.
func Summarize(st cart.State, taxRate decimal.Decimal) Summary {
	items := st.Items()
	s := Summary{Lines: make([]Line, 0, len(items))}
	for i, li := range items {
		s.Lines = append(s.Lines, Line{
			N:         i + 1,
			ProductID: li.ProductID,
			Name:      li.Name,
			Category:  li.Category,
			Size:      li.Size,
			Quantity:  li.Quantity,
			UnitPrice: li.Price,
			LineTotal: li.LineTotal(),
		})
	}
	s.TotalItems = st.TotalItems()
	s.Subtotal = st.Subtotal()
	s.Tax = s.Subtotal.Mul(taxRate).Round(2)
	s.Total = s.Subtotal.Add(s.Tax)
	return s
}

// Money formats d as a dollar amount with two decimals.
func Money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// Message renders the order text. The same summary and translator always give the same text.
func (s Summary) Message(t Translator) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n\n", t("checkout.newOrder"))
	for _, l := range s.Lines {
		size := t("checkout.std")
		if l.Size != cart.NoSize {
			size = fmt.Sprint(l.Size)
		}
		fmt.Fprintf(&b, "%d. %s (%s)\n", l.N, l.Name, l.Category)
		fmt.Fprintf(&b, "   %s: %s | %s: %d\n", t("checkout.size"), size, t("checkout.qty"), l.Quantity)
		fmt.Fprintf(&b, "   %s: %s\n\n", t("checkout.price"), Money(l.UnitPrice))
	}
	fmt.Fprintf(&b, "*%s: %s* (%s)\n\n", t("checkout.total"), Money(s.Total), t("checkout.taxIncluded"))
	b.WriteString(t("checkout.confirm"))
	return b.String()
}

// BuyNowMessage is the single-product message sent from a product page.
func BuyNowMessage(t Translator, name string, qty int, lineTotal decimal.Decimal, link string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", t("checkout.buyNowIntro"))
	fmt.Fprintf(&b, "*%s*\n", name)
	fmt.Fprintf(&b, "%s: %d\n", t("checkout.qty"), qty)
	fmt.Fprintf(&b, "%s: %s\n\n", t("checkout.price"), Money(lineTotal))
	fmt.Fprintf(&b, "%s: %s", t("checkout.productLink"), link)
	return b.String()
}

// WhatsAppURL builds a wa.me deep link. Non-digits are stripped from phone.
func WhatsAppURL(phone, text string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	return "https://wa.me/" + digits + "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}
