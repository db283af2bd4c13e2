package validate

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"courtside/internal/domain"
)

var (
	reQ      = regexp.MustCompile(`^[\p{L}\p{N} _'&./-]{1,50}$`)
	reSort   = regexp.MustCompile(`^[a-z_: ]{1,24}$`)
	maxPrice = decimal.NewFromInt(1_000_000)
)

// Q validates a search query: trims, truncates to 50 runes, enforces allowed characters.
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if r := []rune(s); len(r) > 50 {
		s = string(r[:50])
	}
	return s, reQ.MatchString(s)
}

// Qty parses a quantity, clamping to 1..50.
func Qty(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	if n > 50 {
		return 50
	} // clamp to avoid abuse
	return n
}

// ProductID parses a positive product id.
func ProductID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return id, err == nil && id > 0
}

// Size parses a ball size; empty means no size.
func Size(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	return n, err == nil && n >= 0 && n <= 99
}

// Sizes parses repeated or comma-separated size values, dropping invalid ones.
func Sizes(values []string) []int {
	var out []int
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if n, ok := Size(part); ok && n > 0 && !slices.Contains(out, n) {
				out = append(out, n)
			}
		}
	}
	return out
}

// CourtTypes keeps the known court types among values.
func CourtTypes(values []string, known []string) []string {
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if slices.Contains(known, v) && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

// Price parses a non-negative price bound; empty is "unbounded".
func Price(s string) (*decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() || d.GreaterThan(maxPrice) {
		return nil, false
	}
	return &d, true
}

// Sort accepts a sort mode name or storefront label.
func Sort(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	return s, s == "" || reSort.MatchString(s)
}

// Product checks an admin product payload and returns every problem found.
func Product(p domain.Product, courtTypes []string) error {
	var errs []error
	name := strings.TrimSpace(p.Name)
	if name == "" || len([]rune(name)) > 120 {
		errs = append(errs, errors.New("name: required, at most 120 characters"))
	}
	if strings.TrimSpace(p.Category) == "" {
		errs = append(errs, errors.New("category: required"))
	}
	if len(p.Sizes) == 0 {
		errs = append(errs, errors.New("sizes: at least one size required"))
	}
	for _, s := range p.Sizes {
		if s <= 0 || s > 99 {
			errs = append(errs, fmt.Errorf("sizes: %d out of range", s))
		}
	}
	if p.CourtType != "" && !slices.Contains(courtTypes, p.CourtType) {
		errs = append(errs, fmt.Errorf("courtType: %q unknown", p.CourtType))
	}
	if p.Price.IsNegative() || p.Price.GreaterThan(maxPrice) {
		errs = append(errs, errors.New("price: must be between 0 and 1000000"))
	}
	if p.OriginalPrice != nil && p.OriginalPrice.IsNegative() {
		errs = append(errs, errors.New("originalPrice: must not be negative"))
	}
	if p.Rating < 0 || p.Rating > 5 {
		errs = append(errs, errors.New("rating: must be between 0 and 5"))
	}
	if p.CreatedAt != "" {
		if _, ok := domain.ParseCreatedAt(p.CreatedAt); !ok {
			errs = append(errs, errors.New("createdAt: not an ISO 8601 timestamp"))
		}
	}
	if p.Image != "" && !mediaURL(p.Image) {
		errs = append(errs, errors.New("image: must be an /uploads path or http(s) URL"))
	}
	for _, m := range p.Media {
		if (m.Type != domain.MediaImage && m.Type != domain.MediaVideo) || !mediaURL(m.URL) {
			errs = append(errs, fmt.Errorf("media: invalid entry %q", m.URL))
		}
	}
	return errors.Join(errs...)
}

func mediaURL(s string) bool {
	if strings.HasPrefix(s, "/") && !strings.Contains(s, "..") {
		return true
	}
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
