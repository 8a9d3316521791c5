package catalog

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

const (
	CompatibilityPerfect    = "perfect"
	CompatibilityGood       = "good"
	CompatibilityCompatible = "compatible"

	maxRecommendations = 10
	minRecommendations = 3
	driveHPTolerance   = 5
)

type Recommendation struct {
	Product       Product  `json:"product"`
	Reason        string   `json:"reason"`
	Savings       *float64 `json:"savings,omitempty"`
	Compatibility string   `json:"compatibility"`
}

type RecommendationRequest struct {
	Motors     float64 `json:"motors"`
	HPPerMotor float64 `json:"hpPerMotor"`
}

// EstimatedAmps approximates motor full-load current at 480 V.
func EstimatedAmps(hp float64) float64 { return math.Ceil(hp * 1.5) }

// Recommendations assembles a retrofit package for the motor: drives sized to
// the motor, motor protection and line reactors sized to its current, padded
// with generic drive products when fewer than three were found.
func (c *Catalog) Recommendations(ctx context.Context, req RecommendationRequest) []Recommendation {
	hp := req.HPPerMotor
	hpText := strconv.FormatFloat(hp, 'f', -1, 64)
	amps := EstimatedAmps(hp)
	ampsText := strconv.FormatFloat(amps, 'f', -1, 64)

	var recs []Recommendation

	drives := c.drivesFor(ctx, hp, "PowerFlex "+hpText+"HP")
	if len(drives) == 0 {
		drives = c.drivesFor(ctx, hp, "PowerFlex 525 753 755 variador drive")
	}
	for _, p := range drives {
		compat := CompatibilityGood
		if productHP(p) == hp {
			compat = CompatibilityPerfect
		}
		savings := hp * 746 * 0.3 * 2500 * 0.1
		recs = append(recs, Recommendation{
			Product:       p,
			Reason:        fmt.Sprintf("Variador PowerFlex para %s motor(es) de %sHP - Ahorro energético del 30%%", strconv.FormatFloat(req.Motors, 'f', -1, 64), hpText),
			Savings:       &savings,
			Compatibility: compat,
		})
	}

	protection := c.Search(ctx, "guardamotor "+ampsText+"A 140M", 2).Products
	if len(protection) == 0 {
		protection = filterProducts(c.Search(ctx, "guardamotor motor protection circuit breaker 140M", 5).Products, 2, func(p Product) bool {
			a := productAmps(p)
			return a > 0 && a >= amps*0.8 && a <= amps*1.5
		})
	}
	for _, p := range protection {
		recs = append(recs, Recommendation{
			Product:       p,
			Reason:        "Guardamotor para protección integral - Reduce paros no programados",
			Compatibility: CompatibilityPerfect,
		})
	}

	reactors := c.Search(ctx, "reactor línea line 1321 "+ampsText+"A", 2).Products
	if len(reactors) == 0 {
		reactors = filterProducts(c.Search(ctx, "reactor 1321 line impedance harmonic", 5).Products, 2, func(p Product) bool {
			a := productAmps(p)
			return a > 0 && a >= amps
		})
	}
	for _, p := range reactors {
		recs = append(recs, Recommendation{
			Product:       p,
			Reason:        "Reactor de línea - Mejora calidad de energía y prolonga vida del equipo",
			Compatibility: CompatibilityGood,
		})
	}

	if len(recs) < minRecommendations {
		generic := c.Search(ctx, "Allen Bradley Rockwell automation drive motor control", 5).Products
		for _, p := range generic {
			if !isDriveProduct(p) {
				continue
			}
			recs = append(recs, Recommendation{
				Product:       p,
				Reason:        "Producto complementario para sistema de ahorro energético",
				Compatibility: CompatibilityCompatible,
			})
		}
	}

	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	if recs == nil {
		recs = []Recommendation{}
	}
	return recs
}

// drivesFor returns up to three drives within driveHPTolerance of hp, exact
// ratings first.
func (c *Catalog) drivesFor(ctx context.Context, hp float64, query string) []Product {
	found := c.Search(ctx, query, 10).Products
	drives := filterProducts(found, len(found), func(p Product) bool {
		php := productHP(p)
		return php > 0 && math.Abs(php-hp) <= driveHPTolerance
	})
	sort.SliceStable(drives, func(i, j int) bool {
		return productHP(drives[i]) == hp && productHP(drives[j]) != hp
	})
	if len(drives) > 3 {
		drives = drives[:3]
	}
	return drives
}

func productHP(p Product) float64   { return extractHP(p.Name + " " + p.Description) }
func productAmps(p Product) float64 { return extractAmps(p.Name + " " + p.Description) }

func isDriveProduct(p Product) bool {
	category := strings.ToLower(p.Category)
	name := strings.ToLower(p.Name)
	return strings.Contains(category, "variador") || strings.Contains(category, "power") ||
		strings.Contains(name, "powerflex") || strings.Contains(name, "drive")
}

func filterProducts(products []Product, max int, keep func(Product) bool) []Product {
	var out []Product
	for _, p := range products {
		if len(out) == max {
			break
		}
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

type PackageItem struct {
	SKU   string  `json:"sku"`
	Price float64 `json:"price"`
	Name  string  `json:"name"`
}

type PackagePrice struct {
	Total    float64       `json:"total"`
	Items    []PackageItem `json:"items"`
	Currency string        `json:"currency"`
}

// PackagePrice sums the prices of the SKUs that exist. Unknown SKUs are
// skipped.
func (c *Catalog) PackagePrice(ctx context.Context, skus []string) PackagePrice {
	out := PackagePrice{Items: []PackageItem{}, Currency: currencyUSD}
	for _, sku := range skus {
		p, ok := c.ProductBySKU(ctx, sku)
		if !ok {
			continue
		}
		out.Items = append(out.Items, PackageItem{SKU: p.SKU, Price: p.Price, Name: p.Name})
		out.Total += p.Price
	}
	return out
}
