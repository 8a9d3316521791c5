package catalog

import (
	"math"
	"sort"
	"strings"
)

const (
	categoryDrives     = "Drives"
	mockLimit          = 5
	mockHPTolerance    = 2
	mockProcessingTime = 10
)

func demoProduct(sku, name, desc, category string, price float64, inventory int, specs map[string]string) Product {
	return Product{
		ID:             sku,
		SKU:            sku,
		Name:           name,
		Description:    desc,
		Category:       category,
		Price:          price,
		Currency:       currencyUSD,
		Inventory:      inventory,
		InStock:        true,
		Manufacturer:   "Allen-Bradley",
		Published:      true,
		Specifications: specs,
	}
}

func driveSpecs(power, current string) map[string]string {
	return map[string]string{"power": power, "voltage": "380-480V AC", "current": current, "frequency": "0-400 Hz"}
}

// demoCatalog returns a fresh copy of the offline catalog.
func demoCatalog() []Product {
	return []Product{
		demoProduct("25B-D4P0N104", "PowerFlex 525 AC Drive", "Variador de frecuencia 2HP, 480V, IP20", categoryDrives, 850, 15, driveSpecs("2 HP / 1.5 kW", "4.0 A")),
		demoProduct("25B-D6P0N104", "PowerFlex 525 AC Drive", "Variador de frecuencia 3HP, 480V, IP20", categoryDrives, 1150, 8, driveSpecs("3 HP / 2.2 kW", "6.0 A")),
		demoProduct("25B-D010N104", "PowerFlex 525 AC Drive", "Variador de frecuencia 5HP, 480V, IP20", categoryDrives, 1580, 12, driveSpecs("5 HP / 4 kW", "10.5 A")),
		demoProduct("25B-D013N104", "PowerFlex 525 AC Drive", "Variador de frecuencia 7.5HP, 480V, IP20", categoryDrives, 2100, 5, driveSpecs("7.5 HP / 5.5 kW", "13 A")),
		demoProduct("25B-D017N104", "PowerFlex 525 AC Drive", "Variador de frecuencia 10HP, 480V, IP20", categoryDrives, 2400, 10, driveSpecs("10 HP / 7.5 kW", "17 A")),
		demoProduct("140M-C2E-B10", "Motor Protection Circuit Breaker", "Guardamotor 6.3-10A, 480V", "Protection", 385, 25,
			map[string]string{"currentRange": "6.3-10 A", "voltage": "480V AC", "breakingCapacity": "100 kA"}),
		demoProduct("1321-3R8-B", "Line Reactor", "Reactor de línea 8A, 3%, 480V", "Power Quality", 295, 18,
			map[string]string{"current": "8 A", "impedance": "3%", "voltage": "480V AC"}),
		demoProduct("1321-3R12-B", "Line Reactor", "Reactor de línea 12A, 3%, 480V", "Power Quality", 345, 15,
			map[string]string{"current": "12 A", "impedance": "3%", "voltage": "480V AC"}),
	}
}

// mockSearch filters the demo catalog. A drive matches when the query names
// a horsepower within mockHPTolerance of its rating; any product matches when
// one query word occurs in its text. HP matches come first, closest first.
func mockSearch(query string, limit int) SearchResult {
	requestedHP := extractHP(query)
	keywords := strings.Fields(strings.ToLower(query))

	var byHP, byKeyword []Product
	for _, p := range demoCatalog() {
		if requestedHP > 0 && p.Category == categoryDrives &&
			math.Abs(extractHP(p.Specifications["power"])-requestedHP) <= mockHPTolerance {
			byHP = append(byHP, p)
			continue
		}
		if matchesAny(p, keywords) {
			byKeyword = append(byKeyword, p)
		}
	}
	sortByHPDistance(byHP, requestedHP)
	matched := append(byHP, byKeyword...)

	if limit <= 0 || limit > mockLimit {
		limit = mockLimit
	}
	products := matched
	if len(products) > limit {
		products = products[:limit]
	}
	if products == nil {
		products = []Product{}
	}
	return SearchResult{
		Products:       products,
		TotalHits:      len(matched),
		ProcessingTime: mockProcessingTime,
		Query:          query,
	}
}

func matchesAny(p Product, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	text := strings.ToLower(strings.Join([]string{p.Name, p.Description, p.Category, p.SKU, p.Manufacturer}, " "))
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func sortByHPDistance(products []Product, hp float64) {
	dist := func(p Product) float64 { return math.Abs(extractHP(p.Specifications["power"]) - hp) }
	sort.SliceStable(products, func(i, j int) bool { return dist(products[i]) < dist(products[j]) })
}

func mockProductBySKU(sku string) (Product, bool) {
	for _, p := range demoCatalog() {
		if p.SKU == sku {
			return p, true
		}
	}
	return Product{}, false
}
