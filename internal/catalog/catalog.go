// Package catalog searches the retrofit product catalog (drives, motor
// protection, line reactors) in Meilisearch. Without a configured index, or
// when the index fails, it answers from a small built-in demo catalog.
package catalog

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

const (
	defaultLimit = 20
	currencyUSD  = "USD"
)

type Product struct {
	ID             string            `json:"id"`
	SKU            string            `json:"sku"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Category       string            `json:"category"`
	Price          float64           `json:"price"`
	Currency       string            `json:"currency"`
	Inventory      int               `json:"inventory"`
	InStock        bool              `json:"inStock"`
	Manufacturer   string            `json:"manufacturer"`
	Published      bool              `json:"publishedWebsite"`
	StoreURL       string            `json:"storeUrl,omitempty"`
	Specifications map[string]string `json:"specifications,omitempty"`
}

type SearchResult struct {
	Products       []Product `json:"products"`
	TotalHits      int       `json:"totalHits"`
	ProcessingTime int       `json:"processingTime"`
	Query          string    `json:"query"`
}

type Config struct {
	Host    string
	APIKey  string
	Index   string
	Timeout time.Duration
}

type Catalog struct {
	rest  *resty.Client
	index string
}

// New returns a catalog backed by Meilisearch when host and key are set.
func New(cfg Config) *Catalog {
	c := &Catalog{index: cfg.Index}
	if c.index == "" {
		c.index = "products"
	}
	if cfg.Host == "" || cfg.APIKey == "" {
		return c
	}
	c.rest = resty.New().
		SetBaseURL(strings.TrimRight(cfg.Host, "/")).
		SetAuthToken(cfg.APIKey).
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)
	if cfg.Timeout > 0 {
		c.rest.SetTimeout(cfg.Timeout)
	}
	return c
}

func (c *Catalog) Online() bool { return c.rest != nil }

// price reads sale_price_usd, stored as a string or a number. Anything
// unparsable is 0.
type price float64

func (p *price) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		*p = 0
		return nil
	}
	*p = price(v)
	return nil
}

// hit is a Meilisearch document of the products index.
type hit struct {
	IDItem             int64    `json:"id_item"`
	ItemProveedor      string   `json:"item_proveedor"`
	Nombre             string   `json:"nombre"`
	Descripcion        string   `json:"descripcion"`
	Marca              string   `json:"marca"`
	PublicadoWebsite   bool     `json:"publicado_website"`
	ItemsAbsa          string   `json:"items_absa"`
	WebsiteDescription string   `json:"website_description"`
	MarcaTematica      string   `json:"marca_tematica"`
	CategoriasWebsite  []string `json:"categorias_website"`
	Guadalajara        float64  `json:"guadalajara"`
	Leon               float64  `json:"leon"`
	Chihuahua          float64  `json:"chihuahua"`
	Hermosillo         float64  `json:"hermosillo"`
	Juarez             float64  `json:"juarez"`
	SalePriceUSD       price    `json:"sale_price_usd"`
	URLAol             string   `json:"url_aol"`
}

type searchRequest struct {
	Q                     string   `json:"q"`
	Limit                 int      `json:"limit"`
	Filter                []string `json:"filter,omitempty"`
	AttributesToHighlight []string `json:"attributesToHighlight,omitempty"`
}

type searchResponse struct {
	Hits               []hit  `json:"hits"`
	EstimatedTotalHits int    `json:"estimatedTotalHits"`
	ProcessingTimeMs   int    `json:"processingTimeMs"`
	Query              string `json:"query"`
}

// Search runs query against the index. It never fails: upstream errors fall
// back to the demo catalog.
func (c *Catalog) Search(ctx context.Context, query string, limit int) SearchResult {
	if limit <= 0 {
		limit = defaultLimit
	}
	if !c.Online() {
		return mockSearch(query, limit)
	}
	res, err := c.search(ctx, searchRequest{
		Q:                     enhanceQuery(query),
		Limit:                 limit,
		AttributesToHighlight: []string{"nombre", "descripcion"},
	})
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("product search failed; using demo catalog")
		return mockSearch(query, limit)
	}

	products := make([]Product, len(res.Hits))
	for i, h := range res.Hits {
		products[i] = mapHit(h)
	}
	rank(products)

	out := SearchResult{
		Products:       products,
		TotalHits:      res.EstimatedTotalHits,
		ProcessingTime: res.ProcessingTimeMs,
		Query:          res.Query,
	}
	if out.Query == "" {
		out.Query = query
	}
	return out
}

// ProductBySKU looks a product up by supplier or internal item code.
func (c *Catalog) ProductBySKU(ctx context.Context, sku string) (Product, bool) {
	if !c.Online() {
		return mockProductBySKU(sku)
	}
	quoted := strconv.Quote(sku)
	res, err := c.search(ctx, searchRequest{
		Q:      sku,
		Limit:  1,
		Filter: []string{fmt.Sprintf("item_proveedor = %s OR items_absa = %s", quoted, quoted)},
	})
	if err != nil {
		log.Warn().Err(err).Str("sku", sku).Msg("product lookup failed; using demo catalog")
		return mockProductBySKU(sku)
	}
	if len(res.Hits) == 0 {
		return Product{}, false
	}
	return mapHit(res.Hits[0]), true
}

func (c *Catalog) search(ctx context.Context, req searchRequest) (searchResponse, error) {
	var out searchResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/indexes/" + c.index + "/search")
	if err != nil {
		return searchResponse{}, fmt.Errorf("meilisearch request: %w", err)
	}
	if resp.IsError() {
		return searchResponse{}, fmt.Errorf("meilisearch request: status %d", resp.StatusCode())
	}
	return out, nil
}

// enhanceQuery appends model and series terms to generic product words.
func enhanceQuery(query string) string {
	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "drive") || strings.Contains(q, "variador"):
		return query + " PowerFlex Allen Bradley 525 753 755"
	case strings.Contains(q, "guardamotor"):
		return query + " 140M protection circuit breaker"
	case strings.Contains(q, "reactor"):
		return query + " 1321 line impedance harmonic"
	}
	return query
}

var (
	hpRe        = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*HP`)
	ampsRe      = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*A(?:MP|MPER)?`)
	voltsSpecRe = regexp.MustCompile(`(\d+)\s*V(?:AC|DC)?`)
	ampsSpecRe  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*A(?:MP)?`)
)

// extractHP returns the first horsepower rating in text, or 0.
func extractHP(text string) float64 { return firstNumber(hpRe, text) }

// extractAmps returns the first current rating in text, or 0.
func extractAmps(text string) float64 { return firstNumber(ampsRe, text) }

func firstNumber(re *regexp.Regexp, text string) float64 {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return v
}

func mapHit(h hit) Product {
	inventory := int(h.Guadalajara + h.Leon + h.Chihuahua + h.Hermosillo + h.Juarez)

	text := strings.ToUpper(h.Nombre + " " + h.Descripcion)
	specs := map[string]string{}
	if m := hpRe.FindStringSubmatch(text); m != nil {
		specs["power"] = m[1] + " HP"
	}
	if m := voltsSpecRe.FindStringSubmatch(text); m != nil {
		specs["voltage"] = m[1] + "V AC"
	}
	if m := ampsSpecRe.FindStringSubmatch(text); m != nil {
		specs["current"] = m[1] + " A"
	}
	if len(specs) == 0 {
		specs = nil
	}

	id := strconv.FormatInt(h.IDItem, 10)
	p := Product{
		ID:             id,
		SKU:            firstNonEmpty(h.ItemProveedor, h.ItemsAbsa, id),
		Name:           firstNonEmpty(h.Nombre, "Producto sin nombre"),
		Description:    firstNonEmpty(h.Descripcion, h.WebsiteDescription),
		Category:       "General",
		Currency:       currencyUSD,
		Inventory:      inventory,
		InStock:        inventory > 0 || h.PublicadoWebsite,
		Manufacturer:   firstNonEmpty(h.Marca, h.MarcaTematica, "Rockwell Automation"),
		Published:      h.PublicadoWebsite,
		StoreURL:       h.URLAol,
		Specifications: specs,
	}
	if len(h.CategoriasWebsite) > 0 && h.CategoriasWebsite[0] != "" {
		p.Category = h.CategoriasWebsite[0]
	}
	p.Price = float64(h.SalePriceUSD)
	return p
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// rank orders products by, in turn: has a price, published on the website,
// has a store link, has stock. Ties keep the search engine's order.
func rank(products []Product) {
	score := func(p Product) [4]bool {
		return [4]bool{p.Price > 0, p.Published, p.StoreURL != "", p.Inventory > 0}
	}
	sort.SliceStable(products, func(i, j int) bool {
		a, b := score(products[i]), score(products[j])
		for k := range a {
			if a[k] != b[k] {
				return a[k]
			}
		}
		return false
	})
}
