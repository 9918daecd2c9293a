package reply

import (
	"regexp"
	"strconv"
	"strings"

	"booking-dialogue/internal/dialogue/textnorm"
	"booking-dialogue/internal/models"
)

const (
	staticCategoryList = "**Elérhető kategóriák**\n\n• Economy\n• Compact\n• Mid-size\n• SUV\n\nVálassz kategóriát (pl. **Economy**)."
	maxExampleModels   = 3
)

// ListCarCategories lists the catalog's categories in display order with
// daily price and vehicle count. Without category prices it returns a static list.
func ListCarCategories(pricing *models.PricingCatalog, inv models.Inventory) string {
	if !pricing.HasCategories() {
		return staticCategoryList
	}

	lines := []string{"**Elérhető kategóriák**", ""}
	for _, c := range models.Categories {
		price, ok := pricing.BasePrice(c)
		if !ok {
			continue
		}
		lines = append(lines, "• **"+categoryLabel(c)+"** — "+formatDaily(price)+" ("+strconv.Itoa(inv.Count(c))+" autó)")
	}
	lines = append(lines, "", "Válassz kategóriát (pl. **Economy**), vagy kérj ajánlást.")
	return strings.Join(lines, "\n")
}

// ListCategoryModels returns up to three "brand model" examples for c,
// with an ellipsis when the category has more.
func ListCategoryModels(c models.Category, inv models.Inventory) (string, bool) {
	vehicles := inv[c]
	if len(vehicles) == 0 {
		return "", false
	}

	n := len(vehicles)
	if n > maxExampleModels {
		n = maxExampleModels
	}
	names := make([]string, n)
	for i := 0; i < n; i++ {
		names[i] = vehicles[i].Brand + " " + vehicles[i].Model
	}

	out := strings.Join(names, ", ")
	if len(vehicles) > maxExampleModels {
		out += "…"
	}
	return out, true
}

type hintRule struct {
	category models.Category
	re       *regexp.Regexp
}

// hintRules run on normalized hints, first match wins.
var hintRules = []hintRule{
	{models.CategorySUV, regexp.MustCompile(`csalad|gyerek|csomag|\bter\b|kombi|kirandul|hegy|terep`)},
	{models.CategoryMidSize, regexp.MustCompile(`hosszu|autopalya|kenyel|premium|uzleti`)},
	{models.CategoryCompact, regexp.MustCompile(`kozep|biztonsag|kenyelmes`)},
	{models.CategoryEconomy, regexp.MustCompile(`olcs|varos|parkol|takarek`)},
}

var reasons = map[models.Category]string{
	models.CategoryEconomy: "Városba, alacsony fogyasztás, könnyű parkolás.",
	models.CategoryCompact: "Kiegyensúlyozott méret, kényelmes utazás 4–5 főnek.",
	models.CategoryMidSize: "Hosszú utakra kényelmes, prémium érzet, erősebb motor.",
	models.CategorySUV:     "Magas ülés, nagy csomagtér, családi utazásokra ideális.",
}

// ClassifyHint picks the category a free-text hint points to. Economy is the default.
func ClassifyHint(hint string) models.Category {
	h := textnorm.Normalize(hint)
	for _, r := range hintRules {
		if r.re.MatchString(h) {
			return r.category
		}
	}
	return models.CategoryEconomy
}

// RecommendCar renders a single-category recommendation for hint.
func RecommendCar(pricing *models.PricingCatalog, inv models.Inventory, hint string) string {
	pick := ClassifyHint(hint)
	lines := []string{"**Ajánlat**", ""}

	row := "• **Kategória**: " + categoryLabel(pick)
	if price, ok := pricing.BasePrice(pick); ok && price > 0 {
		row += " — " + formatDaily(price)
	}
	lines = append(lines, row)

	if examples, ok := ListCategoryModels(pick, inv); ok {
		lines = append(lines, "• **Példák**: "+examples)
	}
	lines = append(lines, "• **Miért?** "+reasons[pick])

	lines = append(lines, "", headerNextStep, "– Mettől meddig bérelnéd? (pl. 2025-10-23 → 2025-10-30)")
	return strings.Join(lines, "\n")
}
