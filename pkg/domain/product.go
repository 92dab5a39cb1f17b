package domain

import "math"

// Product is a catalog entry. Prices are in whole rupees.
type Product struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	Vendor       string `json:"vendor"`
	Price        int    `json:"price"`
	ComparePrice int    `json:"comparePrice"`
	Image        string `json:"image"`
	Description  string `json:"description"`
	Category     string `json:"category"`
}

// Discount returns the product's discount percentage.
func (p Product) Discount() int {
	return DiscountPercent(p.Price, p.ComparePrice)
}

// DiscountPercent returns the percentage saved against comparePrice, rounded half up.
// It is 0 when comparePrice is not positive.
func DiscountPercent(price, comparePrice int) int {
	if comparePrice <= 0 {
		return 0
	}
	pct := float64(comparePrice-price) / float64(comparePrice) * 100
	return int(math.Floor(pct + 0.5))
}

const imageBase = "https://mcp-ui-test-production.up.railway.app/public/images/"

var products = []Product{
	{
		ID:           1,
		Title:        "Essence Long Lasting Lipstick - 02 Just Perfect",
		Vendor:       "Essence",
		Price:        340,
		ComparePrice: 398,
		Image:        imageBase + "product-1-essence-lipstick.jpg",
		Description:  "Premium quality lipstick product for everyday use. Perfect for all skin types.",
		Category:     "Lipstick",
	},
	{
		ID:           2,
		Title:        "Lakme 9 To 5 Matte To Glass Liquid Lip Color - Passion Pink",
		Vendor:       "Lakme",
		Price:        650,
		ComparePrice: 748,
		Image:        imageBase + "product-2-lakme-lipcolor.jpg",
		Description:  "Matte to glass finish liquid lip color. Long-lasting formula for all-day wear.",
		Category:     "Lipstick",
	},
	{
		ID:           3,
		Title:        "Typsy Beauty Drink & Blink Curling Mascara - Black",
		Vendor:       "Typsy Beauty",
		Price:        899,
		ComparePrice: 1090,
		Image:        imageBase + "product-3-typsy-mascara.jpg",
		Description:  "Professional curling mascara for dramatic lashes. Smudge-proof formula.",
		Category:     "Mascara",
	},
	{
		ID:           4,
		Title:        "Minimalist SPF 60 PA++++ Sunscreen With Antioxidant Silymarin",
		Vendor:       "Minimalist",
		Price:        500,
		ComparePrice: 622,
		Image:        imageBase + "product-4-minimalist-sunscreen.jpg",
		Description:  "High protection sunscreen with antioxidants. Perfect for daily sun protection.",
		Category:     "Sunscreen",
	},
	{
		ID:           5,
		Title:        "Essence The Brown Edition Eyeshadow Palette - 30",
		Vendor:       "Essence",
		Price:        580,
		ComparePrice: 711,
		Image:        imageBase + "product-5-essence-eyeshadow.jpg",
		Description:  "30 stunning brown shades eyeshadow palette. Create endless eye looks.",
		Category:     "Eye Shadow",
	},
}

// Products returns a copy of the fixed catalog.
func Products() []Product {
	out := make([]Product, len(products))
	copy(out, products)
	return out
}
