package catalog

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
)

// FakeGenerator generates realistic catalog data using gofakeit.
type FakeGenerator struct {
	faker *gofakeit.Faker
}

// NewFakeGenerator creates a generator with a specific seed for
// reproducibility. Seed 0 picks a random seed.
func NewFakeGenerator(seed int64) *FakeGenerator {
	return &FakeGenerator{faker: gofakeit.New(seed)}
}

// Product generates a single product with the given id.
func (g *FakeGenerator) Product(id int64) Product {
	return Product{
		ID:           id,
		Code:         g.Code(),
		Name:         g.faker.ProductName(),
		SellingPrice: decimal.NewFromFloat(g.faker.Price(10, 50000)).Round(2),
	}
}

// Products generates n products with ids 1..n.
func (g *FakeGenerator) Products(n int) []Product {
	products := make([]Product, 0, n)
	for i := 1; i <= n; i++ {
		products = append(products, g.Product(int64(i)))
	}
	return products
}

// Code generates a supplier style product code such as "QXT-4821".
func (g *FakeGenerator) Code() string {
	return fmt.Sprintf("%s-%d", strings.ToUpper(g.faker.LetterN(3)), g.faker.Number(100, 9999))
}
