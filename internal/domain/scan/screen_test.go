package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DipamJha/foodPro/internal/domain/product"
)

func TestRender_Initial(t *testing.T) {
	screen := Render(State{})

	assert.Equal(t, ScanTitle, screen.Scan.Title)
	assert.Empty(t, screen.Scan.Barcode)
	assert.Equal(t, ResultTitle, screen.Result.Title)
	assert.Nil(t, screen.Result.Product)
	assert.Equal(t, Prompt, screen.Result.Message)
}

func TestRender_Product(t *testing.T) {
	screen := Render(State{
		Barcode: "737628064502",
		Product: exampleRecord(),
	})

	assert.Equal(t, "737628064502", screen.Scan.Barcode)
	assert.Empty(t, screen.Result.Message)
	require.NotNil(t, screen.Result.Product)

	p := screen.Result.Product
	assert.Equal(t, "Example", p.Name)
	assert.Equal(t, "Acme", p.Brand)
	assert.Equal(t, "b", p.NutritionGrade)
	assert.Equal(t, Placeholder, p.Ingredients)
	assert.Equal(t, AnalyzeAction, p.Action)
	assert.Equal(t, Image{Alt: "Example", Width: ImageWidth}, p.Image)

	assert.Equal(t, []Row{
		{Label: "Name", Value: "Example"},
		{Label: "Brand", Value: "Acme"},
		{Label: "Ingredients", Value: "N/A"},
		{Label: "Categories", Value: ""},
		{Label: "Nutrition Grade", Value: "b"},
	}, p.Rows())
}

func TestRender_IngredientsPresent(t *testing.T) {
	screen := Render(State{Product: &product.Record{
		Name:        "Bar",
		Ingredients: "oats, honey",
		ImageURL:    "https://images.example/bar.jpg",
	}})

	require.NotNil(t, screen.Result.Product)
	assert.Equal(t, "oats, honey", screen.Result.Product.Ingredients)
	assert.Equal(t, "https://images.example/bar.jpg", screen.Result.Product.Image.URL)
}

func TestRender_Error(t *testing.T) {
	screen := Render(State{Barcode: "000000000000", Error: MessageNotFound})

	assert.Equal(t, "000000000000", screen.Scan.Barcode)
	assert.Nil(t, screen.Result.Product)
	assert.Equal(t, MessageNotFound, screen.Result.Message)
}
