package scan

// Panel titles and labels.
const (
	ScanTitle     = "Upload Image to Scan"
	ResultTitle   = "Product Info"
	BarcodeLabel  = "Scanned Barcode:"
	AnalyzeAction = "Analyze"

	// ImageWidth is the display width of the product image.
	ImageWidth = 120
)

// Screen is the rendered view: the scan panel on the left and the result
// panel on the right.
type Screen struct {
	Scan   ScanPanel
	Result ResultPanel
}

// ScanPanel embeds the scanner widget and echoes the last scanned barcode.
type ScanPanel struct {
	Title string
	// Barcode is empty until something was scanned; the label row is
	// omitted in that case.
	Barcode string
}

// ResultPanel shows either a product or a single message.
type ResultPanel struct {
	Title   string
	Product *ProductView
	// Message is set only when Product is nil.
	Message string
}

// ProductView is the displayable projection of a product record.
type ProductView struct {
	Name           string
	Brand          string
	Ingredients    string
	Categories     string
	NutritionGrade string
	Image          Image
	Action         string
}

// Image describes the product picture.
type Image struct {
	URL   string
	Alt   string
	Width int
}

// Row is a labelled line of the result panel.
type Row struct {
	Label string
	Value string
}

// Rows returns the labelled text rows of the product in display order.
func (p ProductView) Rows() []Row {
	return []Row{
		{Label: "Name", Value: p.Name},
		{Label: "Brand", Value: p.Brand},
		{Label: "Ingredients", Value: p.Ingredients},
		{Label: "Categories", Value: p.Categories},
		{Label: "Nutrition Grade", Value: p.NutritionGrade},
	}
}

// Render projects state onto a Screen. It has no side effects.
func Render(st State) Screen {
	screen := Screen{
		Scan: ScanPanel{
			Title:   ScanTitle,
			Barcode: st.Barcode,
		},
		Result: ResultPanel{Title: ResultTitle},
	}

	rec := st.Product
	if rec == nil {
		screen.Result.Message = st.Error
		if screen.Result.Message == "" {
			screen.Result.Message = Prompt
		}
		return screen
	}

	ingredients := rec.Ingredients
	if ingredients == "" {
		ingredients = Placeholder
	}
	screen.Result.Product = &ProductView{
		Name:           rec.Name,
		Brand:          rec.Brand,
		Ingredients:    ingredients,
		Categories:     rec.Categories,
		NutritionGrade: rec.NutritionGrade,
		Image: Image{
			URL:   rec.ImageURL,
			Alt:   rec.Name,
			Width: ImageWidth,
		},
		Action: AnalyzeAction,
	}
	return screen
}
