package openfoodfacts

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/DipamJha/foodPro/internal/domain/product"
)

// decodeProduct extracts the "product" member of a v2 product response.
// It returns a nil record when the member is missing or is not an object,
// and also when the response is valid JSON other than an object.
func decodeProduct(body []byte) (*product.Record, error) {
	d := jx.DecodeBytes(body)
	switch tt := d.Next(); tt {
	case jx.Object:
	case jx.Invalid:
		return nil, errors.New("response is not JSON")
	default:
		if !jx.Valid(body) {
			return nil, errors.Errorf("malformed %s response", tt)
		}
		return nil, nil
	}

	var rec *product.Record
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "product" || d.Next() != jx.Object {
			return d.Skip()
		}
		raw, err := d.Raw()
		if err != nil {
			return errors.Wrap(err, "read product")
		}
		r, err := decodeRecord(raw)
		if err != nil {
			return errors.Wrap(err, "decode product")
		}
		rec = r
		return nil
	}); err != nil {
		return nil, err
	}
	return rec, nil
}

// decodeRecord reads the consumed fields from a product object. Values of an
// unexpected type are treated as absent.
func decodeRecord(raw jx.Raw) (*product.Record, error) {
	rec := &product.Record{Raw: append([]byte(nil), raw...)}
	fields := map[string]*string{
		"product_name":     &rec.Name,
		"brands":           &rec.Brand,
		"ingredients_text": &rec.Ingredients,
		"categories":       &rec.Categories,
		"nutrition_grades": &rec.NutritionGrade,
		"image_url":        &rec.ImageURL,
	}

	d := jx.DecodeBytes(raw)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		dst, ok := fields[key]
		if !ok || d.Next() != jx.String {
			return d.Skip()
		}
		v, err := d.Str()
		if err != nil {
			return errors.Wrapf(err, "field %s", key)
		}
		*dst = v
		return nil
	}); err != nil {
		return nil, err
	}
	return rec, nil
}
