package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/DipamJha/foodPro/internal/domain/product"
	"github.com/DipamJha/foodPro/internal/domain/scan"
)

func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	var e jx.Encoder
	encode(&e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("code", func(e *jx.Encoder) { e.Int(status) })
			e.Field("message", func(e *jx.Encoder) { e.Str(message) })
		})
	})
}

// encodeSession writes {"id": ..., "scan": {...}, "result": {...}}.
func encodeSession(e *jx.Encoder, id string, screen scan.Screen) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(id) })
		e.Field("scan", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("title", func(e *jx.Encoder) { e.Str(screen.Scan.Title) })
				if screen.Scan.Barcode != "" {
					e.Field("barcode", func(e *jx.Encoder) { e.Str(screen.Scan.Barcode) })
				}
			})
		})
		e.Field("result", func(e *jx.Encoder) {
			encodeResult(e, screen.Result)
		})
	})
}

func encodeResult(e *jx.Encoder, r scan.ResultPanel) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("title", func(e *jx.Encoder) { e.Str(r.Title) })
		if r.Product == nil {
			e.Field("message", func(e *jx.Encoder) { e.Str(r.Message) })
			return
		}
		p := r.Product
		e.Field("product", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
				e.Field("brand", func(e *jx.Encoder) { e.Str(p.Brand) })
				e.Field("ingredients", func(e *jx.Encoder) { e.Str(p.Ingredients) })
				e.Field("categories", func(e *jx.Encoder) { e.Str(p.Categories) })
				e.Field("nutrition_grade", func(e *jx.Encoder) { e.Str(p.NutritionGrade) })
				e.Field("image", func(e *jx.Encoder) {
					e.Obj(func(e *jx.Encoder) {
						e.Field("url", func(e *jx.Encoder) { e.Str(p.Image.URL) })
						e.Field("alt", func(e *jx.Encoder) { e.Str(p.Image.Alt) })
						e.Field("width", func(e *jx.Encoder) { e.Int(p.Image.Width) })
					})
				})
				e.Field("action", func(e *jx.Encoder) { e.Str(p.Action) })
			})
		})
	})
}

// encodeRaw writes the upstream product object, or {} when none was kept.
func encodeRaw(e *jx.Encoder, rec *product.Record) {
	if len(rec.Raw) == 0 {
		e.Obj(func(*jx.Encoder) {})
		return
	}
	e.Raw(rec.Raw)
}

// encodeNavigation writes {"route": ..., "state": {"product": <raw record>}}.
func encodeNavigation(e *jx.Encoder, nav scan.Navigation) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("route", func(e *jx.Encoder) { e.Str(nav.Route) })
		e.Field("state", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("product", func(e *jx.Encoder) { encodeRaw(e, nav.Product) })
			})
		})
	})
}

// encodeProduct writes {"barcode": ..., "product": <raw record>}.
func encodeProduct(e *jx.Encoder, rec *product.Record) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("barcode", func(e *jx.Encoder) { e.Str(rec.Barcode) })
		e.Field("product", func(e *jx.Encoder) { encodeRaw(e, rec) })
	})
}
