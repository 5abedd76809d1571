package main

import (
	"context"
	"io"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/spf13/cobra"

	"github.com/DipamJha/foodPro/internal/domain/scan"
	"github.com/DipamJha/foodPro/internal/render"
)

func newLookupCmd(flags *rootFlags) *cobra.Command {
	var (
		analyze bool
		route   string
	)
	c := &cobra.Command{
		Use:   "lookup <barcode>",
		Short: "Scan a single barcode and show the product screen",
		Example: `  foodscan lookup 737628064502
  foodscan lookup 737628064502 --analyze`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := flags.client()
			if err != nil {
				return err
			}
			sess := scan.NewSession("cli", scan.Options{Fetcher: client, AnalyzeRoute: route})

			ctx := cmd.Context()
			st := sess.Scan(ctx, args[0])

			out := cmd.OutOrStdout()
			console := render.NewConsole()
			console.EnableColors = !flags.noColor
			if err := console.Render(scan.Render(st), out); err != nil {
				return errors.Wrap(err, "render")
			}
			if st.Error != "" {
				return errors.New(st.Error)
			}
			if !analyze {
				return nil
			}
			_, err = sess.Analyze(ctx, &printNavigator{w: out})
			return err
		},
	}
	c.Flags().BoolVar(&analyze, "analyze", false, "Hand the product off to the analysis view and print the navigation")
	c.Flags().StringVar(&route, "analyze-route", scan.DefaultAnalyzeRoute, "Route of the analysis view")
	return c
}

// printNavigator writes the navigation as a JSON line instead of switching
// views.
type printNavigator struct {
	w io.Writer
}

func (p *printNavigator) Navigate(_ context.Context, nav scan.Navigation) error {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("route", func(e *jx.Encoder) { e.Str(nav.Route) })
		e.Field("state", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("product", func(e *jx.Encoder) {
					if nav.Product == nil || len(nav.Product.Raw) == 0 {
						e.Null()
						return
					}
					e.Raw(nav.Product.Raw)
				})
			})
		})
	})
	if _, err := p.w.Write(append(e.Bytes(), '\n')); err != nil {
		return errors.Wrap(err, "write navigation")
	}
	return nil
}
