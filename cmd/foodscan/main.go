// Command foodscan looks up products by barcode from the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/DipamJha/foodPro/internal/openfoodfacts"
)

// build-time override (e.g. -ldflags "-X main.version=1.2.3")
var version = "dev"

type rootFlags struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	verbose   bool
	noColor   bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "foodscan",
		Short: "Barcode product lookup",
		Long: strings.TrimSpace(`
foodscan looks up food products on Open Food Facts by barcode and shows the
scan screen in the terminal.`),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			lg, err := newLogger(flags.verbose)
			if err != nil {
				return err
			}
			cmd.SetContext(zctx.Base(cmd.Context(), lg))
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.baseURL, "base-url", openfoodfacts.DefaultBaseURL, "Product API base URL")
	pf.StringVar(&flags.userAgent, "user-agent", openfoodfacts.DefaultUserAgent, "User-Agent sent to the product API")
	pf.DurationVar(&flags.timeout, "timeout", openfoodfacts.DefaultTimeout, "Per-lookup timeout")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")
	pf.BoolVar(&flags.noColor, "no-color", false, "Disable ANSI colors")

	cmd.AddCommand(newLookupCmd(flags))
	cmd.AddCommand(newBatchCmd(flags))
	return cmd
}

func (f *rootFlags) client() (*openfoodfacts.Client, error) {
	c, err := openfoodfacts.NewClient(openfoodfacts.Options{
		BaseURL:   f.baseURL,
		UserAgent: f.userAgent,
		Timeout:   f.timeout,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create product client")
	}
	return c, nil
}

// newLogger logs warnings and errors to stderr, or everything with verbose.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.DisableStacktrace = !verbose
	lg, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return lg, nil
}
