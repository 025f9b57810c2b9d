package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"

	"github.com/xenking/anomie-storefront/internal/catalog"
	"github.com/xenking/anomie-storefront/internal/domain/product"
	"github.com/xenking/anomie-storefront/internal/storage/postgres"
)

func main() {
	var (
		databaseURL  string
		productsFile string
		replace      bool
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file (.json or .json.gz)")
	flag.BoolVar(&replace, "replace", false, "delete products missing from the file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, replace); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile string, replace bool) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	products, err := readProducts(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products")
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	slog.Info("upserting products", slog.Int("count", len(products)), slog.Bool("replace", replace))

	if err := postgres.NewProductRepository(pool).Upsert(ctx, products, replace); err != nil {
		return errors.Wrap(err, "seed products")
	}
	for _, p := range products {
		slog.Info("upserted product", slog.String("title", p.Title), slog.String("category", p.Category))
	}
	return nil
}

// readProducts loads a products file in the listing wire format. Files
// ending in .gz are decompressed with pgzip.
func readProducts(path string) ([]product.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "open gzip")
		}
		defer func() { _ = zr.Close() }()
		r = zr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read")
	}
	products, err := catalog.DecodeProducts(data)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(products))
	for i, p := range products {
		if p.Title == "" {
			return nil, errors.Errorf("product %d: title is required", i)
		}
		if _, ok := seen[p.Title]; ok {
			return nil, errors.Errorf("product %d: duplicate title %q", i, p.Title)
		}
		seen[p.Title] = struct{}{}
	}
	return products, nil
}
