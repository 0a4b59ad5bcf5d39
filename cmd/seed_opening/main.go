// seed_opening carga saldos iniciales (o un conteo físico) desde un CSV
// product_id;counted_quantity[;reason] y ajusta cada producto al valor contado en la fecha dada.
//
// Uso: go run ./cmd/seed_opening -date 2026-10-01 [-latin1] [-user 1] saldos.csv
// Sale con código 1 si alguna línea no se pudo aplicar.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/ledger-api/internal/application/ledger"
	"github.com/jhoicas/ledger-api/internal/infrastructure/postgres"
	"github.com/jhoicas/ledger-api/pkg/config"
	"github.com/jhoicas/ledger-api/pkg/logger"
)

func main() {
	dateFlag := flag.String("date", "", "fecha de negocio YYYY-MM-DD (requerida)")
	latin1 := flag.Bool("latin1", false, "el archivo está en ISO-8859-1")
	userID := flag.Int64("user", 1, "usuario que registra los ajustes")
	flag.Parse()

	if *dateFlag == "" || flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: seed_opening -date YYYY-MM-DD [-latin1] [-user N] archivo.csv")
		os.Exit(2)
	}
	date, err := time.Parse("2006-01-02", *dateFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fecha inválida: %v\n", err)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "seed_opening"})

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir CSV")
	}
	defer f.Close()

	lines, err := ledger.ParseStockCount(f, ledger.StockCountOptions{Latin1: *latin1})
	if err != nil {
		log.Fatal().Err(err).Msg("leer CSV")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	recorder := ledger.NewTransactionRecorder(
		postgres.NewTxRunner(pool),
		postgres.NewProductRepository(pool),
		log.Component("recorder"),
	)
	results, err := ledger.NewStockCountImporter(recorder).ApplyStockCount(ctx, date, lines, *userID)
	if err != nil {
		log.Fatal().Err(err).Msg("aplicar conteo")
	}

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
			fmt.Printf("línea %d producto %d: ERROR %s\n", r.Line, r.ProductID, r.Error)
			continue
		}
		fmt.Printf("línea %d producto %d: %s -> %s (%s) %s\n",
			r.Line, r.ProductID, r.Previous, r.Counted, r.Delta.StringFixed(3), r.TransactionNumber)
	}
	fmt.Printf("Aplicadas %d de %d líneas para %s\n", len(results)-failed, len(results), date.Format("2006-01-02"))
	if failed > 0 {
		os.Exit(1)
	}
}
