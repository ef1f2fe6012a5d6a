// seed_items registra ítems en bloque desde un CSV exportado de la planilla de bodega.
// Cada fila pasa por el mismo alta que la API: normalización, código secuencial si viene vacío
// y rechazo de códigos que ya resuelven a otro ítem.
//
// Uso: go run ./cmd/seed_items [ruta/items.csv]
// Por defecto busca items.csv en el directorio actual. Acepta UTF-8 o ISO-8859-1 (Excel).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jhoicas/scanledger/internal/application/inventory"
	"github.com/jhoicas/scanledger/internal/application/scan"
	codes "github.com/jhoicas/scanledger/internal/domain/scan"
	"github.com/jhoicas/scanledger/internal/infrastructure/postgres"
	"github.com/jhoicas/scanledger/pkg/config"
	"github.com/jhoicas/scanledger/pkg/logger"
)

// seedOperator performed_by/created_by de los ítems cargados por este comando.
const seedOperator = "seed"

func main() {
	csvPath := "items.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "seed_items"})

	raw, err := os.ReadFile(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	rows, err := parseItems(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("esquema")
	}

	items := postgres.NewItemRepository(pool)
	resolver := scan.NewResolver(items, cfg.Scan.CompositeSeparator)
	uc := inventory.NewItemUseCase(items, postgres.NewLedgerRepository(pool), resolver,
		codes.NewNormalizer(cfg.Scan.URLParam), cfg.Scan.ItemCodePrefix, log)

	// Las filas se registran en orden: los códigos secuenciales dependen de las anteriores.
	var created, failed int
	for _, row := range rows {
		row.input.CreatedBy = seedOperator
		item, err := uc.Register(ctx, row.input)
		if err != nil {
			failed++
			log.Warn().Err(err).Int("line", row.line).Str("code", row.input.Code).Msg("fila rechazada")
			continue
		}
		created++
		log.Debug().Int("line", row.line).Str("code", item.Code).Str("item_id", item.ID).Msg("ítem registrado")
	}

	fmt.Printf("Procesado %s: %d ítems registrados, %d filas rechazadas\n", csvPath, created, failed)
	if failed > 0 {
		os.Exit(1)
	}
}
