package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/scanledger/internal/domain"
	"github.com/jhoicas/scanledger/internal/domain/entity"
)

func TestMapError(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	fk := &pgconn.PgError{Code: "23503"}
	down := errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")

	assert.ErrorIs(t, mapError("op", unique), domain.ErrDuplicate)
	assert.ErrorIs(t, mapError("op", fk), domain.ErrNotFound)
	assert.ErrorIs(t, mapError("op", down), domain.ErrUnavailable)
	assert.NoError(t, mapError("op", nil))
	assert.False(t, isUniqueViolation(nil))
}

func TestDecodeDetails(t *testing.T) {
	d, err := decodeDetails(entity.EntryOut, []byte(`{"recipient":"Taller 3","purpose":"frenos","vehicle_model":"NPR"}`))
	require.NoError(t, err)
	out, ok := d.(entity.OutDetails)
	require.True(t, ok)
	assert.Equal(t, "Taller 3", out.Recipient)
	assert.Equal(t, "NPR", out.VehicleModel)

	d, err = decodeDetails(entity.EntryIn, []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, entity.InDetails{}, d)

	_, err = decodeDetails("adjust", nil)
	assert.Error(t, err)
}

func TestLimitArg(t *testing.T) {
	assert.Nil(t, limitArg(0))
	assert.Equal(t, 20, limitArg(20))
}

func TestPreferIPv4_KeepsLiteralAddresses(t *testing.T) {
	dsn := "postgres://u:p@127.0.0.1:5433/inv?sslmode=disable"
	assert.Equal(t, dsn, preferIPv4(dsn))
	assert.Equal(t, "::not a url", preferIPv4("::not a url"))
}

func TestSchemaIsEmbedded(t *testing.T) {
	assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS ledger_entries")
	assert.Contains(t, schemaSQL, "append-only")
}
