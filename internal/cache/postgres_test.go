package cache

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestPostgresSnapshots_Load(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	snaps := NewPostgresSnapshots(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		payload := []byte(`[{"id":"C001"}]`)
		rows := sqlmock.NewRows([]string{"payload"}).AddRow(payload)
		mock.ExpectQuery("SELECT payload FROM snapshots WHERE key = \\$1").
			WithArgs(KeyCars).
			WillReturnRows(rows)

		got, err := snaps.Load(ctx, KeyCars)
		assert.NoError(t, err)
		assert.Equal(t, payload, got)
	})

	t.Run("Missing key", func(t *testing.T) {
		mock.ExpectQuery("SELECT payload FROM snapshots WHERE key = \\$1").
			WithArgs(KeyReservations).
			WillReturnRows(sqlmock.NewRows([]string{"payload"}))

		_, err := snaps.Load(ctx, KeyReservations)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPostgresSnapshots_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	snaps := NewPostgresSnapshots(db)
	ctx := context.Background()

	payload := []byte(`[{"id":"R001"}]`)
	mock.ExpectExec("INSERT INTO snapshots").
		WithArgs(KeyReservations, payload, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = snaps.Save(ctx, KeyReservations, payload)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSnapshots_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	snaps := NewPostgresSnapshots(db)

	mock.ExpectExec("DELETE FROM snapshots WHERE key = \\$1").
		WithArgs(KeyBookings).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = snaps.Delete(context.Background(), KeyBookings)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemorySnapshots_RoundTrip(t *testing.T) {
	snaps := NewMemorySnapshots()
	ctx := context.Background()

	_, err := snaps.Load(ctx, KeyCars)
	assert.ErrorIs(t, err, ErrNotFound)

	payload := []byte(`[{"id":"C001","available":true}]`)
	assert.NoError(t, snaps.Save(ctx, KeyCars, payload))

	got, err := snaps.Load(ctx, KeyCars)
	assert.NoError(t, err)
	assert.Equal(t, payload, got)

	assert.NoError(t, snaps.Delete(ctx, KeyCars))
	_, err = snaps.Load(ctx, KeyCars)
	assert.ErrorIs(t, err, ErrNotFound)
}
