package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFromTx_EmptyRows(t *testing.T) {
	n, err := CopyFromTx(context.Background(), nil, "listings", []string{"a"}, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCopyFromTx_CopiesRows(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectCopyFrom(pgx.Identifier{"listings"}, []string{"schedule_number", "owner_name"}).WillReturnResult(2)

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	rows := [][]any{{"100", "Alpine"}, {"200", "Peak"}}
	n, err := CopyFromTx(context.Background(), tx, "listings", []string{"schedule_number", "owner_name"}, rows)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFromTx_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectCopyFrom(pgx.Identifier{"listings"}, []string{"schedule_number"}).WillReturnError(fmt.Errorf("copy failed"))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	_, err = CopyFromTx(context.Background(), tx, "listings", []string{"schedule_number"}, [][]any{{"100"}})
	assert.Error(t, err)
}

func TestBulkUpsert_EmptyRows(t *testing.T) {
	n, err := BulkUpsert(context.TODO(), nil, UpsertConfig{Table: "listings"}, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBulkUpsert_RequiresColumnsAndKeys(t *testing.T) {
	rows := [][]any{{"100"}}
	_, err := BulkUpsert(context.TODO(), nil, UpsertConfig{Table: "listings"}, rows)
	assert.Error(t, err)

	_, err = BulkUpsert(context.TODO(), nil, UpsertConfig{Table: "listings", Columns: []string{"a"}}, rows)
	assert.Error(t, err)
}

func TestBulkUpsert_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE "_tmp_upsert_listings"`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_listings"}, []string{"schedule_number", "owner_name"}).WillReturnResult(1)
	mock.ExpectExec(`INSERT INTO "listings"`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()
	mock.ExpectRollback()

	cfg := UpsertConfig{
		Table:        "listings",
		Columns:      []string{"schedule_number", "owner_name"},
		ConflictKeys: []string{"schedule_number"},
	}
	n, err := BulkUpsert(context.Background(), mock, cfg, [][]any{{"100", "Alpine"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
