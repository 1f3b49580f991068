package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// DBTX is the subset of *sqlx.DB and *sqlx.Tx the repositories call.
type DBTX interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// oracleInListLimit is the maximum number of expressions Oracle accepts in an IN list.
const oracleInListLimit = 1000

// positionalPlaceholders renders ":start, :start+1, ..." for n binds.
func positionalPlaceholders(start, n int) string {
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = fmt.Sprintf(":%d", start+i)
	}
	return strings.Join(parts, ", ")
}

// chunkIDs splits ids into slices that fit in one IN list.
func chunkIDs(ids []string, size int) [][]string {
	var chunks [][]string
	for len(ids) > size {
		chunks = append(chunks, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		chunks = append(chunks, ids)
	}
	return chunks
}
