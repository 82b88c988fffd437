package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/surrealdb/surrealdb.go"
)

func TestWrapQueryError(t *testing.T) {
	assert.NoError(t, wrapQueryError(nil))

	conflict := &surrealdb.QueryError{Message: "Transaction conflict: resource busy"}
	assert.ErrorIs(t, wrapQueryError(conflict), ErrTransactionConflict)
	assert.ErrorIs(t, wrapQueryError(fmt.Errorf("query: %w", conflict)), ErrTransactionConflict)

	other := &surrealdb.QueryError{Message: "Parse error"}
	assert.Same(t, other, wrapQueryError(other))

	plain := errors.New("socket closed")
	assert.Equal(t, plain, wrapQueryError(plain))
}
