package sqlstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRebind(t *testing.T) {
	numbered := New(nil, Dialect{NumberedPlaceholders: true})
	plain := New(nil, Dialect{})

	query := "INSERT INTO candidates (name, email, face_encoding) VALUES (?, ?, ?)"

	assert.Equal(t, "INSERT INTO candidates (name, email, face_encoding) VALUES ($1, $2, $3)", numbered.rebind(query))
	assert.Equal(t, query, plain.rebind(query))
}

func TestSplitStatements(t *testing.T) {
	content := `
CREATE TABLE a (id INTEGER);

CREATE INDEX a_idx ON a(id);
`
	stmts := splitStatements(content)
	assert.Equal(t, []string{"CREATE TABLE a (id INTEGER)", "CREATE INDEX a_idx ON a(id)"}, stmts)

	assert.Empty(t, splitStatements("\n  \n"))
	assert.Equal(t, []string{"SELECT 1"}, splitStatements("SELECT 1"))
}

func TestCloseNilDB(t *testing.T) {
	assert.NoError(t, New(nil, Dialect{}).Close())
}
