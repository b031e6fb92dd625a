package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contactsRelation(t *testing.T) *Relation {
	t.Helper()
	rel, err := NewRelation("contacts", []string{"id", "name", "email", "created_at", "updated_at"})
	require.NoError(t, err)
	return rel
}

func TestNewRelationRejectsUnsafeIdentifiers(t *testing.T) {
	tests := []struct {
		name    string
		table   string
		columns []string
	}{
		{"quote in table", "contacts`; DROP TABLE x; --", []string{"id"}},
		{"uppercase table", "Contacts", []string{"id"}},
		{"space in column", "contacts", []string{"id", "first name"}},
		{"leading digit", "1contacts", []string{"id"}},
		{"empty column", "contacts", []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRelation(tt.table, tt.columns)
			assert.Error(t, err)
		})
	}
}

func TestSelect(t *testing.T) {
	rel := contactsRelation(t)
	id, ok := rel.Column("id")
	require.True(t, ok)

	tests := []struct {
		name           string
		dialect        Dialect
		builder        *Builder
		expectedSQL    string
		expectedParams []any
	}{
		{
			name:           "MySQL full scan",
			dialect:        MySQL,
			builder:        Select(rel),
			expectedSQL:    "SELECT * FROM `contacts`",
			expectedParams: []any{},
		},
		{
			name:           "MySQL by id",
			dialect:        MySQL,
			builder:        Select(rel).WhereUUID(id, "0b7e7c62-3f39-4c41-a8ef-6b0d8f0c2a11"),
			expectedSQL:    "SELECT * FROM `contacts` WHERE `id` = CAST(? AS CHAR(36))",
			expectedParams: []any{"0b7e7c62-3f39-4c41-a8ef-6b0d8f0c2a11"},
		},
		{
			name:           "Postgres by id",
			dialect:        Postgres,
			builder:        Select(rel).WhereUUID(id, "0b7e7c62-3f39-4c41-a8ef-6b0d8f0c2a11"),
			expectedSQL:    `SELECT * FROM "contacts" WHERE "id" = $1::uuid`,
			expectedParams: []any{"0b7e7c62-3f39-4c41-a8ef-6b0d8f0c2a11"},
		},
		{
			name:           "Postgres ordered",
			dialect:        Postgres,
			builder:        Select(rel).OrderBy(id, true),
			expectedSQL:    `SELECT * FROM "contacts" ORDER BY "id" DESC`,
			expectedParams: []any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.builder.Build(tt.dialect)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedSQL, res.SQL)
			assert.Equal(t, tt.expectedParams, res.Params)
		})
	}
}

func TestInsert(t *testing.T) {
	rel := contactsRelation(t)
	id, _ := rel.Column("id")
	name, _ := rel.Column("name")

	t.Run("MySQL", func(t *testing.T) {
		res, err := Insert(rel).Set(id, "abc").Set(name, "Ann'; DROP TABLE contacts; --").Returning().Build(MySQL)
		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO `contacts` (`id`, `name`) VALUES (?, ?)", res.SQL)
		assert.Equal(t, []any{"abc", "Ann'; DROP TABLE contacts; --"}, res.Params)
	})

	t.Run("Postgres returning", func(t *testing.T) {
		res, err := Insert(rel).Set(id, "abc").Set(name, "Ann").Returning().Build(Postgres)
		require.NoError(t, err)
		assert.Equal(t, `INSERT INTO "contacts" ("id", "name") VALUES ($1, $2) RETURNING *`, res.SQL)
	})

	t.Run("no values", func(t *testing.T) {
		_, err := Insert(rel).Build(MySQL)
		assert.Error(t, err)
	})

	t.Run("foreign column", func(t *testing.T) {
		other, err := NewRelation("leads", []string{"id", "secret"})
		require.NoError(t, err)
		secret, _ := other.Column("secret")

		_, err = Insert(rel).Set(id, "abc").Set(secret, "x").Build(MySQL)
		assert.Error(t, err)
	})
}

func TestRelationColumnLookup(t *testing.T) {
	rel := contactsRelation(t)
	_, ok := rel.Column("email")
	assert.True(t, ok)
	_, ok = rel.Column("password")
	assert.False(t, ok)
	assert.Equal(t, []string{"id", "name", "email", "created_at", "updated_at"}, rel.ColumnNames())
}

func TestDialects(t *testing.T) {
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y = $2", Postgres.Rebind("SELECT a FROM t WHERE x = ? AND y = ?"))
	assert.Equal(t, "x = ?", MySQL.Rebind("x = ?"))
	assert.Equal(t, "`we``ird`", MySQL.QuoteIdent("we`ird"))

	d, err := DialectFor("postgresql")
	require.NoError(t, err)
	assert.Equal(t, DialectPostgres, d.Name())

	_, err = DialectFor("oracle")
	assert.Error(t, err)
}
