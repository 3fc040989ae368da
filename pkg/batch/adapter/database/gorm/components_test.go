package gorm_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gormadapter "github.com/tigerroll/surfin-record/pkg/batch/adapter/database/gorm"
	port "github.com/tigerroll/surfin-record/pkg/batch/core/application/port"
	config "github.com/tigerroll/surfin-record/pkg/batch/core/config"
	"github.com/tigerroll/surfin-record/pkg/batch/test"
)

func TestTableWriterAndQueryReader_RoundTrip(t *testing.T) {
	resolver := newResolver(t, map[string]interface{}{
		"app": map[string]interface{}{"type": "sqlite", "database": filepath.Join(t.TempDir(), "app.db")},
	})
	ctx := context.Background()
	db, err := resolver.ResolveDB(ctx, "app")
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE words (value TEXT NOT NULL, length INTEGER)").Error)

	cfg := config.NewConfig()
	c, err := gormadapter.NewTableWriterComponentBuilder(resolver)(cfg, map[string]string{"connection": "app", "table": "words", "chunk_size": "1"})
	require.NoError(t, err)
	writer := c.(port.RecordWriter)
	require.NoError(t, writer.Open(ctx))
	require.NoError(t, writer.WriteRecords(ctx, test.NewTestBatch(1,
		test.NewTestRecord(1, map[string]interface{}{"value": "alpha", "length": 5}),
		test.NewTestRecord(2, map[string]interface{}{"value": "be", "length": 2}),
	)))
	require.NoError(t, writer.Close(ctx))

	c, err = gormadapter.NewQueryReaderComponentBuilder(resolver)(cfg, map[string]string{
		"connection": "app",
		"query":      "SELECT value, length FROM words ORDER BY value",
	})
	require.NoError(t, err)
	reader := c.(port.RecordReader)
	require.NoError(t, reader.Open(ctx))
	defer reader.Close(ctx)

	first, err := reader.ReadRecord(ctx)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, int64(1), first.Header().Number())
	assert.Equal(t, "app", first.Header().Source())
	assert.Equal(t, map[string]interface{}{"value": "alpha", "length": int64(5)}, first.Payload())

	second, err := reader.ReadRecord(ctx)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, "be", second.Payload().(map[string]interface{})["value"])

	end, err := reader.ReadRecord(ctx)
	require.NoError(t, err)
	assert.Nil(t, end)
}

func TestComponentBuilders_RequireProperties(t *testing.T) {
	resolver := newResolver(t, map[string]interface{}{})
	cfg := config.NewConfig()

	_, err := gormadapter.NewTableWriterComponentBuilder(resolver)(cfg, map[string]string{"table": "words"})
	assert.ErrorContains(t, err, "connection")
	_, err = gormadapter.NewQueryReaderComponentBuilder(resolver)(cfg, map[string]string{"connection": "app"})
	assert.ErrorContains(t, err, "query")
	_, err = gormadapter.NewQueryReaderComponentBuilder(resolver)(cfg, map[string]string{"connection": "app", "query": "SELECT 1"})
	assert.Error(t, err)
}
