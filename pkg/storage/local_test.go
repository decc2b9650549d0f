package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/stockroom/pkg/storage"
)

func TestLocalDisk(t *testing.T) {
	disk, err := storage.NewLocal(t.TempDir(), "http://files.test/")
	require.NoError(t, err)
	ctx := context.Background()

	files, err := disk.Files(ctx, "reports")
	require.NoError(t, err)
	assert.NotNil(t, files)
	assert.Empty(t, files)

	require.NoError(t, disk.Put(ctx, "reports/b.csv", []byte("b"), "text/csv"))
	require.NoError(t, disk.Put(ctx, "reports/a.csv", []byte("a"), "text/csv"))
	require.NoError(t, disk.Put(ctx, "reports/nested/c.csv", []byte("c"), "text/csv"))

	got, err := disk.Get(ctx, "reports/a.csv")
	require.NoError(t, err)
	assert.Equal(t, "a", string(got))

	exists, err := disk.Exists(ctx, "reports/b.csv")
	require.NoError(t, err)
	assert.True(t, exists)

	files, err = disk.Files(ctx, "reports")
	require.NoError(t, err)
	assert.Equal(t, []string{"reports/a.csv", "reports/b.csv"}, files)

	assert.Equal(t, "http://files.test/reports/a.csv", disk.URL("/reports/a.csv"))
	assert.Equal(t, "local", disk.Name())

	require.NoError(t, disk.Delete(ctx, "reports/a.csv"))
	require.NoError(t, disk.Delete(ctx, "reports/a.csv"))
	_, err = disk.Get(ctx, "reports/a.csv")
	assert.ErrorIs(t, err, storage.ErrNotExist)
}

func TestLocalDisk_RejectsEscapes(t *testing.T) {
	disk, err := storage.NewLocal(t.TempDir(), "")
	require.NoError(t, err)
	ctx := context.Background()

	assert.Error(t, disk.Put(ctx, "../outside.csv", []byte("x"), ""))
	_, err = disk.Get(ctx, "reports/../../etc/passwd")
	assert.Error(t, err)
}
