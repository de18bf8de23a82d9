package filestore

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStore_SaveOpenListDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(nil, t.TempDir())
	require.NoError(t, err)

	obj, err := store.Save(ctx, "datasets/a/1-data.csv", strings.NewReader("PERIODE_DATA\n2023\n"))
	require.NoError(t, err)
	require.Equal(t, "datasets/a/1-data.csv", obj.Key)
	require.Equal(t, int64(18), obj.Size)
	require.Equal(t, filepath.Join(store.Root(), "datasets", "a", "1-data.csv"), obj.Location)

	_, err = store.Save(ctx, "other/x.bin", strings.NewReader("x"))
	require.NoError(t, err)

	rc, err := store.Open(ctx, obj.Key)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	require.Equal(t, "PERIODE_DATA\n2023\n", string(body))

	listed, err := store.List(ctx, "datasets/")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, obj.Key, listed[0].Key)

	require.NoError(t, store.Delete(ctx, obj.Key))
	require.True(t, errors.Is(store.Delete(ctx, obj.Key), ErrNotFound))
	_, err = store.Open(ctx, obj.Key)
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestCleanKey(t *testing.T) {
	for _, bad := range []string{"", "  ", "/etc/passwd", "../x", "a/../../x", `a\b`, ".."} {
		if _, err := CleanKey(bad); err == nil {
			t.Fatalf("CleanKey(%q): want error", bad)
		}
	}
	got, err := CleanKey("datasets//a/./b.csv")
	if err != nil || got != "datasets/a/b.csv" {
		t.Fatalf("CleanKey: want=datasets/a/b.csv got=%q err=%v", got, err)
	}
}
