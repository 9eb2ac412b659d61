package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PriceLineup/internal/model"
)

func series(n int) model.Series {
	s := model.Series{Symbol: "AAPL", Columns: []string{"Close"}}
	for i := 0; i < n; i++ {
		s.Records = append(s.Records, model.Record{
			Date:   "2024-01-0" + string(rune('1'+i)),
			Fields: map[string]float64{"Close": float64(100 + i)},
		})
	}
	return s
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "blue_chip_AAPL", BulkKey("blue_chip", "AAPL"))
	assert.Equal(t, "AAPL", SymbolKey("AAPL"))
}

func TestSaveAndLoad(t *testing.T) {
	st := NewJSONStore(t.TempDir())
	require.NoError(t, st.Save(BulkKey("blue_chip", "AAPL"), series(3)))

	data, err := os.ReadFile(filepath.Join(st.Dir, "blue_chip_AAPL.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"Date":"2024-01-01","Close":100},{"Date":"2024-01-02","Close":101},{"Date":"2024-01-03","Close":102}]`, string(data))

	got, err := st.Load("blue_chip_AAPL")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Len())
	assert.Equal(t, []string{"Close"}, got.Columns)
}

func TestSave_OverwritesWithoutMerge(t *testing.T) {
	st := NewJSONStore(t.TempDir())
	require.NoError(t, st.Save("AAPL", series(3)))
	require.NoError(t, st.Save("AAPL", series(1)))

	got, err := st.Load("AAPL")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())

	keys, err := st.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL"}, keys, "no temporary files left behind")
}

func TestSave_InvalidKey(t *testing.T) {
	st := NewJSONStore(t.TempDir())
	for _, key := range []string{"", "..", "a/b", `a\b`} {
		err := st.Save(key, series(1))
		var ioErr *model.IOError
		require.True(t, errors.As(err, &ioErr), "key %q", key)
		assert.ErrorIs(t, err, ErrInvalidKey)
	}
}

func TestSave_MissingDirectoryIsIOError(t *testing.T) {
	st := NewJSONStore(filepath.Join(t.TempDir(), "absent"))
	err := st.Save("AAPL", series(1))
	var ioErr *model.IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "AAPL", ioErr.Key)
}

func TestPrepareOutputLocation(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "lineup")
	require.NoError(t, PrepareOutputLocation(dir, false))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.json"), []byte("[]"), 0644))

	require.NoError(t, PrepareOutputLocation(dir, false))
	_, err := os.Stat(filepath.Join(dir, "old.json"))
	require.NoError(t, err, "without reset existing files stay")

	require.NoError(t, PrepareOutputLocation(dir, true))
	_, err = os.Stat(filepath.Join(dir, "old.json"))
	assert.True(t, os.IsNotExist(err))

	assert.Error(t, PrepareOutputLocation("", false))
}
