package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMapList(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "map_list.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
maps:
  - map_id: 4
    name: mainland
    width: 250
    height: 250
  - map_id: 0
    name: talking island
    width: 64
    height: 48
`), 0o644))

	list, err := LoadMapList(path)
	require.NoError(t, err)
	assert.Equal(t, 2, list.Count())

	all := list.All()
	require.Len(t, all, 2)
	assert.Equal(t, int16(0), all[0].MapID)
	assert.Equal(t, "mainland", all[1].Name)

	info := list.Get(0)
	require.NotNil(t, info)
	assert.Equal(t, 64, info.Width)
	assert.Equal(t, 48, info.Height)
	assert.Nil(t, list.Get(9))
}

func TestParseMapList_Rejects(t *testing.T) {
	t.Parallel()
	for name, doc := range map[string]string{
		"zero width": "maps:\n  - {map_id: 1, width: 0, height: 5}",
		"neg height": "maps:\n  - {map_id: 1, width: 5, height: -2}",
		"duplicate":  "maps:\n  - {map_id: 1, width: 5, height: 5}\n  - {map_id: 1, width: 6, height: 6}",
		"not yaml":   "maps: [",
	} {
		_, err := ParseMapList([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestLoadMapList_Missing(t *testing.T) {
	t.Parallel()
	_, err := LoadMapList(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
