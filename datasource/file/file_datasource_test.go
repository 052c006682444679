package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xiangpingbu/shifu/datasource/parser/dsv"
)

func TestFileDataSource(t *testing.T) {
	dir := t.TempDir()
	require.Nil(t, os.WriteFile(filepath.Join(dir, "part-0.dsv"), []byte("1|0.5\n2|1.5\n"), 0o644))
	require.Nil(t, os.WriteFile(filepath.Join(dir, "part-1.dsv"), []byte("3|2.5\n"), 0o644))

	source := CreateDataSource(filepath.Join(dir, "part-*.dsv"), dsv.CreateParser(&dsv.ParserConf{Delimiter: '|'}))

	files, err := source.Files()
	require.Nil(t, err)
	require.Equal(t, 2, len(files))

	var rows [][]string
	err = source.Stream(func(row []string) error {
		rows = append(rows, append([]string{}, row...))
		return nil
	})
	require.Nil(t, err)
	// files stream whole and in lexical order
	require.Equal(t, 3, len(rows))
	require.Equal(t, []string{"1", "0.5"}, rows[0])
	require.Equal(t, []string{"3", "2.5"}, rows[2])
}

func TestFileDataSourceEmptyGlob(t *testing.T) {
	source := CreateDataSource(filepath.Join(t.TempDir(), "nothing-*"), dsv.CreateParser(&dsv.ParserConf{}))
	_, err := source.Files()
	require.NotNil(t, err)
	require.NotNil(t, source.Stream(func(row []string) error { return nil }))
}
