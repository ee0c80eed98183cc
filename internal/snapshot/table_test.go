package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRecordsDropsBlankRowsAndPads(t *testing.T) {
	t.Parallel()

	table, err := FromRecords([][]string{
		{" title ", "url", "contents"},
		{"A", "u1"},
		{"", " ", ""},
		{"B", "u2", "body", "overflow"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"title", "url", "contents"}, table.Columns())
	assert.Equal(t, 2, table.Len())

	v, ok := table.Get(0, ColContents)
	assert.True(t, ok)
	assert.Empty(t, v)

	v, _ = table.Get(1, ColContents)
	assert.Equal(t, "body", v)
	assert.Equal(t, [][]string{
		{"title", "url", "contents"},
		{"A", "u1", ""},
		{"B", "u2", "body"},
	}, table.Records())
}

func TestFromRecordsWithoutHeader(t *testing.T) {
	t.Parallel()

	_, err := FromRecords(nil)
	assert.Error(t, err)
}

func TestTableGetOutOfRange(t *testing.T) {
	t.Parallel()

	table := NewTable([]string{ColURL})
	table.AppendRow([]string{"u"})

	_, ok := table.Get(0, ColTitle)
	assert.False(t, ok)
	_, ok = table.Get(5, ColURL)
	assert.False(t, ok)
}

func TestTableSetAddsColumns(t *testing.T) {
	t.Parallel()

	table := NewTable([]string{ColContents, ColCluster})
	table.AppendRow([]string{"a", "1"})
	table.AppendRow([]string{"b", "2"})

	table.Set(1, ColSumTitle, "T")
	table.Set(9, ColSumTitle, "ignored")
	table.EnsureColumns(ColSumTitle, ColSumContents)

	assert.Equal(t, []string{ColContents, ColCluster, ColSumTitle, ColSumContents}, table.Columns())
	v, _ := table.Get(1, ColSumTitle)
	assert.Equal(t, "T", v)
	v, ok := table.Get(0, ColSumContents)
	assert.True(t, ok)
	assert.Empty(t, v)
}

func TestTableRequire(t *testing.T) {
	t.Parallel()

	table := NewTable([]string{ColContents})
	require.NoError(t, table.Require(ColContents))

	err := table.Require(ColContents, ColCluster, ColURL)
	require.Error(t, err)
	assert.Equal(t, "missing required columns: cluster2nd, url", err.Error())
}

func TestDuplicateHeaderKeepsFirst(t *testing.T) {
	t.Parallel()

	table, err := FromRecords([][]string{{"url", "url"}, {"first", "second"}})
	require.NoError(t, err)

	v, _ := table.Get(0, ColURL)
	assert.Equal(t, "first", v)
	assert.Len(t, table.Columns(), 2)
}
