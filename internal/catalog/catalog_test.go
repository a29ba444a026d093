package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSelection(t *testing.T) {
	t.Parallel()

	require.Nil(t, ParseSelection("all"))
	require.Nil(t, ParseSelection("ALL"))
	require.Nil(t, ParseSelection(""))
	require.Equal(t, []string{"bitcoin"}, ParseSelection("bitcoin"))
	require.Equal(t, []string{"bitcoin", "ethereum"}, ParseSelection("Bitcoin, Ethereum"))
	require.Equal(t, []string{"bitcoin"}, ParseSelection("bitcoin,,"))
}

func sampleEntries() []Entry {
	return []Entry{
		{Symbol: "ETH", Name: "Ethereum", Rank: 2, Slug: "ethereum", SourceLocation: "y"},
		{Symbol: "BTC", Name: "Bitcoin", Rank: 1, Slug: "bitcoin", SourceLocation: "x"},
		{Symbol: "LTC", Name: "Litecoin", Rank: 3, Slug: "litecoin", SourceLocation: "z"},
	}
}

func TestSelect_OrdersByRank(t *testing.T) {
	t.Parallel()

	selected := Select(sampleEntries(), Filter{})
	require.Len(t, selected, 3)
	require.Equal(t, "bitcoin", selected[0].Slug)
	require.Equal(t, "ethereum", selected[1].Slug)
	require.Equal(t, "litecoin", selected[2].Slug)
}

func TestSelect_FiltersBySlug(t *testing.T) {
	t.Parallel()

	selected := Select(sampleEntries(), Filter{Slugs: []string{"litecoin", "bitcoin"}})
	require.Len(t, selected, 2)
	require.Equal(t, "bitcoin", selected[0].Slug)
	require.Equal(t, "litecoin", selected[1].Slug)
}

func TestSelect_AppliesLimitAfterOrdering(t *testing.T) {
	t.Parallel()

	selected := Select(sampleEntries(), Filter{Limit: 2})
	require.Len(t, selected, 2)
	require.Equal(t, "bitcoin", selected[0].Slug)
	require.Equal(t, "ethereum", selected[1].Slug)
}

func TestSelect_NoMatchIsEmptyNotError(t *testing.T) {
	t.Parallel()

	selected := Select(sampleEntries(), Filter{Slugs: []string{"dogecoin"}})
	require.Empty(t, selected)
}

func TestEntryValidate(t *testing.T) {
	t.Parallel()

	valid := Entry{Symbol: "BTC", Name: "Bitcoin", Rank: 1, Slug: "bitcoin", SourceLocation: "x"}
	require.NoError(t, valid.Validate())

	noSlug := valid
	noSlug.Slug = ""
	require.Error(t, noSlug.Validate())

	badRank := valid
	badRank.Rank = 0
	require.Error(t, badRank.Validate())

	noSource := valid
	noSource.SourceLocation = ""
	require.Error(t, noSource.Validate())
}
