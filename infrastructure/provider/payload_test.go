package provider

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayload_RankedList(t *testing.T) {
	raw := `{"default":{"rankedList":[{"other":1},{"rankedKeyword":[
		{"query":"election","value":900},
		{"query":"cats","value":"1,234"},
		{"title":"fallback","value":0}
	]}]}}`

	got := decodePayload(raw)
	require.Equal(t, kindRankedList, got.Kind)
	require.Len(t, got.Topics, 3)
	assert.Equal(t, rawTopic{Keyword: "election", SearchVolume: 900}, got.Topics[0])
	assert.Equal(t, int64(1234), got.Topics[1].SearchVolume)
	assert.Equal(t, "fallback", got.Topics[2].Keyword)
	assert.Equal(t, int64(0), got.Topics[2].SearchVolume)
}

func TestDecodePayload_DailySearches(t *testing.T) {
	raw := `{"default":{"trendingSearchesDays":[
		{"trendingSearches":[
			{"title":{"query":"world cup"},"formattedTraffic":"200K+","relatedQueries":[{"query":"fifa"},{"query":"final"}]},
			{"title":"plain title"},
			{"title":{"exploreLink":"/x"}}
		]},
		{"trendingSearches":[{"title":{"query":"yesterday"}}]}
	]}}`

	got := decodePayload(raw)
	require.Equal(t, kindDailySearches, got.Kind)
	require.Len(t, got.Topics, 3)
	assert.Equal(t, "world cup", got.Topics[0].Keyword)
	assert.Equal(t, int64(200), got.Topics[0].SearchVolume)
	assert.Equal(t, []string{"fifa", "final"}, got.Topics[0].RelatedQueries)
	assert.Equal(t, "plain title", got.Topics[1].Keyword)
	assert.Equal(t, int64(100), got.Topics[1].SearchVolume)
	assert.Equal(t, "Unknown", got.Topics[2].Keyword)
}

func TestDecodePayload_FlatArray(t *testing.T) {
	got := decodePayload(`[{"title":"a","value":"12.6"},{"term":"b"},{"query":"c","title":"ignored","value":-5}, "not an object"]`)
	require.Equal(t, kindFlatArray, got.Kind)
	require.Len(t, got.Topics, 3)
	assert.Equal(t, rawTopic{Keyword: "a", SearchVolume: 13}, got.Topics[0])
	assert.Equal(t, rawTopic{Keyword: "b", SearchVolume: 100}, got.Topics[1])
	assert.Equal(t, rawTopic{Keyword: "c", SearchVolume: 5}, got.Topics[2])
}

func TestDecodePayload_PriorityFallsThroughEmptyVariants(t *testing.T) {
	raw := `{"default":{"rankedList":[{"rankedKeyword":[]}],"trendingSearchesDays":[{"trendingSearches":[{"title":{"query":"x"}}]}]}}`
	got := decodePayload(raw)
	assert.Equal(t, kindDailySearches, got.Kind)
	require.Len(t, got.Topics, 1)
	assert.Equal(t, "x", got.Topics[0].Keyword)
}

func TestDecodePayload_Unrecognized(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "html", raw: "  <!doctype html><html><body>error</body></html>"},
		{name: "malformed json", raw: `{"default":`},
		{name: "empty", raw: ""},
		{name: "unknown object", raw: `{"foo":"bar"}`},
		{name: "empty array", raw: `[]`},
		{name: "scalar", raw: `42`},
		{name: "default is a string", raw: `{"default":"nope"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodePayload(tt.raw)
			assert.Equal(t, kindUnrecognized, got.Kind)
			assert.Empty(t, got.Topics)
		})
	}
}

func TestParseVolume(t *testing.T) {
	tests := []struct {
		raw  string
		def  int64
		want int64
	}{
		{raw: `1500`, def: 100, want: 1500},
		{raw: `"200K+"`, def: 100, want: 200},
		{raw: `"1,234"`, def: 100, want: 1234},
		{raw: `"2.5"`, def: 100, want: 3},
		{raw: `"abc"`, def: 100, want: 0},
		{raw: `"1.2.3"`, def: 100, want: 0},
		{raw: `""`, def: 100, want: 100},
		{raw: `null`, def: 100, want: 100},
		{raw: `0`, def: 100, want: 100},
		{raw: `-40`, def: 100, want: 40},
		{raw: ``, def: 7, want: 7},
		{raw: `{"a":1}`, def: 100, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, parseVolume(json.RawMessage(tt.raw), tt.def))
		})
	}
}

func TestPayloadKindString(t *testing.T) {
	assert.Equal(t, "rankedList", kindRankedList.String())
	assert.Equal(t, "dailySearches", kindDailySearches.String())
	assert.Equal(t, "flatArray", kindFlatArray.String())
	assert.Equal(t, "unrecognized", kindUnrecognized.String())
}
