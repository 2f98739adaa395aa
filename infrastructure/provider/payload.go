package provider

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// payloadKind names the response shapes the daily trends feed has been observed to use.
type payloadKind int

const (
	kindRankedList payloadKind = iota
	kindDailySearches
	kindFlatArray
	kindUnrecognized
)

func (k payloadKind) String() string {
	switch k {
	case kindRankedList:
		return "rankedList"
	case kindDailySearches:
		return "dailySearches"
	case kindFlatArray:
		return "flatArray"
	}
	return "unrecognized"
}

const (
	unknownKeyword      = "Unknown"
	defaultSearchVolume = 100
	rankedDefaultVolume = 0
)

// rawTopic is a decoded entry before category, region and timestamps are applied.
type rawTopic struct {
	Keyword        string
	SearchVolume   int64
	RelatedQueries []string
}

type decodedPayload struct {
	Kind   payloadKind
	Topics []rawTopic
}

// lenientItem accepts every field any payload variant has been seen to carry.
type lenientItem struct {
	Query            json.RawMessage   `json:"query"`
	Title            json.RawMessage   `json:"title"`
	Term             json.RawMessage   `json:"term"`
	Value            json.RawMessage   `json:"value"`
	FormattedTraffic json.RawMessage   `json:"formattedTraffic"`
	RelatedQueries   []json.RawMessage `json:"relatedQueries"`
}

type envelope struct {
	Default struct {
		RankedList           json.RawMessage `json:"rankedList"`
		TrendingSearchesDays json.RawMessage `json:"trendingSearchesDays"`
	} `json:"default"`
}

type payloadDecoder struct {
	kind   payloadKind
	decode func(env *envelope, raw []byte) []rawTopic
}

// decoders run in priority order; the first one producing entries wins.
var decoders = []payloadDecoder{
	{kind: kindRankedList, decode: decodeRankedList},
	{kind: kindDailySearches, decode: decodeDailySearches},
	{kind: kindFlatArray, decode: decodeFlatArray},
}

// isHTML reports whether the payload is an HTML error page rather than JSON.
func isHTML(raw string) bool {
	return strings.HasPrefix(strings.TrimSpace(raw), "<")
}

// decodePayload classifies raw and extracts its entries. It never fails: HTML, malformed
// JSON and unknown shapes all yield kindUnrecognized with no topics.
func decodePayload(raw string) decodedPayload {
	data := bytes.TrimSpace([]byte(raw))
	if len(data) == 0 || isHTML(raw) || !json.Valid(data) {
		return decodedPayload{Kind: kindUnrecognized}
	}

	var env *envelope
	if data[0] == '{' {
		var e envelope
		if err := json.Unmarshal(data, &e); err == nil {
			env = &e
		}
	}

	for _, d := range decoders {
		if topics := d.decode(env, data); len(topics) > 0 {
			return decodedPayload{Kind: d.kind, Topics: topics}
		}
	}
	return decodedPayload{Kind: kindUnrecognized}
}

func decodeRankedList(env *envelope, _ []byte) []rawTopic {
	if env == nil || len(env.Default.RankedList) == 0 {
		return nil
	}
	var lists []struct {
		RankedKeyword []json.RawMessage `json:"rankedKeyword"`
	}
	if err := json.Unmarshal(env.Default.RankedList, &lists); err != nil {
		return nil
	}
	for _, l := range lists {
		if topics := decodeItems(l.RankedKeyword, func(it lenientItem) int64 {
			return parseVolume(it.Value, rankedDefaultVolume)
		}, false); len(topics) > 0 {
			return topics
		}
	}
	return nil
}

func decodeDailySearches(env *envelope, _ []byte) []rawTopic {
	if env == nil || len(env.Default.TrendingSearchesDays) == 0 {
		return nil
	}
	var days []struct {
		TrendingSearches []json.RawMessage `json:"trendingSearches"`
	}
	if err := json.Unmarshal(env.Default.TrendingSearchesDays, &days); err != nil || len(days) == 0 {
		return nil
	}
	// only the most recent day is used
	return decodeItems(days[0].TrendingSearches, func(it lenientItem) int64 {
		return parseVolume(it.FormattedTraffic, defaultSearchVolume)
	}, true)
}

func decodeFlatArray(_ *envelope, raw []byte) []rawTopic {
	if raw[0] != '[' {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return decodeItems(items, func(it lenientItem) int64 {
		return parseVolume(it.Value, defaultSearchVolume)
	}, false)
}

func decodeItems(items []json.RawMessage, volume func(lenientItem) int64, withRelated bool) []rawTopic {
	topics := make([]rawTopic, 0, len(items))
	for _, raw := range items {
		var it lenientItem
		if err := json.Unmarshal(raw, &it); err != nil {
			continue
		}
		t := rawTopic{
			Keyword:      itemKeyword(it),
			SearchVolume: volume(it),
		}
		if withRelated {
			t.RelatedQueries = relatedQueries(it.RelatedQueries)
		}
		topics = append(topics, t)
	}
	return topics
}

// itemKeyword applies the fallback chain query, title, term.
func itemKeyword(it lenientItem) string {
	for _, candidate := range []json.RawMessage{it.Query, it.Title, it.Term} {
		if s := textOf(candidate); s != "" {
			return s
		}
	}
	return unknownKeyword
}

// textOf reads a JSON string or an object carrying a "query" string.
func textOf(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var obj struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return strings.TrimSpace(obj.Query)
	}
	return ""
}

func relatedQueries(raws []json.RawMessage) []string {
	out := make([]string, 0, len(raws))
	for _, r := range raws {
		if s := textOf(r); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// parseVolume reads a traffic figure that may be a number or a formatted string such as
// "200K+" or "1,234". Absent or falsy values yield def. Everything but digits and dots is
// dropped before parsing, so the result is never negative; unparsable input yields 0.
func parseVolume(raw json.RawMessage, def int64) int64 {
	var v interface{}
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil {
		return def
	}

	var text string
	switch x := v.(type) {
	case nil:
		return def
	case bool:
		if !x {
			return def
		}
		text = "true"
	case float64:
		if x == 0 {
			return def
		}
		text = strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		if x == "" {
			return def
		}
		text = x
	default:
		// arrays and objects are truthy but carry no number
		return 0
	}

	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, text)
	if cleaned == "" {
		return 0
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if f >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(math.Round(f))
}
