package usecase

import (
	"strings"

	"trend-api/domain/model"
)

// MergeTrends attaches to every topic, in input order, up to maxRelated videos whose title
// or any tag contains the topic keyword case-insensitively. Videos keep their input order
// and may relate to several topics. A blank keyword matches nothing.
func MergeTrends(topics []model.TopicTrend, videos []model.VideoTrend, maxRelated int) []model.CombinedTrend {
	type searchable struct {
		title string
		tags  []string
	}
	index := make([]searchable, len(videos))
	for i, v := range videos {
		tags := make([]string, len(v.Tags))
		for j, tag := range v.Tags {
			tags[j] = strings.ToLower(tag)
		}
		index[i] = searchable{title: strings.ToLower(v.Title), tags: tags}
	}

	combined := make([]model.CombinedTrend, 0, len(topics))
	for _, t := range topics {
		related := []model.VideoTrend{}
		keyword := strings.ToLower(strings.TrimSpace(t.Keyword))
		if keyword != "" {
			for i, s := range index {
				if maxRelated > 0 && len(related) >= maxRelated {
					break
				}
				if matches(s.title, s.tags, keyword) {
					related = append(related, videos[i])
				}
			}
		}
		combined = append(combined, model.CombinedTrend{
			Keyword:       t.Keyword,
			SearchVolume:  t.SearchVolume,
			Category:      t.Category,
			RelatedVideos: related,
		})
	}
	return combined
}

func matches(title string, tags []string, keyword string) bool {
	if strings.Contains(title, keyword) {
		return true
	}
	for _, tag := range tags {
		if strings.Contains(tag, keyword) {
			return true
		}
	}
	return false
}
