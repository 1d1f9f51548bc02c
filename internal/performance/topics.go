package performance

import (
	"slices"
	"strings"
)

// UpdateTopics moves topic between the strong and weak sets based on score.
// Reinforcing a topic already in a set moves it to the most-recent end, so
// overflow always evicts the least recently reinforced entry. Labels match
// case-insensitively and the latest spelling is kept.
func UpdateTopics(strong, weak []string, topic string, score float64, cfg Config) ([]string, []string) {
	strong = slices.Clone(strong)
	weak = slices.Clone(weak)
	if strong == nil {
		strong = []string{}
	}
	if weak == nil {
		weak = []string{}
	}

	topic = strings.TrimSpace(topic)
	if topic == "" {
		return strong, weak
	}

	switch {
	case score >= cfg.StrongTopicScore:
		strong = reinforce(strong, topic, cfg.TopicCap)
		weak = remove(weak, topic)
	case score <= cfg.WeakTopicScore:
		weak = reinforce(weak, topic, cfg.TopicCap)
		strong = remove(strong, topic)
	}
	return strong, weak
}

func reinforce(set []string, topic string, limit int) []string {
	set = remove(set, topic)
	set = append(set, topic)
	if limit > 0 && len(set) > limit {
		set = set[len(set)-limit:]
	}
	return set
}

func remove(set []string, topic string) []string {
	return slices.DeleteFunc(set, func(s string) bool { return strings.EqualFold(s, topic) })
}
