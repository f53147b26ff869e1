// Package docs holds the documentation topics shown by `gold topic`.
package docs

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed *.md
var docs embed.FS

// GetTopic returns the content of a documentation topic.
func GetTopic(topic string) (string, error) {
	content, err := docs.ReadFile(topic + ".md")
	if err != nil {
		return "", fmt.Errorf("topic %q not found: %w", topic, err)
	}
	return string(content), nil
}

// GetTopics returns the content of several topics, one after the other.
// The topic "*" stands for all topics but the readme.
func GetTopics(topics ...string) (string, error) {
	var names []string
	for _, topic := range topics {
		if topic != "*" {
			names = append(names, topic)
			continue
		}
		all, err := GetAllTopics()
		if err != nil {
			return "", err
		}
		names = append(names, all...)
	}

	var b strings.Builder
	for _, name := range names {
		content, err := GetTopic(name)
		if err != nil {
			return "", err
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// GetAllTopics returns the sorted list of topics, the readme excluded.
func GetAllTopics() ([]string, error) {
	files, err := fs.Glob(docs, "*.md")
	if err != nil {
		return nil, err
	}
	var topics []string
	for _, file := range files {
		base := strings.TrimSuffix(path.Base(file), ".md")
		if base == "readme" {
			continue
		}
		topics = append(topics, base)
	}
	sort.Strings(topics)
	return topics, nil
}
