package chat

import (
	"regexp"
	"strconv"
	"strings"

	"lernbegleiter/models"
)

var (
	materialTagPattern = regexp.MustCompile(`\[Material (\d+)\]`)
	htmlLinkPattern    = regexp.MustCompile(`<a[^>]+href="([^"]+)"[^>]*>([^<]+)</a>`)
)

// ExtractUsedMaterials filters the offered suggestions down to those the
// tutor reply actually references. Three signals count as a reference: a
// numbered [Material N] tag, the bracketed resource title, or a hyperlink
// whose target or text matches the resource. Order follows first mention,
// each resource at most once.
func ExtractUsedMaterials(reply string, offered []models.WLOMetadata) []models.WLOMetadata {
	if reply == "" || len(offered) == 0 {
		return nil
	}

	used := make([]models.WLOMetadata, 0, len(offered))
	seen := make(map[string]bool)

	appendOnce := func(material models.WLOMetadata) {
		if material.RefID != "" && seen[material.RefID] {
			return
		}
		seen[material.RefID] = true
		used = append(used, material)
	}

	// Numbered tags refer to the 1-based position in the offered list.
	for _, match := range materialTagPattern.FindAllStringSubmatch(reply, -1) {
		index, err := strconv.Atoi(match[1])
		if err != nil || index < 1 || index > len(offered) {
			continue
		}
		appendOnce(offered[index-1])
	}

	for _, material := range offered {
		if material.Title == "" {
			continue
		}
		titlePattern, err := regexp.Compile(`(?i)\[` + regexp.QuoteMeta(material.Title) + `\]`)
		if err != nil {
			continue
		}
		if titlePattern.MatchString(reply) {
			appendOnce(material)
		}
	}

	for _, match := range htmlLinkPattern.FindAllStringSubmatch(reply, -1) {
		href, text := match[1], match[2]
		for _, material := range offered {
			if linkMatches(href, text, material) {
				appendOnce(material)
			}
		}
	}

	return used
}

func linkMatches(href, text string, material models.WLOMetadata) bool {
	if material.WwwURL != "" && strings.Contains(href, material.WwwURL) {
		return true
	}
	if material.URL != "" && strings.Contains(href, material.URL) {
		return true
	}
	if material.RefID != "" && strings.Contains(href, material.RefID) {
		return true
	}
	if material.Title != "" && strings.Contains(strings.ToLower(text), strings.ToLower(material.Title)) {
		return true
	}
	return false
}
