package render

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/dashboard/internal/config"
)

// Fixed headings for the well-known sections. Anything else falls back to a
// title-cased form of the section key.
var sectionHeadings = map[string]string{
	config.SectionAbout:             "## About Me",
	config.SectionMetrics:           "## 📊 Research Metrics",
	config.SectionResearchInterests: "## 🔬 Research Interests",
	config.SectionEducation:         "## 📚 Education",
	config.SectionCurrentProjects:   "## 💻 Current Projects",
	config.SectionLinks:             "## 🔗 Links",
	config.SectionGitHubStats:       "## 📈 Repository Statistics",
}

var titleCaser = cases.Title(language.English)

func headingFor(section string) string {
	if h, ok := sectionHeadings[section]; ok {
		return h
	}
	return "## " + titleCaser.String(strings.ReplaceAll(section, "_", " "))
}
