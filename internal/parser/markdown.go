// Package parser provides Markdown parsing for notes and guidelines.
package parser

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	h1Regex      = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	headingRegex = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
)

// Frontmatter is the YAML header carried by information notes.
type Frontmatter struct {
	Title string `yaml:"title"`
	Date  string `yaml:"date"`
}

// MarkdownDoc represents a parsed Markdown document.
type MarkdownDoc struct {
	Frontmatter Frontmatter

	// Title from frontmatter or first h1
	Title string

	// Body after the frontmatter block
	Content string

	Sections []Section
}

// Section represents a heading and its content.
type Section struct {
	Level   int    // 1-6 for h1-h6
	Heading string // The heading text
	Path    string // Full path like "## Setup > ### Install"
	Content string // Content under this heading
	Start   int    // Line of the heading, 1-based, relative to the whole document
	End     int    // Last line belonging to the section
}

// ParseMarkdown parses a Markdown document into structured form.
// Invalid YAML frontmatter is ignored rather than reported.
func ParseMarkdown(content string) (*MarkdownDoc, error) {
	doc := &MarkdownDoc{}

	remaining := content
	offset := 0
	if strings.HasPrefix(content, "---\n") {
		endIdx := strings.Index(content[4:], "\n---")
		if endIdx >= 0 {
			frontmatterYAML := content[4 : 4+endIdx]
			rest := content[4+endIdx+4:]
			if i := strings.IndexByte(rest, '\n'); i >= 0 {
				rest = rest[i+1:]
			} else {
				rest = ""
			}
			offset = strings.Count(content[:len(content)-len(rest)], "\n")
			remaining = rest

			if err := yaml.Unmarshal([]byte(frontmatterYAML), &doc.Frontmatter); err != nil {
				doc.Frontmatter = Frontmatter{}
			}
		}
	}

	doc.Content = remaining
	doc.Title = extractTitle(doc.Frontmatter, remaining)
	doc.Sections = parseSections(remaining, offset)

	return doc, nil
}

// RenderFrontmatter renders a "---" delimited YAML header followed by a blank line.
func RenderFrontmatter(fm Frontmatter) (string, error) {
	out, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}
	return "---\n" + string(out) + "---\n\n", nil
}

// FindSection returns the first section whose heading starts with prefix, case-insensitively.
func (d *MarkdownDoc) FindSection(level int, prefix string) (Section, bool) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	for _, s := range d.Sections {
		if s.Level == level && strings.HasPrefix(strings.ToLower(s.Heading), prefix) {
			return s, true
		}
	}
	return Section{}, false
}

func extractTitle(fm Frontmatter, content string) string {
	if fm.Title != "" {
		return fm.Title
	}
	if match := h1Regex.FindStringSubmatch(content); len(match) > 1 {
		return strings.TrimSpace(match[1])
	}
	return ""
}

// parseSections extracts sections; offset is the number of lines preceding content.
func parseSections(content string, offset int) []Section {
	var sections []Section

	scanner := bufio.NewScanner(strings.NewReader(content))
	lineNum := offset
	var currentPath []string
	var currentLevels []int

	var currentSection *Section
	var contentBuilder strings.Builder

	flushSection := func(endLine int) {
		if currentSection != nil {
			currentSection.Content = strings.TrimSpace(contentBuilder.String())
			currentSection.End = endLine
			sections = append(sections, *currentSection)
			contentBuilder.Reset()
		}
	}

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if match := headingRegex.FindStringSubmatch(line); len(match) > 0 {
			flushSection(lineNum - 1)

			level := len(match[1])
			heading := strings.TrimSpace(match[2])

			for len(currentLevels) > 0 && currentLevels[len(currentLevels)-1] >= level {
				currentPath = currentPath[:len(currentPath)-1]
				currentLevels = currentLevels[:len(currentLevels)-1]
			}
			currentPath = append(currentPath, match[1]+" "+heading)
			currentLevels = append(currentLevels, level)

			currentSection = &Section{
				Level:   level,
				Heading: heading,
				Path:    strings.Join(currentPath, " > "),
				Start:   lineNum,
			}
		} else if currentSection != nil {
			contentBuilder.WriteString(line)
			contentBuilder.WriteString("\n")
		}
	}

	flushSection(lineNum)

	// Trailing blank lines belong to the gap between sections, not to the section.
	lines := strings.Split(content, "\n")
	for i := range sections {
		for sections[i].End > sections[i].Start {
			idx := sections[i].End - offset - 1
			if idx < 0 || idx >= len(lines) || strings.TrimSpace(lines[idx]) != "" {
				break
			}
			sections[i].End--
		}
	}

	return sections
}
