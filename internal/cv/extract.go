package cv

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

const (
	summarySentences = 5
	noTextSummary    = "Could not extract text from the PDF."
)

// KeyInfo is what the line heuristics pull out of a CV.
type KeyInfo struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	Skills     []string `json:"skills"`
	Education  []string `json:"education"`
	Experience []string `json:"experience"`
}

var pdfMagic = []byte("%PDF-")

func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, pdfMagic)
}

// ExtractText returns the plain text of every page in data.
func ExtractText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	text, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return string(text), nil
}

// ExtractKeyInfo scans the lines of text. The first line is taken as the
// name; section headers open windows of following lines.
func ExtractKeyInfo(text string) KeyInfo {
	info := KeyInfo{Skills: []string{}, Education: []string{}, Experience: []string{}}
	if strings.TrimSpace(text) == "" {
		return info
	}

	lines := strings.Split(text, "\n")
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		upper := strings.ToUpper(line)

		if info.Email == "" && strings.Contains(line, "@") && strings.Contains(line, ".") {
			for _, word := range strings.Fields(line) {
				if strings.Contains(word, "@") && strings.Contains(word, ".") {
					info.Email = word
					break
				}
			}
		}

		if info.Phone == "" && countDigits(line) >= 10 {
			info.Phone = line
		}

		if strings.Contains(upper, "SKILLS") {
			for _, l := range window(lines, i, 10) {
				if l == "" || containsAny(strings.ToUpper(l), "EDUCATION", "EXPERIENCE", "WORK") {
					continue
				}
				for _, s := range strings.Split(l, ",") {
					if s = strings.TrimSpace(s); s != "" && !slices.Contains(info.Skills, s) {
						info.Skills = append(info.Skills, s)
					}
				}
			}
		}

		if strings.Contains(upper, "EDUCATION") {
			info.Education = append(info.Education, blocks(window(lines, i, 15), "SKILLS", "EXPERIENCE", "WORK")...)
		}

		if strings.Contains(upper, "EXPERIENCE") {
			info.Experience = append(info.Experience, blocks(window(lines, i, 20), "SKILLS", "EDUCATION")...)
		}
	}

	if first := strings.TrimSpace(lines[0]); first != "" {
		info.Name = first
	}
	return info
}

// window returns the trimmed lines after i, at most n-1 of them.
func window(lines []string, i, n int) []string {
	end := min(len(lines), i+n)
	out := make([]string, 0, n)
	for j := i + 1; j < end; j++ {
		out = append(out, strings.TrimSpace(lines[j]))
	}
	return out
}

// blocks joins runs of lines, split at blanks and at lines naming a stop
// header.
func blocks(lines []string, stops ...string) []string {
	var out []string
	var cur []string
	flush := func() {
		if len(cur) > 0 {
			out = append(out, strings.Join(cur, " "))
			cur = nil
		}
	}
	for _, l := range lines {
		if l == "" || containsAny(strings.ToUpper(l), stops...) {
			flush()
			continue
		}
		cur = append(cur, l)
	}
	flush()
	return out
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

var (
	sentenceSplit = regexp.MustCompile(`[.!?]+`)
	wordPattern   = regexp.MustCompile(`\b\w+\b`)
	stopwords     = map[string]struct{}{
		"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {}, "is": {}, "are": {},
		"was": {}, "were": {}, "be": {}, "been": {}, "being": {}, "in": {}, "on": {}, "at": {},
		"to": {}, "for": {}, "with": {}, "by": {}, "about": {}, "of": {},
	}
)

// Summarize keeps the n sentences whose words are most frequent across the
// whole text, in their original order.
func Summarize(text string, n int) string {
	if strings.TrimSpace(text) == "" {
		return noTextSummary
	}

	var sentences []string
	for _, s := range sentenceSplit.Split(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	if len(sentences) <= n {
		return strings.Join(sentences, " ")
	}

	freq := make(map[string]int)
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if _, stop := stopwords[w]; !stop {
			freq[w]++
		}
	}

	type scored struct {
		index int
		score int
	}
	ranked := make([]scored, len(sentences))
	for i, s := range sentences {
		score := 0
		for _, w := range wordPattern.FindAllString(strings.ToLower(s), -1) {
			score += freq[w]
		}
		ranked[i] = scored{index: i, score: score}
	}
	slices.SortStableFunc(ranked, func(a, b scored) int { return b.score - a.score })

	top := make([]int, 0, n)
	for _, s := range ranked[:n] {
		top = append(top, s.index)
	}
	slices.Sort(top)

	picked := make([]string, 0, n)
	for _, i := range top {
		picked = append(picked, sentences[i])
	}
	return strings.Join(picked, " ")
}

var techKeywords = []string{
	"python", "java", "javascript", "html", "css", "react", "angular", "vue",
	"node", "express", "django", "flask", "spring", "hibernate", "sql", "nosql",
	"mongodb", "postgresql", "mysql", "oracle", "aws", "azure", "gcp", "docker",
	"kubernetes", "jenkins", "git", "ci/cd", "agile", "scrum", "rest", "graphql",
	"machine learning", "ai", "data science", "tensorflow", "pytorch", "nlp",
	"mobile", "android", "ios", "swift", "kotlin", "flutter", "react native",
}

var keywordPatterns = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(techKeywords))
	for i, k := range techKeywords {
		out[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(k) + `\b`)
	}
	return out
}()

// KeywordSkills finds the built-in tech keywords in text on word
// boundaries.
func KeywordSkills(text string) []string {
	lower := strings.ToLower(text)
	found := []string{}
	for i, re := range keywordPatterns {
		if re.MatchString(lower) {
			found = append(found, techKeywords[i])
		}
	}
	return found
}

// ResolveSkills prefers the skills section and falls back to keywords.
// The result is lowercased and deduplicated.
func ResolveSkills(info KeyInfo, text string) []string {
	skills := info.Skills
	if len(skills) == 0 {
		skills = KeywordSkills(text)
	}
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}
