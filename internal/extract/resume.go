package extract

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/documind/documind/constants"
	"github.com/documind/documind/internal/fields"
	"github.com/documind/documind/internal/ner"
)

var (
	resumeSections = []struct {
		name string
		re   *regexp.Regexp
	}{
		{"Education", regexp.MustCompile(`(?i)\b(Education|Academic Background|Qualifications)\b`)},
		{"Experience", regexp.MustCompile(`(?i)\b(Experience|Work Experience|Employment|History|Professional Experience)\b`)},
		{"Skills", regexp.MustCompile(`(?i)\b(Skills|Technical Skills|Competencies|Abilities|Technologies)\b`)},
		{"Certifications", regexp.MustCompile(`(?i)\b(Certifications|Certificates|Awards|Honors)\b`)},
		{"Projects", regexp.MustCompile(`(?i)\b(Projects|Portfolio)\b`)},
	}

	reDegree = regexp.MustCompile(`(?i)\b(?:B\.?S\.?|B\.?A\.?|M\.?S\.?|M\.?A\.?|Ph\.?D\.?|Bachelor|Master|Doctor|Diploma|Certificate|Associate)(?:\s+(?:of|in|to|Science|Arts|Engineering|Business|Technology|Management|Education|Philosophy|Computer))+\b`)
	reYear   = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)

	institutionWords = []string{"univ", "college", "school", "institute"}

	skillBuckets = []struct {
		key      string
		keywords []string
	}{
		{"languages", []string{"Python", "Java", "C++", "JavaScript", "TypeScript", "Go", "Rust", "SQL"}},
		{"web", []string{"React", "Angular", "Vue", "Node", "HTML", "CSS", "Django", "Flask", "FastAPI"}},
		{"cloud_devops", []string{"AWS", "Azure", "GCP", "Docker", "Kubernetes", "Terraform", "Jenkins"}},
		{"data_ai", []string{"Machine Learning", "Deep Learning", "Pandas", "NumPy", "TensorFlow", "PyTorch"}},
	}
)

// ResumeExtractor segments a resume into sections and extracts contact,
// education, experience, skills and certifications per section.
type ResumeExtractor struct {
	deps Deps
}

func NewResumeExtractor(deps Deps) *ResumeExtractor {
	return &ResumeExtractor{deps: deps.withDefaults()}
}

func (e *ResumeExtractor) Type() constants.DocumentType {
	return constants.Resume
}

func (e *ResumeExtractor) Extract(ctx context.Context, text string) (*Result, error) {
	if text == "" {
		e.deps.Logger.Warn("extract.resume.empty_text")
		return emptyResult(constants.Resume), nil
	}

	secs := e.sections(text)

	tree := fields.NewSet()
	tree.Put("contact_info", fields.Group(e.contact(ctx, text)))

	education := e.education(ctx, secs["Education"])
	tree.Put("education", fields.List(education...))

	experience := e.experience(ctx, secs["Experience"])
	tree.Put("work_experience", fields.List(experience...))

	skillsText := secs["Skills"]
	if skillsText == "" {
		skillsText = text
	}
	tree.Put("skills", fields.Group(e.skills(skillsText)))
	tree.Put("certifications", fields.List(e.certifications(secs["Certifications"])...))

	e.deps.Logger.Info("extract.resume.done",
		"sections", len(secs),
		"education", len(education),
		"experience", len(experience))
	return &Result{Type: constants.Resume, Fields: tree, Findings: []string{}}, nil
}

// sections locates header lines (short lines matching a category pattern)
// and slices the text between consecutive headers. A repeated header
// appends to its earlier content.
func (e *ResumeExtractor) sections(text string) map[string]string {
	type headerHit struct {
		start int
		name  string
	}
	hits := make([]headerHit, 0)
	for _, sec := range resumeSections {
		for _, loc := range sec.re.FindAllStringIndex(text, -1) {
			lineStart := strings.LastIndex(text[:loc[0]], "\n")
			if lineStart == -1 {
				lineStart = 0
			}
			lineEnd := lineEndAfter(text, loc[1])
			line := strings.TrimSpace(text[lineStart:lineEnd])
			if len(strings.Fields(line)) <= e.deps.Params.SectionHeaderMaxWords {
				hits = append(hits, headerHit{start: loc[0], name: sec.name})
			}
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].start < hits[j].start })

	out := make(map[string]string)
	for i, h := range hits {
		end := len(text)
		if i+1 < len(hits) {
			end = hits[i+1].start
		}
		content := strings.TrimSpace(text[h.start:end])
		if prev, ok := out[h.name]; ok {
			out[h.name] = prev + "\n" + content
		} else {
			out[h.name] = content
		}
	}
	return out
}

// contact scans the top lines for a plausible name and sweeps the whole
// text for email, phone and links.
func (e *ResumeExtractor) contact(ctx context.Context, text string) *fields.Set {
	contact := fields.NewSet()

	lines := strings.Split(text, "\n")
	limit := min(e.deps.Params.NameScanLines, len(lines))
	for _, line := range lines[:limit] {
		line = strings.TrimSpace(line)
		if len(line) <= 2 || len(strings.Fields(line)) >= 5 || hasDigit(line) {
			continue
		}
		if e.deps.Entities.Available() {
			if f, ok := firstOrNothing(e.deps.Entities.PersonNames(ctx, line)); ok {
				contact.PutLeaf("name", f)
				break
			}
			continue
		}
		contact.PutLeaf("name", fields.New(line, constants.FieldPersonName, 0.5, constants.SourceHeuristic))
		break
	}

	if f, ok := firstOrNothing(e.deps.Patterns.Emails(text)); ok {
		contact.PutLeaf("email", f)
	}
	if f, ok := firstOrNothing(e.deps.Patterns.PhoneNumbers(text)); ok {
		contact.PutLeaf("phone", f)
	}

	others := make([]fields.Field, 0)
	for _, u := range e.deps.Patterns.URLs(text) {
		lower := strings.ToLower(u.ValueString())
		switch {
		case strings.Contains(lower, "linkedin"):
			contact.PutLeaf("linkedin", u)
		case strings.Contains(lower, "github"):
			contact.PutLeaf("github", u)
		default:
			others = append(others, u)
		}
	}
	if len(others) > 0 {
		contact.PutLeaf("other_links", others...)
	}
	return contact
}

// education builds one entry per degree-keyword match, pairing it with a
// nearby institution mention and the closest graduation year.
func (e *ResumeExtractor) education(ctx context.Context, text string) []*fields.Set {
	entries := make([]*fields.Set, 0)
	if text == "" {
		return entries
	}

	for _, loc := range reDegree.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		lineStart := strings.LastIndex(text[:start], "\n")
		if lineStart == -1 {
			lineStart = 0
		}
		lineEnd := lineEndAfter(text, end)
		line := strings.TrimSpace(text[lineStart:lineEnd])

		rec := fields.NewSet()
		rec.PutLeaf("degree", fields.NewSpanned(
			text[start:end], constants.FieldText, 0.8, constants.SourcePattern, start, end, text[start:end]))
		rec.PutLeaf("line_content", fields.New(line, constants.FieldText, 1.0, constants.SourceHeuristic))

		// One line of context either side for the institution search.
		window := text[prevLineStart(text, lineStart):nextLineEnd(text, lineEnd)]
		orgs := e.deps.Entities.Entities(ctx, window)[ner.CategoryOrg]
		if inst, ok := pickInstitution(orgs); ok {
			rec.PutLeaf("institution", inst)
		}

		years := reYear.FindAllString(line, -1)
		if len(years) == 0 {
			years = reYear.FindAllString(text[lineEnd:nextLineEnd(text, lineEnd)], -1)
		}
		if len(years) > 0 {
			// Ranges like 2015-2019 end with the graduation year.
			rec.PutLeaf("year", fields.New(years[len(years)-1], constants.FieldNumber, 0.8, constants.SourcePattern))
		}

		entries = append(entries, rec)
	}
	return entries
}

// experience builds one entry per detected job title, attaching the nearest
// organization and every date in a generous window after the title.
func (e *ResumeExtractor) experience(ctx context.Context, text string) []*fields.Set {
	entries := make([]*fields.Set, 0)
	if text == "" {
		return entries
	}

	for _, title := range e.deps.Entities.JobTitles(text) {
		rec := fields.NewSet()
		rec.PutLeaf("title", title)

		start := 0
		if title.Span != nil {
			start = title.Span.Start
		}
		lineStart := strings.LastIndex(text[:start], "\n")
		if lineStart == -1 {
			lineStart = 0
		}
		windowEnd := lineEndAfter(text, min(start+100, len(text)))
		window := text[prevLineStart(text, lineStart):windowEnd]

		orgs := e.deps.Entities.Entities(ctx, window)[ner.CategoryOrg]
		if len(orgs) > 0 {
			m := orgs[0]
			rec.PutLeaf("company", fields.NewSpanned(
				strings.TrimSpace(m.Value), constants.FieldCompanyName, 0.7, constants.SourceEntity, m.Start, m.End, m.Value))
		}
		if dates := e.deps.Patterns.Dates(window); len(dates) > 0 {
			rec.PutLeaf("dates", dates...)
		}
		entries = append(entries, rec)
	}
	return entries
}

// skills lists every vocabulary hit and buckets them into fixed categories.
func (e *ResumeExtractor) skills(text string) *fields.Set {
	skills := fields.NewSet()
	all := e.deps.Entities.Skills(text)
	skills.PutLeaf("all", all...)

	if !e.deps.Entities.Available() {
		return skills
	}

	categorized := fields.NewSet()
	for _, bucket := range skillBuckets {
		matched := make([]fields.Field, 0)
		for _, sk := range all {
			if matchesBucket(sk.ValueString(), bucket.keywords) {
				matched = append(matched, sk)
			}
		}
		categorized.PutLeaf(bucket.key, matched...)
	}
	skills.Put("categorized", fields.Group(categorized))
	return skills
}

// certifications treats every substantial line of the section as one entry,
// skipping echoes of the section header.
func (e *ResumeExtractor) certifications(text string) []*fields.Set {
	entries := make([]*fields.Set, 0)
	if text == "" {
		return entries
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 5 || strings.Contains(strings.ToLower(line), "certification") {
			continue
		}
		rec := fields.NewSet()
		rec.PutLeaf("name", fields.New(line, constants.FieldText, 0.6, constants.SourceHeuristic))
		entries = append(entries, rec)
	}
	return entries
}

func pickInstitution(orgs []ner.Mention) (fields.Field, bool) {
	if len(orgs) == 0 {
		return fields.Field{}, false
	}
	pick := orgs[0]
	for _, org := range orgs {
		if containsAny(strings.ToLower(org.Value), institutionWords) {
			pick = org
			break
		}
	}
	return fields.NewSpanned(
		strings.TrimSpace(pick.Value), constants.FieldCompanyName, 0.7, constants.SourceEntity, pick.Start, pick.End, pick.Value), true
}

func matchesBucket(value string, keywords []string) bool {
	v := strings.ToLower(value)
	for _, k := range keywords {
		kl := strings.ToLower(k)
		if kl == v || (len(k) > 2 && strings.Contains(v, kl)) {
			return true
		}
	}
	return false
}

// lineEndAfter returns the index of the first newline at or after pos, or
// the end of text.
func lineEndAfter(text string, pos int) int {
	if idx := strings.Index(text[pos:], "\n"); idx != -1 {
		return pos + idx
	}
	return len(text)
}

// prevLineStart returns the start index of the line before the line
// starting at lineStart.
func prevLineStart(text string, lineStart int) int {
	if lineStart <= 0 {
		return 0
	}
	if idx := strings.LastIndex(text[:lineStart-1], "\n"); idx != -1 {
		return idx
	}
	return 0
}

// nextLineEnd returns the end index of the line after the line ending at
// lineEnd.
func nextLineEnd(text string, lineEnd int) int {
	if lineEnd+1 >= len(text) {
		return len(text)
	}
	return lineEndAfter(text, lineEnd+1)
}

func hasDigit(s string) bool {
	return strings.ContainsFunc(s, unicode.IsDigit)
}
