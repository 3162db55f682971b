package prompts

import (
	"fmt"
	"strings"
)

// SimplifyOptimized flattens an optimized, structured document into a
// compact sectioned text form for re-analysis prompts. Flattening keeps
// the suggestion markers visible while cutting the token cost of the
// full JSON representation roughly in half.
func SimplifyOptimized(doc map[string]any) string {
	var lines []string

	if summary := asMap(doc["summary"]); len(summary) > 0 {
		lines = append(lines, "== SUMMARY ==")
		lines = append(lines, asString(summary["experience"]))
		lines = append(lines, asStrings(summary["key_aspects"])...)
	}

	if statement := asString(doc["personal_statement"]); statement != "" {
		lines = append(lines, "\n== PERSONAL STATEMENT ==", statement)
	}

	if career := asSlice(doc["career"]); len(career) > 0 {
		lines = append(lines, "\n== CAREER ==")
		for _, entry := range career {
			job := asMap(entry)
			lines = append(lines, fmt.Sprintf("\n→ %s @ %s (%s)",
				asString(job["position"]), asString(job["company"]), asString(job["time_period"])))
			for _, task := range asStrings(job["tasks"]) {
				lines = append(lines, "- "+task)
			}
			for _, achievement := range asStrings(job["achievements"]) {
				lines = append(lines, "✓ "+achievement)
			}
		}
	}

	if skills := asMap(doc["key_skills"]); len(skills) > 0 {
		lines = append(lines, "\n== KEY SKILLS ==")
		for _, entry := range asSlice(skills["items"]) {
			group := asMap(entry)
			lines = append(lines, asString(group["category"])+":")
			for _, skill := range asStrings(group["skills"]) {
				lines = append(lines, "- "+skill)
			}
		}
	}

	if education := asMap(doc["education"]); len(education) > 0 {
		lines = append(lines, "\n== EDUCATION ==")
		for _, item := range asStrings(education["items"]) {
			lines = append(lines, "- "+item)
		}
	}

	if languages := asMap(doc["languages"]); len(languages) > 0 {
		lines = append(lines, "\n== LANGUAGES ==")
		for _, item := range asStrings(languages["items"]) {
			lines = append(lines, "- "+item)
		}
	}

	if optionals := asSlice(doc["optionals"]); len(optionals) > 0 {
		lines = append(lines, "\n== OPTIONALE BEREICHE ==")
		for _, entry := range optionals {
			section := asMap(entry)
			lines = append(lines, "\n-- "+asString(section["title"])+" --")
			for _, item := range asStrings(section["items"]) {
				lines = append(lines, "- "+item)
			}
		}
	}

	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asStrings(v any) []string {
	items := asSlice(v)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
