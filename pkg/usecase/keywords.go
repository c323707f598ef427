package usecase

import (
	"sort"
	"strings"
	"unicode"
)

// stopwords are dropped during keyword extraction from free text queries
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "about": {},
	"from": {}, "that": {}, "this": {}, "have": {}, "any": {},
	"can": {}, "you": {}, "please": {}, "find": {}, "search": {},
	"show": {}, "give": {}, "get": {}, "want": {}, "looking": {},
	"need": {}, "some": {}, "all": {}, "resource": {}, "resources": {},
	"saved": {}, "stored": {}, "something": {}, "anything": {},
	"recommend": {}, "suggestion": {}, "suggestions": {},
}

// extractKeywords tokenizes free text, dropping stopwords and short tokens
func extractKeywords(text string) []string {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '-'
	})

	seen := make(map[string]struct{})
	var keywords []string
	for _, token := range tokens {
		token = strings.Trim(token, "-")
		if len(token) < 3 {
			continue
		}
		if _, ok := stopwords[token]; ok {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		keywords = append(keywords, token)
	}

	return keywords
}

// expandVariants returns search variants of a term: the lowercase form, the
// plural/singular flip of a trailing "s", and hyphen/space swaps. "machine
// learning" still matches a resource tagged "machine-learning".
func expandVariants(term string) []string {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}

	set := map[string]struct{}{term: {}}
	if strings.HasSuffix(term, "s") && len(term) > 3 {
		set[strings.TrimSuffix(term, "s")] = struct{}{}
	} else {
		set[term+"s"] = struct{}{}
	}
	if strings.Contains(term, "-") {
		set[strings.ReplaceAll(term, "-", " ")] = struct{}{}
	}
	if strings.Contains(term, " ") {
		set[strings.ReplaceAll(term, " ", "-")] = struct{}{}
	}

	variants := make([]string, 0, len(set))
	for v := range set {
		variants = append(variants, v)
	}
	sort.Strings(variants)
	return variants
}

// searchTerms turns a free text query into substring search terms. When no
// keyword survives extraction the whole query is used as a single term.
func searchTerms(query string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	keywords := extractKeywords(query)
	if len(keywords) == 0 {
		keywords = []string{strings.ToLower(query)}
	}

	seen := make(map[string]struct{})
	var terms []string
	for _, keyword := range keywords {
		for _, variant := range expandVariants(keyword) {
			if _, ok := seen[variant]; ok {
				continue
			}
			seen[variant] = struct{}{}
			terms = append(terms, variant)
		}
	}

	return terms
}

// coerceLimit clamps a requested result count into [1, max], falling back to
// def when the classifier did not supply one.
func coerceLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
