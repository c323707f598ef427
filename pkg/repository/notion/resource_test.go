package notion

import (
	"testing"

	"github.com/jomei/notionapi"
	"github.com/secmon-lab/libris/pkg/domain/interfaces"
	"github.com/secmon-lab/libris/pkg/domain/model"
)

func TestTitleOrURLFilter(t *testing.T) {
	t.Run("title only", func(t *testing.T) {
		filters := titleOrURLFilter("Raft site", "")
		if len(filters) != 1 {
			t.Fatalf("Expected 1 filter, got %d", len(filters))
		}
		pf, ok := filters[0].(notionapi.PropertyFilter)
		if !ok {
			t.Fatalf("Expected a PropertyFilter, got %T", filters[0])
		}
		if pf.Property != propTitle {
			t.Errorf("Expected %s property, got %s", propTitle, pf.Property)
		}
		if pf.RichText == nil || pf.RichText.Equals != "Raft site" {
			t.Errorf("Expected a text equality condition on the title, got %+v", pf.RichText)
		}
	})

	t.Run("title and url", func(t *testing.T) {
		filters := titleOrURLFilter("Raft site", "https://raft.github.io")
		if len(filters) != 2 {
			t.Fatalf("Expected 2 filters, got %d", len(filters))
		}
		pf, ok := filters[1].(notionapi.PropertyFilter)
		if !ok {
			t.Fatalf("Expected a PropertyFilter, got %T", filters[1])
		}
		if pf.Property != propURL {
			t.Errorf("Expected %s property, got %s", propURL, pf.Property)
		}
		if pf.RichText == nil || pf.RichText.Equals != "https://raft.github.io" {
			t.Errorf("Expected a text equality condition on the URL, got %+v", pf.RichText)
		}
	})
}

func TestMatchesKeywordQuery(t *testing.T) {
	resource := &model.Resource{
		Title:      "Designing Data-Intensive Applications",
		Notes:      "distributed systems book",
		Tags:       "book",
		Categories: "reading",
	}

	cases := []struct {
		name  string
		query interfaces.KeywordQuery
		want  bool
	}{
		{"term matches notes", interfaces.KeywordQuery{Terms: []string{"distributed"}}, true},
		{"term is case-insensitive", interfaces.KeywordQuery{Terms: []string{"DESIGNING"}}, true},
		{"term misses", interfaces.KeywordQuery{Terms: []string{"cooking"}}, false},
		{"tag filter matches", interfaces.KeywordQuery{Tags: "book"}, true},
		{"tag filter misses", interfaces.KeywordQuery{Terms: []string{"distributed"}, Tags: "paper"}, false},
		{"category filter matches", interfaces.KeywordQuery{Categories: "reading"}, true},
		{"no terms with matching filters", interfaces.KeywordQuery{Tags: "book", Categories: "reading"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := matchesKeywordQuery(resource, &tc.query); got != tc.want {
				t.Errorf("matchesKeywordQuery = %v, want %v", got, tc.want)
			}
		})
	}
}
