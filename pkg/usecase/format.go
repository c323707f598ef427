package usecase

import (
	"fmt"
	"strings"

	"github.com/secmon-lab/libris/pkg/domain/model"
)

func formatStoreReply(resource *model.Resource, updated bool) string {
	var sb strings.Builder
	if updated {
		fmt.Fprintf(&sb, "Updated %q in your library.", resource.Title)
	} else {
		fmt.Fprintf(&sb, "Saved %q to your library.", resource.Title)
	}

	var details []string
	if resource.URL != "" {
		details = append(details, resource.URL)
	}
	if resource.Tags != "" {
		details = append(details, "tag: "+resource.Tags)
	}
	if resource.Categories != "" {
		details = append(details, "category: "+resource.Categories)
	}
	if len(details) > 0 {
		sb.WriteString(" (" + strings.Join(details, ", ") + ")")
	}

	return sb.String()
}

func formatFetchReply(result *FetchResult) string {
	var sb strings.Builder

	if len(result.Resources) == 1 {
		sb.WriteString("Found 1 resource:\n")
	} else {
		fmt.Fprintf(&sb, "Found %d resources:\n", len(result.Resources))
	}

	for i, resource := range result.Resources {
		fmt.Fprintf(&sb, "%d. %s", i+1, resource.Title)
		if resource.URL != "" {
			sb.WriteString(" - " + resource.URL)
		}
		if resource.Notes != "" {
			sb.WriteString("\n   " + model.TrimPreview(resource.Notes))
		}
		if resource.Tags != "" || resource.Categories != "" {
			var labels []string
			if resource.Tags != "" {
				labels = append(labels, resource.Tags)
			}
			if resource.Categories != "" {
				labels = append(labels, resource.Categories)
			}
			sb.WriteString("\n   [" + strings.Join(labels, ", ") + "]")
		}
		sb.WriteString("\n")
	}

	reply := strings.TrimRight(sb.String(), "\n")
	if result.Degraded {
		reply += "\n(similarity search was unavailable, results are keyword matches only)"
	}
	return reply
}
