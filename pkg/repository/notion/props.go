package notion

import (
	"strings"
	"time"

	"github.com/jomei/notionapi"
	"github.com/secmon-lab/libris/pkg/domain/model"
	"github.com/secmon-lab/libris/pkg/domain/types"
)

// Property names of the resource database
const (
	propTitle      = "Title"
	propURL        = "URL"
	propNotes      = "Notes"
	propTags       = "Tags"
	propCategories = "Categories"
)

func richText(text string) []notionapi.RichText {
	return []notionapi.RichText{
		{Text: &notionapi.Text{Content: text}},
	}
}

func plainText(rts []notionapi.RichText) string {
	var sb strings.Builder
	for _, rt := range rts {
		sb.WriteString(rt.PlainText)
	}
	return sb.String()
}

func toProperties(resource *model.Resource) notionapi.Properties {
	props := notionapi.Properties{
		propTitle: notionapi.TitleProperty{
			Title: richText(resource.Title),
		},
		propNotes: notionapi.RichTextProperty{
			RichText: richText(resource.Notes),
		},
	}

	if resource.URL != "" {
		props[propURL] = notionapi.URLProperty{URL: resource.URL}
	}
	if resource.Tags != "" {
		props[propTags] = notionapi.SelectProperty{
			Select: notionapi.Option{Name: resource.Tags},
		}
	}
	if resource.Categories != "" {
		props[propCategories] = notionapi.SelectProperty{
			Select: notionapi.Option{Name: resource.Categories},
		}
	}

	return props
}

func fromPage(page *notionapi.Page) *model.Resource {
	resource := &model.Resource{
		ID:        types.ResourceID(page.ID.String()),
		CreatedAt: time.Time(page.CreatedTime),
		UpdatedAt: time.Time(page.LastEditedTime),
	}

	for name, prop := range page.Properties {
		switch p := prop.(type) {
		case *notionapi.TitleProperty:
			if name == propTitle {
				resource.Title = plainText(p.Title)
			}
		case *notionapi.URLProperty:
			if name == propURL {
				resource.URL = p.URL
			}
		case *notionapi.RichTextProperty:
			if name == propNotes {
				resource.Notes = plainText(p.RichText)
			}
		case *notionapi.SelectProperty:
			switch name {
			case propTags:
				resource.Tags = p.Select.Name
			case propCategories:
				resource.Categories = p.Select.Name
			}
		}
	}

	return resource
}
