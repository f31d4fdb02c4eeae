package transform

import (
	"fmt"
	"sort"
	"strings"
)

func directive(contentType, audience string) string {
	switch contentType {
	case "marketing":
		return fmt.Sprintf("Transform this content into compelling marketing copy for %s:", audience)
	case "email":
		return fmt.Sprintf("Transform this content into a professional email for %s:", audience)
	case "social":
		return fmt.Sprintf("Transform this content for social media targeting %s:", audience)
	case "blog":
		return fmt.Sprintf("Transform this content into engaging blog content for %s:", audience)
	case "website":
		return fmt.Sprintf("Transform this content for website copy targeting %s:", audience)
	case "product":
		return fmt.Sprintf("Transform this content into compelling product descriptions for %s:", audience)
	default:
		return fmt.Sprintf("Transform this content to match Beforest's brand voice for %s:", audience)
	}
}

// RenderTemplate replaces every {name} placeholder with its value. Unknown placeholders are left as is.
func RenderTemplate(tmpl string, vars map[string]string) string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", vars[k])
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

func templateVars(req Request) map[string]string {
	return map[string]string{
		"original_content":   req.OriginalContent,
		"content_type":       req.ContentType,
		"target_audience":    req.TargetAudience,
		"additional_context": req.AdditionalContext,
	}
}

func buildUserPrompt(tmpl string, req Request) string {
	return directive(req.ContentType, req.TargetAudience) + "\n\n" + RenderTemplate(tmpl, templateVars(req))
}
