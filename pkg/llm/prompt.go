package llm

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"

	"github.com/umputun/ideascope/pkg/domain"
)

const systemPromptTemplate = `You are an experienced startup analyst. You read forum posts where people describe
problems, frustrations and unmet needs, and you turn each of them into one concrete business idea.

For the post you receive:
- summarize the core problem in 1-2 sentences
- name the specific audience that has this problem
- propose a product or service solving it, with a short name and a concrete description
- pick a category such as SaaS, marketplace, tool, service, mobile app, community, content
- estimate implementation complexity: low, medium or high
- estimate market size: small, medium or large

Respond with a single JSON object only, no markdown and no extra text. All fields are required.
The object must match this JSON schema:
%SCHEMA%`

var (
	promptOnce    sync.Once
	defaultPrompt string
)

// DefaultSystemPrompt returns the built-in system prompt with the analysis JSON schema embedded
func DefaultSystemPrompt() string {
	promptOnce.Do(func() {
		r := jsonschema.Reflector{DoNotReference: true, ExpandedStruct: true}
		schema := r.Reflect(&domain.Analysis{})
		schema.Version = ""
		schema.ID = ""
		data, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			data = []byte("{}")
		}
		defaultPrompt = strings.Replace(systemPromptTemplate, "%SCHEMA%", string(data), 1)
	})
	return defaultPrompt
}

// systemPrompt returns prompt of the request or the default one
func systemPrompt(req Request) string {
	if strings.TrimSpace(req.SystemPrompt) != "" {
		return req.SystemPrompt
	}
	return DefaultSystemPrompt()
}

// userPrompt wraps post text into the user message
func userPrompt(req Request) string {
	var sb strings.Builder
	sb.WriteString("Analyze this post and respond with the JSON object.\n\n")
	sb.WriteString("POST:\n")
	sb.WriteString(strings.TrimSpace(req.Text))
	return sb.String()
}
