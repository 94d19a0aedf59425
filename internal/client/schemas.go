package client

import (
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Structured-output schemas. The same documents are sent to OpenAI as the
// response_format and compiled locally so payloads are checked again on the
// way in — the upstream "strict" flag is not trusted blindly.

const researchSchemaName = "research_papers"

const researchSchemaJSON = `{
	"type": "object",
	"properties": {
		"topic": {"type": "string"},
		"papers": {
			"type": "array",
			"minItems": 3,
			"maxItems": 10,
			"items": {
				"type": "object",
				"additionalProperties": false,
				"required": ["title", "authors", "abstract", "evidence_type", "journal", "doi", "citations"],
				"properties": {
					"title": {"type": "string"},
					"authors": {"type": "array", "items": {"type": "string"}},
					"abstract": {"type": "string"},
					"doi": {"type": "string"},
					"citations": {"type": "integer", "minimum": 0},
					"journal": {"type": "string"},
					"evidence_type": {
						"type": "string",
						"enum": ["meta-analysis", "systematic review", "RCT", "quasi-experimental", "observational", "case report", "other"]
					}
				}
			}
		}
	},
	"required": ["topic", "papers"],
	"additionalProperties": false
}`

const blogSchemaName = "blog_post_v1"

const blogSchemaJSON = `{
	"type": "object",
	"properties": {
		"title": {"type": "string"},
		"word_count": {"type": "integer"},
		"body_md": {"type": "string"},
		"references": {
			"type": "array",
			"minItems": 3,
			"maxItems": 10,
			"items": {
				"type": "object",
				"additionalProperties": false,
				"required": ["index", "title", "authors", "journal", "year", "doi"],
				"properties": {
					"index": {"type": "integer", "minimum": 1, "maximum": 10},
					"title": {"type": "string"},
					"authors": {"type": "array", "items": {"type": "string"}},
					"journal": {"type": "string"},
					"year": {"type": "integer"},
					"doi": {"type": "string"}
				}
			}
		}
	},
	"required": ["title", "word_count", "body_md", "references"],
	"additionalProperties": false
}`

var (
	researchSchema = mustCompile(researchSchemaName, researchSchemaJSON)
	blogSchema     = mustCompile(blogSchemaName, blogSchemaJSON)
)

func mustCompile(name, schemaJSON string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name+".json", strings.NewReader(schemaJSON)); err != nil {
		panic(err)
	}
	return compiler.MustCompile(name + ".json")
}
