package inference

import (
	"encoding/json"
	"fmt"

	"github.com/kaptinlin/jsonschema"

	"inferdesk/internal/domain"
)

// textResponseSchema is the {response} shape shared by every text operation.
const textResponseSchema = `{
  "type": "object",
  "required": ["response"],
  "properties": {
    "response": {"type": "string"}
  }
}`

// searchResponseSchema is the {papers:[...]} shape of semantic search.
// Fields the upstream index leaves out arrive as null.
const searchResponseSchema = `{
  "type": "object",
  "required": ["papers"],
  "properties": {
    "papers": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "title":   {"type": ["string", "null"]},
          "link":    {"type": ["string", "null"]},
          "year":    {"type": ["number", "null"]},
          "authors": {"type": ["array", "null"], "items": {"type": ["string", "null"]}}
        }
      }
    }
  }
}`

var (
	textSchema   = mustCompile(textResponseSchema)
	searchSchema = mustCompile(searchResponseSchema)
)

func mustCompile(src string) *jsonschema.Schema {
	schema, err := jsonschema.NewCompiler().Compile([]byte(src))
	if err != nil {
		panic(fmt.Sprintf("compile response schema: %v", err))
	}
	return schema
}

// validateBody parses body as JSON and checks it against schema.
func validateBody(schema *jsonschema.Schema, body []byte) error {
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", domain.ErrMalformedResponse, err)
	}
	result := schema.Validate(data)
	if !result.IsValid() {
		return fmt.Errorf("%w: %s", domain.ErrMalformedResponse, result.Error())
	}
	return nil
}

// decodeText extracts the response text. The text is returned untrimmed.
func decodeText(body []byte) (string, error) {
	if err := validateBody(textSchema, body); err != nil {
		return "", err
	}
	var resp struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return resp.Response, nil
}

// decodePapers extracts the search hits.
func decodePapers(body []byte) ([]domain.Paper, error) {
	if err := validateBody(searchSchema, body); err != nil {
		return nil, err
	}
	var resp struct {
		Papers []struct {
			Title   *string   `json:"title"`
			Link    *string   `json:"link"`
			Year    *float64  `json:"year"`
			Authors []*string `json:"authors"`
		} `json:"papers"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}

	papers := make([]domain.Paper, 0, len(resp.Papers))
	for _, p := range resp.Papers {
		var paper domain.Paper
		if p.Title != nil {
			paper.Title = *p.Title
		}
		if p.Link != nil {
			paper.Link = *p.Link
		}
		if p.Year != nil {
			paper.Year = int(*p.Year)
		}
		for _, a := range p.Authors {
			if a != nil {
				paper.Authors = append(paper.Authors, *a)
			}
		}
		papers = append(papers, paper)
	}
	return papers, nil
}
