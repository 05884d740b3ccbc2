package extraction

import (
	"fmt"
	"strings"

	"rfp-backend/pkg/ai"
)

// Field describes one key of the JSON object the model must return.
// Fields with children render as an array of objects.
type Field struct {
	Name        string
	Placeholder string
	Fields      []Field
}

// Schema drives both the prompt and the decoding parameters of one kind
// of extraction.
type Schema struct {
	Name       string
	Role       string
	Subject    string
	Fields     []Field
	Rules      []string
	Generation ai.GenerationConfig
}

var commonRules = []string{
	"Numeric values must be plain numbers without currency symbols, units or thousands separators.",
	"Dates must use the ISO 8601 format YYYY-MM-DD.",
	"Use null for any value that is not stated in the text.",
	"Return ONLY the JSON object, without explanations or markdown.",
}

var RFPSchema = Schema{
	Name:    "rfp",
	Role:    "You are a procurement assistant that turns purchase requests into structured RFP data.",
	Subject: "procurement request",
	Fields: []Field{
		{Name: "title", Placeholder: `"short descriptive title"`},
		{Name: "budget", Placeholder: "total budget as a number, or null"},
		{Name: "deadline", Placeholder: `"YYYY-MM-DD", or null`},
		{Name: "items", Fields: []Field{
			{Name: "name", Placeholder: `"item name"`},
			{Name: "quantity", Placeholder: "integer, 1 when not stated"},
			{Name: "specifications", Placeholder: `"technical requirements"`},
		}},
	},
	Rules: append([]string{
		"Create a separate entry in items for each distinct product or service.",
		"Infer items from the description when they are not listed explicitly.",
	}, commonRules...),
	Generation: ai.GenerationConfig{
		Temperature:     0.1,
		TopP:            0.95,
		TopK:            40,
		MaxOutputTokens: 2048,
	},
}

var ProposalSchema = Schema{
	Name:    "proposal",
	Role:    "You are a procurement assistant that reads vendor replies to RFPs.",
	Subject: "vendor proposal",
	Fields: []Field{
		{Name: "price", Placeholder: "total quoted price as a number, or null"},
		{Name: "payment_terms", Placeholder: `"payment terms", or null`},
		{Name: "warranty", Placeholder: `"warranty terms", or null`},
	},
	Rules: append([]string{
		"When several prices are quoted, use the grand total.",
	}, commonRules...),
	Generation: ai.GenerationConfig{
		Temperature:     0.1,
		TopP:            0.95,
		TopK:            40,
		MaxOutputTokens: 1024,
	},
}

// Prompt renders the instruction for input. The output depends only on
// the schema and input.
func (s Schema) Prompt(input string) string {
	var b strings.Builder

	b.WriteString(s.Role)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Extract the following information from this %s:\n\n", s.Subject)
	b.WriteString(input)
	b.WriteString("\n\nReturn a JSON object with exactly this structure:\n")
	writeObject(&b, s.Fields, "")
	b.WriteString("\n\nRules:\n")
	for i, rule := range s.Rules {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rule)
	}

	return b.String()
}

func writeObject(b *strings.Builder, fields []Field, indent string) {
	b.WriteString("{\n")
	for i, f := range fields {
		fmt.Fprintf(b, "%s  %q: ", indent, f.Name)
		if len(f.Fields) > 0 {
			b.WriteString("[\n" + indent + "    ")
			writeObject(b, f.Fields, indent+"    ")
			b.WriteString("\n" + indent + "  ]")
		} else {
			b.WriteString(f.Placeholder)
		}
		if i < len(fields)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(indent + "}")
}
