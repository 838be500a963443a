// Package prompt renders categorization prompts for the generation service.
// Rendering is deterministic: identical inputs always produce byte-identical
// prompt text, which keeps caching and tests stable.
package prompt

import (
	"fmt"
	"strings"

	"github.com/pkozlov/bucketeer/internal/model"
)

// DefaultMaxExamples caps the number of historical examples included for
// in-context learning.
const DefaultMaxExamples = 100

const preamble = "You are a budget categorization assistant. Based on transaction details, " +
	"suggest the most appropriate budget category for each transaction."

// BuildBatchPrompt renders one prompt categorizing every row in the group.
// Examples are assumed newest first and are truncated to maxExamples in the
// given order; maxExamples <= 0 selects DefaultMaxExamples.
func BuildBatchPrompt(rows []model.Row, categories model.CategorySet, examples []model.Example, maxExamples int) string {
	var b strings.Builder

	b.WriteString(preamble)
	b.WriteString("\n\nAvailable Categories: ")
	b.WriteString(strings.Join(categories, ", "))
	b.WriteString("\n\n")

	writeExamples(&b, examples, maxExamples)

	b.WriteString("Transactions to Categorize (batch processing):\n")
	for _, row := range rows {
		fmt.Fprintf(&b, "Row %d: Date: %s | Amount: %s | Description: %q\n",
			row.Index, row.Date, row.Amount, row.Description)
	}

	b.WriteString("\nFor each transaction above, provide the category in the following format:\n")
	for _, row := range rows {
		fmt.Fprintf(&b, "Row %d: <CATEGORY_NAME>\n", row.Index)
	}

	b.WriteString(`
Rules:
- Respond with ONLY the row and category mapping
- Do not include any explanation
- Each line must be in the format: Row <number>: <CATEGORY_NAME>
- Use the exact category names from the available list
- Process all transactions
`)

	return b.String()
}

// BuildSingleRowPrompt renders a prompt for exactly one row. The reply is
// expected to be the bare category name, without row framing.
func BuildSingleRowPrompt(row model.Row, categories model.CategorySet, examples []model.Example, maxExamples int) string {
	var b strings.Builder

	b.WriteString(preamble)
	b.WriteString("\n\nAvailable Categories: ")
	b.WriteString(strings.Join(categories, ", "))
	b.WriteString("\n\n")

	writeExamples(&b, examples, maxExamples)

	b.WriteString("Transaction to Categorize:\n")
	fmt.Fprintf(&b, "Date: %s | Amount: %s | Description: %q\n",
		row.Date, row.Amount, row.Description)

	b.WriteString(`
Rules:
- Respond with ONLY the category name
- Do not include any explanation
- Use the exact category name from the available list
`)

	return b.String()
}

func writeExamples(b *strings.Builder, examples []model.Example, maxExamples int) {
	if len(examples) == 0 {
		return
	}
	if maxExamples <= 0 {
		maxExamples = DefaultMaxExamples
	}
	if len(examples) > maxExamples {
		examples = examples[:maxExamples]
	}

	b.WriteString("Here are examples of previous categorizations:\n")
	for _, ex := range examples {
		fmt.Fprintf(b, "- Date: %s | Amount: %s | Description: %q → %s\n",
			ex.Date, ex.Amount, ex.Description, ex.Category)
	}
	b.WriteString("\n")
}
