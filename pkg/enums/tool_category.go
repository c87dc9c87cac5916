package enums

import "fmt"

// ToolCategory maps to tool_category_enum.
type ToolCategory string

const (
	ToolCategorySearch        ToolCategory = "SEARCH"
	ToolCategoryGeneration    ToolCategory = "GENERATION"
	ToolCategoryOperation     ToolCategory = "OPERATION"
	ToolCategoryDocuments     ToolCategory = "DOCUMENTS"
	ToolCategoryUtility       ToolCategory = "UTILITY"
	ToolCategoryKnowledgeBase ToolCategory = "KNOWLEDGE_BASE"
	ToolCategoryAmusement     ToolCategory = "AMUSEMENT"
)

var validToolCategories = []ToolCategory{
	ToolCategorySearch,
	ToolCategoryGeneration,
	ToolCategoryOperation,
	ToolCategoryDocuments,
	ToolCategoryUtility,
	ToolCategoryKnowledgeBase,
	ToolCategoryAmusement,
}

// String implements fmt.Stringer.
func (t ToolCategory) String() string {
	return string(t)
}

// IsValid reports whether the category is recognized.
func (t ToolCategory) IsValid() bool {
	for _, candidate := range validToolCategories {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseToolCategory converts raw input into a ToolCategory.
func ParseToolCategory(value string) (ToolCategory, error) {
	for _, candidate := range validToolCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid tool category %q", value)
}
