package writer

import (
	"encoding/json"
	"fmt"

	"github.com/tuteke2023/bankparse/internal/models"
)

// JSON renders a statement as indented JSON.
func JSON(st *models.Statement) (string, error) {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return "", fmt.Errorf("json: marshal statement: %w", err)
	}
	return string(data), nil
}
