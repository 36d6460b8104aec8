package lib

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/qri-io/jsonschema"
)

const uuidPattern = "^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$"

// ValidateJSON validates a JSON raw message against a given JSON schema.
// It returns a list of validation errors if the JSON is invalid.
func ValidateJSON(content json.RawMessage, schemaString string) ([]jsonschema.KeyError, error) {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(schemaString), rs); err != nil {
		return nil, err
	}

	return rs.ValidateBytes(context.Background(), content)
}

// Validate runs ValidateJSON and folds the result into an InvalidArgument error.
func Validate(content json.RawMessage, schemaString string) error {
	keyErrors, err := ValidateJSON(content, schemaString)
	if err != nil {
		return InvalidArgumentError("malformed request body")
	}
	if len(keyErrors) == 0 {
		return nil
	}

	messages := make([]string, 0, len(keyErrors))
	for _, keyError := range keyErrors {
		messages = append(messages, keyError.Error())
	}
	return InvalidArgumentError(strings.Join(messages, "; "))
}

func CreateCommentSchema() string {
	return `{
		"type": "object",
		"properties": {
			"content": {"type": "string", "minLength": 1, "maxLength": 10000},
			"postId": {"type": "string", "pattern": "` + uuidPattern + `"},
			"commentId": {"type": "string", "pattern": "` + uuidPattern + `"}
		},
		"required": ["content"]
	}`
}

func LikeCommentSchema() string {
	return `{
		"type": "object",
		"properties": {
			"commentId": {"type": "string", "pattern": "` + uuidPattern + `"}
		},
		"required": ["commentId"]
	}`
}
