package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadDoc(t *testing.T) {
	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		BasePath    string                    `json:"basePath"`
		Paths       map[string]map[string]any `json:"paths"`
		Definitions map[string]any            `json:"definitions"`
	}
	require.NoError(t, json.Unmarshal([]byte(SwaggerInfo.ReadDoc()), &doc))

	assert.Equal(t, "Stormhead Comments API", doc.Info.Title)
	assert.Equal(t, "/api", doc.BasePath)
	assert.Contains(t, doc.Paths["/comments/{commentId}"], "get")
	assert.Contains(t, doc.Paths["/comments/{commentId}"], "delete")
	assert.Contains(t, doc.Definitions, "api.AccountView")
}
