package docs

import (
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

type document struct {
	Paths       map[string]map[string]operation `json:"paths"`
	Definitions map[string]json.RawMessage      `json:"definitions"`
}

type operation struct {
	Summary   string                     `json:"summary"`
	Responses map[string]json.RawMessage `json:"responses"`
}

func readDocument(t *testing.T) (string, document) {
	t.Helper()
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc document
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	return raw, doc
}

func TestDoc_ReferencesResolve(t *testing.T) {
	raw, doc := readDocument(t)
	require.NotEmpty(t, doc.Definitions)

	refs := regexp.MustCompile(`"#/definitions/([\w.]+)"`).FindAllStringSubmatch(raw, -1)
	require.NotEmpty(t, refs)
	for _, m := range refs {
		assert.Contains(t, doc.Definitions, m[1])
	}
}

func TestDoc_OperationsDescribed(t *testing.T) {
	_, doc := readDocument(t)
	for path, ops := range doc.Paths {
		for method, op := range ops {
			assert.NotEmpty(t, op.Summary, "%s %s", method, path)
			assert.NotEmpty(t, op.Responses, "%s %s", method, path)
		}
	}

	assert.Contains(t, doc.Paths, "/tests/complete")
	assert.Contains(t, doc.Paths["/admin/questions"], "post")
}

func TestDoc_CompletedResultSchema(t *testing.T) {
	_, doc := readDocument(t)

	var def struct {
		Properties map[string]struct {
			Type string `json:"type"`
		} `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(doc.Definitions["dto.CompletedResultDTO"], &def))
	assert.Equal(t, "number", def.Properties["percentage"].Type)
	assert.Equal(t, "integer", def.Properties["score"].Type)

	var login struct {
		Required []string `json:"required"`
	}
	require.NoError(t, json.Unmarshal(doc.Definitions["dto.LoginRequest"], &login))
	assert.ElementsMatch(t, []string{"login", "password"}, login.Required)
	assert.False(t, strings.Contains(string(doc.Definitions["dto.UserDTO"]), "password"))
}
