package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/invopop/jsonschema"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaBaseURL = "https://accounts.local/schemas/"

// compileSchema reflects v into a JSON Schema and compiles it.
func compileSchema(name string, v any) (*jschema.Schema, error) {
	r := jsonschema.Reflector{
		DoNotReference:            true,
		AllowAdditionalProperties: true,
	}
	s := r.Reflect(v)
	s.ID = jsonschema.ID(schemaBaseURL + name)

	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema %s: %w", name, err)
	}
	doc, err := jschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema %s: %w", name, err)
	}

	c := jschema.NewCompiler()
	if err := c.AddResource(schemaBaseURL+name, doc); err != nil {
		return nil, fmt.Errorf("failed to add schema resource %s: %w", name, err)
	}
	sch, err := c.Compile(schemaBaseURL + name)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
	}
	return sch, nil
}

type schemas struct {
	createUser *jschema.Schema
	updateUser *jschema.Schema
	tokens     *jschema.Schema
	refresh    *jschema.Schema
}

func compileSchemas() (*schemas, error) {
	var (
		s   schemas
		err error
	)
	if s.createUser, err = compileSchema("create-user.json", &createUserRequest{}); err != nil {
		return nil, err
	}
	if s.updateUser, err = compileSchema("update-user.json", &updateUserRequest{}); err != nil {
		return nil, err
	}
	if s.tokens, err = compileSchema("tokens.json", &tokensRequest{}); err != nil {
		return nil, err
	}
	if s.refresh, err = compileSchema("refresh.json", &refreshRequest{}); err != nil {
		return nil, err
	}
	return &s, nil
}

var errBodyTooLarge = errors.New("request body too large")

// decodeValid reads the body, validates it against sch and decodes it into dst.
func decodeValid(r *http.Request, sch *jschema.Schema, dst any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errBodyTooLarge
		}
		return fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	doc, err := jschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: malformed json: %v", common.ErrorValidation, err)
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	return nil
}
