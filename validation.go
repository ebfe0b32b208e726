package main

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

const schemaBaseURL = "https://clicker.local/schemas/"

type requestSchemas struct {
	register *jsonschema.Schema
	save     *jsonschema.Schema
}

func loadRequestSchemas() (*requestSchemas, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft7

	compile := func(name string) (*jsonschema.Schema, error) {
		raw, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			return nil, err
		}
		if err := c.AddResource(schemaBaseURL+name, bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("schema %s: %w", name, err)
		}
		s, err := c.Compile(schemaBaseURL + name)
		if err != nil {
			return nil, fmt.Errorf("schema %s: %w", name, err)
		}
		return s, nil
	}

	register, err := compile("register.schema.json")
	if err != nil {
		return nil, err
	}
	save, err := compile("save.schema.json")
	if err != nil {
		return nil, err
	}
	return &requestSchemas{register: register, save: save}, nil
}

// validateBody checks raw JSON against s. The error text is safe to return
// to the caller.
func validateBody(s *jsonschema.Schema, raw []byte) error {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("malformed JSON")
	}
	if err := s.Validate(doc); err != nil {
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			return fmt.Errorf("%s", leafMessage(ve))
		}
		return err
	}
	return nil
}

func leafMessage(ve *jsonschema.ValidationError) string {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := ve.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return loc + ": " + ve.Message
}

func isValidPlayerID(playerID string) bool {
	if playerID == "" || len(playerID) > 64 {
		return false
	}

	for _, r := range playerID {
		if r == '-' || r == '_' {
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		return false
	}

	return true
}

var nicknamePolicy = bluemonday.StrictPolicy()

const maxSanitizePasses = 8

// sanitizeNickname drops any markup, since nicknames end up in other
// players' leaderboards. Entities are decoded and the result sanitized
// again until it no longer changes, so escaped tags cannot survive.
// Input that never settles is dropped.
func sanitizeNickname(nickname string) string {
	cur := strings.TrimSpace(nickname)
	for i := 0; i < maxSanitizePasses; i++ {
		next := strings.TrimSpace(html.UnescapeString(nicknamePolicy.Sanitize(cur)))
		if next == cur {
			return cur
		}
		cur = next
	}
	return ""
}
