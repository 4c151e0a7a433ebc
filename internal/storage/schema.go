/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

//go:embed schema/design.schema.json
var designSchemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func designSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(designSchemaJSON))
	})
	return schema, schemaErr
}

// DesignSchema returns the raw JSON Schema of design files.
func DesignSchema() []byte { return append([]byte(nil), designSchemaJSON...) }

// ValidationError lists the schema violations of a design document.
type ValidationError struct{ Problems []string }

func (e *ValidationError) Error() string {
	return "design does not conform to schema: " + strings.Join(e.Problems, "; ")
}

// ValidateDesignJSON checks b against the embedded design schema.
func ValidateDesignJSON(b []byte) error {
	s, err := designSchema()
	if err != nil {
		return fmt.Errorf("load design schema: %w", err)
	}
	res, err := s.Validate(gojsonschema.NewBytesLoader(b))
	if err != nil {
		return fmt.Errorf("validate design: %w", err)
	}
	if res.Valid() {
		return nil
	}
	ve := &ValidationError{}
	for _, e := range res.Errors() {
		ve.Problems = append(ve.Problems, e.String())
	}
	return ve
}
