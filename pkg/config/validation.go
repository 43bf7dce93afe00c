/*
 * Copyright 2019-2020 by Nedim Sabic Sabic
 * https://www.fibratus.io
 * All Rights Reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

var schemaLoader = gojsonschema.NewStringLoader(schema)

// validate checks the config document against the schema. It returns
// the violations prefixed with the offending property.
func validate(doc interface{}) (bool, []error) {
	normalized, err := stringKeys(doc, nil)
	if err != nil {
		return false, []error{errors.Wrap(err, "fail to normalize config keys")}
	}
	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(normalized))
	if err != nil {
		return false, []error{errors.Wrap(err, "fail to validate config through schema")}
	}
	violations := make([]error, 0, len(res.Errors()))
	for _, desc := range res.Errors() {
		violations = append(violations, fmt.Errorf("%s: %s", desc.Field(), desc.Description()))
	}
	return res.Valid(), violations
}

// stringKeys rewrites the maps nested in the document to have string keys.
// The YAML decoder produces interface keyed maps the validator can't walk.
func stringKeys(v interface{}, path []string) (interface{}, error) {
	switch doc := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(doc))
		for k, val := range doc {
			conv, err := stringKeys(val, append(path, k))
			if err != nil {
				return nil, err
			}
			out[k] = conv
		}
		return out, nil
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(doc))
		for k, val := range doc {
			key, ok := k.(string)
			if !ok {
				return nil, errors.Errorf("non-string key %#v at %q", k, strings.Join(path, "."))
			}
			conv, err := stringKeys(val, append(path, key))
			if err != nil {
				return nil, err
			}
			out[key] = conv
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(doc))
		for i, val := range doc {
			conv, err := stringKeys(val, append(path, fmt.Sprintf("[%d]", i)))
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		return out, nil
	default:
		return v, nil
	}
}
