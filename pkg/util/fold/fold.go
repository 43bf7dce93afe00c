/*
 * Copyright 2020-2021 by Nedim Sabic Sabic
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

// Package fold provides Unicode-aware case-insensitive string comparisons.
package fold

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// String returns the case-folded form of the string.
func String(s string) string { return cases.Fold().String(s) }

// Lower returns the lowercased string.
func Lower(s string) string { return cases.Lower(language.Und).String(s) }

// Equal reports whether the strings are equal under case folding.
func Equal(a, b string) bool { return String(a) == String(b) }

// Contains reports whether substr is within s under case folding.
func Contains(s, substr string) bool { return strings.Contains(String(s), String(substr)) }
