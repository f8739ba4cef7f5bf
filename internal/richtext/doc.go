/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package richtext holds the styled-run document model used by the note editor
// and its RTF serialization.
//
// A Document is an immutable, normalized sequence of runs: no run is empty and
// no two neighbours share a style. Every offset is a rune offset, never a byte
// offset. Edits return a new Document and leave the receiver untouched, which
// lets the edit history keep slices of older documents without copying.
package richtext
