/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package editor binds a styled-run text buffer to the plain-text mirror and
// RTF blob of a note, and implements list auto-formatting and trait toggles
// on top of it.
//
// TextView stands in for the platform text widget: it owns the buffer, the
// selection and the typing attributes, consults a Delegate before inserting
// text, and records compound edits for undo. Adapter is that delegate for a
// note; Session wraps an Adapter with the note's working copy.
//
// None of the types in this package are safe for concurrent use. They are
// owned by the UI goroutine.
package editor
