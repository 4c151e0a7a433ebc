/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package telemetry

// Event names and helpers used by the CLI. Properties carry kinds and counts
// only, never search text, file names or element content.
const (
	EvCommand        = "command"
	EvProjectsFilter = "projects_filtered"
	EvElementCreated = "element_created"
	EvDesignExported = "design_exported"
)

// Command records which CLI command ran.
func Command(name string) { Event(EvCommand, map[string]any{"command": name}) }

// ProjectsFiltered records which filter kinds were active and how many results came back.
func ProjectsFiltered(active []string, results int) {
	Event(EvProjectsFilter, map[string]any{"filters": active, "results": results})
}

// ElementCreated records the type of a newly placed element.
func ElementCreated(kind string) { Event(EvElementCreated, map[string]any{"type": kind}) }

// DesignExported records format and device of an export.
func DesignExported(format, device string) {
	Event(EvDesignExported, map[string]any{"format": format, "device": device})
}
