/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package storage persists canvas designs and keeps a per-workspace SQLite index.
// Design files are human-readable JSON written transactionally, with timestamped
// backups in a backups/ folder next to the file. The index at
// <workspace>/.ims/index.sqlite mirrors the project catalog for SQL search and
// caches design snapshots and preview thumbnails; it is disposable and rebuildable.
package storage
