/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage implements drawing persistence and export history.
// It handles create/open/save for the canonical JSON manifest (drawing.json) with transactional writes and timestamped backups.
// It also manages the per-drawing SQLite index at <drawing>/.ldr/index.sqlite that records every delivered export.
// The index only holds history; deleting it loses nothing the drawing needs.
package storage
