// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

/*
Package models defines the data structures shared by every pipeline stage.

Input records:

  - Mission: one historical reconnaissance request, tied to a target
  - Target: a physical target with groups and a trajectory
  - VirtualTask: a candidate task offered to requesters, with scout nodes

Derived documents:

  - UserPersona: ranked preference tags of one requester (UserKey)
  - TargetProfile: ranked characteristic tags of one target

Raw JSON records arrive with snake_case or camelCase keys and loosely typed
values ("3", 3, 3.0). MissionFromRecord, TargetFromRecord and
VirtualTaskFromRecord are the only places that deal with that; everything
downstream works on typed fields.

Tag entries are typed per dimension and ordered by descending count with a
lexicographic tie-break on the label. Composite labels (type and category,
topic and group, the scout scenario) are comparable structs so they can be
used directly as map keys.
*/
package models
