// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package dataset

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/tomtom215/scoutpersona/internal/models"
)

// Default output file names inside the output directory.
const (
	PersonaFile        = "user_persona.json"
	ProfileFile        = "target_profile.json"
	RecommendationFile = "recommendations.json"
	DemandFile         = "recommendation_demands.json"
	TaskFile           = "virtual_tasks.json"
)

// ReadRecords decodes a JSON file holding either a bare array of objects or
// an object whose first present key among keys holds that array.
func ReadRecords(path string, keys ...string) ([]models.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []models.Record
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return records, nil
	}

	var wrapper models.Record
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	for _, k := range keys {
		if _, ok := wrapper[k]; ok {
			return wrapper.Records(k), nil
		}
	}
	return nil, fmt.Errorf("%w: %s has none of the keys %v", models.ErrInvalidRecord, path, keys)
}

// LoadTargets reads and normalises the target file.
func LoadTargets(path string) ([]models.Target, error) {
	records, err := ReadRecords(path, "targets", "target_list", "data")
	if err != nil {
		return nil, err
	}
	targets, err := models.TargetsFromRecords(records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return targets, nil
}

// LoadMissions reads and normalises the mission file.
func LoadMissions(path string) ([]models.Mission, error) {
	records, err := ReadRecords(path, "missions", "mission_list", "data")
	if err != nil {
		return nil, err
	}
	missions, err := models.MissionsFromRecords(records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return missions, nil
}

// LoadTasks reads the virtual task catalogue.
func LoadTasks(path string) ([]models.VirtualTask, error) {
	records, err := ReadRecords(path, "virtual_tasks", "tasks")
	if err != nil {
		return nil, err
	}
	tasks, err := models.VirtualTasksFromRecords(records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tasks, nil
}

// LoadPersonas reads a persona document written by WriteJSON.
func LoadPersonas(path string) (models.PersonaDocument, error) {
	var doc models.PersonaDocument
	err := readDocument(path, &doc)
	return doc, err
}

// LoadProfiles reads a profile document written by WriteJSON.
func LoadProfiles(path string) (models.ProfileDocument, error) {
	var doc models.ProfileDocument
	err := readDocument(path, &doc)
	return doc, err
}

func readDocument(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// WriteJSON writes v as indented UTF-8 JSON. The file is written to a
// temporary sibling first and renamed into place, so readers never see a
// partial document.
func WriteJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
