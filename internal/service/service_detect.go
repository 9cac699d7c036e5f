// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Andrei Voronov

package service

import (
	"reflect"
	"strings"
	"time"

	"github.com/avoronov/kinsync/internal/config"
	"github.com/avoronov/kinsync/internal/logger"
	"github.com/avoronov/kinsync/internal/utils"
	"github.com/avoronov/kinsync/models"
)

// Collections with dedicated detection rules. Any other collection falls
// back to generic change detection.
const (
	CollectionRelationships = "relationships"
	CollectionInteractions  = "interactions"
)

// documentSensitiveFields are the fields whose divergence between two
// versions of a relationship document constitutes a conflict.
var documentSensitiveFields = []string{
	models.FieldRelationshipHealth,
	models.FieldLastContact,
	models.FieldNotes,
	models.FieldRelationshipIntensity,
}

type conflictDetector struct {
	documentWindow    time.Duration
	interactionWindow time.Duration

	uuid *utils.UUIDGenerator
	now  func() time.Time

	logger *logger.Logger
}

// NewConflictDetector constructs a [ConflictDetector] with the conflict
// windows from cfg.
func NewConflictDetector(cfg config.Sync, uuid *utils.UUIDGenerator, logger *logger.Logger) ConflictDetector {
	return &conflictDetector{
		documentWindow:    cfg.DocumentWindow,
		interactionWindow: cfg.InteractionWindow,
		uuid:              uuid,
		now:               time.Now,
		logger:            logger,
	}
}

// Detect implements [ConflictDetector].
//
// Two writes are concurrent when their timestamps fall within the conflict
// window for the document's collection. Outside the window the newer write
// is assumed sequential and no conflict is reported. Detection fails open:
// malformed input never blocks a legitimate write.
func (d *conflictDetector) Detect(path, originDeviceID string, local, server models.Snapshot, localTS, serverTS time.Time) (models.ConflictRecord, bool) {
	if local == nil || server == nil || localTS.IsZero() || serverTS.IsZero() {
		d.logger.Warn().
			Str("func", "conflictDetector.Detect").
			Str("path", path).
			Msg("malformed detection input, treating as no conflict")
		return models.ConflictRecord{}, false
	}

	collection := collectionOf(path)
	window := d.documentWindow
	if collection == CollectionInteractions {
		window = d.interactionWindow
	}

	timeDiff := localTS.Sub(serverTS)
	if timeDiff < 0 {
		timeDiff = -timeDiff
	}
	if timeDiff > window {
		return models.ConflictRecord{}, false
	}

	conflictType, ok := d.classify(collection, local, server)
	if !ok {
		return models.ConflictRecord{}, false
	}

	return models.ConflictRecord{
		ID:              d.uuid.Generate(),
		DocumentPath:    path,
		ConflictType:    conflictType,
		OriginDeviceID:  originDeviceID,
		DetectedAt:      d.now(),
		LocalVersion:    local.Clone(),
		ServerVersion:   server.Clone(),
		LocalTimestamp:  localTS,
		ServerTimestamp: serverTS,
		Status:          models.ConflictPending,
	}, true
}

// classify picks the conflict type from the shape of the record and the set
// of sensitive fields that differ. An empty difference set means no
// conflict.
func (d *conflictDetector) classify(collection string, local, server models.Snapshot) (models.ConflictType, bool) {
	if collection == CollectionInteractions {
		// Concurrently logged interactions of the same type are both
		// true events, not contradictory edits. They go straight to
		// the merge path. Different types are distinct events and no
		// conflict at all.
		localType := local.String(models.FieldInteractionType)
		serverType := server.String(models.FieldInteractionType)
		if localType != "" && localType == serverType {
			return models.ConflictInteractionMerge, true
		}
		return "", false
	}

	if collection == CollectionRelationships {
		diff := differingFields(local, server, documentSensitiveFields)
		switch {
		case len(diff) == 0:
			return "", false
		case len(diff) == 1 && diff[0] == models.FieldRelationshipHealth:
			return models.ConflictRelationshipHealth, true
		default:
			return models.ConflictRelationshipData, true
		}
	}

	// Generic collections: any differing field within the window counts.
	if snapshotsDiffer(local, server) {
		return models.ConflictSync, true
	}

	return "", false
}

func collectionOf(path string) string {
	if i := strings.Index(path, "/"); i >= 0 {
		return path[:i]
	}
	return path
}

func differingFields(local, server models.Snapshot, fields []string) []string {
	var diff []string
	for _, f := range fields {
		lv, lok := local[f]
		sv, sok := server[f]
		if lok != sok || (lok && !valuesEqual(lv, sv)) {
			diff = append(diff, f)
		}
	}
	return diff
}

func snapshotsDiffer(local, server models.Snapshot) bool {
	for k, lv := range local {
		sv, ok := server[k]
		if !ok || !valuesEqual(lv, sv) {
			return true
		}
	}
	for k := range server {
		if _, ok := local[k]; !ok {
			return true
		}
	}
	return false
}

// valuesEqual compares snapshot values through their canonical forms so
// that numbers decoded as float64 compare equal to ints, and times compare
// equal to their RFC 3339 encodings.
func valuesEqual(a, b any) bool {
	if an, aok := numeric(a); aok {
		bn, bok := numeric(b)
		return bok && an == bn
	}
	if at, aok := timeValue(a); aok {
		bt, bok := timeValue(b)
		return bok && at.Equal(bt)
	}
	// Snapshots may hold nested maps; == would panic on those.
	return reflect.DeepEqual(a, b)
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func timeValue(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	}
	return time.Time{}, false
}
