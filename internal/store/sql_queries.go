// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Andrei Voronov

package store

import (
	sq "github.com/Masterminds/squirrel"
)

const queueTable = "sync_queue"

// queueColumns is the scan order used by every queue SELECT.
var queueColumns = []string{
	"op_id",
	"origin_device_id",
	"collection",
	"document_id",
	"op_type",
	"priority",
	"payload",
	"ts",
	"attempts",
}

// qb is the shared statement builder for the SQLite queue database.
// SQLite uses ? placeholders.
var qb = sq.StatementBuilder.PlaceholderFormat(sq.Question)

func buildEnqueueQuery(opID, deviceID, collection, documentID, opType, priority, payload string, ts any) (string, []any, error) {
	return qb.Insert(queueTable).
		Columns(queueColumns...).
		Values(opID, deviceID, collection, documentID, opType, priority, payload, ts, 0).
		ToSql()
}

func buildListQuery(deviceID string) (string, []any, error) {
	return qb.Select(queueColumns...).
		From(queueTable).
		Where(sq.Eq{"origin_device_id": deviceID}).
		OrderBy("seq ASC").
		ToSql()
}

func buildPeekQuery(deviceID string) (string, []any, error) {
	return qb.Select(queueColumns...).
		From(queueTable).
		Where(sq.Eq{"origin_device_id": deviceID}).
		OrderBy("seq ASC").
		Limit(1).
		ToSql()
}

func buildRemoveQuery(opID string) (string, []any, error) {
	return qb.Delete(queueTable).
		Where(sq.Eq{"op_id": opID}).
		ToSql()
}

func buildIncrementAttemptsQuery(opID string) (string, []any, error) {
	return qb.Update(queueTable).
		Set("attempts", sq.Expr("attempts + 1")).
		Where(sq.Eq{"op_id": opID}).
		Suffix("RETURNING attempts").
		ToSql()
}

func buildLenQuery(deviceID string) (string, []any, error) {
	return qb.Select("COUNT(*)").
		From(queueTable).
		Where(sq.Eq{"origin_device_id": deviceID}).
		ToSql()
}
