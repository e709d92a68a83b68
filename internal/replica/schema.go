package replica

import "strings"

// tables recreates the target tables inside the attached schema. {s} is
// replaced by the schema name.
var tables = []string{
	`CREATE TABLE {s}.courses_units (
		id TEXT PRIMARY KEY,
		course_id TEXT NOT NULL,
		unit_name TEXT NOT NULL,
		unit_order INTEGER NOT NULL
	)`,

	`CREATE TABLE {s}.courses_chapters (
		id TEXT PRIMARY KEY,
		unit_id TEXT NOT NULL,
		chapter_name TEXT NOT NULL,
		chapter_order INTEGER NOT NULL
	)`,

	`CREATE TABLE {s}.courses_topics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		chapter_id TEXT NOT NULL,
		topic_name TEXT NOT NULL,
		topic_number TEXT NOT NULL,
		topic_order INTEGER NOT NULL,
		UNIQUE (chapter_id, topic_name)
	)`,

	`CREATE TABLE {s}.courses_lessons (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		course_id TEXT NOT NULL,
		title TEXT NOT NULL,
		lesson_code TEXT NOT NULL UNIQUE,
		slug TEXT NOT NULL,
		chapter_id TEXT NOT NULL,
		topic_id INTEGER NOT NULL,
		is_preview BOOLEAN NOT NULL DEFAULT FALSE,
		lesson_order INTEGER NOT NULL
	)`,

	`CREATE TABLE {s}.lesson_tags (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		lesson_id INTEGER NOT NULL,
		tag_name TEXT NOT NULL
	)`,
}

func schemaSQL(stmt, schema string) string {
	return strings.ReplaceAll(stmt, "{s}", schema)
}
