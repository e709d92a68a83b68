package replica

import (
	"context"
	"coursesql/internal/domain/config"
	"coursesql/internal/domain/course"
	"database/sql"
	"fmt"
	"github.com/google/uuid"
	"regexp"

	_ "modernc.org/sqlite"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Replica is an in-memory SQLite copy of the target tables, attached under
// the same schema name the statements use.
type Replica struct {
	db     *sql.DB
	conn   *sql.Conn
	schema string
}

func Open(ctx context.Context, schema string) (*Replica, error) {
	if !identRe.MatchString(schema) {
		return nil, fmt.Errorf("replica: invalid schema name %q", schema)
	}
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open replica: %w", err)
	}
	db.SetMaxOpenConns(1)

	// ATTACH is per connection, so every statement runs on this one.
	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open replica: %w", err)
	}
	r := &Replica{db: db, conn: conn, schema: schema}

	stmts := []string{fmt.Sprintf(`ATTACH DATABASE ':memory:' AS "%s"`, schema)}
	for _, t := range tables {
		stmts = append(stmts, schemaSQL(t, schema))
	}
	for _, s := range stmts {
		if _, err := conn.ExecContext(ctx, s); err != nil {
			_ = r.Close()
			return nil, fmt.Errorf("create replica schema: %w", err)
		}
	}
	return r, nil
}

func (r *Replica) Close() error {
	if r.conn != nil {
		_ = r.conn.Close()
	}
	return r.db.Close()
}

// Seed inserts one unit for the course and every configured chapter,
// ordered by name.
func (r *Replica) Seed(ctx context.Context, courseID string, chapters config.ChapterIDs) error {
	unitID := uuid.NewString()
	if _, err := r.conn.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s.courses_units (id, course_id, unit_name, unit_order) VALUES (?, ?, ?, 1)", r.schema),
		unitID, courseID, "Replica unit"); err != nil {
		return fmt.Errorf("seed unit: %w", err)
	}
	for i, name := range chapters.Names() {
		if _, err := r.conn.ExecContext(ctx,
			fmt.Sprintf("INSERT INTO %s.courses_chapters (id, unit_id, chapter_name, chapter_order) VALUES (?, ?, ?, ?)", r.schema),
			chapters[name], unitID, name, i+1); err != nil {
			return fmt.Errorf("seed chapter %q: %w", name, err)
		}
	}
	return nil
}

// Exec runs one statement and returns the number of rows it changed.
func (r *Replica) Exec(ctx context.Context, stmt string) (int64, error) {
	res, err := r.conn.ExecContext(ctx, stmt)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// TopicIDs runs the topic id query and collects its result the way an
// operator would export it.
func (r *Replica) TopicIDs(ctx context.Context, query string) (map[course.TopicKey]string, error) {
	rows, err := r.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[course.TopicKey]string)
	for rows.Next() {
		var (
			id             int64
			topic, chapter string
			order          int
		)
		if err := rows.Scan(&id, &topic, &chapter, &order); err != nil {
			return nil, err
		}
		ids[course.TopicKey{Chapter: chapter, Topic: topic}] = fmt.Sprint(id)
	}
	return ids, rows.Err()
}

func (r *Replica) Count(ctx context.Context, table string) (int, error) {
	var n int
	err := r.conn.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s.%s", r.schema, table)).Scan(&n)
	return n, err
}

// LessonRow is a stored lesson with its topic resolved back to names.
type LessonRow struct {
	CourseID  string
	Title     string
	Code      string
	Slug      string
	ChapterID string
	Chapter   string
	Topic     string
	IsPreview bool
	Order     int
}

// Lessons lists stored lessons ordered by lesson code.
func (r *Replica) Lessons(ctx context.Context) ([]LessonRow, error) {
	q := fmt.Sprintf(`SELECT l.course_id, l.title, l.lesson_code, l.slug, l.chapter_id,
		c.chapter_name, t.topic_name, l.is_preview, l.lesson_order
		FROM %[1]s.courses_lessons l
		JOIN %[1]s.courses_topics t ON t.id = l.topic_id
		JOIN %[1]s.courses_chapters c ON c.id = t.chapter_id
		ORDER BY l.lesson_code`, r.schema)
	rows, err := r.conn.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LessonRow
	for rows.Next() {
		var l LessonRow
		if err := rows.Scan(&l.CourseID, &l.Title, &l.Code, &l.Slug, &l.ChapterID,
			&l.Chapter, &l.Topic, &l.IsPreview, &l.Order); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// LessonCodes returns the codes present in courses_lessons.
func (r *Replica) LessonCodes(ctx context.Context) (map[string]bool, error) {
	rows, err := r.conn.QueryContext(ctx, fmt.Sprintf("SELECT lesson_code FROM %s.courses_lessons", r.schema))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		out[code] = true
	}
	return out, rows.Err()
}
