package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/becalab/becamap/internal/models"
)

// ErrDuplicateID is returned by CreateScholarship when the generated id
// collided with a concurrently created record. Callers regenerate and retry.
var ErrDuplicateID = errors.New("scholarship id already exists")

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

type ListParams struct {
	Search     string // substring match on beca_nombre or universidad
	Country    string
	Estado     string
	Nivel      string
	Validation string // active, broken_link, pending
	Limit      int
	Offset     int
}

type ListResult struct {
	Scholarships []models.Scholarship `json:"scholarships"`
	Total        int                  `json:"total"`
	Limit        int                  `json:"limit"`
	Offset       int                  `json:"offset"`
}

// selectCols is the full column list shared by all scholarship queries.
const selectCols = `id, pais, region, beca_nombre, universidad, nivel,
	excelencia, mujeres, area, disciplina, carrera, excepciones,
	modalidad, idioma, cooperante, nacionalidad, beneficios, requisitos,
	siguiente_deadline, ultima_deadline, estado, adicional,
	url_origen, url_status, url_last_checked, status_validacion,
	created_at, updated_at`

func scanScholarship(scan func(dest ...interface{}) error) (models.Scholarship, error) {
	var s models.Scholarship
	var urlStatus *string

	err := scan(
		&s.ID, &s.Country, &s.Region, &s.Name, &s.University, &s.Level,
		&s.Excellence, &s.WomenOnly, &s.Area, &s.Discipline, &s.Career, &s.Exceptions,
		&s.Modality, &s.Language, &s.Cooperator, &s.Nationality, &s.Benefits, &s.Requirements,
		&s.NextDeadline, &s.FinalDeadline, &s.State, &s.AdditionalInfo,
		&s.SourceURL, &urlStatus, &s.URLLastChecked, &s.ValidationStatus,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return s, err
	}

	if urlStatus != nil {
		s.URLStatus = *urlStatus
	}

	return s, nil
}

func (s *Store) ListScholarships(ctx context.Context, params ListParams) (*ListResult, error) {
	where := "WHERE 1=1"
	var args []interface{}
	argIdx := 1

	if params.Search != "" {
		where += fmt.Sprintf(" AND (beca_nombre ILIKE '%%' || $%d || '%%' OR universidad ILIKE '%%' || $%d || '%%')", argIdx, argIdx)
		args = append(args, params.Search)
		argIdx++
	}
	if params.Country != "" {
		where += fmt.Sprintf(" AND pais = $%d", argIdx)
		args = append(args, params.Country)
		argIdx++
	}
	if params.Estado != "" {
		where += fmt.Sprintf(" AND estado = $%d", argIdx)
		args = append(args, params.Estado)
		argIdx++
	}
	if params.Nivel != "" {
		where += fmt.Sprintf(" AND nivel = $%d", argIdx)
		args = append(args, params.Nivel)
		argIdx++
	}
	if params.Validation != "" {
		where += fmt.Sprintf(" AND status_validacion = $%d", argIdx)
		args = append(args, params.Validation)
		argIdx++
	}

	var total int
	countSQL := "SELECT COUNT(*) FROM scholarships_master " + where
	if err := s.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count failed: %w", err)
	}

	selectSQL := fmt.Sprintf("SELECT %s FROM scholarships_master %s ORDER BY pais ASC, nivel ASC, id ASC", selectCols, where)

	if params.Limit > 0 {
		selectSQL += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
		args = append(args, params.Limit, params.Offset)
	}

	rows, err := s.pool.Query(ctx, selectSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var items []models.Scholarship
	for rows.Next() {
		sch, err := scanScholarship(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		items = append(items, sch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	if items == nil {
		items = []models.Scholarship{}
	}

	return &ListResult{
		Scholarships: items,
		Total:        total,
		Limit:        params.Limit,
		Offset:       params.Offset,
	}, nil
}

func (s *Store) GetScholarship(ctx context.Context, id string) (*models.Scholarship, error) {
	sql := fmt.Sprintf("SELECT %s FROM scholarships_master WHERE id = $1", selectCols)
	row := s.pool.QueryRow(ctx, sql, id)

	sch, err := scanScholarship(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("not found: %w", err)
	}

	return &sch, nil
}

func (s *Store) CreateScholarship(ctx context.Context, sch *models.Scholarship) error {
	if sch.State == "" {
		sch.State = "Por confirmar"
	}
	if sch.ValidationStatus == "" {
		sch.ValidationStatus = models.ValidationPending
	}

	var urlStatus *string
	if sch.URLStatus != "" {
		urlStatus = &sch.URLStatus
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO scholarships_master (
			id, pais, region, beca_nombre, universidad, nivel,
			excelencia, mujeres, area, disciplina, carrera, excepciones,
			modalidad, idioma, cooperante, nacionalidad, beneficios, requisitos,
			siguiente_deadline, ultima_deadline, estado, adicional,
			url_origen, url_status, url_last_checked, status_validacion
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26
		)
	`,
		sch.ID, sch.Country, sch.Region, sch.Name, sch.University, sch.Level,
		sch.Excellence, sch.WomenOnly, sch.Area, sch.Discipline, sch.Career, sch.Exceptions,
		sch.Modality, sch.Language, sch.Cooperator, sch.Nationality, sch.Benefits, sch.Requirements,
		sch.NextDeadline, sch.FinalDeadline, sch.State, sch.AdditionalInfo,
		sch.SourceURL, urlStatus, sch.URLLastChecked, sch.ValidationStatus,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateID
		}
		return fmt.Errorf("insert failed: %w", err)
	}

	return nil
}

func (s *Store) UpdateScholarship(ctx context.Context, sch *models.Scholarship) error {
	var urlStatus *string
	if sch.URLStatus != "" {
		urlStatus = &sch.URLStatus
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE scholarships_master SET
			pais = $2, region = $3, beca_nombre = $4, universidad = $5, nivel = $6,
			excelencia = $7, mujeres = $8, area = $9, disciplina = $10, carrera = $11,
			excepciones = $12, modalidad = $13, idioma = $14, cooperante = $15,
			nacionalidad = $16, beneficios = $17, requisitos = $18,
			siguiente_deadline = $19, ultima_deadline = $20, estado = $21, adicional = $22,
			url_origen = $23, url_status = $24, url_last_checked = $25,
			status_validacion = $26, updated_at = NOW()
		WHERE id = $1
	`,
		sch.ID, sch.Country, sch.Region, sch.Name, sch.University, sch.Level,
		sch.Excellence, sch.WomenOnly, sch.Area, sch.Discipline, sch.Career,
		sch.Exceptions, sch.Modality, sch.Language, sch.Cooperator,
		sch.Nationality, sch.Benefits, sch.Requirements,
		sch.NextDeadline, sch.FinalDeadline, sch.State, sch.AdditionalInfo,
		sch.SourceURL, urlStatus, sch.URLLastChecked, sch.ValidationStatus,
	)
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no scholarship with id %s", sch.ID)
	}

	return nil
}

func (s *Store) DeleteScholarship(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM scholarships_master WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no scholarship with id %s", id)
	}
	return nil
}

// MaxIDForPrefix returns the lexicographically greatest id starting with
// prefix, or "" when no record matches. Backs sequential id generation.
func (s *Store) MaxIDForPrefix(ctx context.Context, prefix string) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx, `
		SELECT id FROM scholarships_master
		WHERE id LIKE $1 || '%'
		ORDER BY id DESC
		LIMIT 1
	`, prefix).Scan(&id)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("max id query failed: %w", err)
	}
	return id, nil
}

// Bulk rewriter backing queries. All three return matches ordered by id.

func (s *Store) SearchByName(ctx context.Context, substring string) ([]models.Scholarship, error) {
	sql := fmt.Sprintf(`SELECT %s FROM scholarships_master WHERE beca_nombre ILIKE '%%' || $1 || '%%' ORDER BY id`, selectCols)
	return s.queryScholarships(ctx, sql, substring)
}

func (s *Store) SearchByIDs(ctx context.Context, ids []string) ([]models.Scholarship, error) {
	sql := fmt.Sprintf("SELECT %s FROM scholarships_master WHERE id = ANY($1) ORDER BY id", selectCols)
	return s.queryScholarships(ctx, sql, ids)
}

func (s *Store) SearchByURL(ctx context.Context, exact string) ([]models.Scholarship, error) {
	sql := fmt.Sprintf("SELECT %s FROM scholarships_master WHERE url_origen = $1 ORDER BY id", selectCols)
	return s.queryScholarships(ctx, sql, exact)
}

func (s *Store) queryScholarships(ctx context.Context, sql string, args ...interface{}) ([]models.Scholarship, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var items []models.Scholarship
	for rows.Next() {
		sch, err := scanScholarship(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		items = append(items, sch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return items, nil
}

// BulkUpdateURL rewrites url_origen for every id in one statement. The
// store's in-list filter is the only batching primitive used here.
func (s *Store) BulkUpdateURL(ctx context.Context, ids []string, newURL string, checkedAt time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE scholarships_master SET
			url_origen = $2,
			url_status = 'working',
			url_last_checked = $3,
			updated_at = NOW()
		WHERE id = ANY($1)
	`, ids, newURL, checkedAt)
	if err != nil {
		return 0, fmt.Errorf("bulk url update failed: %w", err)
	}
	return tag.RowsAffected(), nil
}

// InsertDeadlineUpdates appends audit entries. This runs after (and outside
// any transaction with) the mutation it records; see bulkedit.Rewriter.
func (s *Store) InsertDeadlineUpdates(ctx context.Context, entries []models.DeadlineUpdate) error {
	if len(entries) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		// A zero ChangedAt would sort the entry into year one; default
		// it here the same way estado defaults on create.
		if e.ChangedAt.IsZero() {
			e.ChangedAt = time.Now()
		}
		batch.Queue(`
			INSERT INTO deadline_updates (scholarship_id, field_changed, old_value, new_value, notes, changed_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, e.ScholarshipID, e.FieldChanged, e.OldValue, e.NewValue, e.Notes, e.ChangedAt)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range entries {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("audit insert failed: %w", err)
		}
	}

	return nil
}

func (s *Store) ListDeadlineUpdates(ctx context.Context, limit int) ([]models.DeadlineUpdate, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, scholarship_id, field_changed, old_value, new_value, notes, changed_at
		FROM deadline_updates
		ORDER BY changed_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var entries []models.DeadlineUpdate
	for rows.Next() {
		var e models.DeadlineUpdate
		if err := rows.Scan(&e.ID, &e.ScholarshipID, &e.FieldChanged, &e.OldValue, &e.NewValue, &e.Notes, &e.ChangedAt); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Auto-repair backing queries.

func (s *Store) ListBrokenOrUnchecked(ctx context.Context, limit int) ([]models.Scholarship, error) {
	sql := fmt.Sprintf(`
		SELECT %s FROM scholarships_master
		WHERE url_status = 'broken' OR url_status IS NULL
		ORDER BY id
		LIMIT $1
	`, selectCols)
	return s.queryScholarships(ctx, sql, limit)
}

func (s *Store) MarkURLStatus(ctx context.Context, id, status string, checkedAt time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE scholarships_master SET
			url_status = $2,
			url_last_checked = $3,
			updated_at = NOW()
		WHERE id = $1
	`, id, status, checkedAt)
	if err != nil {
		return fmt.Errorf("status update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no scholarship with id %s", id)
	}
	return nil
}

func (s *Store) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var total int
	s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM scholarships_master").Scan(&total)
	stats["total"] = total

	var countries int
	s.pool.QueryRow(ctx, "SELECT COUNT(DISTINCT pais) FROM scholarships_master").Scan(&countries)
	stats["countries"] = countries

	var working, broken, unchecked int
	s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM scholarships_master WHERE url_status = 'working'").Scan(&working)
	s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM scholarships_master WHERE url_status = 'broken'").Scan(&broken)
	s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM scholarships_master WHERE url_status IS NULL").Scan(&unchecked)
	stats["url_working"] = working
	stats["url_broken"] = broken
	stats["url_unchecked"] = unchecked

	validationCounts := map[string]int{}
	rows, err := s.pool.Query(ctx, "SELECT status_validacion, COUNT(*) FROM scholarships_master GROUP BY status_validacion")
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var status string
			var count int
			if scanErr := rows.Scan(&status, &count); scanErr == nil {
				validationCounts[status] = count
			}
		}
	}
	stats["validation_counts"] = validationCounts

	return stats, nil
}

// Levels returns the distinct nivel values currently in use, for the
// dashboard filter dropdown.
func (s *Store) Levels(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, "SELECT DISTINCT nivel FROM scholarships_master WHERE nivel != '' ORDER BY nivel")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var levels []string
	for rows.Next() {
		var lvl string
		if err := rows.Scan(&lvl); err == nil {
			levels = append(levels, lvl)
		}
	}
	return levels, nil
}
