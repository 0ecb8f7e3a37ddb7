//go:build integration

package db

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/becalab/becamap/internal/models"
)

type StoreIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *postgres.PostgresContainer
	pool      *pgxpool.Pool
	store     *Store
}

func (s *StoreIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("becamap_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	connStr, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	pool, err := pgxpool.New(s.ctx, connStr)
	s.Require().NoError(err)
	s.pool = pool

	s.Require().NoError(ApplyMigrations(s.ctx, pool))
	s.store = NewStore(pool)
}

func (s *StoreIntegrationSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *StoreIntegrationSuite) SetupTest() {
	_, _ = s.pool.Exec(s.ctx, "DELETE FROM deadline_updates")
	_, _ = s.pool.Exec(s.ctx, "DELETE FROM becacontent_matrix")
	_, _ = s.pool.Exec(s.ctx, "DELETE FROM notifications")
	_, _ = s.pool.Exec(s.ctx, "DELETE FROM scholarships_master")
}

func TestStoreIntegrationSuite(t *testing.T) {
	suite.Run(t, new(StoreIntegrationSuite))
}

func (s *StoreIntegrationSuite) mustCreate(sch models.Scholarship) models.Scholarship {
	s.Require().NoError(s.store.CreateScholarship(s.ctx, &sch))
	return sch
}

func (s *StoreIntegrationSuite) TestCreateAndGet() {
	s.mustCreate(models.Scholarship{
		ID: "NL-01", Country: "Países Bajos", Region: "Europa",
		Name: "Amsterdam Excellence Scholarship", University: "UvA",
		Level: "Maestría", Excellence: true,
		Benefits:  "Matrícula completa",
		SourceURL: "https://uva.example/aes",
	})

	got, err := s.store.GetScholarship(s.ctx, "NL-01")
	s.Require().NoError(err)
	s.Equal("Amsterdam Excellence Scholarship", got.Name)
	s.Equal("Países Bajos", got.Country)
	s.True(got.Excellence)
	s.Empty(got.URLStatus, "url_status starts unset")
	s.Equal("pending", got.ValidationStatus)
	s.Equal("Por confirmar", got.State)
	s.False(got.CreatedAt.IsZero())
}

func (s *StoreIntegrationSuite) TestCreateDuplicateID() {
	s.mustCreate(models.Scholarship{ID: "NL-01", Country: "Países Bajos", Name: "Primera"})

	err := s.store.CreateScholarship(s.ctx, &models.Scholarship{
		ID: "NL-01", Country: "Países Bajos", Name: "Segunda",
	})
	s.ErrorIs(err, ErrDuplicateID)
}

func (s *StoreIntegrationSuite) TestMaxIDForPrefix() {
	max, err := s.store.MaxIDForPrefix(s.ctx, "NL-")
	s.Require().NoError(err)
	s.Empty(max)

	s.mustCreate(models.Scholarship{ID: "NL-01", Country: "Países Bajos", Name: "A"})
	s.mustCreate(models.Scholarship{ID: "NL-07", Country: "Países Bajos", Name: "B"})
	s.mustCreate(models.Scholarship{ID: "DE-09", Country: "Alemania", Name: "C"})

	max, err = s.store.MaxIDForPrefix(s.ctx, "NL-")
	s.Require().NoError(err)
	s.Equal("NL-07", max)
}

func (s *StoreIntegrationSuite) TestListScholarshipsFilters() {
	s.mustCreate(models.Scholarship{ID: "NL-01", Country: "Países Bajos", Name: "Amsterdam Merit", Level: "Maestría", State: "Abierto"})
	s.mustCreate(models.Scholarship{ID: "NL-02", Country: "Países Bajos", Name: "Leiden Grant", Level: "Pregrado", State: "Cerrado"})
	s.mustCreate(models.Scholarship{ID: "PE-01", Country: "Perú", Name: "Beca Presidente", Level: "Pregrado", State: "Abierto"})

	all, err := s.store.ListScholarships(s.ctx, ListParams{})
	s.Require().NoError(err)
	s.Equal(3, all.Total)
	s.Len(all.Scholarships, 3)

	byCountry, err := s.store.ListScholarships(s.ctx, ListParams{Country: "Perú"})
	s.Require().NoError(err)
	s.Equal(1, byCountry.Total)

	byLevel, err := s.store.ListScholarships(s.ctx, ListParams{Nivel: "Pregrado", Estado: "Abierto"})
	s.Require().NoError(err)
	s.Equal(1, byLevel.Total)
	s.Equal("PE-01", byLevel.Scholarships[0].ID)

	bySearch, err := s.store.ListScholarships(s.ctx, ListParams{Search: "amsterdam"})
	s.Require().NoError(err)
	s.Equal(1, bySearch.Total)

	paged, err := s.store.ListScholarships(s.ctx, ListParams{Limit: 2})
	s.Require().NoError(err)
	s.Equal(3, paged.Total)
	s.Len(paged.Scholarships, 2)
}

func (s *StoreIntegrationSuite) TestUpdateScholarship() {
	sch := s.mustCreate(models.Scholarship{ID: "NL-01", Country: "Países Bajos", Name: "Old Name"})

	sch.Name = "New Name"
	sch.NextDeadline = "15 de enero"
	s.Require().NoError(s.store.UpdateScholarship(s.ctx, &sch))

	got, err := s.store.GetScholarship(s.ctx, "NL-01")
	s.Require().NoError(err)
	s.Equal("New Name", got.Name)
	s.Equal("15 de enero", got.NextDeadline)
	s.True(got.UpdatedAt.After(got.CreatedAt) || got.UpdatedAt.Equal(got.CreatedAt))
}

func (s *StoreIntegrationSuite) TestSearchVariants() {
	s.mustCreate(models.Scholarship{ID: "NL-01", Country: "Países Bajos", Name: "Amsterdam Excellence", SourceURL: "https://old.example"})
	s.mustCreate(models.Scholarship{ID: "NL-02", Country: "Países Bajos", Name: "amsterdam merit", SourceURL: "https://old.example"})
	s.mustCreate(models.Scholarship{ID: "DE-01", Country: "Alemania", Name: "DAAD", SourceURL: "https://daad.example"})

	byName, err := s.store.SearchByName(s.ctx, "Amsterdam")
	s.Require().NoError(err)
	s.Len(byName, 2)

	byIDs, err := s.store.SearchByIDs(s.ctx, []string{"NL-01", "DE-01", "XX-99"})
	s.Require().NoError(err)
	s.Len(byIDs, 2)

	byURL, err := s.store.SearchByURL(s.ctx, "https://old.example")
	s.Require().NoError(err)
	s.Len(byURL, 2)
}

func (s *StoreIntegrationSuite) TestBulkUpdateURLAndAudit() {
	s.mustCreate(models.Scholarship{ID: "NL-01", Country: "Países Bajos", Name: "A", SourceURL: "https://old.example/a"})
	s.mustCreate(models.Scholarship{ID: "NL-02", Country: "Países Bajos", Name: "B", SourceURL: "https://old.example/b"})
	s.mustCreate(models.Scholarship{ID: "NL-03", Country: "Países Bajos", Name: "C", SourceURL: "https://old.example/c"})

	now := time.Now()
	count, err := s.store.BulkUpdateURL(s.ctx, []string{"NL-01", "NL-03"}, "https://new.example", now)
	s.Require().NoError(err)
	s.Equal(int64(2), count)

	got, err := s.store.GetScholarship(s.ctx, "NL-01")
	s.Require().NoError(err)
	s.Equal("https://new.example", got.SourceURL)
	s.Equal(models.URLStatusWorking, got.URLStatus)
	s.NotNil(got.URLLastChecked)

	untouched, err := s.store.GetScholarship(s.ctx, "NL-02")
	s.Require().NoError(err)
	s.Equal("https://old.example/b", untouched.SourceURL)

	err = s.store.InsertDeadlineUpdates(s.ctx, []models.DeadlineUpdate{
		{ScholarshipID: "NL-01", FieldChanged: "url_status", OldValue: "unknown", NewValue: "working", Notes: "Bulk update"},
		{ScholarshipID: "NL-03", FieldChanged: "url_status", OldValue: "unknown", NewValue: "working", Notes: "Bulk update"},
	})
	s.Require().NoError(err)

	entries, err := s.store.ListDeadlineUpdates(s.ctx, 10)
	s.Require().NoError(err)
	s.Len(entries, 2)
	s.Equal("url_status", entries[0].FieldChanged)
	for _, e := range entries {
		s.False(e.ChangedAt.IsZero(), "audit entry %s has no timestamp", e.ScholarshipID)
	}
}

func (s *StoreIntegrationSuite) TestBrokenOrUncheckedAndMark() {
	s.mustCreate(models.Scholarship{ID: "NL-01", Country: "Países Bajos", Name: "A", URLStatus: models.URLStatusBroken})
	s.mustCreate(models.Scholarship{ID: "NL-02", Country: "Países Bajos", Name: "B"})
	s.mustCreate(models.Scholarship{ID: "NL-03", Country: "Países Bajos", Name: "C", URLStatus: models.URLStatusWorking})

	records, err := s.store.ListBrokenOrUnchecked(s.ctx, 10)
	s.Require().NoError(err)
	s.Len(records, 2)

	s.Require().NoError(s.store.MarkURLStatus(s.ctx, "NL-01", models.URLStatusNeedsReview, time.Now()))

	got, err := s.store.GetScholarship(s.ctx, "NL-01")
	s.Require().NoError(err)
	s.Equal(models.URLStatusNeedsReview, got.URLStatus)

	records, err = s.store.ListBrokenOrUnchecked(s.ctx, 10)
	s.Require().NoError(err)
	s.Len(records, 1)
}

func (s *StoreIntegrationSuite) TestGetStats() {
	s.mustCreate(models.Scholarship{ID: "NL-01", Country: "Países Bajos", Name: "A", URLStatus: models.URLStatusBroken})
	s.mustCreate(models.Scholarship{ID: "PE-01", Country: "Perú", Name: "B"})

	stats, err := s.store.GetStats(s.ctx)
	s.Require().NoError(err)
	s.EqualValues(2, stats["total"])
	s.EqualValues(2, stats["countries"])
	s.EqualValues(1, stats["url_broken"])
	s.EqualValues(1, stats["url_unchecked"])
}

func (s *StoreIntegrationSuite) TestContentPieces() {
	piece := models.ContentPiece{
		Brand:         "BecaMap",
		ContentStatus: "Idea",
		Format:        "Reel",
		RedSocial:     "Instagram",
		FunnelStage:   "TOFU",
		Priority:      0, // out of range, store defaults it
	}
	s.Require().NoError(s.store.CreateContentPiece(s.ctx, &piece))
	s.NotZero(piece.ID)
	s.Equal(2, piece.Priority)

	pieces, err := s.store.ListContentPieces(s.ctx, ContentListParams{Brand: "BecaMap"})
	s.Require().NoError(err)
	s.Len(pieces, 1)

	piece.ContentStatus = "Guionizado"
	s.Require().NoError(s.store.UpdateContentPiece(s.ctx, &piece))

	pieces, err = s.store.ListContentPieces(s.ctx, ContentListParams{Status: "Guionizado"})
	s.Require().NoError(err)
	s.Len(pieces, 1)

	s.Require().NoError(s.store.DeleteContentPiece(s.ctx, piece.ID))
	pieces, err = s.store.ListContentPieces(s.ctx, ContentListParams{})
	s.Require().NoError(err)
	s.Empty(pieces)
}

func (s *StoreIntegrationSuite) TestNotifications() {
	s.Require().NoError(s.store.CreateNotification(s.ctx, "Enlaces rotos", "3 enlaces fallaron"))

	notifications, err := s.store.ListNotifications(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(notifications, 1)
	s.False(notifications[0].Read)

	s.Require().NoError(s.store.MarkNotificationRead(s.ctx, notifications[0].ID))
	notifications, err = s.store.ListNotifications(s.ctx)
	s.Require().NoError(err)
	s.True(notifications[0].Read)

	s.Require().NoError(s.store.DismissNotification(s.ctx, notifications[0].ID))
	notifications, err = s.store.ListNotifications(s.ctx)
	s.Require().NoError(err)
	s.Empty(notifications)
}
