package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/becalab/becamap/internal/auth"
	"github.com/becalab/becamap/internal/db"
	"github.com/becalab/becamap/internal/idgen"
	"github.com/becalab/becamap/internal/models"
)

func main() {
	adminUser := flag.String("admin", "admin", "admin username to provision")
	adminPass := flag.String("password", "", "admin password (required to create the account)")
	flag.Parse()

	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	store := db.NewStore(pool)
	gen := idgen.NewGenerator(store)

	seeds := []models.Scholarship{
		{
			Country: "Países Bajos", Region: "Europa",
			Name: "Amsterdam Excellence Scholarship", University: "University of Amsterdam",
			Level: "Maestría", Excellence: true, Area: "STEM",
			Benefits: "Matrícula completa y estipendio de 25.000 EUR", Requirements: "Top 10% de la promoción",
			NextDeadline: "15 de enero", State: "Abierto",
			SourceURL: "https://www.uva.nl/en/education/fees-and-funding/masters-scholarships-and-loans/amsterdam-excellence-scholarship",
		},
		{
			Country: "Alemania", Region: "Europa",
			Name: "DAAD EPOS", University: "Varias universidades alemanas",
			Level: "Maestría", Area: "Desarrollo",
			Benefits: "Matrícula, seguro y mensualidad de 934 EUR", Requirements: "2 años de experiencia laboral",
			NextDeadline: "Varía por programa", State: "Abierto",
			SourceURL: "https://www.daad.de/en/study-and-research-in-germany/scholarships/development-related-postgraduate-courses/",
		},
		{
			Country: "Perú", Region: "América Latina",
			Name: "Beca Generación del Bicentenario", University: "PRONABEC",
			Level: "Pregrado",
			Benefits: "Matrícula, manutención y materiales", Requirements: "Alto rendimiento académico",
			State:     "Por confirmar",
			SourceURL: "https://www.pronabec.gob.pe/beca-generacion-bicentenario/",
		},
		{
			Country: "Estados Unidos", Region: "América del Norte",
			Name: "Fulbright Foreign Student Program", University: "Varias universidades",
			Level: "Doctorado",
			Benefits: "Matrícula, pasajes y estipendio", Requirements: "Título universitario y dominio del inglés",
			NextDeadline: "Febrero (varía por país)", State: "Abierto",
			SourceURL: "https://foreign.fulbrightonline.org/",
		},
	}

	created := 0
	for i := range seeds {
		sch := seeds[i]
		_, err := gen.GenerateUnique(ctx, sch.Country,
			func(err error) bool { return errors.Is(err, db.ErrDuplicateID) },
			func(id string) error {
				sch.ID = id
				return store.CreateScholarship(ctx, &sch)
			})
		if err != nil {
			log.Printf("Failed to seed %q: %v", sch.Name, err)
			continue
		}
		created++
	}
	log.Printf("Seeded %d scholarships", created)

	if *adminPass != "" {
		svc := auth.NewService(pool)
		user, err := svc.CreateAdmin(ctx, *adminUser, "Dashboard Admin", *adminPass)
		if err != nil {
			log.Fatalf("Failed to create admin: %v", err)
		}
		log.Printf("Admin account ready: %s (%s)", user.Username, user.ID)
	}
}
