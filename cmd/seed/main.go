// File: cmd/seed/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"stockus-platform/internal/config"
	"stockus-platform/internal/domain"
	"stockus-platform/internal/domain/model"
	"stockus-platform/internal/domain/ports/repository"
	pg "stockus-platform/internal/infra/db/postgres"
)

// Seeds demo content for local testing: an admin account, a launch promo,
// a couple of reports and one open cohort.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	userRepo := pg.NewUserRepo(pool)
	promoRepo := pg.NewPromoRepo(pool)
	reportRepo := pg.NewReportRepo(pool)
	cohortRepo := pg.NewCohortRepo(pool)

	// Admin account
	if _, err := userRepo.FindByEmail(ctx, repository.NoTX, "admin@stockus.local"); errors.Is(err, domain.ErrNotFound) {
		hash, err := bcrypt.GenerateFromPassword([]byte("admin-password"), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("hash: %v", err)
		}
		admin, err := model.NewUser(uuid.NewString(), "admin@stockus.local", "Admin", string(hash))
		if err != nil {
			log.Fatalf("admin user: %v", err)
		}
		admin.IsAdmin = true
		if err := userRepo.Save(ctx, repository.NoTX, admin); err != nil {
			log.Fatalf("save admin: %v", err)
		}
		fmt.Println("seeded admin@stockus.local")
	}

	// Launch promo
	if _, err := promoRepo.FindByCode(ctx, repository.NoTX, "LAUNCH20"); errors.Is(err, domain.ErrNotFound) {
		maxUses := 100
		now := time.Now()
		promo := &model.PromoCode{
			ID:              uuid.NewString(),
			Code:            "LAUNCH20",
			DiscountPercent: 20,
			MaxUses:         &maxUses,
			Active:          true,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := promoRepo.Create(ctx, repository.NoTX, promo); err != nil {
			log.Fatalf("save promo: %v", err)
		}
		fmt.Println("seeded promo LAUNCH20")
	}

	// Sample reports
	existing, err := reportRepo.ListPublished(ctx, repository.NoTX)
	if err != nil {
		log.Fatalf("list reports: %v", err)
	}
	if len(existing) == 0 {
		target := int64(11_000)
		reports := []*model.Report{
			{
				ID:          uuid.NewString(),
				Title:       "IDX Market Outlook",
				Summary:     "Where the index goes from here.",
				Body:        "Full outlook text.",
				FreePreview: true,
				SortOrder:   1,
				Published:   true,
			},
			{
				ID:             uuid.NewString(),
				Title:          "BBCA Deep Dive",
				Summary:        "Bank Central Asia valuation.",
				Body:           "Full analysis text.",
				Ticker:         "BBCA",
				Recommendation: "buy",
				TargetPrice:    &target,
				SortOrder:      2,
				Published:      true,
			},
			{
				ID:             uuid.NewString(),
				Title:          "TLKM Update",
				Summary:        "Telkom quarterly results.",
				Body:           "Full update text.",
				Ticker:         "TLKM",
				Recommendation: "hold",
				SortOrder:      3,
				Published:      true,
			},
		}
		for _, r := range reports {
			r.CreatedAt = time.Now()
			if err := reportRepo.Save(ctx, repository.NoTX, r); err != nil {
				log.Fatalf("save report: %v", err)
			}
		}
		fmt.Printf("seeded %d reports\n", len(reports))
	}

	// One open workshop cohort
	open, err := cohortRepo.ListOpen(ctx, repository.NoTX)
	if err != nil {
		log.Fatalf("list cohorts: %v", err)
	}
	if len(open) == 0 {
		price := int64(1_000_000)
		now := time.Now()
		cohort := &model.Cohort{
			ID:        uuid.NewString(),
			Title:     "Valuation Workshop Batch 1",
			Price:     &price,
			Status:    model.CohortStatusOpen,
			StartsAt:  now.AddDate(0, 1, 0),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := cohortRepo.Save(ctx, repository.NoTX, cohort); err != nil {
			log.Fatalf("save cohort: %v", err)
		}
		fmt.Println("seeded one open cohort")
	}

	fmt.Println("seed complete")
}
