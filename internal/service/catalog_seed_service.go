package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"yorkie-bakery-be/internal/dto"
	"yorkie-bakery-be/internal/entity"
	"yorkie-bakery-be/internal/pkg/logger"
	"yorkie-bakery-be/internal/pkg/serverutils"
	"yorkie-bakery-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// seedNamespace derives stable ids for seed entries that omit one, so a
// file can be re-applied without duplicating rows.
var seedNamespace = uuid.MustParse("6f1d7a52-3c1e-4d8e-9a55-0b7f5e2c9d41")

type ICatalogSeedService interface {
	Parse(r io.Reader) ([]*entity.MenuItem, error)
	Seed(ctx context.Context, items []*entity.MenuItem) error
}

type catalogSeedService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
	now        func() time.Time
}

func NewCatalogSeedService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) ICatalogSeedService {
	return &catalogSeedService{
		uowFactory: uowFactory,
		logger:     log,
		now:        time.Now,
	}
}

func (cs *catalogSeedService) Parse(r io.Reader) ([]*entity.MenuItem, error) {
	var file dto.SeedCatalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	if err := serverutils.ValidateRequest(file); err != nil {
		return nil, err
	}

	items := make([]*entity.MenuItem, 0, len(file.Items))
	for i, s := range file.Items {
		id := uuid.NewSHA1(seedNamespace, []byte(strings.ToLower(strings.TrimSpace(s.Title))))
		if s.Id != "" {
			parsed, err := uuid.Parse(s.Id)
			if err != nil {
				return nil, fmt.Errorf("seed item %d: invalid id %q", i, s.Id)
			}
			id = parsed
		}
		available := true
		if s.Available != nil {
			available = *s.Available
		}
		items = append(items, &entity.MenuItem{
			Id:              id,
			Title:           strings.TrimSpace(s.Title),
			Description:     strings.TrimSpace(s.Description),
			ImageUrl:        s.ImageUrl,
			Origin:          s.Origin,
			Category:        s.Category,
			Tags:            s.Tags,
			FlavorProfiles:  s.FlavorProfiles,
			DietaryFeatures: s.DietaryFeatures,
			Price:           s.Price,
			IsAvailable:     available,
		})
	}
	return items, nil
}

// Seed upserts every item in one transaction.
func (cs *catalogSeedService) Seed(ctx context.Context, items []*entity.MenuItem) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	now := cs.now()
	for _, item := range items {
		item.UpdatedAt = now
		if err := uow.MenuItemRepository().Upsert(ctx, item); err != nil {
			return fmt.Errorf("upsert %q: %w", item.Title, err)
		}
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	cs.logger.Info("SEED", "Catalog seeded", map[string]interface{}{"count": len(items)})
	return nil
}
