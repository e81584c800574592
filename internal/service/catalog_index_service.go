package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"yorkie-bakery-be/internal/dto"
	"yorkie-bakery-be/internal/entity"
	"yorkie-bakery-be/internal/mapper"
	"yorkie-bakery-be/internal/pkg/logger"
	"yorkie-bakery-be/internal/repository/specification"
	"yorkie-bakery-be/internal/repository/unitofwork"
	"yorkie-bakery-be/pkg/embedding"
	"yorkie-bakery-be/pkg/events"
	"yorkie-bakery-be/pkg/recommend/catalog"
	"yorkie-bakery-be/pkg/vectorstore"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// MenuItemChangedSubject is published by the catalog CRUD surface whenever
// a menu row is created, edited or removed.
const MenuItemChangedSubject = "bakery.MENU_ITEM_CHANGED"

type ICatalogIndexService interface {
	IndexAll(ctx context.Context) (*dto.IndexCatalogResponse, error)
	IndexItem(ctx context.Context, id uuid.UUID) error
	Enqueue(ctx context.Context, id uuid.UUID) error
	Consume(ctx context.Context) error
	HandleCatalogEvent(ctx context.Context, event events.Event) error
}

type catalogIndexService struct {
	publisher         message.Publisher
	subscriber        message.Subscriber
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	store             vectorstore.Store
	menuMapper        *mapper.MenuItemMapper
	logger            logger.ILogger
}

func NewCatalogIndexService(
	publisher message.Publisher,
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	store vectorstore.Store,
	log logger.ILogger,
) ICatalogIndexService {
	return &catalogIndexService{
		publisher:         publisher,
		subscriber:        subscriber,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		store:             store,
		menuMapper:        mapper.NewMenuItemMapper(),
		logger:            log,
	}
}

// indexConcurrency bounds the embedding calls IndexAll has in flight.
const indexConcurrency = 4

// IndexAll re-embeds every available menu item. Items that fail to embed
// are skipped and counted. Records keep the repository order.
func (cs *catalogIndexService) IndexAll(ctx context.Context) (*dto.IndexCatalogResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	items, err := uow.MenuItemRepository().FindAll(ctx, specification.AvailableOnly{})
	if err != nil {
		return nil, fmt.Errorf("load menu items: %w", err)
	}

	built := make([]*vectorstore.Record, len(items))
	var g errgroup.Group
	g.SetLimit(indexConcurrency)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			rec, err := cs.buildRecord(ctx, item)
			if err != nil {
				cs.logger.Warn("INDEXER", "Skipping menu item", map[string]interface{}{
					"menu_item_id": item.Id.String(),
					"error":        err.Error(),
				})
				return nil
			}
			built[i] = &rec
			return nil
		})
	}
	_ = g.Wait()

	res := &dto.IndexCatalogResponse{}
	records := make([]vectorstore.Record, 0, len(items))
	for _, rec := range built {
		if rec == nil {
			res.Skipped++
			continue
		}
		records = append(records, *rec)
	}

	if err := cs.store.Upsert(ctx, records); err != nil {
		return nil, fmt.Errorf("upsert catalog index: %w", err)
	}
	res.Indexed = len(records)

	cs.logger.Info("INDEXER", "Catalog indexed", map[string]interface{}{
		"indexed": res.Indexed,
		"skipped": res.Skipped,
	})
	return res, nil
}

// IndexItem refreshes one entry. Missing or unavailable items are removed
// from the index.
func (cs *catalogIndexService) IndexItem(ctx context.Context, id uuid.UUID) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	item, err := uow.MenuItemRepository().FindById(ctx, id)
	if err != nil {
		return fmt.Errorf("load menu item %s: %w", id, err)
	}
	if item == nil || !item.IsAvailable {
		return cs.store.Delete(ctx, id.String())
	}

	rec, err := cs.buildRecord(ctx, item)
	if err != nil {
		return err
	}
	return cs.store.Upsert(ctx, []vectorstore.Record{rec})
}

// Enqueue schedules an IndexItem run on the job topic.
func (cs *catalogIndexService) Enqueue(ctx context.Context, id uuid.UUID) error {
	payload, err := json.Marshal(dto.PublishIndexMenuItemMessage{MenuItemId: id.String()})
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return cs.publisher.Publish(cs.topicName, msg)
}

func (cs *catalogIndexService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *catalogIndexService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIndexMenuItemMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("INDEXER", "Invalid index job payload", map[string]interface{}{"error": err.Error()})
		msg.Ack() // a bad payload will never succeed
		return
	}
	id, err := uuid.Parse(payload.MenuItemId)
	if err != nil {
		cs.logger.Error("INDEXER", "Invalid menu item id in index job", map[string]interface{}{"menu_item_id": payload.MenuItemId})
		msg.Ack()
		return
	}

	if err := cs.IndexItem(ctx, id); err != nil {
		cs.logger.Warn("INDEXER", "Index job failed", map[string]interface{}{
			"menu_item_id": payload.MenuItemId,
			"error":        err.Error(),
		})
		msg.Nack()
		return
	}

	cs.logger.Debug("INDEXER", "Menu item indexed", map[string]interface{}{"menu_item_id": payload.MenuItemId})
	msg.Ack()
}

// HandleCatalogEvent turns a MENU_ITEM_CHANGED event into an index job.
func (cs *catalogIndexService) HandleCatalogEvent(ctx context.Context, event events.Event) error {
	raw, _ := event.Payload()["menu_item_id"].(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		cs.logger.Warn("INDEXER", "Ignoring catalog event without a menu item id", map[string]interface{}{
			"type": event.EventType(),
		})
		return nil
	}
	return cs.Enqueue(ctx, id)
}

func (cs *catalogIndexService) buildRecord(ctx context.Context, item *entity.MenuItem) (vectorstore.Record, error) {
	document := CatalogDocument(item)
	vec, err := embedding.Embed(ctx, cs.embeddingProvider, document, embedding.TaskRetrievalDocument)
	if err != nil {
		return vectorstore.Record{}, fmt.Errorf("embed menu item %s: %w", item.Id, err)
	}
	if len(vec) == 0 {
		return vectorstore.Record{}, fmt.Errorf("menu item %s has no text to embed", item.Id)
	}

	return vectorstore.Record{
		ID:        item.Id.String(),
		Embedding: vec,
		Metadata:  catalog.ToMetadata(cs.menuMapper.ToCatalogItem(item)),
		Document:  document,
	}, nil
}

// CatalogDocument is the text embedded for a menu item.
func CatalogDocument(item *entity.MenuItem) string {
	var b strings.Builder
	b.WriteString(item.Title)
	if d := strings.TrimSpace(item.Description); d != "" {
		b.WriteString(". ")
		b.WriteString(d)
	}
	if len(item.Tags) > 0 {
		b.WriteString(". Tags: ")
		b.WriteString(strings.Join(item.Tags, ", "))
	}
	return b.String()
}
