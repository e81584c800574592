package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"yorkie-bakery-be/internal/constant"
	"yorkie-bakery-be/internal/dto"
	"yorkie-bakery-be/internal/entity"
	"yorkie-bakery-be/internal/mapper"
	"yorkie-bakery-be/internal/pkg/logger"
	"yorkie-bakery-be/pkg/llm"
	"yorkie-bakery-be/pkg/recommend/catalog"
	"yorkie-bakery-be/pkg/recommend/events"
	"yorkie-bakery-be/pkg/recommend/filter"
	"yorkie-bakery-be/pkg/recommend/preference"
	"yorkie-bakery-be/pkg/recommend/rank"
	"yorkie-bakery-be/pkg/recommend/retrieval"
	"yorkie-bakery-be/pkg/recommend/router"
	"yorkie-bakery-be/pkg/recommend/session"

	"github.com/disintegration/imaging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrEmptyMessage     = errors.New("message must not be empty")
	ErrEmptyImage       = errors.New("empty image file")
	ErrUnsupportedImage = errors.New("only JPEG and PNG images are supported")
	ErrCompletionFailed = errors.New("completion service failed")
)

// FilterInterpreter turns a message into filters. It never fails; ok=false
// marks a degraded result.
type FilterInterpreter interface {
	Interpret(ctx context.Context, message string) (filter.Filters, bool)
}

type IRecommendationService interface {
	HandleTurn(ctx context.Context, userId *string, request *dto.ChatTurnRequest) (*dto.ChatTurnResponse, error)
	RetrieveAndRank(ctx context.Context, request *dto.RetrieveRequest) (*dto.RetrieveResponse, error)
	MatchImage(ctx context.Context, image []byte, topK int) (*dto.VisionMatchResponse, error)
	GetRecentMessages(ctx context.Context, sessionId string, limit int) []*dto.ChatMessageResponse
}

type RecommendationConfig struct {
	// Headroom multiplies the requested count when querying the store so
	// post-filtering still has enough candidates.
	Headroom          int
	DefaultTopK       int
	MaxTopK           int
	VisionTopK        int
	HistoryForPrompt  int
	CompletionTimeout time.Duration
	VisionModel       string
	MaxImageSide      int
}

func DefaultRecommendationConfig() RecommendationConfig {
	return RecommendationConfig{
		Headroom:          10,
		DefaultTopK:       5,
		MaxTopK:           20,
		VisionTopK:        5,
		HistoryForPrompt:  10,
		CompletionTimeout: 60 * time.Second,
		MaxImageSide:      1024,
	}
}

type recommendationService struct {
	sessions    *session.Store
	interpreter FilterInterpreter
	engine      *retrieval.Engine
	ranker      *rank.Ranker
	extractor   preference.Extractor
	completion  llm.LLMProvider
	publisher   events.Publisher
	logger      logger.ILogger
	tracer      trace.Tracer
	cfg         RecommendationConfig
}

func NewRecommendationService(
	sessions *session.Store,
	interpreter FilterInterpreter,
	engine *retrieval.Engine,
	ranker *rank.Ranker,
	extractor preference.Extractor,
	completion llm.LLMProvider,
	publisher events.Publisher,
	log logger.ILogger,
	cfg RecommendationConfig,
) IRecommendationService {
	def := DefaultRecommendationConfig()
	if cfg.Headroom < 1 {
		cfg.Headroom = def.Headroom
	}
	if cfg.DefaultTopK < 1 {
		cfg.DefaultTopK = def.DefaultTopK
	}
	if cfg.MaxTopK < cfg.DefaultTopK {
		cfg.MaxTopK = cfg.DefaultTopK
	}
	if cfg.VisionTopK < 1 {
		cfg.VisionTopK = def.VisionTopK
	}
	if cfg.MaxImageSide < 1 {
		cfg.MaxImageSide = def.MaxImageSide
	}

	return &recommendationService{
		sessions:    sessions,
		interpreter: interpreter,
		engine:      engine,
		ranker:      ranker,
		extractor:   extractor,
		completion:  completion,
		publisher:   publisher,
		logger:      log,
		tracer:      otel.Tracer("yorkie-bakery-be/recommendation"),
		cfg:         cfg,
	}
}

// HandleTurn runs one conversational turn: interpret, route, retrieve and
// rank, remember preferences, reply, and record both messages.
func (s *recommendationService) HandleTurn(ctx context.Context, userId *string, request *dto.ChatTurnRequest) (*dto.ChatTurnResponse, error) {
	ctx, span := s.tracer.Start(ctx, "recommendation.HandleTurn")
	defer span.End()

	message := strings.TrimSpace(request.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	sess, err := s.sessions.GetOrCreate(ctx, request.SessionId, userId)
	if err != nil {
		return nil, s.fail(span, fmt.Errorf("open session: %w", err))
	}
	sessionId := sess.SessionId
	span.SetAttributes(attribute.String("session.id", sessionId))

	filters, _ := s.interpreter.Interpret(ctx, message)
	if request.Filters != nil {
		filters = filters.Override(mapper.FiltersFromDTO(request.Filters))
	}

	agent := router.Route(message, filters)
	topK := s.clampTopK(request.TopK)
	span.SetAttributes(
		attribute.String("agent", string(agent)),
		attribute.Int("top_k", topK),
	)

	items := []catalog.RankedItem{}
	if agent.NeedsRetrieval() {
		vec, err := s.engine.EmbedQuery(ctx, message)
		items = s.searchAndRank(ctx, vec, err, filters, topK, "")
	}

	history := s.sessions.GetRecentMessages(ctx, sessionId, s.cfg.HistoryForPrompt)

	prefs, err := s.rememberPreferences(ctx, sessionId, message, items)
	if err != nil {
		return nil, s.fail(span, err)
	}

	if _, err := s.sessions.AddMessage(ctx, sessionId, entity.ChatRoleUser, message, map[string]interface{}{
		"agent":   string(agent),
		"filters": filters.AsMap(),
	}); err != nil {
		return nil, s.fail(span, fmt.Errorf("record user message: %w", err))
	}

	reply, err := s.reply(ctx, message, items, prefs, history)
	if err != nil {
		return nil, s.fail(span, err)
	}

	shownIds := itemIds(items)
	if _, err := s.sessions.AddMessage(ctx, sessionId, entity.ChatRoleAssistant, reply, map[string]interface{}{
		"agent":       string(agent),
		"items_shown": shownIds,
	}); err != nil {
		return nil, s.fail(span, fmt.Errorf("record assistant message: %w", err))
	}

	s.publisher.PublishTurnCompleted(ctx, sessionId, string(agent), shownIds, filters.AsMap())

	s.logger.Info("RECOMMEND", "Turn completed", map[string]interface{}{
		"session_id": sessionId,
		"agent":      string(agent),
		"filters":    filters.AsMap(),
		"items":      len(items),
	})

	return &dto.ChatTurnResponse{
		SessionId:   sessionId,
		Agent:       string(agent),
		Reply:       reply,
		Filters:     mapper.FiltersToDTO(filters),
		Items:       mapper.RankedItemsToDTO(items),
		Preferences: prefs,
	}, nil
}

// RetrieveAndRank searches the catalog without touching any session.
func (s *recommendationService) RetrieveAndRank(ctx context.Context, request *dto.RetrieveRequest) (*dto.RetrieveResponse, error) {
	ctx, span := s.tracer.Start(ctx, "recommendation.RetrieveAndRank")
	defer span.End()

	var filters filter.Filters
	if request.Filters != nil {
		filters = mapper.FiltersFromDTO(request.Filters)
	}
	topK := s.clampTopK(request.TopK)

	vec, err := s.engine.EmbedQuery(ctx, request.Query)
	items := s.searchAndRank(ctx, vec, err, filters, topK, "")

	return &dto.RetrieveResponse{Items: mapper.RankedItemsToDTO(items)}, nil
}

// MatchImage describes a photo with the vision model, searches the catalog
// with that description and boosts titles the description mentions.
func (s *recommendationService) MatchImage(ctx context.Context, image []byte, topK int) (*dto.VisionMatchResponse, error) {
	ctx, span := s.tracer.Start(ctx, "recommendation.MatchImage")
	defer span.End()

	if len(image) == 0 {
		return nil, ErrEmptyImage
	}
	prepared, err := s.prepareImage(image)
	if err != nil {
		return nil, err
	}

	completionCtx, cancel := s.completionContext(ctx)
	defer cancel()

	var opts []llm.Option
	if s.cfg.VisionModel != "" {
		opts = append(opts, llm.WithModel(s.cfg.VisionModel))
	}
	description, err := s.completion.Chat(completionCtx, []llm.Message{{
		Role:    llm.RoleUser,
		Content: constant.VisionPromptV1,
		Images:  [][]byte{prepared},
	}}, opts...)
	if err != nil {
		return nil, s.fail(span, fmt.Errorf("%w: vision: %v", ErrCompletionFailed, err))
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, s.fail(span, fmt.Errorf("%w: empty vision description", ErrCompletionFailed))
	}

	if topK < 1 {
		topK = s.cfg.VisionTopK
	}
	if topK > s.cfg.MaxTopK {
		topK = s.cfg.MaxTopK
	}

	vec, err := s.engine.EmbedQuery(ctx, description)
	items := s.searchAndRank(ctx, vec, err, filter.Filters{}, topK, description)

	return &dto.VisionMatchResponse{
		VisionDescription: description,
		Matches:           mapper.RankedItemsToDTO(items),
	}, nil
}

func (s *recommendationService) GetRecentMessages(ctx context.Context, sessionId string, limit int) []*dto.ChatMessageResponse {
	if limit < 1 || limit > 20 {
		limit = 20
	}
	msgs := s.sessions.GetRecentMessages(ctx, sessionId, limit)
	res := make([]*dto.ChatMessageResponse, 0, len(msgs))
	for _, m := range msgs {
		res = append(res, &dto.ChatMessageResponse{
			Role:      m.Role,
			Content:   m.Content,
			Timestamp: m.Timestamp,
			Metadata:  m.Metadata,
		})
	}
	return res
}

// searchAndRank queries the store with headroom, then post-filters and
// trims to topK. Retrieval failures degrade to no candidates.
func (s *recommendationService) searchAndRank(ctx context.Context, vec []float32, embedErr error, filters filter.Filters, topK int, rerankContext string) []catalog.RankedItem {
	if embedErr != nil {
		s.logger.Warn("RECOMMEND", "Query embedding failed, continuing without candidates", map[string]interface{}{
			"error": embedErr.Error(),
		})
		return []catalog.RankedItem{}
	}

	candidates, err := s.engine.Search(ctx, vec, filters, topK*s.cfg.Headroom)
	if err != nil {
		s.logger.Warn("RECOMMEND", "Retrieval failed, continuing without candidates", map[string]interface{}{
			"error": err.Error(),
		})
		return []catalog.RankedItem{}
	}

	ranked := s.ranker.FilterAndRank(candidates, filters, rerankContext)
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}

// rememberPreferences merges what the message reveals, plus the titles just
// shown, into the session bag and returns the result.
func (s *recommendationService) rememberPreferences(ctx context.Context, sessionId, message string, items []catalog.RankedItem) (preference.Bag, error) {
	extracted, err := s.extractor.Extract(ctx, message)
	if err != nil {
		s.logger.Warn("RECOMMEND", "Preference extraction failed, nothing extracted", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		extracted = nil
	}

	if len(items) > 0 {
		if extracted == nil {
			extracted = preference.Bag{}
		}
		extracted[preference.KeyLastViewed] = itemTitles(items)
	}

	if len(extracted) == 0 {
		return s.sessions.GetPreferences(ctx, sessionId), nil
	}

	sess, err := s.sessions.UpdatePreferences(ctx, sessionId, extracted)
	if err != nil {
		return nil, fmt.Errorf("update preferences: %w", err)
	}
	return preference.Bag(sess.Preferences).Clone(), nil
}

func (s *recommendationService) reply(ctx context.Context, message string, items []catalog.RankedItem, prefs preference.Bag, history []entity.ChatMessage) (string, error) {
	candidates := mapper.FormatCandidates(items)
	if candidates == "" {
		candidates = constant.NoCandidatesText
	}
	customer := preference.FormatForContext(prefs)
	if customer == "" {
		customer = constant.NoCustomerContextText
	}
	systemPrompt := fmt.Sprintf(constant.ReplySystemPromptV1, candidates, customer)

	llmHistory := make([]llm.Message, 0, len(history))
	for _, m := range history {
		llmHistory = append(llmHistory, llm.Message{Role: m.Role, Content: m.Content})
	}

	completionCtx, cancel := s.completionContext(ctx)
	defer cancel()

	answer, err := llm.Complete(completionCtx, s.completion, systemPrompt, message, llmHistory)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCompletionFailed, err)
	}
	return strings.TrimSpace(answer), nil
}

// prepareImage checks the upload is a JPEG or PNG and shrinks it so the
// longest side fits MaxImageSide.
func (s *recommendationService) prepareImage(image []byte) ([]byte, error) {
	contentType := http.DetectContentType(image)
	if contentType != "image/jpeg" && contentType != "image/png" {
		return nil, ErrUnsupportedImage
	}

	img, err := imaging.Decode(bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	b := img.Bounds()
	side := s.cfg.MaxImageSide
	if b.Dx() <= side && b.Dy() <= side {
		return image, nil
	}

	var buf bytes.Buffer
	resized := imaging.Fit(img, side, side, imaging.Lanczos)
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("encode resized image: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *recommendationService) completionContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.CompletionTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.CompletionTimeout)
}

func (s *recommendationService) clampTopK(k int) int {
	if k < 1 {
		return s.cfg.DefaultTopK
	}
	if k > s.cfg.MaxTopK {
		return s.cfg.MaxTopK
	}
	return k
}

func (s *recommendationService) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func itemIds(items []catalog.RankedItem) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids
}

func itemTitles(items []catalog.RankedItem) []string {
	titles := make([]string, 0, len(items))
	for _, it := range items {
		if it.Title != "" {
			titles = append(titles, it.Title)
		}
	}
	return titles
}
