// Package retrieval holds the embedded knowledge corpus and answers ranked,
// domain-partitioned queries for the orchestrator.
package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	contractx "github.com/thanakit-dev/leadpilot/engine/contract"
	domainx "github.com/thanakit-dev/leadpilot/engine/domain"
	statex "github.com/thanakit-dev/leadpilot/engine/state"
)

const (
	similarityFloor = 0.4
	maxResults      = 8
	maxConfidence   = 0.95
)

// Engine indexes documents per domain partition and ranks them against
// enriched, embedded queries. Ranked results are cached per domain; any write
// to a domain invalidates that domain's cache synchronously.
type Engine struct {
	gateway contractx.Gateway

	mu   sync.RWMutex
	docs map[contractx.Domain][]contractx.Document

	cache *queryCache
}

func NewEngine(gateway contractx.Gateway) *Engine {
	return &Engine{
		gateway: gateway,
		docs:    make(map[contractx.Domain][]contractx.Document),
		cache:   newQueryCache(),
	}
}

// AddDocument indexes one document, embedding it when no embedding is
// supplied. Re-adding an ID replaces the stored document.
func (e *Engine) AddDocument(ctx context.Context, doc contractx.Document) error {
	if strings.TrimSpace(doc.ID) == "" {
		return fmt.Errorf("%w: document id is required", contractx.ErrValidation)
	}
	if doc.Metadata.Domain == "" {
		return fmt.Errorf("%w: document domain is required", contractx.ErrValidation)
	}

	if len(doc.Embedding) == 0 {
		emb, err := e.gateway.Embed(ctx, doc.Content)
		if err != nil {
			return fmt.Errorf("%w: embed document %s: %v", contractx.ErrEmbedding, doc.ID, err)
		}
		doc.Embedding = emb
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	partition := e.docs[doc.Metadata.Domain]
	replaced := false
	for i := range partition {
		if partition[i].ID == doc.ID {
			partition[i] = doc
			replaced = true
			break
		}
	}
	if !replaced {
		partition = append(partition, doc)
	}
	e.docs[doc.Metadata.Domain] = partition
	e.cache.invalidateDomain(doc.Metadata.Domain)
	return nil
}

// UpdateKnowledge applies a batch of documents to one domain partition.
func (e *Engine) UpdateKnowledge(ctx context.Context, domain contractx.Domain, docs []contractx.Document) error {
	for _, doc := range docs {
		if doc.Metadata.Domain == "" {
			doc.Metadata.Domain = domain
		}
		if doc.Metadata.Domain != domain {
			return fmt.Errorf("%w: document %s belongs to domain %q, not %q",
				contractx.ErrValidation, doc.ID, doc.Metadata.Domain, domain)
		}
		if err := e.AddDocument(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceKnowledge swaps a domain partition wholesale. Documents absent from
// docs are dropped, so corpus reloads never accumulate stale entries. The
// swap happens only after every document validates and embeds; a failure
// leaves the old partition intact.
func (e *Engine) ReplaceKnowledge(ctx context.Context, domain contractx.Domain, docs []contractx.Document) error {
	fresh := make([]contractx.Document, 0, len(docs))
	index := make(map[string]int, len(docs))
	for _, doc := range docs {
		if strings.TrimSpace(doc.ID) == "" {
			return fmt.Errorf("%w: document id is required", contractx.ErrValidation)
		}
		if doc.Metadata.Domain == "" {
			doc.Metadata.Domain = domain
		}
		if doc.Metadata.Domain != domain {
			return fmt.Errorf("%w: document %s belongs to domain %q, not %q",
				contractx.ErrValidation, doc.ID, doc.Metadata.Domain, domain)
		}
		if len(doc.Embedding) == 0 {
			emb, err := e.gateway.Embed(ctx, doc.Content)
			if err != nil {
				return fmt.Errorf("%w: embed document %s: %v", contractx.ErrEmbedding, doc.ID, err)
			}
			doc.Embedding = emb
		}
		if i, ok := index[doc.ID]; ok {
			fresh[i] = doc
			continue
		}
		index[doc.ID] = len(fresh)
		fresh = append(fresh, doc)
	}

	e.mu.Lock()
	e.docs[domain] = fresh
	e.mu.Unlock()
	e.cache.invalidateDomain(domain)
	return nil
}

// DocumentCount reports the partition size for a domain.
func (e *Engine) DocumentCount(domain contractx.Domain) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.docs[domain])
}

// Query embeds an enriched form of the question and ranks the domain's
// documents against it. Embedding failure is a hard error: retrieval is not
// best-effort.
func (e *Engine) Query(
	ctx context.Context,
	question string,
	conv *statex.ConversationContext,
	cfg *domainx.Config,
) (*contractx.RankedResult, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: domain config is required", contractx.ErrValidation)
	}

	enriched, hints := enrichQuery(question, conv, cfg)
	cacheKey := e.cache.key(enriched, conv)

	if cached, ok := e.cache.get(cfg.Domain, cacheKey); ok {
		return cached, nil
	}

	queryEmbedding, err := e.gateway.Embed(ctx, enriched)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", contractx.ErrEmbedding, err)
	}

	e.mu.RLock()
	partition := append([]contractx.Document(nil), e.docs[cfg.Domain]...)
	e.mu.RUnlock()

	ranked := rankDocuments(queryEmbedding, partition, conv, cfg)

	result := &contractx.RankedResult{
		Documents:      ranked,
		ContextText:    buildContextText(ranked, cfg.PriorityTypes),
		Confidence:     retrievalConfidence(ranked),
		DomainSpecific: hints,
	}

	e.cache.put(cfg.Domain, cacheKey, result)
	log.Debug().
		Str("domain", string(cfg.Domain)).
		Int("documents", len(ranked)).
		Float64("confidence", result.Confidence).
		Msg("knowledge retrieval complete")
	return result, nil
}

// rankDocuments hard-filters by domain, then applies the multiplicative
// domain-aware adjustments in their fixed order before thresholding.
func rankDocuments(
	query []float64,
	partition []contractx.Document,
	conv *statex.ConversationContext,
	cfg *domainx.Config,
) []contractx.RankedDocument {
	entityType := ""
	stage := ""
	if conv != nil {
		entityType = conv.EntityType
		stage = conv.Stage
	}

	ranked := make([]contractx.RankedDocument, 0, len(partition))
	for _, doc := range partition {
		// Domain mismatch is a hard filter, never a score adjustment.
		if doc.Metadata.Domain != cfg.Domain {
			continue
		}

		score := cosineSimilarity(query, doc.Embedding)

		// Boost categories that do NOT already contain the tracked entity
		// type, widening results beyond the product already under
		// discussion. Deliberate, not a negation bug.
		if entityType != "" && !strings.Contains(strings.ToLower(doc.Metadata.Category), strings.ToLower(entityType)) {
			score *= 1.2
		}
		if doc.Metadata.Priority == contractx.PriorityHigh {
			score *= 1.15
		}
		if stage != "" && containsString(doc.Metadata.ApplicableStages, stage) {
			score *= 1.1
		}

		if score <= similarityFloor {
			continue
		}
		ranked = append(ranked, contractx.RankedDocument{Document: doc, Score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > maxResults {
		ranked = ranked[:maxResults]
	}
	return ranked
}

// buildContextText groups surviving documents by metadata type, priority
// types first, remaining types in encountered order, each group under an
// upper-cased header.
func buildContextText(ranked []contractx.RankedDocument, priorityTypes []string) string {
	if len(ranked) == 0 {
		return ""
	}

	groups := make(map[string][]string)
	var encountered []string
	for _, doc := range ranked {
		t := doc.Metadata.Type
		if _, seen := groups[t]; !seen {
			encountered = append(encountered, t)
		}
		groups[t] = append(groups[t], doc.Content)
	}

	var order []string
	for _, t := range priorityTypes {
		if _, ok := groups[t]; ok {
			order = append(order, t)
		}
	}
	for _, t := range encountered {
		if !containsString(priorityTypes, t) {
			order = append(order, t)
		}
	}

	var b strings.Builder
	for i, t := range order {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(strings.ToUpper(t))
		b.WriteString(":\n")
		b.WriteString(strings.Join(groups[t], "\n\n"))
	}
	return b.String()
}

// retrievalConfidence derives a bounded confidence from the surviving set.
func retrievalConfidence(ranked []contractx.RankedDocument) float64 {
	confidence := math.Min(maxConfidence, 0.4+0.15*float64(len(ranked)))

	// Every survivor matches the query domain by construction (the hard
	// filter ran first), so this multiplier always applies. Kept explicit so
	// the formula stays readable next to the other adjustments.
	allDomainMatch := true
	if allDomainMatch {
		confidence *= 1.1
	}

	for _, doc := range ranked {
		if doc.Metadata.Priority == contractx.PriorityHigh {
			confidence *= 1.05
			break
		}
	}

	return math.Min(maxConfidence, confidence)
}

// enrichQuery appends domain, entity type, and stage to the question, then
// applies the domain's declared enhancement strategy.
func enrichQuery(question string, conv *statex.ConversationContext, cfg *domainx.Config) (string, map[string]any) {
	parts := []string{strings.TrimSpace(question), string(cfg.Domain)}
	if conv != nil {
		if conv.EntityType != "" {
			parts = append(parts, conv.EntityType)
		}
		if conv.Stage != "" {
			parts = append(parts, conv.Stage)
		}
	}

	hints := make(map[string]any)
	lower := strings.ToLower(question)

	switch cfg.ContextBuildingStrategy {
	case domainx.StrategyProductFocus:
		if containsAny(lower, cfg.ProductQueryHints) {
			parts = append(parts, cfg.QueryEnhancementKeywords...)
			hints["product_question"] = true
		}
	case domainx.StrategyStageFocus:
		if conv != nil && conv.Stage != "" {
			parts = append(parts, cfg.QueryEnhancementKeywords...)
		}
	}

	for keyword, logicType := range cfg.BusinessLogicTriggers {
		if strings.Contains(lower, keyword) {
			hints["suggested_business_logic"] = logicType
			break
		}
	}
	if len(hints) == 0 {
		hints = nil
	}

	return strings.Join(parts, " "), hints
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func containsString(list []string, target string) bool {
	for _, v := range list {
		if v == target {
			return true
		}
	}
	return false
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
