package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"dealsscannerpro/internal/llm"
	"dealsscannerpro/internal/models"
	"dealsscannerpro/internal/scanerr"
)

// CategorySource is the read-only keyword taxonomy the Normalizer consults
// for category scoring and LM-reply coercion. Satisfied by
// *internal/categories.Service.
type CategorySource interface {
	Names() []string
	KeywordsByName() map[string][]string
}

// defaultMaxCacheSize caps the in-process cache at 1000 entries.
const defaultMaxCacheSize = 1000

// normalizeCacheStore is the seam between the Normalizer and whatever backs
// its cache: the default in-process normalizerCache, or a
// cache.RedisClient-backed store shared across scanner instances (wired in
// cmd/server).
type normalizeCacheStore interface {
	get(key string) (models.NormalizedProduct, bool)
	put(key string, v models.NormalizedProduct)
}

// redisNormalizeStore adapts *cache.RedisClient to normalizeCacheStore.
type redisNormalizeStore struct {
	client redisClient
	prefix string
}

// redisClient is the minimal surface this package needs from
// internal/cache.RedisClient, kept narrow so this package does not import
// context-bound server wiring.
type redisClient interface {
	GetJSON(ctx context.Context, key string, dest interface{}) bool
	SetJSON(ctx context.Context, key string, v interface{})
}

func newRedisNormalizeStore(client redisClient) *redisNormalizeStore {
	return &redisNormalizeStore{client: client, prefix: "normcache:"}
}

func (s *redisNormalizeStore) get(key string) (models.NormalizedProduct, bool) {
	var v models.NormalizedProduct
	ok := s.client.GetJSON(context.Background(), s.prefix+key, &v)
	return v, ok
}

func (s *redisNormalizeStore) put(key string, v models.NormalizedProduct) {
	s.client.SetJSON(context.Background(), s.prefix+key, v)
}

// normalizerCache is the default in-process cache, keyed by
// "(lowercased_trimmed_text, price rounded to 2dp)". A single exclusive
// lock on insert is sufficient; reads are cheap enough to
// share the same lock rather than add a second primitive.
type normalizerCache struct {
	mu      sync.Mutex
	maxSize int
	order   []string
	data    map[string]models.NormalizedProduct
}

func newNormalizerCache(maxSize int) *normalizerCache {
	if maxSize <= 0 {
		maxSize = defaultMaxCacheSize
	}
	return &normalizerCache{maxSize: maxSize, data: make(map[string]models.NormalizedProduct)}
}

func (c *normalizerCache) get(key string) (models.NormalizedProduct, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok
}

// put evicts the oldest half of the cache once it reaches maxSize.
func (c *normalizerCache) put(key string, v models.NormalizedProduct) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.data[key]; !exists {
		if len(c.data) >= c.maxSize {
			half := c.maxSize / 2
			for i := 0; i < half && i < len(c.order); i++ {
				delete(c.data, c.order[i])
			}
			c.order = c.order[half:]
		}
		c.order = append(c.order, key)
	}
	c.data[key] = v
}

func cacheKey(text string, price *float64) string {
	norm := strings.ToLower(strings.TrimSpace(text))
	if price != nil {
		return fmt.Sprintf("%s|%.2f", norm, *price)
	}
	return norm
}

// Normalizer implements component F: raw text + optional price -> a
// NormalizedProduct, via the LM provider when configured, falling back to
// deterministic rules otherwise. Idempotent and cached by construction.
type Normalizer struct {
	client     *llm.Client
	categories CategorySource
	cache      normalizeCacheStore
}

// NewNormalizer builds a Normalizer backed by the in-process cache. client
// may be nil or unconfigured, in which case every call uses the rule-based
// fallback.
func NewNormalizer(client *llm.Client, categories CategorySource) *Normalizer {
	return &Normalizer{client: client, categories: categories, cache: newNormalizerCache(defaultMaxCacheSize)}
}

// NewNormalizerWithRedis builds a Normalizer whose cache is shared across
// scanner instances via store, so a product normalized by one host is
// already cached for the next. store is typically a
// *cache.RedisClient.
func NewNormalizerWithRedis(client *llm.Client, categories CategorySource, store redisClient) *Normalizer {
	return &Normalizer{client: client, categories: categories, cache: newRedisNormalizeStore(store)}
}

// Normalize is the single-item normalize contract.
func (n *Normalizer) Normalize(ctx context.Context, rawText string, price *float64) models.NormalizedProduct {
	key := cacheKey(rawText, price)
	if cached, ok := n.cache.get(key); ok {
		return cached
	}

	result := n.normalizeUncached(ctx, rawText, price)
	n.cache.put(key, result)
	return result
}

func (n *Normalizer) normalizeUncached(ctx context.Context, rawText string, price *float64) models.NormalizedProduct {
	if n.client != nil && n.client.Configured() {
		product, err := n.normalizeWithLM(ctx, rawText, price)
		if err == nil {
			return product
		}
		log.Printf("[NORMALIZER] %v: %v", scanerr.NormalizerUnavailable, err)
	}
	return n.normalizeWithRules(rawText)
}

// NormalizeBatch batches up to 10 products per LM call, falling back to
// per-item normalization if the batch call itself fails.
func (n *Normalizer) NormalizeBatch(ctx context.Context, texts []string, prices []*float64) []models.NormalizedProduct {
	results := make([]models.NormalizedProduct, len(texts))
	pending := make([]int, 0, len(texts))

	for i, text := range texts {
		var price *float64
		if i < len(prices) {
			price = prices[i]
		}
		if cached, ok := n.cache.get(cacheKey(text, price)); ok {
			results[i] = cached
			continue
		}
		pending = append(pending, i)
	}
	if len(pending) == 0 {
		return results
	}

	if n.client != nil && n.client.Configured() {
		if err := n.fillBatchWithLM(ctx, texts, prices, pending, results); err == nil {
			return results
		} else {
			log.Printf("[NORMALIZER] batch %v: %v, falling back to sequential", scanerr.NormalizerUnavailable, err)
		}
	}

	for _, i := range pending {
		var price *float64
		if i < len(prices) {
			price = prices[i]
		}
		results[i] = n.Normalize(ctx, texts[i], price)
	}
	return results
}

func (n *Normalizer) fillBatchWithLM(ctx context.Context, texts []string, prices []*float64, pending []int, results []models.NormalizedProduct) error {
	const maxBatch = 10
	for start := 0; start < len(pending); start += maxBatch {
		end := start + maxBatch
		if end > len(pending) {
			end = len(pending)
		}
		chunk := pending[start:end]

		var sb strings.Builder
		sb.WriteString("Normaliser følgende produkter:\n")
		for idx, i := range chunk {
			sb.WriteString(fmt.Sprintf("%d. %s", idx+1, texts[i]))
			if i < len(prices) && prices[i] != nil {
				sb.WriteString(fmt.Sprintf(" (pris: %.2f kr)", *prices[i]))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\nReturner JSON array med et objekt per produkt i samme rækkefølge.")

		raw, err := n.client.Complete(ctx, llm.SystemPrompt, sb.String(), 0.1, 500*len(chunk))
		if err != nil {
			return err
		}

		items, err := parseBatchReply(raw)
		if err != nil || len(items) < len(chunk) {
			return fmt.Errorf("malformed batch reply")
		}

		for idx, i := range chunk {
			product := n.coerceLMReply(items[idx], texts[i])
			product.Confidence = 0.85
			results[i] = product
			var price *float64
			if i < len(prices) {
				price = prices[i]
			}
			n.cache.put(cacheKey(texts[i], price), product)
		}
	}
	return nil
}

func parseBatchReply(raw string) ([]lmReply, error) {
	var asArray []lmReply
	if err := json.Unmarshal([]byte(raw), &asArray); err == nil {
		return asArray, nil
	}
	var wrapped struct {
		Products []lmReply `json:"products"`
	}
	if err := json.Unmarshal([]byte(raw), &wrapped); err == nil && len(wrapped.Products) > 0 {
		return wrapped.Products, nil
	}
	var single lmReply
	if err := json.Unmarshal([]byte(raw), &single); err == nil {
		return []lmReply{single}, nil
	}
	return nil, fmt.Errorf("unparseable batch reply")
}

// lmReply is the JSON shape the LM provider is required to return.
type lmReply struct {
	BrandNorm      *string  `json:"brand_norm"`
	ProductNorm    *string  `json:"product_norm"`
	VariantNorm    *string  `json:"variant_norm"`
	Category       *string  `json:"category"`
	NetAmountValue *float64 `json:"net_amount_value"`
	NetAmountUnit  *string  `json:"net_amount_unit"`
	PackCount      *float64 `json:"pack_count"`
	ContainerType  *string  `json:"container_type"`
	DepositValue   *float64 `json:"deposit_value"`
	Comment        *string  `json:"comment"`
}

func (n *Normalizer) normalizeWithLM(ctx context.Context, rawText string, price *float64) (models.NormalizedProduct, error) {
	userMsg := "Produkt: " + rawText
	if price != nil {
		userMsg += fmt.Sprintf("\nPris: %.2f kr", *price)
	}

	raw, err := n.client.Complete(ctx, llm.SystemPrompt, userMsg, 0.1, 300)
	if err != nil {
		return models.NormalizedProduct{}, err
	}

	var reply lmReply
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		return models.NormalizedProduct{}, fmt.Errorf("decode lm reply: %w", err)
	}

	product := n.coerceLMReply(reply, rawText)
	product.Confidence = 0.9
	return product, nil
}

func (n *Normalizer) coerceLMReply(reply lmReply, rawText string) models.NormalizedProduct {
	product := models.NormalizedProduct{
		Brand:   cleanString(reply.BrandNorm),
		Product: cleanString(reply.ProductNorm),
		Variant: cleanString(reply.VariantNorm),
		Comment: cleanString(reply.Comment),
	}
	if product.Product == "" {
		product.Product = rawText
	}
	product.Category = n.coerceCategory(cleanString(reply.Category))
	product.AmountValue = reply.NetAmountValue
	product.AmountUnit = normalizeUnitSynonym(cleanString(reply.NetAmountUnit))
	if reply.PackCount != nil {
		pc := int(*reply.PackCount)
		product.PackCount = &pc
	}
	product.Container = coerceContainer(cleanString(reply.ContainerType))
	product.Deposit = reply.DepositValue
	return product
}

func cleanString(s *string) string {
	if s == nil {
		return ""
	}
	v := strings.TrimSpace(*s)
	if strings.EqualFold(v, "null") {
		return ""
	}
	return v
}

func (n *Normalizer) coerceCategory(category string) string {
	if category == "" {
		return "Andet"
	}
	var names []string
	if n.categories != nil {
		names = n.categories.Names()
	}
	if len(names) == 0 {
		names = defaultCategoryNames
	}
	for _, valid := range names {
		if strings.EqualFold(valid, category) {
			return valid
		}
	}
	return "Andet"
}

var defaultCategoryNames = []string{
	"Mejeri", "Kød", "Pålæg", "Fisk", "Frugt & Grønt", "Brød & Bagværk",
	"Drikkevarer", "Øl & Vin", "Frost", "Kolonial", "Morgenmad", "Snacks",
	"Personlig pleje", "Rengøring", "Husholdning", "Kæledyr", "Baby", "Non-food", "Andet",
}

// unitSynonyms coerces a free-form unit string into the closed
// models.AmountUnit set via a synonym map: gram→g, liter→l, kilo→kg, styk→stk.
var unitSynonyms = map[string]models.AmountUnit{
	"g": models.UnitGram, "gram": models.UnitGram,
	"kg": models.UnitKilogram, "kilo": models.UnitKilogram, "kilogram": models.UnitKilogram,
	"ml": models.UnitMilliliter, "milliliter": models.UnitMilliliter,
	"cl": models.UnitCentiliter, "centiliter": models.UnitCentiliter,
	"dl": models.UnitDeciliter, "deciliter": models.UnitDeciliter,
	"l": models.UnitLiter, "liter": models.UnitLiter,
	"stk": models.UnitPiece, "styk": models.UnitPiece, "stykker": models.UnitPiece,
	"pk": models.UnitPack, "pakke": models.UnitPack,
}

func normalizeUnitSynonym(unit string) models.AmountUnit {
	if unit == "" {
		return ""
	}
	if u, ok := unitSynonyms[strings.ToLower(strings.TrimSpace(unit))]; ok {
		return u
	}
	return ""
}

var containerTypes = map[string]models.ContainerType{
	"CAN": models.ContainerCan, "BOTTLE": models.ContainerBottle, "BAG": models.ContainerBag,
	"TRAY": models.ContainerTray, "BOX": models.ContainerBox, "JAR": models.ContainerJar,
	"TUBE": models.ContainerTube,
}

func coerceContainer(container string) models.ContainerType {
	if container == "" {
		return models.ContainerNone
	}
	upper := strings.ToUpper(strings.TrimSpace(container))
	if upper == "NONE" {
		return models.ContainerNone
	}
	if c, ok := containerTypes[upper]; ok {
		return c
	}
	return models.ContainerNone
}

// --- rule-based fallback ---

var (
	ruleBrandRegex  = regexp.MustCompile(`^([A-ZÆØÅ][a-zæøå]+(?:\s+[A-ZÆØÅ][a-zæøå]+)?)`)
	ruleAmountRegex = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(g|kg|ml|cl|dl|l|liter|stk)\b`)
	rulePackRegex   = regexp.MustCompile(`(?i)(\d+)\s*(?:x|-pak|pak|stk)`)
	ruleCommentRe   = regexp.MustCompile(`(?i)(max\.?\s*\d+\s*(?:stk|pr|per)[^.]*)`)
)

// ruleBrandBlacklist rejects adjectives that are not real brands, like
// dansk, økologisk, frisk.
var ruleBrandBlacklist = map[string]bool{
	"dansk": true, "økologisk": true, "frisk": true, "god": true, "lækker": true,
}

func (n *Normalizer) normalizeWithRules(rawText string) models.NormalizedProduct {
	product := models.NormalizedProduct{Product: rawText, Confidence: 0.5}
	lower := strings.ToLower(rawText)

	if m := ruleBrandRegex.FindStringSubmatch(rawText); m != nil && !ruleBrandBlacklist[strings.ToLower(m[1])] {
		product.Brand = m[1]
	}

	if m := ruleAmountRegex.FindStringSubmatch(lower); m != nil {
		v, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
		if err == nil {
			product.AmountValue = &v
			product.AmountUnit = normalizeUnitSynonym(m[2])
		}
	}

	if m := rulePackRegex.FindStringSubmatch(lower); m != nil {
		if count, err := strconv.Atoi(m[1]); err == nil && count >= 2 && count <= 24 {
			product.PackCount = &count
		}
	}

	product.Container = detectContainerByKeyword(lower)
	product.Category = n.detectCategoryByKeyword(lower)

	if m := ruleCommentRe.FindStringSubmatch(lower); m != nil {
		product.Comment = strings.TrimSpace(m[1])
	}

	return product
}

// containerKeywords maps container kinds to their Danish keyword sets.
var containerKeywords = []struct {
	container models.ContainerType
	keywords  []string
}{
	{models.ContainerCan, []string{"dåse", "dåser"}},
	{models.ContainerBottle, []string{"flaske", "flasker"}},
	{models.ContainerBag, []string{"pose", "poser"}},
	{models.ContainerTray, []string{"bakke", "bakker"}},
	{models.ContainerBox, []string{"æske", "karton"}},
	{models.ContainerJar, []string{"glas", "syltetøj"}},
	{models.ContainerTube, []string{"tube"}},
}

func detectContainerByKeyword(lower string) models.ContainerType {
	for _, c := range containerKeywords {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				return c.container
			}
		}
	}
	return models.ContainerNone
}

// detectCategoryByKeyword scores the built-in/configured taxonomy against
// the product text; the category with the most keyword hits wins, ties
// going to the alphabetically first category name; zero hits -> "Andet".
func (n *Normalizer) detectCategoryByKeyword(lower string) string {
	var table map[string][]string
	if n.categories != nil {
		table = n.categories.KeywordsByName()
	}
	if len(table) == 0 {
		table = fallbackCategoryKeywords
	}

	best := "Andet"
	bestScore := 0
	for _, name := range sortedKeys(table) {
		score := 0
		for _, kw := range table[name] {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = name
		}
	}
	return best
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Stable, deterministic iteration so ties always resolve the same way.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

// fallbackCategoryKeywords is used when no CategorySource is configured at
// all (e.g. unit tests exercising the rule path in isolation).
var fallbackCategoryKeywords = map[string][]string{
	"Øl & Vin":        {"øl", "vin", "carlsberg", "tuborg", "whisky", "champagne"},
	"Drikkevarer":     {"cola", "sodavand", "juice", "kaffe", "te"},
	"Mejeri":          {"mælk", "ost", "yoghurt", "smør", "fløde", "skyr"},
	"Pålæg":           {"leverpostej", "spegepølse", "skinke", "pålæg"},
	"Kød":             {"kød", "kylling", "svin", "okse", "hakket", "bacon"},
	"Fisk":            {"fisk", "laks", "torsk", "reje", "tun", "sild"},
	"Frugt & Grønt":   {"æble", "banan", "tomat", "agurk", "salat", "kartof"},
	"Brød & Bagværk":  {"brød", "bolle", "kage", "wienerbrød"},
	"Frost":           {"frost", "frossen", "is", "pizza"},
	"Kolonial":        {"pasta", "ris", "sauce", "konserves"},
	"Snacks":          {"chips", "slik", "chokolade", "nødder"},
	"Personlig pleje": {"shampoo", "tandpasta", "creme", "deodorant"},
	"Rengøring":       {"vaskemiddel", "opvask", "rengøring"},
	"Husholdning":     {"toiletpapir", "køkkenrulle", "folie"},
}
