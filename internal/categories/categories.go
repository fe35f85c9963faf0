// Package categories provides the read-only product taxonomy the
// Normalizer's rule-based fallback and LM post-validation consult: a
// keyword map cached for 5 minutes, falling back to a built-in table on
// failure.
package categories

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sort"
	"sync"
	"time"
)

// redisStore is the minimal surface this package needs from
// internal/cache.RedisClient, kept narrow the same way
// internal/pipeline.redisClient is, so this package stays decoupled from
// the cache package's own wiring details.
type redisStore interface {
	GetJSON(ctx context.Context, key string, dest interface{}) bool
	SetJSON(ctx context.Context, key string, v interface{})
}

// sharedCacheKey is the single key the whole taxonomy blob is stored under,
// shared by every scanner instance pointed at the same Redis so writes
// serialize across hosts.
const sharedCacheKey = "categories:v1"

// Category is one entry of the product taxonomy.
type Category struct {
	ID          string
	Name        string
	Keywords    []string
	Description string
	SortOrder   int
	Active      bool
}

// cacheDuration is how long a fetched taxonomy snapshot stays fresh.
const cacheDuration = 5 * time.Minute

// Service fetches categories from a remote taxonomy API and caches them
// process-wide; it degrades to the built-in fallback table on any fetch
// failure.
type Service struct {
	baseURL    string
	httpClient *http.Client
	shared     redisStore

	mu        sync.RWMutex
	cache     map[string]Category
	fetchedAt time.Time
}

// NewService builds a Service pointed at baseURL (e.g.
// "https://api.example.com"). An empty baseURL means the remote fetch is
// always skipped and the fallback table is used.
func NewService(baseURL string) *Service {
	return &Service{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// NewServiceWithRedis builds a Service that also mirrors each successful
// taxonomy fetch to shared, and reads that last-good snapshot back when a
// remote fetch fails, before falling back to the built-in table. Each
// instance still fetches from the remote API itself whenever its own cache
// is stale. shared is typically a *cache.RedisClient.
func NewServiceWithRedis(baseURL string, shared redisStore) *Service {
	return &Service{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		shared:     shared,
	}
}

// Categories returns the active category set, fetching from the remote
// API if the cache is stale and falling back to the built-in table on
// failure.
func (s *Service) Categories() map[string]Category {
	s.mu.RLock()
	valid := s.isCacheValidLocked()
	cached := s.cache
	s.mu.RUnlock()
	if valid {
		return cached
	}

	fetched, err := s.fetchFromAPI()
	if err != nil {
		log.Printf("[CATEGORIES] remote fetch failed, using cache/fallback: %v", err)
		if s.shared != nil {
			var sharedCats map[string]Category
			if s.shared.GetJSON(context.Background(), sharedCacheKey, &sharedCats) && len(sharedCats) > 0 {
				s.mu.Lock()
				s.cache = sharedCats
				s.fetchedAt = time.Now()
				s.mu.Unlock()
				return sharedCats
			}
		}
		s.mu.RLock()
		defer s.mu.RUnlock()
		if len(s.cache) > 0 {
			return s.cache
		}
		return fallbackMap()
	}

	s.mu.Lock()
	s.cache = fetched
	s.fetchedAt = time.Now()
	s.mu.Unlock()
	if s.shared != nil {
		s.shared.SetJSON(context.Background(), sharedCacheKey, fetched)
	}
	return fetched
}

func (s *Service) isCacheValidLocked() bool {
	return len(s.cache) > 0 && time.Since(s.fetchedAt) < cacheDuration
}

type apiCategory struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Keywords    []string `json:"keyword_list"`
	Description string   `json:"description"`
	SortOrder   int      `json:"sort_order"`
	Active      bool     `json:"active"`
}

type apiResponse struct {
	Categories []apiCategory `json:"categories"`
}

func (s *Service) fetchFromAPI() (map[string]Category, error) {
	if s.baseURL == "" {
		return nil, errNoBaseURL
	}

	resp, err := s.httpClient.Get(s.baseURL + "/api/categories")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, httpStatusError(resp.StatusCode)
	}

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make(map[string]Category, len(parsed.Categories))
	for _, c := range parsed.Categories {
		out[c.ID] = Category{
			ID: c.ID, Name: c.Name, Keywords: c.Keywords,
			Description: c.Description, SortOrder: c.SortOrder, Active: c.Active,
		}
	}
	return out, nil
}

// KeywordsByName returns the active categories as name -> keyword-list,
// the shape the Normalizer's category-scoring rule consumes.
func (s *Service) KeywordsByName() map[string][]string {
	cats := s.Categories()
	out := make(map[string][]string, len(cats))
	for _, c := range cats {
		if c.Active {
			out[c.Name] = c.Keywords
		}
	}
	return out
}

// Names returns the active category display names, the allowed set the
// LM provider's category field is coerced into.
func (s *Service) Names() []string {
	cats := s.Categories()
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		if c.Active {
			names = append(names, c.Name)
		}
	}
	sort.Strings(names)
	return names
}

type staticError string

func (e staticError) Error() string { return string(e) }

const errNoBaseURL = staticError("no category service base url configured")

func httpStatusError(code int) error {
	return staticError("category service returned non-200 status")
}

// fallbackTable is the built-in 16-category taxonomy used whenever the
// remote taxonomy service is unreachable.
var fallbackTable = []Category{
	{ID: "mejeri", Name: "Mejeri", SortOrder: 10, Active: true, Description: "Mælk, ost, yoghurt, smør, fløde, skyr, æg",
		Keywords: []string{"mælk", "smør", "ost", "yoghurt", "skyr", "fløde", "æg", "arla", "lurpak"}},
	{ID: "koed", Name: "Kød", SortOrder: 20, Active: true, Description: "Kød, kylling, svinekød, oksekød, hakket kød, pølser",
		Keywords: []string{"kylling", "oksekød", "svinekød", "flæsk", "bacon", "pølse", "hakket", "kød", "medister"}},
	{ID: "paalaeg", Name: "Pålæg", SortOrder: 25, Active: true, Description: "Leverpostej, spegepølse, skinke",
		Keywords: []string{"pålæg", "skinke", "salami", "leverpostej", "spegepølse", "rullepølse"}},
	{ID: "fisk", Name: "Fisk", SortOrder: 30, Active: true, Description: "Frisk fisk, røget fisk, rejer, tun, makrel",
		Keywords: []string{"laks", "sild", "rejer", "torsk", "makrel", "tun", "fisk"}},
	{ID: "frugt-groent", Name: "Frugt & Grønt", SortOrder: 40, Active: true, Description: "Frugt, grøntsager, salat, kartofler",
		Keywords: []string{"æble", "banan", "tomat", "agurk", "salat", "kartoffel", "gulerod", "frugt", "grønt"}},
	{ID: "broed-bagvaerk", Name: "Brød & Bagværk", SortOrder: 50, Active: true, Description: "Brød, boller, kager",
		Keywords: []string{"brød", "boller", "rugbrød", "toast", "croissant", "kage"}},
	{ID: "drikkevarer", Name: "Drikkevarer", SortOrder: 60, Active: true, Description: "Sodavand, juice, vand, kaffe, te",
		Keywords: []string{"cola", "juice", "vand", "sodavand", "kaffe", "te"}},
	{ID: "oel-vin", Name: "Øl & Vin", SortOrder: 65, Active: true, Description: "Øl, vin, spiritus",
		Keywords: []string{"øl", "vin", "carlsberg", "tuborg", "whisky", "vodka", "champagne"}},
	{ID: "frost", Name: "Frost", SortOrder: 70, Active: true, Description: "Frosne varer, is, frossen pizza",
		Keywords: []string{"is", "frost", "frossen", "pizza", "frosne"}},
	{ID: "kolonial", Name: "Kolonial", SortOrder: 80, Active: true, Description: "Konserves, pasta, ris, sauce",
		Keywords: []string{"pasta", "ris", "mel", "sukker", "sauce", "ketchup", "konserves"}},
	{ID: "snacks", Name: "Snacks", SortOrder: 90, Active: true, Description: "Chips, slik, chokolade, nødder",
		Keywords: []string{"chips", "slik", "chokolade", "nødder", "popcorn", "kiks"}},
	{ID: "personlig-pleje", Name: "Personlig pleje", SortOrder: 100, Active: true, Description: "Shampoo, tandpasta, creme",
		Keywords: []string{"shampoo", "sæbe", "tandpasta", "deodorant", "creme"}},
	{ID: "rengoering", Name: "Rengøring", SortOrder: 110, Active: true, Description: "Opvaskemiddel, vaskemiddel",
		Keywords: []string{"vaskemiddel", "opvask", "rengøring"}},
	{ID: "husholdning", Name: "Husholdning", SortOrder: 115, Active: true, Description: "Køkkenrulle, toiletpapir, folie",
		Keywords: []string{"toiletpapir", "køkkenrulle", "servietter", "folie"}},
	{ID: "non-food", Name: "Non-food", SortOrder: 130, Active: true, Description: "Tøj, sko, legetøj, elektronik",
		Keywords: []string{"tøj", "sko", "legetøj", "elektronik"}},
	{ID: "andet", Name: "Andet", SortOrder: 999, Active: true, Description: "Alt der ikke passer andre kategorier"},
}

func fallbackMap() map[string]Category {
	out := make(map[string]Category, len(fallbackTable))
	for _, c := range fallbackTable {
		out[c.ID] = c
	}
	return out
}

// Fallback exposes the built-in table directly, for callers (tests, the
// rule-based Normalizer when no Service is configured at all) that never
// need the remote/cache machinery.
func Fallback() map[string]Category {
	return fallbackMap()
}
