package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"quickcart-emporium/logger"
	"quickcart-emporium/models"
)

// flexibleID accepts both string and numeric ids from the upstream API
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexibleID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid product id %s: %w", string(data), err)
	}
	*f = flexibleID(n.String())
	return nil
}

// flexibleNumber accepts JSON numbers and numeric strings
type flexibleNumber float64

func (f *flexibleNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", s, err)
		}
		// "NaN" and "Inf" parse but cannot be encoded back to JSON
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		*f = flexibleNumber(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexibleNumber(v)
	return nil
}

type upstreamReview struct {
	ReviewerName string         `json:"reviewerName"`
	Date         string         `json:"date"`
	Rating       flexibleNumber `json:"rating"`
	Comment      string         `json:"comment"`
}

type upstreamProduct struct {
	ID          flexibleID       `json:"id"`
	Title       string           `json:"title"`
	Price       flexibleNumber   `json:"price"`
	Thumbnail   string           `json:"thumbnail"`
	Images      []string         `json:"images"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Tags        []string         `json:"tags"`
	Rating      flexibleNumber   `json:"rating"`
	Stock       flexibleNumber   `json:"stock"`
	Reviews     []upstreamReview `json:"reviews"`
}

// productEnvelope is the object form of the listing response. Every field is
// optional; the pointers tell "absent" apart from zero.
type productEnvelope struct {
	Products      *[]json.RawMessage `json:"products"`
	Total         *flexibleNumber    `json:"total"`
	TotalPages    *flexibleNumber    `json:"totalPages"`
	TotalProducts *flexibleNumber    `json:"totalProducts"`
}

var reviewDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// normalizeProductList applies the listing normalization policy:
//   - an envelope with "products" supplies the items, a bare array is the items,
//     anything else yields no items
//   - totalPages comes from "totalPages", else ceil(total/limit), else 1
//   - totalItems comes from "totalProducts", else "total", else 0
//
// Items are capped at limit and are never nil.
func normalizeProductList(body []byte, limit int) (models.PagedResult, error) {
	if limit <= 0 {
		limit = models.DefaultLimit
	}
	body = bytes.TrimSpace(body)
	if !json.Valid(body) {
		return models.PagedResult{}, fmt.Errorf("response body is not valid JSON")
	}

	var rawItems []json.RawMessage
	var env productEnvelope
	hasMetadata := false

	switch body[0] {
	case '[':
		if err := json.Unmarshal(body, &rawItems); err != nil {
			return models.PagedResult{}, fmt.Errorf("failed to decode product list: %w", err)
		}
	case '{':
		if err := json.Unmarshal(body, &env); err != nil {
			// Metadata with unexpected types is treated as absent
			logger.Log.Warnf("⚠️  normalizeProductList: Ignoring malformed envelope: %v", err)
			env = productEnvelope{}
			_ = json.Unmarshal(body, &struct {
				Products *[]json.RawMessage `json:"products"`
			}{&rawItems})
		} else if env.Products != nil {
			rawItems = *env.Products
		}
		hasMetadata = env.TotalPages != nil || env.Total != nil || env.TotalProducts != nil
	default:
		logger.Log.Warnf("⚠️  normalizeProductList: Unexpected response shape, returning no items")
	}

	items := make([]models.ProductSummary, 0, len(rawItems))
	for i, raw := range rawItems {
		var p upstreamProduct
		if err := json.Unmarshal(raw, &p); err != nil {
			logger.Log.Warnf("⚠️  normalizeProductList: Skipping product at index %d: %v", i, err)
			continue
		}
		items = append(items, toSummary(p))
	}
	full := len(items) >= limit
	if len(items) > limit {
		items = items[:limit]
	}

	result := models.PagedResult{
		Items:      items,
		TotalPages: totalPages(env.TotalPages, env.Total, limit),
		TotalItems: totalItems(env.TotalProducts, env.Total),
	}
	result.HasMore = !hasMetadata && full
	return result, nil
}

// maxCount caps upstream counts so absurd metadata cannot overflow an int
// or drive huge allocations further down
const maxCount = math.MaxInt32

func clampCount(v float64) int {
	if v <= 0 {
		return 0
	}
	if v > maxCount {
		return maxCount
	}
	return int(v)
}

func totalPages(explicit, total *flexibleNumber, limit int) int {
	if explicit != nil && *explicit >= 1 {
		return clampCount(float64(*explicit))
	}
	if total != nil && *total > 0 && limit > 0 {
		return clampCount(math.Ceil(float64(*total) / float64(limit)))
	}
	return 1
}

func totalItems(totalProducts, total *flexibleNumber) int {
	if totalProducts != nil && *totalProducts > 0 {
		return clampCount(float64(*totalProducts))
	}
	if total != nil && *total > 0 {
		return clampCount(float64(*total))
	}
	return 0
}

// normalizeProductDetail decodes a single product object
func normalizeProductDetail(body []byte) (*models.ProductDetail, error) {
	var p upstreamProduct
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("failed to decode product: %w", err)
	}

	detail := &models.ProductDetail{
		ProductSummary: toSummary(p),
		Description:    p.Description,
		Tags:           uniqueStrings(p.Tags),
		Rating:         clampFloat(float64(p.Rating), 0, 5),
		Stock:          int(math.Max(0, float64(p.Stock))),
		Reviews:        make([]models.Review, 0, len(p.Reviews)),
	}
	for _, r := range p.Reviews {
		detail.Reviews = append(detail.Reviews, toReview(r))
	}
	return detail, nil
}

// normalizeCategories accepts a list of names or of category objects, bare or
// wrapped in {"categories": [...]}, and returns the names in order
func normalizeCategories(body []byte) ([]string, error) {
	body = bytes.TrimSpace(body)
	var raw []json.RawMessage
	if len(body) > 0 && body[0] == '{' {
		var env struct {
			Categories []json.RawMessage `json:"categories"`
		}
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("failed to decode categories: %w", err)
		}
		raw = env.Categories
	} else if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}

	categories := make([]string, 0, len(raw))
	for _, item := range raw {
		var name string
		if err := json.Unmarshal(item, &name); err != nil {
			var obj struct {
				Slug string `json:"slug"`
				Name string `json:"name"`
			}
			if err := json.Unmarshal(item, &obj); err != nil {
				logger.Log.Warnf("⚠️  normalizeCategories: Skipping category %s", string(item))
				continue
			}
			name = obj.Slug
			if strings.TrimSpace(name) == "" {
				name = obj.Name
			}
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		categories = append(categories, name)
	}
	return categories, nil
}

func toSummary(p upstreamProduct) models.ProductSummary {
	images := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}
	thumbnail := strings.TrimSpace(p.Thumbnail)
	if thumbnail == "" && len(images) > 0 {
		thumbnail = images[0]
	}
	return models.ProductSummary{
		ID:        string(p.ID),
		Title:     p.Title,
		Price:     math.Max(0, float64(p.Price)),
		Thumbnail: thumbnail,
		Images:    images,
		Category:  p.Category,
	}
}

func toReview(r upstreamReview) models.Review {
	return models.Review{
		ReviewerName: r.ReviewerName,
		Date:         parseReviewDate(r.Date),
		Rating:       int(clampFloat(math.Round(float64(r.Rating)), 1, 5)),
		Comment:      r.Comment,
	}
}

// parseReviewDate returns the zero time when the date cannot be parsed
func parseReviewDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range reviewDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	logger.Log.Debugf("normalize: Unparseable review date %q", s)
	return time.Time{}
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
