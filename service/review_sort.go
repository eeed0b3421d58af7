package service

import (
	"sort"
	"strings"

	"quickcart-emporium/models"
)

// ReviewSort names an ordering of a product's reviews
type ReviewSort string

const (
	ReviewSortDateDesc   ReviewSort = "date-desc"
	ReviewSortDateAsc    ReviewSort = "date-asc"
	ReviewSortRatingDesc ReviewSort = "rating-desc"
	ReviewSortRatingAsc  ReviewSort = "rating-asc"

	DefaultReviewSort = ReviewSortDateDesc
)

// ParseReviewSort maps a query value to a ReviewSort.
// "date" and "rating" are shorthands for the descending orders; anything
// unrecognised yields the default (newest first) and ok=false.
func ParseReviewSort(value string) (ReviewSort, bool) {
	switch ReviewSort(strings.ToLower(strings.TrimSpace(value))) {
	case ReviewSortDateDesc, "date":
		return ReviewSortDateDesc, true
	case ReviewSortDateAsc:
		return ReviewSortDateAsc, true
	case ReviewSortRatingDesc, "rating":
		return ReviewSortRatingDesc, true
	case ReviewSortRatingAsc:
		return ReviewSortRatingAsc, true
	case "":
		return DefaultReviewSort, true
	default:
		return DefaultReviewSort, false
	}
}

// SortReviews returns a sorted copy of reviews. Equal keys keep their
// original relative order and the input slice is left untouched. An unknown
// key returns the copy unsorted.
func SortReviews(reviews []models.Review, key ReviewSort) []models.Review {
	sorted := make([]models.Review, len(reviews))
	copy(sorted, reviews)

	var less func(a, b models.Review) bool
	switch key {
	case ReviewSortDateDesc:
		less = func(a, b models.Review) bool { return a.Date.After(b.Date) }
	case ReviewSortDateAsc:
		less = func(a, b models.Review) bool { return a.Date.Before(b.Date) }
	case ReviewSortRatingDesc:
		less = func(a, b models.Review) bool { return a.Rating > b.Rating }
	case ReviewSortRatingAsc:
		less = func(a, b models.Review) bool { return a.Rating < b.Rating }
	default:
		return sorted
	}

	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
	return sorted
}
