package service

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"quickcart-emporium/models"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleReviews() []models.Review {
	return []models.Review{
		{ReviewerName: "a", Rating: 3, Date: day("2024-03-01")},
		{ReviewerName: "b", Rating: 5, Date: day("2024-01-01")},
		{ReviewerName: "c", Rating: 1, Date: day("2024-05-01")},
		{ReviewerName: "d", Rating: 5, Date: day("2023-01-01")},
		{ReviewerName: "e", Rating: 3, Date: day("2024-03-01")},
	}
}

func names(reviews []models.Review) []string {
	out := make([]string, len(reviews))
	for i, r := range reviews {
		out[i] = r.ReviewerName
	}
	return out
}

func TestSortReviews(t *testing.T) {
	tests := []struct {
		key  ReviewSort
		want []string
	}{
		{ReviewSortDateDesc, []string{"c", "a", "e", "b", "d"}},
		{ReviewSortDateAsc, []string{"d", "b", "a", "e", "c"}},
		{ReviewSortRatingDesc, []string{"b", "d", "a", "e", "c"}},
		{ReviewSortRatingAsc, []string{"c", "a", "e", "b", "d"}},
		{ReviewSort("helpfulness"), []string{"a", "b", "c", "d", "e"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			input := sampleReviews()
			before := sampleReviews()

			got := SortReviews(input, tt.key)

			if diff := cmp.Diff(tt.want, names(got)); diff != "" {
				t.Errorf("SortReviews(%s) order mismatch (-want +got):\n%s", tt.key, diff)
			}
			if diff := cmp.Diff(before, input); diff != "" {
				t.Errorf("input was mutated (-before +after):\n%s", diff)
			}
		})
	}
}

func TestSortReviewsIsStableForEqualRatings(t *testing.T) {
	reviews := []models.Review{
		{ReviewerName: "newer", Rating: 5, Date: day("2024-01-01")},
		{ReviewerName: "older", Rating: 5, Date: day("2023-01-01")},
	}

	got := SortReviews(reviews, ReviewSortRatingDesc)
	assert.Equal(t, []string{"newer", "older"}, names(got))
}

func TestSortReviewsEmpty(t *testing.T) {
	assert.Empty(t, SortReviews(nil, ReviewSortDateDesc))
	assert.NotNil(t, SortReviews(nil, ReviewSortDateDesc))
}

func TestParseReviewSort(t *testing.T) {
	cases := map[string]struct {
		want ReviewSort
		ok   bool
	}{
		"":            {ReviewSortDateDesc, true},
		"date":        {ReviewSortDateDesc, true},
		"rating":      {ReviewSortRatingDesc, true},
		"DATE-ASC":    {ReviewSortDateAsc, true},
		"rating-asc":  {ReviewSortRatingAsc, true},
		"rating-desc": {ReviewSortRatingDesc, true},
		"stars":       {ReviewSortDateDesc, false},
	}
	for input, want := range cases {
		got, ok := ParseReviewSort(input)
		assert.Equal(t, want.want, got, input)
		assert.Equal(t, want.ok, ok, input)
	}
}
