package recipe

import (
	"math/rand/v2"
	"regexp"
	"strconv"
	"time"
)

// Id prefixes written into the backing document.
const (
	RecipeIDPrefix = "RECIPE_"
	ReviewIDPrefix = "REVIEW_"
)

// TimestampLayout is the text form of CreatedAt values stamped by this
// package (local wall clock, millisecond precision).
const TimestampLayout = "2006-01-02T15:04:05.000"

// RecipeIDPattern matches ids produced by [NewRecipeID].
var RecipeIDPattern = regexp.MustCompile(`^RECIPE_\d+_\d{1,3}$`)

// NewRecipeID returns "RECIPE_<epoch millis>_<0..999>".
//
// Two ids minted in the same millisecond collide with probability 1/1000;
// callers must not rely on global uniqueness.
func NewRecipeID(now time.Time) string {
	return RecipeIDPrefix + strconv.FormatInt(now.UnixMilli(), 10) + "_" + strconv.Itoa(rand.IntN(1000))
}

// NewReviewID returns "REVIEW_<epoch millis>".
func NewReviewID(now time.Time) string {
	return ReviewIDPrefix + strconv.FormatInt(now.UnixMilli(), 10)
}

// FormatTimestamp renders t for CreatedAt fields.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}
