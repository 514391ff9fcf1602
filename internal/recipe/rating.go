package recipe

// Rate folds one rating event into the running aggregate.
//
// Only the mean and count are stored, so an individual rating can never be
// removed or corrected later.
func (r *Recipe) Rate(rating int) {
	total := r.TotalRatings
	r.AverageRating = (r.AverageRating*float64(total) + float64(rating)) / float64(total+1)
	r.TotalRatings = total + 1
}

// AddReview appends rev to the recipe and counts its rating toward the
// aggregate, exactly like a quick rating.
func (r *Recipe) AddReview(rev Review) {
	rev.RecipeID = r.ID
	r.Reviews = append(r.Reviews, rev)
	r.Rate(rev.Rating)
}
