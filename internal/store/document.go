package store

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/calvinalkan/recipebox/internal/recipe"
)

// The on-disk shape. Field order is the element order in the file; every
// scalar is written even when empty so the layout stays fixed.
type xmlDocument struct {
	XMLName xml.Name    `xml:"recipes"`
	Recipes []xmlRecipe `xml:"recipe"`
}

type xmlRecipe struct {
	ID              string  `xml:"id,attr"`
	Title           string  `xml:"title"`
	Description     string  `xml:"description"`
	CuisineType     string  `xml:"cuisineType"`
	DifficultyLevel string  `xml:"difficultyLevel"`
	PreparationTime *string `xml:"preparationTime"`
	CookingTime     *string `xml:"cookingTime"`
	Servings        *string `xml:"servings"`
	Category        string  `xml:"category"`
	PhotoPath       string  `xml:"photoPath"`
	UserID          string  `xml:"userId"`
	AuthorName      string  `xml:"authorName"`
	AverageRating   *string `xml:"averageRating"`
	TotalRatings    *string `xml:"totalRatings"`
	Approved        *string `xml:"approved"`
	CreatedAt       string  `xml:"createdAt"`

	Ingredients      xmlIngredients `xml:"ingredients"`
	PreparationSteps xmlSteps       `xml:"preparationSteps"`
	Tags             xmlTags        `xml:"tags"`
	Reviews          xmlReviews     `xml:"reviews"`
}

type xmlIngredients struct {
	Items []xmlIngredient `xml:"ingredient"`
}

type xmlIngredient struct {
	Name     string  `xml:"name"`
	Quantity *string `xml:"quantity"`
	Unit     string  `xml:"unit"`
	Notes    string  `xml:"notes,omitempty"`
}

type xmlSteps struct {
	Items []string `xml:"step"`
}

type xmlTags struct {
	Items []string `xml:"tag"`
}

type xmlReviews struct {
	Items []xmlReview `xml:"review"`
}

type xmlReview struct {
	ID        string  `xml:"id,attr"`
	UserID    string  `xml:"userId"`
	Username  string  `xml:"username"`
	Rating    *string `xml:"rating"`
	Comment   string  `xml:"comment"`
	CreatedAt string  `xml:"createdAt"`
}

// Defaults applied when an element is missing from a record.
const (
	defaultServings = 1
	indent          = "  "
)

// encodeDocument renders the whole collection, records in slice order.
func encodeDocument(recipes []recipe.Recipe) ([]byte, error) {
	doc := xmlDocument{Recipes: make([]xmlRecipe, 0, len(recipes))}
	for i := range recipes {
		doc.Recipes = append(doc.Recipes, toXML(&recipes[i]))
	}

	var buf bytes.Buffer

	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", indent)

	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	buf.WriteByte('\n')

	return buf.Bytes(), nil
}

// decodeDocument parses a full document. Any malformed markup, a root other
// than <recipes>, trailing content after the root, or non-numeric text in a
// numeric element is an error.
func decodeDocument(data []byte) ([]recipe.Recipe, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var doc xmlDocument
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("document is empty")
		}

		return nil, err
	}

	if err := expectEnd(dec); err != nil {
		return nil, err
	}

	out := make([]recipe.Recipe, 0, len(doc.Recipes))

	for i := range doc.Recipes {
		r, err := fromXML(&doc.Recipes[i])
		if err != nil {
			return nil, fmt.Errorf("recipe %d (id %q): %w", i+1, doc.Recipes[i].ID, err)
		}

		out = append(out, r)
	}

	return out, nil
}

// expectEnd rejects anything but whitespace, comments and processing
// instructions after the root element.
func expectEnd(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			return fmt.Errorf("unexpected element <%s> after document root", t.Name.Local)
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return errors.New("unexpected text after document root")
			}
		}
	}
}

func toXML(r *recipe.Recipe) xmlRecipe {
	x := xmlRecipe{
		ID:              r.ID,
		Title:           r.Title,
		Description:     r.Description,
		CuisineType:     r.CuisineType,
		DifficultyLevel: r.DifficultyLevel,
		PreparationTime: ptr(strconv.Itoa(r.PreparationTime)),
		CookingTime:     ptr(strconv.Itoa(r.CookingTime)),
		Servings:        ptr(strconv.Itoa(r.Servings)),
		Category:        r.Category,
		PhotoPath:       r.PhotoPath,
		UserID:          r.UserID,
		AuthorName:      r.AuthorName,
		AverageRating:   ptr(formatFloat(r.AverageRating)),
		TotalRatings:    ptr(strconv.Itoa(r.TotalRatings)),
		Approved:        ptr(strconv.FormatBool(r.Approved)),
		CreatedAt:       r.CreatedAt,
	}

	for _, ing := range r.Ingredients {
		x.Ingredients.Items = append(x.Ingredients.Items, xmlIngredient{
			Name:     ing.Name,
			Quantity: ptr(formatFloat(ing.Quantity)),
			Unit:     ing.Unit,
			Notes:    ing.Notes,
		})
	}

	x.PreparationSteps.Items = r.PreparationSteps
	x.Tags.Items = r.Tags

	for _, rev := range r.Reviews {
		x.Reviews.Items = append(x.Reviews.Items, xmlReview{
			ID:        rev.ID,
			UserID:    rev.UserID,
			Username:  rev.Username,
			Rating:    ptr(strconv.Itoa(rev.Rating)),
			Comment:   rev.Comment,
			CreatedAt: rev.CreatedAt,
		})
	}

	return x
}

func fromXML(x *xmlRecipe) (recipe.Recipe, error) {
	r := recipe.Recipe{
		ID:               x.ID,
		Title:            x.Title,
		Description:      x.Description,
		CuisineType:      x.CuisineType,
		DifficultyLevel:  x.DifficultyLevel,
		Category:         x.Category,
		PhotoPath:        x.PhotoPath,
		UserID:           x.UserID,
		AuthorName:       x.AuthorName,
		Approved:         parseBool(x.Approved),
		CreatedAt:        x.CreatedAt,
		Ingredients:      make([]recipe.Ingredient, 0, len(x.Ingredients.Items)),
		PreparationSteps: nonNil(x.PreparationSteps.Items),
		Tags:             nonNil(x.Tags.Items),
		Reviews:          make([]recipe.Review, 0, len(x.Reviews.Items)),
	}

	var err error

	if r.PreparationTime, err = parseInt("preparationTime", x.PreparationTime, 0); err != nil {
		return recipe.Recipe{}, err
	}

	if r.CookingTime, err = parseInt("cookingTime", x.CookingTime, 0); err != nil {
		return recipe.Recipe{}, err
	}

	if r.Servings, err = parseInt("servings", x.Servings, defaultServings); err != nil {
		return recipe.Recipe{}, err
	}

	if r.AverageRating, err = parseFloat("averageRating", x.AverageRating); err != nil {
		return recipe.Recipe{}, err
	}

	if r.TotalRatings, err = parseInt("totalRatings", x.TotalRatings, 0); err != nil {
		return recipe.Recipe{}, err
	}

	for _, ing := range x.Ingredients.Items {
		qty, err := parseFloat("quantity", ing.Quantity)
		if err != nil {
			return recipe.Recipe{}, fmt.Errorf("ingredient %q: %w", ing.Name, err)
		}

		r.Ingredients = append(r.Ingredients, recipe.Ingredient{
			Name:     ing.Name,
			Quantity: qty,
			Unit:     ing.Unit,
			Notes:    ing.Notes,
		})
	}

	for _, rev := range x.Reviews.Items {
		rating, err := parseInt("rating", rev.Rating, 0)
		if err != nil {
			return recipe.Recipe{}, fmt.Errorf("review %q: %w", rev.ID, err)
		}

		r.Reviews = append(r.Reviews, recipe.Review{
			ID:        rev.ID,
			RecipeID:  r.ID,
			UserID:    rev.UserID,
			Username:  rev.Username,
			Rating:    rating,
			Comment:   rev.Comment,
			CreatedAt: rev.CreatedAt,
		})
	}

	return r, nil
}

func parseInt(field string, s *string, def int) (int, error) {
	if s == nil {
		return def, nil
	}

	v, err := strconv.Atoi(strings.TrimSpace(*s))
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", field, *s)
	}

	return v, nil
}

func parseFloat(field string, s *string) (float64, error) {
	if s == nil {
		return 0, nil
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(*s), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q", field, *s)
	}

	return v, nil
}

// parseBool accepts "true" in any case; everything else is false.
func parseBool(s *string) bool {
	return s != nil && strings.EqualFold(strings.TrimSpace(*s), "true")
}

// formatFloat writes the shortest text that parses back to exactly v.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func ptr(s string) *string {
	return &s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}
