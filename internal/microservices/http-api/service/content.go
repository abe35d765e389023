package service

import (
	"html"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

const (
	MaxTitleLength    = 200
	MaxCommentLength  = 5000
	MaxResponseLength = 5000
	MaxPhotos         = 10
	MaxPhotoRefLength = 2048
)

// AllowedTags is the predefined tag vocabulary reviewers can pick from
var AllowedTags = []string{
	"clean",
	"quiet",
	"safe",
	"family_friendly",
	"pet_friendly",
	"good_location",
	"good_value",
	"noisy",
	"walkable",
	"public_transport",
	"nightlife",
	"friendly_staff",
}

// strict policy strips every tag; safe for concurrent use once built
var plainText = bluemonday.StrictPolicy()

// ReviewContent is the reviewer-supplied part of a new review
type ReviewContent struct {
	Rating      int
	Title       *string
	Comment     *string
	Photos      []string
	Tags        []string
	Recommended *bool
	VisitDate   *time.Time
}

// ReviewPatch is a partial update; nil means "leave as is".
// An empty Title or Comment clears the field.
type ReviewPatch struct {
	Rating      *int
	Title       *string
	Comment     *string
	Photos      *[]string
	Tags        *[]string
	Recommended *bool
	VisitDate   *time.Time
}

func (p ReviewPatch) IsEmpty() bool {
	return p.Rating == nil && p.Title == nil && p.Comment == nil && p.Photos == nil &&
		p.Tags == nil && p.Recommended == nil && p.VisitDate == nil
}

// sanitizeText removes markup and surrounding whitespace. Entities escaped by
// the policy are unescaped again: we store plain text, rendering escapes.
func sanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(plainText.Sanitize(s)))
}

func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return invalidInput("rating must be between 1 and 5, got %d", rating)
	}
	return nil
}

// normalizeOptionalText returns nil for absent or blank text
func normalizeOptionalText(field string, s *string, max int) (*string, error) {
	if s == nil {
		return nil, nil
	}
	clean := sanitizeText(*s)
	if clean == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(clean) > max {
		return nil, invalidInput("%s must be at most %d characters", field, max)
	}
	return &clean, nil
}

func normalizePhotos(photos []string) ([]string, error) {
	if len(photos) > MaxPhotos {
		return nil, invalidInput("at most %d photos are allowed, got %d", MaxPhotos, len(photos))
	}
	out := make([]string, 0, len(photos))
	for _, p := range photos {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, invalidInput("photo reference must not be empty")
		}
		if len(p) > MaxPhotoRefLength {
			return nil, invalidInput("photo reference must be at most %d bytes", MaxPhotoRefLength)
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// normalizeTags lowercases, drops duplicates (first occurrence wins) and
// rejects anything outside AllowedTags.
func normalizeTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if !slices.Contains(AllowedTags, t) {
			return nil, invalidInput("unknown tag %q", t)
		}
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func normalizeResponseContent(content string) (string, error) {
	clean := sanitizeText(content)
	if clean == "" {
		return "", invalidInput("response content must not be empty")
	}
	if utf8.RuneCountInString(clean) > MaxResponseLength {
		return "", invalidInput("response content must be at most %d characters", MaxResponseLength)
	}
	return clean, nil
}

func (c ReviewContent) normalize() (ReviewContent, error) {
	if err := validateRating(c.Rating); err != nil {
		return c, err
	}
	var err error
	if c.Title, err = normalizeOptionalText("title", c.Title, MaxTitleLength); err != nil {
		return c, err
	}
	if c.Comment, err = normalizeOptionalText("comment", c.Comment, MaxCommentLength); err != nil {
		return c, err
	}
	if c.Photos, err = normalizePhotos(c.Photos); err != nil {
		return c, err
	}
	if c.Tags, err = normalizeTags(c.Tags); err != nil {
		return c, err
	}
	return c, nil
}

func equalText(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// normalize validates every supplied field. Blank title/comment and empty
// photo/tag lists stay non-nil so the caller can tell "clear" from "absent".
func (p ReviewPatch) normalize() (ReviewPatch, error) {
	if p.Rating != nil {
		if err := validateRating(*p.Rating); err != nil {
			return p, err
		}
	}
	if p.Title != nil {
		title, err := normalizeOptionalText("title", p.Title, MaxTitleLength)
		if err != nil {
			return p, err
		}
		p.Title = orEmpty(title)
	}
	if p.Comment != nil {
		comment, err := normalizeOptionalText("comment", p.Comment, MaxCommentLength)
		if err != nil {
			return p, err
		}
		p.Comment = orEmpty(comment)
	}
	if p.Photos != nil {
		photos, err := normalizePhotos(*p.Photos)
		if err != nil {
			return p, err
		}
		p.Photos = &photos
	}
	if p.Tags != nil {
		tags, err := normalizeTags(*p.Tags)
		if err != nil {
			return p, err
		}
		p.Tags = &tags
	}
	return p, nil
}

func orEmpty(s *string) *string {
	if s == nil {
		empty := ""
		return &empty
	}
	return s
}

// nilIfEmpty turns the "clear" marker produced by ReviewPatch.normalize back
// into the stored representation.
func nilIfEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
