package models

import (
	"fmt"
)

// Category values a post may carry.
const (
	CategoryJob        = "job"
	CategoryInternship = "internship"
	CategoryStartup    = "startup"
)

// Experience levels a post may target.
const (
	ExperienceFresher     = "fresher"
	ExperienceExperienced = "experienced"
	ExperienceAll         = "all"
)

// PublishedAtLayout is the date form of Post.PublishedAt.
const PublishedAtLayout = "2006-01-02"

// PostFields are the caller-supplied attributes of a listing.
type PostFields struct {
	Title               string   `json:"title"`
	Excerpt             string   `json:"excerpt"`
	Content             string   `json:"content"`
	Category            string   `json:"category"`
	Company             string   `json:"company"`
	Location            string   `json:"location"`
	Salary              string   `json:"salary,omitempty"`
	Experience          string   `json:"experience"`
	Image               string   `json:"image,omitempty"`
	Tags                []string `json:"tags"`
	IsRemote            bool     `json:"isRemote"`
	ApplicationDeadline string   `json:"applicationDeadline,omitempty"`
}

// Post is a stored listing. ID and PublishedAt are assigned by the store on
// insert and never change afterwards.
type Post struct {
	ID string `json:"id"`
	PostFields
	PublishedAt string `json:"publishedAt"`
}

// Validate rejects enum values the front end does not know how to render.
// Empty values are accepted.
func (f PostFields) Validate() error {
	if err := checkCategory(f.Category); err != nil {
		return err
	}
	return checkExperience(f.Experience)
}

// PostPatch is a partial update. A nil field is left untouched; a non-nil
// field overwrites, so a pointer to "" clears a string field. A JSON null
// decodes to nil and is therefore the same as omitting the key.
type PostPatch struct {
	Title               *string   `json:"title"`
	Excerpt             *string   `json:"excerpt"`
	Content             *string   `json:"content"`
	Category            *string   `json:"category"`
	Company             *string   `json:"company"`
	Location            *string   `json:"location"`
	Salary              *string   `json:"salary"`
	Experience          *string   `json:"experience"`
	Image               *string   `json:"image"`
	Tags                *[]string `json:"tags"`
	IsRemote            *bool     `json:"isRemote"`
	ApplicationDeadline *string   `json:"applicationDeadline"`
}

func (p PostPatch) Validate() error {
	if p.Category != nil {
		if err := checkCategory(*p.Category); err != nil {
			return err
		}
	}
	if p.Experience != nil {
		return checkExperience(*p.Experience)
	}
	return nil
}

// Apply merges the present fields of p onto post.
func (p PostPatch) Apply(post *Post) {
	setString(&post.Title, p.Title)
	setString(&post.Excerpt, p.Excerpt)
	setString(&post.Content, p.Content)
	setString(&post.Category, p.Category)
	setString(&post.Company, p.Company)
	setString(&post.Location, p.Location)
	setString(&post.Salary, p.Salary)
	setString(&post.Experience, p.Experience)
	setString(&post.Image, p.Image)
	setString(&post.ApplicationDeadline, p.ApplicationDeadline)
	if p.Tags != nil {
		post.Tags = append(make([]string, 0, len(*p.Tags)), (*p.Tags)...)
	}
	if p.IsRemote != nil {
		post.IsRemote = *p.IsRemote
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func checkCategory(c string) error {
	switch c {
	case "", CategoryJob, CategoryInternship, CategoryStartup:
		return nil
	}
	return fmt.Errorf("unknown category %q", c)
}

func checkExperience(e string) error {
	switch e {
	case "", ExperienceFresher, ExperienceExperienced, ExperienceAll:
		return nil
	}
	return fmt.Errorf("unknown experience level %q", e)
}
