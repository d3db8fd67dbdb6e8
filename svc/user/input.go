package user

import (
	"strings"
	"time"

	"github.com/dmitrymomot/blogify/pkg/sanitizer"
)

// ProfileInput is a partial profile update. Nil fields are left untouched;
// a non-nil empty string clears the field.
type ProfileInput struct {
	FirstName   *string           `json:"firstName" validate:"omitempty,max=50"`
	LastName    *string           `json:"lastName" validate:"omitempty,max=50"`
	Bio         *string           `json:"bio" validate:"omitempty,max=500"`
	DateOfBirth *time.Time        `json:"dob"`
	Gender      *string           `json:"gender" validate:"omitempty,oneof=male female other prefer_not_to_say"`
	Phone       *string           `json:"phone" validate:"omitempty,max=20"`
	SocialLinks *SocialLinksInput `json:"socialLinks"`
	Occupation  *string           `json:"occupation" validate:"omitempty,max=100"`
	Company     *string           `json:"company" validate:"omitempty,max=100"`
	Skills      []string          `json:"skills" validate:"omitempty,max=20,dive,max=50"`
	Interests   []string          `json:"interests" validate:"omitempty,max=20,dive,max=50"`
}

type SocialLinksInput struct {
	Website   string `json:"website" validate:"omitempty,url"`
	Twitter   string `json:"twitter" validate:"omitempty,max=100"`
	LinkedIn  string `json:"linkedin" validate:"omitempty,max=200"`
	GitHub    string `json:"github" validate:"omitempty,max=100"`
	Instagram string `json:"instagram" validate:"omitempty,max=100"`
	Facebook  string `json:"facebook" validate:"omitempty,max=200"`
}

func trimPtr(s *string, transforms ...func(string) string) {
	if s != nil {
		*s = sanitizer.Apply(*s, append([]func(string) string{strings.TrimSpace}, transforms...)...)
	}
}

// Sanitize normalizes the input in place before validation.
func (in *ProfileInput) Sanitize() {
	trimPtr(in.FirstName, sanitizer.SingleLine)
	trimPtr(in.LastName, sanitizer.SingleLine)
	trimPtr(in.Bio, sanitizer.StripHTML, strings.TrimSpace)
	trimPtr(in.Gender, strings.ToLower)
	trimPtr(in.Phone)
	trimPtr(in.Occupation, sanitizer.SingleLine)
	trimPtr(in.Company, sanitizer.SingleLine)
	if in.Skills != nil {
		in.Skills = sanitizer.Tags(in.Skills, 0)
	}
	if in.Interests != nil {
		in.Interests = sanitizer.Tags(in.Interests, 0)
	}
	if l := in.SocialLinks; l != nil {
		for _, f := range []*string{&l.Website, &l.Twitter, &l.LinkedIn, &l.GitHub, &l.Instagram, &l.Facebook} {
			*f = strings.TrimSpace(*f)
		}
	}
}

// merge returns p with the non-nil fields of in applied.
func (in ProfileInput) merge(p Profile) Profile {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.FirstName, in.FirstName)
	set(&p.LastName, in.LastName)
	set(&p.Bio, in.Bio)
	set(&p.Gender, in.Gender)
	set(&p.Phone, in.Phone)
	set(&p.Occupation, in.Occupation)
	set(&p.Company, in.Company)
	if in.DateOfBirth != nil {
		dob := *in.DateOfBirth
		p.DateOfBirth = &dob
	}
	if l := in.SocialLinks; l != nil {
		p.SocialLinks = SocialLinks(*l)
	}
	if in.Skills != nil {
		p.Skills = in.Skills
	}
	if in.Interests != nil {
		p.Interests = in.Interests
	}
	return p
}
