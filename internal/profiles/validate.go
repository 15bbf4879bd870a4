package profiles

import "strings"

// FieldError describes one invalid field of a submitted profile.
type FieldError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// Validate checks the fields the editor requires before save or preview.
func Validate(p Profile) []FieldError {
	var errs []FieldError
	required := []struct {
		field string
		value string
	}{
		{"name", p.Name},
		{"role", p.Role},
		{"location", p.Location},
		{"aboutMe", p.AboutMe},
		{"experienceSummary", p.ExperienceSummary},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, FieldError{Field: r.field, Issue: "required"})
		}
	}
	if len(CleanSkills(p.Skills)) == 0 {
		errs = append(errs, FieldError{Field: "skills", Issue: "at least one skill is required"})
	}
	if p.Tier != "" && !p.Tier.Valid() {
		errs = append(errs, FieldError{Field: "tier", Issue: "must be one of Free, Pro, Exclusive"})
	}
	return errs
}

// CleanSkills trims every label and drops empty ones, keeping order.
func CleanSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SplitSkills parses a comma-separated skills field.
func SplitSkills(raw string) []string {
	return CleanSkills(strings.Split(raw, ","))
}
