package profiles

// PublicProfile is the recruiter-facing rendering of a profile.
type PublicProfile struct {
	ID                string   `json:"id"`
	DisplayName       string   `json:"displayName"`
	Revealed          bool     `json:"revealed"`
	Role              string   `json:"role"`
	Location          string   `json:"location"`
	AboutMe           string   `json:"aboutMe"`
	ExperienceSummary string   `json:"experienceSummary"`
	Skills            []string `json:"skills"`
	Tier              Tier     `json:"tier"`
	CVAvailable       bool     `json:"cvAvailable"`
}

// AnonymousName is the label shown until a recruiter has made contact.
func AnonymousName(id string) string {
	r := []rune(id)
	if len(r) > 4 {
		r = r[:4]
	}
	return "Candidate #" + string(r)
}

// ToPublic renders p for a viewer. The real name is only included once
// the viewer has revealed the candidate.
func ToPublic(p Profile, revealed bool) PublicProfile {
	name := AnonymousName(p.ID)
	if revealed {
		name = p.Name
	}
	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}
	return PublicProfile{
		ID:                p.ID,
		DisplayName:       name,
		Revealed:          revealed,
		Role:              p.Role,
		Location:          p.Location,
		AboutMe:           p.AboutMe,
		ExperienceSummary: p.ExperienceSummary,
		Skills:            skills,
		Tier:              p.Tier,
		CVAvailable:       p.CVFile != nil || p.HasCVFile,
	}
}
