package profiles

import "errors"

var (
	ErrNotFound     = errors.New("profile not found")
	ErrInvalidInput = errors.New("invalid profile")
)

// Tier is the subscription level of a profile. It does not gate anything yet.
type Tier string

const (
	TierFree      Tier = "Free"
	TierPro       Tier = "Pro"
	TierExclusive Tier = "Exclusive"
)

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierFree, TierPro, TierExclusive:
		return true
	}
	return false
}

// Attachment is an uploaded CV held in process memory only.
type Attachment struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Profile is the public-facing candidate record.
//
// CVFile is never serialized. HasCVFile is the durable record that a file
// was attached at some save; see Store.SaveAllProfiles.
type Profile struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Role              string      `json:"role"`
	Location          string      `json:"location"`
	AboutMe           string      `json:"aboutMe"`
	ExperienceSummary string      `json:"experienceSummary"`
	Skills            []string    `json:"skills"`
	Tier              Tier        `json:"tier"`
	HasCVFile         bool        `json:"hasCvFile"`
	CVFile            *Attachment `json:"-"`
}

// Clone returns a copy that shares no slices with p. The attachment bytes
// are treated as immutable and shared.
func (p Profile) Clone() Profile {
	out := p
	if p.Skills != nil {
		out.Skills = append([]string(nil), p.Skills...)
	}
	return out
}

// NewDraft returns an empty Free-tier profile with the given id.
func NewDraft(id string) Profile {
	return Profile{ID: id, Skills: []string{}, Tier: TierFree}
}
